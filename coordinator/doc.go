// Package coordinator bridges frame-clock ticks to transform solves
// and hands the results to the overlay renderer.
//
// On every tick the coordinator pulls the latest (pose, camera) pair
// from the tracker collaborator. A fresh pair is solved and cached; a
// tick with no fresh pair is served from the cache so the overlay
// never flickers while tracking hiccups. After StaleFrameLimit
// consecutive ticks without fresh tracking the cached result is
// delivered with Visible == false — a stale overlay pinned to a lost
// anchor is worse than a hidden one.
//
// Delivery guarantees (inherited from frameclock):
//   - callbacks arrive in strictly increasing FrameIndex order
//   - no two callbacks for the same frame index run concurrently
//   - UnregisterFrameCallback is synchronous: once it returns, no
//     further callback fires
//
// The per-tick path never blocks and never propagates a fault: solver
// errors are logged, counted in Stats, and bridged with cached data.
package coordinator
