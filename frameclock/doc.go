// Package frameclock delivers display-refresh timing ticks to
// subscribers.
//
// Philosophy: "The host's refresh signal is authoritative. Never
// self-throttle, never coalesce."
//
// The clock rides a PulseSource — the host's vsync analog — and fans
// each pulse out to subscribers as a FrameTime carrying a monotonic
// frame index and the measured delta since the previous tick.
// Consumers must treat DeltaNanos as authoritative rather than
// assuming a fixed 16.6ms.
//
// Design:
//   - Single delivery goroutine: ticks reach a subscriber in strictly
//     increasing FrameIndex order, never concurrently
//   - Synchronous cancellation: Unsubscribe returns only after any
//     in-flight dispatch completes; no tick is delivered afterward
//   - Per-callback panic isolation: a failing subscriber loses one
//     frame, the clock keeps ticking
//
// See coordinator for the render-side consumer of these ticks.
package frameclock
