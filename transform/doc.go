// Package transform computes screen-space placement for tracked 3D
// anchors.
//
// Solve is a pure function: it maps an anchor pose plus the tracker's
// camera matrices to a pixel-space position, a depth-scaled overlay
// size and a visibility verdict. It allocates nothing, shares no
// state, and is safe to call concurrently for independent inputs —
// it sits on the per-tick hot path and must stay O(1) matrix
// arithmetic.
//
// Pipeline:
//
//	world position → view → projection → clip space
//	                → perspective divide → NDC
//	                → viewport mapping   → pixels
//
// Visibility policy (frustum/off-screen culling):
//   - clip-space W ≤ 0: anchor is behind the camera
//   - NDC x/y outside [-1,1] by more than Config.EdgeMargin: off-screen
//     (the margin keeps overlays from popping at the exact edge)
//   - camera-space depth beyond Config.MaxDepth: far-culled
//
// Overlay scale is inversely proportional to camera-space depth
// (ReferenceDepth/depth), clamped to [MinScale, MaxScale] so extreme
// close range cannot produce runaway sizes.
//
// Invariant: Result.Visible == true implies screen position and size
// are finite, non-NaN, and size > 0.
package transform
