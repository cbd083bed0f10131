package transform

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Errors returned by Solve for malformed input. Culling is not an
// error: a culled anchor produces Result.Visible == false and err == nil.
var (
	ErrInvalidViewport      = errors.New("transform: viewport dimensions must be positive")
	ErrDegenerateProjection = errors.New("transform: projection matrix is not invertible")
	ErrInvalidConfig        = errors.New("transform: invalid solver config")
)

// Pose is a tracked anchor pose in tracker world space.
// Immutable per frame; produced by the external tracker.
type Pose struct {
	Position    mgl32.Vec3
	Orientation mgl32.Quat
}

// CameraProjection carries the tracker's per-frame camera matrices.
// Read-only to this package; regenerated by the tracker every frame.
type CameraProjection struct {
	Projection mgl32.Mat4
	View       mgl32.Mat4
}

// Viewport is the render surface size in pixels.
// Changes only on surface resize events.
type Viewport struct {
	Width  int
	Height int
}

// Config tunes scaling and culling. Treat the fields as configuration
// constants: they come from the config layer, not inline literals.
type Config struct {
	// MinScale and MaxScale clamp the depth-derived overlay scale.
	MinScale float32
	MaxScale float32

	// ReferenceDepth is the camera-space depth (meters) at which the
	// overlay renders at scale 1.0.
	ReferenceDepth float32

	// EdgeMargin widens the NDC visibility window to [-1-m, 1+m] so
	// overlays do not pop abruptly at the exact screen edge.
	EdgeMargin float32

	// MaxDepth is the far-culling distance in meters.
	MaxDepth float32

	// BaseWidth and BaseHeight are the overlay size in pixels at
	// scale 1.0.
	BaseWidth  float32
	BaseHeight float32
}

// DefaultConfig returns the solver tuning used when no configuration
// is supplied.
func DefaultConfig() Config {
	return Config{
		MinScale:       0.25,
		MaxScale:       4.0,
		ReferenceDepth: 1.0,
		EdgeMargin:     0.1,
		MaxDepth:       30.0,
		BaseWidth:      512,
		BaseHeight:     288,
	}
}

// Validate checks config consistency (fail-fast, construction time).
func (c Config) Validate() error {
	if c.MinScale <= 0 {
		return fmt.Errorf("%w: min_scale %.3f must be > 0", ErrInvalidConfig, c.MinScale)
	}
	if c.MaxScale < c.MinScale {
		return fmt.Errorf("%w: max_scale %.3f < min_scale %.3f", ErrInvalidConfig, c.MaxScale, c.MinScale)
	}
	if c.ReferenceDepth <= 0 {
		return fmt.Errorf("%w: reference_depth %.3f must be > 0", ErrInvalidConfig, c.ReferenceDepth)
	}
	if c.EdgeMargin < 0 {
		return fmt.Errorf("%w: edge_margin %.3f must be >= 0", ErrInvalidConfig, c.EdgeMargin)
	}
	if c.MaxDepth <= 0 {
		return fmt.Errorf("%w: max_depth %.3f must be > 0", ErrInvalidConfig, c.MaxDepth)
	}
	if c.BaseWidth <= 0 || c.BaseHeight <= 0 {
		return fmt.Errorf("%w: base overlay size %gx%g must be positive", ErrInvalidConfig, c.BaseWidth, c.BaseHeight)
	}
	return nil
}

// Result is the screen-space placement derived for one frame.
// Recomputed every tick; the coordinator caches only the immediately
// preceding result to bridge ticks with no fresh pose.
type Result struct {
	// MVP is the full model-view-projection matrix for consumers that
	// render the overlay as textured geometry.
	MVP mgl32.Mat4

	// ScreenX, ScreenY is the anchor position in pixels. Origin is the
	// top-left corner, Y grows downward (surface convention).
	ScreenX float32
	ScreenY float32

	// Width, Height is the scaled overlay size in pixels.
	Width  float32
	Height float32

	// Scale is the applied depth scale after clamping.
	Scale float32

	// Depth is the anchor's camera-space depth in meters.
	Depth float32

	// Visible reports the culling verdict. When false the remaining
	// fields describe the last computed placement and must not be drawn.
	Visible bool
}

// Solve computes the screen placement for one anchor.
//
// Returns an error only for malformed input (non-positive viewport,
// non-invertible projection). Culled anchors return Visible == false
// with a nil error. Never panics.
func Solve(pose Pose, cam CameraProjection, vp Viewport, cfg Config) (Result, error) {
	if vp.Width <= 0 || vp.Height <= 0 {
		return Result{}, fmt.Errorf("%w: %dx%d", ErrInvalidViewport, vp.Width, vp.Height)
	}

	det := cam.Projection.Det()
	if det == 0 || !isFinite(det) {
		return Result{}, ErrDegenerateProjection
	}

	world := pose.Position.Vec4(1)
	camSpace := cam.View.Mul4x1(world)
	clip := cam.Projection.Mul4x1(camSpace)

	model := mgl32.Translate3D(pose.Position.X(), pose.Position.Y(), pose.Position.Z()).
		Mul4(pose.Orientation.Mat4())
	res := Result{
		MVP:   cam.Projection.Mul4(cam.View).Mul4(model),
		Depth: -camSpace.Z(), // camera looks down -Z
	}

	// Behind the camera: no meaningful perspective divide exists.
	if clip.W() <= 0 {
		return res, nil
	}

	ndcX := clip.X() / clip.W()
	ndcY := clip.Y() / clip.W()

	res.ScreenX = (ndcX + 1) * 0.5 * float32(vp.Width)
	res.ScreenY = (1 - ndcY) * 0.5 * float32(vp.Height)

	res.Scale = clampScale(cfg.ReferenceDepth/res.Depth, cfg)
	res.Width = cfg.BaseWidth * res.Scale
	res.Height = cfg.BaseHeight * res.Scale

	// Culling: off-screen beyond the edge margin, or past far distance.
	limit := 1 + cfg.EdgeMargin
	if ndcX < -limit || ndcX > limit || ndcY < -limit || ndcY > limit {
		return res, nil
	}
	if res.Depth > cfg.MaxDepth {
		return res, nil
	}

	// Degenerate matrices surface as NaN/Inf rather than errors from
	// the arithmetic above; they must never escape as Visible == true.
	if !isFinite(res.ScreenX) || !isFinite(res.ScreenY) ||
		!isFinite(res.Width) || !isFinite(res.Height) {
		return res, nil
	}

	res.Visible = true
	return res, nil
}

func clampScale(s float32, cfg Config) float32 {
	if s < cfg.MinScale {
		return cfg.MinScale
	}
	if s > cfg.MaxScale {
		return cfg.MaxScale
	}
	return s
}

func isFinite(f float32) bool {
	f64 := float64(f)
	return !math.IsNaN(f64) && !math.IsInf(f64, 0)
}
