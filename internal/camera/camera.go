// Package camera provides viewer models that drive LOD selection.
package camera

import (
	gomath "math"

	"github.com/Faultbox/meshlod/pkg/lod"
	"github.com/Faultbox/meshlod/pkg/math"
	"github.com/Faultbox/meshlod/pkg/mesh"
)

// DefaultFovY is the vertical field of view of a new camera, 60 degrees.
const DefaultFovY = float32(gomath.Pi / 3)

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	// Center point to orbit around
	Center math.Vec3

	// Spherical coordinates
	Distance float32 // Distance from center
	Pitch    float32 // Vertical angle, radians
	Yaw      float32 // Horizontal angle, radians

	// Vertical field of view, radians
	FovY float32

	// Constraints
	MinDistance float32
	MaxDistance float32

	ZoomSensitivity float32
}

// NewOrbitCamera creates a new orbit camera with default settings.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        5,
		Pitch:           0.5,
		FovY:            DefaultFovY,
		MinDistance:     0.1,
		MaxDistance:     1000,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	pitch, yaw := float64(c.Pitch), float64(c.Yaw)
	return c.Center.Add(math.Vec3{
		X: c.Distance * float32(gomath.Cos(pitch)*gomath.Sin(yaw)),
		Y: c.Distance * float32(gomath.Sin(pitch)),
		Z: c.Distance * float32(gomath.Cos(pitch)*gomath.Cos(yaw)),
	})
}

// HandleZoom updates distance based on scroll wheel delta. Positive deltas move
// closer.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.Distance = min(max(c.Distance, c.MinDistance), c.MaxDistance)
}

// FitToBounds centers the camera on b at the distance where the bounding
// sphere just fills the vertical view.
func (c *OrbitCamera) FitToBounds(b mesh.Bounds) {
	c.Center = b.Center()

	r := b.Radius()
	if !(r > 0) {
		return
	}
	fit := r / float32(gomath.Tan(float64(c.FovY)/2))
	c.Distance = min(max(fit, c.MinDistance), c.MaxDistance)
}

// View returns the distance from the camera to the center of b and the
// fraction of the vertical view b's bounding sphere covers.
func (c *OrbitCamera) View(b mesh.Bounds) (distance, coverage float32) {
	distance = c.Position().Distance(b.Center())
	return distance, lod.ScreenCoverage(b.Radius(), distance, c.FovY)
}

// Track feeds the view of b into ctrl using the controller's mode.
func (c *OrbitCamera) Track(ctrl *lod.Controller, b mesh.Bounds) {
	distance, coverage := c.View(b)
	if ctrl.Mode() == lod.ByCoverage {
		ctrl.Update(coverage)
		return
	}
	ctrl.Update(distance)
}
