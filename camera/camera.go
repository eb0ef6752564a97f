// Package camera models the virtual depth camera: pinhole intrinsics, the
// render sensor properties derived from them, and the fixed extrinsic
// transform of the camera mount.
package camera

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/Hongyoungjin/posenet-datagen-isaac/spatialmath"
)

// Intrinsics holds the parameters of a pinhole projection. The principal
// point is assumed to sit at the image center, so the sensor resolution is
// derived from it.
type Intrinsics struct {
	Fx float64 `yaml:"fx"`
	Fy float64 `yaml:"fy"`
	Cx float64 `yaml:"cx"`
	Cy float64 `yaml:"cy"`
}

// CheckValid returns an error if any intrinsic parameter is non-positive.
func (i Intrinsics) CheckValid() error {
	if i.Fx <= 0 || i.Fy <= 0 {
		return errors.Errorf("invalid focal length (fx: %.2f, fy: %.2f)", i.Fx, i.Fy)
	}
	if i.Cx <= 0 || i.Cy <= 0 {
		return errors.Errorf("invalid principal point (cx: %.2f, cy: %.2f)", i.Cx, i.Cy)
	}
	return nil
}

// SensorProperties are the render-sensor settings derived from pinhole
// intrinsics: the pixel resolution and the horizontal field of view of a
// rectilinear lens with the given focal length.
type SensorProperties struct {
	Width                int
	Height               int
	HorizontalFOVDegrees float64
	FarPlane             float64
}

// defaultFarPlane caps rendered depth at one meter; the object sits well
// within it under the fixed mount.
const defaultFarPlane = 1.0

// SensorProperties derives the sensor settings from the intrinsics.
func (i Intrinsics) SensorProperties() SensorProperties {
	return SensorProperties{
		Width:                int(2 * i.Cx),
		Height:               int(2 * i.Cy),
		HorizontalFOVDegrees: 2 * math.Atan2(i.Cx, i.Fx) * 180 / math.Pi,
		FarPlane:             defaultFarPlane,
	}
}

// Mount is the configured pose of the camera relative to its environment
// origin, expressed in the engine's camera frame: local +X along the optical
// axis, +Y left, +Z down.
type Mount struct {
	Position       []float64 `yaml:"position"`
	EulerZYXDegree []float64 `yaml:"euler_zyx_deg"`
}

// CheckValid returns an error unless the mount has a 3-vector position and
// orientation.
func (m Mount) CheckValid() error {
	if len(m.Position) != 3 {
		return errors.Errorf("camera mount position must have 3 components, got %d", len(m.Position))
	}
	if len(m.EulerZYXDegree) != 3 {
		return errors.Errorf("camera mount euler_zyx_deg must have 3 components, got %d", len(m.EulerZYXDegree))
	}
	return nil
}

// Pose returns the mount as a rigid transform.
func (m Mount) Pose() spatialmath.Pose {
	const degToRad = math.Pi / 180
	return spatialmath.NewPose(
		r3.Vector{X: m.Position[0], Y: m.Position[1], Z: m.Position[2]},
		spatialmath.QuatFromEulerZYX(
			m.EulerZYXDegree[0]*degToRad,
			m.EulerZYXDegree[1]*degToRad,
			m.EulerZYXDegree[2]*degToRad,
		),
	)
}

// axisCorrection rotates the engine camera frame (X optical axis, Y left,
// Z down) into the conventional scene frame used for pose labels:
// camera x -> scene z, camera y -> -scene x, camera z -> -scene y.
var axisCorrection = mat.NewDense(3, 3, []float64{
	0, 0, 1,
	-1, 0, 0,
	0, -1, 0,
})

// Extrinsic assembles the fixed 4x4 world-from-camera transform from the
// mount pose. It is computed once per run; every environment shares the same
// mount pose relative to its own origin.
func Extrinsic(mount spatialmath.Pose) *mat.Dense {
	r := spatialmath.QuatToRotationMatrix(mount.Orientation)
	rot := mat.NewDense(3, 3, []float64{
		r[0][0], r[0][1], r[0][2],
		r[1][0], r[1][1], r[1][2],
		r[2][0], r[2][1], r[2][2],
	})
	var corrected mat.Dense
	corrected.Mul(rot, axisCorrection)

	extr := mat.NewDense(4, 4, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			extr.Set(i, j, corrected.At(i, j))
		}
	}
	extr.Set(0, 3, mount.Point.X)
	extr.Set(1, 3, mount.Point.Y)
	extr.Set(2, 3, mount.Point.Z)
	extr.Set(3, 3, 1)
	return extr
}

// ExtrinsicPose returns the extrinsic as a rigid transform, for debug
// visualization of the camera axes.
func ExtrinsicPose(mount spatialmath.Pose) spatialmath.Pose {
	extr := Extrinsic(mount)
	var r [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = extr.At(i, j)
		}
	}
	return spatialmath.NewPose(
		r3.Vector{X: extr.At(0, 3), Y: extr.At(1, 3), Z: extr.At(2, 3)},
		spatialmath.RotationMatrixToQuat(r),
	)
}
