// Package spatialmath defines the spatial mathematical operations needed to
// place rigid objects and cameras in simulated scenes.
package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Pose represents a rigid transform as a translation paired with a unit
// quaternion orientation.
type Pose struct {
	Point       r3.Vector
	Orientation quat.Number
}

// NewZeroPose returns a pose at the origin with no rotation.
func NewZeroPose() Pose {
	return Pose{Orientation: quat.Number{Real: 1}}
}

// NewPose returns a pose with the given translation and orientation.
func NewPose(pt r3.Vector, o quat.Number) Pose {
	return Pose{Point: pt, Orientation: o}
}

// NewPoseFromZRotation returns a pose at the given point, rotated about the
// world Z axis by the given angle in radians.
func NewPoseFromZRotation(pt r3.Vector, yaw float64) Pose {
	return Pose{Point: pt, Orientation: QuatFromZRotation(yaw)}
}

// Transform applies q to the pose of a rigid body, rotating it about the
// world origin and then offsetting it. This is the composition used when a
// random planar perturbation is layered on top of a resting pose.
func (p Pose) Transform(rotation quat.Number, offset r3.Vector) Pose {
	return Pose{
		Point:       QuatRotateVector(rotation, p.Point).Add(offset),
		Orientation: Normalize(quat.Mul(rotation, p.Orientation)),
	}
}

// PoseAlmostEqual returns whether two poses are within tol of each other in
// both translation and orientation. Antipodal quaternions compare equal since
// they represent the same rotation.
func PoseAlmostEqual(a, b Pose, tol float64) bool {
	if a.Point.Sub(b.Point).Norm() > tol {
		return false
	}
	return QuatAlmostEqual(a.Orientation, b.Orientation, tol)
}

// QuatAlmostEqual returns whether two quaternions represent rotations within
// tol of each other.
func QuatAlmostEqual(a, b quat.Number, tol float64) bool {
	diff := quat.Mul(a, quat.Conj(b))
	return math.Abs(diff.Real) > 1-tol
}
