package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"
)

func TestQuatFromZRotation(t *testing.T) {
	q := QuatFromZRotation(math.Pi / 2)
	v := QuatRotateVector(q, r3.Vector{X: 1})
	test.That(t, v.X, test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, v.Y, test.ShouldAlmostEqual, 1, 1e-9)
	test.That(t, v.Z, test.ShouldAlmostEqual, 0, 1e-9)

	// a full turn is the identity rotation
	full := QuatFromZRotation(2 * math.Pi)
	test.That(t, QuatAlmostEqual(full, quat.Number{Real: 1}, 1e-9), test.ShouldBeTrue)
}

func TestQuatFromEulerZYX(t *testing.T) {
	// yaw alone matches a plain Z rotation
	q := QuatFromEulerZYX(0, 0, math.Pi/3)
	test.That(t, QuatAlmostEqual(q, QuatFromZRotation(math.Pi/3), 1e-9), test.ShouldBeTrue)

	// pitch of 90 degrees takes +X to -Z
	q = QuatFromEulerZYX(0, math.Pi/2, 0)
	v := QuatRotateVector(q, r3.Vector{X: 1})
	test.That(t, v.X, test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, v.Y, test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, v.Z, test.ShouldAlmostEqual, -1, 1e-9)

	// intrinsic ZYX: yaw 90 then pitch 90 takes +X to -Z as well
	q = QuatFromEulerZYX(0, math.Pi/2, math.Pi/2)
	v = QuatRotateVector(q, r3.Vector{X: 1})
	test.That(t, v.Z, test.ShouldAlmostEqual, -1, 1e-9)
}

func TestNormalize(t *testing.T) {
	q := Normalize(quat.Number{Real: 2, Imag: 2, Jmag: 2, Kmag: 2})
	test.That(t, quat.Abs(q), test.ShouldAlmostEqual, 1, 1e-9)
	test.That(t, q.Real, test.ShouldAlmostEqual, 0.5, 1e-9)

	q = Normalize(quat.Number{})
	test.That(t, q.Real, test.ShouldEqual, 1)
}

func TestRotationMatrixRoundTrip(t *testing.T) {
	for _, q := range []quat.Number{
		{Real: 1},
		QuatFromZRotation(math.Pi / 4),
		QuatFromEulerZYX(0.1, -0.5, 2.2),
		QuatFromEulerZYX(-1.2, 0.3, -0.4),
	} {
		back := RotationMatrixToQuat(QuatToRotationMatrix(q))
		test.That(t, QuatAlmostEqual(back, q, 1e-9), test.ShouldBeTrue)
	}
}

func TestPoseTransform(t *testing.T) {
	// identity rotation with a pure offset is a translation
	p := NewZeroPose().Transform(quat.Number{Real: 1}, r3.Vector{X: 1, Z: 0.0021})
	test.That(t, p.Point.X, test.ShouldEqual, 1)
	test.That(t, p.Point.Y, test.ShouldEqual, 0)
	test.That(t, p.Point.Z, test.ShouldEqual, 0.0021)
	test.That(t, p.Orientation.Real, test.ShouldEqual, 1)

	// rotating a translated pose moves the translation too
	start := NewPose(r3.Vector{X: 1}, quat.Number{Real: 1})
	p = start.Transform(QuatFromZRotation(math.Pi/2), r3.Vector{})
	test.That(t, p.Point.X, test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, p.Point.Y, test.ShouldAlmostEqual, 1, 1e-9)
}

func TestQuatAlmostEqual(t *testing.T) {
	q := QuatFromZRotation(0.3)
	antipodal := quat.Scale(-1, q)
	test.That(t, QuatAlmostEqual(q, antipodal, 1e-9), test.ShouldBeTrue)
	test.That(t, QuatAlmostEqual(q, QuatFromZRotation(0.4), 1e-4), test.ShouldBeFalse)
}
