package camera

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"

	"github.com/Hongyoungjin/posenet-datagen-isaac/spatialmath"
)

func TestSensorProperties(t *testing.T) {
	intr := Intrinsics{Fx: 1000, Fy: 1000, Cx: 320, Cy: 240}
	test.That(t, intr.CheckValid(), test.ShouldBeNil)

	props := intr.SensorProperties()
	test.That(t, props.Width, test.ShouldEqual, 640)
	test.That(t, props.Height, test.ShouldEqual, 480)
	test.That(t, props.HorizontalFOVDegrees, test.ShouldAlmostEqual, 2*math.Atan2(320, 1000)*180/math.Pi, 1e-9)
	test.That(t, props.FarPlane, test.ShouldEqual, 1.0)
}

func TestIntrinsicsCheckValid(t *testing.T) {
	err := Intrinsics{Fx: 0, Fy: 1, Cx: 1, Cy: 1}.CheckValid()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "focal length")

	err = Intrinsics{Fx: 1, Fy: 1, Cx: 1, Cy: -2}.CheckValid()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "principal point")
}

func TestMountPose(t *testing.T) {
	m := Mount{Position: []float64{0, 0.16, 0.7}, EulerZYXDegree: []float64{0, 103.5, 90}}
	test.That(t, m.CheckValid(), test.ShouldBeNil)

	pose := m.Pose()
	test.That(t, pose.Point, test.ShouldResemble, r3.Vector{X: 0, Y: 0.16, Z: 0.7})
	test.That(t, quat.Abs(pose.Orientation), test.ShouldAlmostEqual, 1, 1e-9)

	test.That(t, Mount{Position: []float64{1}}.CheckValid(), test.ShouldNotBeNil)
	test.That(t, Mount{Position: []float64{0, 0, 0}, EulerZYXDegree: nil}.CheckValid(), test.ShouldNotBeNil)
}

func TestExtrinsicIdentityMount(t *testing.T) {
	// with an identity mount orientation the extrinsic rotation is exactly
	// the axis correction
	extr := Extrinsic(spatialmath.NewZeroPose())
	expected := [4][4]float64{
		{0, 0, 1, 0},
		{-1, 0, 0, 0},
		{0, -1, 0, 0},
		{0, 0, 0, 1},
	}
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			test.That(t, extr.At(i, j), test.ShouldAlmostEqual, expected[i][j], 1e-9)
		}
	}
}

func TestExtrinsicMountTranslation(t *testing.T) {
	mount := spatialmath.NewPose(r3.Vector{X: 0, Y: 0.16, Z: 0.7}, spatialmath.QuatFromZRotation(math.Pi/2))
	extr := Extrinsic(mount)
	test.That(t, extr.At(0, 3), test.ShouldEqual, 0)
	test.That(t, extr.At(1, 3), test.ShouldEqual, 0.16)
	test.That(t, extr.At(2, 3), test.ShouldEqual, 0.7)

	// a 90 degree yaw on the mount rotates the corrected columns by 90
	// degrees about Z: column 0 of the correction (0,-1,0) becomes (1,0,0)
	test.That(t, extr.At(0, 0), test.ShouldAlmostEqual, 1, 1e-9)
	test.That(t, extr.At(1, 0), test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, extr.At(2, 0), test.ShouldAlmostEqual, 0, 1e-9)
}

func TestExtrinsicPoseRoundTrip(t *testing.T) {
	mount := Mount{Position: []float64{0, 0.16, 0.7}, EulerZYXDegree: []float64{0, 103.5, 90}}.Pose()
	pose := ExtrinsicPose(mount)
	extr := Extrinsic(mount)

	r := spatialmath.QuatToRotationMatrix(pose.Orientation)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			test.That(t, r[i][j], test.ShouldAlmostEqual, extr.At(i, j), 1e-9)
		}
	}
	test.That(t, pose.Point, test.ShouldResemble, mount.Point)
}
