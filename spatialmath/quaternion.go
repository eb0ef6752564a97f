package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// QuatFromZRotation returns the quaternion for a rotation of yaw radians
// about the world Z axis.
func QuatFromZRotation(yaw float64) quat.Number {
	return quat.Number{Real: math.Cos(yaw / 2), Kmag: math.Sin(yaw / 2)}
}

// QuatFromEulerZYX returns the quaternion for intrinsic Z-Y-X Euler angles,
// i.e. a yaw about Z followed by a pitch about the new Y and a roll about the
// resulting X. This matches the engine's camera mount convention.
func QuatFromEulerZYX(roll, pitch, yaw float64) quat.Number {
	qz := QuatFromZRotation(yaw)
	qy := quat.Number{Real: math.Cos(pitch / 2), Jmag: math.Sin(pitch / 2)}
	qx := quat.Number{Real: math.Cos(roll / 2), Imag: math.Sin(roll / 2)}
	return Normalize(quat.Mul(quat.Mul(qz, qy), qx))
}

// Normalize returns the unit quaternion parallel to q. The zero quaternion
// normalizes to the identity rather than dividing by zero.
func Normalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n == 0 {
		return quat.Number{Real: 1}
	}
	return quat.Scale(1/n, q)
}

// QuatRotateVector rotates v by the unit quaternion q.
func QuatRotateVector(q quat.Number, v r3.Vector) r3.Vector {
	qv := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	rotated := quat.Mul(quat.Mul(q, qv), quat.Conj(q))
	return r3.Vector{X: rotated.Imag, Y: rotated.Jmag, Z: rotated.Kmag}
}

// QuatToRotationMatrix returns the 3x3 rotation matrix of q as row-major
// [row][col] entries.
func QuatToRotationMatrix(q quat.Number) [3][3]float64 {
	m := mgl64.Quat{W: q.Real, V: mgl64.Vec3{q.Imag, q.Jmag, q.Kmag}}.Normalize().Mat4()
	var out [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m.At(i, j)
		}
	}
	return out
}

// RotationMatrixToQuat returns the quaternion of a row-major 3x3 rotation
// matrix.
func RotationMatrixToQuat(m [3][3]float64) quat.Number {
	mat := mgl64.Ident4()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			mat.Set(i, j, m[i][j])
		}
	}
	q := mgl64.Mat4ToQuat(mat)
	return Normalize(quat.Number{Real: q.W, Imag: q.X(), Jmag: q.Y(), Kmag: q.Z()})
}
