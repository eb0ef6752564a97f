// Package stablepose loads and samples the catalog of physically stable
// resting poses of the target object. The catalog is produced by an external
// stable-pose estimation process as a pair of .npy artifacts: an array of
// 4x4 resting transforms and a parallel array of probability masses,
// pre-sorted by descending probability.
package stablepose

import (
	"math"
	"math/rand/v2"
	"os"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/Hongyoungjin/posenet-datagen-isaac/spatialmath"
)

// Quaternion scalar values that historically marked the two 4-fold
// rotationally symmetric resting poses of the sampled objects. The loader
// seeds SymmetryOrder from them; SetSymmetryOrder overrides per pose.
const (
	symmetrySentinelA = -0.706636
	symmetrySentinelB = 0.000685

	sentinelTolerance   = 1e-6
	legacySymmetryOrder = 4
)

// StablePose is one physically stable resting pose of the object, with its
// probability mass and rotational symmetry order about the vertical axis
// (order n means the appearance repeats every 2*pi/n; 1 means no symmetry).
type StablePose struct {
	Pose          spatialmath.Pose
	Probability   float64
	SymmetryOrder int
}

// Catalog holds stable poses with their probabilities, index-aligned.
type Catalog struct {
	poses []StablePose
}

// New builds a catalog from parallel pose and probability slices, seeding
// the symmetry order of poses whose quaternion scalar matches a legacy
// sentinel.
func New(poses []spatialmath.Pose, probabilities []float64) (*Catalog, error) {
	if len(poses) != len(probabilities) {
		return nil, errors.Errorf("got %d stable poses but %d probabilities", len(poses), len(probabilities))
	}
	if len(poses) == 0 {
		return nil, errors.New("no stable poses provided")
	}
	c := &Catalog{poses: make([]StablePose, len(poses))}
	for i, pose := range poses {
		if probabilities[i] < 0 {
			return nil, errors.Errorf("negative probability %f at index %d", probabilities[i], i)
		}
		order := 1
		if isLegacySymmetric(pose.Orientation.Real) {
			order = legacySymmetryOrder
		}
		c.poses[i] = StablePose{Pose: pose, Probability: probabilities[i], SymmetryOrder: order}
	}
	return c, nil
}

// isLegacySymmetric matches the quaternion scalar against the sentinels.
// Comparison is on magnitude: q and -q are the same rotation, and the
// matrix-to-quaternion conversion canonicalizes the scalar sign.
func isLegacySymmetric(qw float64) bool {
	qw = math.Abs(qw)
	return math.Abs(qw-math.Abs(symmetrySentinelA)) < sentinelTolerance ||
		math.Abs(qw-math.Abs(symmetrySentinelB)) < sentinelTolerance
}

// Load reads the catalog from its two .npy artifacts: resting transforms of
// shape (N, 4, 4) and probabilities of shape (N).
func Load(posesPath, probsPath string) (*Catalog, error) {
	rawPoses, poseShape, err := readArray(posesPath)
	if err != nil {
		return nil, errors.Wrap(err, "reading stable poses")
	}
	if len(poseShape) != 3 || poseShape[1] != 4 || poseShape[2] != 4 {
		return nil, errors.Errorf("stable poses must have shape (N, 4, 4), got %v", poseShape)
	}
	probs, probShape, err := readArray(probsPath)
	if err != nil {
		return nil, errors.Wrap(err, "reading stable pose probabilities")
	}
	if len(probShape) != 1 {
		return nil, errors.Errorf("stable pose probabilities must have shape (N), got %v", probShape)
	}
	if poseShape[0] != probShape[0] {
		return nil, errors.Errorf("got %d stable poses but %d probabilities", poseShape[0], probShape[0])
	}

	poses := make([]spatialmath.Pose, poseShape[0])
	for i := range poses {
		poses[i] = poseFromMatrix(rawPoses[i*16 : (i+1)*16])
	}
	return New(poses, probs)
}

// poseFromMatrix converts a row-major 4x4 rigid transform to a pose.
func poseFromMatrix(m []float64) spatialmath.Pose {
	var rot [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			rot[i][j] = m[i*4+j]
		}
	}
	return spatialmath.NewPose(
		r3.Vector{X: m[3], Y: m[7], Z: m[11]},
		spatialmath.RotationMatrixToQuat(rot),
	)
}

// readArray reads a float32 or float64 .npy file as a flat float64 slice in
// C order, returning its shape.
func readArray(path string) ([]float64, []int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "parsing %s", path)
	}
	if r.Header.Descr.Fortran {
		return nil, nil, errors.Errorf("%s: fortran-ordered arrays are not supported", path)
	}
	switch r.Header.Descr.Type {
	case "<f8", "|f8", ">f8":
		var data []float64
		if err := r.Read(&data); err != nil {
			return nil, nil, errors.Wrapf(err, "reading %s", path)
		}
		return data, r.Header.Descr.Shape, nil
	case "<f4", "|f4", ">f4":
		var data []float32
		if err := r.Read(&data); err != nil {
			return nil, nil, errors.Wrapf(err, "reading %s", path)
		}
		out := make([]float64, len(data))
		for i, v := range data {
			out[i] = float64(v)
		}
		return out, r.Header.Descr.Shape, nil
	default:
		return nil, nil, errors.Errorf("%s: unsupported dtype %q", path, r.Header.Descr.Type)
	}
}

// Filter drops poses with probability at or below minProb, truncates the
// catalog to at most maxPoses entries (keeping the most likely orientations,
// as the inputs are sorted by descending probability), and renormalizes the
// remaining probabilities to sum to 1. An empty result is an error: the
// object has no usable stable pose under the configured thresholds.
func (c *Catalog) Filter(minProb float64, maxPoses int) error {
	kept := make([]StablePose, 0, len(c.poses))
	for _, sp := range c.poses {
		if sp.Probability <= minProb {
			continue
		}
		kept = append(kept, sp)
		if len(kept) == maxPoses {
			break
		}
	}
	if len(kept) == 0 {
		return errors.Errorf(
			"no stable poses left after filtering (min probability %f, max poses %d)", minProb, maxPoses)
	}
	var total float64
	for _, sp := range kept {
		total += sp.Probability
	}
	for i := range kept {
		kept[i].Probability /= total
	}
	c.poses = kept
	return nil
}

// Len returns the number of cataloged poses.
func (c *Catalog) Len() int { return len(c.poses) }

// At returns the pose at index i.
func (c *Catalog) At(i int) StablePose { return c.poses[i] }

// Probabilities returns the probability masses in catalog order.
func (c *Catalog) Probabilities() []float64 {
	out := make([]float64, len(c.poses))
	for i, sp := range c.poses {
		out[i] = sp.Probability
	}
	return out
}

// SetSymmetryOrder overrides the rotational symmetry order of pose i.
func (c *Catalog) SetSymmetryOrder(i, order int) {
	if order < 1 {
		order = 1
	}
	c.poses[i].SymmetryOrder = order
}

// Sample draws a stable pose weighted by probability.
func (c *Catalog) Sample(rng *rand.Rand) StablePose {
	dist := distuv.NewCategorical(c.Probabilities(), rng)
	return c.poses[int(dist.Rand())]
}
