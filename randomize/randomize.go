// Package randomize composes a new randomized-but-stable world pose for each
// environment's object once per iteration. The canonical stable pose stays
// fixed; only a planar offset and a yaw rotation are layered on top, so every
// generated sample remains a physically plausible resting configuration.
package randomize

import (
	"math"
	"math/rand/v2"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/Hongyoungjin/posenet-datagen-isaac/scene"
	"github.com/Hongyoungjin/posenet-datagen-isaac/spatialmath"
	"github.com/Hongyoungjin/posenet-datagen-isaac/stablepose"
)

// liftHeight places the object just above the ground plane so imaging never
// catches it intersecting the ground.
const liftHeight = 0.0021

// Randomizer draws randomized stable poses.
type Randomizer struct {
	rng           *rand.Rand
	positionRange float64
}

// New returns a randomizer drawing planar offsets uniformly over
// [-positionRange, positionRange].
func New(rng *rand.Rand, positionRange float64) (*Randomizer, error) {
	if positionRange < 0 {
		return nil, errors.Errorf("position range must be non-negative, got %f", positionRange)
	}
	return &Randomizer{rng: rng, positionRange: positionRange}, nil
}

// Pose draws a new randomized pose for the given canonical stable pose. The
// yaw range shrinks with the pose's rotational symmetry order so that
// visually duplicate orientations are not generated for symmetric poses.
func (r *Randomizer) Pose(canonical stablepose.StablePose) spatialmath.Pose {
	offset := r3.Vector{
		X: r.uniform(-r.positionRange, r.positionRange),
		Y: r.uniform(-r.positionRange, r.positionRange),
		Z: liftHeight,
	}
	order := canonical.SymmetryOrder
	if order < 1 {
		order = 1
	}
	yaw := r.uniform(0, 2*math.Pi/float64(order))
	return canonical.Pose.Transform(spatialmath.QuatFromZRotation(yaw), offset)
}

func (r *Randomizer) uniform(low, high float64) float64 {
	return low + (high-low)*r.rng.Float64()
}

// Reset writes a freshly randomized pose into every environment's object,
// zeroes its velocities, and disables gravity on it so the object holds the
// commanded pose exactly through the imaging step. Any debug lines from the
// previous iteration are cleared. The composed poses are returned in
// environment order for export.
func (r *Randomizer) Reset(set *scene.Set) ([]spatialmath.Pose, error) {
	poses := make([]spatialmath.Pose, set.NumEnvs())
	for i := 0; i < set.NumEnvs(); i++ {
		pose := r.Pose(set.Canonical(i))

		actor := set.Actor(i)
		if err := actor.SetRigidTransform(pose); err != nil {
			return nil, errors.Wrapf(err, "setting object pose in environment %d", i)
		}
		if err := actor.SetLinearVelocity(r3.Vector{}); err != nil {
			return nil, errors.Wrapf(err, "zeroing linear velocity in environment %d", i)
		}
		if err := actor.SetAngularVelocity(r3.Vector{}); err != nil {
			return nil, errors.Wrapf(err, "zeroing angular velocity in environment %d", i)
		}
		if err := actor.SetGravityEnabled(false); err != nil {
			return nil, errors.Wrapf(err, "disabling gravity in environment %d", i)
		}
		poses[i] = pose
	}
	set.Engine().ClearDebugLines()
	return poses, nil
}
