// Package scene builds and owns the set of parallel simulated environments.
// Each environment holds exactly one object actor and one camera sensor,
// created once at startup and reused across iterations; only the object's
// dynamic pose state is mutated afterwards.
package scene

import (
	"math"
	"math/rand/v2"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/Hongyoungjin/posenet-datagen-isaac/camera"
	"github.com/Hongyoungjin/posenet-datagen-isaac/engine"
	"github.com/Hongyoungjin/posenet-datagen-isaac/spatialmath"
	"github.com/Hongyoungjin/posenet-datagen-isaac/stablepose"
)

// ObjectSegmentationID tags object pixels in segmentation buffers;
// background and ground pixels carry 0.
const ObjectSegmentationID uint8 = 1

// Environment bounds of the grid layout. Purely spatial; the per-environment
// camera and object poses are relative to each environment's own origin.
var (
	envLower = r3.Vector{X: -0.1, Y: -0.1, Z: 0}
	envUpper = r3.Vector{X: 0.1, Y: 0.1, Z: 0.002}
)

// Params configure the scene set.
type Params struct {
	NumEnvs          int
	Asset            engine.Asset
	Catalog          *stablepose.Catalog
	SensorProperties camera.SensorProperties
	MountPose        spatialmath.Pose
}

// Set is the collection of environments. It is the sole owner of the
// per-environment actor and camera handles.
type Set struct {
	eng       engine.Engine
	actors    []engine.Actor
	cameras   []engine.Camera
	canonical []stablepose.StablePose
	mount     spatialmath.Pose
	props     camera.SensorProperties
}

// NewSet creates params.NumEnvs environments on a square-ish grid. Each gets
// one actor placed at a canonical stable pose drawn from the catalog (fixed
// for the remainder of the run) and one camera at the shared mount pose.
func NewSet(eng engine.Engine, params Params, rng *rand.Rand, logger golog.Logger) (*Set, error) {
	if params.NumEnvs <= 0 {
		return nil, errors.Errorf("need at least one environment, got %d", params.NumEnvs)
	}
	if params.Catalog == nil || params.Catalog.Len() == 0 {
		return nil, errors.New("empty stable pose catalog")
	}

	perRow := int(math.Ceil(math.Sqrt(float64(params.NumEnvs))))
	spacing := engine.EnvSpacing{Lower: envLower, Upper: envUpper, PerRow: perRow}

	logger.Infow("creating environments", "num_envs", params.NumEnvs, "per_row", perRow)

	set := &Set{
		eng:       eng,
		actors:    make([]engine.Actor, 0, params.NumEnvs),
		cameras:   make([]engine.Camera, 0, params.NumEnvs),
		canonical: make([]stablepose.StablePose, 0, params.NumEnvs),
		mount:     params.MountPose,
		props:     params.SensorProperties,
	}
	for i := 0; i < params.NumEnvs; i++ {
		env, err := eng.CreateEnv(spacing)
		if err != nil {
			return nil, errors.Wrapf(err, "creating environment %d", i)
		}

		sp := params.Catalog.Sample(rng)
		actor, err := env.CreateActor(params.Asset, sp.Pose, "object")
		if err != nil {
			return nil, errors.Wrapf(err, "creating object actor in environment %d", i)
		}
		if err := actor.SetSegmentationID(ObjectSegmentationID); err != nil {
			return nil, errors.Wrapf(err, "tagging object in environment %d", i)
		}

		cam, err := env.CreateCamera(params.SensorProperties)
		if err != nil {
			return nil, errors.Wrapf(err, "creating camera sensor in environment %d", i)
		}
		if err := cam.SetTransform(params.MountPose); err != nil {
			return nil, errors.Wrapf(err, "positioning camera in environment %d", i)
		}

		set.actors = append(set.actors, actor)
		set.cameras = append(set.cameras, cam)
		set.canonical = append(set.canonical, sp)
	}
	return set, nil
}

// NumEnvs returns the number of environments.
func (s *Set) NumEnvs() int { return len(s.actors) }

// Engine returns the engine the set was built on.
func (s *Set) Engine() engine.Engine { return s.eng }

// Actor returns the object actor of environment i.
func (s *Set) Actor(i int) engine.Actor { return s.actors[i] }

// Camera returns the camera sensor of environment i.
func (s *Set) Camera(i int) engine.Camera { return s.cameras[i] }

// Canonical returns the fixed canonical stable pose of environment i.
func (s *Set) Canonical(i int) stablepose.StablePose { return s.canonical[i] }

// MountPose returns the shared camera mount pose.
func (s *Set) MountPose() spatialmath.Pose { return s.mount }

// SensorProperties returns the shared camera sensor properties.
func (s *Set) SensorProperties() camera.SensorProperties { return s.props }
