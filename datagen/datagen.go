// Package datagen wires the dataset generation pipeline together and drives
// it: stable-pose catalog, camera model, scene set, per-iteration pose
// randomization, and capture/export.
package datagen

import (
	"context"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/Hongyoungjin/posenet-datagen-isaac/camera"
	"github.com/Hongyoungjin/posenet-datagen-isaac/capture"
	"github.com/Hongyoungjin/posenet-datagen-isaac/config"
	"github.com/Hongyoungjin/posenet-datagen-isaac/engine"
	"github.com/Hongyoungjin/posenet-datagen-isaac/randomize"
	"github.com/Hongyoungjin/posenet-datagen-isaac/scene"
	"github.com/Hongyoungjin/posenet-datagen-isaac/spatialmath"
	"github.com/Hongyoungjin/posenet-datagen-isaac/stablepose"
)

// configSnapshotName is the config copy saved beside the data directory.
const configSnapshotName = "config.yaml"

// axisDrawScale sizes the debug camera-axis triads.
const axisDrawScale = 100

// EngineOptions extracts the engine-level options from the configuration.
func EngineOptions(cfg *config.Config) engine.Options {
	s := cfg.Simulation
	return engine.Options{
		DT:               s.DT,
		NumThreads:       s.NumThreads,
		ComputeDeviceID:  s.ComputeDeviceID,
		GraphicsDeviceID: s.GraphicsDeviceID,
		UseGPU:           s.UseGPU,
		Headless:         s.Headless,
	}
}

// assetOptions are the rigid-body import settings for the target object.
func assetOptions() engine.AssetOptions {
	return engine.AssetOptions{
		Armature:        0.001,
		Thickness:       0.001,
		OverrideInertia: true,
		ConvexDecomposition: engine.ConvexDecompositionParams{
			Enabled:            true,
			Resolution:         300000,
			MaxConvexHulls:     50,
			MaxVerticesPerHull: 1000,
		},
	}
}

// Generator runs the dataset generation loop.
type Generator struct {
	cfg        *config.Config
	eng        engine.Engine
	set        *scene.Set
	randomizer *randomize.Randomizer
	writer     *capture.Writer
	mount      spatialmath.Pose
	clock      clock.Clock
	logger     golog.Logger
}

// New builds the full pipeline: ground plane, object asset, filtered
// stable-pose catalog, scene set, and (when save is set) the dataset
// directory with its config snapshot. Any failure here is fatal for the run;
// nothing is retried.
func New(cfg *config.Config, eng engine.Engine, save bool, rng *rand.Rand, logger golog.Logger) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := cfg.Simulation

	intr, err := cfg.Intrinsics()
	if err != nil {
		return nil, err
	}
	mount := s.CameraMount.Pose()

	if err := eng.AddGround(engine.GroundPlane()); err != nil {
		return nil, errors.Wrap(err, "adding ground plane")
	}
	asset, err := eng.LoadAsset(s.AssetRoot, cfg.AssetFile(), assetOptions())
	if err != nil {
		return nil, errors.Wrapf(err, "loading object asset %s", cfg.AssetFile())
	}

	catalog, err := stablepose.Load(cfg.StablePosesPath(), cfg.StableProbPath())
	if err != nil {
		return nil, err
	}
	if err := catalog.Filter(s.MinStablePoseProb, s.MaxNumStablePose); err != nil {
		return nil, err
	}
	logger.Infow("stable pose catalog ready", "poses", catalog.Len())

	set, err := scene.NewSet(eng, scene.Params{
		NumEnvs:          s.NumEnvs,
		Asset:            asset,
		Catalog:          catalog,
		SensorProperties: intr.SensorProperties(),
		MountPose:        mount,
	}, rng, logger)
	if err != nil {
		return nil, err
	}

	randomizer, err := randomize.New(rng, s.ObjectRandPoseRange)
	if err != nil {
		return nil, err
	}

	g := &Generator{
		cfg:        cfg,
		eng:        eng,
		set:        set,
		randomizer: randomizer,
		mount:      mount,
		clock:      clock.New(),
		logger:     logger,
	}
	if save {
		dir := cfg.DatasetDir()
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "creating dataset directory")
		}
		if err := cfg.Save(filepath.Join(dir, configSnapshotName)); err != nil {
			return nil, err
		}
		if g.writer, err = capture.NewWriter(dir, s.FileZeroPaddingNum); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Run executes the configured number of iterations. Each iteration
// randomizes every environment, advances the engine one batched
// simulate/render step, reads one frame per environment back, and persists
// the frames when saving is enabled. The first error aborts the run.
func (g *Generator) Run(ctx context.Context) error {
	numEnvs := g.set.NumEnvs()
	for n := 0; n < g.cfg.Simulation.NumIters; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := g.clock.Now()

		poses, err := g.randomizer.Reset(g.set)
		if err != nil {
			return errors.Wrapf(err, "iteration %d: randomizing poses", n)
		}
		if err := g.eng.Step(ctx); err != nil {
			return errors.Wrapf(err, "iteration %d: stepping engine", n)
		}
		frames, err := capture.Read(g.set, poses)
		if err != nil {
			return errors.Wrapf(err, "iteration %d: capturing frames", n)
		}
		if g.writer != nil {
			for e, frame := range frames {
				if err := g.writer.WriteSample(n*numEnvs+e, frame); err != nil {
					return errors.Wrapf(err, "iteration %d", n)
				}
			}
		}

		g.logger.Infow("iteration complete",
			"iteration", n,
			"num_samples", n*numEnvs,
			"elapsed", g.clock.Since(start),
		)
	}
	return nil
}

// VisualizeCameraAxis draws the camera extrinsic axes as debug lines in
// every environment; a no-op on headless engines.
func (g *Generator) VisualizeCameraAxis() error {
	return g.eng.DrawAxes(camera.ExtrinsicPose(g.mount), axisDrawScale)
}
