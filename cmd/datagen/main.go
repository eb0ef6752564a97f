// Package main contains the command that generates a depth-image dataset
// for 6-DoF pose estimation.
package main

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/edaniels/golog"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"github.com/Hongyoungjin/posenet-datagen-isaac/config"
	"github.com/Hongyoungjin/posenet-datagen-isaac/datagen"
	"github.com/Hongyoungjin/posenet-datagen-isaac/engine"

	// registers the fake engine driver.
	_ "github.com/Hongyoungjin/posenet-datagen-isaac/engine/fake"
)

var logger = golog.NewDevelopmentLogger("datagen")

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	ConfigFile  string `flag:"config,default=cfg/config.yaml,usage=configuration file"`
	SaveResults bool   `flag:"save-results,usage=save results to disk"`
	Seed        int    `flag:"seed,default=-1,usage=random seed (-1 seeds from the clock)"`
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) (err error) {
	var argsParsed Arguments
	if err := utils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}

	cfg, err := config.Read(argsParsed.ConfigFile)
	if err != nil {
		return err
	}

	eng, err := engine.Open(cfg.Simulation.PhysicsEngine, datagen.EngineOptions(cfg), logger)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, eng.Close())
	}()

	var seed uint64
	if argsParsed.Seed >= 0 {
		seed = uint64(argsParsed.Seed)
	} else {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, 0))

	gen, err := datagen.New(cfg, eng, argsParsed.SaveResults, rng, logger)
	if err != nil {
		return err
	}

	logger.Infow("starting dataset generation",
		"object", cfg.Simulation.TargetObject,
		"num_envs", cfg.Simulation.NumEnvs,
		"num_iters", cfg.Simulation.NumIters,
		"save_results", argsParsed.SaveResults,
	)
	return gen.Run(ctx)
}
