// Package config reads and validates the YAML configuration document of the
// dataset generation run. Every field is consumed exactly once at startup; a
// snapshot of the document is saved into the dataset directory so generated
// samples stay interpretable.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/Hongyoungjin/posenet-datagen-isaac/camera"
)

// Config is the root of the configuration document.
type Config struct {
	Simulation Simulation `yaml:"simulation"`
}

// Simulation holds the run parameters.
type Simulation struct {
	FileZeroPaddingNum  int     `yaml:"file_zero_padding_num"`
	PhysicsEngine       string  `yaml:"physics_engine"`
	NumThreads          int     `yaml:"num_threads"`
	ComputeDeviceID     int     `yaml:"compute_device_id"`
	GraphicsDeviceID    int     `yaml:"graphics_device_id"`
	NumEnvs             int     `yaml:"num_envs"`
	UseGPU              bool    `yaml:"use_gpu"`
	DT                  float64 `yaml:"dt"`
	RenderFreq          float64 `yaml:"render_freq"`
	NumIters            int     `yaml:"num_iters"`
	Headless            bool    `yaml:"headless"`
	TargetObject        string  `yaml:"target_object"`
	TargetDataset       string  `yaml:"target_dataset"`
	AssetRoot           string  `yaml:"asset_root"`
	SaveRoot            string  `yaml:"save_root"`
	ObjectRandPoseRange float64 `yaml:"object_rand_pose_range"`
	MinStablePoseProb   float64 `yaml:"min_stable_pose_prob"`
	MaxNumStablePose    int     `yaml:"max_num_stable_pose"`

	TargetCamera string                       `yaml:"target_camera"`
	Camera       map[string]camera.Intrinsics `yaml:"camera"`
	CameraMount  camera.Mount                 `yaml:"camera_mount"`
}

// Default returns a configuration with the defaults a document is read on
// top of.
func Default() *Config {
	return &Config{
		Simulation: Simulation{
			FileZeroPaddingNum: 5,
			PhysicsEngine:      "fake",
			NumThreads:         1,
			NumEnvs:            1,
			DT:                 1.0 / 180,
			RenderFreq:         60,
			NumIters:           1,
			Headless:           true,
			AssetRoot:          "assets",
			SaveRoot:           "src",
			MaxNumStablePose:   10,
		},
	}
}

// Read loads the document at path over the defaults and validates it.
func Read(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config file")
	}
	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config file %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

// Validate checks the document before any environment is created.
func (c *Config) Validate() error {
	s := &c.Simulation
	if s.FileZeroPaddingNum <= 0 {
		return errors.Errorf("file_zero_padding_num must be positive, got %d", s.FileZeroPaddingNum)
	}
	if s.PhysicsEngine == "" {
		return errors.New("physics_engine must be set")
	}
	if s.NumEnvs <= 0 {
		return errors.Errorf("num_envs must be positive, got %d", s.NumEnvs)
	}
	if s.NumIters <= 0 {
		return errors.Errorf("num_iters must be positive, got %d", s.NumIters)
	}
	if s.DT <= 0 {
		return errors.Errorf("dt must be positive, got %f", s.DT)
	}
	if s.TargetObject == "" || s.TargetDataset == "" {
		return errors.New("target_object and target_dataset must be set")
	}
	if s.ObjectRandPoseRange < 0 {
		return errors.Errorf("object_rand_pose_range must be non-negative, got %f", s.ObjectRandPoseRange)
	}
	if s.MinStablePoseProb < 0 || s.MinStablePoseProb >= 1 {
		return errors.Errorf("min_stable_pose_prob must be in [0, 1), got %f", s.MinStablePoseProb)
	}
	if s.MaxNumStablePose <= 0 {
		return errors.Errorf("max_num_stable_pose must be positive, got %d", s.MaxNumStablePose)
	}
	if _, err := c.Intrinsics(); err != nil {
		return err
	}
	if err := s.CameraMount.CheckValid(); err != nil {
		return err
	}
	return nil
}

// Intrinsics returns the intrinsics of the configured target camera.
func (c *Config) Intrinsics() (camera.Intrinsics, error) {
	s := &c.Simulation
	if s.TargetCamera == "" {
		return camera.Intrinsics{}, errors.New("target_camera must be set")
	}
	intr, ok := s.Camera[s.TargetCamera]
	if !ok {
		return camera.Intrinsics{}, errors.Errorf("camera %q not found in config", s.TargetCamera)
	}
	if err := intr.CheckValid(); err != nil {
		return camera.Intrinsics{}, errors.Wrapf(err, "camera %q", s.TargetCamera)
	}
	return intr, nil
}

// DatasetDir is the per-object directory all outputs land under.
func (c *Config) DatasetDir() string {
	return filepath.Join(c.Simulation.SaveRoot, c.Simulation.TargetObject)
}

// AssetFile is the object asset path relative to the asset root.
func (c *Config) AssetFile() string {
	s := &c.Simulation
	return fmt.Sprintf("%s/%s/%s.urdf", s.TargetDataset, s.TargetObject, s.TargetObject)
}

// StablePosesPath is the path of the resting-transform input artifact.
func (c *Config) StablePosesPath() string {
	s := &c.Simulation
	return filepath.Join(s.AssetRoot, s.TargetDataset, s.TargetObject, "stable_poses.npy")
}

// StableProbPath is the path of the probability input artifact.
func (c *Config) StableProbPath() string {
	s := &c.Simulation
	return filepath.Join(s.AssetRoot, s.TargetDataset, s.TargetObject, "stable_prob.npy")
}

// Save writes a snapshot of the document to path.
func (c *Config) Save(path string) error {
	raw, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshaling config snapshot")
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return errors.Wrap(err, "saving config snapshot")
	}
	return nil
}
