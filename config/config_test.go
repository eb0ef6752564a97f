package config

import (
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

const goodDoc = `
simulation:
  file_zero_padding_num: 5
  physics_engine: fake
  num_threads: 4
  num_envs: 100
  dt: 0.00555
  num_iters: 100
  target_object: E2
  target_dataset: egad
  object_rand_pose_range: 0.1
  min_stable_pose_prob: 0.05
  max_num_stable_pose: 10
  target_camera: zivid_two
  camera:
    zivid_two:
      fx: 1782.476
      fy: 1784.183
      cx: 967.352
      cy: 590.4
  camera_mount:
    position: [0.0, 0.16, 0.7]
    euler_zyx_deg: [0.0, 103.5, 90.0]
`

func writeDoc(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	test.That(t, os.WriteFile(path, []byte(doc), 0o644), test.ShouldBeNil)
	return path
}

func TestRead(t *testing.T) {
	cfg, err := Read(writeDoc(t, goodDoc))
	test.That(t, err, test.ShouldBeNil)

	s := cfg.Simulation
	test.That(t, s.NumEnvs, test.ShouldEqual, 100)
	test.That(t, s.NumIters, test.ShouldEqual, 100)
	test.That(t, s.DT, test.ShouldAlmostEqual, 0.00555)
	test.That(t, s.TargetObject, test.ShouldEqual, "E2")
	test.That(t, s.ObjectRandPoseRange, test.ShouldAlmostEqual, 0.1)

	// defaults fill what the document omits
	test.That(t, s.Headless, test.ShouldBeTrue)
	test.That(t, s.AssetRoot, test.ShouldEqual, "assets")
	test.That(t, s.SaveRoot, test.ShouldEqual, "src")
	test.That(t, s.RenderFreq, test.ShouldEqual, 60)

	intr, err := cfg.Intrinsics()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, intr.Fx, test.ShouldAlmostEqual, 1782.476)

	test.That(t, cfg.DatasetDir(), test.ShouldEqual, filepath.Join("src", "E2"))
	test.That(t, cfg.AssetFile(), test.ShouldEqual, "egad/E2/E2.urdf")
	test.That(t, cfg.StablePosesPath(), test.ShouldEqual, filepath.Join("assets", "egad", "E2", "stable_poses.npy"))
	test.That(t, cfg.StableProbPath(), test.ShouldEqual, filepath.Join("assets", "egad", "E2", "stable_prob.npy"))
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.yaml"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestValidate(t *testing.T) {
	for _, tc := range []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"zero envs", func(c *Config) { c.Simulation.NumEnvs = 0 }, "num_envs"},
		{"zero iters", func(c *Config) { c.Simulation.NumIters = 0 }, "num_iters"},
		{"bad dt", func(c *Config) { c.Simulation.DT = 0 }, "dt"},
		{"no object", func(c *Config) { c.Simulation.TargetObject = "" }, "target_object"},
		{"bad padding", func(c *Config) { c.Simulation.FileZeroPaddingNum = -1 }, "file_zero_padding_num"},
		{"bad prob", func(c *Config) { c.Simulation.MinStablePoseProb = 1.5 }, "min_stable_pose_prob"},
		{"bad max poses", func(c *Config) { c.Simulation.MaxNumStablePose = 0 }, "max_num_stable_pose"},
		{"bad range", func(c *Config) { c.Simulation.ObjectRandPoseRange = -0.1 }, "object_rand_pose_range"},
		{"unknown camera", func(c *Config) { c.Simulation.TargetCamera = "other" }, "not found"},
		{"bad mount", func(c *Config) { c.Simulation.CameraMount.Position = nil }, "position"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Read(writeDoc(t, goodDoc))
			test.That(t, err, test.ShouldBeNil)
			tc.mutate(cfg)
			err = cfg.Validate()
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.errMsg)
		})
	}
}

func TestSaveSnapshot(t *testing.T) {
	cfg, err := Read(writeDoc(t, goodDoc))
	test.That(t, err, test.ShouldBeNil)

	path := filepath.Join(t.TempDir(), "config.yaml")
	test.That(t, cfg.Save(path), test.ShouldBeNil)

	back, err := Read(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, back, test.ShouldResemble, cfg)
}
