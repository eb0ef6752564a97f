// Package fake implements an in-memory engine driver that renders
// deterministic synthetic frames. It backs the package tests and lets the
// generator dry-run without a physics backend: actors simply hold their
// commanded transforms, and after each step every camera produces a constant
// negative-depth background with a centered square of the actor's
// segmentation ID.
package fake

import (
	"context"
	"sync"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/Hongyoungjin/posenet-datagen-isaac/camera"
	"github.com/Hongyoungjin/posenet-datagen-isaac/engine"
	"github.com/Hongyoungjin/posenet-datagen-isaac/spatialmath"
)

// ModelName is the name the fake driver registers under.
const ModelName = "fake"

func init() {
	engine.Register(ModelName, func(opts engine.Options, logger golog.Logger) (engine.Engine, error) {
		return NewEngine(opts, logger)
	})
}

// Engine is a fake engine.Engine.
type Engine struct {
	mu         sync.Mutex
	opts       engine.Options
	logger     golog.Logger
	ground     *engine.Plane
	envs       []*environment
	steps      int
	debugLines int
	closed     bool
}

// NewEngine returns a fake engine. Non-headless operation fails since the
// fake has no viewer to offer.
func NewEngine(opts engine.Options, logger golog.Logger) (*Engine, error) {
	if !opts.Headless {
		return nil, errors.New("failed to create viewer: fake engine is headless only")
	}
	if opts.DT <= 0 {
		return nil, errors.Errorf("invalid time step %f", opts.DT)
	}
	return &Engine{opts: opts, logger: logger}, nil
}

// LoadAsset accepts any asset path and returns a handle for it.
func (e *Engine) LoadAsset(root, file string, opts engine.AssetOptions) (engine.Asset, error) {
	if file == "" {
		return nil, errors.New("empty asset file")
	}
	return &asset{root: root, file: file, opts: opts}, nil
}

// AddGround records the ground plane.
func (e *Engine) AddGround(plane engine.Plane) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ground != nil {
		return errors.New("ground plane already added")
	}
	e.ground = &plane
	return nil
}

// Ground returns the recorded ground plane, or nil.
func (e *Engine) Ground() *engine.Plane {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ground
}

// CreateEnv adds a new empty environment.
func (e *Engine) CreateEnv(spacing engine.EnvSpacing) (engine.Env, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if spacing.PerRow <= 0 {
		return nil, errors.Errorf("invalid environments per row %d", spacing.PerRow)
	}
	env := &environment{}
	e.envs = append(e.envs, env)
	return env, nil
}

// Step renders a frame into every camera buffer.
func (e *Engine) Step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return errors.New("engine closed")
	}
	e.steps++
	for _, env := range e.envs {
		env.render()
	}
	return nil
}

// StepCount returns how many steps have run.
func (e *Engine) StepCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.steps
}

// DrawAxes records one debug triad per environment.
func (e *Engine) DrawAxes(pose spatialmath.Pose, scale float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.debugLines += 3 * len(e.envs)
	return nil
}

// ClearDebugLines drops all recorded debug lines.
func (e *Engine) ClearDebugLines() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.debugLines = 0
}

// DebugLineCount returns the number of live debug lines.
func (e *Engine) DebugLineCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.debugLines
}

// Close shuts the engine down.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

type asset struct {
	root string
	file string
	opts engine.AssetOptions
}

func (a *asset) Name() string { return a.file }

type environment struct {
	mu      sync.Mutex
	actors  []*Actor
	cameras []*Camera
}

// CreateActor adds an actor at the given pose.
func (env *environment) CreateActor(as engine.Asset, pose spatialmath.Pose, name string) (engine.Actor, error) {
	if as == nil {
		return nil, errors.New("nil asset")
	}
	env.mu.Lock()
	defer env.mu.Unlock()
	a := &Actor{name: name, transform: pose, gravity: true}
	env.actors = append(env.actors, a)
	return a, nil
}

// CreateCamera adds a camera sensor with the given properties.
func (env *environment) CreateCamera(props camera.SensorProperties) (engine.Camera, error) {
	if props.Width <= 0 || props.Height <= 0 {
		return nil, errors.Errorf("invalid camera resolution %dx%d", props.Width, props.Height)
	}
	env.mu.Lock()
	defer env.mu.Unlock()
	c := &Camera{props: props}
	env.cameras = append(env.cameras, c)
	return c, nil
}

// render fills every camera buffer with the synthetic frame: background at
// the far plane, and a centered square at half that range carrying the first
// actor's segmentation ID.
func (env *environment) render() {
	env.mu.Lock()
	defer env.mu.Unlock()
	var segID uint8
	if len(env.actors) > 0 {
		segID = env.actors[0].SegmentationID()
	}
	for _, cam := range env.cameras {
		cam.render(segID)
	}
}

// Actor is a fake engine.Actor that records all commanded state.
type Actor struct {
	mu        sync.Mutex
	name      string
	segID     uint8
	transform spatialmath.Pose
	linVel    r3.Vector
	angVel    r3.Vector
	gravity   bool
}

// SetSegmentationID tags the actor's pixels in segmentation buffers.
func (a *Actor) SetSegmentationID(id uint8) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.segID = id
	return nil
}

// SegmentationID returns the tagged ID.
func (a *Actor) SegmentationID() uint8 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.segID
}

// SetRigidTransform moves the actor.
func (a *Actor) SetRigidTransform(pose spatialmath.Pose) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.transform = pose
	return nil
}

// Transform returns the current commanded pose.
func (a *Actor) Transform() spatialmath.Pose {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.transform
}

// SetLinearVelocity sets the linear velocity.
func (a *Actor) SetLinearVelocity(v r3.Vector) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.linVel = v
	return nil
}

// LinearVelocity returns the commanded linear velocity.
func (a *Actor) LinearVelocity() r3.Vector {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.linVel
}

// SetAngularVelocity sets the angular velocity.
func (a *Actor) SetAngularVelocity(v r3.Vector) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.angVel = v
	return nil
}

// AngularVelocity returns the commanded angular velocity.
func (a *Actor) AngularVelocity() r3.Vector {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.angVel
}

// SetGravityEnabled toggles gravity on the actor.
func (a *Actor) SetGravityEnabled(enabled bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.gravity = enabled
	return nil
}

// GravityEnabled reports whether gravity acts on the actor.
func (a *Actor) GravityEnabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gravity
}

// Camera is a fake engine.Camera.
type Camera struct {
	mu        sync.Mutex
	props     camera.SensorProperties
	transform spatialmath.Pose
	depth     []float32
	seg       []uint8
}

// SetTransform moves the camera sensor.
func (c *Camera) SetTransform(pose spatialmath.Pose) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transform = pose
	return nil
}

// Transform returns the camera pose.
func (c *Camera) Transform() spatialmath.Pose {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transform
}

func (c *Camera) render(segID uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, h := c.props.Width, c.props.Height
	c.depth = make([]float32, w*h)
	c.seg = make([]uint8, w*h)
	background := float32(-c.props.FarPlane)
	object := background / 2
	for i := range c.depth {
		c.depth[i] = background
	}

	side := min(w, h) / 4
	x0, y0 := (w-side)/2, (h-side)/2
	for y := y0; y < y0+side; y++ {
		for x := x0; x < x0+side; x++ {
			idx := y*w + x
			c.depth[idx] = object
			c.seg[idx] = segID
		}
	}
}

// DepthBuffer returns the depth frame from the last step.
func (c *Camera) DepthBuffer() ([]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.depth == nil {
		return nil, errors.New("no frame rendered yet")
	}
	return c.depth, nil
}

// SegmentationBuffer returns the segmentation frame from the last step.
func (c *Camera) SegmentationBuffer() ([]uint8, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seg == nil {
		return nil, errors.New("no frame rendered yet")
	}
	return c.seg, nil
}
