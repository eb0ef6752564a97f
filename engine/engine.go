// Package engine defines the narrow contract this tool needs from a physics
// and rendering engine: environment and actor creation, rigid transform and
// velocity mutation, one blocking batched simulate+render step, and
// per-camera depth/segmentation readback. Nothing here depends on a
// particular engine's full API.
package engine

import (
	"context"

	"github.com/golang/geo/r3"

	"github.com/Hongyoungjin/posenet-datagen-isaac/camera"
	"github.com/Hongyoungjin/posenet-datagen-isaac/spatialmath"
)

// Options carry the engine-level simulation parameters consumed once at
// startup.
type Options struct {
	DT               float64
	NumThreads       int
	ComputeDeviceID  int
	GraphicsDeviceID int
	UseGPU           bool
	Headless         bool
}

// Plane describes the ground plane added to the simulation.
type Plane struct {
	Normal          r3.Vector
	Distance        float64
	StaticFriction  float64
	DynamicFriction float64
	Restitution     float64
}

// GroundPlane is the flat Z-up ground every scene rests on.
func GroundPlane() Plane {
	return Plane{
		Normal:          r3.Vector{Z: 1},
		StaticFriction:  0.3,
		DynamicFriction: 0.15,
	}
}

// EnvSpacing bounds the local extent of each environment and lays the
// environments out on a grid, PerRow per row.
type EnvSpacing struct {
	Lower  r3.Vector
	Upper  r3.Vector
	PerRow int
}

// AssetOptions control how a rigid-body asset is imported.
type AssetOptions struct {
	Armature            float64
	FixBaseLink         bool
	Thickness           float64
	OverrideInertia     bool
	ConvexDecomposition ConvexDecompositionParams
}

// ConvexDecompositionParams tune the convex decomposition of the collision
// mesh.
type ConvexDecompositionParams struct {
	Enabled            bool
	Resolution         int
	MaxConvexHulls     int
	MaxVerticesPerHull int
}

// Asset is an opaque handle to a loaded rigid-body asset.
type Asset interface {
	Name() string
}

// Engine is the simulation/render collaborator. Step is a single blocking
// call that advances physics and renders every camera sensor; buffers read
// from cameras afterwards reflect that step.
type Engine interface {
	LoadAsset(root, file string, opts AssetOptions) (Asset, error)
	AddGround(plane Plane) error
	CreateEnv(spacing EnvSpacing) (Env, error)
	Step(ctx context.Context) error
	// DrawAxes draws a debug axis triad at the given pose in every
	// environment; a no-op when no viewer is attached.
	DrawAxes(pose spatialmath.Pose, scale float64) error
	// ClearDebugLines drops debug lines accumulated by previous iterations.
	ClearDebugLines()
	Close() error
}

// Env is one simulated scene.
type Env interface {
	CreateActor(asset Asset, pose spatialmath.Pose, name string) (Actor, error)
	CreateCamera(props camera.SensorProperties) (Camera, error)
}

// Actor is one rigid body within an environment.
type Actor interface {
	SetSegmentationID(id uint8) error
	SetRigidTransform(pose spatialmath.Pose) error
	SetLinearVelocity(v r3.Vector) error
	SetAngularVelocity(v r3.Vector) error
	SetGravityEnabled(enabled bool) error
}

// Camera is one camera sensor within an environment. Buffers are row-major
// with the dimensions the camera was created with. Depth values follow the
// engine convention of negative range along the optical axis; segmentation
// values are per-instance IDs with 0 for background.
type Camera interface {
	SetTransform(pose spatialmath.Pose) error
	DepthBuffer() ([]float32, error)
	SegmentationBuffer() ([]uint8, error)
}
