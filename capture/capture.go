// Package capture reads depth and segmentation buffers back from every
// environment's camera after a render step and persists one sample triple
// per environment as NumPy .npy artifacts.
package capture

import (
	"github.com/pkg/errors"

	"github.com/Hongyoungjin/posenet-datagen-isaac/scene"
	"github.com/Hongyoungjin/posenet-datagen-isaac/spatialmath"
)

// Frame is one environment's sample for one iteration: depth image, boolean
// object mask, and the object pose as [px, py, pz, qx, qy, qz, qw]. Frames
// are ephemeral; they are produced and immediately persisted.
type Frame struct {
	Depth []float32
	Mask  []bool
	Pose  [7]float32
}

// PoseVector converts a pose to its 7-element float32 export form.
func PoseVector(p spatialmath.Pose) [7]float32 {
	q := spatialmath.Normalize(p.Orientation)
	return [7]float32{
		float32(p.Point.X), float32(p.Point.Y), float32(p.Point.Z),
		float32(q.Imag), float32(q.Jmag), float32(q.Kmag), float32(q.Real),
	}
}

// Read fetches one frame per environment. The engine returns negative-range
// depth, which is negated so depth is stored as positive distance; the
// segmentation buffer is reduced to an object-vs-background boolean mask,
// which loses nothing while each environment holds a single object. poses
// must be the composed object poses of the current iteration, in environment
// order.
func Read(set *scene.Set, poses []spatialmath.Pose) ([]Frame, error) {
	if len(poses) != set.NumEnvs() {
		return nil, errors.Errorf("got %d poses for %d environments", len(poses), set.NumEnvs())
	}
	frames := make([]Frame, set.NumEnvs())
	for i := 0; i < set.NumEnvs(); i++ {
		raw, err := set.Camera(i).DepthBuffer()
		if err != nil {
			return nil, errors.Wrapf(err, "reading depth buffer of environment %d", i)
		}
		depth := make([]float32, len(raw))
		for j, d := range raw {
			depth[j] = -d
		}

		seg, err := set.Camera(i).SegmentationBuffer()
		if err != nil {
			return nil, errors.Wrapf(err, "reading segmentation buffer of environment %d", i)
		}
		mask := make([]bool, len(seg))
		for j, id := range seg {
			mask[j] = id != 0
		}

		frames[i] = Frame{Depth: depth, Mask: mask, Pose: PoseVector(poses[i])}
	}
	return frames, nil
}
