package capture

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sbinet/npyio"
	"go.uber.org/multierr"
)

// Writer persists sample triples under <dir>/data. Depth and mask are
// written flat in row-major order; consumers recover the image shape from
// the configuration snapshot saved beside the data directory.
type Writer struct {
	dataDir string
	padding int
}

// NewWriter creates the dataset data directory and returns a writer naming
// files with the given zero-padding width.
func NewWriter(dir string, padding int) (*Writer, error) {
	if padding <= 0 {
		return nil, errors.Errorf("zero padding width must be positive, got %d", padding)
	}
	dataDir := filepath.Join(dir, "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating dataset data directory")
	}
	return &Writer{dataDir: dataDir, padding: padding}, nil
}

// WriteSample writes the three artifacts of one sample, named by role and
// the zero-padded global sample index. The triple is written atomically:
// artifacts land under temporary names and are renamed only once all three
// writes succeed, so a failure never leaves a mismatched partial sample.
func (w *Writer) WriteSample(index int, f Frame) (err error) {
	suffix := fmt.Sprintf("_%0*d.npy", w.padding, index)

	paths := make([]string, 0, 3)
	defer func() {
		if err == nil {
			return
		}
		// an artifact failed: drop every temporary and already-finalized
		// piece of this sample so no partial triple survives
		for _, p := range paths {
			err = multierr.Combine(err,
				ignoreNotExist(os.Remove(p+".tmp")),
				ignoreNotExist(os.Remove(p)))
		}
	}()

	for _, artifact := range []struct {
		role string
		data interface{}
	}{
		{"image", f.Depth},
		{"mask", f.Mask},
		{"pose", f.Pose[:]},
	} {
		path := filepath.Join(w.dataDir, artifact.role+suffix)
		paths = append(paths, path)
		if err = writeNpy(path+".tmp", artifact.data); err != nil {
			return errors.Wrapf(err, "writing %s artifact of sample %d", artifact.role, index)
		}
	}
	for _, path := range paths {
		if err = os.Rename(path+".tmp", path); err != nil {
			return errors.Wrapf(err, "finalizing sample %d", index)
		}
	}
	return nil
}

func writeNpy(path string, data interface{}) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return npyio.Write(f, data)
}

func ignoreNotExist(err error) error {
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
