package bodycrop

import (
	"github.com/pkg/errors"
	"github.com/swdee/go-bodycrop/preprocess"
)

// ErrInvalidConfig is returned when the Dataset configuration can not be used
var ErrInvalidConfig = errors.New("invalid configuration")

// DefaultImageSize is the edge length of the cropped image, mask and
// landmark frame
const DefaultImageSize = 512

// Config defines the Dataset parameters
type Config struct {
	// SamplesDir is the directory holding the per frame files, it is only
	// read when no custom Source is given
	SamplesDir string
	// ImageSize is the edge length of the square image, mask and landmark
	// frame.  Vertices and intrinsics use half this size.
	ImageSize int
	// VertexIndices selects the subset of body model vertices kept for
	// every sample
	VertexIndices []int
	// Box is the policy growing the projected vertex bounds into the crop
	// window
	Box preprocess.BoxPolicy
}

// DefaultConfig returns a Config with default image size and box policy, the
// samples directory and vertex indices still need setting
func DefaultConfig() Config {
	return Config{
		ImageSize: DefaultImageSize,
		Box:       preprocess.DefaultBoxPolicy(),
	}
}

// InputSize returns the edge length of the frame vertices and intrinsics are
// mapped into
func (c Config) InputSize() int {
	return c.ImageSize / 2
}

// Validate checks the configuration
func (c Config) Validate() error {

	if c.ImageSize < 2 {
		return errors.Wrapf(ErrInvalidConfig, "image size %d must be at least 2", c.ImageSize)
	}

	if len(c.VertexIndices) == 0 {
		return errors.Wrap(ErrInvalidConfig, "no vertex indices")
	}

	for i, v := range c.VertexIndices {
		if v < 0 {
			return errors.Wrapf(ErrInvalidConfig, "vertex index %d at position %d is negative", v, i)
		}
	}

	if err := c.Box.Validate(); err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}

	return nil
}
