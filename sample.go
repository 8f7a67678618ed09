package bodycrop

import (
	"github.com/pkg/errors"
	"github.com/swdee/go-bodycrop/bodymodel"
	"github.com/swdee/go-bodycrop/preprocess"
	"go.uber.org/multierr"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"
)

// names of the sample outputs
const (
	KeyImage      = "real_rgb"
	KeyMask       = "real_segm"
	KeyLandmarks  = "landmarks"
	KeyVertices   = "verts"
	KeyIntrinsics = "K"
	KeyGender     = bodymodel.KeyGender
)

// Sample is one assembled frame with every modality mapped into the crop
type Sample struct {
	// FrameID is the identifier the sample was assembled from
	FrameID string
	// Image is the ImageSize×ImageSize CV32FC3 RGB image, masked and mapped
	// to [-1, 1]
	Image gocv.Mat
	// Mask is the ImageSize×ImageSize CV32FC3 segmentation mask in [0, 1]
	Mask gocv.Mat
	// Landmarks is the N×3 x, y, confidence matrix in ImageSize pixels
	Landmarks *mat.Dense
	// Vertices is the M×3 homogeneous projection of the selected body model
	// vertices through K
	Vertices *mat.Dense
	// K is the 3x3 intrinsics mapped into the InputSize frame
	K *mat.Dense
	// Params are the body model parameters with truncated hand poses and the
	// camera intrinsics removed
	Params *bodymodel.Params
	// Box is the crop window in source pixel coordinates
	Box preprocess.Box
}

// Close frees the Mats held by the sample
func (s *Sample) Close() error {
	return multierr.Combine(s.Image.Close(), s.Mask.Close())
}

// Tensors returns the sample as a flat mapping of named outputs.  Images are
// CHW tensors, matrices keep their rows×cols shape, body model parameters
// have a leading singleton dimension removed and the gender is returned as a
// one element []string.
func (s *Sample) Tensors() (map[string]any, error) {

	out := make(map[string]any)

	img, err := TensorFromMat(s.Image)

	if err != nil {
		return nil, errors.Wrap(err, KeyImage)
	}

	mask, err := TensorFromMat(s.Mask)

	if err != nil {
		return nil, errors.Wrap(err, KeyMask)
	}

	out[KeyImage] = img
	out[KeyMask] = mask
	out[KeyLandmarks] = TensorFromDense(s.Landmarks)
	out[KeyVertices] = TensorFromDense(s.Vertices)
	out[KeyIntrinsics] = TensorFromDense(s.K)

	if s.Params != nil {
		for name, a := range s.Params.Arrays() {
			out[name] = TensorFromArray(a.Squeeze())
		}

		out[KeyGender] = []string{s.Params.Gender}
	}

	return out, nil
}
