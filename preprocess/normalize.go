package preprocess

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// ToTanhValue maps a pixel value from [0,1] to [-1,1]
func ToTanhValue(v float32) float32 {
	return v*2 - 1
}

// FromTanhValue maps a pixel value from [-1,1] back to [0,1]
func FromTanhValue(v float32) float32 {
	return (v + 1) / 2
}

// ToTanh maps every element of the float32 src Mat from [0,1] to [-1,1]
func ToTanh(src gocv.Mat, dst *gocv.Mat) {
	src.ConvertToWithParams(dst, src.Type(), 2, -1)
}

// FromTanh maps every element of the float32 src Mat from [-1,1] to [0,1]
func FromTanh(src gocv.Mat, dst *gocv.Mat) {
	src.ConvertToWithParams(dst, src.Type(), 0.5, 0.5)
}

// Composite multiplies every channel of img by the first channel of mask,
// zeroing the background.  Both Mats must be float32 and of equal size with
// three channels.
func Composite(img, mask gocv.Mat, dst *gocv.Mat) error {

	if img.Rows() != mask.Rows() || img.Cols() != mask.Cols() {
		return errors.Errorf("image %dx%d and mask %dx%d differ in size",
			img.Cols(), img.Rows(), mask.Cols(), mask.Rows())
	}

	if img.Type() != gocv.MatTypeCV32FC3 || mask.Type() != gocv.MatTypeCV32FC3 {
		return errors.Errorf("composite needs CV32FC3 Mats, got types %v and %v",
			img.Type(), mask.Type())
	}

	channels := gocv.Split(mask)

	defer func() {
		for _, ch := range channels {
			ch.Close()
		}
	}()

	// replicate the first mask channel across all image channels
	alpha := gocv.NewMat()
	defer alpha.Close()
	gocv.Merge([]gocv.Mat{channels[0], channels[0], channels[0]}, &alpha)

	gocv.Multiply(img, alpha, dst)

	return nil
}
