package render

import (
	"github.com/pkg/errors"
	"github.com/swdee/go-bodycrop/preprocess"
	"gocv.io/x/gocv"
)

// ToBGR8 converts a sample image, CV32FC3 RGB in [-1,1], back into a
// displayable CV8UC3 BGR Mat
func ToBGR8(src gocv.Mat, dst *gocv.Mat) error {

	if src.Type() != gocv.MatTypeCV32FC3 {
		return errors.Errorf("expected a CV32FC3 image, got %v", src.Type())
	}

	unit := gocv.NewMat()
	defer unit.Close()
	preprocess.FromTanh(src, &unit)

	return MaskToBGR8(unit, dst)
}

// MaskToBGR8 converts a CV32FC3 RGB Mat in [0,1], such as a sample mask, into
// a CV8UC3 BGR Mat.  Values outside [0,1] saturate.
func MaskToBGR8(src gocv.Mat, dst *gocv.Mat) error {

	if src.Type() != gocv.MatTypeCV32FC3 {
		return errors.Errorf("expected a CV32FC3 image, got %v", src.Type())
	}

	rgb := gocv.NewMat()
	defer rgb.Close()
	src.ConvertToWithParams(&rgb, gocv.MatTypeCV8UC3, 255, 0)

	gocv.CvtColor(rgb, dst, gocv.ColorRGBToBGR)

	return nil
}
