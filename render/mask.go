package render

import (
	"image/color"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// MaskOverlay renders a segmentation mask as a transparent overlay on the
// CV8UC3 BGR image.  The mask is a CV32FC3 Mat in [0,1] of the same size, its
// first channel scales alpha per pixel.
func MaskOverlay(img *gocv.Mat, mask gocv.Mat, clr color.RGBA, alpha float32) error {

	// get dimensions
	width := img.Cols()
	height := img.Rows()

	if mask.Cols() != width || mask.Rows() != height {
		return errors.Errorf("mask %dx%d does not match image %dx%d",
			mask.Cols(), mask.Rows(), width, height)
	}

	if img.Type() != gocv.MatTypeCV8UC3 || mask.Type() != gocv.MatTypeCV32FC3 {
		return errors.Errorf("overlay needs a CV8UC3 image and CV32FC3 mask, got %v and %v",
			img.Type(), mask.Type())
	}

	maskData, err := mask.DataPtrFloat32()

	if err != nil {
		return errors.Wrap(err, "error reading mask")
	}

	// it is too slow to manipulate pixel by pixel using GoCV due to slowness
	// over CGO.  So we copy the bytes from the source image and manipulate
	// the bytes directly before copying back to a Mat
	imgData := img.ToBytes()

	for j := 0; j < height; j++ {
		for k := 0; k < width; k++ {

			// calculate position in the byte slice
			pixelPos := j*width*3 + k*3

			a := alpha * clamp01(maskData[pixelPos])

			if a == 0 {
				continue
			}

			// get original pixel colors directly from the byte slice
			b, g, r := imgData[pixelPos+0], imgData[pixelPos+1], imgData[pixelPos+2]

			// calculate blended colors based on alpha transparency
			imgData[pixelPos+0] = uint8(float32(b)*(1-a) + float32(clr.B)*a)
			imgData[pixelPos+1] = uint8(float32(g)*(1-a) + float32(clr.G)*a)
			imgData[pixelPos+2] = uint8(float32(r)*(1-a) + float32(clr.R)*a)
		}
	}

	// copy back to the original mat
	tmpImg, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC3, imgData)

	if err != nil {
		return errors.Wrap(err, "error creating Mat from bytes")
	}

	defer tmpImg.Close()
	tmpImg.CopyTo(img)

	return nil
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
