package render

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

type Alignment int

const (
	Left   Alignment = 1
	Center Alignment = 2
	Right  Alignment = 3
)

// Font defines the parameters for rendering text on an image using GoCV
type Font struct {
	Face      gocv.HersheyFont
	Scale     float64
	Color     color.RGBA
	Thickness int
	LineType  gocv.LineType
	// Padding to place around text
	LeftPad   int
	RightPad  int
	TopPad    int
	BottomPad int
	// Alignment of the text label to the bounding box
	Alignment Alignment
}

// DefaultFont returns default font settings
func DefaultFont() Font {
	return Font{
		Face:      gocv.FontHersheySimplex,
		Scale:     0.4,
		Color:     Black,
		Thickness: 1,
		LineType:  gocv.LineAA,
		LeftPad:   3,
		RightPad:  3,
		TopPad:    3,
		BottomPad: 4,
		Alignment: Left,
	}
}

// Label writes text onto the CV8UC3 BGR image with its baseline starting at
// pt, using the fixed 7x13 bitmap face.  Unlike the Hershey fonts it renders
// legibly at the small sizes of a cropped sample.
func Label(img *gocv.Mat, text string, pt image.Point, clr color.RGBA) error {

	if img.Type() != gocv.MatTypeCV8UC3 {
		return errors.Errorf("label needs a CV8UC3 image, got %v", img.Type())
	}

	width := img.Cols()
	height := img.Rows()

	// draw text onto a transparent canvas the size of the image
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))

	dr := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(clr),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(pt.X, pt.Y),
	}
	dr.DrawString(text)

	imgData := img.ToBytes()

	// copy every drawn pixel across as BGR
	for j := 0; j < height; j++ {
		for k := 0; k < width; k++ {

			c := canvas.RGBAAt(k, j)

			if c.A == 0 {
				continue
			}

			pixelPos := j*width*3 + k*3
			imgData[pixelPos+0] = c.B
			imgData[pixelPos+1] = c.G
			imgData[pixelPos+2] = c.R
		}
	}

	tmpImg, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC3, imgData)

	if err != nil {
		return errors.Wrap(err, "error creating Mat from bytes")
	}

	defer tmpImg.Close()
	tmpImg.CopyTo(img)

	return nil
}
