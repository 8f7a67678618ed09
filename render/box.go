package render

import (
	"image"
	"image/color"

	"github.com/swdee/go-bodycrop/preprocess"
	"gocv.io/x/gocv"
)

// Box renders a crop box with an optional text label above it.  The box is
// given in the pixel coordinates of img.
func Box(img *gocv.Mat, box preprocess.Box, text string, clr color.RGBA,
	font Font, lineThickness int) {

	rect := image.Rect(int(box.Left), int(box.Top), int(box.Right), int(box.Bottom))
	gocv.Rectangle(img, rect, clr, lineThickness)

	if text == "" {
		return
	}

	textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)

	// Calculate the alignment of text label
	var centerX int

	switch font.Alignment {
	case Center:
		centerX = (rect.Min.X + rect.Max.X) / 2

	case Right:
		centerX = rect.Max.X - (textSize.X / 2) - font.RightPad + (lineThickness / 2)

	case Left:
		fallthrough
	default:
		centerX = rect.Min.X + (textSize.X / 2) + font.LeftPad - (lineThickness / 2)
	}

	// keep the label on the image when the box touches the top edge
	top := rect.Min.Y

	if top-textSize.Y-font.TopPad-font.BottomPad < 0 {
		top = textSize.Y + font.TopPad + font.BottomPad
	}

	// Adjust the label position so the text is centered horizontally
	labelPosition := image.Pt(centerX-textSize.X/2, top-font.BottomPad)

	// draw box text gets written on
	bRect := image.Rect(centerX-textSize.X/2-font.LeftPad,
		top-textSize.Y-font.TopPad-font.BottomPad,
		centerX+textSize.X/2+font.RightPad, top)
	gocv.Rectangle(img, bRect, clr, -1)

	// Draw the label over box
	gocv.PutTextWithParams(img, text, labelPosition,
		font.Face, font.Scale, font.Color, font.Thickness,
		font.LineType, false)
}
