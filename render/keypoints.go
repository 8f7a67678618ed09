package render

import (
	"image"

	"github.com/swdee/go-bodycrop/keypoints"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"
)

var (
	// skeleton defines the OpenPose BODY_25 points to draw lines between.  The
	// numbers are paired, so (1,8) means draw line from neck to mid hip.
	skeleton = [48]int{1, 8, 1, 2, 1, 5, 2, 3, 3, 4, 5, 6, 6, 7, 8, 9, 9, 10,
		10, 11, 8, 12, 12, 13, 13, 14, 1, 0, 0, 15, 15, 17, 0, 16, 16, 18,
		14, 19, 19, 20, 14, 21, 11, 22, 22, 23, 11, 24}
)

// LandmarkStyle defines the parameters for rendering landmarks
type LandmarkStyle struct {
	// MinConfidence is the confidence a landmark must exceed to be drawn
	MinConfidence float64
	// Radius of the joint circles
	Radius int
	// LineThickness of the skeleton lines, zero skips the skeleton
	LineThickness int
}

// DefaultLandmarkStyle returns default landmark style settings
func DefaultLandmarkStyle() LandmarkStyle {
	return LandmarkStyle{
		MinConfidence: 0,
		Radius:        2,
		LineThickness: 1,
	}
}

// Landmarks renders the N×3 x, y, confidence landmark matrix on the image.
// Rows follow the pose, face, right hand, left hand layout and are colored by
// part, the pose rows are joined by the BODY_25 skeleton.
func Landmarks(img *gocv.Mat, landmarks mat.Matrix, style LandmarkStyle) {

	rows, _ := landmarks.Dims()

	visible := func(i int) bool {
		return i < rows && landmarks.At(i, 2) > style.MinConfidence
	}

	point := func(i int) image.Point {
		return image.Pt(int(landmarks.At(i, 0)), int(landmarks.At(i, 1)))
	}

	// draw skeleton lines
	if style.LineThickness > 0 {
		for j := 0; j < len(skeleton)/2; j++ {
			a, b := skeleton[2*j], skeleton[2*j+1]

			if !visible(a) || !visible(b) {
				continue
			}

			gocv.Line(img, point(a), point(b),
				posePalette[j%len(posePalette)], style.LineThickness)
		}
	}

	// draw circles at each landmark
	for i := 0; i < rows; i++ {
		if !visible(i) {
			continue
		}

		gocv.Circle(img, point(i), style.Radius, partColors[landmarkPart(i)], -1)
	}
}

// landmarkPart returns the OpenPose part a landmark row belongs to
func landmarkPart(i int) int {

	switch {
	case i < keypoints.PoseKeyPoints:
		return 0
	case i < keypoints.PoseKeyPoints+keypoints.FaceKeyPoints:
		return 1
	case i < keypoints.PoseKeyPoints+keypoints.FaceKeyPoints+keypoints.HandKeyPoints:
		return 2
	default:
		return 3
	}
}
