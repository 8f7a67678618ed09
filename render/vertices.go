package render

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"
)

// Vertices renders homogeneous projected vertices as dots.  Each row is
// divided through by its third column and multiplied by scale, so vertices
// projected into a frame of half the image size are drawn with a scale of 2.
// Vertices at or behind the camera are skipped.
func Vertices(img *gocv.Mat, verts mat.Matrix, scale float64, clr color.RGBA, radius int) {

	rows, _ := verts.Dims()

	for i := 0; i < rows; i++ {

		z := verts.At(i, 2)

		if z <= 0 {
			continue
		}

		x := verts.At(i, 0) / z * scale
		y := verts.At(i, 1) / z * scale

		gocv.Circle(img, image.Pt(int(x), int(y)), radius, clr, -1)
	}
}
