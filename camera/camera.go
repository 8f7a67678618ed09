// Package camera provides pinhole projection of 3D vertices through a 3x3
// camera intrinsics matrix.
package camera

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrShapeMismatch is returned when vertices and intrinsics do not have the
// expected M×3 and 3×3 dimensions
var ErrShapeMismatch = errors.New("vertex and intrinsics shape mismatch")

// NewIntrinsics returns a 3x3 intrinsics matrix with focal lengths fx, fy and
// principal point cx, cy
func NewIntrinsics(fx, fy, cx, cy float64) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		fx, 0, cx,
		0, fy, cy,
		0, 0, 1,
	})
}

// CheckShapes validates that verts is M×3 and k is 3×3
func CheckShapes(verts, k mat.Matrix) error {

	vr, vc := verts.Dims()
	kr, kc := k.Dims()

	if vc != 3 || vr == 0 || kr != 3 || kc != 3 {
		return errors.Wrapf(ErrShapeMismatch, "vertices %dx%d, intrinsics %dx%d",
			vr, vc, kr, kc)
	}

	return nil
}

// Project re-expresses the M×3 vertices in homogeneous pixel space by right
// multiplying each vertex by the transpose of the intrinsics, ie: verts · Kᵀ.
// The z column of the result keeps the depth needed for perspective division.
func Project(verts, k mat.Matrix) (*mat.Dense, error) {

	if err := CheckShapes(verts, k); err != nil {
		return nil, err
	}

	var out mat.Dense
	out.Mul(verts, k.T())

	return &out, nil
}

// Dehomogenize divides the x and y columns of the homogeneous M×3 points by
// their z column and returns an M×2 matrix of pixel coordinates
func Dehomogenize(p mat.Matrix) *mat.Dense {

	rows, _ := p.Dims()
	out := mat.NewDense(rows, 2, nil)

	for i := 0; i < rows; i++ {
		z := p.At(i, 2)
		out.Set(i, 0, p.At(i, 0)/z)
		out.Set(i, 1, p.At(i, 1)/z)
	}

	return out
}
