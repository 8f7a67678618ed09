package preprocess

import (
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNoPoints is returned when a bounding box is requested for an empty
	// point set
	ErrNoPoints = errors.New("no points to bound")
	// ErrInvalidPolicy is returned when a BoxPolicy has non positive values
	ErrInvalidPolicy = errors.New("invalid box policy")
)

// Box is a left, top, right, bottom region in pixel coordinates of the
// source image
type Box struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Width of the box
func (b Box) Width() float64 {
	return b.Right - b.Left
}

// Height of the box
func (b Box) Height() float64 {
	return b.Bottom - b.Top
}

// Contains reports whether the point lies inside the box, edges included
func (b Box) Contains(x, y float64) bool {
	return x >= b.Left && x <= b.Right && y >= b.Top && y <= b.Bottom
}

// Rect returns the box as an r2.Rect
func (b Box) Rect() r2.Rect {
	return r2.RectFromPoints(r2.Point{X: b.Left, Y: b.Top}, r2.Point{X: b.Right, Y: b.Bottom})
}

func (b Box) String() string {
	return fmt.Sprintf("[%.2f, %.2f, %.2f, %.2f]", b.Left, b.Top, b.Right, b.Bottom)
}

// boxFromRect converts an r2.Rect back into LTRB form
func boxFromRect(r r2.Rect) Box {
	return Box{
		Left:   r.X.Lo,
		Top:    r.Y.Lo,
		Right:  r.X.Hi,
		Bottom: r.Y.Hi,
	}
}

// BoxPolicy defines how the tight bounds of a point set are grown into the
// crop window
type BoxPolicy struct {
	// Scale multiplies the width and height of the tight box about its center.
	// A value of 1.0 keeps the tight box, smaller values are rejected
	Scale float64
	// Square grows the shorter side of the box to match the longer side so the
	// crop window keeps the aspect ratio of a square output
	Square bool
	// MinExtent is the smallest width or height in pixels the tight box may
	// have before scaling.  Degenerate point sets are grown to this size
	MinExtent float64
}

// DefaultBoxPolicy returns the policy used when none is configured:
// - Scale: 1.0
// - Square: true
// - MinExtent: 1 pixel
func DefaultBoxPolicy() BoxPolicy {
	return BoxPolicy{
		Scale:     1.0,
		Square:    true,
		MinExtent: 1.0,
	}
}

// Validate checks the policy values are usable
func (p BoxPolicy) Validate() error {

	if p.Scale < 1 {
		return errors.Wrapf(ErrInvalidPolicy, "scale %v must be at least 1", p.Scale)
	}

	if p.MinExtent <= 0 {
		return errors.Wrapf(ErrInvalidPolicy, "minimum extent %v must be positive", p.MinExtent)
	}

	return nil
}

// EstimateBox returns the crop window enclosing the given N×2 (or wider, only
// the first two columns are read) point set.  The tight min/max bounds are
// floored at MinExtent, scaled about their center and optionally squared.
func EstimateBox(points mat.Matrix, policy BoxPolicy) (Box, error) {

	if err := policy.Validate(); err != nil {
		return Box{}, err
	}

	rows, cols := points.Dims()

	if rows == 0 || cols < 2 {
		return Box{}, errors.Wrapf(ErrNoPoints, "point set is %dx%d", rows, cols)
	}

	pts := make([]r2.Point, rows)

	for i := 0; i < rows; i++ {
		pts[i] = r2.Point{X: points.At(i, 0), Y: points.At(i, 1)}
	}

	rect := r2.RectFromPoints(pts...)

	// floor the extent so a single point or a line still gives an area
	size := rect.Size()
	size.X = max(size.X, policy.MinExtent)
	size.Y = max(size.Y, policy.MinExtent)

	size = size.Mul(policy.Scale)

	if policy.Square {
		side := max(size.X, size.Y)
		size = r2.Point{X: side, Y: side}
	}

	// union with the tight bounds so rounding in the center/size round trip
	// never leaves an input point outside
	grown := r2.RectFromCenterSize(rect.Center(), size).Union(rect)

	return boxFromRect(grown), nil
}
