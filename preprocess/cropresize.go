package preprocess

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
	"github.com/swdee/go-bodycrop/camera"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrInvalidSize is returned when the target size of a crop is not positive
	ErrInvalidSize = errors.New("crop target size must be positive")
	// ErrDegenerateBox is returned when the crop box has no area
	ErrDegenerateBox = errors.New("crop box has non positive width or height")
)

// CropResize defines the single affine mapping from a Box in source pixel
// coordinates onto a square size×size target frame.  The same instance is
// used to remap raster data, 2D points and the camera so that all modalities
// stay aligned after resizing.
type CropResize struct {
	// box is the crop window in source pixel coordinates
	box Box
	// size is the edge length of the square target frame
	size int
	// scale factors from source pixels to target pixels
	scaleX float64
	scaleY float64
	// affine is the 3x3 homogeneous form of the mapping
	affine *mat.Dense
}

// NewCropResize returns the crop-resize transform mapping box onto
// [0, size) × [0, size).  The mapping is a translate by (-left, -top) followed
// by a scale of (size/width, size/height).
func NewCropResize(box Box, size int) (*CropResize, error) {

	if size <= 0 {
		return nil, errors.Wrapf(ErrInvalidSize, "got %d", size)
	}

	if !(box.Width() > 0) || !(box.Height() > 0) {
		return nil, errors.Wrapf(ErrDegenerateBox, "box %s", box)
	}

	c := &CropResize{
		box:  box,
		size: size,
	}

	// precalculate scaling factors and the homogeneous matrix
	c.preCalc()

	return c, nil
}

// preCalc the scale factors and affine matrix for the crop
func (c *CropResize) preCalc() {

	c.scaleX = float64(c.size) / c.box.Width()
	c.scaleY = float64(c.size) / c.box.Height()

	c.affine = mat.NewDense(3, 3, []float64{
		c.scaleX, 0, -c.box.Left * c.scaleX,
		0, c.scaleY, -c.box.Top * c.scaleY,
		0, 0, 1,
	})
}

// Box returns the crop window in source pixel coordinates
func (c *CropResize) Box() Box {
	return c.box
}

// Size returns the edge length of the square target frame
func (c *CropResize) Size() int {
	return c.size
}

// ScaleX returns the horizontal scale factor from source to target pixels
func (c *CropResize) ScaleX() float64 {
	return c.scaleX
}

// ScaleY returns the vertical scale factor from source to target pixels
func (c *CropResize) ScaleY() float64 {
	return c.scaleY
}

// Matrix returns a copy of the 3x3 homogeneous affine matrix
func (c *CropResize) Matrix() *mat.Dense {
	return mat.DenseCopyOf(c.affine)
}

// Apply maps a source pixel coordinate into the target frame
func (c *CropResize) Apply(x, y float64) (float64, float64) {
	return (x - c.box.Left) * c.scaleX, (y - c.box.Top) * c.scaleY
}

// Inverse maps a target frame coordinate back into the source image
func (c *CropResize) Inverse(x, y float64) (float64, float64) {
	return x/c.scaleX + c.box.Left, y/c.scaleY + c.box.Top
}

// warpMatrix returns the 2x3 matrix for gocv.WarpAffine.  OpenCV places pixel
// centers on integer coordinates whilst our coordinates place them at +0.5,
// so the translation is shifted on both sides of the mapping.
func (c *CropResize) warpMatrix() gocv.Mat {

	m := gocv.NewMatWithSize(2, 3, gocv.MatTypeCV64F)

	m.SetDoubleAt(0, 0, c.scaleX)
	m.SetDoubleAt(0, 1, 0)
	m.SetDoubleAt(0, 2, (0.5-c.box.Left)*c.scaleX-0.5)
	m.SetDoubleAt(1, 0, 0)
	m.SetDoubleAt(1, 1, c.scaleY)
	m.SetDoubleAt(1, 2, (0.5-c.box.Top)*c.scaleY-0.5)

	return m
}

// WarpImage resamples the source raster (image or mask) into a size×size
// destination using bilinear interpolation.  Samples falling outside the
// source image are zero filled.
func (c *CropResize) WarpImage(src gocv.Mat, dst *gocv.Mat) error {

	if src.Empty() {
		return errors.New("error source Mat is empty")
	}

	m := c.warpMatrix()
	defer m.Close()

	gocv.WarpAffineWithParams(src, dst, m, image.Pt(c.size, c.size),
		gocv.InterpolationLinear, gocv.BorderConstant, color.RGBA{})

	return nil
}

// TransformPoints applies the mapping to the first two columns of the N×K
// point matrix and returns a new matrix.  Any further columns, such as a
// keypoint confidence, are copied unchanged.
func (c *CropResize) TransformPoints(points mat.Matrix) *mat.Dense {

	out := mat.DenseCopyOf(points)
	rows, _ := out.Dims()

	for i := 0; i < rows; i++ {
		x, y := c.Apply(out.At(i, 0), out.At(i, 1))
		out.Set(i, 0, x)
		out.Set(i, 1, y)
	}

	return out
}

// TransformCamera remaps homogeneous projected vertices (verts · Kᵀ) and the
// intrinsics K into the target frame.  The new intrinsics are A·K, so
// projecting the original 3D vertices through them gives verts · Aᵀ, which
// after perspective division equals TransformPoints on the original pixels.
func (c *CropResize) TransformCamera(verts, k mat.Matrix) (*mat.Dense, *mat.Dense, error) {

	if err := camera.CheckShapes(verts, k); err != nil {
		return nil, nil, err
	}

	var newVerts, newK mat.Dense
	newVerts.Mul(verts, c.affine.T())
	newK.Mul(c.affine, k)

	return &newVerts, &newK, nil
}
