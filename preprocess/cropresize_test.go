package preprocess

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-bodycrop/camera"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"
)

// newFloatMat returns a rows×cols CV32FC3 Mat with every element set by fn
func newFloatMat(t *testing.T, rows, cols int, fn func(r, c, ch int) float32) gocv.Mat {

	m := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV32FC3)

	data, err := m.DataPtrFloat32()
	require.NoError(t, err)

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			for ch := 0; ch < 3; ch++ {
				data[(r*cols+c)*3+ch] = fn(r, c, ch)
			}
		}
	}

	return m
}

// squareMask is 1.0 on pixels [lo, hi) of both axes and 0.0 elsewhere
func squareMask(lo, hi int) func(r, c, ch int) float32 {
	return func(r, c, ch int) float32 {
		if r >= lo && r < hi && c >= lo && c < hi {
			return 1
		}
		return 0
	}
}

func TestNewCropResizeErrors(t *testing.T) {

	_, err := NewCropResize(Box{0, 0, 10, 10}, 0)
	assert.True(t, errors.Is(err, ErrInvalidSize))

	_, err = NewCropResize(Box{0, 0, 10, 10}, -4)
	assert.True(t, errors.Is(err, ErrInvalidSize))

	_, err = NewCropResize(Box{5, 0, 5, 10}, 64)
	assert.True(t, errors.Is(err, ErrDegenerateBox))

	_, err = NewCropResize(Box{0, 10, 10, 2}, 64)
	assert.True(t, errors.Is(err, ErrDegenerateBox))

	_, err = NewCropResize(Box{0, 0, math.NaN(), 10}, 64)
	assert.True(t, errors.Is(err, ErrDegenerateBox))
}

func TestCropResizeScale(t *testing.T) {

	tests := []struct {
		box            Box
		size           int
		expectedScaleX float64
		expectedScaleY float64
	}{
		{Box{0, 0, 640, 640}, 320, 0.5, 0.5},
		{Box{100, 50, 300, 450}, 200, 1.0, 0.5},
		{Box{-20, -20, 20, 20}, 512, 12.8, 12.8},
	}

	for _, tc := range tests {
		cr, err := NewCropResize(tc.box, tc.size)
		require.NoError(t, err)

		assert.InDelta(t, tc.expectedScaleX, cr.ScaleX(), 1e-12)
		assert.InDelta(t, tc.expectedScaleY, cr.ScaleY(), 1e-12)

		// box corners land on the frame corners
		x, y := cr.Apply(tc.box.Left, tc.box.Top)
		assert.InDelta(t, 0, x, 1e-9)
		assert.InDelta(t, 0, y, 1e-9)

		x, y = cr.Apply(tc.box.Right, tc.box.Bottom)
		assert.InDelta(t, float64(tc.size), x, 1e-9)
		assert.InDelta(t, float64(tc.size), y, 1e-9)

		// and back again
		x, y = cr.Inverse(x, y)
		assert.InDelta(t, tc.box.Right, x, 1e-9)
		assert.InDelta(t, tc.box.Bottom, y, 1e-9)
	}
}

// TestWarpImageExtent checks the raster output is always size×size whatever
// the box dimensions
func TestWarpImageExtent(t *testing.T) {

	src := newFloatMat(t, 30, 40, func(r, c, ch int) float32 { return 0.5 })
	defer src.Close()

	boxes := []Box{
		{0, 0, 40, 30},
		{10, 5, 12, 6},
		{-100, -100, 300, 50},
		{0.25, 0.75, 39.5, 29.1},
	}

	for _, size := range []int{1, 16, 33, 256} {
		for _, box := range boxes {
			cr, err := NewCropResize(box, size)
			require.NoError(t, err)

			dst := gocv.NewMat()
			require.NoError(t, cr.WarpImage(src, &dst))

			assert.Equal(t, size, dst.Rows())
			assert.Equal(t, size, dst.Cols())
			assert.Equal(t, gocv.MatTypeCV32FC3, dst.Type())

			dst.Close()
		}
	}
}

func TestWarpImageContent(t *testing.T) {

	src := newFloatMat(t, 64, 64, squareMask(16, 48))
	defer src.Close()

	// cropping exactly the square gives an all ones frame
	cr, err := NewCropResize(Box{16, 16, 48, 48}, 32)
	require.NoError(t, err)

	dst := gocv.NewMat()
	defer dst.Close()
	require.NoError(t, cr.WarpImage(src, &dst))

	data, err := dst.DataPtrFloat32()
	require.NoError(t, err)

	for i, v := range data {
		require.InDelta(t, 1.0, v, 1e-4, "element %d", i)
	}

	// downscaling the whole image by two keeps the square in the middle half
	cr, err = NewCropResize(Box{0, 0, 64, 64}, 32)
	require.NoError(t, err)

	half := gocv.NewMat()
	defer half.Close()
	require.NoError(t, cr.WarpImage(src, &half))

	data, err = half.DataPtrFloat32()
	require.NoError(t, err)

	for r := 0; r < 32; r++ {
		for c := 0; c < 32; c++ {
			expected := float32(0)

			if r >= 8 && r < 24 && c >= 8 && c < 24 {
				expected = 1
			}

			require.InDelta(t, expected, data[(r*32+c)*3], 1e-4, "pixel %d,%d", r, c)
		}
	}
}

func TestWarpImageZeroFill(t *testing.T) {

	src := newFloatMat(t, 20, 20, func(r, c, ch int) float32 { return 1 })
	defer src.Close()

	// box hangs 20 pixels over the top left of the source
	cr, err := NewCropResize(Box{-20, -20, 20, 20}, 40)
	require.NoError(t, err)

	dst := gocv.NewMat()
	defer dst.Close()
	require.NoError(t, cr.WarpImage(src, &dst))

	data, err := dst.DataPtrFloat32()
	require.NoError(t, err)

	// outside the source
	assert.InDelta(t, 0.0, data[(5*40+5)*3], 1e-4)
	// inside the source
	assert.InDelta(t, 1.0, data[(30*40+30)*3], 1e-4)
}

func TestWarpImageEmpty(t *testing.T) {

	cr, err := NewCropResize(Box{0, 0, 10, 10}, 8)
	require.NoError(t, err)

	src := gocv.NewMat()
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()

	assert.Error(t, cr.WarpImage(src, &dst))
}

func TestTransformPoints(t *testing.T) {

	cr, err := NewCropResize(Box{100, 50, 300, 450}, 200)
	require.NoError(t, err)

	pts := mat.NewDense(3, 3, []float64{
		100, 50, 0.9,
		300, 450, 0.1,
		200, 250, 0.5,
	})

	out := cr.TransformPoints(pts)

	expected := mat.NewDense(3, 3, []float64{
		0, 0, 0.9,
		200, 200, 0.1,
		100, 100, 0.5,
	})

	assert.True(t, mat.EqualApprox(expected, out, 1e-9))

	// the input is left untouched
	assert.Equal(t, 100.0, pts.At(0, 0))
}

// TestProjectionConsistency checks projecting vertices through the remapped
// intrinsics matches remapping their original 2D projection
func TestProjectionConsistency(t *testing.T) {

	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 50; trial++ {

		k := camera.NewIntrinsics(
			200+rng.Float64()*1000, 200+rng.Float64()*1000,
			rng.Float64()*640, rng.Float64()*480,
		)

		n := 1 + rng.Intn(100)
		verts := mat.NewDense(n, 3, nil)

		for i := 0; i < n; i++ {
			verts.Set(i, 0, rng.Float64()*2-1)
			verts.Set(i, 1, rng.Float64()*2-1)
			verts.Set(i, 2, 2+rng.Float64()*3)
		}

		projected, err := camera.Project(verts, k)
		require.NoError(t, err)

		box, err := EstimateBox(camera.Dehomogenize(projected),
			BoxPolicy{Scale: 1 + rng.Float64(), Square: rng.Intn(2) == 0, MinExtent: 1})
		require.NoError(t, err)

		for _, size := range []int{256, 128} {
			cr, err := NewCropResize(box, size)
			require.NoError(t, err)

			newVerts, newK, err := cr.TransformCamera(projected, k)
			require.NoError(t, err)

			reprojected, err := camera.Project(verts, newK)
			require.NoError(t, err)

			// cropped vertices are the projection through the cropped intrinsics
			require.True(t, mat.EqualApprox(reprojected, newVerts, 1e-6))

			got := camera.Dehomogenize(reprojected)
			want := cr.TransformPoints(camera.Dehomogenize(projected))

			for i := 0; i < n; i++ {
				for j := 0; j < 2; j++ {
					w := want.At(i, j)
					require.InDelta(t, w, got.At(i, j), 1e-4*math.Max(1, math.Abs(w)))
				}
			}
		}
	}
}

func TestTransformCameraShapes(t *testing.T) {

	cr, err := NewCropResize(Box{0, 0, 10, 10}, 8)
	require.NoError(t, err)

	_, _, err = cr.TransformCamera(mat.NewDense(4, 2, nil), camera.NewIntrinsics(1, 1, 0, 0))
	assert.True(t, errors.Is(err, camera.ErrShapeMismatch))
}
