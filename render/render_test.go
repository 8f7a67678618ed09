package render

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-bodycrop/preprocess"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"
)

// blank returns a black CV8UC3 image
func blank(rows, cols int) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), rows, cols, gocv.MatTypeCV8UC3)
}

// painted reports whether the pixel at x, y is not black
func painted(img gocv.Mat, x, y int) bool {
	v := img.GetVecbAt(y, x)
	return v[0] != 0 || v[1] != 0 || v[2] != 0
}

func TestMaskOverlay(t *testing.T) {

	img := blank(4, 4)
	defer img.Close()

	mask := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV32FC3)
	defer mask.Close()

	data, err := mask.DataPtrFloat32()
	require.NoError(t, err)

	// left half of the mask is set
	for y := 0; y < 4; y++ {
		for x := 0; x < 2; x++ {
			for c := 0; c < 3; c++ {
				data[(y*4+x)*3+c] = 1
			}
		}
	}

	require.NoError(t, MaskOverlay(&img, mask, White, 1))

	for y := 0; y < 4; y++ {
		assert.Equal(t, []uint8{255, 255, 255}, []uint8(img.GetVecbAt(y, 0)))
		assert.Equal(t, []uint8{0, 0, 0}, []uint8(img.GetVecbAt(y, 3)))
	}

	small := gocv.NewMatWithSize(2, 2, gocv.MatTypeCV32FC3)
	defer small.Close()
	assert.Error(t, MaskOverlay(&img, small, White, 1))
}

func TestToBGR8(t *testing.T) {

	// red in RGB order after the tanh mapping
	src := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(1, -1, -1, 0), 2, 2, gocv.MatTypeCV32FC3)
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()

	require.NoError(t, ToBGR8(src, &dst))

	assert.Equal(t, gocv.MatTypeCV8UC3, dst.Type())
	assert.Equal(t, []uint8{0, 0, 255}, []uint8(dst.GetVecbAt(1, 1)))

	bytes := blank(2, 2)
	defer bytes.Close()
	assert.Error(t, ToBGR8(bytes, &dst))
}

func TestLandmarks(t *testing.T) {

	img := blank(20, 20)
	defer img.Close()

	lms := mat.NewDense(2, 3, []float64{
		5, 5, 1,
		15, 15, 0,
	})

	style := DefaultLandmarkStyle()
	style.LineThickness = 0
	Landmarks(&img, lms, style)

	assert.True(t, painted(img, 5, 5))
	// zero confidence is not drawn
	assert.False(t, painted(img, 15, 15))

	assert.Equal(t, 0, landmarkPart(0))
	assert.Equal(t, 1, landmarkPart(25))
	assert.Equal(t, 2, landmarkPart(95))
	assert.Equal(t, 3, landmarkPart(136))
}

func TestVertices(t *testing.T) {

	img := blank(20, 20)
	defer img.Close()

	// homogeneous (10,10,2) at half resolution lands on pixel 10,10
	Vertices(&img, mat.NewDense(2, 3, []float64{
		10, 10, 2,
		4, 4, -1,
	}), 2, VertexColor, 1)

	assert.True(t, painted(img, 10, 10))
	assert.False(t, painted(img, 8, 8))
}

func TestBoxAndLabel(t *testing.T) {

	img := blank(64, 64)
	defer img.Close()

	Box(&img, preprocess.Box{Left: 10, Top: 20, Right: 50, Bottom: 60}, "001", Yellow, DefaultFont(), 1)
	assert.True(t, painted(img, 30, 60))
	assert.False(t, painted(img, 30, 40))

	out := blank(20, 60)
	defer out.Close()

	require.NoError(t, Label(&out, "frame", image.Pt(2, 14), White))

	drawn := false

	for y := 0; y < 20 && !drawn; y++ {
		for x := 0; x < 60; x++ {
			if painted(out, x, y) {
				drawn = true
				break
			}
		}
	}

	assert.True(t, drawn)
}

func TestClassColor(t *testing.T) {
	assert.Equal(t, ClassColor(0), ClassColor(len(classColors)))
	assert.Equal(t, ClassColor(1), ClassColor(-1))
}
