package bodycrop

import (
	"github.com/pkg/errors"
	"github.com/swdee/go-bodycrop/bodymodel"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"
)

// TensorType is the element type a Tensor is serialized as
type TensorType int

const (
	TensorFloat32 TensorType = iota
	TensorFloat16
)

// String returns a readable description of the TensorType
func (t TensorType) String() string {
	switch t {
	case TensorFloat32:
		return "float32"
	case TensorFloat16:
		return "float16"
	default:
		return "unknown"
	}
}

// Size returns the number of bytes per element
func (t TensorType) Size() int {
	if t == TensorFloat16 {
		return 2
	}
	return 4
}

// Tensor is a dense row major float32 array with its shape
type Tensor struct {
	Shape []int
	Data  []float32
}

// NumElements returns the product of the shape dimensions
func (t Tensor) NumElements() int {

	n := 1

	for _, d := range t.Shape {
		n *= d
	}

	return n
}

// TensorFromMat converts a float32 HWC Mat into a CHW tensor of shape
// [channels, rows, cols]
func TensorFromMat(m gocv.Mat) (Tensor, error) {

	if m.Empty() {
		return Tensor{}, errors.New("error Mat is empty")
	}

	switch m.Type() {
	case gocv.MatTypeCV32FC1, gocv.MatTypeCV32FC3:
	default:
		return Tensor{}, errors.Errorf("tensor conversion needs a float32 Mat, got type %v", m.Type())
	}

	ch := m.Channels()

	if !m.IsContinuous() {
		return Tensor{}, errors.New("error Mat is not continuous")
	}

	hwc, err := m.DataPtrFloat32()

	if err != nil {
		return Tensor{}, errors.Wrap(err, "error reading Mat data")
	}

	rows, cols := m.Rows(), m.Cols()
	plane := rows * cols
	chw := make([]float32, ch*plane)

	// transpose interleaved pixels into one plane per channel
	for i := 0; i < plane; i++ {
		for c := 0; c < ch; c++ {
			chw[c*plane+i] = hwc[i*ch+c]
		}
	}

	return Tensor{Shape: []int{ch, rows, cols}, Data: chw}, nil
}

// TensorFromDense converts a gonum matrix into a tensor of shape [rows, cols]
func TensorFromDense(m mat.Matrix) Tensor {

	rows, cols := m.Dims()
	data := make([]float32, 0, rows*cols)

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			data = append(data, float32(m.At(r, c)))
		}
	}

	return Tensor{Shape: []int{rows, cols}, Data: data}
}

// TensorFromArray converts a body model parameter array into a tensor of the
// same shape
func TensorFromArray(a bodymodel.Array) Tensor {

	data := make([]float32, len(a.Data))

	for i, v := range a.Data {
		data[i] = float32(v)
	}

	return Tensor{Shape: append([]int{}, a.Shape...), Data: data}
}
