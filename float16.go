package bodycrop

import "github.com/x448/float16"

var f16LookupTable [65536]float32

func init() {
	// precompute float16 lookup table for faster conversion to float32
	for i := range f16LookupTable {
		f16 := float16.Frombits(uint16(i))
		f16LookupTable[i] = f16.Float32()
	}
}

// Float16Bits returns the IEEE 754 half precision bit patterns of the tensor
// data, rounding to nearest even
func (t Tensor) Float16Bits() []uint16 {

	bits := make([]uint16, len(t.Data))

	for i, v := range t.Data {
		bits[i] = float16.Fromfloat32(v).Bits()
	}

	return bits
}

// TensorFromFloat16Bits expands half precision bit patterns into a float32
// tensor of the given shape
func TensorFromFloat16Bits(shape []int, bits []uint16) Tensor {

	data := make([]float32, len(bits))

	for i, b := range bits {
		data[i] = f16LookupTable[b]
	}

	return Tensor{Shape: append([]int{}, shape...), Data: data}
}
