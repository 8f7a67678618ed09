package preprocess

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestEstimateBox(t *testing.T) {

	tests := []struct {
		name     string
		points   []float64
		policy   BoxPolicy
		expected Box
	}{
		{
			name:     "tight square",
			points:   []float64{16, 16, 48, 16, 48, 48, 16, 48},
			policy:   DefaultBoxPolicy(),
			expected: Box{16, 16, 48, 48},
		},
		{
			name:     "wide box squared about center",
			points:   []float64{0, 10, 40, 30},
			policy:   DefaultBoxPolicy(),
			expected: Box{0, 0, 40, 40},
		},
		{
			name:     "tall box without squaring",
			points:   []float64{10, 0, 30, 60},
			policy:   BoxPolicy{Scale: 1, Square: false, MinExtent: 1},
			expected: Box{10, 0, 30, 60},
		},
		{
			name:     "scaled and squared",
			points:   []float64{10, 10, 30, 20},
			policy:   BoxPolicy{Scale: 1.5, Square: true, MinExtent: 1},
			expected: Box{5, 0, 35, 30},
		},
		{
			name:     "single point floored",
			points:   []float64{5, 7},
			policy:   DefaultBoxPolicy(),
			expected: Box{4.5, 6.5, 5.5, 7.5},
		},
		{
			name:     "duplicate points floored",
			points:   []float64{3, 3, 3, 3, 3, 3},
			policy:   BoxPolicy{Scale: 1, Square: true, MinExtent: 4},
			expected: Box{1, 1, 5, 5},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pts := mat.NewDense(len(tc.points)/2, 2, tc.points)

			box, err := EstimateBox(pts, tc.policy)
			require.NoError(t, err)

			assert.InDelta(t, tc.expected.Left, box.Left, 1e-9)
			assert.InDelta(t, tc.expected.Top, box.Top, 1e-9)
			assert.InDelta(t, tc.expected.Right, box.Right, 1e-9)
			assert.InDelta(t, tc.expected.Bottom, box.Bottom, 1e-9)
		})
	}
}

// TestEstimateBoxContainment checks random point sets always fall inside the
// estimated box and the box always has area
func TestEstimateBoxContainment(t *testing.T) {

	rng := rand.New(rand.NewSource(42))

	policies := []BoxPolicy{
		DefaultBoxPolicy(),
		{Scale: 1.2, Square: true, MinExtent: 1},
		{Scale: 1, Square: false, MinExtent: 0.5},
	}

	for trial := 0; trial < 200; trial++ {

		n := 1 + rng.Intn(50)
		pts := mat.NewDense(n, 3, nil)

		for i := 0; i < n; i++ {
			pts.Set(i, 0, rng.Float64()*1000-200)
			pts.Set(i, 1, rng.Float64()*700-100)
			pts.Set(i, 2, rng.Float64())
		}

		for _, policy := range policies {
			box, err := EstimateBox(pts, policy)
			require.NoError(t, err)

			require.Greater(t, box.Width(), 0.0)
			require.Greater(t, box.Height(), 0.0)

			if policy.Square {
				assert.InDelta(t, box.Width(), box.Height(), 1e-9)
			}

			for i := 0; i < n; i++ {
				require.True(t, box.Contains(pts.At(i, 0), pts.At(i, 1)),
					"point (%v, %v) outside box %s", pts.At(i, 0), pts.At(i, 1), box)
			}
		}
	}
}

func TestEstimateBoxErrors(t *testing.T) {

	pts := mat.NewDense(2, 2, []float64{0, 0, 1, 1})

	_, err := EstimateBox(pts, BoxPolicy{Scale: 0.5, Square: true, MinExtent: 1})
	assert.True(t, errors.Is(err, ErrInvalidPolicy))

	_, err = EstimateBox(pts, BoxPolicy{Scale: 1, Square: true, MinExtent: 0})
	assert.True(t, errors.Is(err, ErrInvalidPolicy))

	_, err = EstimateBox(mat.NewDense(2, 1, nil), DefaultBoxPolicy())
	assert.True(t, errors.Is(err, ErrNoPoints))
}
