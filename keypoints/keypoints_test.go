package keypoints

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {

	doc := `{
		"version": 1.3,
		"people": [
			{
				"pose_keypoints_2d": [10, 20, 0.9, 30, 40, 0.8],
				"face_keypoints_2d": [1, 2, 0.5],
				"hand_right_keypoints_2d": [5, 6, 0.7],
				"hand_left_keypoints_2d": [7, 8, 0.6]
			},
			{
				"pose_keypoints_2d": [99, 99, 1]
			}
		]
	}`

	kps, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)

	rows, cols := kps.Dims()
	assert.Equal(t, 5, rows)
	assert.Equal(t, 3, cols)

	// pose, face, right hand, left hand order of the first person only
	assert.Equal(t, []float64{10, 20, 0.9}, kps.RawRowView(0))
	assert.Equal(t, []float64{30, 40, 0.8}, kps.RawRowView(1))
	assert.Equal(t, []float64{1, 2, 0.5}, kps.RawRowView(2))
	assert.Equal(t, []float64{5, 6, 0.7}, kps.RawRowView(3))
	assert.Equal(t, []float64{7, 8, 0.6}, kps.RawRowView(4))
}

func TestDecodeMissingParts(t *testing.T) {

	doc := `{"people": [{"pose_keypoints_2d": [10, 20, 0.9]}]}`

	kps, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)

	rows, _ := kps.Dims()
	assert.Equal(t, 1+FaceKeyPoints+2*HandKeyPoints, rows)
	assert.Equal(t, []float64{0, 0, 0}, kps.RawRowView(1))
}

func TestDecodeNoPeople(t *testing.T) {

	kps, err := Decode(strings.NewReader(`{"people": []}`))
	require.NoError(t, err)

	rows, cols := kps.Dims()
	assert.Equal(t, Total, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, 137, Total)
}

func TestDecodeMalformed(t *testing.T) {

	_, err := Decode(strings.NewReader(`{"people": [{"pose_keypoints_2d": [1, 2]}]}`))
	assert.True(t, errors.Is(err, ErrMalformed))

	_, err = Decode(strings.NewReader(`not json`))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {

	path := filepath.Join(t.TempDir(), "000_keypoints.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"people": [{"pose_keypoints_2d": [3, 4, 1]}]}`), 0644))

	kps, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4, 1}, kps.RawRowView(0))

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
