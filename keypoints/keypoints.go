// Package keypoints decodes OpenPose style keypoint files into a landmark
// matrix of x, y, confidence rows.
package keypoints

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrMalformed is returned when a keypoint list is not made of x, y,
// confidence triplets
var ErrMalformed = errors.New("malformed keypoint list")

// number of keypoints in each OpenPose part
const (
	PoseKeyPoints = 25
	FaceKeyPoints = 70
	HandKeyPoints = 21
)

// Total is the number of landmarks produced for one person
const Total = PoseKeyPoints + FaceKeyPoints + 2*HandKeyPoints

// person is one entry of the OpenPose "people" list
type person struct {
	Pose      []float64 `json:"pose_keypoints_2d"`
	Face      []float64 `json:"face_keypoints_2d"`
	HandRight []float64 `json:"hand_right_keypoints_2d"`
	HandLeft  []float64 `json:"hand_left_keypoints_2d"`
}

// file is the OpenPose keypoint JSON document
type file struct {
	People []person `json:"people"`
}

// Load reads the keypoint file at path
func Load(path string) (*mat.Dense, error) {

	f, err := os.Open(path)

	if err != nil {
		return nil, errors.Wrap(err, "error opening keypoints")
	}

	defer f.Close()

	kps, err := Decode(f)

	if err != nil {
		return nil, errors.Wrapf(err, "error decoding %s", path)
	}

	return kps, nil
}

// Decode reads an OpenPose JSON document and returns the first person's
// pose, face, right hand and left hand keypoints stacked into an N×3 matrix.
// A missing part is filled with zero rows of its standard size, and a
// document with no people gives Total zero rows.
func Decode(r io.Reader) (*mat.Dense, error) {

	var doc file

	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "invalid keypoint document")
	}

	if len(doc.People) == 0 {
		return mat.NewDense(Total, 3, nil), nil
	}

	p := doc.People[0]

	parts := []struct {
		name  string
		vals  []float64
		count int
	}{
		{"pose_keypoints_2d", p.Pose, PoseKeyPoints},
		{"face_keypoints_2d", p.Face, FaceKeyPoints},
		{"hand_right_keypoints_2d", p.HandRight, HandKeyPoints},
		{"hand_left_keypoints_2d", p.HandLeft, HandKeyPoints},
	}

	data := make([]float64, 0, Total*3)

	for _, part := range parts {

		if len(part.vals) == 0 {
			data = append(data, make([]float64, part.count*3)...)
			continue
		}

		if len(part.vals)%3 != 0 {
			return nil, errors.Wrapf(ErrMalformed, "%s has %d values", part.name, len(part.vals))
		}

		data = append(data, part.vals...)
	}

	return mat.NewDense(len(data)/3, 3, data), nil
}
