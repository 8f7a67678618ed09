package bodymodel

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// HandPoseComponents is the number of hand pose components the body model
// evaluator is built for.  Serialized parameters carry wider hand pose
// vectors which are cut down to this width before evaluation.
const HandPoseComponents = 6

var (
	// ErrHandPoseWidth is returned when a hand pose has fewer components than
	// HandPoseComponents
	ErrHandPoseWidth = errors.New("hand pose has too few components")
	// ErrMissingField is returned when a required parameter is absent
	ErrMissingField = errors.New("missing body model parameter")
)

// parameter names as serialized
const (
	KeyGender           = "gender"
	KeyBetas            = "betas"
	KeyGlobalOrient     = "global_orient"
	KeyBodyPose         = "body_pose"
	KeyLeftHandPose     = "left_hand_pose"
	KeyRightHandPose    = "right_hand_pose"
	KeyJawPose          = "jaw_pose"
	KeyLeyePose         = "leye_pose"
	KeyReyePose         = "reye_pose"
	KeyExpression       = "expression"
	KeyTransl           = "transl"
	KeyCameraIntrinsics = "camera_intrinsics"
)

// Array is a dense n-dimensional numeric array stored in row major order
type Array struct {
	Shape []int
	Data  []float64
}

// Empty reports whether the array holds no values
func (a Array) Empty() bool {
	return len(a.Data) == 0
}

// Squeeze returns the array with a leading dimension of size one removed, a
// shape of [1] becomes a scalar.  Arrays without a leading singleton
// dimension are returned unchanged.
func (a Array) Squeeze() Array {

	if len(a.Shape) > 0 && a.Shape[0] == 1 {
		shape := make([]int, len(a.Shape)-1)
		copy(shape, a.Shape[1:])

		return Array{Shape: shape, Data: a.Data}
	}

	return a
}

// lastDim returns the size of the innermost dimension
func (a Array) lastDim() int {

	if len(a.Shape) == 0 {
		return len(a.Data)
	}

	return a.Shape[len(a.Shape)-1]
}

// Params holds the body model parameters of one frame.  Fields read by the
// pipeline are explicit, anything else numeric is kept in Extra.
type Params struct {
	Gender        string
	Betas         Array
	GlobalOrient  Array
	BodyPose      Array
	LeftHandPose  Array
	RightHandPose Array
	JawPose       Array
	LeyePose      Array
	ReyePose      Array
	Expression    Array
	Transl        Array
	// CameraIntrinsics is the 3x3 intrinsics matrix of the frame
	CameraIntrinsics *mat.Dense
	// Extra holds numeric parameters without a dedicated field
	Extra map[string]Array
}

// fields maps each serialized name to its Array field
func (p *Params) fields() map[string]*Array {
	return map[string]*Array{
		KeyBetas:         &p.Betas,
		KeyGlobalOrient:  &p.GlobalOrient,
		KeyBodyPose:      &p.BodyPose,
		KeyLeftHandPose:  &p.LeftHandPose,
		KeyRightHandPose: &p.RightHandPose,
		KeyJawPose:       &p.JawPose,
		KeyLeyePose:      &p.LeyePose,
		KeyReyePose:      &p.ReyePose,
		KeyExpression:    &p.Expression,
		KeyTransl:        &p.Transl,
	}
}

// Arrays returns every non empty numeric parameter, excluding the camera
// intrinsics, keyed by serialized name
func (p *Params) Arrays() map[string]Array {

	out := make(map[string]Array)

	for name, a := range p.fields() {
		if !a.Empty() {
			out[name] = *a
		}
	}

	for name, a := range p.Extra {
		out[name] = a
	}

	return out
}

// TruncateHandPoses cuts both hand poses down to HandPoseComponents
func (p *Params) TruncateHandPoses() error {

	var err error

	if p.LeftHandPose, err = TruncateHandPose(p.LeftHandPose); err != nil {
		return errors.Wrap(err, KeyLeftHandPose)
	}

	if p.RightHandPose, err = TruncateHandPose(p.RightHandPose); err != nil {
		return errors.Wrap(err, KeyRightHandPose)
	}

	return nil
}

// TruncateHandPose keeps the first HandPoseComponents values of the innermost
// dimension of a hand pose array, ie: pose[..., :6]
func TruncateHandPose(a Array) (Array, error) {

	width := a.lastDim()

	if width < HandPoseComponents {
		return Array{}, errors.Wrapf(ErrHandPoseWidth, "got %d, need %d",
			width, HandPoseComponents)
	}

	rows := len(a.Data) / width
	data := make([]float64, 0, rows*HandPoseComponents)

	for r := 0; r < rows; r++ {
		data = append(data, a.Data[r*width:r*width+HandPoseComponents]...)
	}

	shape := []int{HandPoseComponents}

	if len(a.Shape) > 0 {
		shape = append(append([]int(nil), a.Shape[:len(a.Shape)-1]...), HandPoseComponents)
	}

	return Array{Shape: shape, Data: data}, nil
}

// LoadParams reads a serialized parameter mapping from a JSON file
func LoadParams(path string) (*Params, error) {

	f, err := os.Open(path)

	if err != nil {
		return nil, errors.Wrap(err, "error opening body model parameters")
	}

	defer f.Close()

	p, err := DecodeParams(f)

	if err != nil {
		return nil, errors.Wrapf(err, "error decoding %s", path)
	}

	return p, nil
}

// DecodeParams decodes a JSON object of named parameters.  It must contain a
// gender string, both hand poses and a 3x3 camera_intrinsics array.  Numeric
// arrays may be nested to any depth, non numeric extras are ignored.
func DecodeParams(r io.Reader) (*Params, error) {

	raw := make(map[string]json.RawMessage)

	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "invalid parameter mapping")
	}

	p := &Params{Extra: make(map[string]Array)}

	genderRaw, ok := raw[KeyGender]

	if !ok {
		return nil, errors.Wrap(ErrMissingField, KeyGender)
	}

	if err := json.Unmarshal(genderRaw, &p.Gender); err != nil {
		return nil, errors.Wrap(err, "gender must be a string")
	}

	fields := p.fields()

	for name, msg := range raw {

		if name == KeyGender {
			continue
		}

		var v interface{}

		if err := json.Unmarshal(msg, &v); err != nil {
			return nil, errors.Wrapf(err, "error decoding %s", name)
		}

		a, err := arrayFromJSON(v)

		if err != nil {
			if _, known := fields[name]; known || name == KeyCameraIntrinsics {
				return nil, errors.Wrapf(err, "parameter %s", name)
			}
			// not an array, nothing downstream reads it
			continue
		}

		switch {
		case name == KeyCameraIntrinsics:
			if p.CameraIntrinsics, err = intrinsicsFromArray(a); err != nil {
				return nil, err
			}
		case fields[name] != nil:
			*fields[name] = a
		default:
			p.Extra[name] = a
		}
	}

	if p.CameraIntrinsics == nil {
		return nil, errors.Wrap(ErrMissingField, KeyCameraIntrinsics)
	}

	if p.LeftHandPose.Empty() {
		return nil, errors.Wrap(ErrMissingField, KeyLeftHandPose)
	}

	if p.RightHandPose.Empty() {
		return nil, errors.Wrap(ErrMissingField, KeyRightHandPose)
	}

	return p, nil
}

// intrinsicsFromArray accepts a 3x3 or 1x3x3 array
func intrinsicsFromArray(a Array) (*mat.Dense, error) {

	if len(a.Data) != 9 {
		return nil, errors.Errorf("camera_intrinsics must be 3x3, got shape %v", a.Shape)
	}

	return mat.NewDense(3, 3, append([]float64(nil), a.Data...)), nil
}

// arrayFromJSON flattens a number or nested list of numbers decoded by
// encoding/json, checking that the nesting is rectangular
func arrayFromJSON(v interface{}) (Array, error) {

	switch val := v.(type) {
	case float64:
		return Array{Shape: []int{}, Data: []float64{val}}, nil

	case []interface{}:
		if len(val) == 0 {
			return Array{Shape: []int{0}}, nil
		}

		var shape []int
		data := make([]float64, 0, len(val))

		for i, el := range val {
			sub, err := arrayFromJSON(el)

			if err != nil {
				return Array{}, err
			}

			if i == 0 {
				shape = sub.Shape
			} else if !equalShape(shape, sub.Shape) {
				return Array{}, errors.Errorf("ragged array at index %d", i)
			}

			data = append(data, sub.Data...)
		}

		return Array{Shape: append([]int{len(val)}, shape...), Data: data}, nil

	default:
		return Array{}, errors.Errorf("unsupported value of type %T", v)
	}
}

func equalShape(a, b []int) bool {

	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
