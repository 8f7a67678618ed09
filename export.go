package bodycrop

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"github.com/swdee/go-bodycrop/preprocess"
	"go.uber.org/multierr"
)

// TensorInfo describes one exported tensor file
type TensorInfo struct {
	File  string `json:"file"`
	Shape []int  `json:"shape"`
	DType string `json:"dtype"`
}

// Manifest describes the files written for one sample
type Manifest struct {
	FrameID string                `json:"frame_id"`
	Gender  []string              `json:"gender"`
	Box     preprocess.Box        `json:"box"`
	Tensors map[string]TensorInfo `json:"tensors"`
}

// Writer exports samples as little endian raw tensor files plus a JSON
// manifest per frame
type Writer struct {
	dir   string
	dtype TensorType
}

// NewWriter creates the output directory and returns a Writer.  When fp16 is
// set tensors are written as half precision.
func NewWriter(dir string, fp16 bool) (*Writer, error) {

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "error creating output directory")
	}

	w := &Writer{dir: dir, dtype: TensorFloat32}

	if fp16 {
		w.dtype = TensorFloat16
	}

	return w, nil
}

// ManifestPath returns the manifest file for the given frame
func (w *Writer) ManifestPath(frameID string) string {
	return filepath.Join(w.dir, frameID+".json")
}

// Write exports the sample as {id}_{name}.bin tensor files and an {id}.json
// manifest, returning the manifest
func (w *Writer) Write(s *Sample) (*Manifest, error) {

	outputs, err := s.Tensors()

	if err != nil {
		return nil, errors.Wrapf(err, "frame %s", s.FrameID)
	}

	man := &Manifest{
		FrameID: s.FrameID,
		Box:     s.Box,
		Tensors: make(map[string]TensorInfo),
	}

	names := make([]string, 0, len(outputs))

	for name := range outputs {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {

		switch v := outputs[name].(type) {
		case []string:
			man.Gender = v

		case Tensor:
			info := TensorInfo{
				File:  s.FrameID + "_" + name + ".bin",
				Shape: v.Shape,
				DType: w.dtype.String(),
			}

			if err := w.writeTensor(filepath.Join(w.dir, info.File), v); err != nil {
				return nil, errors.Wrapf(err, "frame %s: %s", s.FrameID, name)
			}

			man.Tensors[name] = info

		default:
			return nil, errors.Errorf("frame %s: unsupported output %s of type %T",
				s.FrameID, name, v)
		}
	}

	data, err := json.MarshalIndent(man, "", "  ")

	if err != nil {
		return nil, errors.Wrap(err, "error encoding manifest")
	}

	if err := os.WriteFile(w.ManifestPath(s.FrameID), data, 0644); err != nil {
		return nil, errors.Wrap(err, "error writing manifest")
	}

	return man, nil
}

// writeTensor writes the tensor data in the Writer's element type
func (w *Writer) writeTensor(path string, t Tensor) (err error) {

	f, err := os.Create(path)

	if err != nil {
		return errors.Wrap(err, "error creating tensor file")
	}

	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	buf := bufio.NewWriter(f)

	if w.dtype == TensorFloat16 {
		err = binary.Write(buf, binary.LittleEndian, t.Float16Bits())
	} else {
		err = binary.Write(buf, binary.LittleEndian, t.Data)
	}

	if err != nil {
		return errors.Wrap(err, "error writing tensor")
	}

	return buf.Flush()
}

// ReadTensor loads a tensor file described by info from dir
func ReadTensor(dir string, info TensorInfo) (Tensor, error) {

	f, err := os.Open(filepath.Join(dir, info.File))

	if err != nil {
		return Tensor{}, errors.Wrap(err, "error opening tensor file")
	}

	defer f.Close()

	n := Tensor{Shape: info.Shape}.NumElements()
	r := bufio.NewReader(f)

	switch info.DType {
	case TensorFloat16.String():
		bits := make([]uint16, n)

		if err := binary.Read(r, binary.LittleEndian, bits); err != nil {
			return Tensor{}, errors.Wrap(err, "error reading tensor")
		}

		return TensorFromFloat16Bits(info.Shape, bits), nil

	case TensorFloat32.String():
		data := make([]float32, n)

		if err := binary.Read(r, binary.LittleEndian, data); err != nil {
			return Tensor{}, errors.Wrap(err, "error reading tensor")
		}

		return Tensor{Shape: info.Shape, Data: data}, nil

	default:
		return Tensor{}, errors.Errorf("unknown tensor dtype %q", info.DType)
	}
}

// ReadManifest loads the manifest of frameID from dir
func ReadManifest(dir, frameID string) (*Manifest, error) {

	data, err := os.ReadFile(filepath.Join(dir, frameID+".json"))

	if err != nil {
		return nil, errors.Wrap(err, "error reading manifest")
	}

	var man Manifest

	if err := json.Unmarshal(data, &man); err != nil {
		return nil, errors.Wrap(err, "error decoding manifest")
	}

	return &man, nil
}
