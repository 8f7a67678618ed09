package bodycrop

import (
	"fmt"
	"io"
	"sort"

	"github.com/pkg/errors"
)

// Query assembles the first sample of the dataset and writes its output
// shapes along with the dataset configuration in text/human readable format
func (d *Dataset) Query(w io.Writer) error {

	fmt.Fprintf(w, "Frames: %d, Image Size: %d, Input Size: %d, Vertices: %d\n",
		d.Len(), d.cfg.ImageSize, d.cfg.InputSize(), len(d.cfg.VertexIndices))

	fmt.Fprintf(w, "Box Policy: scale=%g square=%t min_extent=%g\n",
		d.cfg.Box.Scale, d.cfg.Box.Square, d.cfg.Box.MinExtent)

	fmt.Fprintf(w, "Body Models: %v\n", d.table.Genders())

	if d.Len() == 0 {
		return nil
	}

	s, err := d.Get(0)

	if err != nil {
		return errors.Wrap(err, "error assembling first sample")
	}

	defer s.Close()

	outputs, err := s.Tensors()

	if err != nil {
		return err
	}

	names := make([]string, 0, len(outputs))

	for name := range outputs {
		names = append(names, name)
	}

	sort.Strings(names)

	fmt.Fprintf(w, "Outputs of frame %s, box %s:\n", s.FrameID, s.Box)

	for _, name := range names {
		switch v := outputs[name].(type) {
		case Tensor:
			fmt.Fprintf(w, "  %s: shape=%v\n", name, v.Shape)
		default:
			fmt.Fprintf(w, "  %s: %v\n", name, v)
		}
	}

	return nil
}
