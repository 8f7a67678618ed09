package bodymodel

import (
	"encoding/json"
	"math"
	"os"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// LinearModel is a reduced body model evaluator: a template mesh deformed by
// linear shape blend shapes, then rotated by the global orientation and
// translated.  Articulated pose skinning is left to external evaluators.
type LinearModel struct {
	// template is the V×3 rest mesh
	template *mat.Dense
	// shapeDirs is the (V*3)×B shape blend shape basis
	shapeDirs *mat.Dense
	// numVerts is V
	numVerts int
}

// linearModelFile is the serialized form of a LinearModel
type linearModelFile struct {
	VTemplate [][]float64   `json:"v_template"`
	ShapeDirs [][][]float64 `json:"shapedirs"`
}

// NewLinearModel returns a LinearModel from a V×3 template and a (V*3)×B
// shape basis, shapeDirs may be nil for a model without shape blending
func NewLinearModel(template, shapeDirs *mat.Dense) (*LinearModel, error) {

	v, c := template.Dims()

	if c != 3 {
		return nil, errors.Errorf("template must be Vx3, got %dx%d", v, c)
	}

	if shapeDirs != nil {
		if r, _ := shapeDirs.Dims(); r != v*3 {
			return nil, errors.Errorf("shape basis has %d rows, want %d", r, v*3)
		}
	}

	return &LinearModel{
		template:  template,
		shapeDirs: shapeDirs,
		numVerts:  v,
	}, nil
}

// LoadLinearModel reads a LinearModel from a JSON file holding v_template
// (V×3) and shapedirs (V×3×B)
func LoadLinearModel(path string) (*LinearModel, error) {

	b, err := os.ReadFile(path)

	if err != nil {
		return nil, errors.Wrap(err, "error reading body model")
	}

	var f linearModelFile

	if err := json.Unmarshal(b, &f); err != nil {
		return nil, errors.Wrapf(err, "error decoding %s", path)
	}

	v := len(f.VTemplate)

	if v == 0 {
		return nil, errors.Errorf("%s has an empty v_template", path)
	}

	template := mat.NewDense(v, 3, nil)

	for i, row := range f.VTemplate {
		if len(row) != 3 {
			return nil, errors.Errorf("%s v_template row %d has %d values", path, i, len(row))
		}
		template.SetRow(i, row)
	}

	var shapeDirs *mat.Dense

	if len(f.ShapeDirs) > 0 {

		if len(f.ShapeDirs) != v || len(f.ShapeDirs[0]) != 3 || len(f.ShapeDirs[0][0]) == 0 {
			return nil, errors.Errorf("%s shapedirs must be %dx3xB", path, v)
		}

		numBetas := len(f.ShapeDirs[0][0])
		shapeDirs = mat.NewDense(v*3, numBetas, nil)

		for i, vert := range f.ShapeDirs {
			if len(vert) != 3 {
				return nil, errors.Errorf("%s shapedirs vertex %d is not 3xB", path, i)
			}

			for axis, dirs := range vert {
				if len(dirs) != numBetas {
					return nil, errors.Errorf("%s shapedirs vertex %d is ragged", path, i)
				}
				shapeDirs.SetRow(i*3+axis, dirs)
			}
		}
	}

	return NewLinearModel(template, shapeDirs)
}

// NumVertices returns the number of vertices produced
func (m *LinearModel) NumVertices() int {
	return m.numVerts
}

// Vertices evaluates the model for the parameters
func (m *LinearModel) Vertices(p *Params) (*mat.Dense, error) {

	verts := mat.DenseCopyOf(m.template)

	// shape blend shapes
	if m.shapeDirs != nil && !p.Betas.Empty() {

		_, numBetas := m.shapeDirs.Dims()
		n := min(numBetas, len(p.Betas.Data))

		betas := mat.NewVecDense(n, append([]float64(nil), p.Betas.Data[:n]...))

		var offsets mat.VecDense
		offsets.MulVec(m.shapeDirs.Slice(0, m.numVerts*3, 0, n), betas)

		offsetMat := mat.NewDense(m.numVerts, 3, offsets.RawVector().Data)
		verts.Add(verts, offsetMat)
	}

	// global orientation as an axis-angle vector
	if len(p.GlobalOrient.Data) >= 3 {
		rot := Rodrigues(p.GlobalOrient.Data[0], p.GlobalOrient.Data[1], p.GlobalOrient.Data[2])

		var rotated mat.Dense
		rotated.Mul(verts, rot.T())
		verts = &rotated
	}

	if len(p.Transl.Data) >= 3 {
		t := p.Transl.Data[:3]

		for i := 0; i < m.numVerts; i++ {
			verts.Set(i, 0, verts.At(i, 0)+t[0])
			verts.Set(i, 1, verts.At(i, 1)+t[1])
			verts.Set(i, 2, verts.At(i, 2)+t[2])
		}
	}

	return verts, nil
}

// Rodrigues converts an axis-angle rotation vector into a 3x3 rotation matrix
func Rodrigues(x, y, z float64) *mat.Dense {

	theta := math.Sqrt(x*x + y*y + z*z)

	if theta < 1e-12 {
		return mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	}

	kx, ky, kz := x/theta, y/theta, z/theta
	s, c := math.Sincos(theta)
	v := 1 - c

	return mat.NewDense(3, 3, []float64{
		c + kx*kx*v, kx*ky*v - kz*s, kx*kz*v + ky*s,
		ky*kx*v + kz*s, c + ky*ky*v, ky*kz*v - kx*s,
		kz*kx*v - ky*s, kz*ky*v + kx*s, c + kz*kz*v,
	})
}
