// Package bodymodel defines the body model parameter record read from each
// frame, the evaluator interface producing mesh vertices from it and the
// gender keyed table of evaluators shared by all samples.
package bodymodel

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrUnknownGender is returned when no evaluator is registered for a gender
var ErrUnknownGender = errors.New("no body model for gender")

// Genders supported by LoadTable
var Genders = []string{"male", "female", "neutral"}

// Evaluator produces the full vertex buffer (V×3) of a body model for the
// given parameters.  Hand poses are truncated to HandPoseComponents before
// being passed in.
type Evaluator interface {
	Vertices(p *Params) (*mat.Dense, error)
}

// Table maps a gender label to its Evaluator.  It is read only after
// construction so may be shared by concurrent sample workers.
type Table struct {
	models map[string]Evaluator
}

// NewTable returns a Table holding a copy of the given gender to evaluator
// mapping
func NewTable(models map[string]Evaluator) (*Table, error) {

	if len(models) == 0 {
		return nil, errors.New("body model table needs at least one evaluator")
	}

	t := &Table{models: make(map[string]Evaluator, len(models))}

	for gender, ev := range models {
		if ev == nil {
			return nil, errors.Errorf("nil evaluator for gender %q", gender)
		}
		t.models[gender] = ev
	}

	return t, nil
}

// Get returns the evaluator for the gender
func (t *Table) Get(gender string) (Evaluator, error) {

	ev, ok := t.models[gender]

	if !ok {
		return nil, errors.Wrapf(ErrUnknownGender, "%q", gender)
	}

	return ev, nil
}

// Genders returns the sorted gender labels held in the table
func (t *Table) Genders() []string {

	out := make([]string, 0, len(t.models))

	for g := range t.models {
		out = append(out, g)
	}

	sort.Strings(out)

	return out
}

// ModelFile returns the model file name for a gender within a model
// directory, eg: SMPLX_NEUTRAL.json
func ModelFile(dir, gender string) string {
	return filepath.Join(dir, "SMPLX_"+strings.ToUpper(gender)+".json")
}

// LoadTable loads a LinearModel for every gender in Genders from the model
// directory
func LoadTable(dir string) (*Table, error) {

	models := make(map[string]Evaluator, len(Genders))

	for _, gender := range Genders {
		m, err := LoadLinearModel(ModelFile(dir, gender))

		if err != nil {
			return nil, errors.Wrapf(err, "error loading %s body model", gender)
		}

		models[gender] = m
	}

	return NewTable(models)
}
