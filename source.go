package bodycrop

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/swdee/go-bodycrop/bodymodel"
	"github.com/swdee/go-bodycrop/keypoints"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"
)

// ErrNoSamples is returned when a samples directory holds no frames
var ErrNoSamples = errors.New("no samples found")

// per frame file name suffixes
const (
	SuffixRGB       = "_rgb.jpg"
	SuffixSegm      = "_segm.png"
	SuffixKeypoints = "_keypoints.json"
	SuffixParams    = "_smplx.json"
)

// Source provides the raw per frame inputs of a Dataset
type Source interface {
	// List returns the frame identifiers in a deterministic order
	List() ([]string, error)
	// LoadRGB returns the frame image as a CV32FC3 Mat in RGB channel order
	// with values in [0, 1]
	LoadRGB(id string) (gocv.Mat, error)
	// LoadSegm returns the segmentation mask in the same layout as LoadRGB
	LoadSegm(id string) (gocv.Mat, error)
	// LoadLandmarks returns the N×3 landmark matrix of x, y, confidence
	LoadLandmarks(id string) (*mat.Dense, error)
	// LoadParams returns the body model parameters including the camera
	// intrinsics
	LoadParams(id string) (*bodymodel.Params, error)
}

// DirSource reads frames from a flat directory of {id}_rgb.jpg,
// {id}_segm.png, {id}_keypoints.json and {id}_smplx.json files
type DirSource struct {
	dir string
}

// NewDirSource returns a Source reading from dir
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// Dir returns the samples directory
func (d *DirSource) Dir() string {
	return d.dir
}

// List returns the sorted unique frame identifiers in the directory
func (d *DirSource) List() ([]string, error) {
	return ListSamples(d.dir)
}

// path returns the file for the given frame and suffix
func (d *DirSource) path(id, suffix string) string {
	return filepath.Join(d.dir, id+suffix)
}

// LoadRGB reads {id}_rgb.jpg
func (d *DirSource) LoadRGB(id string) (gocv.Mat, error) {
	return loadImage(d.path(id, SuffixRGB))
}

// LoadSegm reads {id}_segm.png
func (d *DirSource) LoadSegm(id string) (gocv.Mat, error) {
	return loadImage(d.path(id, SuffixSegm))
}

// LoadLandmarks reads {id}_keypoints.json
func (d *DirSource) LoadLandmarks(id string) (*mat.Dense, error) {
	return keypoints.Load(d.path(id, SuffixKeypoints))
}

// LoadParams reads {id}_smplx.json
func (d *DirSource) LoadParams(id string) (*bodymodel.Params, error) {
	return bodymodel.LoadParams(d.path(id, SuffixParams))
}

// loadImage reads an image file as three channel float RGB scaled to [0, 1]
func loadImage(path string) (gocv.Mat, error) {

	bgr := gocv.IMRead(path, gocv.IMReadColor)
	defer bgr.Close()

	if bgr.Empty() {
		return gocv.NewMat(), errors.Errorf("error reading image %s", path)
	}

	rgb := gocv.NewMat()
	defer rgb.Close()

	gocv.CvtColor(bgr, &rgb, gocv.ColorBGRToRGB)

	out := gocv.NewMat()
	rgb.ConvertToWithParams(&out, gocv.MatTypeCV32FC3, 1.0/255.0, 0)

	return out, nil
}

// ListSamples returns the sorted unique frame identifiers in dir, the
// identifier being the file name up to its first underscore.  Hidden files
// and subdirectories are skipped.
func ListSamples(dir string) ([]string, error) {

	entries, err := os.ReadDir(dir)

	if err != nil {
		return nil, errors.Wrap(err, "error reading samples directory")
	}

	seen := make(map[string]struct{})

	for _, e := range entries {

		name := e.Name()

		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		id, _, _ := strings.Cut(name, "_")
		seen[id] = struct{}{}
	}

	if len(seen) == 0 {
		return nil, errors.Wrapf(ErrNoSamples, "directory %s", dir)
	}

	ids := make([]string, 0, len(seen))

	for id := range seen {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids, nil
}
