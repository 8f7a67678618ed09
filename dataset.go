package bodycrop

import (
	"time"

	"github.com/pkg/errors"
	"github.com/swdee/go-bodycrop/bodymodel"
	"github.com/swdee/go-bodycrop/camera"
	"github.com/swdee/go-bodycrop/preprocess"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"
)

// ErrIndexRange is returned when a sample or vertex index is out of range
var ErrIndexRange = errors.New("index out of range")

// Option configures a Dataset
type Option func(*Dataset)

// WithSource replaces the directory Source built from Config.SamplesDir
func WithSource(src Source) Option {
	return func(d *Dataset) {
		d.src = src
	}
}

// WithLogger sets the logger used for per sample diagnostics
func WithLogger(log *zap.Logger) Option {
	return func(d *Dataset) {
		if log != nil {
			d.log = log
		}
	}
}

// Dataset is an indexable collection of frames, each assembled on demand into
// a Sample with every modality cropped to the same window.  It is safe for
// concurrent use when its Source and body model evaluators are.
type Dataset struct {
	cfg   Config
	table *bodymodel.Table
	src   Source
	log   *zap.Logger
	// ids are the frame identifiers in index order
	ids []string
}

// NewDataset enumerates the frames of the configured Source and returns a
// Dataset evaluating body models from table
func NewDataset(cfg Config, table *bodymodel.Table, opts ...Option) (*Dataset, error) {

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if table == nil {
		return nil, errors.New("body model table is nil")
	}

	d := &Dataset{
		cfg:   cfg,
		table: table,
		log:   zap.NewNop(),
	}

	for _, opt := range opts {
		opt(d)
	}

	d.log = d.log.Named("dataset")

	if d.src == nil {
		if cfg.SamplesDir == "" {
			return nil, errors.Wrap(ErrInvalidConfig, "no samples directory")
		}

		d.src = NewDirSource(cfg.SamplesDir)
	}

	ids, err := d.src.List()

	if err != nil {
		return nil, errors.Wrap(err, "error listing samples")
	}

	d.ids = ids

	d.log.Info("dataset ready",
		zap.Int("frames", len(ids)),
		zap.Int("image_size", cfg.ImageSize),
		zap.Int("vertices", len(cfg.VertexIndices)),
	)

	return d, nil
}

// Len returns the number of frames
func (d *Dataset) Len() int {
	return len(d.ids)
}

// FrameIDs returns a copy of the frame identifiers in index order
func (d *Dataset) FrameIDs() []string {
	return append([]string(nil), d.ids...)
}

// Config returns the Dataset configuration
func (d *Dataset) Config() Config {
	return d.cfg
}

// Get assembles the sample at index i
func (d *Dataset) Get(i int) (*Sample, error) {

	if i < 0 || i >= len(d.ids) {
		return nil, errors.Wrapf(ErrIndexRange, "sample %d of %d", i, len(d.ids))
	}

	return d.GetFrame(d.ids[i])
}

// GetFrame assembles the sample for the given frame identifier.  The returned
// Sample holds Mats which must be freed with Close.
func (d *Dataset) GetFrame(id string) (*Sample, error) {

	start := time.Now()

	rgb, err := d.src.LoadRGB(id)

	if err != nil {
		return nil, errors.Wrapf(err, "frame %s: error loading rgb", id)
	}

	defer rgb.Close()

	segm, err := d.src.LoadSegm(id)

	if err != nil {
		return nil, errors.Wrapf(err, "frame %s: error loading segmentation", id)
	}

	defer segm.Close()

	landmarks, err := d.src.LoadLandmarks(id)

	if err != nil {
		return nil, errors.Wrapf(err, "frame %s: error loading landmarks", id)
	}

	params, err := d.src.LoadParams(id)

	if err != nil {
		return nil, errors.Wrapf(err, "frame %s: error loading body model parameters", id)
	}

	verts, err := d.projectVertices(params)

	if err != nil {
		return nil, errors.Wrapf(err, "frame %s", id)
	}

	// crop window from the projected vertex pixels
	box, err := preprocess.EstimateBox(camera.Dehomogenize(verts), d.cfg.Box)

	if err != nil {
		return nil, errors.Wrapf(err, "frame %s: error estimating crop box", id)
	}

	full, err := preprocess.NewCropResize(box, d.cfg.ImageSize)

	if err != nil {
		return nil, errors.Wrapf(err, "frame %s", id)
	}

	half, err := preprocess.NewCropResize(box, d.cfg.InputSize())

	if err != nil {
		return nil, errors.Wrapf(err, "frame %s", id)
	}

	vertsCrop, kCrop, err := half.TransformCamera(verts, params.CameraIntrinsics)

	if err != nil {
		return nil, errors.Wrapf(err, "frame %s: error transforming camera", id)
	}

	landmarksCrop := full.TransformPoints(landmarks)

	image, mask, err := d.cropRasters(full, rgb, segm)

	if err != nil {
		return nil, errors.Wrapf(err, "frame %s", id)
	}

	params.CameraIntrinsics = nil

	d.log.Debug("assembled sample",
		zap.String("frame", id),
		zap.Stringer("box", box),
		zap.Float64("scale", full.ScaleX()),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &Sample{
		FrameID:   id,
		Image:     image,
		Mask:      mask,
		Landmarks: landmarksCrop,
		Vertices:  vertsCrop,
		K:         kCrop,
		Params:    params,
		Box:       box,
	}, nil
}

// projectVertices evaluates the body model for params, keeps the configured
// vertex subset and projects it through the frame intrinsics.  The hand poses
// of params are truncated in place.
func (d *Dataset) projectVertices(params *bodymodel.Params) (*mat.Dense, error) {

	if params.CameraIntrinsics == nil {
		return nil, errors.Wrap(bodymodel.ErrMissingField, bodymodel.KeyCameraIntrinsics)
	}

	ev, err := d.table.Get(params.Gender)

	if err != nil {
		return nil, err
	}

	if err := params.TruncateHandPoses(); err != nil {
		return nil, err
	}

	all, err := ev.Vertices(params)

	if err != nil {
		return nil, errors.Wrap(err, "error evaluating body model")
	}

	rows, cols := all.Dims()

	if cols != 3 {
		return nil, errors.Errorf("body model returned %d columns, expected 3", cols)
	}

	selected := mat.NewDense(len(d.cfg.VertexIndices), 3, nil)

	for i, vi := range d.cfg.VertexIndices {

		if vi >= rows {
			return nil, errors.Wrapf(ErrIndexRange, "vertex %d of %d", vi, rows)
		}

		selected.SetRow(i, all.RawRowView(vi))
	}

	projected, err := camera.Project(selected, params.CameraIntrinsics)

	if err != nil {
		return nil, errors.Wrap(err, "error projecting vertices")
	}

	return projected, nil
}

// cropRasters warps the image and mask into the crop, composites the mask
// over the image and maps the image to [-1, 1]
func (d *Dataset) cropRasters(c *preprocess.CropResize, rgb, segm gocv.Mat) (gocv.Mat, gocv.Mat, error) {

	rgbCrop := gocv.NewMat()
	defer rgbCrop.Close()

	if err := c.WarpImage(rgb, &rgbCrop); err != nil {
		return gocv.Mat{}, gocv.Mat{}, errors.Wrap(err, "error cropping rgb")
	}

	mask := gocv.NewMat()

	if err := c.WarpImage(segm, &mask); err != nil {
		mask.Close()
		return gocv.Mat{}, gocv.Mat{}, errors.Wrap(err, "error cropping segmentation")
	}

	masked := gocv.NewMat()
	defer masked.Close()

	if err := preprocess.Composite(rgbCrop, mask, &masked); err != nil {
		mask.Close()
		return gocv.Mat{}, gocv.Mat{}, errors.Wrap(err, "error compositing mask")
	}

	image := gocv.NewMat()
	preprocess.ToTanh(masked, &image)

	return image, mask, nil
}
