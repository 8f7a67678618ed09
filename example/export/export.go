/*
Example code showing how to assemble every frame of a samples directory into
cropped tensors and export them with a pool of workers
*/
package main

import (
	"context"
	"image"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/akamensky/argparse"
	"github.com/pkg/errors"
	"github.com/swdee/go-bodycrop"
	"github.com/swdee/go-bodycrop/bodymodel"
	"github.com/swdee/go-bodycrop/camera"
	"github.com/swdee/go-bodycrop/preprocess"
	"github.com/swdee/go-bodycrop/render"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

func main() {

	parser := argparse.NewParser("export", "Crop and export body reconstruction samples")
	samplesDir := parser.String("d", "samples", &argparse.Options{Help: "Directory of {id}_rgb.jpg, {id}_segm.png, {id}_keypoints.json and {id}_smplx.json files", Required: true})
	modelDir := parser.String("m", "models", &argparse.Options{Help: "Directory of SMPLX_{GENDER}.json body models", Required: true})
	indexFile := parser.String("v", "vertices", &argparse.Options{Help: "Text file of vertex indices, one per line", Required: true})
	imageSize := parser.Int("s", "size", &argparse.Options{Help: "Edge length of the cropped image", Default: bodycrop.DefaultImageSize})
	outDir := parser.String("o", "out", &argparse.Options{Help: "Output directory", Default: "out"})
	workers := parser.Int("w", "workers", &argparse.Options{Help: "Number of samples assembled concurrently", Default: 4})
	fp16 := parser.Flag("", "fp16", &argparse.Options{Help: "Write tensors as half precision"})
	renderDebug := parser.Flag("", "render", &argparse.Options{Help: "Write a {id}_debug.png overlay per sample"})
	boxScale := parser.Float("", "box-scale", &argparse.Options{Help: "Factor the vertex bounds are grown by", Default: 1.0})
	noSquare := parser.Flag("", "no-square", &argparse.Options{Help: "Keep the crop aspect ratio of the vertex bounds"})
	info := parser.Flag("", "info", &argparse.Options{Help: "Print dataset information and exit"})
	debug := parser.Flag("", "debug", &argparse.Options{Help: "Enable debug logging"})

	if err := parser.Parse(os.Args); err != nil {
		os.Stderr.WriteString(parser.Usage(err))
		os.Exit(1)
	}

	logger, err := newLogger(*debug)

	if err != nil {
		os.Stderr.WriteString("error creating logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	defer logger.Sync()

	indices, err := bodycrop.LoadVertexIndices(*indexFile)

	if err != nil {
		logger.Fatal("error loading vertex indices", zap.Error(err))
	}

	table, err := bodymodel.LoadTable(*modelDir)

	if err != nil {
		logger.Fatal("error loading body models", zap.Error(err))
	}

	cfg := bodycrop.DefaultConfig()
	cfg.SamplesDir = *samplesDir
	cfg.ImageSize = *imageSize
	cfg.VertexIndices = indices
	cfg.Box.Scale = *boxScale
	cfg.Box.Square = !*noSquare

	ds, err := bodycrop.NewDataset(cfg, table, bodycrop.WithLogger(logger))

	if err != nil {
		logger.Fatal("error creating dataset", zap.Error(err))
	}

	if *info {
		if err := ds.Query(os.Stdout); err != nil {
			logger.Fatal("error querying dataset", zap.Error(err))
		}
		return
	}

	writer, err := bodycrop.NewWriter(*outDir, *fp16)

	if err != nil {
		logger.Fatal("error creating writer", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	var done atomic.Int64

	pool := bodycrop.NewPool(ds, *workers)

	err = pool.RunAll(ctx, func(s *bodycrop.Sample) error {

		man, err := writer.Write(s)

		if err != nil {
			return err
		}

		if *renderDebug {
			path := filepath.Join(*outDir, s.FrameID+"_debug.png")

			if err := renderSample(s, cfg, path); err != nil {
				return errors.Wrapf(err, "frame %s", s.FrameID)
			}
		}

		logger.Debug("exported sample",
			zap.String("frame", s.FrameID),
			zap.Int("tensors", len(man.Tensors)),
		)

		done.Add(1)
		return nil
	})

	if err != nil {
		logger.Fatal("export failed", zap.Error(err), zap.Int64("exported", done.Load()))
	}

	logger.Info("export complete",
		zap.Int64("samples", done.Load()),
		zap.String("out", *outDir),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// newLogger builds a console logger at info level, or debug when requested
func newLogger(debug bool) (*zap.Logger, error) {

	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)

	if debug {
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	return zcfg.Build()
}

// renderSample draws the mask, landmarks, vertices and vertex bounds of the
// sample over its image and saves the result to path
func renderSample(s *bodycrop.Sample, cfg bodycrop.Config, path string) error {

	img := gocv.NewMat()
	defer img.Close()

	if err := render.ToBGR8(s.Image, &img); err != nil {
		return err
	}

	if err := render.MaskOverlay(&img, s.Mask, render.ClassColor(7), 0.3); err != nil {
		return err
	}

	render.Landmarks(&img, s.Landmarks, render.DefaultLandmarkStyle())

	// vertices live in the half size input frame
	scale := float64(cfg.ImageSize) / float64(cfg.InputSize())
	render.Vertices(&img, s.Vertices, scale, render.VertexColor, 1)

	pixels := camera.Dehomogenize(s.Vertices)
	pixels.Scale(scale, pixels)

	bounds, err := preprocess.EstimateBox(pixels, preprocess.BoxPolicy{Scale: 1, MinExtent: 1})

	if err != nil {
		return err
	}

	render.Box(&img, bounds, "verts", render.Yellow, render.DefaultFont(), 1)

	if err := render.Label(&img, s.FrameID+" "+s.Box.String(), image.Pt(4, img.Rows()-6), render.White); err != nil {
		return err
	}

	if !gocv.IMWrite(path, img) {
		return errors.Errorf("error writing %s", path)
	}

	return nil
}
