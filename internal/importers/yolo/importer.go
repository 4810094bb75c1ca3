// Package yolo converts a YOLO dataset (a class manifest and one normalized
// box file per image) into a COCO-compatible document.
package yolo

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/weedai/weedcoco-go/internal/errors"
	"github.com/weedai/weedcoco-go/internal/imageprobe"
	"github.com/weedai/weedcoco-go/internal/logger"
	"github.com/weedai/weedcoco-go/internal/observability/metrics"
	"github.com/weedai/weedcoco-go/internal/weedcoco"
)

// ErrNoImages is returned when no annotation file could be paired with a readable image.
var ErrNoImages = errors.NewStd("found no .txt files matching images")

// Options selects the inputs of one conversion.
type Options struct {
	Dir      string // directory with *.txt label files and the class manifest
	ImageDir string // directory with the images the label files describe
}

// Report summarizes a conversion.
type Report struct {
	Manifest        string
	AnnotationFiles int // *.txt files found
	Unmatched       int // label files without an image of the same stem
	Unreadable      int // images whose dimensions could not be read
	MalformedLines  int // non-blank lines that are not five numbers
	Images          int
	Annotations     int
	Elapsed         time.Duration
}

// Importer converts YOLO datasets.
type Importer struct {
	fs      afero.Fs
	prober  imageprobe.Prober
	log     logger.Logger
	metrics *metrics.ConversionMetrics
}

// Option configures an Importer.
type Option func(*Importer)

// WithProber replaces the default file prober.
func WithProber(p imageprobe.Prober) Option {
	return func(im *Importer) { im.prober = p }
}

// WithMetrics records run and warning counts on m.
func WithMetrics(m *metrics.ConversionMetrics) Option {
	return func(im *Importer) { im.metrics = m }
}

// New creates an Importer reading from fs.
func New(fs afero.Fs, log logger.Logger, opts ...Option) *Importer {
	im := &Importer{
		fs:  fs,
		log: log.Module("yolo"),
	}
	for _, opt := range opts {
		opt(im)
	}
	if im.prober == nil {
		im.prober = imageprobe.NewFileProber(fs, log)
	}
	return im
}

// Convert builds the document for the dataset described by opts.
// Ids are assigned sequentially per call, in lexical order of the label files.
func (im *Importer) Convert(ctx context.Context, opts Options) (doc *weedcoco.Document, report *Report, err error) {
	start := time.Now()
	log := im.log.WithContext(ctx)

	defer func() {
		if err != nil {
			im.metrics.RecordRunError(metrics.ImporterYOLO, time.Since(start))
		}
	}()

	manifestPath, err := FindManifest(im.fs, opts.Dir)
	if err != nil {
		return nil, nil, err
	}
	manifest, err := LoadManifest(im.fs, manifestPath)
	if err != nil {
		return nil, nil, err
	}
	log.Debug("loaded class manifest",
		logger.String("path", manifestPath),
		logger.Int("classes", len(manifest.Names)))

	images, err := im.indexImages(log, opts.ImageDir)
	if err != nil {
		return nil, nil, err
	}

	labelFiles, err := listFiles(im.fs, opts.Dir, "*.txt")
	if err != nil {
		return nil, nil, errors.New(fmt.Errorf("listing label files: %w", err)).
			Category(errors.CategoryFileIO).
			Context("dir", opts.Dir).
			Build()
	}

	c := &conversion{
		im:       im,
		log:      log,
		classes:  len(manifest.Names),
		warnedID: make(map[int]struct{}),
		doc: &weedcoco.Document{
			Images:      []weedcoco.Image{},
			Annotations: []weedcoco.Annotation{},
			Categories:  manifest.Categories(),
		},
		report: &Report{
			Manifest:        manifestPath,
			AnnotationFiles: len(labelFiles),
		},
	}

	for _, labelPath := range labelFiles {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if err := c.addLabelFile(labelPath, images, opts.ImageDir); err != nil {
			return nil, nil, err
		}
	}

	if len(c.doc.Images) == 0 {
		return nil, nil, errors.New(fmt.Errorf("%w in %s", ErrNoImages, opts.Dir)).
			Category(errors.CategoryUsage).
			Context("dir", opts.Dir).
			Context("label_files", len(labelFiles)).
			Build()
	}

	report = c.report
	report.Images = len(c.doc.Images)
	report.Annotations = len(c.doc.Annotations)
	report.Elapsed = time.Since(start)

	log.Info("converted yolo dataset",
		logger.Duration("elapsed", report.Elapsed),
		logger.Int("images", report.Images),
		logger.Int("annotations", report.Annotations),
		logger.Int("categories", len(c.doc.Categories)),
		logger.Int("unmatched", report.Unmatched),
		logger.Int("unreadable", report.Unreadable),
		logger.Int("malformed_lines", report.MalformedLines))

	im.metrics.RecordRun(metrics.ImporterYOLO, report.Images, report.Annotations, len(c.doc.Categories), report.Elapsed)
	return c.doc, report, nil
}

// indexImages maps file stems to image file names. On a stem collision the
// lexically first file wins.
func (im *Importer) indexImages(log logger.Logger, dir string) (map[string]string, error) {
	entries, err := afero.ReadDir(im.fs, dir)
	if err != nil {
		return nil, errors.FileError(fmt.Errorf("reading image directory: %w", err), dir)
	}

	byStem := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !imageprobe.IsApprovedImageExtension(entry.Name()) {
			continue
		}
		name := entry.Name()
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		if kept, dup := byStem[stem]; dup {
			log.Warn("several images share a stem, keeping the first",
				logger.String("stem", stem),
				logger.String("kept", kept),
				logger.String("ignored", name))
			im.metrics.RecordWarning(metrics.ImporterYOLO, metrics.WarningStemCollision)
			continue
		}
		byStem[stem] = name
	}
	return byStem, nil
}

// conversion holds the counters of a single Convert call.
type conversion struct {
	im       *Importer
	log      logger.Logger
	doc      *weedcoco.Document
	report   *Report
	classes  int
	warnedID map[int]struct{}

	nextImageID      int
	nextAnnotationID int
}

func (c *conversion) addLabelFile(labelPath string, images map[string]string, imageDir string) error {
	base := filepath.Base(labelPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	imageName, ok := images[stem]
	if !ok {
		c.log.Warn("skipping annotation file without matching image", logger.String("file", base))
		c.report.Unmatched++
		c.im.metrics.RecordWarning(metrics.ImporterYOLO, metrics.WarningUnmatchedAnnotation)
		return nil
	}

	dims, ok := c.im.prober.DimensionsOf(filepath.Join(imageDir, imageName))
	if !ok {
		c.log.Warn("could not read image dimensions, skipping", logger.String("image", imageName))
		c.report.Unreadable++
		c.im.metrics.RecordWarning(metrics.ImporterYOLO, metrics.WarningUnreadableImage)
		return nil
	}

	f, err := c.im.fs.Open(labelPath)
	if err != nil {
		return errors.FileError(fmt.Errorf("opening label file: %w", err), labelPath)
	}
	defer f.Close()

	imageID := c.nextImageID
	var anns []weedcoco.Annotation

	reader := bufio.NewReader(f)
	for lineNo := 1; ; lineNo++ {
		line, readErr := reader.ReadString('\n')
		if line != "" {
			if box, ok := c.parseLine(line, base, lineNo); ok {
				anns = append(anns, box.Annotation(c.nextAnnotationID, imageID, dims.Width, dims.Height))
				c.nextAnnotationID++
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return errors.New(fmt.Errorf("reading label file: %w", readErr)).
				Category(errors.CategoryFileParsing).
				FileContext(labelPath).
				Build()
		}
	}

	c.doc.Images = append(c.doc.Images, weedcoco.Image{
		ID:       imageID,
		FileName: imageName,
		Width:    dims.Width,
		Height:   dims.Height,
	})
	c.doc.Annotations = append(c.doc.Annotations, anns...)
	c.nextImageID++
	return nil
}

// parseLine parses one label line. Malformed lines are counted and skipped;
// blank lines are skipped silently.
func (c *conversion) parseLine(line, file string, lineNo int) (Box, bool) {
	box, err := ParseLine(line)
	if err != nil {
		if err != errBlankLine {
			c.log.Debug("skipping malformed line",
				logger.String("file", file),
				logger.Int("line", lineNo),
				logger.Error(err))
			c.report.MalformedLines++
			c.im.metrics.RecordWarning(metrics.ImporterYOLO, metrics.WarningMalformedLine)
		}
		return Box{}, false
	}
	c.checkClassID(box.ClassID, file, lineNo)
	return box, true
}

// checkClassID warns once per class id that is outside the manifest.
// The annotation is still emitted with the id as given.
func (c *conversion) checkClassID(id int, file string, line int) {
	if id >= 0 && id < c.classes {
		return
	}
	if _, warned := c.warnedID[id]; warned {
		return
	}
	c.warnedID[id] = struct{}{}
	c.log.Warn("class id not listed in manifest",
		logger.Int("class_id", id),
		logger.Int("classes", c.classes),
		logger.String("file", file),
		logger.Int("line", line))
}
