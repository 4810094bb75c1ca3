// Package deepweeds converts DeepWeeds CSV labels and JPEG images into a
// WeedCOCO document.
//
// labels.csv holds one row per label with Filename, Label and Species
// columns. Each row becomes an annotation whose id is the row's position;
// images are deduplicated by their path inside the image directory and take
// the id of the row that first referenced them. Categories are keyed by the
// numeric label and resolved against a small taxonomy of DeepWeeds species.
package deepweeds

import (
	"context"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/weedai/weedcoco-go/internal/errors"
	"github.com/weedai/weedcoco-go/internal/imageprobe"
	"github.com/weedai/weedcoco-go/internal/logger"
	"github.com/weedai/weedcoco-go/internal/observability/metrics"
	"github.com/weedai/weedcoco-go/internal/weedcoco"
)

// Options selects the inputs of one conversion.
type Options struct {
	LabelsDir string // directory containing labels.csv
	ImageDir  string // directory the Filename column is relative to
	Strict    bool   // treat any repeated image path as an error
}

// Report summarizes a conversion.
type Report struct {
	Rows            int
	Images          int
	Categories      int
	MissingFiles    []string // resolved paths that could not be probed, in row order
	DuplicateImages []string // filenames labelled more than once, first-seen order
	UnknownSpecies  []string // common names missing from the taxonomy table
	Elapsed         time.Duration
}

// Importer converts DeepWeeds labels.
type Importer struct {
	fs      afero.Fs
	prober  imageprobe.Prober
	log     logger.Logger
	metrics *metrics.ConversionMetrics
	now     func() time.Time
}

// Option configures an Importer.
type Option func(*Importer)

// WithProber replaces the default file prober.
func WithProber(p imageprobe.Prober) Option {
	return func(im *Importer) { im.prober = p }
}

// WithClock sets the clock used for the agcontext upload time.
func WithClock(now func() time.Time) Option {
	return func(im *Importer) { im.now = now }
}

// WithMetrics records run and warning counts on m.
func WithMetrics(m *metrics.ConversionMetrics) Option {
	return func(im *Importer) { im.metrics = m }
}

// New creates an Importer reading from fs.
func New(fs afero.Fs, log logger.Logger, opts ...Option) *Importer {
	im := &Importer{
		fs:  fs,
		log: log.Module("deepweeds"),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(im)
	}
	if im.prober == nil {
		im.prober = imageprobe.NewFileProber(fs, log)
	}
	return im
}

// Import reads labels.csv from opts.LabelsDir and converts it.
func (im *Importer) Import(ctx context.Context, opts Options) (*weedcoco.Document, *Report, error) {
	path := filepath.Join(opts.LabelsDir, LabelsFileName)
	rows, err := ReadLabelsFile(im.fs, path)
	if err != nil {
		im.metrics.RecordRunError(metrics.ImporterDeepWeeds, 0)
		return nil, nil, err
	}

	im.log.WithContext(ctx).Info("read labels file",
		logger.String("path", path),
		logger.Int("rows", len(rows)))

	return im.Convert(ctx, rows, opts)
}

// Convert builds the document for rows already parsed from labels.csv.
func (im *Importer) Convert(ctx context.Context, rows []LabelRow, opts Options) (doc *weedcoco.Document, report *Report, err error) {
	start := time.Now()
	log := im.log.WithContext(ctx)

	defer func() {
		if err != nil {
			im.metrics.RecordRunError(metrics.ImporterDeepWeeds, time.Since(start))
		}
	}()

	c := &conversion{
		im:          im,
		log:         log,
		opts:        opts,
		index:       newImageIndex(len(rows)),
		categoryPos: make(map[int]int),
		conflicts:   make(map[conflictKey]struct{}),
		unknownSeen: make(map[string]struct{}),
		doc: &weedcoco.Document{
			Images:      make([]weedcoco.Image, 0, len(rows)),
			Annotations: make([]weedcoco.Annotation, 0, len(rows)),
			Categories:  []weedcoco.Category{},
		},
	}

	for i := range rows {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if err := c.addRow(i, &rows[i]); err != nil {
			return nil, nil, err
		}
	}

	doc = c.finish(im.now())
	report = &Report{
		Rows:            len(rows),
		Images:          len(doc.Images),
		Categories:      len(doc.Categories),
		MissingFiles:    c.missing,
		DuplicateImages: c.index.duplicates,
		UnknownSpecies:  c.unknown,
		Elapsed:         time.Since(start),
	}

	log.Info("finished verifying labels",
		logger.Duration("elapsed", report.Elapsed),
		logger.Int("images", report.Images),
		logger.Int("missing_images", len(report.MissingFiles)),
		logger.Int("repeat_labels", len(report.DuplicateImages)))
	if len(report.MissingFiles) > 0 {
		log.Warn("example of missing file", logger.String("path", report.MissingFiles[0]))
	}

	im.metrics.RecordRun(metrics.ImporterDeepWeeds, report.Images, len(doc.Annotations), report.Categories, report.Elapsed)
	return doc, report, nil
}

type conflictKey struct {
	label      int
	commonName string
}

// conversion holds the state of a single Convert call.
type conversion struct {
	im   *Importer
	log  logger.Logger
	opts Options
	doc  *weedcoco.Document

	index       *imageIndex
	categoryPos map[int]int // label -> position in doc.Categories
	conflicts   map[conflictKey]struct{}
	unknownSeen map[string]struct{}
	missing     []string
	unknown     []string
}

func (c *conversion) addRow(i int, row *LabelRow) error {
	imageID, err := c.resolveImage(i, row)
	if err != nil {
		return err
	}

	c.resolveCategory(row)

	c.doc.Annotations = append(c.doc.Annotations, weedcoco.Annotation{
		ID:            i,
		ImageID:       imageID,
		CategoryID:    row.Label,
		AgContextName: AgContextName,
	})
	return nil
}

// resolveImage returns the image id for the row, creating the image on first sight.
func (c *conversion) resolveImage(i int, row *LabelRow) (int, error) {
	path := filepath.Join(c.opts.ImageDir, row.Filename)

	if entry, seen := c.index.lookup(path); seen {
		if entry.pos >= len(c.doc.Images) || c.doc.Images[entry.pos].ID != entry.id || entry.id != entry.row {
			return 0, errors.Newf("image %s: recorded id %d does not match the row that created it", path, entry.id).
				Category(errors.CategoryInvariant).
				Context("line", row.Line).
				Context("creating_row", entry.row).
				Build()
		}
		if c.opts.Strict {
			return 0, errors.Newf("image %s is labelled more than once (rows %d and %d)", row.Filename, entry.row, i).
				Category(errors.CategoryInvariant).
				Context("line", row.Line).
				FileContext(path).
				Build()
		}
		if c.index.recordDuplicate(row.Filename) {
			c.log.Debug("image labelled more than once",
				logger.String("filename", row.Filename),
				logger.Int("line", row.Line),
				logger.Int("image_id", entry.id))
			c.im.metrics.RecordWarning(metrics.ImporterDeepWeeds, metrics.WarningDuplicateImage)
		}
		return entry.id, nil
	}

	entry := c.index.add(path, i, len(c.doc.Images))
	img := weedcoco.Image{
		ID:          entry.id,
		FileName:    row.Filename,
		License:     weedcoco.IntPtr(0),
		AgContextID: weedcoco.IntPtr(0),
	}
	if dims, ok := c.im.prober.DimensionsOf(path); ok {
		img.Width = dims.Width
		img.Height = dims.Height
	} else {
		c.missing = append(c.missing, path)
		c.im.metrics.RecordWarning(metrics.ImporterDeepWeeds, metrics.WarningMissingImage)
	}
	c.doc.Images = append(c.doc.Images, img)
	return entry.id, nil
}

// resolveCategory creates the category for the row's label the first time it is seen.
// Categories are never changed afterwards.
func (c *conversion) resolveCategory(row *LabelRow) {
	commonName := CanonicalName(row.Species)

	if pos, ok := c.categoryPos[row.Label]; ok {
		existing := c.doc.Categories[pos]
		if existing.CommonName == commonName {
			return
		}
		key := conflictKey{label: row.Label, commonName: commonName}
		if _, warned := c.conflicts[key]; !warned {
			c.conflicts[key] = struct{}{}
			c.log.Warn("label already mapped to a different species, keeping the first",
				logger.Int("label", row.Label),
				logger.String("kept", existing.CommonName),
				logger.String("ignored", commonName),
				logger.Int("line", row.Line))
		}
		c.im.metrics.RecordWarning(metrics.ImporterDeepWeeds, metrics.WarningSpeciesConflict)
		return
	}

	cat, known := newCategory(row.Label, commonName)
	if !known {
		c.warnUnknownSpecies(commonName, row)
	}
	c.categoryPos[row.Label] = len(c.doc.Categories)
	c.doc.Categories = append(c.doc.Categories, cat)
}

func (c *conversion) warnUnknownSpecies(commonName string, row *LabelRow) {
	if _, seen := c.unknownSeen[commonName]; seen {
		return
	}
	c.unknownSeen[commonName] = struct{}{}
	c.unknown = append(c.unknown, commonName)

	fields := []logger.Field{
		logger.String("species", commonName),
		logger.Int("label", row.Label),
		logger.Int("line", row.Line),
	}
	if suggestion, ok := SuggestCommonName(commonName); ok {
		fields = append(fields, logger.String("closest_known", suggestion))
	}
	c.log.Warn("species not in taxonomy table, using common name as species", fields...)
	c.im.metrics.RecordWarning(metrics.ImporterDeepWeeds, metrics.WarningUnknownSpecies)
}

// finish attaches the fixed DeepWeeds dataset records.
func (c *conversion) finish(uploaded time.Time) *weedcoco.Document {
	doc := c.doc
	doc.Info = datasetInfo()
	doc.License = []weedcoco.License{datasetLicense()}
	doc.Collections = []weedcoco.Collection{datasetCollection()}
	doc.AgContexts = []weedcoco.AgContext{datasetAgContext(uploaded)}

	doc.CollectionMemberships = make([]weedcoco.CollectionMembership, 0, len(doc.Annotations))
	for i := range doc.Annotations {
		doc.CollectionMemberships = append(doc.CollectionMemberships, weedcoco.CollectionMembership{
			AnnotationID: doc.Annotations[i].ID,
			CollectionID: 0,
		})
	}
	return doc
}
