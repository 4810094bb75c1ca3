// Package imageprobe reads image dimensions without decoding pixel data.
package imageprobe

import (
	"fmt"
	"image"
	"io"
	"strings"

	// Register decoders with image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"

	"github.com/weedai/weedcoco-go/internal/errors"
	"github.com/weedai/weedcoco-go/internal/logger"
)

// Dimensions is the pixel size of an image.
type Dimensions struct {
	Width  int
	Height int
}

// Prober resolves the pixel dimensions of an image file.
// The boolean is false when the file is missing or not a readable image.
type Prober interface {
	DimensionsOf(path string) (Dimensions, bool)
}

// FileProber probes images stored on an afero filesystem.
type FileProber struct {
	fs  afero.Fs
	log logger.Logger
}

// NewFileProber creates a prober over fs. A nil log disables debug output.
func NewFileProber(fs afero.Fs, log logger.Logger) *FileProber {
	if log != nil {
		log = log.Module("imageprobe")
	}
	return &FileProber{fs: fs, log: log}
}

// DimensionsOf implements Prober.
func (p *FileProber) DimensionsOf(path string) (Dimensions, bool) {
	dims, err := p.Probe(path)
	if err != nil {
		if p.log != nil {
			p.log.Debug("image dimensions unavailable",
				logger.String("path", path),
				logger.Error(err))
		}
		return Dimensions{}, false
	}
	return dims, true
}

// Probe returns the dimensions of the image at path or the reason it could not be read.
func (p *FileProber) Probe(path string) (Dimensions, error) {
	f, err := p.fs.Open(path)
	if err != nil {
		return Dimensions{}, errors.New(err).
			Category(errors.CategoryNotFound).
			FileContext(path).
			Build()
	}
	defer f.Close()

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return Dimensions{}, errors.FileError(fmt.Errorf("sniffing content type: %w", err), path)
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return Dimensions{}, errors.Newf("not an image: detected %s", mtype.String()).
			Category(errors.CategoryImageProbe).
			FileContext(path).
			Context("mime_type", mtype.String()).
			Build()
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Dimensions{}, errors.FileError(fmt.Errorf("rewinding image: %w", err), path)
	}

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return Dimensions{}, errors.New(fmt.Errorf("decoding image header: %w", err)).
			Category(errors.CategoryImageProbe).
			FileContext(path).
			Context("mime_type", mtype.String()).
			Build()
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Dimensions{}, errors.Newf("%s image has empty dimensions %dx%d", format, cfg.Width, cfg.Height).
			Category(errors.CategoryImageProbe).
			FileContext(path).
			Build()
	}

	return Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}

// StaticProber answers from a fixed table keyed by path.
type StaticProber map[string]Dimensions

// DimensionsOf implements Prober.
func (s StaticProber) DimensionsOf(path string) (Dimensions, bool) {
	d, ok := s[path]
	return d, ok
}
