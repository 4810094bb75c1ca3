package imageprobe

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weedai/weedcoco-go/internal/errors"
)

func encodeImage(t *testing.T, format string, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 40, G: 160, B: 40, A: 255})

	var buf bytes.Buffer
	switch format {
	case "png":
		require.NoError(t, png.Encode(&buf, img))
	case "jpeg":
		require.NoError(t, jpeg.Encode(&buf, img, nil))
	case "gif":
		require.NoError(t, gif.Encode(&buf, img, nil))
	default:
		t.Fatalf("unsupported format %q", format)
	}
	return buf.Bytes()
}

func TestFileProberDimensions(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "images/a.png", encodeImage(t, "png", 100, 200), 0o644))
	require.NoError(t, afero.WriteFile(fs, "images/b.jpg", encodeImage(t, "jpeg", 64, 48), 0o644))
	require.NoError(t, afero.WriteFile(fs, "images/c.gif", encodeImage(t, "gif", 7, 9), 0o644))

	p := NewFileProber(fs, nil)

	tests := []struct {
		path string
		want Dimensions
	}{
		{"images/a.png", Dimensions{Width: 100, Height: 200}},
		{"images/b.jpg", Dimensions{Width: 64, Height: 48}},
		{"images/c.gif", Dimensions{Width: 7, Height: 9}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			got, ok := p.DimensionsOf(tt.path)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileProberMissingFile(t *testing.T) {
	t.Parallel()

	p := NewFileProber(afero.NewMemMapFs(), nil)

	_, ok := p.DimensionsOf("nope.jpg")
	assert.False(t, ok)

	_, err := p.Probe("nope.jpg")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryNotFound))
}

func TestFileProberRejectsNonImage(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "notes.jpg", []byte("these are not pixels\n"), 0o644))

	p := NewFileProber(fs, nil)
	_, err := p.Probe("notes.jpg")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryImageProbe))
	assert.Contains(t, err.Error(), "not an image")
}

func TestFileProberTruncatedImage(t *testing.T) {
	t.Parallel()

	data := encodeImage(t, "png", 10, 10)
	fs := afero.NewMemMapFs()
	// keep the PNG signature so sniffing passes but the header is cut short
	require.NoError(t, afero.WriteFile(fs, "cut.png", data[:12], 0o644))

	_, ok := NewFileProber(fs, nil).DimensionsOf("cut.png")
	assert.False(t, ok)
}

func TestStaticProber(t *testing.T) {
	t.Parallel()

	p := StaticProber{"a.jpg": {Width: 1, Height: 2}}

	d, ok := p.DimensionsOf("a.jpg")
	assert.True(t, ok)
	assert.Equal(t, Dimensions{Width: 1, Height: 2}, d)

	_, ok = p.DimensionsOf("b.jpg")
	assert.False(t, ok)
}

func TestIsApprovedImageExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want bool
	}{
		{"a.jpg", true},
		{"A.JPG", true},
		{"photo.jpeg", true},
		{"scan.PNG", true},
		{"x.tif", true},
		{"x.tiff", true},
		{"x.webp", true},
		{"x.bmp", true},
		{"x.gif", true},
		{"labels.txt", false},
		{"classes.yaml", false},
		{"noext", false},
		{".jpg.bak", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsApprovedImageExtension(tt.name), tt.name)
	}
	assert.Len(t, ApprovedExtensions(), 8)
}
