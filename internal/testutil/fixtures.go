// Package testutil provides shared test fixtures for the weedcoco packages.
// These helpers reduce duplication across test files and ensure consistent test patterns.
package testutil

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/weedai/weedcoco-go/internal/logger"
)

// WritePNG writes a blank w×h PNG to path on fs. The content is PNG whatever
// the extension, which the prober accepts because it sniffs content.
func WritePNG(t *testing.T, fs afero.Fs, path string, w, h int) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))))
	require.NoError(t, afero.WriteFile(fs, path, buf.Bytes(), 0o644))
}

// WriteFile writes content to path on fs, creating parent directories.
func WriteFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() logger.Logger {
	return logger.NewSlogLogger(io.Discard, logger.LogLevelError)
}

// BufferLogger returns a logger writing text records at warn level and above to buf.
func BufferLogger(buf *bytes.Buffer) logger.Logger {
	return logger.NewSlogLogger(buf, logger.LogLevelWarn)
}
