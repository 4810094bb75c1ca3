package weedcoco

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/weedai/weedcoco-go/internal/errors"
)

const jsonIndent = "    "

// outputMode is the permission of written documents. Temporary files are
// created 0600 and would otherwise keep that mode after the rename.
const outputMode = 0o644

// Encode writes doc as indented JSON. Empty entity lists are written as [] rather than null.
func Encode(w io.Writer, doc *Document) error {
	out := *doc
	if out.Images == nil {
		out.Images = []Image{}
	}
	if out.Annotations == nil {
		out.Annotations = []Annotation{}
	}
	if out.Categories == nil {
		out.Categories = []Category{}
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", jsonIndent)
	if err := enc.Encode(&out); err != nil {
		return errors.New(fmt.Errorf("encoding document: %w", err)).
			Category(errors.CategoryGeneric).
			Build()
	}
	return nil
}

// WriteFile encodes doc to path. The document is written to a temporary file
// in the same directory and renamed into place, so path holds either the
// previous content or the complete new document.
func WriteFile(fs afero.Fs, path string, doc *Document) error {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return errors.FileError(fmt.Errorf("creating output directory: %w", err), dir)
	}

	tmp, err := afero.TempFile(fs, dir, ".weedcoco-*.json.tmp")
	if err != nil {
		return errors.FileError(fmt.Errorf("creating temporary output: %w", err), path)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = fs.Remove(tmpName)
	}

	bw := bufio.NewWriter(tmp)
	if err := Encode(bw, doc); err != nil {
		cleanup()
		return err
	}
	if err := bw.Flush(); err != nil {
		cleanup()
		return errors.FileError(fmt.Errorf("writing output: %w", err), path)
	}
	if err := tmp.Close(); err != nil {
		_ = fs.Remove(tmpName)
		return errors.FileError(fmt.Errorf("closing output: %w", err), path)
	}
	if err := fs.Chmod(tmpName, outputMode); err != nil {
		_ = fs.Remove(tmpName)
		return errors.FileError(fmt.Errorf("setting output permissions: %w", err), path)
	}
	if err := fs.Rename(tmpName, path); err != nil {
		_ = fs.Remove(tmpName)
		return errors.FileError(fmt.Errorf("moving output into place: %w", err), path)
	}
	return nil
}

// ReadFile decodes a document from path.
func ReadFile(fs afero.Fs, path string) (*Document, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, errors.FileError(fmt.Errorf("opening document: %w", err), path)
	}
	defer f.Close()

	doc := new(Document)
	if err := json.NewDecoder(bufio.NewReader(f)).Decode(doc); err != nil {
		return nil, errors.New(fmt.Errorf("decoding document %s: %w", path, err)).
			Category(errors.CategoryFileParsing).
			FileContext(path).
			Build()
	}
	return doc, nil
}
