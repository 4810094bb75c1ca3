package weedcoco

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/weedai/weedcoco-go/internal/errors"
)

// Step is a post-processing stage applied to an assembled document.
type Step func(doc *Document) error

// Apply runs steps in order, stopping at the first failure.
func Apply(doc *Document, steps ...Step) error {
	for _, step := range steps {
		if step == nil {
			continue
		}
		if err := step(doc); err != nil {
			return err
		}
	}
	return nil
}

// AgContextFromFile returns a step that makes the agcontext described in
// path the document's only agcontext and points every image at it.
// The file may be YAML or JSON; unknown fields are rejected.
func AgContextFromFile(fs afero.Fs, path string) Step {
	return func(doc *Document) error {
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return errors.FileError(fmt.Errorf("reading agcontext: %w", err), path)
		}

		var agc AgContext
		if err := decodeStrict(path, data, &agc); err != nil {
			return errors.New(fmt.Errorf("parsing agcontext %s: %w", path, err)).
				Category(errors.CategoryFileParsing).
				FileContext(path).
				Build()
		}
		agc.ID = 0

		doc.AgContexts = []AgContext{agc}
		for i := range doc.Images {
			doc.Images[i].AgContextID = IntPtr(agc.ID)
		}
		return nil
	}
}

// MetadataFromFile returns a step that merge-patches (RFC 7386) the mapping
// in path into info.metadata. The file may be YAML or JSON.
func MetadataFromFile(fs afero.Fs, path string) Step {
	return func(doc *Document) error {
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return errors.FileError(fmt.Errorf("reading metadata: %w", err), path)
		}

		patch, err := fragmentToJSON(path, data)
		if err != nil {
			return errors.New(fmt.Errorf("parsing metadata %s: %w", path, err)).
				Category(errors.CategoryFileParsing).
				FileContext(path).
				Build()
		}

		merged, err := mergeMetadata(doc.Info.Metadata, patch)
		if err != nil {
			return errors.New(fmt.Errorf("merging metadata %s: %w", path, err)).
				Category(errors.CategoryFileParsing).
				FileContext(path).
				Build()
		}
		doc.Info.Metadata = merged
		return nil
	}
}

func mergeMetadata(current map[string]any, patch []byte) (map[string]any, error) {
	original := []byte("{}")
	if len(current) > 0 {
		var err error
		if original, err = json.Marshal(current); err != nil {
			return nil, err
		}
	}

	out, err := jsonpatch.MergePatch(original, patch)
	if err != nil {
		return nil, err
	}

	var merged map[string]any
	if err := json.Unmarshal(out, &merged); err != nil {
		return nil, err
	}
	return merged, nil
}

func isJSONPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// decodeStrict decodes a YAML or JSON fragment into v, rejecting unknown fields.
func decodeStrict(path string, data []byte, v any) error {
	if isJSONPath(path) {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(v)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(v)
}

// fragmentToJSON converts a YAML or JSON mapping into a JSON object.
func fragmentToJSON(path string, data []byte) ([]byte, error) {
	var m map[string]any
	if isJSONPath(path) {
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.NewStd("expected a mapping at the top level")
	}
	return json.Marshal(m)
}
