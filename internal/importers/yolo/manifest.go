package yolo

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/weedai/weedcoco-go/internal/errors"
	"github.com/weedai/weedcoco-go/internal/weedcoco"
)

// ErrManifestNotFound is returned when the YOLO directory has no class manifest.
var ErrManifestNotFound = errors.NewStd("could not find a .yaml file in the yolo directory")

// Manifest is the class list of a YOLO dataset.
type Manifest struct {
	Path  string
	Names []string // class names indexed by class id
}

// Categories returns one category per class, with the class index as id.
func (m *Manifest) Categories() []weedcoco.Category {
	cats := make([]weedcoco.Category, len(m.Names))
	for i, name := range m.Names {
		cats[i] = weedcoco.Category{ID: i, Name: name}
	}
	return cats
}

// FindManifest returns the first *.yaml file in dir in lexical order,
// falling back to *.yml.
func FindManifest(fsys afero.Fs, dir string) (string, error) {
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := listFiles(fsys, dir, pattern)
		if err != nil {
			return "", errors.New(fmt.Errorf("searching for manifest: %w", err)).
				Category(errors.CategoryFileIO).
				Context("dir", dir).
				Build()
		}
		if len(matches) > 0 {
			return matches[0], nil
		}
	}

	return "", errors.New(fmt.Errorf("%w: %s", ErrManifestNotFound, dir)).
		Category(errors.CategoryUsage).
		Context("dir", dir).
		Build()
}

// listFiles returns the paths of the regular files directly in dir whose
// base name matches pattern, in lexical order. dir itself is taken
// literally, so names with glob metacharacters work. A missing dir has no
// files.
func listFiles(fsys afero.Fs, dir, pattern string) ([]string, error) {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ok, err := filepath.Match(pattern, e.Name())
		if err != nil {
			return nil, err
		}
		if ok {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}

// LoadManifest reads the names list from a YOLO dataset YAML file.
// names may be a sequence or a mapping from class index to name; a mapping
// must cover every index from 0 without gaps.
func LoadManifest(fsys afero.Fs, path string) (*Manifest, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, errors.FileError(fmt.Errorf("reading manifest: %w", err), path)
	}

	var raw struct {
		Names yaml.Node `yaml:"names"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, manifestError(path, err)
	}

	names, err := decodeNames(&raw.Names)
	if err != nil {
		return nil, manifestError(path, err)
	}
	return &Manifest{Path: path, Names: names}, nil
}

func decodeNames(node *yaml.Node) ([]string, error) {
	switch node.Kind {
	case yaml.SequenceNode:
		var names []string
		if err := node.Decode(&names); err != nil {
			return nil, err
		}
		if len(names) == 0 {
			return nil, errors.NewStd("names is empty")
		}
		return names, nil

	case yaml.MappingNode:
		var byIndex map[int]string
		if err := node.Decode(&byIndex); err != nil {
			return nil, err
		}
		if len(byIndex) == 0 {
			return nil, errors.NewStd("names is empty")
		}
		names := make([]string, len(byIndex))
		for i := range names {
			name, ok := byIndex[i]
			if !ok {
				return nil, fmt.Errorf("names has no entry for class %d", i)
			}
			names[i] = name
		}
		return names, nil

	case 0:
		return nil, errors.NewStd("missing names")

	default:
		return nil, fmt.Errorf("names must be a list or a mapping, line %d", node.Line)
	}
}

func manifestError(path string, err error) error {
	return errors.New(fmt.Errorf("parsing manifest %s: %w", path, err)).
		Category(errors.CategoryFileParsing).
		FileContext(path).
		Build()
}
