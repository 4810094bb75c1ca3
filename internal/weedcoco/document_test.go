package weedcoco

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weedai/weedcoco-go/internal/errors"
)

// sampleDocument returns a small document that passes weedcoco validation.
func sampleDocument() *Document {
	return &Document{
		Images: []Image{
			{ID: 0, FileName: "a.jpg", Width: 256, Height: 256, License: IntPtr(0), AgContextID: IntPtr(0)},
			{ID: 2, FileName: "b.jpg", Width: 256, Height: 256, License: IntPtr(0), AgContextID: IntPtr(0)},
		},
		Annotations: []Annotation{
			{ID: 0, ImageID: 0, CategoryID: 1, AgContextName: "deepweeds"},
			{ID: 1, ImageID: 0, CategoryID: 8, AgContextName: "deepweeds"},
			{ID: 2, ImageID: 2, CategoryID: 1, AgContextName: "deepweeds"},
		},
		Categories: []Category{
			{ID: 1, Name: "weed: lantana camara", CommonName: "lantana", Role: "weed", Species: "lantana camara", EPPOTaxonCode: "LANCA"},
			{ID: 8, Name: "none", CommonName: "negative", Role: "na"},
		},
		Info:    Info{Year: 2019, Description: "test", ID: IntPtr(0)},
		License: []License{{ID: 0, LicenseName: "CC BY 4.0", URL: "https://creativecommons.org/licenses/by/4.0/"}},
		AgContexts: []AgContext{
			{ID: 0, AgContextName: "deepweeds", LocationLat: -26, LocationLong: 150},
		},
		Collections: []Collection{{ID: 0, Title: "DeepWeeds"}},
		CollectionMemberships: []CollectionMembership{
			{AnnotationID: 0, CollectionID: 0},
			{AnnotationID: 1, CollectionID: 0},
			{AnnotationID: 2, CollectionID: 0},
		},
	}
}

func TestEncodeIndentAndOmission(t *testing.T) {
	t.Parallel()

	doc := &Document{
		Images: []Image{{ID: 0, FileName: "x.png", Width: 100, Height: 200}},
		Annotations: []Annotation{{
			ID: 0, ImageID: 0, CategoryID: 0,
			BBox:    &BBox{30, 90, 40, 40},
			Area:    Float64Ptr(1600),
			IsCrowd: IntPtr(0),
		}},
		Categories: []Category{{ID: 0, Name: "weed"}},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, doc))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "{\n    \"images\": ["), out)
	assert.Contains(t, out, `"info": {}`)
	assert.Contains(t, out, `"iscrowd": 0`)
	assert.Contains(t, out, `"area": 1600`)
	// YOLO images carry no license or agcontext reference
	assert.NotContains(t, out, "license")
	assert.NotContains(t, out, "agcontext")

	var generic map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &generic))
	ann := generic["annotations"].([]any)[0].(map[string]any)
	assert.Equal(t, []any{30.0, 90.0, 40.0, 40.0}, ann["bbox"])
}

func TestEncodeZeroValuedReferences(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sampleDocument()))

	var generic map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &generic))

	img := generic["images"].([]any)[0].(map[string]any)
	assert.InDelta(t, 0, img["license"], 0)
	assert.InDelta(t, 0, img["agcontext_id"], 0)

	info := generic["info"].(map[string]any)
	assert.InDelta(t, 0, info["id"], 0)
}

func TestEncodeEmptyListsAsArrays(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, &Document{}))
	assert.Contains(t, buf.String(), `"images": []`)
	assert.Contains(t, buf.String(), `"annotations": []`)
	assert.Contains(t, buf.String(), `"categories": []`)
	assert.NotContains(t, buf.String(), "null")
}

func TestEncodeDoesNotEscapeHTML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	doc := &Document{Info: Info{Description: "CSV <annotations> & JPEG"}}
	require.NoError(t, Encode(&buf, doc))
	assert.Contains(t, buf.String(), "CSV <annotations> & JPEG")
}

func TestWriteFileThenReadFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	doc := sampleDocument()
	require.NoError(t, WriteFile(fs, "out/weedcoco.json", doc))

	got, err := ReadFile(fs, "out/weedcoco.json")
	require.NoError(t, err)
	assert.Equal(t, doc.Images, got.Images)
	assert.Equal(t, doc.Categories, got.Categories)

	// no temporary files are left behind
	entries, err := afero.ReadDir(fs, "out")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "weedcoco.json", entries[0].Name())
}

func TestWriteFileReplacesExisting(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "doc.json", []byte("stale"), 0o644))
	require.NoError(t, WriteFile(fs, "doc.json", sampleDocument()))

	data, err := afero.ReadFile(fs, "doc.json")
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestWriteFileIsWorldReadable(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", "weedcoco.json")
	require.NoError(t, WriteFile(afero.NewOsFs(), path, sampleDocument()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestReadFileErrors(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	_, err := ReadFile(fs, "missing.json")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileIO))

	require.NoError(t, afero.WriteFile(fs, "broken.json", []byte("{"), 0o644))
	_, err = ReadFile(fs, "broken.json")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileParsing))
}

func TestReferences(t *testing.T) {
	t.Parallel()

	assert.True(t, References(sampleDocument()).OK())

	doc := sampleDocument()
	doc.Images = append(doc.Images, Image{ID: 2, FileName: "dup.jpg", AgContextID: IntPtr(5)})
	doc.Annotations = append(doc.Annotations, Annotation{ID: 9, ImageID: 42, CategoryID: 3})

	r := References(doc)
	assert.False(t, r.OK())
	assert.Equal(t, []int{2}, r.DuplicateImageIDs)
	assert.Equal(t, []int{9}, r.UnresolvedImageRefs)
	assert.Equal(t, []int{9}, r.UnresolvedCategoryRefs)
	assert.Equal(t, []int{2}, r.UnresolvedAgContextRefs)
	assert.Empty(t, r.DuplicateAnnotationIDs)
}
