package weedcoco

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weedai/weedcoco-go/internal/errors"
)

const agcontextYAML = `
agcontext_name: paddock_trial
crop_type: wheat
bbch_code: "13"
location_lat: -33.9
location_long: 151.2
camera_make: Canon
cropped_to_plant: true
`

func yoloDocument() *Document {
	return &Document{
		Images: []Image{
			{ID: 0, FileName: "a.png", Width: 10, Height: 10},
			{ID: 1, FileName: "b.png", Width: 10, Height: 10},
		},
		Categories: []Category{{ID: 0, Name: "weed"}},
	}
}

func TestAgContextFromFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "agcontext.yaml", []byte(agcontextYAML), 0o644))

	doc := yoloDocument()
	require.NoError(t, Apply(doc, AgContextFromFile(fs, "agcontext.yaml")))

	require.Len(t, doc.AgContexts, 1)
	agc := doc.AgContexts[0]
	assert.Equal(t, 0, agc.ID)
	assert.Equal(t, "paddock_trial", agc.AgContextName)
	assert.Equal(t, "13", agc.BBCHCode)
	assert.InDelta(t, -33.9, agc.LocationLat, 1e-9)
	assert.True(t, agc.CroppedToPlant)

	for _, img := range doc.Images {
		require.NotNil(t, img.AgContextID)
		assert.Equal(t, 0, *img.AgContextID)
	}
}

func TestAgContextFromJSONForcesIDZero(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "agc.json",
		[]byte(`{"id": 7, "agcontext_name": "x", "location_lat": 1, "location_long": 2}`), 0o644))

	doc := yoloDocument()
	require.NoError(t, AgContextFromFile(fs, "agc.json")(doc))
	assert.Equal(t, 0, doc.AgContexts[0].ID)
	assert.Equal(t, 0, *doc.Images[1].AgContextID)
}

func TestAgContextRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "agc.yaml", []byte("agcontext_name: x\ncolour_of_sky: blue\n"), 0o644))

	doc := yoloDocument()
	err := Apply(doc, AgContextFromFile(fs, "agc.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileParsing))
	assert.Nil(t, doc.AgContexts)
	assert.Nil(t, doc.Images[0].AgContextID)
}

func TestAgContextMissingFile(t *testing.T) {
	t.Parallel()

	err := AgContextFromFile(afero.NewMemMapFs(), "nope.yaml")(yoloDocument())
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileIO))
}

func TestMetadataFromFileMergesIntoInfo(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "meta.yaml", []byte(`
name: Weed trial
creator:
  - name: Jane Citizen
license: CC-BY-4.0
`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "patch.json",
		[]byte(`{"license": null, "version": "2"}`), 0o644))

	doc := yoloDocument()
	require.NoError(t, Apply(doc,
		MetadataFromFile(fs, "meta.yaml"),
		MetadataFromFile(fs, "patch.json"),
	))

	md := doc.Info.Metadata
	assert.Equal(t, "Weed trial", md["name"])
	assert.Equal(t, "2", md["version"])
	assert.NotContains(t, md, "license")
	creators := md["creator"].([]any)
	assert.Equal(t, "Jane Citizen", creators[0].(map[string]any)["name"])
}

func TestMetadataRejectsNonMapping(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "meta.yaml", []byte("- just\n- a list\n"), 0o644))

	err := MetadataFromFile(fs, "meta.yaml")(yoloDocument())
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileParsing))
}

func TestApplyStopsAtFirstError(t *testing.T) {
	t.Parallel()

	calls := 0
	count := func(*Document) error { calls++; return nil }
	fail := func(*Document) error { return errors.NewStd("boom") }

	err := Apply(yoloDocument(), count, nil, fail, count)
	require.EqualError(t, err, "boom")
	assert.Equal(t, 1, calls)
}
