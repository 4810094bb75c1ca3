package deepweeds

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weedai/weedcoco-go/internal/errors"
	"github.com/weedai/weedcoco-go/internal/testutil"
	"github.com/weedai/weedcoco-go/internal/weedcoco"
)

func TestImageIndexAssignsRowAsID(t *testing.T) {
	t.Parallel()

	ix := newImageIndex(2)
	e := ix.add("images/a.jpg", 4, 1)
	assert.Equal(t, imageEntry{id: 4, row: 4, pos: 1}, e)

	got, ok := ix.lookup("images/a.jpg")
	require.True(t, ok)
	assert.Equal(t, e, got)

	assert.True(t, ix.recordDuplicate("a.jpg"))
	assert.False(t, ix.recordDuplicate("a.jpg"))
	assert.Equal(t, []string{"a.jpg"}, ix.duplicates)
}

func TestResolveImageRejectsInconsistentIndex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		entry imageEntry
	}{
		{"position past image list", imageEntry{id: 0, row: 0, pos: 9}},
		{"id differs from image at position", imageEntry{id: 5, row: 5, pos: 0}},
		{"id differs from creating row", imageEntry{id: 0, row: 2, pos: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := &conversion{
				log:   testutil.DiscardLogger(),
				opts:  Options{ImageDir: "images"},
				doc:   &weedcoco.Document{Images: []weedcoco.Image{{ID: 0, FileName: "a.jpg"}}},
				index: newImageIndex(1),
			}
			c.index.byPath[filepath.Join("images", "a.jpg")] = tt.entry

			_, err := c.resolveImage(3, &LabelRow{Line: 5, Filename: "a.jpg", Label: 1})
			require.Error(t, err)
			assert.True(t, errors.IsCategory(err, errors.CategoryInvariant))
			assert.Contains(t, err.Error(), "does not match the row that created it")
		})
	}
}

func TestResolveImageReusesConsistentEntry(t *testing.T) {
	t.Parallel()

	c := &conversion{
		im:    &Importer{},
		log:   testutil.DiscardLogger(),
		opts:  Options{ImageDir: "images"},
		doc:   &weedcoco.Document{Images: []weedcoco.Image{{ID: 0, FileName: "a.jpg"}}},
		index: newImageIndex(1),
	}
	c.index.add(filepath.Join("images", "a.jpg"), 0, 0)

	id, err := c.resolveImage(1, &LabelRow{Line: 3, Filename: "a.jpg", Label: 1})
	require.NoError(t, err)
	assert.Equal(t, 0, id)
	assert.Equal(t, []string{"a.jpg"}, c.index.duplicates)
}
