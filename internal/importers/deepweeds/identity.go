package deepweeds

// imageEntry records where an image was created.
type imageEntry struct {
	id  int // assigned image id
	row int // data row that created the image
	pos int // position in the document's image list
}

// imageIndex assigns image ids by resolved path for one conversion run.
type imageIndex struct {
	byPath     map[string]imageEntry
	duplicates []string
	dupSeen    map[string]struct{}
}

func newImageIndex(capacity int) *imageIndex {
	return &imageIndex{
		byPath:  make(map[string]imageEntry, capacity),
		dupSeen: make(map[string]struct{}),
	}
}

func (ix *imageIndex) lookup(path string) (imageEntry, bool) {
	e, ok := ix.byPath[path]
	return e, ok
}

// add registers path as created by row. The row index becomes the image id.
func (ix *imageIndex) add(path string, row, pos int) imageEntry {
	e := imageEntry{id: row, row: row, pos: pos}
	ix.byPath[path] = e
	return e
}

// recordDuplicate adds filename to the duplicate set, keeping first-seen order.
// It reports whether the filename was new to the set.
func (ix *imageIndex) recordDuplicate(filename string) bool {
	if _, ok := ix.dupSeen[filename]; ok {
		return false
	}
	ix.dupSeen[filename] = struct{}{}
	ix.duplicates = append(ix.duplicates, filename)
	return true
}
