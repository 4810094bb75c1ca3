package imageprobe

import (
	"path/filepath"
	"slices"
	"strings"
)

// approvedExtensions lists the image file extensions accepted by the importers.
var approvedExtensions = []string{".bmp", ".gif", ".jpeg", ".jpg", ".png", ".tif", ".tiff", ".webp"}

// IsApprovedImageExtension reports whether name ends in an approved image extension.
// The comparison ignores case, so "IMG_01.JPG" is approved.
func IsApprovedImageExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	_, found := slices.BinarySearch(approvedExtensions, ext)
	return found
}

// ApprovedExtensions returns a copy of the approved extension list.
func ApprovedExtensions() []string {
	return slices.Clone(approvedExtensions)
}
