// Package metrics provides Prometheus collectors for dataset conversion runs.
package metrics

// Importer label values.
const (
	ImporterDeepWeeds = "deepweeds"
	ImporterYOLO      = "yolo"
)

// Warning kinds recorded by the importers. Each one is a data-quality
// problem that was logged and skipped rather than failing the run.
const (
	WarningMissingImage        = "missing_image"
	WarningDuplicateImage      = "duplicate_image"
	WarningUnknownSpecies      = "unknown_species"
	WarningSpeciesConflict     = "species_conflict"
	WarningUnmatchedAnnotation = "unmatched_annotation"
	WarningUnreadableImage     = "unreadable_image"
	WarningMalformedLine       = "malformed_line"
	WarningStemCollision       = "stem_collision"
)

// Run outcomes.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)
