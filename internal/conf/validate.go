// conf/validate.go
package conf

import (
	"fmt"
	"strings"

	"github.com/weedai/weedcoco-go/internal/errors"
	"github.com/weedai/weedcoco-go/internal/logger"
)

// ValidationError collects every problem found in the settings.
type ValidationError struct {
	Errors []string
}

func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ErrorCategory lets the errors package categorize settings failures.
func (ve ValidationError) ErrorCategory() errors.ErrorCategory {
	return errors.CategoryConfiguration
}

// IsKnownSchema reports whether name is a schema the validator understands.
func IsKnownSchema(name string) bool {
	return name == SchemaWeedCOCO || name == SchemaCompatibleCOCO
}

// ValidateSettings validates the entire Settings struct.
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	validateLogSettings(&settings.Log, &ve)

	if strings.TrimSpace(settings.DeepWeeds.OutPath) == "" {
		ve.Errors = append(ve.Errors, "deepweeds.out_path must not be empty")
	}
	if strings.TrimSpace(settings.DeepWeeds.ImageDir) == "" {
		ve.Errors = append(ve.Errors, "deepweeds.image_dir must not be empty")
	}
	if strings.TrimSpace(settings.YOLO.OutPath) == "" {
		ve.Errors = append(ve.Errors, "yolo.out_path must not be empty")
	}
	if !IsKnownSchema(settings.YOLO.Schema) {
		ve.Errors = append(ve.Errors, fmt.Sprintf("yolo.schema %q is not one of %s, %s",
			settings.YOLO.Schema, SchemaWeedCOCO, SchemaCompatibleCOCO))
	}
	if !IsKnownSchema(settings.Validate.Schema) {
		ve.Errors = append(ve.Errors, fmt.Sprintf("validate.schema %q is not one of %s, %s",
			settings.Validate.Schema, SchemaWeedCOCO, SchemaCompatibleCOCO))
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateLogSettings(s *LogSettings, ve *ValidationError) {
	if !logger.IsValidLevel(s.Level) {
		ve.Errors = append(ve.Errors, fmt.Sprintf("log.level %q is invalid", s.Level))
	}
	if s.FileLevel != "" && !logger.IsValidLevel(s.FileLevel) {
		ve.Errors = append(ve.Errors, fmt.Sprintf("log.file_level %q is invalid", s.FileLevel))
	}
}
