package weedcoco

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/weedai/weedcoco-go/internal/errors"
)

// Schema names accepted by Validate.
const (
	SchemaWeedCOCO       = "weedcoco"
	SchemaCompatibleCOCO = "compatible-coco"
)

// categoryNamePattern matches WeedCOCO category names such as "weed: lantana camara".
var categoryNamePattern = regexp.MustCompile(`^(none|(weed|crop|na): \S.*)$`)

// Violation is one rule a document breaks. Path uses JSON field names,
// e.g. "images[3].file_name".
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	if v.Path == "" {
		return v.Message
	}
	return v.Path + ": " + v.Message
}

// ValidationError carries every violation found for a schema.
type ValidationError struct {
	Schema     string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return fmt.Sprintf("document failed %s validation", e.Schema)
	}
	return fmt.Sprintf("document failed %s validation with %d violation(s), first: %s",
		e.Schema, len(e.Violations), e.Violations[0])
}

// ErrorCategory lets the errors package categorize validation failures.
func (e *ValidationError) ErrorCategory() errors.ErrorCategory {
	return errors.CategoryValidation
}

// Validator checks a document against a named schema.
// It returns nil or a *ValidationError; any other error means the check could not run.
type Validator interface {
	Validate(doc *Document, schema string) error
}

// RuleValidator validates documents with struct tags and document-level rules.
type RuleValidator struct {
	v *validator.Validate
}

// NewValidator creates a RuleValidator.
func NewValidator() *RuleValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// registration only fails for empty tags or nil functions
	_ = v.RegisterValidation("category_name", func(fl validator.FieldLevel) bool {
		return categoryNamePattern.MatchString(fl.Field().String())
	})
	return &RuleValidator{v: v}
}

var (
	defaultValidator     *RuleValidator
	defaultValidatorOnce sync.Once
)

// Validate checks doc with a shared RuleValidator.
func Validate(doc *Document, schema string) error {
	defaultValidatorOnce.Do(func() {
		defaultValidator = NewValidator()
	})
	return defaultValidator.Validate(doc, schema)
}

// Validate implements Validator. The document is never modified.
func (rv *RuleValidator) Validate(doc *Document, schema string) error {
	if schema != SchemaWeedCOCO && schema != SchemaCompatibleCOCO {
		return errors.Newf("unknown schema %q", schema).
			Category(errors.CategoryUsage).
			Context("schema", schema).
			Build()
	}

	var violations []Violation
	violations = append(violations, rv.structViolations(doc)...)
	violations = append(violations, cocoViolations(doc)...)
	if schema == SchemaWeedCOCO {
		violations = append(violations, rv.weedcocoViolations(doc)...)
	}

	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Schema: schema, Violations: violations}
}

func (rv *RuleValidator) structViolations(doc *Document) []Violation {
	err := rv.v.Struct(doc)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []Violation{{Message: err.Error()}}
	}

	out := make([]Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, Violation{
			Path:    strings.TrimPrefix(fe.Namespace(), "Document."),
			Message: describeFieldError(fe),
		})
	}
	return out
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "url":
		return "must be a URL"
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

// cocoViolations applies the rules shared by both schemas.
func cocoViolations(doc *Document) []Violation {
	var out []Violation
	refs := References(doc)

	for _, id := range refs.DuplicateImageIDs {
		out = append(out, Violation{Path: "images", Message: fmt.Sprintf("duplicate image id %d", id)})
	}
	for _, id := range refs.DuplicateAnnotationIDs {
		out = append(out, Violation{Path: "annotations", Message: fmt.Sprintf("duplicate annotation id %d", id)})
	}
	for _, id := range refs.DuplicateCategoryIDs {
		out = append(out, Violation{Path: "categories", Message: fmt.Sprintf("duplicate category id %d", id)})
	}
	for _, id := range refs.UnresolvedImageRefs {
		out = append(out, Violation{Path: "annotations", Message: fmt.Sprintf("annotation %d references a missing image", id)})
	}
	for _, id := range refs.UnresolvedCategoryRefs {
		out = append(out, Violation{Path: "annotations", Message: fmt.Sprintf("annotation %d references a missing category", id)})
	}

	for i := range doc.Annotations {
		bbox := doc.Annotations[i].BBox
		if bbox != nil && (bbox[2] < 0 || bbox[3] < 0) {
			out = append(out, Violation{
				Path:    fmt.Sprintf("annotations[%d].bbox", i),
				Message: "width and height must not be negative",
			})
		}
	}
	return out
}

// weedcocoViolations applies the rules only the full WeedCOCO schema has.
func (rv *RuleValidator) weedcocoViolations(doc *Document) []Violation {
	var out []Violation

	if len(doc.AgContexts) == 0 {
		out = append(out, Violation{Path: "agcontexts", Message: "at least one agcontext is required"})
	}

	for i := range doc.Images {
		if doc.Images[i].AgContextID == nil {
			out = append(out, Violation{
				Path:    fmt.Sprintf("images[%d].agcontext_id", i),
				Message: "is required",
			})
		}
	}

	refs := References(doc)
	for _, id := range refs.UnresolvedAgContextRefs {
		out = append(out, Violation{Path: "images", Message: fmt.Sprintf("image %d references a missing agcontext", id)})
	}
	for _, id := range refs.UnresolvedLicenseRefs {
		out = append(out, Violation{Path: "images", Message: fmt.Sprintf("image %d references a missing license", id)})
	}

	for i := range doc.Categories {
		if err := rv.v.Var(doc.Categories[i].Name, "category_name"); err != nil {
			out = append(out, Violation{
				Path:    fmt.Sprintf("categories[%d].name", i),
				Message: fmt.Sprintf(`%q must be "none" or "<role>: <species>"`, doc.Categories[i].Name),
			})
		}
	}

	collectionIDs := make(map[int]struct{}, len(doc.Collections))
	for i := range doc.Collections {
		collectionIDs[doc.Collections[i].ID] = struct{}{}
	}
	annotationIDs := make(map[int]struct{}, len(doc.Annotations))
	for i := range doc.Annotations {
		annotationIDs[doc.Annotations[i].ID] = struct{}{}
	}
	for i, m := range doc.CollectionMemberships {
		if _, ok := collectionIDs[m.CollectionID]; !ok {
			out = append(out, Violation{
				Path:    fmt.Sprintf("collection_memberships[%d].collection_id", i),
				Message: fmt.Sprintf("references missing collection %d", m.CollectionID),
			})
		}
		if _, ok := annotationIDs[m.AnnotationID]; !ok {
			out = append(out, Violation{
				Path:    fmt.Sprintf("collection_memberships[%d].annotation_id", i),
				Message: fmt.Sprintf("references missing annotation %d", m.AnnotationID),
			})
		}
	}

	return out
}
