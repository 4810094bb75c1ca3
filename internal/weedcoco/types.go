// Package weedcoco defines the WeedCOCO document model: COCO object-detection
// JSON extended with agricultural context, collections and licensing.
package weedcoco

// Image is one picture in the dataset.
// Width and Height stay zero and are omitted when the image could not be probed.
type Image struct {
	ID          int    `json:"id" validate:"gte=0"`
	FileName    string `json:"file_name" validate:"required"`
	Width       int    `json:"width,omitempty" validate:"gte=0"`
	Height      int    `json:"height,omitempty" validate:"gte=0"`
	License     *int   `json:"license,omitempty"`
	AgContextID *int   `json:"agcontext_id,omitempty"`
}

// Category is an annotation class.
type Category struct {
	ID            int    `json:"id" validate:"gte=0"`
	Name          string `json:"name" validate:"required"`
	CommonName    string `json:"common_name,omitempty"`
	Role          string `json:"role,omitempty" validate:"omitempty,oneof=weed crop na"`
	Species       string `json:"species,omitempty"`
	EPPOTaxonCode string `json:"eppo_taxon_code,omitempty"`
}

// BBox is an absolute pixel box [x_min, y_min, width, height].
type BBox [4]float64

// Annotation labels one image with a category and, for detection data, a box.
type Annotation struct {
	ID            int      `json:"id" validate:"gte=0"`
	ImageID       int      `json:"image_id" validate:"gte=0"`
	CategoryID    int      `json:"category_id" validate:"gte=0"`
	BBox          *BBox    `json:"bbox,omitempty"`
	Area          *float64 `json:"area,omitempty" validate:"omitempty,gte=0"`
	IsCrowd       *int     `json:"iscrowd,omitempty" validate:"omitempty,oneof=0 1"`
	AgContextName string   `json:"agcontext_name,omitempty"`
}

// Info describes the dataset as a whole. Metadata receives merged metadata fragments.
type Info struct {
	Year                 int            `json:"year,omitempty"`
	Version              int            `json:"version,omitempty"`
	Description          string         `json:"description,omitempty"`
	SecondaryContributor string         `json:"secondary_contributor,omitempty"`
	Contributor          string         `json:"contributor,omitempty"`
	ID                   *int           `json:"id,omitempty"`
	Metadata             map[string]any `json:"metadata,omitempty"`
}

// License is a usage license referenced by images.
type License struct {
	ID              int    `json:"id" validate:"gte=0"`
	LicenseName     string `json:"license_name" validate:"required"`
	LicenseFullname string `json:"license_fullname,omitempty"`
	LicenseVersion  string `json:"license_version,omitempty"`
	URL             string `json:"url,omitempty" validate:"omitempty,url"`
}

// Collection is a published dataset the annotations belong to.
type Collection struct {
	Author        string `json:"author,omitempty"`
	Title         string `json:"title" validate:"required"`
	Year          int    `json:"year,omitempty"`
	Identifier    string `json:"identifier,omitempty"`
	Rights        string `json:"rights,omitempty"`
	AccrualPolicy string `json:"accrual_policy,omitempty"`
	ID            int    `json:"id" validate:"gte=0"`
}

// CollectionMembership links an annotation to a collection.
type CollectionMembership struct {
	AnnotationID int    `json:"annotation_id" validate:"gte=0"`
	CollectionID int    `json:"collection_id" validate:"gte=0"`
	Subset       string `json:"subset,omitempty"`
}

// AgContext records the agricultural and photographic setting of the images.
type AgContext struct {
	ID                     int     `json:"id" yaml:"id"`
	AgContextName          string  `json:"agcontext_name,omitempty" yaml:"agcontext_name,omitempty"`
	CropType               string  `json:"crop_type,omitempty" yaml:"crop_type,omitempty"`
	BBCHDescriptiveText    string  `json:"bbch_descriptive_text,omitempty" yaml:"bbch_descriptive_text,omitempty"`
	BBCHCode               string  `json:"bbch_code,omitempty" yaml:"bbch_code,omitempty"`
	GrainsDescriptiveText  string  `json:"grains_descriptive_text,omitempty" yaml:"grains_descriptive_text,omitempty"`
	SoilColour             string  `json:"soil_colour,omitempty" yaml:"soil_colour,omitempty"`
	SurfaceCover           string  `json:"surface_cover,omitempty" yaml:"surface_cover,omitempty"`
	SurfaceCoverage        string  `json:"surface_coverage,omitempty" yaml:"surface_coverage,omitempty"`
	WeatherDescription     string  `json:"weather_description,omitempty" yaml:"weather_description,omitempty"`
	LocationLat            float64 `json:"location_lat" yaml:"location_lat" validate:"gte=-90,lte=90"`
	LocationLong           float64 `json:"location_long" yaml:"location_long" validate:"gte=-180,lte=180"`
	LocationDatum          int     `json:"location_datum,omitempty" yaml:"location_datum,omitempty"`
	UploadTime             string  `json:"upload_time,omitempty" yaml:"upload_time,omitempty"`
	CameraMake             string  `json:"camera_make,omitempty" yaml:"camera_make,omitempty"`
	CameraLens             string  `json:"camera_lens,omitempty" yaml:"camera_lens,omitempty"`
	CameraLensFocalLength  float64 `json:"camera_lens_focallength,omitempty" yaml:"camera_lens_focallength,omitempty"`
	CameraHeight           float64 `json:"camera_height,omitempty" yaml:"camera_height,omitempty"`
	CameraAngle            float64 `json:"camera_angle,omitempty" yaml:"camera_angle,omitempty"`
	CameraFOV              float64 `json:"camera_fov,omitempty" yaml:"camera_fov,omitempty"`
	PhotographyDescription string  `json:"photography_description,omitempty" yaml:"photography_description,omitempty"`
	Lighting               string  `json:"lighting,omitempty" yaml:"lighting,omitempty"`
	CroppedToPlant         bool    `json:"cropped_to_plant" yaml:"cropped_to_plant"`
	URL                    string  `json:"url,omitempty" yaml:"url,omitempty"`
}

// Document is a complete WeedCOCO (or COCO-compatible) annotation document.
type Document struct {
	Images                []Image                `json:"images" validate:"dive"`
	Annotations           []Annotation           `json:"annotations" validate:"dive"`
	Categories            []Category             `json:"categories" validate:"dive"`
	Info                  Info                   `json:"info"`
	License               []License              `json:"license,omitempty" validate:"dive"`
	AgContexts            []AgContext            `json:"agcontexts,omitempty" validate:"dive"`
	Collections           []Collection           `json:"collections,omitempty" validate:"dive"`
	CollectionMemberships []CollectionMembership `json:"collection_memberships,omitempty" validate:"dive"`
}

// IntPtr returns a pointer to v, for optional integer fields.
func IntPtr(v int) *int {
	return &v
}

// Float64Ptr returns a pointer to v, for optional float fields.
func Float64Ptr(v float64) *float64 {
	return &v
}
