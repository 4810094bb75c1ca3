// conf/defaults.go default values for settings
package conf

import "github.com/spf13/viper"

// Default output paths match the file names the converters have always produced.
const (
	DefaultDeepWeedsLabelsDir = "."
	DefaultDeepWeedsImageDir  = "deepweeds_images_full"
	DefaultDeepWeedsOutPath   = "deepweeds_imageinfo.json"
	DefaultYOLOOutPath        = "coco_from_yolo.json"
	DefaultYOLOSchema         = SchemaCompatibleCOCO
)

// Schema names understood by the document validator.
const (
	SchemaWeedCOCO       = "weedcoco"
	SchemaCompatibleCOCO = "compatible-coco"
)

// setDefaultConfig sets default values for the configuration.
func setDefaultConfig(v *viper.Viper) {
	v.SetDefault("debug", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.file_level", "")

	v.SetDefault("deepweeds.labels_dir", DefaultDeepWeedsLabelsDir)
	v.SetDefault("deepweeds.image_dir", DefaultDeepWeedsImageDir)
	v.SetDefault("deepweeds.out_path", DefaultDeepWeedsOutPath)
	v.SetDefault("deepweeds.strict", false)

	v.SetDefault("yolo.dir", "")
	v.SetDefault("yolo.image_dir", "")
	v.SetDefault("yolo.agcontext_path", "")
	v.SetDefault("yolo.metadata_path", "")
	v.SetDefault("yolo.validate", false)
	v.SetDefault("yolo.schema", DefaultYOLOSchema)
	v.SetDefault("yolo.out_path", DefaultYOLOOutPath)

	v.SetDefault("validate.schema", SchemaWeedCOCO)

	v.SetDefault("metrics.textfile", "")
}
