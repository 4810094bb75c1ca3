// conf/config.go
package conf

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/weedai/weedcoco-go/internal/errors"
)

//go:embed config.yaml
var defaultConfigYAML []byte

// EnvPrefix is prepended to environment variable overrides, e.g. WEEDCOCO_LOG_LEVEL.
const EnvPrefix = "WEEDCOCO"

// LogSettings configures console and file logging.
type LogSettings struct {
	Level     string `mapstructure:"level" yaml:"level"`           // trace, debug, info, warn, error
	File      string `mapstructure:"file" yaml:"file"`             // optional JSON log file
	FileLevel string `mapstructure:"file_level" yaml:"file_level"` // defaults to Level
}

// DeepWeedsSettings holds the defaults for the deepweeds command.
type DeepWeedsSettings struct {
	LabelsDir string `mapstructure:"labels_dir" yaml:"labels_dir"` // directory containing labels.csv
	ImageDir  string `mapstructure:"image_dir" yaml:"image_dir"`   // directory of JPEG images
	OutPath   string `mapstructure:"out_path" yaml:"out_path"`     // output document
	Strict    bool   `mapstructure:"strict" yaml:"strict"`         // fail on any repeated image filename
}

// YOLOSettings holds the defaults for the yolo command.
type YOLOSettings struct {
	Dir           string `mapstructure:"dir" yaml:"dir"`                       // directory with *.txt labels and the names manifest
	ImageDir      string `mapstructure:"image_dir" yaml:"image_dir"`           // directory with image files
	AgContextPath string `mapstructure:"agcontext_path" yaml:"agcontext_path"` // optional agcontext YAML or JSON
	MetadataPath  string `mapstructure:"metadata_path" yaml:"metadata_path"`   // optional metadata YAML or JSON
	Validate      bool   `mapstructure:"validate" yaml:"validate"`             // validate before writing
	Schema        string `mapstructure:"schema" yaml:"schema"`                 // schema used by Validate
	OutPath       string `mapstructure:"out_path" yaml:"out_path"`             // output document
}

// ValidateSettings holds the defaults for the validate command.
type ValidateSettings struct {
	Schema string `mapstructure:"schema" yaml:"schema"`
}

// MetricsSettings configures the optional Prometheus textfile export.
type MetricsSettings struct {
	Textfile string `mapstructure:"textfile" yaml:"textfile"`
}

// Settings contains all configuration options for the weedcoco tools.
type Settings struct {
	Debug bool `mapstructure:"debug" yaml:"debug"`

	Log       LogSettings       `mapstructure:"log" yaml:"log"`
	DeepWeeds DeepWeedsSettings `mapstructure:"deepweeds" yaml:"deepweeds"`
	YOLO      YOLOSettings      `mapstructure:"yolo" yaml:"yolo"`
	Validate  ValidateSettings  `mapstructure:"validate" yaml:"validate"`
	Metrics   MetricsSettings   `mapstructure:"metrics" yaml:"metrics"`
}

// ConsoleLevel returns the console log level, forcing debug when Debug is set.
func (s *Settings) ConsoleLevel() string {
	if s.Debug {
		return "debug"
	}
	return s.Log.Level
}

// NewViper returns a viper instance primed with defaults and environment overrides.
// Command flags are bound to it before Load is called.
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaultConfig(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load layers the embedded config.yaml, the optional user config file and
// environment overrides, then unmarshals and validates settings.
// An explicit configFile must exist; otherwise config.yaml is searched in
// the default config paths and silently skipped when absent.
func Load(v *viper.Viper, configFile string) (*Settings, error) {
	if err := readConfigFile(v, configFile); err != nil {
		return nil, err
	}

	settings := new(Settings)
	if err := v.Unmarshal(settings); err != nil {
		return nil, errors.New(fmt.Errorf("error unmarshaling config into struct: %w", err)).
			Category(errors.CategoryConfiguration).
			Build()
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, err
	}

	return settings, nil
}

func readConfigFile(v *viper.Viper, configFile string) error {
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaultConfigYAML)); err != nil {
		return errors.New(fmt.Errorf("error reading embedded config: %w", err)).
			Category(errors.CategoryConfiguration).
			Build()
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.MergeInConfig(); err != nil {
			return errors.New(fmt.Errorf("error reading config file %s: %w", configFile, err)).
				Category(errors.CategoryConfiguration).
				FileContext(configFile).
				Build()
		}
		return nil
	}

	v.SetConfigName("config")
	for _, path := range GetDefaultConfigPaths() {
		v.AddConfigPath(path)
	}

	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return errors.New(fmt.Errorf("error reading config file: %w", err)).
			Category(errors.CategoryConfiguration).
			Build()
	}
	return nil
}

// GetDefaultConfigPaths returns the directories searched for config.yaml:
// the working directory first, then the user's config directory.
func GetDefaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "weedcoco"))
	}
	return paths
}
