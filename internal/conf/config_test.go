package conf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weedai/weedcoco-go/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "debug: false\n")
	settings, err := Load(NewViper(), path)
	require.NoError(t, err)

	assert.Equal(t, "info", settings.Log.Level)
	assert.Equal(t, DefaultDeepWeedsLabelsDir, settings.DeepWeeds.LabelsDir)
	assert.Equal(t, DefaultDeepWeedsImageDir, settings.DeepWeeds.ImageDir)
	assert.Equal(t, DefaultDeepWeedsOutPath, settings.DeepWeeds.OutPath)
	assert.Equal(t, DefaultYOLOOutPath, settings.YOLO.OutPath)
	assert.Equal(t, SchemaCompatibleCOCO, settings.YOLO.Schema)
	assert.Equal(t, SchemaWeedCOCO, settings.Validate.Schema)
	assert.False(t, settings.DeepWeeds.Strict)
}

func TestLoadConfigFileOverrides(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
log:
  level: debug
  file: logs/weedcoco.log
deepweeds:
  image_dir: /data/deepweeds
  strict: true
yolo:
  dir: /data/yolo/labels
  validate: true
metrics:
  textfile: /tmp/weedcoco.prom
`)

	settings, err := Load(NewViper(), path)
	require.NoError(t, err)

	assert.Equal(t, "debug", settings.Log.Level)
	assert.Equal(t, "logs/weedcoco.log", settings.Log.File)
	assert.Equal(t, "/data/deepweeds", settings.DeepWeeds.ImageDir)
	assert.True(t, settings.DeepWeeds.Strict)
	assert.Equal(t, "/data/yolo/labels", settings.YOLO.Dir)
	assert.True(t, settings.YOLO.Validate)
	assert.Equal(t, "/tmp/weedcoco.prom", settings.Metrics.Textfile)
	// untouched keys keep their defaults
	assert.Equal(t, DefaultDeepWeedsOutPath, settings.DeepWeeds.OutPath)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("WEEDCOCO_YOLO_OUT_PATH", "from_env.json")

	path := writeConfig(t, "yolo:\n  out_path: from_file.json\n")
	settings, err := Load(NewViper(), path)
	require.NoError(t, err)

	assert.Equal(t, "from_env.json", settings.YOLO.OutPath)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := Load(NewViper(), filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
log:
  level: verbose
validate:
  schema: pascal-voc
`)

	_, err := Load(NewViper(), path)
	require.Error(t, err)

	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 2)
	assert.Contains(t, ve.Errors[0], "log.level")
	assert.Contains(t, ve.Errors[1], "validate.schema")
}

func TestConsoleLevel(t *testing.T) {
	t.Parallel()

	s := &Settings{Log: LogSettings{Level: "warn"}}
	assert.Equal(t, "warn", s.ConsoleLevel())

	s.Debug = true
	assert.Equal(t, "debug", s.ConsoleLevel())
}

func TestGetDefaultConfigPaths(t *testing.T) {
	t.Parallel()

	paths := GetDefaultConfigPaths()
	require.NotEmpty(t, paths)
	assert.Equal(t, ".", paths[0])
}
