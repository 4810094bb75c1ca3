package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextGetters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		ctx       *Context
		version   string
		buildDate string
	}{
		{"nil context", nil, UnknownValue, UnknownValue},
		{"empty values", NewContext("", ""), UnknownValue, UnknownValue},
		{"release", NewContext("1.2.0", "2024-05-01"), "1.2.0", "2024-05-01"},
		{"pre-release tag", NewContext("1.3.0-beta.1", ""), "1.3.0-beta.1", UnknownValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.version, tt.ctx.GetVersion())
			assert.Equal(t, tt.buildDate, tt.ctx.GetBuildDate())
		})
	}
}

func TestContextString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1.2.0 (built 2024-05-01)", NewContext("1.2.0", "2024-05-01").String())
	assert.Equal(t, "unknown (built unknown)", NewContext("", "").String())
}

func TestContextImplementsBuildInfo(t *testing.T) {
	t.Parallel()

	var _ BuildInfo = NewContext("dev", "")
}
