package logging

import (
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSetupLoggerLevels(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantLevel zerolog.Level
	}{
		{name: "default is info", verbosity: 0, wantLevel: zerolog.InfoLevel},
		{name: "v is debug", verbosity: 1, wantLevel: zerolog.DebugLevel},
		{name: "vv is trace", verbosity: 2, wantLevel: zerolog.TraceLevel},
		{name: "vvv is still trace", verbosity: 3, wantLevel: zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetupLogger(tt.verbosity, FormatConsole)
			assert.Equal(t, tt.wantLevel, zerolog.GlobalLevel())
		})
	}
}

func TestSetupLoggerJSONFormat(t *testing.T) {
	// Must not panic and must leave a usable global logger behind
	SetupLogger(0, FormatJSON)
	logger := GetLogger("test")
	logger.Info().Msg("json format smoke test")
}

func TestLogFilePath(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	xdg.Reload()
	defer xdg.Reload()

	path := LogFilePath()
	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, "not-quite-cargo.log", filepath.Base(path))
}
