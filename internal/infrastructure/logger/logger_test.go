package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edu-resources/internal/config"
)

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{ServiceName: "edu-resources", Environment: "test", LogLevel: "debug", LogFormat: "json"}

	log := NewWithWriter(cfg, &buf)
	log.Debug().Str("component", "test").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "edu-resources", entry["service"])
	assert.Equal(t, "test", entry["environment"])
	assert.Equal(t, "hello", entry["message"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("WARN"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("loud"))
}
