package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesTypedFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, zerolog.InfoLevel).With(String("company", "NKE"))

	l.Info("fold scored",
		Int("fold", 3),
		Float("loss", 0.25),
		Bool("parallel", false),
		Duration("fit_ms", 1500*time.Millisecond),
		Error(errors.New("boom")),
	)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "fold scored", entry["message"])
	assert.Equal(t, "NKE", entry["company"])
	assert.EqualValues(t, 3, entry["fold"])
	assert.EqualValues(t, 0.25, entry["loss"])
	assert.EqualValues(t, 1500, entry["fit_ms"])
	assert.Equal(t, "boom", entry["error"])
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, zerolog.WarnLevel)
	l.Debug("hidden")
	l.Info("hidden")
	assert.Zero(t, buf.Len())
	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNewFileOutputClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forecast.log")
	l, err := New(&Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	l.Info("run finished", Int("folds", 2))
	require.NoError(t, l.Close())
	require.NoError(t, l.Close(), "closing twice is a no-op")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "run finished")

	stdout, err := New(&Config{Level: "info", Output: "stdout"})
	require.NoError(t, err)
	assert.NoError(t, stdout.Close())
}
