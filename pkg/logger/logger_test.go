package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	orig := logger
	logger = newLogger(&buf)
	t.Cleanup(func() { logger = orig })
	return &buf
}

func TestInitAndLevelString(t *testing.T) {
	capture(t)
	for in, want := range map[string]string{
		"debug":    "debug",
		"WARN":     "warn",
		"warning":  "warn",
		"Error":    "error",
		"fatal":    "fatal",
		" info ":   "info",
		"nonsense": "info",
	} {
		Init(in)
		assert.Equal(t, want, LevelString(), "Init(%q)", in)
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t)

	Init("warn")
	Debugf("debug-msg")
	Infof("info-msg %d", 1)
	Println("println-msg")
	Warnf("warn-msg")
	Error("error-msg")

	out := buf.String()
	assert.NotContains(t, out, "debug-msg")
	assert.NotContains(t, out, "info-msg")
	assert.NotContains(t, out, "println-msg")
	assert.Contains(t, out, "warn-msg")
	assert.Contains(t, out, "error-msg")

	Init("info")
	buf.Reset()
	Println("note", "created")
	assert.Contains(t, buf.String(), "note created")
}

func TestWithFields(t *testing.T) {
	buf := capture(t)

	WithFields(map[string]interface{}{"action": "create", "url": "https://website.example/foo"}).Info("published")
	assert.Contains(t, buf.String(), "action=create")
	assert.Contains(t, buf.String(), "published")
}

func TestSetJSON(t *testing.T) {
	buf := capture(t)

	SetJSON(true)
	WithFields(map[string]interface{}{"action": "delete"}).Warn("post removed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "delete", entry["action"])
	assert.Equal(t, "post removed", entry["msg"])
	assert.Equal(t, "warning", entry["level"])

	SetJSON(false)
	buf.Reset()
	Info("plain")
	assert.Contains(t, buf.String(), `msg=plain`)
}
