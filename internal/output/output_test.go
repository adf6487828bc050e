package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccessWritesIconAndMessage(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)
	w.Success("indexed 3 files")
	assert.Contains(t, buf.String(), "indexed 3 files")
	assert.Contains(t, buf.String(), "✅")
}

func TestJSONModeSuppressesStatus(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSON(&buf)
	w.Success("should not appear")
	w.Warning("should not appear either")
	assert.Empty(t, buf.String())
}

func TestJSONEncodesPayload(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)
	require.NoError(t, w.JSON(map[string]any{"id": "abc", "score": 0.9}))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "abc", decoded["id"])
}

func TestProgressNoopWhenNotTTY(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)
	w.Progress(5, 10, "working")
	assert.Empty(t, buf.String())
}

func TestCodeIndentsLines(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)
	w.Code("line one\nline two")
	out := buf.String()
	assert.Contains(t, out, "  line one")
	assert.Contains(t, out, "  line two")
}
