package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditWritesActionAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Level: LevelInfo, Format: "json", Component: "orders"}, &buf)

	l.Audit(context.Background(), "entry.void", "entry_no", 2, "manager", "mgr")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "audit", rec["msg"])
	assert.Equal(t, "entry.void", rec["action"])
	assert.Equal(t, "orders", rec["component"])
	assert.EqualValues(t, 2, rec["entry_no"])
}

func TestErrorAddsCaller(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Level: LevelDebug, Format: "json", EnableCaller: true}, &buf)

	l.Error("finalize failed", "invoice_no", 7)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Contains(t, rec["caller"], "logger_test.go")
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Level: LevelWarn}, &buf)
	l.Info("ignored")
	assert.Zero(t, buf.Len())
	l.Warn("kept")
	assert.NotZero(t, buf.Len())
}
