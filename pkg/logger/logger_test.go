package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestInfoCarriesServiceName(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "storefront", Output: &buf})

	logg.Info(context.Background(), "cart.refresh")

	entry := lastLine(t, &buf)
	assert.Equal(t, "storefront", entry["service"])
	assert.Equal(t, "cart.refresh", entry["message"])
}

func TestContextFieldsAccumulate(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "storefront", Output: &buf})

	ctx := logg.WithUserID(context.Background(), "user-1")
	ctx = logg.WithOrderID(ctx, 42)
	logg.Info(ctx, "order.transition")

	entry := lastLine(t, &buf)
	assert.Equal(t, "user-1", entry["user_id"])
	assert.Equal(t, float64(42), entry["order_id"])
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "storefront", Level: zerolog.InfoLevel, Output: &buf})

	logg.Debug(context.Background(), "noise")
	assert.Empty(t, buf.Bytes())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("not-a-level"))
}
