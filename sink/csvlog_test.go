package sink

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketwave/relaxbridge/pipeline"
)

func testPacket(elapsed float64) pipeline.Packet {
	return pipeline.Packet{
		Elapsed:   elapsed,
		Timestamp: time.Date(2026, 8, 29, 15, 30, 0, 0, time.UTC),
		AlphaRel:  0.42,
		BetaRel:   0.21,
		RI:        0.21,
		RIEMA:     0.2,
		RIScaled:  0.6,
	}
}

func TestCSVLog_HeaderAndRows(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewCSVLog(&buf)
	require.NoError(t, err)

	require.NoError(t, s.Send(testPacket(0.1)))
	require.NoError(t, s.Send(testPacket(0.2)))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{
		"elapsed_seconds", "timestamp_utc",
		"alpha_rel", "beta_rel",
		"ri", "ri_ema", "ri_scaled",
	}, records[0])
	assert.Equal(t, "0.100000", records[1][0])
	assert.Equal(t, "0.420000", records[1][2])
	assert.Equal(t, "0.600000", records[2][6])
}

func TestCSVLog_RowsFlushedImmediately(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewCSVLog(&buf)
	require.NoError(t, err)

	// The header is visible before any row arrives.
	assert.Positive(t, buf.Len())

	before := buf.Len()
	require.NoError(t, s.Send(testPacket(0.1)))
	assert.Greater(t, buf.Len(), before)
}

func TestCreateSessionLog(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2026, 8, 29, 15, 30, 0, 0, time.UTC)

	s, err := CreateSessionLog(filepath.Join(dir, "logs"), start)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, filepath.Join(dir, "logs", "session_20260829_153000.csv"), s.Path())

	require.NoError(t, s.Send(testPacket(0.5)))
	require.NoError(t, s.Close())

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "elapsed_seconds")
	assert.Contains(t, string(data), "0.500000")
}
