package sink

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rocketwave/relaxbridge/pipeline"
)

// CSVLog appends one structured record per processing cycle to an
// append-only session log. The header is written once at stream open and
// every row is flushed immediately, so a crash loses at most one row.
type CSVLog struct {
	writer *csv.Writer
	closer io.Closer
	path   string
}

var csvHeader = []string{
	"elapsed_seconds", "timestamp_utc",
	"alpha_rel", "beta_rel",
	"ri", "ri_ema", "ri_scaled",
}

// NewCSVLog wraps an arbitrary writer, writing the header immediately.
func NewCSVLog(w io.Writer) (*CSVLog, error) {
	s := &CSVLog{writer: csv.NewWriter(w)}
	if closer, ok := w.(io.Closer); ok {
		s.closer = closer
	}
	if err := s.writer.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("csv log: write header: %w", err)
	}
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		return nil, fmt.Errorf("csv log: write header: %w", err)
	}
	return s, nil
}

// CreateSessionLog creates logs under dir named by the session start time,
// e.g. session_20260829_153000.csv.
func CreateSessionLog(dir string, start time.Time) (*CSVLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("csv log: create dir: %w", err)
	}

	path := filepath.Join(dir, "session_"+start.Format("20060102_150405")+".csv")
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv log: create file: %w", err)
	}

	s, err := NewCSVLog(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	s.path = path
	return s, nil
}

// Name identifies the sink in fan-out logs.
func (s *CSVLog) Name() string {
	return "csv"
}

// Path returns the session file path, if file-backed.
func (s *CSVLog) Path() string {
	return s.path
}

// Send appends and flushes one row.
func (s *CSVLog) Send(packet pipeline.Packet) error {
	row := []string{
		fmtFloat(packet.Elapsed),
		packet.Timestamp.UTC().Format(time.RFC3339Nano),
		fmtFloat(packet.AlphaRel),
		fmtFloat(packet.BetaRel),
		fmtFloat(packet.RI),
		fmtFloat(packet.RIEMA),
		fmtFloat(packet.RIScaled),
	}
	if err := s.writer.Write(row); err != nil {
		return fmt.Errorf("csv log: %w", err)
	}
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		return fmt.Errorf("csv log: %w", err)
	}
	return nil
}

// Close flushes and releases the underlying file.
func (s *CSVLog) Close() error {
	s.writer.Flush()
	if s.closer != nil {
		return s.closer.Close()
	}
	return s.writer.Error()
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
