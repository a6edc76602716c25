package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Replay re-feeds a recorded raw-sample CSV through the pipeline. Each row
// is one sample with one column per channel; an optional header row is
// skipped. Replay is unpaced: the cadence gate alone limits processing.
type Replay struct {
	file       *os.File
	reader     *csv.Reader
	sampleRate float64
	channels   int
	index      int64
	start      time.Time

	// pending buffers the first data row consumed while probing the header
	pending []float64
}

// OpenReplay opens path for replay at the given nominal sampling rate.
// A missing or empty file is reported as ErrNoStream.
func OpenReplay(path string, sampleRate float64) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoStream, err)
	}

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	record, err := reader.Read()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: empty replay file %s", ErrNoStream, path)
	}

	r := &Replay{
		file:       f,
		reader:     reader,
		sampleRate: sampleRate,
		start:      time.Now(),
	}

	// Header rows parse as non-numeric; data rows are consumed directly.
	if values, ok := parseRow(record); ok {
		r.channels = len(values)
		r.pending = values
	} else {
		next, err := reader.Read()
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%w: replay file %s has no data rows", ErrNoStream, path)
		}
		values, ok := parseRow(next)
		if !ok {
			f.Close()
			return nil, fmt.Errorf("replay file %s: non-numeric data row", path)
		}
		r.channels = len(values)
		r.pending = values
	}

	return r, nil
}

func parseRow(record []string) ([]float64, bool) {
	values := make([]float64, 0, len(record))
	for _, field := range record {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, false
		}
		values = append(values, v)
	}
	return values, len(values) > 0
}

// Pull returns the next recorded sample, or io.EOF once the file is
// exhausted.
func (r *Replay) Pull(ctx context.Context, timeout time.Duration) (Sample, bool, error) {
	if err := ctx.Err(); err != nil {
		return Sample{}, false, err
	}

	var values []float64
	if r.pending != nil {
		values = r.pending
		r.pending = nil
	} else {
		record, err := r.reader.Read()
		if err == io.EOF {
			return Sample{}, false, io.EOF
		}
		if err != nil {
			// Skip malformed rows rather than aborting the session.
			return Sample{}, false, nil
		}
		parsed, ok := parseRow(record)
		if !ok {
			return Sample{}, false, nil
		}
		values = parsed
	}

	t := float64(r.index) / r.sampleRate
	r.index++

	return Sample{
		Values:    values,
		Timestamp: r.start.Add(time.Duration(t * float64(time.Second))),
	}, true, nil
}

// SampleRate returns the nominal sampling rate in Hz.
func (r *Replay) SampleRate() float64 {
	return r.sampleRate
}

// Channels returns the channel count observed on the first data row.
func (r *Replay) Channels() int {
	return r.channels
}

// Close releases the underlying file.
func (r *Replay) Close() error {
	return r.file.Close()
}
