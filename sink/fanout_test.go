package sink

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketwave/relaxbridge/logging"
	"github.com/rocketwave/relaxbridge/pipeline"
)

type recordingSink struct {
	name      string
	packets   []pipeline.Packet
	samples   [][]float64
	sendErr   error
	closeErr  error
	closed    bool
	forwarded bool
}

func (r *recordingSink) Name() string { return r.name }

func (r *recordingSink) Send(p pipeline.Packet) error {
	if r.sendErr != nil {
		return r.sendErr
	}
	r.packets = append(r.packets, p)
	return nil
}

func (r *recordingSink) Close() error {
	r.closed = true
	return r.closeErr
}

type rawRecordingSink struct {
	recordingSink
}

func (r *rawRecordingSink) SendSample(values []float64, ts time.Time) error {
	if r.sendErr != nil {
		return r.sendErr
	}
	r.samples = append(r.samples, values)
	r.forwarded = true
	return nil
}

func TestFanout_FailureIsolation(t *testing.T) {
	healthy := &recordingSink{name: "healthy"}
	failing := &recordingSink{name: "failing", sendErr: errors.New("connection refused")}
	trailing := &recordingSink{name: "trailing"}

	f := NewFanout([]Sink{failing, healthy, trailing}, &logging.NoOpLogger{})

	for i := 0; i < 10; i++ {
		f.Deliver(testPacket(float64(i)))
	}

	// The failing sink never blocks delivery to the others.
	assert.Len(t, healthy.packets, 10)
	assert.Len(t, trailing.packets, 10)
	assert.Empty(t, failing.packets)
}

func TestFanout_ForwardSample(t *testing.T) {
	plain := &recordingSink{name: "plain"}
	raw := &rawRecordingSink{recordingSink: recordingSink{name: "raw"}}

	f := NewFanout([]Sink{plain, raw}, &logging.NoOpLogger{})
	f.ForwardSample([]float64{1, 2, 3, 4}, time.Now())

	require.Len(t, raw.samples, 1)
	assert.Equal(t, []float64{1, 2, 3, 4}, raw.samples[0])
	assert.True(t, raw.forwarded)
	assert.Empty(t, plain.samples)
}

func TestFanout_CloseClosesAll(t *testing.T) {
	a := &recordingSink{name: "a"}
	b := &recordingSink{name: "b", closeErr: errors.New("already closed")}
	c := &recordingSink{name: "c"}

	f := NewFanout([]Sink{a, b, c}, &logging.NoOpLogger{})

	err := f.Close()
	assert.Error(t, err)
	assert.True(t, a.closed)
	assert.True(t, b.closed)
	assert.True(t, c.closed)
}
