package pipeline

// ChannelBuffer is a fixed-capacity ring buffer holding the most recent raw
// samples for one channel. Once full, each append evicts the oldest value.
type ChannelBuffer struct {
	buffer   []float64
	capacity int
	writePos int
	count    int
}

// NewChannelBuffer creates a ring buffer with the given capacity.
func NewChannelBuffer(capacity int) *ChannelBuffer {
	return &ChannelBuffer{
		buffer:   make([]float64, capacity),
		capacity: capacity,
	}
}

// Append inserts one sample, evicting the oldest value once capacity is
// reached. It never fails.
func (b *ChannelBuffer) Append(value float64) {
	b.buffer[b.writePos] = value
	b.writePos = (b.writePos + 1) % b.capacity
	if b.count < b.capacity {
		b.count++
	}
}

// Len returns the number of samples currently held.
func (b *ChannelBuffer) Len() int {
	return b.count
}

// Cap returns the configured capacity.
func (b *ChannelBuffer) Cap() int {
	return b.capacity
}

// Full reports whether the buffer has reached capacity.
func (b *ChannelBuffer) Full() bool {
	return b.count == b.capacity
}

// Snapshot returns a copy of the buffered samples ordered oldest to newest.
func (b *ChannelBuffer) Snapshot() []float64 {
	out := make([]float64, b.count)
	start := 0
	if b.count == b.capacity {
		start = b.writePos
	}
	for i := 0; i < b.count; i++ {
		out[i] = b.buffer[(start+i)%b.capacity]
	}
	return out
}

// BufferSet groups one ChannelBuffer per tracked channel.
type BufferSet struct {
	buffers []*ChannelBuffer
}

// NewBufferSet creates numChannels buffers of the given capacity.
func NewBufferSet(numChannels, capacity int) *BufferSet {
	buffers := make([]*ChannelBuffer, numChannels)
	for i := range buffers {
		buffers[i] = NewChannelBuffer(capacity)
	}
	return &BufferSet{buffers: buffers}
}

// Append inserts one sample into the buffer for the given channel.
func (s *BufferSet) Append(channel int, value float64) {
	s.buffers[channel].Append(value)
}

// WindowReady reports whether every tracked buffer is at full capacity.
func (s *BufferSet) WindowReady() bool {
	for _, b := range s.buffers {
		if !b.Full() {
			return false
		}
	}
	return true
}

// Snapshot freezes the current contents of every buffer into an immutable
// processing window, ordered oldest to newest per channel.
func (s *BufferSet) Snapshot() [][]float64 {
	window := make([][]float64, len(s.buffers))
	for i, b := range s.buffers {
		window[i] = b.Snapshot()
	}
	return window
}

// Channels returns the number of tracked channels.
func (s *BufferSet) Channels() int {
	return len(s.buffers)
}
