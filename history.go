package ads7953

// History keeps the most recent raw readings of a single channel. Once it is
// full, every insert drops the oldest reading.
type History struct {
	buffer []uint16
	front  int
	size   int
}

// NewHistory returns an empty history holding up to depth readings. A depth
// below 1 is treated as 1.
func NewHistory(depth int) *History {
	if depth < 1 {
		depth = 1
	}
	return &History{
		buffer: make([]uint16, depth),
	}
}

// Reset empties the history.
func (h *History) Reset() {
	h.front = 0
	h.size = 0
}

// Insert appends v, discarding the oldest reading when the history is full.
func (h *History) Insert(v uint16) {
	if h.size == len(h.buffer) {
		h.front++
		h.front %= len(h.buffer)
		h.size--
	}
	h.buffer[(h.front+h.size)%len(h.buffer)] = v
	h.size++
}

// Average returns the truncated mean of the retained readings, or 0 if the
// history is empty.
func (h *History) Average() uint16 {
	if h.size == 0 {
		return 0
	}

	var sum uint64
	for i := 0; i < h.size; i++ {
		sum += uint64(h.buffer[(h.front+i)%len(h.buffer)])
	}

	return uint16(sum / uint64(h.size))
}

// Len returns the number of retained readings.
func (h *History) Len() int {
	return h.size
}

// Cap returns the maximum number of retained readings.
func (h *History) Cap() int {
	return len(h.buffer)
}

// Values returns a copy of the retained readings, oldest first.
func (h *History) Values() []uint16 {
	v := make([]uint16, h.size)
	for i := range v {
		v[i] = h.buffer[(h.front+i)%len(h.buffer)]
	}
	return v
}
