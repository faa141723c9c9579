package reorder

import (
	"errors"
	"fmt"
	"time"
)

// maxMisorder is how far a sequence number may fall behind the origin
// before it is treated as a forward jump past the 16-bit wrap instead
// of a stale packet.
const maxMisorder = 100

var (
	ErrInvalidCapacity  = errors.New("capacity must be a power of 2")
	ErrNegativePrefetch = errors.New("prefetch must not be negative")
)

// Buffer reassembles frames from out-of-order packets. It holds at most
// capacity packets in a ring indexed by sequence number, sliding an
// origin past slots as they are consumed or evicted. Not safe for
// concurrent use; callers run one Buffer per stream.
type Buffer struct {
	capacity int
	prefetch int
	listener Listener

	packets []*Packet

	// origin only grows; it is seeded from a 16-bit wire value, so
	// after the sequence counter wraps the maxMisorder check in Add
	// re-originates the window.
	origin int
	marked bool
}

func NewBuffer(capacity, prefetch int, listener Listener) (*Buffer, error) {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	if prefetch < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativePrefetch, prefetch)
	}
	if listener == nil {
		listener = NullListener{}
	}
	return &Buffer{
		capacity: capacity,
		prefetch: prefetch,
		listener: listener,
		packets:  make([]*Packet, capacity),
	}, nil
}

func (b *Buffer) Capacity() int {
	return b.capacity
}

// Add stores p and returns a completed frame, or nil if no frame can be
// released yet. At most one frame is returned per call; a backlog of
// completed frames drains over subsequent calls.
func (b *Buffer) Add(p *Packet) *Frame {
	seq := int(p.SequenceNumber)

	if !b.marked {
		b.origin = seq
		b.marked = true
	} else if seq <= b.origin-maxMisorder {
		// far behind the window: assume the sequence counter wrapped
		b.Remove(b.capacity)
		b.origin = seq
		b.listener.OnWindowReset(p.SequenceNumber, b.capacity)
	} else if seq < b.origin {
		b.listener.OnPacketDropped(p.SequenceNumber)
		return nil
	}

	delta := seq - b.origin
	if delta >= 2*b.capacity {
		// so far ahead that nothing buffered can remain valid
		b.Remove(b.capacity)
		b.origin = seq
		b.listener.OnWindowReset(p.SequenceNumber, b.capacity)
	} else if delta >= b.capacity {
		// evict just enough of the oldest slots to fit this packet
		b.Remove(delta - b.capacity + 1)
	}

	b.packets[seq%b.capacity] = p
	b.listener.OnPacketStored(p.SequenceNumber, p)

	frame := b.removeFrame()
	if frame != nil {
		b.listener.OnFrameAssembled(frame)
	}
	return frame
}

// removeFrame scans contiguous packets from the origin, grouping them
// by timestamp. The first closed group becomes the candidate frame; it
// is released once enough later frame boundaries have been seen to
// satisfy the prefetch depth, consuming its slots. A gap ends the scan.
func (b *Buffer) removeFrame() *Frame {
	var (
		frame   *Frame
		frames  int
		packets []*Packet
		remove  int

		timestamp    uint32
		ntpTimestamp time.Time
		rtpDiff      int64
		started      bool
	)

	for count := 0; count < b.capacity; count++ {
		packet := b.packets[(b.origin+count)%b.capacity]
		if packet == nil {
			break
		}
		if !started {
			started = true
			timestamp = packet.Timestamp
			ntpTimestamp = packet.NTPTimestamp
			rtpDiff = packet.RTPDiff
		} else if packet.Timestamp != timestamp {
			// a frame boundary; keep only the first completed frame
			if frame == nil {
				frame = &Frame{
					Data:         concat(packets),
					Packets:      packets,
					Timestamp:    timestamp,
					NTPTimestamp: ntpTimestamp,
					RTPDiff:      rtpDiff,
				}
				remove = count
			}

			frames++
			if frames >= b.prefetch {
				b.Remove(remove)
				return frame
			}

			packets = nil
			timestamp = packet.Timestamp
		}
		packets = append(packets, packet)
	}

	return nil
}

// Remove clears count slots starting at the origin and advances the
// origin past them. count exceeding the capacity is a programming
// error.
func (b *Buffer) Remove(count int) {
	if count > b.capacity {
		panic(fmt.Sprintf("reorder: remove count %d exceeds capacity %d", count, b.capacity))
	}
	for i := 0; i < count; i++ {
		b.packets[b.origin%b.capacity] = nil
		b.origin++
	}
}

func concat(packets []*Packet) []byte {
	size := 0
	for _, p := range packets {
		size += len(p.Data)
	}
	data := make([]byte, 0, size)
	for _, p := range packets {
		data = append(data, p.Data...)
	}
	return data
}
