package reorder

import "time"

// Packet is a single transport packet, already parsed by the caller.
// The buffer never mutates a packet once it has been added.
type Packet struct {
	SequenceNumber uint16
	Timestamp      uint32
	NTPTimestamp   time.Time
	RTPDiff        int64
	Data           []byte
}

// Frame is a complete media frame reassembled from consecutive packets
// sharing a timestamp. Data is the concatenation of the packets'
// payloads in sequence order; the remaining fields are copied from the
// first packet of the frame.
type Frame struct {
	Data         []byte
	Packets      []*Packet
	Timestamp    uint32
	NTPTimestamp time.Time
	RTPDiff      int64
}

type Assembler interface {
	Add(p *Packet) *Frame
	Capacity() int
}

type AssemblerFactory interface {
	CreateAssembler() Assembler
}

type Factory struct {
	capacity int
	prefetch int
	listener Listener
}

// NewFactory validates the configuration once so that CreateAssembler
// cannot fail.
func NewFactory(capacity, prefetch int, listener Listener) (*Factory, error) {
	if _, err := NewBuffer(capacity, prefetch, listener); err != nil {
		return nil, err
	}
	return &Factory{
		capacity: capacity,
		prefetch: prefetch,
		listener: listener,
	}, nil
}

func (f *Factory) CreateAssembler() Assembler {
	b, _ := NewBuffer(f.capacity, f.prefetch, f.listener)
	return b
}
