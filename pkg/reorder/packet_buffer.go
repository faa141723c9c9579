package reorder

import (
	"time"

	"github.com/pion/rtp"
	"sync"
)

// PacketBuffer feeds RTP packets into a Buffer. It creates the buffer
// lazily, starts over when the SSRC changes, and stamps each packet
// with a wall-clock estimate derived from the latest sender report.
type PacketBuffer struct {
	sync.Mutex

	buffer *Buffer
	ssrc   uint32

	capacity  int
	prefetch  int
	clockRate int64 // 90000 for video
	listener  Listener

	srNTP time.Time
	srRTP uint32
	hasSR bool
}

func NewPacketBuffer(capacity, prefetch int, clockRate int64, listener Listener) (*PacketBuffer, error) {
	if _, err := NewBuffer(capacity, prefetch, listener); err != nil {
		return nil, err
	}
	return &PacketBuffer{
		capacity:  capacity,
		prefetch:  prefetch,
		clockRate: clockRate,
		listener:  listener,
	}, nil
}

func (p *PacketBuffer) init(ssrc uint32) {
	p.buffer, _ = NewBuffer(p.capacity, p.prefetch, p.listener)
	p.ssrc = ssrc
}

// SetSenderReport records the NTP/RTP timestamp pair from an RTCP
// sender report. Until the first report arrives, packets carry a zero
// NTPTimestamp.
func (p *PacketBuffer) SetSenderReport(ntp time.Time, rtpTime uint32) {
	p.Lock()
	defer p.Unlock()

	p.srNTP = ntp
	p.srRTP = rtpTime
	p.hasSR = true
}

func (p *PacketBuffer) Put(packet *rtp.Packet) *Frame {
	p.Lock()
	defer p.Unlock()

	if p.buffer == nil || p.ssrc != packet.SSRC {
		p.init(packet.SSRC)
	}

	in := &Packet{
		SequenceNumber: packet.SequenceNumber,
		Timestamp:      packet.Timestamp,
		Data:           packet.Payload,
	}
	if p.hasSR {
		diff := int64(int32(packet.Timestamp - p.srRTP))
		in.RTPDiff = diff
		in.NTPTimestamp = p.srNTP.Add(time.Duration(diff) * time.Second / time.Duration(p.clockRate))
	}

	return p.buffer.Add(in)
}
