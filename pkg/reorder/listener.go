package reorder

// Listener receives buffer events. Implementations must be fast; the
// buffer invokes them synchronously inside Add.
type Listener interface {
	OnPacketStored(seq uint16, p *Packet)
	OnPacketDropped(seq uint16)
	OnFrameAssembled(f *Frame)
	OnWindowReset(origin uint16, evicted int)
}

type NullListener struct {
}

func (n NullListener) OnPacketStored(seq uint16, p *Packet) {
}

func (n NullListener) OnPacketDropped(seq uint16) {
}

func (n NullListener) OnFrameAssembled(f *Frame) {
}

func (n NullListener) OnWindowReset(origin uint16, evicted int) {
}
