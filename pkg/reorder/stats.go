package reorder

import (
	"github.com/huandu/skiplist"
	"github.com/samber/lo"
	"math"

	"sync"
)

// Stats is a Listener that measures arrival quality over a sliding
// window of sequence numbers. Callers use it to size capacity and
// prefetch for a stream.
type Stats struct {
	sync.Mutex

	late *skiplist.SkipList // extended sequence -> distance behind the newest packet

	current int64
	last    uint16
	marked  bool

	highest int64
	window  int64 // 1024

	dropped int
	resets  int
	frames  int
}

func NewStats(window int64) *Stats {
	return &Stats{
		late:   skiplist.New(skiplist.Int64),
		window: window,
	}
}

func (s *Stats) OnPacketStored(seq uint16, p *Packet) {
	s.Lock()
	defer s.Unlock()

	ext := s.extend(seq)
	if ext >= s.highest {
		s.highest = ext
	} else {
		s.late.Set(ext, s.highest-ext) // 늦게 도착한 거리를 기록
	}

	removeLessThan(s.late, s.highest-s.window)
}

func (s *Stats) OnPacketDropped(seq uint16) {
	s.Lock()
	defer s.Unlock()

	s.dropped++
}

func (s *Stats) OnFrameAssembled(f *Frame) {
	s.Lock()
	defer s.Unlock()

	s.frames++
}

func (s *Stats) OnWindowReset(origin uint16, evicted int) {
	s.Lock()
	defer s.Unlock()

	s.resets++
}

// MaxDepth reports the largest reorder distance seen inside the
// current window, the lower bound on a capacity that would have kept
// every late packet.
func (s *Stats) MaxDepth() int64 {
	s.Lock()
	defer s.Unlock()

	if s.late.Len() == 0 {
		return 0
	}
	return maxInList(s.late)
}

// LateCount reports how many packets in the current window arrived
// behind a newer one.
func (s *Stats) LateCount() int {
	s.Lock()
	defer s.Unlock()

	return s.late.Len()
}

func (s *Stats) Dropped() int {
	s.Lock()
	defer s.Unlock()

	return s.dropped
}

func (s *Stats) Resets() int {
	s.Lock()
	defer s.Unlock()

	return s.resets
}

func (s *Stats) Frames() int {
	s.Lock()
	defer s.Unlock()

	return s.frames
}

// extend widens the 16-bit wire sequence into a monotonic counter so
// that window trimming survives wraparound.
func (s *Stats) extend(seq uint16) int64 {
	if !s.marked {
		s.marked = true
		s.last = seq
		s.current = int64(seq)
		return s.current
	}

	diff := int16(seq - s.last)
	s.last = seq
	s.current += int64(diff)
	return s.current
}

func maxInList(list *skiplist.SkipList) int64 {
	var res int64 = math.MinInt64
	for el := list.Front(); el != nil; el = el.Next() {
		res = lo.Max([]int64{res, el.Value.(int64)})
	}
	return res
}

func removeLessThan(list *skiplist.SkipList, key int64) {
	for {
		front := list.Front()
		if front == nil || front.Key() == nil || front.Key().(int64) >= key {
			break
		}
		list.RemoveFront()
	}
}
