package sender

import (
	"github.com/YaoZengzeng/yusend/seqnum"
)

// sendWindow tracks the unacknowledged segments of a transfer in strictly
// increasing sequence order. Segments are inserted at the tail and removed
// from the head; flags are mutated in place so iteration stays stable while
// the window is live
type sendWindow struct {
	list   segmentList
	length int
}

// Len returns the number of segments in the window
func (w *sendWindow) Len() int {
	return w.length
}

// Empty returns true if the window holds no segments
func (w *sendWindow) Empty() bool {
	return w.list.Empty()
}

// Head returns the oldest unacknowledged segment, or nil
func (w *sendWindow) Head() *Segment {
	return w.list.Front()
}

// PushBack appends a segment at the tail of the window
func (w *sendWindow) PushBack(s *Segment) {
	w.list.PushBack(s)
	w.length++
}

// PopBelow removes and returns, in order, every head segment whose sequence
// number is below ack. This is the cumulative acknowledgement rule: ack
// acknowledges every byte before it
func (w *sendWindow) PopBelow(ack seqnum.Value) []*Segment {
	var removed []*Segment
	for s := w.list.Front(); s != nil && s.seqId.LessThan(ack); s = w.list.Front() {
		w.list.Remove(s)
		w.length--
		removed = append(removed, s)
	}
	return removed
}

// ResetInTransit re-arms every segment in the window for retransmission by
// clearing its in-transit flag. Send times are preserved so retransmissions
// never re-stamp them
func (w *sendWindow) ResetInTransit() {
	for s := w.list.Front(); s != nil; s = s.Next() {
		s.inTransit = false
	}
}

// CountInTransit returns the number of window segments currently counting
// against the congestion window
func (w *sendWindow) CountInTransit() int {
	n := 0
	for s := w.list.Front(); s != nil; s = s.Next() {
		if s.inTransit {
			n++
		}
	}
	return n
}
