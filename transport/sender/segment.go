package sender

import (
	"time"

	"github.com/YaoZengzeng/yusend/buffer"
	"github.com/YaoZengzeng/yusend/header"
	"github.com/YaoZengzeng/yusend/seqnum"
)

// Segment represents one numbered fragment of the input file, transmitted as
// one datagram. It holds the payload together with the bookkeeping the send
// window and the congestion controllers need, and can be added to intrusive
// lists
type Segment struct {
	segmentEntry

	// seqId is the cumulative byte offset at which payload begins
	seqId seqnum.Value

	// payload holds at most header.MessageSize bytes
	payload buffer.View

	// sentAt is the time of the first wire emission; retransmissions do
	// not re-stamp it. The zero value means the segment was never sent
	sentAt time.Time

	// inTransit is set while the segment counts against the congestion
	// window. It is cleared when the window is re-armed for retransmission
	inTransit bool

	// distinguished marks the segment as the anchor of a Vegas rate
	// measurement. At most one window segment is distinguished at a time
	distinguished bool

	// sampledRate records the expected throughput at the moment the
	// segment was last emitted; rateSampled says whether it was ever set
	sampledRate float64
	rateSampled bool
}

func newSegment(seq seqnum.Value, payload buffer.View) *Segment {
	return &Segment{
		seqId:   seq,
		payload: payload,
	}
}

// SeqId returns the sequence number of the segment
func (s *Segment) SeqId() seqnum.Value {
	return s.seqId
}

// Payload returns the payload bytes of the segment
func (s *Segment) Payload() []byte {
	return s.payload
}

// sent returns true once the segment has been emitted at least once
func (s *Segment) sent() bool {
	return !s.sentAt.IsZero()
}

// datagramLen is the wire size of the segment including the sequence header
func (s *Segment) datagramLen() int {
	return header.SeqIdSize + len(s.payload)
}
