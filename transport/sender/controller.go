package sender

import (
	"time"

	"github.com/YaoZengzeng/yusend/seqnum"
)

// State is the position of a transfer in its variant's state machine. The
// values are ordered: everything below StateSendingEOF is a data-phase state
type State int

const (
	// StateTimeout marks a window re-armed after loss; the next send pass
	// retransmits and resumes slow start
	StateTimeout State = -1

	// StateEvaluation is a Vegas rate-evaluation period
	StateEvaluation State = 0

	// StateSendingData is the data phase of the variants that carry no
	// congestion dynamics
	StateSendingData State = 1

	// StateSlowStart grows the window by one segment per acknowledgement
	StateSlowStart State = 2

	// StateCongestionAvoidance grows the window additively
	StateCongestionAvoidance State = 3

	// StateSendingEOF means the input is exhausted; the window is draining
	StateSendingEOF State = 4

	// StateSendingFinAck means the terminating trailer is being emitted
	StateSendingFinAck State = 5

	// StateComplete means the transfer has terminated
	StateComplete State = 6
)

func (s State) String() string {
	switch s {
	case StateTimeout:
		return "TIMEOUT"
	case StateEvaluation:
		return "EVALUATION"
	case StateSendingData:
		return "SENDING_DATA"
	case StateSlowStart:
		return "SLOW_START"
	case StateCongestionAvoidance:
		return "CONGESTION_AVOIDANCE"
	case StateSendingEOF:
		return "SENDING_EOF"
	case StateSendingFinAck:
		return "SENDING_FINACK"
	case StateComplete:
		return "COMPLETE"
	default:
		return "UNKNOWN"
	}
}

// Controller is the congestion-control capability plugged into a Sender. The
// driver owns the window bookkeeping and the cumulative-acknowledgement rule;
// the controller owns the congestion window and decides how the transfer
// reacts to acknowledgements, losses and shutdown.
//
// All hooks run on the single transfer goroutine, between receive calls
type Controller interface {
	// InitialState is the data-phase state the transfer starts in
	InitialState() State

	// Cwnd returns the congestion window in segments. It is truncated to
	// an integer wherever the driver compares it against segment counts
	Cwnd() float64

	// OnAck handles an acknowledgement that advanced the last seen value.
	// The driver has already popped removed from the window, recorded
	// their delays and adjusted the in-transit count. sample is the
	// round-trip measured against the head segment at reception, or zero
	// if no sample could be taken
	OnAck(s *Sender, ack seqnum.Value, removed []*Segment, sample time.Duration)

	// OnDuplicateAck handles an acknowledgement equal to the last seen
	// value. The duplicate count has already been bumped
	OnDuplicateAck(s *Sender)

	// OnReceiveTimeout handles an expired receive. Returning true
	// terminates the transfer: the timeout was the benign end-of-transfer
	// signal
	OnReceiveTimeout(s *Sender) bool

	// OnHeadTimeout handles the head segment outliving the retransmission
	// timeout
	OnHeadTimeout(s *Sender, head *Segment)

	// OnSend is invoked for every segment about to be emitted, before the
	// wire write and before its first-send time is stamped
	OnSend(s *Sender, seg *Segment)

	// OnDrain is invoked when the state has reached SENDING_EOF and the
	// window is empty; the variant finishes the transfer from here
	OnDrain(s *Sender) error

	// Tick runs once at the end of every driver iteration
	Tick(s *Sender)
}

// controllerBase provides the no-op hooks shared by the variants
type controllerBase struct{}

func (controllerBase) OnDuplicateAck(*Sender)                                 {}
func (controllerBase) OnHeadTimeout(*Sender, *Segment)                        {}
func (controllerBase) OnSend(*Sender, *Segment)                               {}
func (controllerBase) Tick(*Sender)                                           {}
func (controllerBase) OnAck(*Sender, seqnum.Value, []*Segment, time.Duration) {}
