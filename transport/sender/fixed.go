package sender

// fixedWindowSize is the constant congestion window of the fixed sliding
// window controller
const fixedWindowSize = 100

// FixedWindow keeps a constant window of segments in flight with no
// congestion dynamics: acknowledgements slide the window forward, a receive
// timeout retransmits everything still outstanding
type FixedWindow struct {
	controllerBase
}

// NewFixedWindow creates a fixed sliding window controller
func NewFixedWindow() *FixedWindow {
	return &FixedWindow{}
}

// InitialState implements Controller.InitialState
func (*FixedWindow) InitialState() State {
	return StateSendingData
}

// Cwnd implements Controller.Cwnd
func (*FixedWindow) Cwnd() float64 {
	return fixedWindowSize
}

// OnReceiveTimeout implements Controller.OnReceiveTimeout. During the data
// phase every window segment is re-armed for retransmission; once the FINACK
// phase has begun the timeout is the end-of-transfer signal
func (*FixedWindow) OnReceiveTimeout(s *Sender) bool {
	if s.state == StateSendingFinAck {
		return true
	}

	s.log.WithField("window", s.wnd.Len()).Debug("receive timeout, retransmitting window")
	s.rearm()
	return false
}

// OnDrain implements Controller.OnDrain: once the window has drained the
// trailer is emitted on every tick until the peer goes quiet
func (*FixedWindow) OnDrain(s *Sender) error {
	s.state = StateSendingFinAck
	return s.writeFinAck()
}
