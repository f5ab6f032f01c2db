package sender

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/YaoZengzeng/yusend/seqnum"
)

const (
	// renoInitialSsthresh is the slow-start threshold a fresh transfer
	// starts with, in segments
	renoInitialSsthresh = 64

	// renoTimeoutFactor scales the smoothed round-trip time into the
	// retransmission timeout
	renoTimeoutFactor = 100

	// renoAckDrainWindow bounds the polling that empties the socket of
	// already-queued duplicate acknowledgements after a fast retransmit
	renoAckDrainWindow = 50 * time.Millisecond

	// fastRetransmitThreshold is the duplicate-acknowledgement count that
	// triggers a fast retransmit
	fastRetransmitThreshold = 3

	// caGrowthBias is the additive term applied alongside the 1/cwnd
	// growth during congestion avoidance
	caGrowthBias = 1.0 / 8
)

// Reno implements TCP Reno congestion control: exponential slow start up to
// ssthresh, additive increase beyond it, fast retransmit on the third
// duplicate acknowledgement and multiplicative decrease on loss
type Reno struct {
	controllerBase

	cwnd     float64
	ssthresh float64
}

// NewReno creates a Reno controller in slow start
func NewReno() *Reno {
	return &Reno{
		cwnd:     1,
		ssthresh: renoInitialSsthresh,
	}
}

// InitialState implements Controller.InitialState
func (*Reno) InitialState() State {
	return StateSlowStart
}

// Cwnd implements Controller.Cwnd
func (c *Reno) Cwnd() float64 {
	return c.cwnd
}

// Ssthresh returns the slow-start threshold, in segments
func (c *Reno) Ssthresh() float64 {
	return c.ssthresh
}

// OnAck implements Controller.OnAck: the window grows once per removed
// segment, and the retransmission timeout tracks the smoothed round trip
func (c *Reno) OnAck(s *Sender, ack seqnum.Value, removed []*Segment, sample time.Duration) {
	if sample > 0 {
		s.rtt.Observe(sample)
		s.timeout = time.Duration(renoTimeoutFactor * float64(s.rtt.Estimated()))
	}

	for range removed {
		switch s.state {
		case StateSlowStart:
			c.cwnd++
		case StateCongestionAvoidance:
			c.cwnd += 1/c.cwnd + caGrowthBias
		}
	}
}

// OnDuplicateAck implements Controller.OnDuplicateAck: the third duplicate
// triggers a fast retransmit. The socket is drained of the duplicates that
// piled up behind the loss, the window is halved and re-armed, and the
// transfer continues in congestion avoidance
func (c *Reno) OnDuplicateAck(s *Sender) {
	if s.duplicateAcks != fastRetransmitThreshold {
		return
	}
	s.duplicateAcks = 0

	c.ssthresh = math.Max(math.Floor(c.cwnd/2), 1)
	c.cwnd = c.ssthresh
	s.state = StateCongestionAvoidance

	s.log.WithFields(logrus.Fields{"cwnd": c.cwnd, "ssthresh": c.ssthresh}).Debug("fast retransmit")

	s.drainQueuedAcks(renoAckDrainWindow)
	s.rearm()
	s.skipSweep = true
}

// OnReceiveTimeout implements Controller.OnReceiveTimeout
func (c *Reno) OnReceiveTimeout(s *Sender) bool {
	if s.state == StateSendingEOF {
		return true
	}
	c.timeoutReset(s)
	return false
}

// OnHeadTimeout implements Controller.OnHeadTimeout
func (c *Reno) OnHeadTimeout(s *Sender, head *Segment) {
	c.timeoutReset(s)
}

// timeoutReset is the loss reaction: the threshold halves, the window
// collapses to one segment and the whole window is re-armed for
// retransmission
func (c *Reno) timeoutReset(s *Sender) {
	c.ssthresh = math.Max(math.Floor(c.cwnd/2), 1)
	c.cwnd = 1
	s.state = StateTimeout
	s.rearm()

	s.log.WithField("ssthresh", c.ssthresh).Debug("timeout, window collapsed")
}

// OnSend implements Controller.OnSend: the first retransmission after a
// timeout resumes slow start
func (c *Reno) OnSend(s *Sender, seg *Segment) {
	if s.state == StateTimeout {
		s.state = StateSlowStart
	}
}

// Tick implements Controller.Tick. A fractional window within a tenth of the
// next integer is rounded up so integer-tick growth is preserved, and slow
// start hands over to congestion avoidance at the threshold
func (c *Reno) Tick(s *Sender) {
	if math.Floor(c.cwnd+0.1) > math.Floor(c.cwnd) {
		c.cwnd = math.Floor(c.cwnd + 0.1)
	}

	if s.state == StateSlowStart && c.cwnd >= c.ssthresh {
		c.cwnd = c.ssthresh
		s.state = StateCongestionAvoidance
	}
}

// OnDrain implements Controller.OnDrain
func (*Reno) OnDrain(s *Sender) error {
	return s.writeFinAck()
}
