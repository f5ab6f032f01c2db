package sender

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/YaoZengzeng/yusend/header"
	"github.com/YaoZengzeng/yusend/seqnum"
)

const (
	// vegasAlpha and vegasBeta bound the expected/actual throughput gap
	// within which the window grows, and beyond which it decays
	vegasAlpha = 20.0
	vegasBeta  = 40.0

	// vegasDelta is the throughput shortfall that ends slow start
	vegasDelta = 1000.0

	// vegasEpsilon is the rate-mismatch tolerance of the timeout
	// heuristic: a timeout only counts when the head segment was sent at
	// roughly the current expected rate
	vegasEpsilon = 0.8
)

// distinguishedPhase alternates with each distinguished segment between
// evaluating the actual throughput and acting on the evaluation
type distinguishedPhase int

const (
	phaseEval distinguishedPhase = iota
	phaseChange
)

func (p distinguishedPhase) String() string {
	if p == phaseEval {
		return "EVAL"
	}
	return "CHANGE"
}

// Vegas implements a delay-based controller in the style of TCP Vegas: it
// compares the throughput expected from the base round-trip time against the
// throughput actually measured over a distinguished segment's lifetime, and
// steers the window toward the point where the two agree. Timeouts are
// filtered by a rate-mismatch heuristic instead of being trusted blindly
type Vegas struct {
	controllerBase

	cwnd float64

	// phase toggles whenever a new distinguished segment goes out
	phase distinguishedPhase

	// distinguishedOut is set while a distinguished segment is in the
	// window; distinguishedBytes accumulates the bytes sent during its
	// lifetime
	distinguishedOut   bool
	distinguishedBytes int64

	expected      float64
	expectedValid bool

	actual      float64
	actualValid bool
}

// NewVegas creates a Vegas controller in slow start
func NewVegas() *Vegas {
	return &Vegas{
		cwnd:  1,
		phase: phaseChange,
	}
}

// InitialState implements Controller.InitialState
func (*Vegas) InitialState() State {
	return StateSlowStart
}

// Cwnd implements Controller.Cwnd
func (c *Vegas) Cwnd() float64 {
	return c.cwnd
}

// OnSend implements Controller.OnSend. This is where the rate probing lives:
// whenever no distinguished segment is outstanding, the next fresh segment
// becomes distinguished and the measurement window restarts. Every emission
// also records the expected throughput the segment was sent at, for the
// timeout heuristic
func (c *Vegas) OnSend(s *Sender, seg *Segment) {
	if s.state == StateTimeout {
		// Resuming after a timeout: offset the retransmission so the
		// measurement is not double counted
		s.state = StateSlowStart
		c.distinguishedBytes -= header.MessageSize
	}

	if !c.distinguishedOut && !seg.sent() {
		seg.distinguished = true
		c.distinguishedOut = true
		if c.phase == phaseChange {
			c.phase = phaseEval
		} else {
			c.phase = phaseChange
		}
		s.log.WithFields(logrus.Fields{"seq": seg.seqId, "phase": c.phase}).Debug("distinguished segment")
	}

	if seg.distinguished && !seg.sent() {
		c.distinguishedBytes = header.MessageSize
	} else {
		c.distinguishedBytes += int64(len(seg.payload))
	}

	if c.expectedValid {
		seg.sampledRate = c.expected
		seg.rateSampled = true
	}
}

// OnAck implements Controller.OnAck
func (c *Vegas) OnAck(s *Sender, ack seqnum.Value, removed []*Segment, sample time.Duration) {
	if sample > 0 {
		s.rtt.ObserveBase(sample)
		s.rtt.Observe(sample)
		if base, ok := s.rtt.Base(); ok && base > 0 {
			c.expected = math.Floor(c.cwnd) / base.Seconds()
			c.expectedValid = true
		}
	}

	for _, seg := range removed {
		if c.phase == phaseChange {
			switch s.state {
			case StateSlowStart:
				c.cwnd++
			case StateCongestionAvoidance:
				c.adjust(s)
			}
		}

		if !seg.distinguished {
			continue
		}
		c.distinguishedOut = false

		if c.phase == phaseEval && sample > 0 {
			c.actual = float64(c.distinguishedBytes) / sample.Seconds()
			c.actualValid = true
			s.log.WithFields(logrus.Fields{"expected": c.expected, "actual": c.actual}).Debug("rate evaluation")

			if c.expected-c.actual > vegasDelta {
				s.state = StateCongestionAvoidance
			}
		}
	}
}

// adjust steers the window by the gap between expected and actual throughput
func (c *Vegas) adjust(s *Sender) {
	if !c.actualValid {
		return
	}

	gap := math.Abs(c.expected - c.actual)
	switch {
	case gap < vegasAlpha:
		c.cwnd += 1/c.cwnd + caGrowthBias
	case gap > vegasBeta:
		c.cwnd -= 1/c.cwnd - caGrowthBias
		if c.cwnd < 1 {
			c.cwnd = 1
		}
	}
}

// OnReceiveTimeout implements Controller.OnReceiveTimeout. A receive timeout
// during the data phase carries no signal of its own; losses are detected by
// the head-segment timer
func (*Vegas) OnReceiveTimeout(s *Sender) bool {
	return s.state == StateSendingEOF
}

// OnHeadTimeout implements Controller.OnHeadTimeout: the rate-mismatch
// heuristic. The timeout only counts when the head was sent at roughly the
// current expected rate; otherwise the rates disagree and the timeout is
// ignored. A head that never recorded a rate is ignored too
func (c *Vegas) OnHeadTimeout(s *Sender, head *Segment) {
	if !head.rateSampled || !c.expectedValid {
		return
	}

	gap := math.Abs(head.sampledRate - c.expected)
	if gap >= vegasEpsilon {
		s.log.WithField("gap", gap).Debug("timeout ignored, mismatched rates")
		return
	}

	c.cwnd = math.Max(c.cwnd/2, 1)
	s.state = StateTimeout
	s.rearm()

	s.log.WithField("cwnd", c.cwnd).Debug("timeout, window halved")
}

// OnDrain implements Controller.OnDrain
func (*Vegas) OnDrain(s *Sender) error {
	return s.writeFinAck()
}
