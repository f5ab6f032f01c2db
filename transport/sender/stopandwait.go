package sender

import (
	"github.com/YaoZengzeng/yusend/header"
)

// StopAndWait is the simplest controller: exactly one segment is in flight
// at any time, resent on every receive timeout until its acknowledgement
// arrives. Shutdown probes the receiver with empty end-of-file datagrams
// until it replies "fin", then emits FINACK until the final benign timeout
type StopAndWait struct {
	controllerBase
}

// NewStopAndWait creates a stop-and-wait controller
func NewStopAndWait() *StopAndWait {
	return &StopAndWait{}
}

// InitialState implements Controller.InitialState
func (*StopAndWait) InitialState() State {
	return StateSendingData
}

// Cwnd implements Controller.Cwnd
func (*StopAndWait) Cwnd() float64 {
	return 1
}

// OnReceiveTimeout implements Controller.OnReceiveTimeout: the outstanding
// segment is re-armed and resent on the next pass
func (*StopAndWait) OnReceiveTimeout(s *Sender) bool {
	s.rearm()
	return false
}

// OnDrain implements Controller.OnDrain: the whole shutdown handshake runs
// synchronously once the last segment has been acknowledged
func (*StopAndWait) OnDrain(s *Sender) error {
	var probeSent bool
	var probeAt = s.clock.Now()

	for s.state == StateSendingEOF {
		if err := s.writeEOFProbe(); err != nil {
			return err
		}
		if !probeSent {
			probeSent = true
			probeAt = s.clock.Now()
		}

		raw, timedOut, err := s.readDatagram()
		if err != nil {
			return err
		}
		if timedOut {
			// Keep probing until the receiver confirms
			continue
		}
		if header.ContainsFin(raw) {
			s.metrics.observeDelay(s.clock.Now().Sub(probeAt))
			s.state = StateSendingFinAck
		}
	}

	for s.state == StateSendingFinAck {
		if err := s.writeFinAck(); err != nil {
			return err
		}

		_, timedOut, err := s.readDatagram()
		if err != nil {
			return err
		}
		if timedOut {
			// The benign timeout: nobody is listening anymore
			s.finish()
		}
	}

	return nil
}
