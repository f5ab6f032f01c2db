package sender

import (
	"github.com/YaoZengzeng/yusend/seqnum"
)

// Probe receives live progress callbacks from a running transfer. Probes are
// strictly observational: they must not block and cannot influence the
// transfer
type Probe interface {
	// PacketSent is called on every data-segment wire emission
	PacketSent(seq seqnum.Value, size int, retransmit bool)

	// AckReceived is called for every decoded acknowledgement
	AckReceived(ack seqnum.Value, duplicate bool)

	// BytesAcked is called with the payload size of every segment removed
	// from the window
	BytesAcked(n int)

	// WindowChanged reports the congestion window at the end of each
	// driver iteration
	WindowChanged(cwnd float64)
}

type nopProbe struct{}

func (nopProbe) PacketSent(seqnum.Value, int, bool) {}
func (nopProbe) AckReceived(seqnum.Value, bool)     {}
func (nopProbe) BytesAcked(int)                     {}
func (nopProbe) WindowChanged(float64)              {}

// MultiProbe fans callbacks out to a set of probes
type MultiProbe []Probe

func (m MultiProbe) PacketSent(seq seqnum.Value, size int, retransmit bool) {
	for _, p := range m {
		p.PacketSent(seq, size, retransmit)
	}
}

func (m MultiProbe) AckReceived(ack seqnum.Value, duplicate bool) {
	for _, p := range m {
		p.AckReceived(ack, duplicate)
	}
}

func (m MultiProbe) BytesAcked(n int) {
	for _, p := range m {
		p.BytesAcked(n)
	}
}

func (m MultiProbe) WindowChanged(cwnd float64) {
	for _, p := range m {
		p.WindowChanged(cwnd)
	}
}
