package sender_test

import (
	"testing"
	"time"

	"github.com/YaoZengzeng/yusend/checker"
	"github.com/YaoZengzeng/yusend/header"
	"github.com/YaoZengzeng/yusend/seqnum"
	"github.com/YaoZengzeng/yusend/transport/sender"
	"github.com/YaoZengzeng/yusend/transport/sender/testing/context"
)

// input builds a deterministic transfer payload of n bytes
func input(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

func TestStopAndWaitLossless(t *testing.T) {
	// A 3000-byte file fragments into 1020 + 1020 + 960
	c := context.New(t, sender.NewStopAndWait(), input(3000))

	c.QueueAck(1020)
	c.QueueAck(2040)
	c.QueueAck(3000)
	c.QueueFinReply()
	// The FINACK phase ends on the first receive timeout, served once the
	// script runs dry

	report := c.Run()

	writes := c.Writes()
	if len(writes) != 5 {
		t.Fatalf("unexpected wire traffic: %d datagrams, want 5", len(writes))
	}

	checker.Datagram(t, writes[0], checker.SeqId(0), checker.PayloadLen(1020))
	checker.Datagram(t, writes[1], checker.SeqId(1020), checker.PayloadLen(1020))
	checker.Datagram(t, writes[2], checker.SeqId(2040), checker.PayloadLen(960))
	checker.Datagram(t, writes[3], checker.SeqId(3000), checker.EOFProbe())
	checker.Datagram(t, writes[4], checker.SeqId(3000), checker.FinAck())

	if report.Throughput <= 0 {
		t.Fatalf("lossless transfer reported throughput %v", report.Throughput)
	}
}

func TestStopAndWaitRetransmitsOnTimeout(t *testing.T) {
	c := context.New(t, sender.NewStopAndWait(), input(1020))

	// The first segment is dropped twice before its acknowledgement lands
	start := c.Clock().Now()
	c.QueueTimeout()
	c.QueueTimeout()
	c.QueueAck(1020)
	c.QueueFinReply()

	c.Run()

	writes := c.Writes()
	data := 0
	for _, w := range writes {
		if header.Transfer(w).SeqId() == 0 && len(w) > header.SeqIdSize {
			data++
		}
	}
	if data != 3 {
		t.Fatalf("first segment emitted %d times, want 3", data)
	}

	// Two full receive timeouts elapsed before delivery
	if elapsed := c.Clock().Now().Sub(start); elapsed < 2*time.Second {
		t.Fatalf("transfer elapsed %v, want >= 2s", elapsed)
	}
}

func TestFixedWindowRefillsOnAck(t *testing.T) {
	const segments = 150
	c := context.New(t, sender.NewFixedWindow(), input(segments*header.MessageSize))

	for i := 1; i <= segments; i++ {
		c.QueueAck(seqnum.Value(i * header.MessageSize))
	}

	c.Run()

	writes := c.Writes()

	// The first pass fills the whole window
	for i := 0; i < 100; i++ {
		checker.Datagram(t, writes[i], checker.SeqId(seqnum.Value(i*header.MessageSize)))
	}

	// Acknowledging the first segment must slide segment 101 into the
	// window within one iteration
	checker.Datagram(t, writes[100], checker.SeqId(100*header.MessageSize), checker.PayloadLen(header.MessageSize))

	// The transfer ends with the trailer tagged with the final offset
	last := writes[len(writes)-1]
	checker.Datagram(t, last, checker.SeqId(segments*header.MessageSize), checker.FinAck())
}

func TestFixedWindowRetransmitsAllOnTimeout(t *testing.T) {
	c := context.New(t, sender.NewFixedWindow(), input(3*header.MessageSize))

	c.QueueTimeout()
	c.QueueAck(3 * header.MessageSize)

	c.Run()

	writes := c.Writes()
	if len(writes) < 7 {
		t.Fatalf("unexpected wire traffic: %d datagrams, want >= 7", len(writes))
	}

	// Three initial emissions, then the whole window again
	for i := 0; i < 3; i++ {
		checker.Datagram(t, writes[i], checker.SeqId(seqnum.Value(i*header.MessageSize)))
		checker.Datagram(t, writes[3+i], checker.SeqId(seqnum.Value(i*header.MessageSize)))
	}
}

func TestRenoFastRetransmitScenario(t *testing.T) {
	c := context.New(t, sender.NewReno(), input(3*header.MessageSize))

	c.QueueAck(1020)
	c.QueueAck(1020)
	c.QueueAck(1020)
	c.QueueAck(1020)
	// The drain poll after the third duplicate runs the socket dry
	c.QueueTimeout()
	c.QueueAck(3060)

	c.Run()

	writes := c.Writes()

	checker.Datagram(t, writes[0], checker.SeqId(0))
	checker.Datagram(t, writes[1], checker.SeqId(1020))
	checker.Datagram(t, writes[2], checker.SeqId(2040))

	// On the third duplicate the transmission restarts at the lost offset
	checker.Datagram(t, writes[3], checker.SeqId(1020))
}

func TestRenoTimeoutRetransmitsHead(t *testing.T) {
	c := context.New(t, sender.NewReno(), input(3*header.MessageSize))

	c.QueueAck(1020)
	c.QueueTimeout()
	c.QueueAck(2040)
	c.QueueAck(3060)

	c.Run()

	writes := c.Writes()

	checker.Datagram(t, writes[0], checker.SeqId(0))
	checker.Datagram(t, writes[1], checker.SeqId(1020))
	checker.Datagram(t, writes[2], checker.SeqId(2040))

	// The silent period collapses the window to one segment and restarts
	// from the unacknowledged head
	checker.Datagram(t, writes[3], checker.SeqId(1020))
	checker.Datagram(t, writes[4], checker.SeqId(2040))
}

func TestVegasLossless(t *testing.T) {
	c := context.New(t, sender.NewVegas(), input(4*header.MessageSize))

	c.QueueAck(1020)
	c.QueueAck(2040)
	c.QueueAck(4080)

	report := c.Run()

	writes := c.Writes()
	if len(writes) != 5 {
		t.Fatalf("unexpected wire traffic: %d datagrams, want 5", len(writes))
	}
	for i := 0; i < 4; i++ {
		checker.Datagram(t, writes[i], checker.SeqId(seqnum.Value(i*header.MessageSize)))
	}
	checker.Datagram(t, writes[4], checker.SeqId(4*header.MessageSize), checker.FinAck())

	if report.Throughput <= 0 {
		t.Fatalf("lossless transfer reported throughput %v", report.Throughput)
	}
	if len(report.String()) == 0 {
		t.Fatal("empty report line")
	}
}

func TestShortDatagramIgnored(t *testing.T) {
	c := context.New(t, sender.NewFixedWindow(), input(header.MessageSize))

	// A truncated datagram carries no acknowledgement and must not stall
	// or advance the transfer
	c.QueueRaw(time.Millisecond, []byte{0x01})
	c.QueueAck(header.MessageSize)

	c.Run()

	writes := c.Writes()
	checker.Datagram(t, writes[0], checker.SeqId(0), checker.PayloadLen(header.MessageSize))
	checker.Datagram(t, writes[len(writes)-1], checker.FinAck())
}
