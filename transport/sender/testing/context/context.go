// Package context provides a test context wiring a transfer sender to a
// scripted peer. The peer is a queue of receive outcomes (acknowledgements,
// raw datagrams or deadline expiries), each advancing a manual clock, so
// whole transfers run deterministically with no sockets and no sleeping
package context

import (
	"bytes"
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/YaoZengzeng/yusend/header"
	"github.com/YaoZengzeng/yusend/seqnum"
	"github.com/YaoZengzeng/yusend/transport/sender"
)

// maxIdleReads bounds the receives served after the script runs dry, so a
// misscripted transfer fails the test instead of spinning forever
const maxIdleReads = 1000

// defaultAdvance is the clock movement of a scripted acknowledgement
const defaultAdvance = 10 * time.Millisecond

var peerAddr = &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 5001}

// Clock is a manually advanced clock
type Clock struct {
	now time.Time
}

// Now implements types.Clock.Now
func (c *Clock) Now() time.Time {
	return c.now
}

// Advance moves the clock forward
func (c *Clock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

type step struct {
	advance time.Duration

	// payload is the datagram handed to the sender; nil means the
	// receive deadline expires instead
	payload []byte
}

// Conn is a packet connection whose receives replay a script and whose sends
// are captured for inspection
type Conn struct {
	clock     *Clock
	steps     []step
	writes    [][]byte
	idleReads int
}

// ReadFrom implements types.PacketConn.ReadFrom. Once the script is
// exhausted every receive times out, which drives any variant through its
// shutdown handshake
func (c *Conn) ReadFrom(b []byte) (int, net.Addr, error) {
	if len(c.steps) == 0 {
		c.idleReads++
		if c.idleReads > maxIdleReads {
			panic("test peer script exhausted and the transfer did not terminate")
		}
		c.clock.Advance(1 * time.Second)
		return 0, nil, timeoutError{}
	}

	st := c.steps[0]
	c.steps = c.steps[1:]
	c.clock.Advance(st.advance)

	if st.payload == nil {
		return 0, nil, timeoutError{}
	}
	return copy(b, st.payload), peerAddr, nil
}

// WriteTo implements types.PacketConn.WriteTo, capturing the datagram
func (c *Conn) WriteTo(b []byte, addr net.Addr) (int, error) {
	dup := make([]byte, len(b))
	copy(dup, b)
	c.writes = append(c.writes, dup)
	return len(b), nil
}

// SetReadDeadline implements types.PacketConn.SetReadDeadline. Deadlines are
// implicit in the script
func (c *Conn) SetReadDeadline(time.Time) error {
	return nil
}

// Close implements types.PacketConn.Close
func (c *Conn) Close() error {
	return nil
}

// Context wires a Sender to the scripted peer
type Context struct {
	t     *testing.T
	clock *Clock
	conn  *Conn
	snd   *sender.Sender
}

// New creates a test context transferring input with the given controller
func New(t *testing.T, ctrl sender.Controller, input []byte) *Context {
	clock := &Clock{now: time.Unix(1, 0)}
	conn := &Conn{clock: clock}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	snd := sender.New(conn, peerAddr, bytes.NewReader(input), ctrl, &sender.Options{
		Clock:  clock,
		Logger: logger,
	})

	return &Context{
		t:     t,
		clock: clock,
		conn:  conn,
		snd:   snd,
	}
}

// QueueAck scripts a cumulative acknowledgement arriving after the default
// clock advance
func (c *Context) QueueAck(id seqnum.Value) {
	c.QueueAckAfter(defaultAdvance, id)
}

// QueueAckAfter scripts a cumulative acknowledgement arriving after d
func (c *Context) QueueAckAfter(d time.Duration, id seqnum.Value) {
	b := make([]byte, header.SeqIdSize)
	binary.BigEndian.PutUint32(b, uint32(id))
	c.conn.steps = append(c.conn.steps, step{advance: d, payload: b})
}

// QueueRaw scripts an arbitrary datagram arriving after d
func (c *Context) QueueRaw(d time.Duration, b []byte) {
	c.conn.steps = append(c.conn.steps, step{advance: d, payload: b})
}

// QueueFinReply scripts the receiver's reply to an end-of-file probe
func (c *Context) QueueFinReply() {
	c.QueueRaw(defaultAdvance, []byte("fin"))
}

// QueueTimeout scripts a receive deadline expiry
func (c *Context) QueueTimeout() {
	c.conn.steps = append(c.conn.steps, step{advance: 1 * time.Second})
}

// Run drives the transfer to completion
func (c *Context) Run() *sender.Report {
	c.t.Helper()

	report, err := c.snd.Run()
	if err != nil {
		c.t.Fatalf("transfer failed: %v", err)
	}
	return report
}

// Writes returns every datagram the sender emitted, in order
func (c *Context) Writes() [][]byte {
	return c.conn.writes
}

// Clock returns the manual clock driving the transfer
func (c *Context) Clock() *Clock {
	return c.clock
}
