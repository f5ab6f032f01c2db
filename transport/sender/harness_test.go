package sender

import (
	"bytes"
	"io"
	"net"
	"time"

	"github.com/sirupsen/logrus"
)

type stubTimeout struct{}

func (stubTimeout) Error() string   { return "i/o timeout" }
func (stubTimeout) Timeout() bool   { return true }
func (stubTimeout) Temporary() bool { return true }

// stubConn times out every receive and swallows every send. It is enough for
// exercising controllers directly
type stubConn struct {
	reads  int
	writes int
}

func (c *stubConn) ReadFrom(b []byte) (int, net.Addr, error) {
	c.reads++
	return 0, nil, stubTimeout{}
}

func (c *stubConn) WriteTo(b []byte, addr net.Addr) (int, error) {
	c.writes++
	return len(b), nil
}

func (c *stubConn) SetReadDeadline(time.Time) error { return nil }
func (c *stubConn) Close() error                    { return nil }

type manualClock struct {
	now time.Time
}

func (c *manualClock) Now() time.Time {
	return c.now
}

func (c *manualClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// newTestSender builds a sender around stub collaborators for white-box
// controller tests
func newTestSender(ctrl Controller, input []byte) (*Sender, *manualClock) {
	clock := &manualClock{now: time.Unix(1, 0)}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	s := New(&stubConn{}, &net.UDPAddr{}, bytes.NewReader(input), ctrl, &Options{
		Clock:  clock,
		Logger: logger,
	})
	return s, clock
}

func payload(n int) []byte {
	return make([]byte, n)
}
