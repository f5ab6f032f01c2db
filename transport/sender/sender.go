// Package sender implements the sending side of the reliable file-transfer
// protocol: a single goroutine fragments the input file into numbered
// segments, keeps the unacknowledged ones in a send window, and paces
// emissions with a pluggable congestion controller until the transfer is
// terminated by the FINACK handshake
package sender

import (
	"io"
	"net"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/YaoZengzeng/yusend/header"
	"github.com/YaoZengzeng/yusend/seqnum"
	"github.com/YaoZengzeng/yusend/types"
)

const defaultRecvTimeout = 1 * time.Second

// Options adjusts the collaborators of a Sender. The zero value selects the
// system clock, the standard logger, no probe and the protocol's 1 second
// receive timeout
type Options struct {
	Clock       types.Clock
	Logger      logrus.FieldLogger
	Probe       Probe
	RecvTimeout time.Duration
}

// Sender owns the whole state of one transfer: the window, the sequence
// bookkeeping, the round-trip estimator and the metrics. It is driven by a
// single-threaded loop; the only suspension point is the bounded receive
type Sender struct {
	conn  types.PacketConn
	peer  net.Addr
	clock types.Clock
	log   logrus.FieldLogger
	probe Probe

	ctrl    Controller
	seg     *segmenter
	wnd     sendWindow
	rtt     rttEstimator
	metrics Collector

	state            State
	nextSeqId        seqnum.Value
	lastAck          seqnum.Value
	duplicateAcks    int
	packetsInTransit int

	// timeout is the retransmission timeout evaluated lazily against the
	// head segment. Variants recompute it as they see fit
	timeout     time.Duration
	recvTimeout time.Duration

	// skipSweep suppresses the next head-timeout sweep; fast recovery sets
	// it so a just-re-armed window is not immediately timed out again
	skipSweep bool

	rbuf [header.PacketSize]byte
}

// New creates a Sender reading from in and exchanging datagrams with peer
// over conn, paced by ctrl. opts may be nil
func New(conn types.PacketConn, peer net.Addr, in io.Reader, ctrl Controller, opts *Options) *Sender {
	s := &Sender{
		conn:        conn,
		peer:        peer,
		clock:       types.SystemClock,
		log:         logrus.StandardLogger(),
		probe:       nopProbe{},
		ctrl:        ctrl,
		seg:         newSegmenter(in),
		state:       ctrl.InitialState(),
		lastAck:     -1,
		timeout:     defaultRecvTimeout,
		recvTimeout: defaultRecvTimeout,
	}

	if opts != nil {
		if opts.Clock != nil {
			s.clock = opts.Clock
		}
		if opts.Logger != nil {
			s.log = opts.Logger
		}
		if opts.Probe != nil {
			s.probe = opts.Probe
		}
		if opts.RecvTimeout != 0 {
			s.recvTimeout = opts.RecvTimeout
		}
	}

	return s
}

// Run drives the transfer to completion and returns the final metrics. A
// returned error is fatal I/O; no metrics are produced then
func (s *Sender) Run() (*Report, error) {
	s.metrics.start(s.clock.Now())

	for s.state != StateComplete {
		if err := s.refill(); err != nil {
			return nil, err
		}

		if err := s.sendPass(); err != nil {
			return nil, err
		}

		if s.state >= StateSendingEOF && s.state != StateComplete && s.wnd.Empty() {
			if err := s.ctrl.OnDrain(s); err != nil {
				return nil, err
			}
			if s.state == StateComplete {
				break
			}
		}

		done, err := s.receiveOnce()
		if err != nil {
			return nil, err
		}
		if done {
			s.finish()
			break
		}

		if s.skipSweep {
			s.skipSweep = false
		} else {
			s.sweepHead()
		}

		s.ctrl.Tick(s)
		s.probe.WindowChanged(s.ctrl.Cwnd())
	}

	return s.metrics.Report(), nil
}

// refill creates new segments from the input stream until the window reaches
// the congestion window, or the input is exhausted
func (s *Sender) refill() error {
	for s.wnd.Len() < int(s.ctrl.Cwnd()) && s.state < StateSendingEOF {
		payload, err := s.seg.next()
		if err != nil {
			return errors.Wrap(err, "read input file")
		}
		if payload == nil {
			s.log.WithField("seq", s.nextSeqId).Debug("input exhausted, draining window")
			s.state = StateSendingEOF
			break
		}

		s.wnd.PushBack(newSegment(s.nextSeqId, payload))
		s.nextSeqId = s.nextSeqId.Add(seqnum.Size(len(payload)))
	}
	return nil
}

// sendPass emits every window segment not currently in transit, head first,
// stopping once the congestion window is filled
func (s *Sender) sendPass() error {
	cwnd := int(s.ctrl.Cwnd())
	for seg := s.wnd.Head(); seg != nil; seg = seg.Next() {
		if s.packetsInTransit >= cwnd {
			break
		}
		if seg.inTransit {
			continue
		}

		s.ctrl.OnSend(s, seg)

		retransmit := seg.sent()
		if err := s.writeSegment(seg); err != nil {
			return err
		}

		seg.inTransit = true
		if !retransmit {
			seg.sentAt = s.clock.Now()
		}
		s.packetsInTransit++

		s.metrics.addBytes(seg.datagramLen())
		s.probe.PacketSent(seg.seqId, seg.datagramLen(), retransmit)
	}
	return nil
}

// receiveOnce blocks for at most the receive timeout and dispatches whatever
// arrives. It returns true when the transfer terminated
func (s *Sender) receiveOnce() (bool, error) {
	raw, timedOut, err := s.readDatagram()
	if err != nil {
		return false, err
	}
	if timedOut {
		return s.ctrl.OnReceiveTimeout(s), nil
	}

	s.handleAck(raw)
	return false, nil
}

// handleAck decodes and dispatches one acknowledgement datagram
func (s *Sender) handleAck(raw []byte) {
	ack := header.Ack(raw)
	if !ack.WellFormed() {
		s.log.WithField("len", len(raw)).Debug(types.ErrShortDatagram)
		return
	}

	id := ack.Number()
	if id == s.lastAck {
		s.duplicateAcks++
		s.log.WithFields(logrus.Fields{"ack": id, "count": s.duplicateAcks}).Debug("duplicate ack")
		s.probe.AckReceived(id, true)
		s.ctrl.OnDuplicateAck(s)
		return
	}

	s.lastAck = id
	s.duplicateAcks = 0
	s.probe.AckReceived(id, false)
	s.log.WithField("ack", id).Debug("received ack")

	// Round-trip sample against the head segment at the moment of
	// reception, before the window moves
	var sample time.Duration
	if head := s.wnd.Head(); head != nil && head.sent() {
		sample = s.clock.Now().Sub(head.sentAt)
	}

	removed := s.wnd.PopBelow(id)
	for _, seg := range removed {
		if seg.inTransit {
			seg.inTransit = false
			s.packetsInTransit--
		}
		s.metrics.observeDelay(sample)
		s.probe.BytesAcked(len(seg.payload))
		s.log.WithField("seq", seg.seqId).Debug("removed segment")
	}

	s.ctrl.OnAck(s, id, removed, sample)
}

// sweepHead evaluates the retransmission timeout lazily, against the head
// segment only
func (s *Sender) sweepHead() {
	head := s.wnd.Head()
	if head == nil || !head.sent() {
		return
	}
	if s.clock.Now().Sub(head.sentAt) >= s.timeout {
		s.log.WithFields(logrus.Fields{"seq": head.seqId, "timeout": s.timeout}).Debug("head segment timed out")
		s.ctrl.OnHeadTimeout(s, head)
	}
}

// rearm re-arms the whole window for retransmission: every in-transit flag is
// cleared and the in-transit count drops to zero
func (s *Sender) rearm() {
	s.wnd.ResetInTransit()
	s.packetsInTransit = 0
}

// finish stamps the end of the transfer
func (s *Sender) finish() {
	s.state = StateComplete
	s.metrics.finish(s.clock.Now())
	s.log.Info("transfer complete")
}

// drainQueuedAcks empties the socket of acknowledgements that were queued
// before a fast retransmit, polling briefly until the socket runs dry
func (s *Sender) drainQueuedAcks(window time.Duration) {
	for {
		if err := s.conn.SetReadDeadline(s.clock.Now().Add(window)); err != nil {
			return
		}
		if _, _, err := s.conn.ReadFrom(s.rbuf[:]); err != nil {
			return
		}
	}
}

// readDatagram performs one bounded receive. timedOut is true when the
// deadline expired before anything arrived
func (s *Sender) readDatagram() (raw []byte, timedOut bool, err error) {
	if err := s.conn.SetReadDeadline(s.clock.Now().Add(s.recvTimeout)); err != nil {
		return nil, false, errors.Wrap(err, "set receive deadline")
	}

	n, _, err := s.conn.ReadFrom(s.rbuf[:])
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, true, nil
		}
		return nil, false, errors.Wrap(err, "receive datagram")
	}

	return s.rbuf[:n], false, nil
}

// writeSegment emits one data segment
func (s *Sender) writeSegment(seg *Segment) error {
	b, err := header.Encode(&header.TransferFields{SeqId: seg.seqId, Payload: seg.payload})
	if err != nil {
		return err
	}
	if _, err := s.conn.WriteTo(b, s.peer); err != nil {
		return errors.Wrapf(err, "send segment %d", seg.seqId)
	}
	s.log.WithFields(logrus.Fields{"seq": seg.seqId, "len": len(seg.payload)}).Debug("sent segment")
	return nil
}

// writeFinAck emits the transfer-terminating trailer, tagged with the
// current next sequence number
func (s *Sender) writeFinAck() error {
	b, err := header.Encode(&header.TransferFields{SeqId: s.nextSeqId, Payload: header.FinAckPayload})
	if err != nil {
		return err
	}
	if _, err := s.conn.WriteTo(b, s.peer); err != nil {
		return errors.Wrap(err, "send finack")
	}
	s.log.WithField("seq", s.nextSeqId).Debug("sent finack")
	return nil
}

// writeEOFProbe emits the zero-payload end-of-file marker
func (s *Sender) writeEOFProbe() error {
	b, err := header.Encode(&header.TransferFields{SeqId: s.nextSeqId})
	if err != nil {
		return err
	}
	if _, err := s.conn.WriteTo(b, s.peer); err != nil {
		return errors.Wrap(err, "send eof probe")
	}
	s.log.WithField("seq", s.nextSeqId).Debug("sent eof probe")
	return nil
}

// State returns the current transfer state
func (s *Sender) State() State {
	return s.state
}
