// Package checker provides helper functions to check networking packets
// captured by transfer tests
package checker

import (
	"bytes"
	"testing"

	"github.com/YaoZengzeng/yusend/header"
	"github.com/YaoZengzeng/yusend/seqnum"
)

// TransferChecker is a function to check a field of a transfer datagram
type TransferChecker func(*testing.T, header.Transfer)

// Datagram checks that the raw bytes form a well sized transfer datagram and
// then runs the provided checkers against it
func Datagram(t *testing.T, b []byte, checkers ...TransferChecker) {
	t.Helper()

	if len(b) < header.SeqIdSize {
		t.Fatalf("datagram too short: got %d bytes, want >= %d", len(b), header.SeqIdSize)
	}
	if len(b) > header.PacketSize {
		t.Fatalf("datagram too long: got %d bytes, want <= %d", len(b), header.PacketSize)
	}

	for _, f := range checkers {
		f(t, header.Transfer(b))
	}
}

// SeqId creates a checker that checks the sequence number field
func SeqId(v seqnum.Value) TransferChecker {
	return func(t *testing.T, b header.Transfer) {
		t.Helper()

		if got := b.SeqId(); got != v {
			t.Fatalf("unexpected seq id: got %d, want %d", got, v)
		}
	}
}

// PayloadLen creates a checker that checks the payload length
func PayloadLen(n int) TransferChecker {
	return func(t *testing.T, b header.Transfer) {
		t.Helper()

		if got := len(b.Payload()); got != n {
			t.Fatalf("unexpected payload length: got %d, want %d", got, n)
		}
	}
}

// Payload creates a checker that checks the payload bytes
func Payload(p []byte) TransferChecker {
	return func(t *testing.T, b header.Transfer) {
		t.Helper()

		if !bytes.Equal(b.Payload(), p) {
			t.Fatalf("unexpected payload: got %x, want %x", b.Payload(), p)
		}
	}
}

// FinAck creates a checker that checks for the transfer-terminating trailer
func FinAck() TransferChecker {
	return func(t *testing.T, b header.Transfer) {
		t.Helper()

		if !b.IsFinAck() {
			t.Fatalf("datagram is not a FINACK: payload %q", b.Payload())
		}
	}
}

// EOFProbe creates a checker that checks for an empty-payload end-of-file
// probe
func EOFProbe() TransferChecker {
	return func(t *testing.T, b header.Transfer) {
		t.Helper()

		if len(b.Payload()) != 0 {
			t.Fatalf("datagram is not an EOF probe: %d payload bytes", len(b.Payload()))
		}
	}
}
