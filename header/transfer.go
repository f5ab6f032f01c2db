// Package header provides the encoding and decoding of transfer datagrams.
// Every datagram on the wire is a 4-byte big-endian signed sequence number
// followed by at most 1020 payload bytes
package header

import (
	"bytes"
	"encoding/binary"

	"github.com/YaoZengzeng/yusend/seqnum"
	"github.com/YaoZengzeng/yusend/types"
)

const (
	// PacketSize is the fixed size, in bytes, of a full data datagram
	PacketSize = 1024

	// SeqIdSize is the size, in bytes, of the sequence number header
	SeqIdSize = 4

	// MessageSize is the maximum payload carried by a single datagram
	MessageSize = PacketSize - SeqIdSize
)

// FinAckPayload is the literal trailer carried by the datagram that
// terminates a transfer
var FinAckPayload = []byte("==FINACK==")

// finReply is the byte sequence the receiver includes in its reply to an
// end-of-file probe
var finReply = []byte("fin")

// TransferFields contains the fields of a transfer datagram. It is used to
// describe the fields of a datagram that needs to be encoded
type TransferFields struct {
	// SeqId is the cumulative byte offset at which the payload begins
	SeqId seqnum.Value

	// Payload is the segment payload; empty for an end-of-file probe
	Payload []byte
}

// Transfer represents a transfer datagram stored in a byte array
type Transfer []byte

// SeqId returns the sequence number field of the transfer datagram
func (b Transfer) SeqId() seqnum.Value {
	return seqnum.Value(int32(binary.BigEndian.Uint32(b)))
}

// SetSeqId sets the sequence number field of the transfer datagram
func (b Transfer) SetSeqId(v seqnum.Value) {
	binary.BigEndian.PutUint32(b, uint32(v))
}

// Payload returns the bytes following the sequence number header
func (b Transfer) Payload() []byte {
	return b[SeqIdSize:]
}

// IsFinAck returns true if the datagram carries the transfer-terminating
// trailer
func (b Transfer) IsFinAck() bool {
	return bytes.Equal(b.Payload(), FinAckPayload)
}

// Encode builds a transfer datagram from the given fields. It returns
// types.ErrPayloadTooLarge if the payload does not fit in a single datagram
func Encode(f *TransferFields) (Transfer, error) {
	if len(f.Payload) > MessageSize {
		return nil, types.ErrPayloadTooLarge
	}

	b := make(Transfer, SeqIdSize+len(f.Payload))
	b.SetSeqId(f.SeqId)
	copy(b.Payload(), f.Payload)

	return b, nil
}

// Ack represents an acknowledgement datagram stored in a byte array. Only
// the first four bytes are meaningful; trailing bytes are ignored
type Ack []byte

// Number returns the cumulative acknowledgement number: every byte with a
// sequence number below it has been received
func (b Ack) Number() seqnum.Value {
	return seqnum.Value(int32(binary.BigEndian.Uint32(b)))
}

// WellFormed returns true if the datagram is long enough to carry an
// acknowledgement number
func (b Ack) WellFormed() bool {
	return len(b) >= SeqIdSize
}

// ContainsFin reports whether the datagram is a receiver reply to an
// end-of-file probe
func ContainsFin(b []byte) bool {
	return bytes.Contains(b, finReply)
}
