package sender

import (
	"bytes"
	"testing"

	"github.com/YaoZengzeng/yusend/header"
)

func TestSegmenterChunking(t *testing.T) {
	g := newSegmenter(bytes.NewReader(payload(2500)))

	for i, want := range []int{header.MessageSize, header.MessageSize, 460} {
		v, err := g.next()
		if err != nil {
			t.Fatalf("chunk %d: %v", i, err)
		}
		if len(v) != want {
			t.Fatalf("chunk %d length: got %d, want %d", i, len(v), want)
		}
	}

	// Exhausted stream signals end of file, repeatedly
	for i := 0; i < 2; i++ {
		v, err := g.next()
		if err != nil {
			t.Fatalf("eof read: %v", err)
		}
		if v != nil {
			t.Fatalf("chunk after eof: %d bytes", len(v))
		}
	}
}

func TestSegmenterEmptyInput(t *testing.T) {
	g := newSegmenter(bytes.NewReader(nil))

	v, err := g.next()
	if err != nil {
		t.Fatalf("read empty input: %v", err)
	}
	if v != nil {
		t.Fatalf("chunk from empty input: %d bytes", len(v))
	}
}
