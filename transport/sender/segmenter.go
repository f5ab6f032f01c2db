package sender

import (
	"bufio"
	"io"

	"github.com/YaoZengzeng/yusend/buffer"
	"github.com/YaoZengzeng/yusend/header"
)

// segmenter produces the payload chunks of the input byte stream, at most
// header.MessageSize bytes each. No partial chunk is ever held back: the
// final chunk of the stream may be short
type segmenter struct {
	r *bufio.Reader
}

func newSegmenter(r io.Reader) *segmenter {
	return &segmenter{
		r: bufio.NewReaderSize(r, header.PacketSize),
	}
}

// next returns the next payload chunk, or nil at end of stream
func (g *segmenter) next() (buffer.View, error) {
	v := buffer.NewView(header.MessageSize)
	n, err := io.ReadFull(g.r, v)
	switch err {
	case nil:
		return v, nil
	case io.ErrUnexpectedEOF:
		v.CapLength(n)
		return v, nil
	case io.EOF:
		return nil, nil
	default:
		return nil, err
	}
}
