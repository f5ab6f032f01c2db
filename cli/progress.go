package cli

import (
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/YaoZengzeng/yusend/seqnum"
)

// progressProbe draws acknowledged bytes as a progress bar on stderr
type progressProbe struct {
	bar *progressbar.ProgressBar
}

func newProgressProbe(total int64) *progressProbe {
	return &progressProbe{
		bar: progressbar.NewOptions64(total,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetDescription("acked"),
		),
	}
}

func (p *progressProbe) PacketSent(seq seqnum.Value, size int, retransmit bool) {}

func (p *progressProbe) AckReceived(ack seqnum.Value, duplicate bool) {}

func (p *progressProbe) BytesAcked(n int) {
	_ = p.bar.Add(n)
}

func (p *progressProbe) WindowChanged(cwnd float64) {}
