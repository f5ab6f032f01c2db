package sender

import (
	"fmt"
	"time"
)

// Collector accumulates the transfer metrics. It is append-only while the
// transfer runs and is read back only once, after termination
type Collector struct {
	totalBytes uint64
	delays     []time.Duration

	startTime time.Time
	endTime   time.Time
}

func (c *Collector) start(t time.Time) {
	c.startTime = t
}

func (c *Collector) finish(t time.Time) {
	c.endTime = t
}

// addBytes records n wire bytes. It is called once per emission, so
// retransmissions count every time
func (c *Collector) addBytes(n int) {
	c.totalBytes += uint64(n)
}

// observeDelay appends one measured round-trip sample
func (c *Collector) observeDelay(d time.Duration) {
	c.delays = append(c.delays, d)
}

// Report computes the final metrics tuple of the transfer
func (c *Collector) Report() *Report {
	r := &Report{}

	if elapsed := c.endTime.Sub(c.startTime).Seconds(); elapsed > 0 {
		r.Throughput = float64(c.totalBytes) / elapsed
	}

	if len(c.delays) > 0 {
		var sum float64
		for _, d := range c.delays {
			sum += d.Seconds()
		}
		r.AverageDelay = sum / float64(len(c.delays))
	}

	if len(c.delays) > 1 {
		var sum float64
		for i := 1; i < len(c.delays); i++ {
			j := (c.delays[i] - c.delays[i-1]).Seconds()
			if j < 0 {
				j = -j
			}
			sum += j
		}
		r.AverageJitter = sum / float64(len(c.delays)-1)
	}

	if r.AverageJitter > 0 && r.AverageDelay > 0 {
		r.Metric = 0.2*(r.Throughput/2000) + 0.1/r.AverageJitter + 0.8/r.AverageDelay
	}

	return r
}

// Report is the final metrics tuple of a completed transfer
type Report struct {
	// Throughput is the transfer rate in wire bytes per second
	Throughput float64

	// AverageDelay is the mean per-segment round-trip delay in seconds
	AverageDelay float64

	// AverageJitter is the mean absolute difference between consecutive
	// delays, in seconds
	AverageJitter float64

	// Metric is the composite score of the transfer
	Metric float64
}

// String renders the report as the single comma-separated line the sender
// prints at termination
func (r *Report) String() string {
	return fmt.Sprintf("%.7f,%.7f,%.7f,%.7f", r.Throughput, r.AverageDelay, r.AverageJitter, r.Metric)
}
