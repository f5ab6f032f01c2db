package sender

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorReport(t *testing.T) {
	var c Collector

	start := time.Unix(100, 0)
	c.start(start)
	c.addBytes(1024)
	c.addBytes(1024)
	c.addBytes(1024)
	c.observeDelay(10 * time.Millisecond)
	c.observeDelay(20 * time.Millisecond)
	c.observeDelay(40 * time.Millisecond)
	c.finish(start.Add(1 * time.Second))

	r := c.Report()

	require.InDelta(t, 3072, r.Throughput, 1e-9)
	require.InDelta(t, (0.010+0.020+0.040)/3, r.AverageDelay, 1e-9)
	require.InDelta(t, (0.010+0.020)/2, r.AverageJitter, 1e-9)

	want := 0.2*(r.Throughput/2000) + 0.1/r.AverageJitter + 0.8/r.AverageDelay
	require.InDelta(t, want, r.Metric, 1e-9)
}

func TestCollectorReportDegenerate(t *testing.T) {
	var c Collector

	// A single delay yields no jitter, which zeroes the composite metric
	c.start(time.Unix(100, 0))
	c.addBytes(1024)
	c.observeDelay(10 * time.Millisecond)
	c.finish(time.Unix(101, 0))

	r := c.Report()
	assert.Zero(t, r.AverageJitter)
	assert.Zero(t, r.Metric)
	assert.Positive(t, r.Throughput)

	// No elapsed time yields no throughput
	var z Collector
	z.start(time.Unix(100, 0))
	z.finish(time.Unix(100, 0))
	assert.Zero(t, z.Report().Throughput)
}

func TestReportString(t *testing.T) {
	r := &Report{
		Throughput:   1234.5,
		AverageDelay: 0.01,
	}
	assert.Equal(t, "1234.5000000,0.0100000,0.0000000,0.0000000", r.String())
}
