// Package exporter publishes live transfer metrics as Prometheus collectors.
// It observes a running transfer through the sender probe interface and can
// serve the standard /metrics endpoint for the duration of the run
package exporter

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/YaoZengzeng/yusend/seqnum"
)

// Exporter implements sender.Probe on top of a private Prometheus registry
type Exporter struct {
	registry *prometheus.Registry

	packetsSent   prometheus.Counter
	retransmits   prometheus.Counter
	bytesSent     prometheus.Counter
	acks          prometheus.Counter
	duplicateAcks prometheus.Counter
	bytesAcked    prometheus.Counter
	cwnd          prometheus.Gauge
}

// New creates an exporter whose series are labelled with the transfer id
func New(transferID string) *Exporter {
	labels := prometheus.Labels{"transfer": transferID}

	e := &Exporter{
		registry: prometheus.NewRegistry(),
		packetsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "yusend_packets_sent_total",
			Help:        "Data datagrams emitted, including retransmissions.",
			ConstLabels: labels,
		}),
		retransmits: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "yusend_retransmissions_total",
			Help:        "Data datagrams emitted more than once.",
			ConstLabels: labels,
		}),
		bytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "yusend_bytes_sent_total",
			Help:        "Wire bytes emitted, including headers and retransmissions.",
			ConstLabels: labels,
		}),
		acks: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "yusend_acks_received_total",
			Help:        "Acknowledgement datagrams received.",
			ConstLabels: labels,
		}),
		duplicateAcks: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "yusend_duplicate_acks_total",
			Help:        "Acknowledgements that repeated the previous value.",
			ConstLabels: labels,
		}),
		bytesAcked: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "yusend_bytes_acked_total",
			Help:        "Payload bytes acknowledged by the receiver.",
			ConstLabels: labels,
		}),
		cwnd: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "yusend_cwnd_segments",
			Help:        "Congestion window in segments.",
			ConstLabels: labels,
		}),
	}

	e.registry.MustRegister(
		e.packetsSent,
		e.retransmits,
		e.bytesSent,
		e.acks,
		e.duplicateAcks,
		e.bytesAcked,
		e.cwnd,
	)

	return e
}

// PacketSent implements sender.Probe.PacketSent
func (e *Exporter) PacketSent(seq seqnum.Value, size int, retransmit bool) {
	e.packetsSent.Inc()
	e.bytesSent.Add(float64(size))
	if retransmit {
		e.retransmits.Inc()
	}
}

// AckReceived implements sender.Probe.AckReceived
func (e *Exporter) AckReceived(ack seqnum.Value, duplicate bool) {
	e.acks.Inc()
	if duplicate {
		e.duplicateAcks.Inc()
	}
}

// BytesAcked implements sender.Probe.BytesAcked
func (e *Exporter) BytesAcked(n int) {
	e.bytesAcked.Add(float64(n))
}

// WindowChanged implements sender.Probe.WindowChanged
func (e *Exporter) WindowChanged(cwnd float64) {
	e.cwnd.Set(cwnd)
}

// Handler returns the /metrics handler for the exporter's registry
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}
