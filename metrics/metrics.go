package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var instance *metrics

func init() {
	instance = newMetrics()
}

func M() *metrics {
	return instance
}

type metrics struct {
	Connections   *prometheus.CounterVec
	MailFrom      *prometheus.CounterVec
	MailTo        *prometheus.CounterVec
	ParsingErrors *prometheus.CounterVec
	InsertErrors  prometheus.Counter
	Forwarded     *prometheus.CounterVec
	ForwardErrors *prometheus.CounterVec
	MessageSize   prometheus.Histogram
	CollectorSize prometheus.Gauge
	Registry      *prometheus.Registry
}

func newMetrics() *metrics {
	m := new(metrics)

	m.Connections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailsink_connections_total",
			Help: "Number of client connections",
		},
		[]string{"client_addr", "service"},
	)

	m.MailFrom = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailsink_mail_from",
			Help: "Number of received emails by sender",
		},
		[]string{"from"},
	)

	m.MailTo = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailsink_mail_to",
			Help: "Number of received emails by recipient",
		},
		[]string{"to"},
	)

	m.ParsingErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailsink_parsing_errors_total",
			Help: "Number of MIME parsing failures",
		},
		[]string{"family"},
	)

	m.InsertErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mailsink_insert_errors_total",
			Help: "Number of failed message inserts",
		},
	)

	m.Forwarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailsink_forwarded_total",
			Help: "Number of forward attempts by destination",
		},
		[]string{"rcpt"},
	)

	m.ForwardErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailsink_forward_errors_total",
			Help: "Number of failed forward attempts by destination",
		},
		[]string{"rcpt"},
	)

	m.MessageSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mailsink_message_size_bytes",
			Help:    "Size of received messages",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		},
	)

	m.CollectorSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mailsink_collector_size",
			Help: "The number of messages currently queued in the collector",
		},
	)

	m.Registry = prometheus.NewRegistry()
	m.Registry.MustRegister(
		m.Connections,
		m.MailFrom,
		m.MailTo,
		m.ParsingErrors,
		m.InsertErrors,
		m.Forwarded,
		m.ForwardErrors,
		m.MessageSize,
		m.CollectorSize,
	)
	return m
}
