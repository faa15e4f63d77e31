// Package metrics defines the prometheus counters exported at /metrics.
// Counters are incremented only by the accept-loop/server layer, never
// by the core packages, so no core operation can fail or slow down
// because of observability plumbing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "fingerprintd"
	subsystem = "server"
)

var m = struct {
	connections      prometheus.Counter
	clientHellos     prometheus.Counter
	helloFailures    prometheus.Counter
	http2Connections prometheus.Counter
	http2Frames      prometheus.Counter
}{}

func init() {
	m.connections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "connections_total",
		Help:      "Total TCP connections accepted.",
	})
	m.clientHellos = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "client_hellos_parsed_total",
		Help:      "Total ClientHello records successfully captured.",
	})
	m.helloFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "client_hellos_failed_total",
		Help:      "Total connections where the initial record was not a ClientHello.",
	})
	m.http2Connections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "http2_connections_total",
		Help:      "Total connections that negotiated HTTP/2 via ALPN.",
	})
	m.http2Frames = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "http2_frames_captured_total",
		Help:      "Total HTTP/2 control frames captured across all connections.",
	})
}

// ConnectionAccepted records one accepted TCP connection.
func ConnectionAccepted() { m.connections.Inc() }

// ClientHelloCaptured records one successfully captured ClientHello.
func ClientHelloCaptured() { m.clientHellos.Inc() }

// ClientHelloFailed records one connection whose first record never
// resolved to a ClientHello.
func ClientHelloFailed() { m.helloFailures.Inc() }

// HTTP2Negotiated records one connection that negotiated h2 via ALPN.
func HTTP2Negotiated() { m.http2Connections.Inc() }

// FramesCaptured adds n to the total frames captured.
func FramesCaptured(n int) {
	if n <= 0 {
		return
	}
	m.http2Frames.Add(float64(n))
}
