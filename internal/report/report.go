// Package report aggregates the fingerprint computers into the single
// value the external HTTP handler serializes. It owns no references
// back to the sniffers: Build takes a snapshot and a cloned frame log
// and returns a self-contained value.
package report

import (
	"github.com/picohz/fingerprintd/internal/akamai"
	"github.com/picohz/fingerprintd/internal/h2parse"
	"github.com/picohz/fingerprintd/internal/ja3"
	"github.com/picohz/fingerprintd/internal/tlsparse"
	"github.com/picohz/fingerprintd/internal/ts1"
)

// TlsReport holds every fingerprint computed from a ClientHello.
type TlsReport struct {
	JA3        ja3.JA3 `json:"ja3"`
	JA3SortExt ja3.JA3 `json:"ja3_sort_ext"`
	TS1        ts1.TS1 `json:"ts1"`
}

// Http2Report holds every fingerprint computed from a frame log.
type Http2Report struct {
	Akamai akamai.Akamai `json:"akamai"`
	TS1    ts1.TS1       `json:"ts1"`
}

// Report is the value returned to the external HTTP handler. Either
// field may be nil when the corresponding side was never captured.
type Report struct {
	TLS   *TlsReport   `json:"tls"`
	HTTP2 *Http2Report `json:"http2"`
}

// Build synthesizes a Report from a ClientHello snapshot (nil if the
// connection never produced one) and a frame log (nil or empty if the
// connection never negotiated HTTP/2).
func Build(hello *tlsparse.ClientHello, frames []h2parse.Frame) Report {
	var rep Report

	if hello != nil {
		rep.TLS = &TlsReport{
			JA3:        ja3.New(hello, false),
			JA3SortExt: ja3.New(hello, true),
			TS1:        ts1.TLS(hello),
		}
	}

	if len(frames) > 0 {
		rep.HTTP2 = &Http2Report{
			Akamai: akamai.New(frames),
			TS1:    ts1.HTTP2(frames),
		}
	}

	return rep
}
