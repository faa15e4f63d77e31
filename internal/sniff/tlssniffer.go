// Package sniff holds the two byte-stream adapters that sit between
// the raw transport and the TLS engine (TLSSniffer), and between the
// TLS engine and the HTTP engine (H2Sniffer). Both are transparent
// net.Conn wrappers: they forward every byte unchanged and only
// observe the newly filled slice of each Read to feed a parser.
package sniff

import (
	"net"
	"sync"
	"sync/atomic"

	"github.com/picohz/fingerprintd/internal/tlsparse"
)

// TLSSniffer wraps a raw net.Conn and captures the client's ClientHello
// as it flows past on its way into the TLS engine. Writes are forwarded
// verbatim and never inspected; the adapter never alters what the TLS
// engine sees.
type TLSSniffer struct {
	net.Conn

	mu   sync.Mutex
	buf  []byte
	done bool // true once parsing has reached a terminal state (I1)

	hello atomic.Pointer[tlsparse.ClientHello]
}

// NewTLSSniffer wraps inner, the connection accepted straight off the
// listener, before it is handed to the TLS engine.
func NewTLSSniffer(inner net.Conn) *TLSSniffer {
	return &TLSSniffer{Conn: inner}
}

// Read forwards to the wrapped connection and, until a ClientHello has
// been captured or ruled out, feeds the newly delivered bytes to
// TLSParse.
func (s *TLSSniffer) Read(b []byte) (int, error) {
	n, err := s.Conn.Read(b)
	if n > 0 {
		s.observe(b[:n])
	}
	return n, err
}

func (s *TLSSniffer) observe(data []byte) {
	if s.hello.Load() != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}

	s.buf = append(s.buf, data...)
	hello, status := tlsparse.Parse(s.buf)
	switch status {
	case tlsparse.OK:
		s.hello.Store(hello)
		s.done = true
		s.buf = nil
	case tlsparse.NotClientHello:
		s.done = true
		s.buf = nil
	case tlsparse.Incomplete:
		// Keep buffering; try again on the next Read.
	}
}

// ClientHello returns the captured snapshot, or nil if none has been
// captured yet (or the stream was never a ClientHello at all). The
// returned value is immutable once non-nil (I1) and safe to read from
// any goroutine without further synchronization.
func (s *TLSSniffer) ClientHello() *tlsparse.ClientHello {
	return s.hello.Load()
}
