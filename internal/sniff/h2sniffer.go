package sniff

import (
	"bytes"
	"net"
	"sync"

	"github.com/picohz/fingerprintd/internal/h2parse"
)

// H2Sniffer wraps the decrypted stream (typically a *tls.Conn) and
// captures HTTP/2 control frames as they flow past on their way into
// the HTTP engine. Writes are forwarded verbatim.
type H2Sniffer struct {
	net.Conn

	mu             sync.Mutex
	buf            []byte
	prefaceChecked bool
	isHTTP2        bool
	frames         []h2parse.Frame
}

// NewH2Sniffer wraps inner, the already-handshaked connection about to
// be handed to the HTTP engine.
func NewH2Sniffer(inner net.Conn) *H2Sniffer {
	return &H2Sniffer{Conn: inner}
}

// Read forwards to the wrapped connection and, while this connection
// still looks like HTTP/2, feeds newly delivered bytes to H2Parse.
func (s *H2Sniffer) Read(b []byte) (int, error) {
	n, err := s.Conn.Read(b)
	if n > 0 {
		s.observe(b[:n])
	}
	return n, err
}

func (s *H2Sniffer) observe(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.prefaceChecked && !s.isHTTP2 {
		return // sticky: not HTTP/2, stop looking
	}

	s.buf = append(s.buf, data...)

	if !s.prefaceChecked {
		if len(s.buf) < len(h2parse.Preface) {
			return // need more bytes before we can judge the preface
		}
		s.prefaceChecked = true
		if !bytes.HasPrefix(s.buf, h2parse.Preface) {
			s.isHTTP2 = false
			s.buf = nil
			return
		}
		s.isHTTP2 = true
		s.buf = s.buf[len(h2parse.Preface):]
	}

	for {
		consumed, frame := h2parse.Parse(s.buf)
		if consumed == 0 {
			break
		}
		s.buf = s.buf[consumed:]
		if frame != nil {
			s.frames = append(s.frames, frame)
		}
	}
}

// Frames returns a point-in-time copy of the frame log captured so
// far. The lock backing it is only ever held for the duration of this
// clone or of an append in observe, never across I/O, so reading here
// cannot deadlock with in-flight reads.
func (s *H2Sniffer) Frames() []h2parse.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]h2parse.Frame, len(s.frames))
	copy(out, s.frames)
	return out
}

// IsHTTP2 reports whether the preface has been confirmed. It returns
// false both when the stream has been ruled out and when the verdict
// isn't in yet — callers that need to distinguish those cases should
// rely on Frames() being empty instead.
func (s *H2Sniffer) IsHTTP2() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isHTTP2
}
