package server

import (
	"context"
	"net/http"

	"github.com/picohz/fingerprintd/internal/h2parse"
	"github.com/picohz/fingerprintd/internal/sniff"
	"github.com/picohz/fingerprintd/internal/tlsparse"
)

// Session is the per-connection state the HTTP handler needs to build
// a Report. It lives for exactly one connection and is never shared
// across connections.
type Session struct {
	ID  string
	tls *sniff.TLSSniffer
	h2  *sniff.H2Sniffer
}

// ClientHello returns the captured ClientHello, or nil if none was
// captured on this connection.
func (s *Session) ClientHello() *tlsparse.ClientHello {
	if s == nil || s.tls == nil {
		return nil
	}
	return s.tls.ClientHello()
}

// Frames returns a snapshot of the frame log captured so far.
func (s *Session) Frames() []h2parse.Frame {
	if s == nil || s.h2 == nil {
		return nil
	}
	return s.h2.Frames()
}

type sessionContextKey struct{}

func withSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// SessionFromContext recovers the Session a request arrived on. It is
// always present for requests routed through Server.
func SessionFromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionContextKey{}).(*Session)
	return s
}

// SessionFromRequest is a convenience wrapper over SessionFromContext.
func SessionFromRequest(r *http.Request) *Session {
	return SessionFromContext(r.Context())
}

func withSessionHandler(h http.Handler, s *Session) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(w, r.WithContext(withSession(r.Context(), s)))
	})
}
