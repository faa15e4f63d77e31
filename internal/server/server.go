// Package server runs the accept loop and composes the two sniffers
// around each connection: TLSSniffer wraps the raw transport,
// tls.Server terminates the handshake, H2Sniffer wraps the decrypted
// stream, and the negotiated ALPN protocol decides whether HTTP/2 or
// HTTP/1.1 drives the rest of the connection.
package server

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/http2"

	"github.com/picohz/fingerprintd/internal/metrics"
	"github.com/picohz/fingerprintd/internal/obs"
	"github.com/picohz/fingerprintd/internal/sniff"
)

const handshakeTimeout = 10 * time.Second

// Server accepts TLS connections on a listener and serves them with
// Handler, after attaching the sniffers that capture the ClientHello
// and HTTP/2 frame log.
type Server struct {
	Listener  net.Listener
	TLSConfig *tls.Config
	Handler   http.Handler
	Logger    *zap.Logger
}

// Serve runs the accept loop until the listener is closed or ctx is
// canceled. It never returns a nil error on a clean shutdown driven by
// ctx: callers that want a silent shutdown should check ctx.Err().
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = s.Listener.Close()
	}()

	for {
		conn, err := s.Listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		metrics.ConnectionAccepted()
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(raw net.Conn) {
	connLogger, connID := obs.ConnLogger(s.Logger)
	logger := connLogger.With(zap.String("remote_addr", raw.RemoteAddr().String()))

	tlsSniffer := sniff.NewTLSSniffer(raw)
	tlsConn := tls.Server(tlsSniffer, s.TLSConfig)

	hsCtx, cancel := context.WithTimeout(context.Background(), handshakeTimeout)
	err := tlsConn.HandshakeContext(hsCtx)
	cancel()
	if err != nil {
		logger.Debug("tls handshake failed", zap.Error(err))
		_ = tlsConn.Close()
		return
	}

	if hello := tlsSniffer.ClientHello(); hello != nil {
		metrics.ClientHelloCaptured()
	} else {
		metrics.ClientHelloFailed()
	}

	h2Sniffer := sniff.NewH2Sniffer(tlsConn)
	session := &Session{ID: connID, tls: tlsSniffer, h2: h2Sniffer}
	handler := withSessionHandler(s.Handler, session)

	negotiated := tlsConn.ConnectionState().NegotiatedProtocol
	logger.Debug("tls handshake complete", zap.String("alpn", negotiated))

	if negotiated == "h2" {
		metrics.HTTP2Negotiated()
		defer func() { _ = tlsConn.Close() }()
		h2srv := &http2.Server{}
		h2srv.ServeConn(h2Sniffer, &http2.ServeConnOpts{Handler: handler})
		metrics.FramesCaptured(len(h2Sniffer.Frames()))
		return
	}

	httpSrv := &http.Server{Handler: handler}
	_ = httpSrv.Serve(newSingleConnListener(h2Sniffer))
}
