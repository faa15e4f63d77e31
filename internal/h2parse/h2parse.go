// Package h2parse decodes the first few HTTP/2 control frames out of a
// byte buffer, one frame at a time, the way tlsparse decodes a single
// ClientHello: read-only, partial, and only as much of the frame grammar
// as the fingerprints need.
package h2parse

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/hpack"
)

// Preface is the HTTP/2 connection preface every client sends before
// its first frame.
var Preface = []byte("PRI * HTTP/2.0\r\n\r\nSM\r\n\r\n")

// Frame type codes, mirroring RFC 7540 §11.2.
const (
	TypeData         uint8 = 0x0
	TypeHeaders      uint8 = 0x1
	TypePriority     uint8 = 0x2
	TypeRSTStream    uint8 = 0x3
	TypeSettings     uint8 = 0x4
	TypePushPromise  uint8 = 0x5
	TypePing         uint8 = 0x6
	TypeGoAway       uint8 = 0x7
	TypeWindowUpdate uint8 = 0x8
	TypeContinuation uint8 = 0x9
)

// Frame is the sum type captured positionally in the frame log: one of
// *Headers, *Settings, *Priority, *WindowUpdate or *Unknown.
type Frame interface {
	frame()
}

// Headers carries the pseudo-header names decoded from a HEADERS
// frame's header block, in wire order.
type Headers struct {
	StreamID      uint32
	PseudoHeaders []string
}

// Setting is one (id, value) tuple inside a SETTINGS frame payload.
type Setting struct {
	ID    uint16
	Value uint32
}

// Settings carries the ordered settings tuples of a SETTINGS frame.
type Settings struct {
	StreamID uint32
	Settings []Setting
}

// Priority carries the stream-dependency fields of a PRIORITY frame.
type Priority struct {
	StreamID    uint32
	DepStreamID uint32
	Weight      uint8
	Exclusive   bool
}

// WindowUpdate carries the increment of a WINDOW_UPDATE frame.
type WindowUpdate struct {
	StreamID            uint32
	WindowSizeIncrement uint32
}

// Unknown retains the positional presence of a frame type H2Parse does
// not otherwise decode (DATA, RST_STREAM, PUSH_PROMISE, PING, GOAWAY,
// CONTINUATION, and any reserved/extension type).
type Unknown struct {
	FrameType uint8
}

func (*Headers) frame()      {}
func (*Settings) frame()     {}
func (*Priority) frame()     {}
func (*WindowUpdate) frame() {}
func (*Unknown) frame()      {}

// Parse decodes at most one frame from the head of buf. It returns the
// number of bytes consumed (0 if buf does not yet hold a complete frame)
// and the decoded frame, which is nil when the frame was structurally
// malformed or failed HPACK decoding — callers still advance past it
// using the returned consumed count, resynchronizing on the next frame
// boundary.
func Parse(buf []byte) (consumed int, frame Frame) {
	const headerLen = 9
	if len(buf) < headerLen {
		return 0, nil
	}
	length := int(buf[0])<<16 | int(buf[1])<<8 | int(buf[2])
	typ := buf[3]
	total := headerLen + length
	if len(buf) < total {
		return 0, nil
	}

	fr := http2.NewFramer(io.Discard, bytes.NewReader(buf[:total]))
	fr.SetMaxReadFrameSize(1 << 24)
	fr.ReadMetaHeaders = nil

	raw, err := fr.ReadFrame()
	if err != nil {
		return total, nil
	}

	switch f := raw.(type) {
	case *http2.HeadersFrame:
		headers, err := decodeHeaders(f)
		if err != nil {
			return total, nil
		}
		return total, headers
	case *http2.SettingsFrame:
		var settings []Setting
		_ = f.ForeachSetting(func(s http2.Setting) error {
			settings = append(settings, Setting{ID: uint16(s.ID), Value: s.Val})
			return nil
		})
		return total, &Settings{StreamID: f.Header().StreamID, Settings: settings}
	case *http2.PriorityFrame:
		return total, &Priority{
			StreamID:    f.Header().StreamID,
			DepStreamID: f.PriorityParam.StreamDep,
			Weight:      f.PriorityParam.Weight,
			Exclusive:   f.PriorityParam.Exclusive,
		}
	case *http2.WindowUpdateFrame:
		return total, &WindowUpdate{StreamID: f.Header().StreamID, WindowSizeIncrement: f.Increment}
	default:
		return total, &Unknown{FrameType: typ}
	}
}

func decodeHeaders(f *http2.HeadersFrame) (*Headers, error) {
	decoder := hpack.NewDecoder(4096, nil)
	fields, err := decoder.DecodeFull(f.HeaderBlockFragment())
	if err != nil {
		return nil, err
	}
	var pseudo []string
	for _, hf := range fields {
		if strings.HasPrefix(hf.Name, ":") {
			pseudo = append(pseudo, hf.Name)
		}
	}
	return &Headers{StreamID: f.Header().StreamID, PseudoHeaders: pseudo}, nil
}
