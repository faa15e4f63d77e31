// Package tlsparse decodes a single TLS ClientHello out of a raw byte
// buffer. It never holds a full TLS stack: only the handful of fields
// JA3/TS1 need are parsed, and only from the plaintext record that
// opens the connection.
package tlsparse

import (
	"encoding/binary"
	"unicode/utf8"
)

// Status reports what Parse learned about the buffer it was given.
type Status int

const (
	// Incomplete means the buffer does not yet hold a full ClientHello
	// record. Callers should retain the buffer and try again once more
	// bytes have arrived.
	Incomplete Status = iota
	// NotClientHello means the buffer holds something that is
	// definitely not a ClientHello (wrong content type, wrong
	// handshake type, or a structurally broken record). Callers should
	// stop trying to parse this connection.
	NotClientHello
	// OK means hello holds a fully decoded ClientHello.
	OK
)

// ExtensionKind names the decoded variant carried by an Extension, when
// the extension type is one TLSParse understands.
type ExtensionKind int

const (
	KindUnknown ExtensionKind = iota
	KindGREASE
	KindServerName
	KindStatusRequest
	KindSupportedGroups
	KindECPointFormats
	KindSignatureAlgorithms
	KindALPN
	KindPadding
	KindEncryptThenMac
)

// Well-known extension type codes used to recognize variants below.
const (
	ExtServerName          uint16 = 0
	ExtStatusRequest       uint16 = 5
	ExtSupportedGroups     uint16 = 10
	ExtECPointFormats      uint16 = 11
	ExtSignatureAlgorithms uint16 = 13
	ExtALPN                uint16 = 16
	ExtPadding             uint16 = 21
	ExtEncryptThenMac      uint16 = 22
)

// Extension is one entry of the ClientHello extensions list, in wire
// order, carrying both the raw payload and a decoded variant when the
// type is recognized.
type Extension struct {
	Type uint16
	Data []byte
	Kind ExtensionKind

	ServerName          string
	StatusRequestType   uint8
	SupportedGroups     []uint16
	ECPointFormats      []uint8
	SignatureAlgorithms []uint16
	ALPNProtocols       []string
}

// ClientHello is the write-once snapshot captured from the first TLS
// record of a connection: once parsed it is immutable for the rest of
// the connection's life.
type ClientHello struct {
	RecordVersion    uint16
	HandshakeVersion uint16
	SessionIDLength  int
	CipherSuites     []uint16
	CompressMethods  []uint8
	Extensions       []Extension
}

// IsGREASE reports whether v follows the GREASE pattern x_xA_xA
// (v&0x0f0f == 0x0a0a), used by TLS clients to exercise extensibility.
func IsGREASE(v uint16) bool {
	return v&0x0f0f == 0x0a0a
}

// Parse attempts to decode a ClientHello out of buf, which must hold a
// TLS record starting at offset 0. It never consumes or mutates buf;
// callers decide what to do with the buffer based on the returned
// Status.
func Parse(buf []byte) (*ClientHello, Status) {
	// TLS record header: content type (1), version (2), length (2).
	if len(buf) < 5 {
		return nil, Incomplete
	}
	contentType := buf[0]
	if contentType != 22 { // handshake
		return nil, NotClientHello
	}
	recordVersion := binary.BigEndian.Uint16(buf[1:3])
	recordLen := int(binary.BigEndian.Uint16(buf[3:5]))

	if len(buf) < 5+recordLen {
		return nil, Incomplete
	}
	handshake := buf[5 : 5+recordLen]

	// Handshake header: msg type (1), length (3).
	if len(handshake) < 4 {
		return nil, NotClientHello
	}
	if handshake[0] != 1 { // ClientHello
		return nil, NotClientHello
	}
	hsLen := int(handshake[1])<<16 | int(handshake[2])<<8 | int(handshake[3])
	if len(handshake) < 4+hsLen {
		return nil, Incomplete
	}
	body := handshake[4 : 4+hsLen]

	hello, ok := parseBody(body)
	if !ok {
		return nil, NotClientHello
	}
	hello.RecordVersion = recordVersion
	return hello, OK
}

func parseBody(body []byte) (*ClientHello, bool) {
	pos := 0
	if pos+2 > len(body) {
		return nil, false
	}
	hello := &ClientHello{
		HandshakeVersion: binary.BigEndian.Uint16(body[pos : pos+2]),
	}
	pos += 2

	// Client random: 32 bytes, not part of the snapshot.
	if pos+32 > len(body) {
		return nil, false
	}
	pos += 32

	if pos+1 > len(body) {
		return nil, false
	}
	sessionIDLen := int(body[pos])
	pos++
	if pos+sessionIDLen > len(body) {
		return nil, false
	}
	hello.SessionIDLength = sessionIDLen
	pos += sessionIDLen

	if pos+2 > len(body) {
		return nil, false
	}
	cipherLen := int(binary.BigEndian.Uint16(body[pos : pos+2]))
	pos += 2
	if pos+cipherLen > len(body) || cipherLen%2 != 0 {
		return nil, false
	}
	for i := 0; i < cipherLen; i += 2 {
		hello.CipherSuites = append(hello.CipherSuites, binary.BigEndian.Uint16(body[pos+i:pos+i+2]))
	}
	pos += cipherLen

	if pos+1 > len(body) {
		return nil, false
	}
	compLen := int(body[pos])
	pos++
	if pos+compLen > len(body) {
		return nil, false
	}
	hello.CompressMethods = append(hello.CompressMethods, body[pos:pos+compLen]...)
	pos += compLen

	// Extensions are optional: a ClientHello with no trailing bytes is
	// still valid.
	if pos == len(body) {
		return hello, true
	}
	if pos+2 > len(body) {
		return nil, false
	}
	extTotalLen := int(binary.BigEndian.Uint16(body[pos : pos+2]))
	pos += 2
	extEnd := pos + extTotalLen
	if extEnd > len(body) {
		return nil, false
	}

	for pos < extEnd {
		if pos+4 > extEnd {
			return nil, false
		}
		extType := binary.BigEndian.Uint16(body[pos : pos+2])
		extLen := int(binary.BigEndian.Uint16(body[pos+2 : pos+4]))
		pos += 4
		if pos+extLen > extEnd {
			return nil, false
		}
		data := body[pos : pos+extLen]
		hello.Extensions = append(hello.Extensions, decodeExtension(extType, data))
		pos += extLen
	}

	return hello, true
}

func decodeExtension(extType uint16, data []byte) Extension {
	ext := Extension{Type: extType, Data: data}

	if IsGREASE(extType) {
		ext.Kind = KindGREASE
		return ext
	}

	switch extType {
	case ExtServerName:
		ext.Kind = KindServerName
		if len(data) >= 5 {
			nameLen := int(binary.BigEndian.Uint16(data[3:5]))
			if 5+nameLen <= len(data) {
				ext.ServerName = string(data[5 : 5+nameLen])
			}
		}
	case ExtStatusRequest:
		ext.Kind = KindStatusRequest
		if len(data) >= 1 {
			ext.StatusRequestType = data[0]
		}
	case ExtSupportedGroups:
		ext.Kind = KindSupportedGroups
		if len(data) >= 2 {
			listLen := int(binary.BigEndian.Uint16(data[0:2]))
			for i := 2; i+1 < len(data) && i < 2+listLen; i += 2 {
				ext.SupportedGroups = append(ext.SupportedGroups, binary.BigEndian.Uint16(data[i:i+2]))
			}
		}
	case ExtECPointFormats:
		ext.Kind = KindECPointFormats
		if len(data) >= 1 {
			listLen := int(data[0])
			for i := 1; i < len(data) && i < 1+listLen; i++ {
				ext.ECPointFormats = append(ext.ECPointFormats, data[i])
			}
		}
	case ExtSignatureAlgorithms:
		ext.Kind = KindSignatureAlgorithms
		if len(data) >= 2 {
			listLen := int(binary.BigEndian.Uint16(data[0:2]))
			for i := 2; i+1 < len(data) && i < 2+listLen; i += 2 {
				ext.SignatureAlgorithms = append(ext.SignatureAlgorithms, binary.BigEndian.Uint16(data[i:i+2]))
			}
		}
	case ExtALPN:
		ext.Kind = KindALPN
		if len(data) >= 2 {
			listLen := int(binary.BigEndian.Uint16(data[0:2]))
			i := 2
			for i < len(data) && i < 2+listLen {
				protoLen := int(data[i])
				i++
				if i+protoLen > len(data) {
					break
				}
				name := data[i : i+protoLen]
				if utf8.Valid(name) {
					ext.ALPNProtocols = append(ext.ALPNProtocols, string(name))
				}
				i += protoLen
			}
		}
	case ExtPadding:
		ext.Kind = KindPadding
	case ExtEncryptThenMac:
		ext.Kind = KindEncryptThenMac
	default:
		ext.Kind = KindUnknown
	}

	return ext
}
