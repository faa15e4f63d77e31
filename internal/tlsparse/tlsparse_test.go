package tlsparse

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildClientHello assembles a minimal but well-formed ClientHello
// record for use as test fixture data.
func buildClientHello(t *testing.T, ciphers []uint16, extensions [][2]any) []byte {
	t.Helper()

	var body []byte
	body = append(body, 0x03, 0x03) // handshake version TLS1.2
	body = append(body, make([]byte, 32)...)
	body = append(body, 0x00) // session id len

	cipherBytes := make([]byte, 0, len(ciphers)*2)
	for _, c := range ciphers {
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, c)
		cipherBytes = append(cipherBytes, b...)
	}
	cipherLen := make([]byte, 2)
	binary.BigEndian.PutUint16(cipherLen, uint16(len(cipherBytes)))
	body = append(body, cipherLen...)
	body = append(body, cipherBytes...)

	body = append(body, 0x01, 0x00) // 1 compression method, null

	var extBytes []byte
	for _, e := range extensions {
		typ := e[0].(uint16)
		data := e[1].([]byte)
		tb := make([]byte, 2)
		binary.BigEndian.PutUint16(tb, typ)
		lb := make([]byte, 2)
		binary.BigEndian.PutUint16(lb, uint16(len(data)))
		extBytes = append(extBytes, tb...)
		extBytes = append(extBytes, lb...)
		extBytes = append(extBytes, data...)
	}
	extLen := make([]byte, 2)
	binary.BigEndian.PutUint16(extLen, uint16(len(extBytes)))
	body = append(body, extLen...)
	body = append(body, extBytes...)

	handshake := []byte{1, byte(len(body) >> 16), byte(len(body) >> 8), byte(len(body))}
	handshake = append(handshake, body...)

	record := []byte{22, 0x03, 0x01}
	recLen := make([]byte, 2)
	binary.BigEndian.PutUint16(recLen, uint16(len(handshake)))
	record = append(record, recLen...)
	record = append(record, handshake...)

	return record
}

func TestParseShortBufferIsIncomplete(t *testing.T) {
	_, status := Parse([]byte{22, 3})
	assert.Equal(t, Incomplete, status)
}

func TestParseRejectsNonHandshakeRecord(t *testing.T) {
	_, status := Parse([]byte{23, 3, 3, 0, 5, 1, 2, 3, 4, 5})
	assert.Equal(t, NotClientHello, status)
}

func TestParseRejectsNonClientHelloHandshake(t *testing.T) {
	buf := []byte{22, 3, 1, 0, 4, 2 /* ServerHello */, 0, 0, 0}
	_, status := Parse(buf)
	assert.Equal(t, NotClientHello, status)
}

func TestParseBasicClientHello(t *testing.T) {
	buf := buildClientHello(t, []uint16{0x1301, 0x1302}, [][2]any{
		{ExtSupportedGroups, []byte{0, 2, 0, 0x1d}},
		{ExtECPointFormats, []byte{1, 0}},
	})

	hello, status := Parse(buf)
	require.Equal(t, OK, status)
	require.NotNil(t, hello)

	assert.Equal(t, uint16(0x0301), hello.RecordVersion)
	assert.Equal(t, uint16(0x0303), hello.HandshakeVersion)
	assert.Equal(t, 0, hello.SessionIDLength)
	assert.Equal(t, []uint16{0x1301, 0x1302}, hello.CipherSuites)
	require.Len(t, hello.Extensions, 2)
	assert.Equal(t, KindSupportedGroups, hello.Extensions[0].Kind)
	assert.Equal(t, []uint16{0x001d}, hello.Extensions[0].SupportedGroups)
	assert.Equal(t, KindECPointFormats, hello.Extensions[1].Kind)
	assert.Equal(t, []uint8{0}, hello.Extensions[1].ECPointFormats)
}

func TestParseIncompleteExtensions(t *testing.T) {
	buf := buildClientHello(t, []uint16{0x1301}, nil)
	// Truncate mid-extensions-length.
	buf = buf[:len(buf)-1]
	_, status := Parse(buf)
	assert.Equal(t, Incomplete, status)
}

func TestGREASEExtensionIsTagged(t *testing.T) {
	buf := buildClientHello(t, []uint16{0x0a0a, 0x1301}, [][2]any{
		{uint16(0x2a2a), []byte{0x00}},
	})
	hello, status := Parse(buf)
	require.Equal(t, OK, status)
	require.Len(t, hello.Extensions, 1)
	assert.Equal(t, KindGREASE, hello.Extensions[0].Kind)
	assert.True(t, IsGREASE(hello.CipherSuites[0]))
}

func TestALPNDropsInvalidUTF8(t *testing.T) {
	// ALPN list: len-prefixed entries, one valid "h2", one invalid byte sequence.
	data := []byte{0, 6, 2, 'h', '2', 2, 0xff, 0xfe}
	buf := buildClientHello(t, []uint16{0x1301}, [][2]any{
		{ExtALPN, data},
	})
	hello, status := Parse(buf)
	require.Equal(t, OK, status)
	require.Len(t, hello.Extensions, 1)
	assert.Equal(t, []string{"h2"}, hello.Extensions[0].ALPNProtocols)
}
