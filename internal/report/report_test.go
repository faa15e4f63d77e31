package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picohz/fingerprintd/internal/h2parse"
	"github.com/picohz/fingerprintd/internal/tlsparse"
)

func TestBuildWithNeitherSideCaptured(t *testing.T) {
	rep := Build(nil, nil)
	assert.Nil(t, rep.TLS)
	assert.Nil(t, rep.HTTP2)
}

func TestBuildWithOnlyClientHello(t *testing.T) {
	hello := &tlsparse.ClientHello{
		HandshakeVersion: 771,
		CipherSuites:     []uint16{4865, 4866},
	}
	rep := Build(hello, nil)
	require.NotNil(t, rep.TLS)
	assert.Nil(t, rep.HTTP2)
	assert.Equal(t, "771,4865-4866,,,", rep.TLS.JA3.Str)
}

func TestBuildWithOnlyFrameLog(t *testing.T) {
	frames := []h2parse.Frame{&h2parse.WindowUpdate{WindowSizeIncrement: 100}}
	rep := Build(nil, frames)
	assert.Nil(t, rep.TLS)
	require.NotNil(t, rep.HTTP2)
	assert.Equal(t, "|100|0", rep.HTTP2.Akamai.Str)
}

func TestReportJSONShapeMatchesWireContract(t *testing.T) {
	hello := &tlsparse.ClientHello{HandshakeVersion: 771, CipherSuites: []uint16{4865}}
	frames := []h2parse.Frame{&h2parse.WindowUpdate{WindowSizeIncrement: 42}}
	rep := Build(hello, frames)

	b, err := json.Marshal(rep)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))

	tls, ok := decoded["tls"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, tls, "ja3")
	assert.Contains(t, tls, "ja3_sort_ext")
	assert.Contains(t, tls, "ts1")

	http2, ok := decoded["http2"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, http2, "akamai")
	assert.Contains(t, http2, "ts1")
}

func TestReportJSONNullsAbsentSides(t *testing.T) {
	b, err := json.Marshal(Build(nil, nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"tls":null,"http2":null}`, string(b))
}
