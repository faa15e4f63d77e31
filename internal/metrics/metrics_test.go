package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestConnectionAcceptedIncrementsCounter(t *testing.T) {
	before := testutil.ToFloat64(m.connections)
	ConnectionAccepted()
	assert.Equal(t, before+1, testutil.ToFloat64(m.connections))
}

func TestClientHelloCounters(t *testing.T) {
	beforeOK := testutil.ToFloat64(m.clientHellos)
	beforeFail := testutil.ToFloat64(m.helloFailures)

	ClientHelloCaptured()
	ClientHelloFailed()

	assert.Equal(t, beforeOK+1, testutil.ToFloat64(m.clientHellos))
	assert.Equal(t, beforeFail+1, testutil.ToFloat64(m.helloFailures))
}

func TestHTTP2Counters(t *testing.T) {
	beforeConns := testutil.ToFloat64(m.http2Connections)
	beforeFrames := testutil.ToFloat64(m.http2Frames)

	HTTP2Negotiated()
	FramesCaptured(3)

	assert.Equal(t, beforeConns+1, testutil.ToFloat64(m.http2Connections))
	assert.Equal(t, beforeFrames+3, testutil.ToFloat64(m.http2Frames))
}

func TestFramesCapturedIgnoresNonPositive(t *testing.T) {
	before := testutil.ToFloat64(m.http2Frames)
	FramesCaptured(0)
	FramesCaptured(-5)
	assert.Equal(t, before, testutil.ToFloat64(m.http2Frames))
}
