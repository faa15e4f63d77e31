package identicon

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderIsDeterministic(t *testing.T) {
	a, err := Render("deadbeef")
	require.NoError(t, err)
	b, err := Render("deadbeef")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRenderDiffersBySeed(t *testing.T) {
	a, err := Render("deadbeef")
	require.NoError(t, err)
	b, err := Render("cafef00d")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestRenderProducesValidPNGOfExpectedSize(t *testing.T) {
	data, err := Render("abc123")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	bounds := img.Bounds()
	assert.Equal(t, gridSize*scale, bounds.Dx())
	assert.Equal(t, gridSize*scale, bounds.Dy())
}

func TestRenderEmptySeedStillProducesImage(t *testing.T) {
	data, err := Render("")
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
}
