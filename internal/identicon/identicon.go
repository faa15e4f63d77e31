// Package identicon renders a deterministic blockies-style PNG from a
// seed string, used by the /identicon.png route.
package identicon

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
)

const (
	gridSize = 8
	scale    = 4
)

// prng is the classic blockies xorshift128 generator, seeded by
// folding the seed string's bytes into four 32-bit lanes.
type prng struct {
	state [4]uint32
}

func newPRNG(seed string) *prng {
	p := &prng{}
	for i := 0; i < len(seed); i++ {
		lane := i % 4
		p.state[lane] = (p.state[lane] << 5) - p.state[lane] + uint32(seed[i])
	}
	return p
}

func (p *prng) next() float64 {
	t := p.state[0] ^ (p.state[0] << 11)
	p.state[0] = p.state[1]
	p.state[1] = p.state[2]
	p.state[2] = p.state[3]
	p.state[3] = p.state[3] ^ (p.state[3] >> 19) ^ t ^ (t >> 8)
	return float64(p.state[3]) / float64(uint32(1)<<31)
}

func (p *prng) hsl() color.NRGBA {
	h := p.next()
	s := p.next()*0.6 + 0.4
	l := (p.next() + p.next() + p.next() + p.next()) * 0.25
	return hslToRGBA(h, s, l)
}

func hslToRGBA(h, s, l float64) color.NRGBA {
	if s == 0 {
		v := uint8(l * 255)
		return color.NRGBA{R: v, G: v, B: v, A: 255}
	}
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	r := hueToRGB(p, q, h+1.0/3.0)
	g := hueToRGB(p, q, h)
	b := hueToRGB(p, q, h-1.0/3.0)
	return color.NRGBA{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255), A: 255}
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	default:
		return p
	}
}

// Render renders a scale*gridSize square PNG for seed and writes it to
// the returned buffer. The image is left-right symmetric: only the
// left half (plus center column on odd widths) of each row is sampled
// from the PRNG, then mirrored, matching the reference blockies
// layout algorithm.
func Render(seed string) ([]byte, error) {
	rng := newPRNG(seed)
	bg := rng.hsl()
	fg := rng.hsl()
	spot := rng.hsl()

	half := int(math.Ceil(gridSize / 2.0))
	grid := make([][]int, gridSize)
	for row := 0; row < gridSize; row++ {
		grid[row] = make([]int, gridSize)
		values := make([]int, half)
		for col := 0; col < half; col++ {
			values[col] = pickCell(rng.next())
		}
		for col := 0; col < gridSize; col++ {
			if col < half {
				grid[row][col] = values[col]
			} else {
				grid[row][col] = values[gridSize-1-col]
			}
		}
	}

	size := gridSize * scale
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for row := 0; row < gridSize; row++ {
		for col := 0; col < gridSize; col++ {
			c := cellColor(grid[row][col], bg, fg, spot)
			fillBlock(img, col*scale, row*scale, scale, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// pickCell maps a PRNG draw to background(0)/foreground(1)/spot(2),
// weighted the same way the reference blockies implementation does.
func pickCell(r float64) int {
	switch {
	case r < 0.5:
		return 0
	case r < 0.75:
		return 1
	default:
		return 2
	}
}

func cellColor(cell int, bg, fg, spot color.NRGBA) color.NRGBA {
	switch cell {
	case 1:
		return fg
	case 2:
		return spot
	default:
		return bg
	}
}

func fillBlock(img *image.NRGBA, x, y, size int, c color.NRGBA) {
	for dy := 0; dy < size; dy++ {
		for dx := 0; dx < size; dx++ {
			img.SetNRGBA(x+dx, y+dy, c)
		}
	}
}
