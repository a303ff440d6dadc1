package render

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/swarmsim/internal/sim"
)

type RGB [3]uint8

func (c RGB) Hex() string { return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]) }

// HSLToRGB converts hue in degrees and saturation and lightness in [0, 1].
// Hue wraps; saturation and lightness are clamped.
func HSLToRGB(h, s, l float64) RGB {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	r, g, b := colorful.Hsl(h, clamp01(s), clamp01(l)).Clamped().RGB255()
	return RGB{r, g, b}
}

// ColorOf resolves a drawable's color in either mode.
func ColorOf(d sim.Drawable) RGB {
	if d.ColorMode == sim.ColorHSL {
		return HSLToRGB(d.Hue, d.Saturation, d.Lightness)
	}
	return RGB(d.Color)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
