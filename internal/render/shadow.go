// Package render holds renderer collaborators that consume the per-frame
// drawable snapshot.
package render

import (
	"strconv"
	"strings"

	"github.com/san-kum/swarmsim/internal/sim"
)

var _ sim.Renderer = (*ShadowRenderer)(nil)

// ShadowRenderer turns each world layer into a CSS box-shadow list. One
// shadow is emitted per drawable, offset by the world's camera and scaled
// by its resolution.
type ShadowRenderer struct {
	Modes []sim.ColorMode

	frame   int
	shadows map[string]string
}

// NewShadowRenderer supports the given modes, or every mode when none
// are named.
func NewShadowRenderer(modes ...sim.ColorMode) *ShadowRenderer {
	if len(modes) == 0 {
		modes = []sim.ColorMode{sim.ColorRGB, sim.ColorHSL}
	}
	return &ShadowRenderer{Modes: modes, shadows: make(map[string]string)}
}

func (r *ShadowRenderer) Supports(mode sim.ColorMode) bool {
	for _, m := range r.Modes {
		if m == mode {
			return true
		}
	}
	return false
}

func (r *ShadowRenderer) Render(snap sim.Snapshot) error {
	r.frame = snap.Frame
	for _, layer := range snap.Layers {
		r.shadows[layer.World.Name] = Shadows(layer)
	}
	return nil
}

// Shadow returns the last list rendered for the named world.
func (r *ShadowRenderer) Shadow(world string) string { return r.shadows[world] }
func (r *ShadowRenderer) Frame() int                 { return r.frame }

// Shadows formats one layer. The list is comma separated in draw order.
func Shadows(layer sim.Layer) string {
	res := 1.0
	var camX, camY float64
	if layer.World != nil {
		res = layer.World.Resolution
		camX, camY = layer.World.Camera.X, layer.World.Camera.Y
	}

	var b strings.Builder
	for i, d := range layer.Items {
		if i > 0 {
			b.WriteString(", ")
		}
		px(&b, (d.Location.X+camX)*res)
		b.WriteByte(' ')
		px(&b, (d.Location.Y+camY)*res)
		b.WriteByte(' ')
		px(&b, d.Blur*res)
		b.WriteByte(' ')
		px(&b, d.Scale*res/2)
		b.WriteByte(' ')
		color(&b, d)
	}
	return b.String()
}

func px(b *strings.Builder, v float64) {
	b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	b.WriteString("px")
}

func color(b *strings.Builder, d sim.Drawable) {
	alpha := strconv.FormatFloat(clamp01(d.Opacity), 'f', -1, 64)
	if d.ColorMode == sim.ColorHSL {
		b.WriteString("hsla(")
		b.WriteString(strconv.FormatFloat(d.Hue, 'f', -1, 64))
		b.WriteString(", ")
		b.WriteString(strconv.FormatFloat(d.Saturation*100, 'f', -1, 64))
		b.WriteString("%, ")
		b.WriteString(strconv.FormatFloat(d.Lightness*100, 'f', -1, 64))
		b.WriteString("%, ")
		b.WriteString(alpha)
		b.WriteByte(')')
		return
	}
	b.WriteString("rgba(")
	for _, c := range d.Color {
		b.WriteString(strconv.Itoa(int(c)))
		b.WriteString(", ")
	}
	b.WriteString(alpha)
	b.WriteByte(')')
}
