package render

import (
	"math"

	"github.com/san-kum/swarmsim/internal/sim"
)

var _ sim.Renderer = (*CanvasRenderer)(nil)

// CanvasRenderer draws the first world layer onto a braille canvas,
// scaled to fit. It accepts every color mode.
type CanvasRenderer struct {
	Canvas *Canvas

	// Headings draws a short tick along each entity's angle.
	Headings bool

	frame int
}

func NewCanvasRenderer(cols, rows int) *CanvasRenderer {
	return &CanvasRenderer{Canvas: NewCanvas(cols, rows), Headings: true}
}

func (r *CanvasRenderer) Supports(sim.ColorMode) bool { return true }

// Resize replaces the canvas when the terminal changes size.
func (r *CanvasRenderer) Resize(cols, rows int) {
	if cols == r.Canvas.Width && rows == r.Canvas.Height {
		return
	}
	r.Canvas = NewCanvas(cols, rows)
}

func (r *CanvasRenderer) Frame() int { return r.frame }

func (r *CanvasRenderer) Render(snap sim.Snapshot) error {
	r.frame = snap.Frame
	r.Canvas.Clear()
	if len(snap.Layers) == 0 || snap.Layers[0].World == nil {
		return nil
	}
	layer := snap.Layers[0]
	w := layer.World
	sx := float64(r.Canvas.DotsX()) / w.Width
	sy := float64(r.Canvas.DotsY()) / w.Height

	for _, d := range layer.Items {
		col := ColorOf(d)
		x := int((d.Location.X + w.Camera.X) * sx)
		y := int((d.Location.Y + w.Camera.Y) * sy)

		radius := int(d.Width * d.Scale * sx / 2)
		switch {
		case radius > 1:
			r.Canvas.Ring(x, y, radius, col)
		default:
			r.Canvas.Set(x, y, col)
		}
		if r.Headings && d.Width > 0 && radius <= 1 {
			l := math.Max(2, d.Width*sx/2)
			r.Canvas.Line(x, y,
				x+int(math.Round(math.Cos(d.Angle)*l)),
				y+int(math.Round(math.Sin(d.Angle)*l)), col)
		}
	}
	return nil
}
