package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/swarmsim/internal/render"
)

var canvasStyle = lipgloss.NewStyle().Padding(1, 2)

// Canvas padding, used to map mouse cells back onto the canvas.
const (
	padTop  = 1
	padLeft = 2
)

// SparklineChart renders a mini sparkline from values.
func SparklineChart(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	// Show the most recent width values.
	if len(values) > width {
		values = values[len(values)-width:]
	}

	var b strings.Builder
	for _, v := range values {
		idx := int((v - lo) / rng * float64(len(chars)-1))
		idx = max(0, min(idx, len(chars)-1))
		b.WriteRune(chars[idx])
	}
	return b.String()
}

// colorize paints each braille cell in its entity color, batching runs of
// equal color into one style render.
func colorize(c *render.Canvas) string {
	var b strings.Builder
	for y, row := range c.Grid {
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && c.Colors[y][x] == c.Colors[y][start] {
				continue
			}
			seg := string(row[start:x])
			col := c.Colors[y][start]
			if col == (render.RGB{}) {
				b.WriteString(seg)
			} else {
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(col.Hex())).Render(seg))
			}
			start = x
		}
		b.WriteByte('\n')
	}
	return b.String()
}
