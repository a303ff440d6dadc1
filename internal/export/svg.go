// Package export turns canvases and recorded runs into SVG images.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/swarmsim/internal/record"
	"github.com/san-kum/swarmsim/internal/render"
)

const background = "#0a0a0a"

// Point is one sample of an entity's path.
type Point struct {
	Frame int
	X, Y  float64
}

// braille dot bits by [row][col] within a cell
var pixelMap = [4][2]int{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// CanvasToSVG draws every lit dot of canvas as a circle in its cell color.
// scale is the size of one dot in SVG units.
func CanvasToSVG(canvas *render.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.DotsX()) * scale
	height := float64(canvas.DotsY()) * scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)

	dotRadius := scale * 0.4
	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			if r <= 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)
			fill := canvas.Colors[row][col].Hex()

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] == 0 {
						continue
					}
					cx := baseX + float64(dx)*scale + scale/2
					cy := baseY + float64(dy)*scale + scale/2
					fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"%s\"/>\n", cx, cy, dotRadius, fill)
				}
			}
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// Trail extracts the recorded path of the entity with the given id.
// Frames where the entity is absent or its location was not recorded are
// skipped.
func Trail(frames []record.Frame, id uint64) []Point {
	out := make([]Point, 0, len(frames))
	for _, f := range frames {
		for _, item := range f.Items {
			if itemID(item["id"]) != id {
				continue
			}
			loc, ok := item["location"].(map[string]any)
			if !ok {
				break
			}
			x, okx := loc["x"].(float64)
			y, oky := loc["y"].(float64)
			if okx && oky {
				out = append(out, Point{Frame: f.Frame, X: x, Y: y})
			}
			break
		}
	}
	return out
}

func itemID(v any) uint64 {
	switch id := v.(type) {
	case float64:
		return uint64(id)
	case uint64:
		return id
	case int:
		return uint64(id)
	}
	return 0
}

// TrajectoryToSVG draws points as a single polyline fitted to width x
// height with a 10% margin. Screen coordinates are kept, so y grows down.
func TrajectoryToSVG(points []Point, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, background, strokeColor)

	for i, p := range points {
		x := (p.X - minX) / rangeX * float64(width)
		y := (p.Y - minY) / rangeY * float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
