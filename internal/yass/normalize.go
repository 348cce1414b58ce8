package yass

import (
	"strings"

	"github.com/piwi3910/SomaCube/internal/engine"
	"github.com/piwi3910/SomaCube/internal/model"
)

// Normalize returns the canonical text of a solution: the lexicographically
// smallest rendering over every rotation of the box that keeps its
// dimensions. Text that does not parse is returned trimmed.
func Normalize(text string) string {
	g, err := Parse(text)
	if err != nil {
		return strings.TrimSpace(text)
	}
	best := g.String()
	for _, m := range engine.Orientations() {
		r, ok := rotate(g, m)
		if !ok {
			continue
		}
		if s := r.String(); s < best {
			best = s
		}
	}
	return best
}

// rotate applies m to the whole box and shifts it back to the origin.
// It fails when the rotated box has different dimensions.
func rotate(g Grid, m engine.Matrix) (Grid, bool) {
	d := g.Dims
	corner := m.Transform(model.Vec3{X: d.Width - 1, Y: d.Height - 1, Z: d.Depth - 1})
	origin := m.Transform(model.Vec3{})
	ext := model.Vec3{X: abs(corner.X-origin.X) + 1, Y: abs(corner.Y-origin.Y) + 1, Z: abs(corner.Z-origin.Z) + 1}
	if ext.X != d.Width || ext.Y != d.Height || ext.Z != d.Depth {
		return Grid{}, false
	}
	shift := model.Vec3{X: min(corner.X, origin.X), Y: min(corner.Y, origin.Y), Z: min(corner.Z, origin.Z)}

	out := Grid{Dims: d, cells: make([]byte, len(g.cells))}
	g.each(func(c model.Vec3, ch byte) {
		out.cells[out.index(m.Transform(c).Sub(shift))] = ch
	})
	return out, true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
