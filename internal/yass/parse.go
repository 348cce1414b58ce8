package yass

import (
	"errors"
	"fmt"
	"strings"

	"github.com/piwi3910/SomaCube/internal/model"
)

var ErrMalformed = errors.New("malformed grid text")

// ParseLayers splits text into z-layers of rows. A trailing newline after
// the last row is ignored and CRLF line endings are accepted.
func ParseLayers(text string) [][]string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}
	parts := strings.Split(text, "\n\n")
	layers := make([][]string, len(parts))
	for i, p := range parts {
		layers[i] = strings.Split(p, "\n")
	}
	return layers
}

// Grid is parsed YASS text: the box size plus one character per cell.
type Grid struct {
	Dims  model.Dimensions
	cells []byte
}

// Parse reads YASS text. Every layer must have the same number of rows and
// every row the same width.
func Parse(text string) (Grid, error) {
	layers := ParseLayers(text)
	if len(layers) == 0 {
		return Grid{}, fmt.Errorf("%w: empty", ErrMalformed)
	}
	d := model.Dimensions{Width: len(layers[0][0]), Height: len(layers[0]), Depth: len(layers)}
	if d.Width == 0 {
		return Grid{}, fmt.Errorf("%w: empty row", ErrMalformed)
	}
	g := Grid{Dims: d, cells: make([]byte, 0, d.Volume())}
	for z, rows := range layers {
		if len(rows) != d.Height {
			return Grid{}, fmt.Errorf("%w: layer %d has %d rows, want %d", ErrMalformed, z, len(rows), d.Height)
		}
		for y, row := range rows {
			if len(row) != d.Width {
				return Grid{}, fmt.Errorf("%w: layer %d row %d has width %d, want %d", ErrMalformed, z, y, len(row), d.Width)
			}
			g.cells = append(g.cells, row...)
		}
	}
	return g, nil
}

func (g Grid) index(c model.Vec3) int {
	return (c.Z*g.Dims.Height+c.Y)*g.Dims.Width + c.X
}

// At returns the character at c, or '.' outside the box.
func (g Grid) At(c model.Vec3) byte {
	if !g.Dims.Contains(c) {
		return model.MarkerEmpty
	}
	return g.cells[g.index(c)]
}

func isMarker(ch byte) bool {
	return ch == model.MarkerEmpty || ch == model.MarkerDontCare || ch == model.MarkerAlternate
}

// Occupancy returns every cell holding a piece character.
func (g Grid) Occupancy() model.Occupancy {
	occ := make(model.Occupancy)
	g.each(func(c model.Vec3, ch byte) {
		if !isMarker(ch) {
			occ[c] = PieceID(ch)
		}
	})
	return occ
}

// Targets returns every non-'.' cell in z, y, x order.
func (g Grid) Targets() []model.Vec3 {
	var out []model.Vec3
	g.each(func(c model.Vec3, ch byte) {
		if ch != model.MarkerEmpty {
			out = append(out, c)
		}
	})
	return out
}

// PieceIDs returns the distinct piece characters in first-seen order.
func (g Grid) PieceIDs() []string {
	seen := make(map[byte]bool)
	var out []string
	g.each(func(_ model.Vec3, ch byte) {
		if !isMarker(ch) && !seen[ch] {
			seen[ch] = true
			out = append(out, PieceID(ch))
		}
	})
	return out
}

// GridModel builds a grid whose silhouette is the non-'.' cells. A box with
// no '.' cells stays open.
func (g Grid) GridModel() (*model.GridModel, error) {
	gm, err := model.NewGridModel(g.Dims.Width, g.Dims.Height, g.Dims.Depth)
	if err != nil {
		return nil, err
	}
	targets := g.Targets()
	if len(targets) < g.Dims.Volume() {
		gm.SetSilhouette(targets, g.String())
	}
	return gm, nil
}

func (g Grid) String() string {
	var b strings.Builder
	for z := 0; z < g.Dims.Depth; z++ {
		for y := 0; y < g.Dims.Height; y++ {
			start := g.index(model.Vec3{Y: y, Z: z})
			b.Write(g.cells[start : start+g.Dims.Width])
			b.WriteByte('\n')
		}
		if z < g.Dims.Depth-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (g Grid) each(fn func(c model.Vec3, ch byte)) {
	i := 0
	for z := 0; z < g.Dims.Depth; z++ {
		for y := 0; y < g.Dims.Height; y++ {
			for x := 0; x < g.Dims.Width; x++ {
				fn(model.Vec3{X: x, Y: y, Z: z}, g.cells[i])
				i++
			}
		}
	}
}
