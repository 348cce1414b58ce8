// Package yass converts grid state to and from the layered YASS text format:
// one character per cell, x along a row, rows (y) separated by newlines and
// z-layers separated by a blank line.
package yass

import (
	"strconv"
	"strings"

	"github.com/piwi3910/SomaCube/internal/model"
)

// symbols stands in for multi-character piece ids, which cannot occupy a
// single cell of text. gen<N> uses symbols[N-1].
const symbols = "ABCDEFGHIJKLMNOPQRSTUVWXYZabdefghijkmqrsuvwxy"

// Symbol returns the single character written for a piece id.
func Symbol(id string) byte {
	if len(id) == 1 {
		return id[0]
	}
	if n, err := strconv.Atoi(strings.TrimPrefix(id, "gen")); err == nil && n >= 1 && n <= len(symbols) {
		return symbols[n-1]
	}
	return '#'
}

// PieceID is the inverse of Symbol for characters read back from text.
func PieceID(ch byte) string {
	if i := strings.IndexByte(symbols, ch); i >= 0 {
		return "gen" + strconv.Itoa(i+1)
	}
	return string(ch)
}

// Encode renders the grid with z outermost, then y, then x. Target cells show
// the occupying piece or the silhouette marker; other cells show '.'.
// Every row ends in '\n' and a blank line separates consecutive layers.
func Encode(grid *model.GridModel, occ model.Occupancy) string {
	d := grid.Dimensions()
	var b strings.Builder
	b.Grow((d.Width+1)*d.Height*d.Depth + d.Depth)
	for z := 0; z < d.Depth; z++ {
		for y := 0; y < d.Height; y++ {
			for x := 0; x < d.Width; x++ {
				c := model.Vec3{X: x, Y: y, Z: z}
				switch {
				case !grid.IsTargetCell(c):
					b.WriteByte(model.MarkerEmpty)
				case occ[c] != "":
					b.WriteByte(Symbol(occ[c]))
				default:
					b.WriteByte(grid.MarkerAt(c))
				}
			}
			b.WriteByte('\n')
		}
		if z < d.Depth-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
