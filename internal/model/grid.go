package model

import (
	"sort"
	"strings"
)

// Silhouette markers used in layered grid text.
const (
	MarkerDontCare  = '*'
	MarkerAlternate = 'o'
	MarkerEmpty     = '.'
)

// GridModel is the bounded puzzle volume plus the optional target silhouette.
// An empty target set means every in-bounds cell is a target.
type GridModel struct {
	dims          Dimensions
	targets       map[Vec3]struct{}
	originalShape string
	layers        [][]string
}

// NewGridModel returns an open grid of the given size.
func NewGridModel(width, height, depth int) (*GridModel, error) {
	g := &GridModel{}
	if err := g.Initialize(width, height, depth); err != nil {
		return nil, err
	}
	return g, nil
}

// Initialize sets the dimensions and clears the silhouette.
// On error the grid is left unchanged.
func (g *GridModel) Initialize(width, height, depth int) error {
	dims := Dimensions{Width: width, Height: height, Depth: depth}
	if err := dims.Validate(); err != nil {
		return err
	}
	g.dims = dims
	g.targets = make(map[Vec3]struct{})
	g.originalShape = ""
	g.layers = nil
	return nil
}

// Resize replaces the dimensions and clears target cells and shape text.
func (g *GridModel) Resize(width, height, depth int) error {
	return g.Initialize(width, height, depth)
}

// Dimensions returns the grid size.
func (g *GridModel) Dimensions() Dimensions {
	return g.dims
}

// Center returns floor(dim/2) on every axis.
func (g *GridModel) Center() Vec3 {
	return g.dims.Center()
}

func (g *GridModel) IsWithinBounds(c Vec3) bool {
	return g.dims.Contains(c)
}

// IsTargetCell reports whether c belongs to the silhouette. Without a
// silhouette every in-bounds cell is a target.
func (g *GridModel) IsTargetCell(c Vec3) bool {
	if !g.IsWithinBounds(c) {
		return false
	}
	if len(g.targets) == 0 {
		return true
	}
	_, ok := g.targets[c]
	return ok
}

// HasSilhouette reports whether explicit target cells are defined.
func (g *GridModel) HasSilhouette() bool {
	return len(g.targets) > 0
}

// SetSilhouette replaces the target cells and marker text. Cells outside
// the grid are ignored.
func (g *GridModel) SetSilhouette(cells []Vec3, originalShape string) {
	g.targets = make(map[Vec3]struct{}, len(cells))
	for _, c := range cells {
		if g.IsWithinBounds(c) {
			g.targets[c] = struct{}{}
		}
	}
	g.originalShape = originalShape
	g.layers = splitLayers(originalShape)
}

// TargetCells returns every target cell in z, y, x order.
func (g *GridModel) TargetCells() []Vec3 {
	var out []Vec3
	if len(g.targets) == 0 {
		out = make([]Vec3, 0, g.dims.Volume())
		for z := 0; z < g.dims.Depth; z++ {
			for y := 0; y < g.dims.Height; y++ {
				for x := 0; x < g.dims.Width; x++ {
					out = append(out, Vec3{X: x, Y: y, Z: z})
				}
			}
		}
		return out
	}
	out = make([]Vec3, 0, len(g.targets))
	for c := range g.targets {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// OriginalShape returns the layered marker text the silhouette was loaded with.
func (g *GridModel) OriginalShape() string {
	return g.originalShape
}

// MarkerAt returns the silhouette marker for c: '*' or 'o' as read from the
// original shape text at [z][y][x], and '*' whenever the lookup falls outside
// the text or hits any other character.
func (g *GridModel) MarkerAt(c Vec3) byte {
	if c.Z < 0 || c.Z >= len(g.layers) {
		return MarkerDontCare
	}
	rows := g.layers[c.Z]
	if c.Y < 0 || c.Y >= len(rows) {
		return MarkerDontCare
	}
	row := rows[c.Y]
	if c.X < 0 || c.X >= len(row) {
		return MarkerDontCare
	}
	switch ch := row[c.X]; ch {
	case MarkerDontCare, MarkerAlternate:
		return ch
	}
	return MarkerDontCare
}

// Clone returns an independent copy of the grid.
func (g *GridModel) Clone() *GridModel {
	out := &GridModel{
		dims:          g.dims,
		targets:       make(map[Vec3]struct{}, len(g.targets)),
		originalShape: g.originalShape,
		layers:        splitLayers(g.originalShape),
	}
	for c := range g.targets {
		out.targets[c] = struct{}{}
	}
	return out
}

func splitLayers(text string) [][]string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n\n")
	layers := make([][]string, len(parts))
	for i, p := range parts {
		layers[i] = strings.Split(p, "\n")
	}
	return layers
}
