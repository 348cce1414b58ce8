package model

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
)

var ErrPieceNotFound = errors.New("piece not found")

// PieceDefinition describes one polycube piece. BaseShape lists the unit cube
// offsets with the minimal corner at the origin.
type PieceDefinition struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	BaseShape []Vec3 `json:"base_shape"`
}

// Size returns the number of unit cubes in the piece.
func (p PieceDefinition) Size() int {
	return len(p.BaseShape)
}

func (p PieceDefinition) clone() PieceDefinition {
	shape := make([]Vec3, len(p.BaseShape))
	copy(shape, p.BaseShape)
	p.BaseShape = shape
	return p
}

// The seven Soma pieces, keyed by their YASS identifiers.
var somaPieces = []PieceDefinition{
	{ID: "3", Name: "V Shape", Color: "#FF0000", BaseShape: []Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}},
	{ID: "l", Name: "L Shape", Color: "#00FF00", BaseShape: []Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {0, 1, 0}}},
	{ID: "t", Name: "T Shape", Color: "#0000FF", BaseShape: []Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {1, 1, 0}}},
	{ID: "z", Name: "Z Shape", Color: "#FFFF00", BaseShape: []Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {2, 1, 0}}},
	{ID: "p", Name: "A Shape", Color: "#FF00FF", BaseShape: []Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {1, 1, 1}}},
	{ID: "n", Name: "B Shape", Color: "#00FFFF", BaseShape: []Vec3{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {1, 1, 1}}},
	{ID: "c", Name: "Corner Shape", Color: "#FFA500", BaseShape: []Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}}},
}

// Lookup returns the catalog piece with the given id.
func Lookup(id string) (PieceDefinition, error) {
	for _, p := range somaPieces {
		if p.ID == id {
			return p.clone(), nil
		}
	}
	return PieceDefinition{}, fmt.Errorf("%w: %q", ErrPieceNotFound, id)
}

// SomaPieces returns copies of the catalog pieces in catalog order.
func SomaPieces() []PieceDefinition {
	out := make([]PieceDefinition, len(somaPieces))
	for i, p := range somaPieces {
		out[i] = p.clone()
	}
	return out
}

// IsPieceID reports whether id names a catalog piece.
func IsPieceID(id string) bool {
	_, err := Lookup(id)
	return err == nil
}

// PieceSet is an ordered, read-only table of the pieces available to a session.
type PieceSet struct {
	order []string
	defs  map[string]PieceDefinition
}

// NewPieceSet builds a set from the given definitions. Later duplicates of
// an id are ignored.
func NewPieceSet(defs ...PieceDefinition) PieceSet {
	s := PieceSet{defs: make(map[string]PieceDefinition, len(defs))}
	for _, d := range defs {
		if _, ok := s.defs[d.ID]; ok {
			continue
		}
		s.order = append(s.order, d.ID)
		s.defs[d.ID] = d.clone()
	}
	return s
}

// SomaSet returns the seven-piece catalog as a PieceSet.
func SomaSet() PieceSet {
	return NewPieceSet(somaPieces...)
}

// Lookup returns the piece with the given id or ErrPieceNotFound.
func (s PieceSet) Lookup(id string) (PieceDefinition, error) {
	d, ok := s.defs[id]
	if !ok {
		return PieceDefinition{}, fmt.Errorf("%w: %q", ErrPieceNotFound, id)
	}
	return d.clone(), nil
}

// IDs returns piece ids in set order.
func (s PieceSet) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Pieces returns copies of all pieces in set order.
func (s PieceSet) Pieces() []PieceDefinition {
	out := make([]PieceDefinition, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.defs[id].clone())
	}
	return out
}

// Len returns the number of pieces in the set.
func (s PieceSet) Len() int {
	return len(s.order)
}

// TotalCells returns the combined cube count of every piece.
func (s PieceSet) TotalCells() int {
	n := 0
	for _, d := range s.defs {
		n += len(d.BaseShape)
	}
	return n
}

// MaxGeneratedPieces is the largest generated set the grid text can spell,
// one symbol per piece.
const MaxGeneratedPieces = 45

// NewGeneratedSet converts a size -> shapes mapping, as returned by the shape
// generator, into a PieceSet. Sizes are visited in ascending numeric order and
// pieces are numbered gen1, gen2, ... in that order.
func NewGeneratedSet(shapes map[int][][]Vec3) PieceSet {
	sizes := make([]int, 0, len(shapes))
	for size := range shapes {
		sizes = append(sizes, size)
	}
	sort.Ints(sizes)

	var defs []PieceDefinition
	next := 1
	for _, size := range sizes {
		for _, coords := range shapes[size] {
			id := "gen" + strconv.Itoa(next)
			defs = append(defs, PieceDefinition{
				ID:        id,
				Name:      fmt.Sprintf("Size %d (#%s)", len(coords), id),
				Color:     generatedColor(next),
				BaseShape: coords,
			})
			next++
		}
	}
	return NewPieceSet(defs...)
}

// generatedColor spreads hues by the golden angle at 50% saturation and
// lightness, so neighbouring pieces stay distinguishable.
func generatedColor(n int) string {
	hue := math.Mod(float64(n)*137.508, 360)
	r, g, b := hslToRGB(hue, 0.5, 0.5)
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

func hslToRGB(h, s, l float64) (int, int, int) {
	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	to8 := func(v float64) int { return int(math.Round((v + m) * 255)) }
	return to8(r), to8(g), to8(b)
}

// ParseHexColor converts "#RRGGBB" into its components. Malformed input
// yields mid grey.
func ParseHexColor(s string) (r, g, b int) {
	if len(s) != 7 || s[0] != '#' {
		return 128, 128, 128
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return 128, 128, 128
	}
	return int(v>>16) & 0xFF, int(v>>8) & 0xFF, int(v) & 0xFF
}
