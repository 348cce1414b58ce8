package yass

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/piwi3910/SomaCube/internal/model"
)

// Puzzle is the JSON form of a figure served by the checker.
type Puzzle struct {
	Dimensions    model.Dimensions `json:"dimensions"`
	OccupiedCells []model.Vec3     `json:"occupied_cells"`
	OriginalShape *string          `json:"original_shape"`
}

// DecodePuzzle parses a puzzle definition into a grid. Every occupied cell
// becomes a target cell and original_shape, when present, supplies markers.
func DecodePuzzle(data []byte) (*model.GridModel, error) {
	var p Puzzle
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding puzzle: %w", err)
	}
	return p.GridModel()
}

// ReadPuzzle decodes a puzzle definition from r.
func ReadPuzzle(r io.Reader) (*model.GridModel, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading puzzle: %w", err)
	}
	return DecodePuzzle(data)
}

// GridModel validates the puzzle and builds its grid.
func (p Puzzle) GridModel() (*model.GridModel, error) {
	d := p.Dimensions
	g, err := model.NewGridModel(d.Width, d.Height, d.Depth)
	if err != nil {
		return nil, err
	}
	for i, c := range p.OccupiedCells {
		if !g.IsWithinBounds(c) {
			return nil, fmt.Errorf("occupied cell %d %v outside %v grid", i, c, d)
		}
	}
	shape := ""
	if p.OriginalShape != nil {
		shape = *p.OriginalShape
	}
	if len(p.OccupiedCells) > 0 || shape != "" {
		g.SetSilhouette(p.OccupiedCells, shape)
	}
	return g, nil
}

// PuzzleFromGrid is the inverse of Puzzle.GridModel. An open grid lists every
// cell as occupied.
func PuzzleFromGrid(g *model.GridModel) Puzzle {
	p := Puzzle{
		Dimensions:    g.Dimensions(),
		OccupiedCells: g.TargetCells(),
	}
	if s := g.OriginalShape(); s != "" {
		p.OriginalShape = &s
	}
	return p
}

// EncodePuzzle renders g as indented puzzle JSON.
func EncodePuzzle(g *model.GridModel) ([]byte, error) {
	return json.MarshalIndent(PuzzleFromGrid(g), "", "  ")
}
