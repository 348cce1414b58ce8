package engine

import (
	"errors"
	"fmt"

	"github.com/piwi3910/SomaCube/internal/model"
)

var (
	ErrNoSelection = errors.New("no piece selected")
	// ErrBoardInvalid carries the text shown to the user when a selection
	// change is refused.
	ErrBoardInvalid = errors.New("Current board state is invalid! Please move or rotate the piece before switching.")
)

// Session owns the placed pieces and selection for one puzzle grid.
// Placements are indexed by piece id; order records placement sequence.
type Session struct {
	grid     *model.GridModel
	pieces   model.PieceSet
	placed   map[string]*model.PlacedPiece
	order    []string
	selected string
	history  *History
}

// NewSession starts an empty session on grid using the given piece set.
func NewSession(grid *model.GridModel, pieces model.PieceSet) *Session {
	return &Session{
		grid:    grid,
		pieces:  pieces,
		placed:  make(map[string]*model.PlacedPiece),
		history: NewHistory(0),
	}
}

// SetHistoryDepth replaces the undo history with an empty one of the given depth.
func (s *Session) SetHistoryDepth(depth int) {
	s.history = NewHistory(depth)
}

func (s *Session) Grid() *model.GridModel {
	return s.grid
}

func (s *Session) PieceSet() model.PieceSet {
	return s.pieces
}

func (s *Session) History() *History {
	return s.history
}

// Selected returns the selected piece id, if any.
func (s *Session) Selected() (string, bool) {
	return s.selected, s.selected != ""
}

// Placed returns the placement for id, if the piece is in the grid.
func (s *Session) Placed(id string) (model.PlacedPiece, bool) {
	p, ok := s.placed[id]
	if !ok {
		return model.PlacedPiece{}, false
	}
	return *p, true
}

// Placements returns copies of all placements in placement order.
func (s *Session) Placements() []model.PlacedPiece {
	out := make([]model.PlacedPiece, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.placed[id])
	}
	return out
}

// SelectOrPlace selects the piece with the given id, placing it at the grid
// center first if it is not yet placed. Switching away from a different
// selected piece is refused with ErrBoardInvalid while the board is invalid.
func (s *Session) SelectOrPlace(id string) error {
	if _, err := s.pieces.Lookup(id); err != nil {
		return err
	}
	if s.selected != "" && s.selected != id && !s.IsValid() {
		return ErrBoardInvalid
	}
	if _, ok := s.placed[id]; ok {
		s.selected = id
		return nil
	}

	s.push("place " + id)
	s.placed[id] = &model.PlacedPiece{PieceID: id, Origin: s.grid.Center()}
	s.order = append(s.order, id)
	s.selected = id
	return nil
}

// Move translates the selected piece by delta along axis. The result may
// lie outside the grid.
func (s *Session) Move(axis model.Axis, delta int) error {
	p, err := s.selectedPiece()
	if err != nil {
		return err
	}
	s.push(fmt.Sprintf("move %s %s%+d", p.PieceID, axis, delta))
	p.Origin = p.Origin.Add(axis.Step(delta))
	return nil
}

// Rotate turns the selected piece by 90 degrees about axis.
func (s *Session) Rotate(axis model.Axis) error {
	p, err := s.selectedPiece()
	if err != nil {
		return err
	}
	s.push(fmt.Sprintf("rotate %s %s", p.PieceID, axis))
	p.Rotation = p.Rotation.Turn(axis)
	return nil
}

// Remove takes the piece out of the grid. Removing an unplaced piece is a no-op.
func (s *Session) Remove(id string) {
	if _, ok := s.placed[id]; !ok {
		return
	}
	s.push("remove " + id)
	delete(s.placed, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.selected == id {
		s.selected = ""
	}
}

// RemoveSelected removes the selected piece.
func (s *Session) RemoveSelected() error {
	p, err := s.selectedPiece()
	if err != nil {
		return err
	}
	s.Remove(p.PieceID)
	return nil
}

// OccupiedCells returns the world cells covered by p.
func (s *Session) OccupiedCells(p model.PlacedPiece) ([]model.Vec3, error) {
	def, err := s.pieces.Lookup(p.PieceID)
	if err != nil {
		return nil, err
	}
	return Translate(Apply(def.BaseShape, p.Rotation), p.Origin), nil
}

// IsValid reports whether every placed cell is in bounds and no cell is
// claimed twice.
func (s *Session) IsValid() bool {
	visited := make(map[model.Vec3]struct{})
	for _, id := range s.order {
		cells, err := s.OccupiedCells(*s.placed[id])
		if err != nil {
			return false
		}
		for _, c := range cells {
			if !s.grid.IsWithinBounds(c) {
				return false
			}
			if _, dup := visited[c]; dup {
				return false
			}
			visited[c] = struct{}{}
		}
	}
	return true
}

// IsComplete reports whether every target cell is covered and the board is valid.
func (s *Session) IsComplete() bool {
	if !s.IsValid() {
		return false
	}
	occ := s.Occupancy()
	for _, c := range s.grid.TargetCells() {
		if _, ok := occ[c]; !ok {
			return false
		}
	}
	return true
}

// Occupancy recomputes the cell → piece id map from the placements.
// Out-of-bounds cells are skipped and on overlap the earlier-placed piece
// keeps the cell.
func (s *Session) Occupancy() model.Occupancy {
	occ := make(model.Occupancy)
	for _, id := range s.order {
		cells, err := s.OccupiedCells(*s.placed[id])
		if err != nil {
			continue
		}
		for _, c := range cells {
			if !s.grid.IsWithinBounds(c) {
				continue
			}
			if _, taken := occ[c]; !taken {
				occ[c] = id
			}
		}
	}
	return occ
}

// Resize changes the grid dimensions and clears every placement.
// On invalid dimensions nothing changes.
func (s *Session) Resize(width, height, depth int) error {
	if err := s.grid.Resize(width, height, depth); err != nil {
		return err
	}
	s.clear()
	return nil
}

// LoadGrid replaces the grid and clears every placement.
func (s *Session) LoadGrid(grid *model.GridModel) {
	s.grid = grid
	s.clear()
}

// LoadPieceSet replaces the available pieces and clears every placement.
func (s *Session) LoadPieceSet(set model.PieceSet) {
	s.pieces = set
	s.clear()
}

// Reset removes all placements, keeping the grid and piece set.
func (s *Session) Reset() {
	s.clear()
}

func (s *Session) clear() {
	s.placed = make(map[string]*model.PlacedPiece)
	s.order = nil
	s.selected = ""
	s.history.Clear()
}

func (s *Session) selectedPiece() (*model.PlacedPiece, error) {
	if s.selected == "" {
		return nil, ErrNoSelection
	}
	return s.placed[s.selected], nil
}

// Snapshot captures the placements and selection at a point in time.
type Snapshot struct {
	Placements []model.PlacedPiece `json:"placements"`
	Selected   string              `json:"selected,omitempty"`
	Label      string              `json:"label,omitempty"`
}

// Snapshot returns a copy of the current placements.
func (s *Session) Snapshot(label string) Snapshot {
	return Snapshot{Placements: s.Placements(), Selected: s.selected, Label: label}
}

// Restore replaces the placements with those in snap. Pieces missing from
// the current piece set and repeated ids are dropped.
func (s *Session) Restore(snap Snapshot) {
	s.placed = make(map[string]*model.PlacedPiece, len(snap.Placements))
	s.order = nil
	for _, p := range snap.Placements {
		if _, err := s.pieces.Lookup(p.PieceID); err != nil {
			continue
		}
		if _, dup := s.placed[p.PieceID]; dup {
			continue
		}
		cp := p
		s.placed[p.PieceID] = &cp
		s.order = append(s.order, p.PieceID)
	}
	s.selected = ""
	if _, ok := s.placed[snap.Selected]; ok {
		s.selected = snap.Selected
	}
}

// Undo restores the state before the last edit.
func (s *Session) Undo() bool {
	prev, ok := s.history.Undo(s.Snapshot(""))
	if ok {
		s.Restore(prev)
	}
	return ok
}

// Redo reapplies the last undone edit.
func (s *Session) Redo() bool {
	next, ok := s.history.Redo(s.Snapshot(""))
	if ok {
		s.Restore(next)
	}
	return ok
}

func (s *Session) push(label string) {
	s.history.Push(s.Snapshot(label))
}
