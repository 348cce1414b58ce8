package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/piwi3910/SomaCube/internal/engine"
	"github.com/piwi3910/SomaCube/internal/model"
	"github.com/piwi3910/SomaCube/internal/yass"
)

// SessionFileExt is the extension used for saved puzzle sessions.
const SessionFileExt = ".soma.json"

// SessionFile is the on-disk form of a puzzle session: the grid, the piece
// set when it differs from the Soma catalog, and the placements.
type SessionFile struct {
	Version    string                  `json:"version"`
	ID         string                  `json:"id"`
	ShapeID    string                  `json:"shape_id,omitempty"`
	SavedAt    string                  `json:"saved_at"`
	Puzzle     yass.Puzzle             `json:"puzzle"`
	Pieces     []model.PieceDefinition `json:"pieces,omitempty"`
	Placements []model.PlacedPiece     `json:"placements"`
	Selected   string                  `json:"selected,omitempty"`
}

// NewSessionFile captures sess. id is reused when non-empty so that
// repeated saves of one session keep their identity.
func NewSessionFile(id, shapeID string, sess *engine.Session) SessionFile {
	if id == "" {
		id = uuid.New().String()[:8]
	}
	snap := sess.Snapshot("")
	f := SessionFile{
		Version:    "1.0.0",
		ID:         id,
		ShapeID:    shapeID,
		SavedAt:    time.Now().UTC().Format(time.RFC3339),
		Puzzle:     yass.PuzzleFromGrid(sess.Grid()),
		Placements: snap.Placements,
		Selected:   snap.Selected,
	}
	if f.Placements == nil {
		f.Placements = []model.PlacedPiece{}
	}
	if !isSomaSet(sess.PieceSet()) {
		f.Pieces = sess.PieceSet().Pieces()
	}
	return f
}

func isSomaSet(s model.PieceSet) bool {
	ids := s.IDs()
	soma := model.SomaSet().IDs()
	if len(ids) != len(soma) {
		return false
	}
	for i := range ids {
		if ids[i] != soma[i] {
			return false
		}
	}
	return true
}

// Session rebuilds a live session from the file.
func (f SessionFile) Session() (*engine.Session, error) {
	g, err := f.Puzzle.GridModel()
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", f.ID, err)
	}
	for _, p := range f.Placements {
		if err := p.Rotation.Validate(); err != nil {
			return nil, fmt.Errorf("session %s: piece %s: %w", f.ID, p.PieceID, err)
		}
	}
	set := model.SomaSet()
	if len(f.Pieces) > 0 {
		set = model.NewPieceSet(f.Pieces...)
	}
	sess := engine.NewSession(g, set)
	sess.Restore(engine.Snapshot{Placements: f.Placements, Selected: f.Selected})
	return sess, nil
}

// SaveSession writes the session file as indented JSON, creating parent
// directories as needed.
func SaveSession(path string, f SessionFile) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// LoadSession reads a session file written by SaveSession.
func LoadSession(path string) (SessionFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SessionFile{}, fmt.Errorf("failed to read session file: %w", err)
	}
	var f SessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return SessionFile{}, fmt.Errorf("failed to parse session file: %w", err)
	}
	if f.Version == "" {
		return SessionFile{}, fmt.Errorf("invalid session file: missing version field")
	}
	return f, nil
}
