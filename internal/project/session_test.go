package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/SomaCube/internal/engine"
	"github.com/piwi3910/SomaCube/internal/model"
)

func newSession(t *testing.T) *engine.Session {
	t.Helper()
	g, err := model.NewGridModel(3, 3, 3)
	require.NoError(t, err)
	g.SetSilhouette([]model.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 1}}, "**.\n*..\n...\n\n...\n.o.\n...")
	return engine.NewSession(g, model.SomaSet())
}

func TestSaveAndLoadSession(t *testing.T) {
	sess := newSession(t)
	require.NoError(t, sess.SelectOrPlace("3"))
	require.NoError(t, sess.Rotate(model.AxisZ))

	f := NewSessionFile("", "pyramid", sess)
	assert.Len(t, f.ID, 8)
	assert.Empty(t, f.Pieces, "soma set is implied")

	path := filepath.Join(t.TempDir(), "saves", "one"+SessionFileExt)
	require.NoError(t, SaveSession(path, f))

	loaded, err := LoadSession(path)
	require.NoError(t, err)
	assert.Equal(t, f.ID, loaded.ID)
	assert.Equal(t, "pyramid", loaded.ShapeID)

	restored, err := loaded.Session()
	require.NoError(t, err)
	assert.Equal(t, sess.Placements(), restored.Placements())
	sel, _ := restored.Selected()
	assert.Equal(t, "3", sel)
	assert.Equal(t, sess.Grid().TargetCells(), restored.Grid().TargetCells())
	assert.Equal(t, byte('o'), restored.Grid().MarkerAt(model.V(1, 1, 1)))
}

func TestSessionFileKeepsGeneratedPieces(t *testing.T) {
	sess := newSession(t)
	sess.LoadPieceSet(model.NewGeneratedSet(map[int][][]model.Vec3{2: {{{0, 0, 0}, {1, 0, 0}}}}))
	require.NoError(t, sess.SelectOrPlace("gen1"))

	f := NewSessionFile("abcd1234", "", sess)
	assert.Equal(t, "abcd1234", f.ID)
	require.Len(t, f.Pieces, 1)

	restored, err := f.Session()
	require.NoError(t, err)
	assert.Equal(t, []string{"gen1"}, restored.PieceSet().IDs())
	assert.Len(t, restored.Placements(), 1)
}

func TestLoadSessionErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadSession(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"puzzle":{}}`), 0644))
	_, err = LoadSession(bad)
	assert.Error(t, err, "missing version")
}

func TestSessionFileInvalidPuzzle(t *testing.T) {
	f := SessionFile{Version: "1.0.0", ID: "x"}
	_, err := f.Session()
	assert.ErrorIs(t, err, model.ErrInvalidDimensions)
}

func TestSessionFileRejectsOffGridRotation(t *testing.T) {
	f := NewSessionFile("tilted", "", newSession(t))
	f.Placements = []model.PlacedPiece{{PieceID: "l", Rotation: model.Rotation{Z: 45}}}

	path := filepath.Join(t.TempDir(), "tilted"+SessionFileExt)
	require.NoError(t, SaveSession(path, f))
	loaded, err := LoadSession(path)
	require.NoError(t, err)

	_, err = loaded.Session()
	require.ErrorIs(t, err, model.ErrInvalidRotation)
	assert.Contains(t, err.Error(), "session tilted: piece l")
}
