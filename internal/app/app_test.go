package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/SomaCube/internal/client"
	"github.com/piwi3910/SomaCube/internal/journal"
	"github.com/piwi3910/SomaCube/internal/model"
	"github.com/piwi3910/SomaCube/internal/monitoring"
	"github.com/piwi3910/SomaCube/internal/yass"
)

// fakeChecker is an in-memory puzzle service.
type fakeChecker struct {
	shapes   map[string]*model.GridModel
	result   client.CheckResult
	checkErr error
	current  int
	total    int
	carved   map[int][][]model.Vec3
	solution string

	checks []string
	calls  int
}

func (f *fakeChecker) ListShapes(ctx context.Context) ([]client.ShapeInfo, error) {
	f.calls++
	var out []client.ShapeInfo
	for id := range f.shapes {
		out = append(out, client.ShapeInfo{ID: id})
	}
	return out, nil
}

func (f *fakeChecker) LoadShape(ctx context.Context, shapeID string) (*model.GridModel, error) {
	f.calls++
	g, ok := f.shapes[shapeID]
	if !ok {
		return nil, errors.New("not found")
	}
	return g.Clone(), nil
}

func (f *fakeChecker) CheckSolution(ctx context.Context, gridState, shapeID string) (client.CheckResult, error) {
	f.calls++
	f.checks = append(f.checks, gridState)
	return f.result, f.checkErr
}

func (f *fakeChecker) SolutionCount(ctx context.Context, shapeID string) (int, error) {
	f.calls++
	return f.current, nil
}

func (f *fakeChecker) TotalSolutions(ctx context.Context, shapeID string) (int, error) {
	f.calls++
	return f.total, nil
}

func (f *fakeChecker) GenerateShapes(ctx context.Context, rules string, dims model.Dimensions) (map[int][][]model.Vec3, error) {
	f.calls++
	if f.carved == nil {
		return nil, errors.New("carving failed")
	}
	return f.carved, nil
}

func (f *fakeChecker) SolveGenerated(ctx context.Context, rules string, dims model.Dimensions) (string, error) {
	f.calls++
	if f.solution == "" {
		return "", errors.New("no solution")
	}
	return f.solution, nil
}

// recorder collects every message shown.
type recorder struct {
	msgs []model.Message
}

func (r *recorder) Notify(msg model.Message) { r.msgs = append(r.msgs, msg) }

func (r *recorder) texts() []string {
	out := make([]string, len(r.msgs))
	for i, m := range r.msgs {
		out[i] = m.Text
	}
	return out
}

// veeGrid is the silhouette covered exactly by the V piece at the origin.
func veeGrid(t *testing.T) *model.GridModel {
	t.Helper()
	parsed, err := yass.Parse("**\n*.\n")
	require.NoError(t, err)
	g, err := parsed.GridModel()
	require.NoError(t, err)
	return g
}

func newTestController(t *testing.T, checker Checker) (*Controller, *recorder) {
	t.Helper()
	monitoring.SetLogger(nil)
	rec := &recorder{}
	opts := Options{
		Config:    model.DefaultAppConfig(),
		Notifier:  rec,
		FigureDir: t.TempDir(),
	}
	if checker != nil {
		opts.Checker = checker
	}
	c, err := New(opts)
	require.NoError(t, err)
	return c, rec
}

func openJournal(t *testing.T) *journal.Journal {
	t.Helper()
	j, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

// placeVee fills veeGrid with the V piece.
func placeVee(t *testing.T, c *Controller) {
	t.Helper()
	require.True(t, c.SelectPiece("3"))
	require.True(t, c.HandleKey(KeyLeft))
	require.True(t, c.HandleKey(KeyDown))
}

func TestNewUsesDefaultGrid(t *testing.T) {
	c, _ := newTestController(t, nil)
	assert.Equal(t, model.Dimensions{Width: 3, Height: 3, Depth: 3}, c.Session().Grid().Dimensions())
	assert.Equal(t, 7, c.Session().PieceSet().Len())
	assert.Empty(t, c.ShapeID())
	assert.Equal(t, Counts{}, c.Counts())
}

func TestNewRejectsBadDefaultGrid(t *testing.T) {
	cfg := model.DefaultAppConfig()
	cfg.DefaultGrid = model.Dimensions{}
	_, err := New(Options{Config: cfg})
	assert.Error(t, err)
}

func TestCountsComplete(t *testing.T) {
	assert.False(t, Counts{}.Complete())
	assert.False(t, Counts{Current: 1, Total: 2}.Complete())
	assert.True(t, Counts{Current: 2, Total: 2}.Complete())
}

func TestNotifierFunc(t *testing.T) {
	var got string
	c, err := New(Options{
		Config:   model.DefaultAppConfig(),
		Notifier: NotifierFunc(func(m model.Message) { got = m.Text }),
	})
	require.NoError(t, err)
	c.Undo()
	assert.Equal(t, MsgNothingToUndo, got)
	assert.Equal(t, MsgNothingToUndo, c.LastMessage().Text)
	assert.Equal(t, model.DefaultMessageDuration, c.LastMessage().Duration)
}

func TestRender(t *testing.T) {
	c, _ := newTestController(t, nil)
	c.install("vee", veeGrid(t))
	assert.Equal(t, "**\n*.\n", c.Render())
	placeVee(t, c)
	assert.Equal(t, "33\n3.\n", c.Render())
}
