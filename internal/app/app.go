// Package app is the puzzle controller: it turns user commands into session
// edits and service calls, and reports the outcome as user-facing messages.
package app

import (
	"context"

	"github.com/piwi3910/SomaCube/internal/client"
	"github.com/piwi3910/SomaCube/internal/engine"
	"github.com/piwi3910/SomaCube/internal/journal"
	"github.com/piwi3910/SomaCube/internal/model"
	"github.com/piwi3910/SomaCube/internal/yass"
)

// User-facing messages.
const (
	MsgInvalidDimensions = "Grid dimensions must be positive integers."
	MsgFillAllCells      = "Please fill all cells in the grid"
	MsgInvalidBoard      = "Pieces overlap or stick out of the grid. Fix the board before checking."
	MsgCheckFailed       = "Failed to check solution. Please try again."
	MsgGridReset         = "Grid has been reset"
	MsgResetFailed       = "Failed to reset grid"
	MsgLoadingFigure     = "Loading figure..."
	MsgFigureLoaded      = "Figure loaded successfully"
	MsgLoadFailed        = "Failed to load figure"
	MsgAllSolutions      = "CONGRATULATIONS! YOU HAVE FOUND EVERY SOLUTION TO THIS PUZZLE!"
	MsgNothingToUndo     = "Nothing to undo"
	MsgNothingToRedo     = "Nothing to redo"
)

// Notifier shows messages to the user.
type Notifier interface {
	Notify(msg model.Message)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(msg model.Message)

func (f NotifierFunc) Notify(msg model.Message) { f(msg) }

// Checker is the puzzle service as the controller uses it. *client.Client
// implements it.
type Checker interface {
	ListShapes(ctx context.Context) ([]client.ShapeInfo, error)
	LoadShape(ctx context.Context, shapeID string) (*model.GridModel, error)
	CheckSolution(ctx context.Context, gridState, shapeID string) (client.CheckResult, error)
	SolutionCount(ctx context.Context, shapeID string) (int, error)
	TotalSolutions(ctx context.Context, shapeID string) (int, error)
	GenerateShapes(ctx context.Context, rules string, dims model.Dimensions) (map[int][][]model.Vec3, error)
	SolveGenerated(ctx context.Context, rules string, dims model.Dimensions) (string, error)
}

// Counts are the solution counts shown for the current shape.
type Counts struct {
	Current int
	Total   int
}

// Complete reports whether every solution of the shape has been found.
func (c Counts) Complete() bool {
	return c.Total > 0 && c.Current == c.Total
}

// Options configures a Controller. Checker and Journal may be nil: without
// a checker the controller works offline from FigureDir and carves
// generated sets locally.
type Options struct {
	Config    model.AppConfig
	Checker   Checker
	Journal   *journal.Journal
	Notifier  Notifier
	FigureDir string
}

// Controller holds all puzzle state for one user.
type Controller struct {
	cfg       model.AppConfig
	checker   Checker
	journal   *journal.Journal
	notifier  Notifier
	figureDir string

	session   *engine.Session
	shapeID   string
	sessionID string
	counts    Counts
	last      model.Message
}

// New returns a controller on an open grid of the configured default size.
// No shape is loaded until LoadShape is called.
func New(opts Options) (*Controller, error) {
	d := opts.Config.DefaultGrid
	grid, err := model.NewGridModel(d.Width, d.Height, d.Depth)
	if err != nil {
		return nil, err
	}
	c := &Controller{
		cfg:       opts.Config,
		checker:   opts.Checker,
		journal:   opts.Journal,
		notifier:  opts.Notifier,
		figureDir: opts.FigureDir,
	}
	c.session = engine.NewSession(grid, model.SomaSet())
	c.session.SetHistoryDepth(opts.Config.HistoryDepth)
	return c, nil
}

func (c *Controller) Session() *engine.Session {
	return c.session
}

// ShapeID returns the id of the loaded shape, empty for a custom grid.
func (c *Controller) ShapeID() string {
	return c.shapeID
}

func (c *Controller) Counts() Counts {
	return c.counts
}

func (c *Controller) Config() model.AppConfig {
	return c.cfg
}

// LastMessage returns the most recent message shown to the user.
func (c *Controller) LastMessage() model.Message {
	return c.last
}

// Render returns the board as grid text.
func (c *Controller) Render() string {
	return yass.Encode(c.session.Grid(), c.session.Occupancy())
}

func (c *Controller) show(text string) {
	c.notify(model.Message{Text: text, Duration: c.cfg.MessageDuration()})
}

func (c *Controller) notify(msg model.Message) {
	c.last = msg
	if c.notifier != nil {
		c.notifier.Notify(msg)
	}
}

// withTimeout bounds one service call by the configured HTTP timeout.
func (c *Controller) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.cfg.Timeout())
}
