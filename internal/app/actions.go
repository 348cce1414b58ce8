package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/piwi3910/SomaCube/internal/engine"
	"github.com/piwi3910/SomaCube/internal/model"
	"github.com/piwi3910/SomaCube/internal/monitoring"
	"github.com/piwi3910/SomaCube/internal/project"
	"github.com/piwi3910/SomaCube/internal/yass"
)

// ParseDimensions reads three positive integers from text fields.
func ParseDimensions(x, y, z string) (model.Dimensions, error) {
	var vals [3]int
	for i, s := range []string{x, y, z} {
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return model.Dimensions{}, fmt.Errorf("%w: %q", model.ErrInvalidDimensions, s)
		}
		vals[i] = v
	}
	d := model.Dimensions{Width: vals[0], Height: vals[1], Depth: vals[2]}
	if err := d.Validate(); err != nil {
		return model.Dimensions{}, err
	}
	return d, nil
}

// ApplyGridSize replaces the grid with an open grid of the given size and
// clears every placement. Nothing changes when a value is not a positive
// integer.
func (c *Controller) ApplyGridSize(x, y, z string) bool {
	d, err := ParseDimensions(x, y, z)
	if err != nil {
		c.show(MsgInvalidDimensions)
		return false
	}
	if err := c.session.Resize(d.Width, d.Height, d.Depth); err != nil {
		c.show(MsgInvalidDimensions)
		return false
	}
	monitoring.Logf("grid resized to %s", d)
	return true
}

// SelectPiece selects a placed piece or places it at the grid center.
func (c *Controller) SelectPiece(id string) bool {
	err := c.session.SelectOrPlace(id)
	switch {
	case err == nil:
		return true
	case errors.Is(err, engine.ErrBoardInvalid):
		c.show(err.Error())
	case errors.Is(err, model.ErrPieceNotFound):
		c.show(fmt.Sprintf("Unknown piece %q", id))
	default:
		c.show(err.Error())
	}
	return false
}

// RemoveSelected takes the selected piece out of the grid.
func (c *Controller) RemoveSelected() bool {
	return c.session.RemoveSelected() == nil
}

// CheckSolution submits the board to the checker. Incomplete or invalid
// boards are refused without contacting the service. An accepted solution
// is recorded in the journal and the solution counts are refreshed.
func (c *Controller) CheckSolution(ctx context.Context) bool {
	occ := c.session.Occupancy()
	for _, cell := range c.session.Grid().TargetCells() {
		if _, ok := occ[cell]; !ok {
			c.show(MsgFillAllCells)
			return false
		}
	}
	if !c.session.IsValid() {
		c.show(MsgInvalidBoard)
		return false
	}
	if c.checker == nil {
		c.show(MsgCheckFailed)
		return false
	}

	text := yass.Encode(c.session.Grid(), occ)
	callCtx, cancel := c.withTimeout(ctx)
	result, err := c.checker.CheckSolution(callCtx, text, c.shapeID)
	cancel()
	if err != nil {
		monitoring.Logf("check solution: %v", err)
		c.show(MsgCheckFailed)
		return false
	}
	c.show(result.Message)

	if result.Valid {
		c.record(ctx, text, result.Message)
		c.UpdateSolutionCounts(ctx)
	}
	return result.Valid
}

func (c *Controller) record(ctx context.Context, text, message string) {
	if c.journal == nil {
		return
	}
	isNew, err := c.journal.Record(ctx, c.shapeID, text, message)
	if err != nil {
		monitoring.Logf("journal: %v", err)
		return
	}
	monitoring.Debugf("journal: shape %q new=%v", c.shapeID, isNew)
}

// UpdateSolutionCounts refreshes the found and total solution counts for the
// current shape. When every solution has been found a persistent
// congratulation message is shown. Without a checker the found count comes
// from the journal and the total is unknown.
func (c *Controller) UpdateSolutionCounts(ctx context.Context) Counts {
	if c.shapeID == "" {
		c.counts = Counts{}
		return c.counts
	}

	var counts Counts
	if c.checker != nil {
		callCtx, cancel := c.withTimeout(ctx)
		defer cancel()
		current, err := c.checker.SolutionCount(callCtx, c.shapeID)
		if err != nil {
			monitoring.Logf("updating solution counts: %v", err)
			return c.counts
		}
		total, err := c.checker.TotalSolutions(callCtx, c.shapeID)
		if err != nil {
			monitoring.Logf("updating solution counts: %v", err)
			return c.counts
		}
		counts = Counts{Current: current, Total: total}
	} else if c.journal != nil {
		n, err := c.journal.Count(ctx, c.shapeID)
		if err != nil {
			monitoring.Logf("counting journal entries: %v", err)
			return c.counts
		}
		counts.Current = n
	}

	c.counts = counts
	if counts.Complete() {
		c.notify(model.PersistentMessage(MsgAllSolutions))
	}
	return counts
}

// LoadShape fetches the figure with the given id, from the service first
// and then from the local figure directory. On success the grid is replaced,
// the Soma pieces are restored and the counts refreshed. On failure the
// current state is kept.
func (c *Controller) LoadShape(ctx context.Context, shapeID string) bool {
	c.show(MsgLoadingFigure)
	grid, err := c.fetchShape(ctx, shapeID)
	if err != nil {
		monitoring.Logf("load figure %s: %v", shapeID, err)
		c.show(MsgLoadFailed)
		return false
	}
	c.install(shapeID, grid)
	c.cfg.AddRecentShape(shapeID)
	c.UpdateSolutionCounts(ctx)
	if !c.counts.Complete() {
		c.show(MsgFigureLoaded)
	}
	return true
}

func (c *Controller) fetchShape(ctx context.Context, shapeID string) (*model.GridModel, error) {
	var errs []error
	if c.checker != nil {
		callCtx, cancel := c.withTimeout(ctx)
		grid, err := c.checker.LoadShape(callCtx, shapeID)
		cancel()
		if err == nil {
			return grid, nil
		}
		errs = append(errs, err)
	}
	if c.figureDir != "" {
		grid, err := project.LoadFigure(c.figureDir, shapeID)
		if err == nil {
			return grid, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("no source for figure %s", shapeID)
	}
	return nil, errors.Join(errs...)
}

// install makes grid the board of a fresh Soma session.
func (c *Controller) install(shapeID string, grid *model.GridModel) {
	c.session.LoadPieceSet(model.SomaSet())
	c.session.LoadGrid(grid)
	c.shapeID = shapeID
	c.counts = Counts{}
}

// Reset clears every piece and reloads the current shape. A custom grid is
// simply cleared.
func (c *Controller) Reset(ctx context.Context) bool {
	if c.shapeID == "" {
		c.session.Reset()
		c.show(MsgGridReset)
		return true
	}
	grid, err := c.fetchShape(ctx, c.shapeID)
	if err != nil {
		monitoring.Logf("reset %s: %v", c.shapeID, err)
		c.show(MsgResetFailed)
		return false
	}
	c.install(c.shapeID, grid)
	c.UpdateSolutionCounts(ctx)
	if !c.counts.Complete() {
		c.show(MsgGridReset)
	}
	return true
}

// ListShapes returns the figure ids offered by the service and the local
// figure directory, service ids first.
func (c *Controller) ListShapes(ctx context.Context) []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if c.checker != nil {
		callCtx, cancel := c.withTimeout(ctx)
		shapes, err := c.checker.ListShapes(callCtx)
		cancel()
		if err != nil {
			monitoring.Logf("list shapes: %v", err)
		}
		for _, s := range shapes {
			add(s.ID)
		}
	}
	if c.figureDir != "" {
		local, err := project.ListFigures(c.figureDir)
		if err != nil {
			monitoring.Logf("list figures: %v", err)
		}
		for _, id := range local {
			add(id)
		}
	}
	return ids
}

// Generate carves a size rules file into a set of distinct pieces filling
// a box of the given size, then resizes the grid to that box and offers the
// carved pieces in place of the Soma set. The service carves when
// available, otherwise the pieces are carved locally.
func (c *Controller) Generate(ctx context.Context, rules string, dims model.Dimensions) bool {
	if strings.TrimSpace(rules) == "" {
		c.show("Please select a rules file.")
		return false
	}
	if dims.Validate() != nil {
		c.show(MsgInvalidDimensions)
		return false
	}

	shapes, err := c.carve(ctx, rules, dims)
	if err != nil {
		monitoring.Logf("generate shapes: %v", err)
		c.show(fmt.Sprintf("Error generating shapes: %v", err))
		return false
	}
	set := model.NewGeneratedSet(shapes)
	if set.Len() == 0 {
		c.show("Error generating shapes: no pieces returned")
		return false
	}
	if set.Len() > model.MaxGeneratedPieces {
		c.show(fmt.Sprintf("Error generating shapes: %d pieces exceeds the limit of %d", set.Len(), model.MaxGeneratedPieces))
		return false
	}
	if err := c.session.Resize(dims.Width, dims.Height, dims.Depth); err != nil {
		c.show(MsgInvalidDimensions)
		return false
	}
	c.session.LoadPieceSet(set)
	c.shapeID = ""
	c.counts = Counts{}
	c.show(fmt.Sprintf("Generated %d pieces", set.Len()))
	return true
}

func (c *Controller) carve(ctx context.Context, rules string, dims model.Dimensions) (map[int][][]model.Vec3, error) {
	callCtx, cancel := c.withTimeout(ctx)
	defer cancel()
	if c.checker != nil {
		return c.checker.GenerateShapes(callCtx, rules, dims)
	}
	// Local carving is bounded by the same timeout as a service call.
	parsed, err := engine.ParseRules(strings.NewReader(rules))
	if err != nil {
		return nil, err
	}
	return engine.CarvePieces(callCtx, dims, parsed)
}

// SolveGenerated asks the service for a solution of the carved set and
// returns it as grid text.
func (c *Controller) SolveGenerated(ctx context.Context, rules string, dims model.Dimensions) (string, bool) {
	if strings.TrimSpace(rules) == "" {
		c.show("Please upload your rules file and generate pieces first.")
		return "", false
	}
	if dims.Validate() != nil {
		c.show("Grid dimensions are invalid.")
		return "", false
	}
	if c.checker == nil {
		c.show("Solve failed: no puzzle service configured")
		return "", false
	}
	callCtx, cancel := c.withTimeout(ctx)
	defer cancel()
	solution, err := c.checker.SolveGenerated(callCtx, rules, dims)
	if err != nil {
		monitoring.Logf("solve generated: %v", err)
		c.show(fmt.Sprintf("Solve failed: %v", err))
		return "", false
	}
	c.show("Solution received")
	return solution, true
}

// Undo reverts the last placement edit.
func (c *Controller) Undo() bool {
	label := c.session.History().UndoLabel()
	if !c.session.Undo() {
		c.show(MsgNothingToUndo)
		return false
	}
	c.show("Undone: " + label)
	return true
}

// Redo reapplies the last undone edit.
func (c *Controller) Redo() bool {
	label := c.session.History().RedoLabel()
	if !c.session.Redo() {
		c.show(MsgNothingToRedo)
		return false
	}
	c.show("Redone: " + label)
	return true
}
