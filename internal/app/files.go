package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/piwi3910/SomaCube/internal/engine"
	"github.com/piwi3910/SomaCube/internal/export"
	"github.com/piwi3910/SomaCube/internal/importer"
	"github.com/piwi3910/SomaCube/internal/journal"
	"github.com/piwi3910/SomaCube/internal/monitoring"
	"github.com/piwi3910/SomaCube/internal/project"
)

// SaveSession writes the session to path. Repeated saves keep the same
// session id.
func (c *Controller) SaveSession(path string) error {
	f := project.NewSessionFile(c.sessionID, c.shapeID, c.session)
	if err := project.SaveSession(path, f); err != nil {
		c.show(fmt.Sprintf("Failed to save session: %v", err))
		return err
	}
	c.sessionID = f.ID
	c.show("Session saved to " + path)
	return nil
}

// LoadSession replaces the session with the one stored at path.
func (c *Controller) LoadSession(ctx context.Context, path string) error {
	f, err := project.LoadSession(path)
	if err != nil {
		c.show(fmt.Sprintf("Failed to load session: %v", err))
		return err
	}
	sess, err := f.Session()
	if err != nil {
		c.show(fmt.Sprintf("Failed to load session: %v", err))
		return err
	}
	c.adopt(ctx, f, sess)
	c.show("Session loaded")
	return nil
}

// adopt makes sess, rebuilt from f, the live session.
func (c *Controller) adopt(ctx context.Context, f project.SessionFile, sess *engine.Session) {
	sess.SetHistoryDepth(c.cfg.HistoryDepth)
	c.session = sess
	c.sessionID = f.ID
	c.shapeID = f.ShapeID
	c.counts = Counts{}
	c.UpdateSolutionCounts(ctx)
}

// Backup writes the configuration and the current session to one file.
func (c *Controller) Backup(path string) error {
	f := project.NewSessionFile(c.sessionID, c.shapeID, c.session)
	if err := project.ExportAllData(path, c.cfg, &f); err != nil {
		c.show(fmt.Sprintf("Backup failed: %v", err))
		return err
	}
	c.sessionID = f.ID
	c.show("Backup written to " + path)
	return nil
}

// RestoreBackup applies the configuration and session stored by Backup.
func (c *Controller) RestoreBackup(ctx context.Context, path string) error {
	data, err := project.ImportAllData(path)
	if err != nil {
		c.show(fmt.Sprintf("Restore failed: %v", err))
		return err
	}
	// Nothing is applied until the whole backup is known to be usable.
	var sess *engine.Session
	if data.Session != nil {
		if sess, err = data.Session.Session(); err != nil {
			c.show(fmt.Sprintf("Restore failed: %v", err))
			return err
		}
	}
	c.cfg = data.Config
	if sess != nil {
		c.adopt(ctx, *data.Session, sess)
	}
	c.show("Backup restored")
	return nil
}

// Import reads a silhouette from a .csv, .xlsx or .dxf file and makes it the
// board of a fresh Soma session. The figure takes the file's base name.
func (c *Controller) Import(path string) bool {
	var result importer.ImportResult
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		result = importer.ImportCSV(path)
	case ".xlsx", ".xlsm":
		result = importer.ImportExcel(path)
	case ".dxf":
		result = importer.ImportDXF(path, importer.DefaultDXFOptions())
	default:
		c.show(fmt.Sprintf("Unsupported import format %q", filepath.Ext(path)))
		return false
	}

	if len(result.Warnings) > 0 {
		monitoring.Logf("import warnings: %v", result.Warnings)
	}
	if result.Grid == nil {
		c.show("Import failed: " + strings.Join(result.Errors, "; "))
		return false
	}

	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	c.install(id, result.Grid)
	msg := fmt.Sprintf("Imported %d cells (%s)", result.Cells, result.Grid.Dimensions())
	if len(result.Errors) > 0 {
		msg += fmt.Sprintf("; %d rows had errors and were skipped", len(result.Errors))
	}
	c.show(msg)
	return true
}

// Export writes the board as a .pdf layer sheet or an .xlsx workbook.
func (c *Controller) Export(path string) error {
	board := export.NewBoard(c.shapeID, c.session)
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		err = export.ExportPDF(path, board)
	case ".xlsx":
		err = export.ExportExcel(path, board)
	default:
		err = fmt.Errorf("unsupported export format %q", filepath.Ext(path))
	}
	if err != nil {
		c.show(fmt.Sprintf("Export failed: %v", err))
		return err
	}
	c.show("Exported to " + path)
	return nil
}

// ExportLabels writes one QR label per placed piece.
func (c *Controller) ExportLabels(path string) error {
	if err := export.ExportLabels(path, export.NewBoard(c.shapeID, c.session)); err != nil {
		c.show(fmt.Sprintf("Export failed: %v", err))
		return err
	}
	c.show("Labels written to " + path)
	return nil
}

// SaveFigure stores the current grid in the local figure library.
func (c *Controller) SaveFigure(id string) error {
	if c.figureDir == "" {
		return fmt.Errorf("no figure directory configured")
	}
	if err := project.SaveFigure(c.figureDir, id, c.session.Grid()); err != nil {
		c.show(fmt.Sprintf("Failed to save figure: %v", err))
		return err
	}
	c.show("Figure " + id + " saved")
	return nil
}

// Solutions lists the journal entries of the current shape.
func (c *Controller) Solutions(ctx context.Context) ([]journal.Entry, error) {
	if c.journal == nil {
		return nil, nil
	}
	return c.journal.List(ctx, c.shapeID)
}
