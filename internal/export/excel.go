package export

import (
	"fmt"
	"strings"

	"github.com/piwi3910/SomaCube/internal/model"
	"github.com/piwi3910/SomaCube/internal/yass"
	"github.com/xuri/excelize/v2"
)

// PlacementsSheet is the name of the sheet listing the placed pieces.
const PlacementsSheet = "Placements"

// LayerSheetName returns the sheet name used for layer z.
func LayerSheetName(z int) string {
	return fmt.Sprintf("Layer %d", z+1)
}

// ExportExcel writes a workbook with one sheet per z layer and a placements
// sheet. Each layer cell holds the same character as the grid text and is
// filled with the color of the piece occupying it. The layer sheets can be
// read back by importer.ImportExcel as a silhouette.
func ExportExcel(path string, board Board) error {
	if board.Grid == nil {
		return ErrEmptyBoard
	}

	f := excelize.NewFile()
	defer f.Close()

	styles := make(map[string]int)
	styleFor := func(id string) (int, error) {
		if s, ok := styles[id]; ok {
			return s, nil
		}
		r, g, b := pieceColor(board.Pieces, id)
		s, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fmt.Sprintf("%02X%02X%02X", r, g, b)}},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
			Font:      &excelize.Font{Bold: true},
		})
		if err != nil {
			return 0, err
		}
		styles[id] = s
		return s, nil
	}

	d := board.Grid.Dimensions()
	for z := 0; z < d.Depth; z++ {
		sheet := LayerSheetName(z)
		if z == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
				return fmt.Errorf("naming sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("adding sheet %s: %w", sheet, err)
		}

		for y := 0; y < d.Height; y++ {
			for x := 0; x < d.Width; x++ {
				c := model.Vec3{X: x, Y: y, Z: z}
				ref, err := excelize.CoordinatesToCellName(x+1, y+1)
				if err != nil {
					return err
				}
				value, id := cellValue(board, c)
				if err := f.SetCellValue(sheet, ref, value); err != nil {
					return err
				}
				if id == "" {
					continue
				}
				style, err := styleFor(id)
				if err != nil {
					return fmt.Errorf("styling %s: %w", id, err)
				}
				if err := f.SetCellStyle(sheet, ref, ref, style); err != nil {
					return err
				}
			}
		}
		lastCol, _ := excelize.ColumnNumberToName(d.Width)
		if err := f.SetColWidth(sheet, "A", lastCol, 4); err != nil {
			return err
		}
	}

	if err := writePlacements(f, board); err != nil {
		return err
	}
	return f.SaveAs(path)
}

// cellValue returns the text for c and the occupying piece id, if any.
func cellValue(board Board, c model.Vec3) (string, string) {
	if !board.Grid.IsTargetCell(c) {
		return string(model.MarkerEmpty), ""
	}
	if id, ok := board.Occupancy[c]; ok {
		return string(yass.Symbol(id)), id
	}
	return string(board.Grid.MarkerAt(c)), ""
}

func writePlacements(f *excelize.File, board Board) error {
	if _, err := f.NewSheet(PlacementsSheet); err != nil {
		return fmt.Errorf("adding sheet %s: %w", PlacementsSheet, err)
	}
	header := []interface{}{"Piece", "Name", "X", "Y", "Z", "Rot X", "Rot Y", "Rot Z", "Cells"}
	if err := f.SetSheetRow(PlacementsSheet, "A1", &header); err != nil {
		return err
	}
	for i, info := range CollectLabelInfos(board) {
		cells := make([]string, len(info.Cells))
		for j, c := range info.Cells {
			cells[j] = c.String()
		}
		row := []interface{}{
			info.PieceID, info.Name,
			info.Origin.X, info.Origin.Y, info.Origin.Z,
			info.Rotation.X, info.Rotation.Y, info.Rotation.Z,
			strings.Join(cells, " "),
		}
		ref, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(PlacementsSheet, ref, &row); err != nil {
			return err
		}
	}
	return nil
}
