// Package export writes puzzle boards to printable and spreadsheet formats.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/SomaCube/internal/engine"
	"github.com/piwi3910/SomaCube/internal/model"
	"github.com/piwi3910/SomaCube/internal/yass"
	qrcode "github.com/skip2/go-qrcode"
)

var ErrEmptyBoard = errors.New("nothing to export")

// Board is the state written by the exporters.
type Board struct {
	ShapeID    string
	Grid       *model.GridModel
	Pieces     model.PieceSet
	Placements []model.PlacedPiece
	Occupancy  model.Occupancy
}

// NewBoard captures the current state of a session.
func NewBoard(shapeID string, s *engine.Session) Board {
	return Board{
		ShapeID:    shapeID,
		Grid:       s.Grid(),
		Pieces:     s.PieceSet(),
		Placements: s.Placements(),
		Occupancy:  s.Occupancy(),
	}
}

// Text returns the YASS rendering of the board.
func (b Board) Text() string {
	return yass.Encode(b.Grid, b.Occupancy)
}

func (b Board) title() string {
	if b.ShapeID == "" {
		return "Untitled figure"
	}
	return b.ShapeID
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendHeight = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
	summaryQR    = 60.0
)

// ExportPDF writes one page per z layer showing target cells colored by the
// piece filling them, followed by a summary page with the placements and a
// QR code of the grid text.
func ExportPDF(path string, board Board) error {
	if board.Grid == nil {
		return ErrEmptyBoard
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	d := board.Grid.Dimensions()
	for z := 0; z < d.Depth; z++ {
		pdf.AddPage()
		renderLayerPage(pdf, board, z)
	}

	pdf.AddPage()
	if err := renderSummaryPage(pdf, board); err != nil {
		return err
	}
	return pdf.OutputFileAndClose(path)
}

// renderLayerPage draws layer z of the board on the current page.
func renderLayerPage(pdf *fpdf.Fpdf, board Board, z int) {
	d := board.Grid.Dimensions()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("%s: layer %d of %d (%dx%dx%d)", board.title(), z+1, d.Depth, d.Width, d.Height, d.Depth)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	targets, filled := layerStats(board, z)
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Target cells: %d | Filled: %d | Open: %d", targets, filled, targets-filled)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - legendHeight
	cell := math.Min(drawWidth/float64(d.Width), drawHeight/float64(d.Height))
	canvasW := cell * float64(d.Width)
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Row 0 is the top row, as in the grid text.
	for y := 0; y < d.Height; y++ {
		for x := 0; x < d.Width; x++ {
			c := model.Vec3{X: x, Y: y, Z: z}
			px := offsetX + float64(x)*cell
			py := offsetY + float64(y)*cell
			drawCell(pdf, board, c, px, py, cell)
		}
	}

	drawPieceLegend(pdf, board, z, offsetY+cell*float64(d.Height)+5)
}

func drawCell(pdf *fpdf.Fpdf, board Board, c model.Vec3, px, py, size float64) {
	pdf.SetLineWidth(0.3)
	if !board.Grid.IsTargetCell(c) {
		pdf.SetDrawColor(200, 200, 200)
		pdf.Rect(px, py, size, size, "D")
		return
	}

	label := string(board.Grid.MarkerAt(c))
	if id, ok := board.Occupancy[c]; ok {
		r, g, b := pieceColor(board.Pieces, id)
		pdf.SetFillColor(r, g, b)
		label = string(yass.Symbol(id))
	} else {
		pdf.SetFillColor(235, 235, 235)
	}
	pdf.SetDrawColor(30, 30, 30)
	pdf.Rect(px, py, size, size, "FD")

	if size > 6 {
		pdf.SetFont("Helvetica", "B", math.Min(24, size/2))
		pdf.SetTextColor(0, 0, 0)
		pdf.SetXY(px, py)
		pdf.CellFormat(size, size, label, "", 0, "CM", false, 0, "")
	}
}

// drawPieceLegend lists the pieces that appear in layer z.
func drawPieceLegend(pdf *fpdf.Fpdf, board Board, z int, startY float64) {
	used := make(map[string]bool)
	for c, id := range board.Occupancy {
		if c.Z == z {
			used[id] = true
		}
	}
	if len(used) == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Pieces:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight

	for _, def := range board.Pieces.Pieces() {
		if !used[def.ID] {
			continue
		}
		label := fmt.Sprintf("%c %s (%d cells)", yass.Symbol(def.ID), def.Name, def.Size())
		labelW := pdf.GetStringWidth(label) + 6
		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}

		r, g, b := model.ParseHexColor(def.Color)
		pdf.SetFillColor(r, g, b)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")

		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")
		xPos += labelW + 2
	}
}

// renderSummaryPage draws the placement table and the QR-coded grid text.
func renderSummaryPage(pdf *fpdf.Fpdf, board Board) error {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, board.title()+" summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	text := board.Text()
	qrPNG, err := qrcode.Encode(text, qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}
	pdf.RegisterImageOptionsReader("grid_qr", fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))
	qrX := pageWidth - marginRight - summaryQR
	pdf.ImageOptions("grid_qr", qrX, marginTop+18, summaryQR, summaryQR, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	y := marginTop + 18
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Placements", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{20, 50, 35, 45}
	headers := []string{"Piece", "Name", "Origin", "Rotation x/y/z"}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, p := range board.Placements {
		name := p.PieceID
		if def, err := board.Pieces.Lookup(p.PieceID); err == nil {
			name = def.Name
		}
		row := []string{
			string(yass.Symbol(p.PieceID)),
			name,
			p.Origin.String(),
			fmt.Sprintf("%d / %d / %d", p.Rotation.X, p.Rotation.Y, p.Rotation.Z),
		}
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		xPos = marginLeft
		for j, cell := range row {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
		if y > pageHeight-marginBottom-10 {
			break
		}
	}

	// Grid text under the QR code
	pdf.SetFont("Courier", "", 7)
	textY := marginTop + 18 + summaryQR + 4
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if textY > pageHeight-marginBottom-6 {
			break
		}
		pdf.SetXY(qrX, textY)
		pdf.CellFormat(summaryQR, 3, line, "", 0, "L", false, 0, "")
		textY += 3
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by SomaCube", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	return nil
}

// layerStats counts target and filled cells in layer z.
func layerStats(board Board, z int) (targets, filled int) {
	d := board.Grid.Dimensions()
	for y := 0; y < d.Height; y++ {
		for x := 0; x < d.Width; x++ {
			c := model.Vec3{X: x, Y: y, Z: z}
			if !board.Grid.IsTargetCell(c) {
				continue
			}
			targets++
			if _, ok := board.Occupancy[c]; ok {
				filled++
			}
		}
	}
	return targets, filled
}

// pieceColor resolves a piece's fill color, grey when the id is unknown.
func pieceColor(set model.PieceSet, id string) (int, int, int) {
	def, err := set.Lookup(id)
	if err != nil {
		return 128, 128, 128
	}
	return model.ParseHexColor(def.Color)
}
