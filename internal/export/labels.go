package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/SomaCube/internal/engine"
	"github.com/piwi3910/SomaCube/internal/model"
	qrcode "github.com/skip2/go-qrcode"
)

// LabelInfo holds the data encoded into each piece label's QR code.
type LabelInfo struct {
	ShapeID  string         `json:"shape"`
	PieceID  string         `json:"piece"`
	Name     string         `json:"name"`
	Origin   model.Vec3     `json:"origin"`
	Rotation model.Rotation `json:"rotation"`
	Cells    []model.Vec3   `json:"cells"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
// Each label cell is approximately 66.7mm x 25.4mm on US Letter paper.
const (
	labelMarginTop  = 12.7 // mm
	labelMarginLeft = 4.8  // mm
	labelWidth      = 66.7 // mm per label
	labelHeight     = 25.4 // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // QR code size in mm
	labelPadding    = 2.0  // mm internal padding
)

// ExportLabels generates a PDF of QR-coded labels, one per placed piece.
// Each label shows the piece name, origin and rotation, and its QR code
// encodes the placement with the world cells it covers as JSON.
func ExportLabels(path string, board Board) error {
	labels := CollectLabelInfos(board)
	if len(labels) == 0 {
		return fmt.Errorf("no pieces placed to generate labels for: %w", ErrEmptyBoard)
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, x, y, label, board.Pieces); err != nil {
			return fmt.Errorf("failed to render label for %q: %w", label.PieceID, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, info LabelInfo, set model.PieceSet) error {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := "qr_" + info.PieceID
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	// Color swatch
	r, g, b := pieceColor(set, info.PieceID)
	pdf.SetFillColor(r, g, b)
	pdf.Rect(x+labelPadding, y+labelPadding, 3, 4.5, "F")

	textX := x + labelPadding + 4
	textW := labelWidth - qrSize - 3*labelPadding - 4

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)

	name := info.Name
	if pdf.GetStringWidth(name) > textW {
		for len(name) > 0 && pdf.GetStringWidth(name+"...") > textW {
			name = name[:len(name)-1]
		}
		name += "..."
	}
	pdf.CellFormat(textW, 4.5, name, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	pdf.CellFormat(textW, 3.5, fmt.Sprintf("Origin %s, %d cells", info.Origin, len(info.Cells)), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	pdf.CellFormat(textW, 3, fmt.Sprintf("Figure %s", info.ShapeID), "", 1, "L", false, 0, "")

	if !info.Rotation.IsZero() {
		pdf.SetXY(textX, y+labelPadding+12.5)
		pdf.SetFont("Helvetica", "I", 6)
		pdf.SetTextColor(150, 100, 0)
		rot := fmt.Sprintf("Rotated x%d y%d z%d", info.Rotation.X, info.Rotation.Y, info.Rotation.Z)
		pdf.CellFormat(textW, 3, rot, "", 0, "L", false, 0, "")
	}

	pdf.SetTextColor(0, 0, 0)
	return nil
}

// CollectLabelInfos extracts label information for every placement in
// placement order. Placements of pieces missing from the set are skipped.
func CollectLabelInfos(board Board) []LabelInfo {
	var labels []LabelInfo
	for _, p := range board.Placements {
		def, err := board.Pieces.Lookup(p.PieceID)
		if err != nil {
			continue
		}
		labels = append(labels, LabelInfo{
			ShapeID:  board.ShapeID,
			PieceID:  p.PieceID,
			Name:     def.Name,
			Origin:   p.Origin,
			Rotation: p.Rotation,
			Cells:    engine.Translate(engine.Apply(def.BaseShape, p.Rotation), p.Origin),
		})
	}
	return labels
}
