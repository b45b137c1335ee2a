package infra

// pdf.go — forecast report generation using go-pdf/fpdf.
// Produces an A4 report with:
//   - Product header (SKU and name)
//   - Model provenance (model type, holdout metrics)
//   - Table of forecast dates and prices
//
// The output file is saved to storagePath/forecast_{sku}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-pdf/fpdf"

	"pricecast/internal/dto"
)

// GenerateForecastPDF renders a forecast response as a printable report.
// storagePath is the directory where the PDF will be written (created if
// needed). Returns the absolute path to the generated file.
func GenerateForecastPDF(productName string, resp *dto.ForecastResponse, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("forecast_%s.pdf", resp.SKU)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "Price Forecast Report", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, fmt.Sprintf("%s — %s", resp.SKU, productName), "", 1, "C", false, 0, "")
	pdf.CellFormat(contentW, 5, "Generated "+time.Now().Format("02/01/2006 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Model info ───────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, "Model: "+resp.ModelUsed, "", 1, "L", false, 0, "")
	if len(resp.Metrics) > 0 {
		pdf.SetFont("Helvetica", "", 9)
		names := make([]string, 0, len(resp.Metrics))
		for name := range resp.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			pdf.CellFormat(contentW, 5, fmt.Sprintf("  %s: %.4f", name, resp.Metrics[name]), "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(3)

	// ── Forecast table ───────────────────────────────────────────────────────
	col1 := contentW * 0.5
	col2 := contentW * 0.5

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1, 6, "Date", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "Predicted price", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for i, date := range resp.Dates {
		pdf.CellFormat(col1, 5, date, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, "$"+resp.Prices[i].StringFixed(2), "", 1, "R", false, 0, "")
	}

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(contentW, 4, "Forecasts are estimates and not purchase commitments.", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
