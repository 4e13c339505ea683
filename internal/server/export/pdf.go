package export

import (
	"fmt"
	"io"

	"github.com/dmitrijs2005/applylog/internal/server/models"
	"github.com/go-pdf/fpdf"
)

// renderPDF lays out one block per job; twelve columns do not fit a page
// width, so each field gets its own labelled line.
func renderPDF(w io.Writer, jobs []models.Job) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(sheetName), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("%d application(s)", len(jobs)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	for _, j := range jobs {
		values := record(j)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.MultiCell(0, 6, tr(fmt.Sprintf("%s - %s", values[0], values[1])), "", "L", false)
		for i := 2; i < len(header); i++ {
			if values[i] == "" {
				continue
			}
			pdf.SetFont("Helvetica", "B", 9)
			pdf.CellFormat(35, 5, tr(header[i]+":"), "", 0, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 9)
			pdf.MultiCell(0, 5, tr(values[i]), "", "L", false)
		}
		pdf.Ln(3)
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}
