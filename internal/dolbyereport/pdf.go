package dolbyereport

import (
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"example.com/dolbyectl/internal/dolbye"
)

// SavePDF renders an AcceptanceReport into a PDF document, grounded on the
// teacher's internal/report.SaveAcceptancePDF layout: a title, a summary
// block, a per-frame matrix, and a findings list.
func SavePDF(rep AcceptanceReport, out string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Dolby E Acceptance Report", false)
	pdf.SetAuthor("dolbyectl", false)
	pdf.SetCreator("dolbyectl", false)
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	addTitle(pdf, "Dolby E Acceptance Report")
	addSummary(pdf, rep.Summary)
	addFrameMatrix(pdf, rep.Frames)
	addFindings(pdf, rep.Findings)

	if pdf.Err() {
		return pdf.Error()
	}
	return pdf.OutputFileAndClose(out)
}

func addTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)
}

func addSummary(pdf *gofpdf.Fpdf, s Summary) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	items := []struct{ label, value string }{
		{"Total Frames", strconv.Itoa(s.TotalFrames)},
		{"Findings", strconv.Itoa(s.Findings)},
		{"Errors", strconv.Itoa(s.Errors)},
		{"Warnings", strconv.Itoa(s.Warnings)},
		{"Overall", passLabel(s.Pass)},
	}
	for _, item := range items {
		pdf.CellFormat(50, 6, item.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, item.value, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func addFrameMatrix(pdf *gofpdf.Fpdf, rows []FrameSummary) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Frame Matrix")
	pdf.Ln(9)

	headers := []string{"Frame", "ProgCfg", "RateCode", "Progs", "Chans", "Findings"}
	widths := []float64{22, 22, 24, 22, 22, 24}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range rows {
		values := []string{
			strconv.Itoa(row.FrameIndex),
			strconv.Itoa(row.ProgramConfig),
			strconv.Itoa(row.FrameRateCode),
			strconv.Itoa(row.NPrograms),
			strconv.Itoa(row.NChannels),
			strconv.Itoa(row.Findings),
		}
		for i, v := range values {
			pdf.CellFormat(widths[i], 5, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)
}

func addFindings(pdf *gofpdf.Fpdf, findings []dolbye.Diagnostic) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Findings")
	pdf.Ln(9)

	if len(findings) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, "No findings recorded.", "", "L", false)
		return
	}

	pdf.SetFont("Helvetica", "", 9)
	for _, f := range findings {
		line := "[" + string(f.Severity) + "] frame " + strconv.Itoa(f.FrameIndex) + " " + f.Code + ": " + f.Message
		pdf.MultiCell(0, 5, line, "", "L", false)
	}
}

func passLabel(pass bool) string {
	if pass {
		return "PASS"
	}
	return "FAIL"
}
