package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/noah-isme/sma-gradebook-api/internal/grading"
)

type rgb struct{ r, g, b int }

var (
	colorAccent = rgb{219, 39, 119}
	colorTint   = rgb{252, 231, 243}
	colorBorder = rgb{244, 114, 182}
	colorText   = rgb{55, 65, 81}
	colorMuted  = rgb{102, 102, 102}
	colorPass   = rgb{16, 185, 129}
	colorFail   = rgb{239, 68, 68}
	colorBlue   = rgb{37, 99, 235}
	colorAmber  = rgb{202, 138, 4}
)

var bandColors = map[grading.Band]rgb{
	grading.BandExcellent: colorPass,
	grading.BandVeryGood:  colorBlue,
	grading.BandPassing:   colorAmber,
	grading.BandFailing:   colorFail,
}

// column widths of the grades detail table, in mm, summing to the printable width.
var detailWidths = []float64{38, 22, 20, 20, 22, 20, 24, 24}

const pageWidth = 190.0

// PDFExporter renders datasets and grades reports into A4 PDFs.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title and a table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := newDocument()
	tr := translator(pdf)
	pdf.AddPage()

	if title != "" {
		setText(pdf, colorAccent)
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(strings.ToUpper(title)), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	colWidth := pageWidth / float64(len(data.Headers))
	tableHeader(pdf, tr, data.Headers, func(int) float64 { return colWidth })

	setText(pdf, colorText)
	pdf.SetFont("Arial", "", 9)
	for _, row := range data.Rows {
		for _, value := range fitRow(row, len(data.Headers)) {
			pdf.CellFormat(colWidth, 7, tr(value), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return output(pdf)
}

// RenderReport lays out an assembled grades report: header, stat tiles,
// detail table with band coloured grades, insights, student lists and footer.
func (e *PDFExporter) RenderReport(report grading.Report) ([]byte, error) {
	pdf := newDocument()
	tr := translator(pdf)

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		setText(pdf, colorMuted)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s | Page %d", report.Header.Footer, pdf.PageNo())), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	setText(pdf, colorAccent)
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 10, tr(report.Header.Title), "", 1, "C", false, 0, "")
	setText(pdf, colorMuted)
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 7, tr(report.Header.Subtitle), "", 1, "C", false, 0, "")
	if !report.Header.GeneratedAt.IsZero() {
		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(0, 6, report.Header.GeneratedAt.Format("January 2, 2006 15:04"), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	statTiles(pdf, tr, report.Stats)
	pdf.Ln(6)

	sectionTitle(pdf, tr, "Detailed Grades")
	detailTable(pdf, tr, report.Table)
	pdf.Ln(6)

	sectionTitle(pdf, tr, "Performance Analysis")
	setText(pdf, colorText)
	pdf.SetFont("Arial", "", 10)
	for _, line := range report.Insights {
		pdf.MultiCell(0, 6, tr("- "+line), "", "L", false)
	}
	pdf.Ln(4)

	nameList(pdf, tr, report.Lists.Passed, colorPass)
	nameList(pdf, tr, report.Lists.Failed, colorFail)

	return output(pdf)
}

func statTiles(pdf *gofpdf.Fpdf, tr func(string) string, stats grading.StatsBlock) {
	if len(stats.Tiles) == 0 {
		return
	}
	gap := 4.0
	width := (pageWidth - gap*float64(len(stats.Tiles)-1)) / float64(len(stats.Tiles))
	x, y := pdf.GetX(), pdf.GetY()
	for i, tile := range stats.Tiles {
		left := x + float64(i)*(width+gap)
		setFill(pdf, colorTint)
		setDraw(pdf, colorBorder)
		pdf.Rect(left, y, width, 20, "FD")

		pdf.SetXY(left, y+2)
		setText(pdf, colorAccent)
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(width, 9, tr(tile.Value), "", 0, "C", false, 0, "")
		pdf.SetXY(left, y+11)
		setText(pdf, colorMuted)
		pdf.SetFont("Arial", "", 8)
		pdf.CellFormat(width, 6, tr(tile.Label), "", 0, "C", false, 0, "")
	}
	pdf.SetXY(x, y+22)
	setText(pdf, colorText)
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, tr("Pass Rate: "+stats.PassRate+"%"), "", 1, "C", false, 0, "")
}

func detailTable(pdf *gofpdf.Fpdf, tr func(string) string, table grading.DetailTable) {
	width := func(i int) float64 {
		if i < len(detailWidths) {
			return detailWidths[i]
		}
		return pageWidth / float64(len(table.Columns))
	}
	tableHeader(pdf, tr, table.Columns, width)

	pdf.SetFont("Arial", "", 9)
	gradeCol := len(table.Columns) - 2
	statusCol := len(table.Columns) - 1
	for n, row := range table.Rows {
		fill := n%2 == 1
		setFill(pdf, colorTint)
		for i, cell := range row.Cells {
			color := colorText
			style := ""
			switch i {
			case gradeCol:
				if c, ok := bandColors[row.Band]; ok {
					color = c
				}
				style = "B"
			case statusCol:
				color = colorFail
				if row.Passed {
					color = colorPass
				}
				style = "B"
			}
			setText(pdf, color)
			pdf.SetFont("Arial", style, 9)
			align := "C"
			if i < 2 {
				align = "L"
			}
			pdf.CellFormat(width(i), 7, tr(cell), "1", 0, align, fill, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(table.Rows) == 0 {
		setText(pdf, colorMuted)
		pdf.SetFont("Arial", "I", 9)
		pdf.CellFormat(pageWidth, 7, "No grades recorded", "1", 1, "C", false, 0, "")
	}
}

func nameList(pdf *gofpdf.Fpdf, tr func(string) string, list grading.NameList, color rgb) {
	setText(pdf, color)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 7, tr(fmt.Sprintf("%s (%d)", list.Title, list.Total)), "", 1, "L", false, 0, "")
	setText(pdf, colorText)
	pdf.SetFont("Arial", "", 9)
	for _, name := range list.Names {
		pdf.CellFormat(0, 5, tr("  "+name), "", 1, "L", false, 0, "")
	}
	if list.Continuation != "" {
		setText(pdf, colorMuted)
		pdf.SetFont("Arial", "I", 9)
		pdf.CellFormat(0, 5, tr("  "+list.Continuation), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)
}

func tableHeader(pdf *gofpdf.Fpdf, tr func(string) string, headers []string, width func(int) float64) {
	setFill(pdf, colorAccent)
	setDraw(pdf, colorBorder)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 10)
	for i, header := range headers {
		pdf.CellFormat(width(i), 8, tr(header), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
}

func sectionTitle(pdf *gofpdf.Fpdf, tr func(string) string, title string) {
	setText(pdf, colorAccent)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, tr(title), "B", 1, "L", false, 0, "")
	pdf.Ln(2)
}

func newDocument() *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 20)
	return pdf
}

// translator maps UTF-8 text onto the cp1252 core fonts. Symbols outside the
// code page are spelled out first.
func translator(pdf *gofpdf.Fpdf) func(string) string {
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	spell := strings.NewReplacer("≥", ">=", "≤", "<=")
	return func(s string) string {
		return tr(spell.Replace(s))
	}
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func setText(pdf *gofpdf.Fpdf, c rgb) { pdf.SetTextColor(c.r, c.g, c.b) }
func setFill(pdf *gofpdf.Fpdf, c rgb) { pdf.SetFillColor(c.r, c.g, c.b) }
func setDraw(pdf *gofpdf.Fpdf, c rgb) { pdf.SetDrawColor(c.r, c.g, c.b) }
