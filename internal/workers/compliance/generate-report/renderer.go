package generatereport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Renderer turns report data into a document.
type Renderer interface {
	Render(ctx context.Context, data ReportData) ([]byte, error)
}

const (
	pageMargin = 20.0
	labelWidth = 50.0
	valueWidth = 120.0
	lineHeight = 6.0
)

// PDFRenderer lays out an A4 report with the core Helvetica font.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

func (r *PDFRenderer) Render(ctx context.Context, data ReportData) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle(data.Title, true)
	pdf.SetCreator("label-compliance", true)
	pdf.AddPage()

	doc := &document{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	doc.write(data)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("layout report: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	return buf.Bytes(), nil
}

type document struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (d *document) write(data ReportData) {
	verdict := data.Verdict
	status := verdict.ComplianceStatus()
	coverage := formatPercent(verdict.CoveragePercent)

	d.pdf.SetFont("Helvetica", "B", 20)
	d.pdf.SetTextColor(0, 0, 139)
	d.pdf.CellFormat(0, 12, d.tr(data.Title), "", 1, "C", false, 0, "")
	d.pdf.Ln(6)

	d.pdf.SetTextColor(0, 0, 0)
	d.pdf.SetFont("Helvetica", "B", 10)
	d.pdf.CellFormat(35, lineHeight, "Report Generated:", "", 0, "L", false, 0, "")
	d.pdf.SetFont("Helvetica", "", 10)
	d.pdf.CellFormat(0, lineHeight, data.GeneratedAt.Format("2006-01-02 15:04:05"), "", 1, "L", false, 0, "")
	d.pdf.Ln(4)

	if verdict.IsCompliant {
		d.pdf.SetTextColor(0, 128, 0)
	} else {
		d.pdf.SetTextColor(200, 0, 0)
	}
	d.pdf.SetFont("Helvetica", "B", 16)
	d.pdf.CellFormat(0, 10, "COMPLIANCE STATUS: "+status, "", 1, "C", false, 0, "")
	d.pdf.SetTextColor(0, 0, 0)
	d.pdf.SetFont("Helvetica", "B", 11)
	d.pdf.CellFormat(0, lineHeight, "Coverage: "+coverage, "", 1, "L", false, 0, "")
	d.pdf.Ln(6)

	d.heading("Product Information")
	d.row("Product Name", data.Product.ProductName)
	d.row("Destination", data.Product.Destination)
	d.row("Ingredients", data.Product.Ingredients)
	d.row("Net Weight", data.Product.Weight)
	d.row("Manufacturer", data.Product.Manufacturer)
	d.pdf.Ln(6)

	d.heading("Compliance Summary")
	d.row("Total Requirements", strconv.Itoa(verdict.TotalRequired))
	d.row("Requirements Met", strconv.Itoa(verdict.MatchedCount))
	d.row("Partial Matches", strconv.Itoa(verdict.PartialCount))
	d.row("Coverage Percentage", coverage)
	d.row("Overall Status", status)
	d.pdf.Ln(6)

	d.issues(data)
	d.evidence(verdict.Evidence)

	if verdict.Notes != "" {
		d.heading("Analysis Notes")
		d.paragraph(verdict.Notes)
		d.pdf.Ln(4)
	}

	d.heading("Applicable Regulations")
	answer := data.Regulations.AnswerText()
	if strings.TrimSpace(answer) == "" {
		answer = "No regulations retrieved"
	}
	d.paragraph(answer)

	if data.Regulations != nil && len(data.Regulations.Sources) > 0 {
		d.pdf.Ln(2)
		d.bold("References:")
		for _, source := range data.Regulations.Sources {
			d.paragraph("• " + source)
		}
	}
}

func (d *document) issues(data ReportData) {
	v := data.Verdict
	if len(v.MissingItems) == 0 && len(v.PartialMatches) == 0 && len(v.Conflicts) == 0 {
		return
	}
	d.heading("Issues and Recommendations")

	if len(v.MissingItems) > 0 {
		d.bold("Missing Requirements:")
		for _, item := range v.MissingItems {
			d.paragraph(fmt.Sprintf("• %s: %s", orNA(item.Key), orNA(item.RequirementText)))
		}
		d.pdf.Ln(3)
	}
	if len(v.PartialMatches) > 0 {
		d.bold("Partial Matches (Need Correction):")
		for _, item := range v.PartialMatches {
			d.paragraph(fmt.Sprintf("• %s: %s", orNA(item.Key), orNA(item.RequirementText)))
			d.paragraph("  Current: " + orNA(item.Observed))
		}
		d.pdf.Ln(3)
	}
	if len(v.Conflicts) > 0 {
		d.bold("Conflicts (Must Fix):")
		for _, c := range v.Conflicts {
			d.paragraph(fmt.Sprintf("• %s: %s", orNA(c.Type), orNA(c.Detail)))
			d.paragraph("  Found: " + orNA(c.Observed))
		}
		d.pdf.Ln(3)
	}
}

// evidence prints non-empty evidence values sorted by key.
func (d *document) evidence(evidence map[string]interface{}) {
	keys := make([]string, 0, len(evidence))
	for k, v := range evidence {
		if s := evidenceValue(v); s != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return
	}
	sort.Strings(keys)

	d.heading("Evidence Found on Label")
	caser := cases.Title(language.English)
	for _, k := range keys {
		d.row(caser.String(strings.ReplaceAll(k, "_", " ")), evidenceValue(evidence[k]))
	}
	d.pdf.Ln(6)
}

func evidenceValue(v interface{}) string {
	var s string
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		s = t
	case map[string]interface{}, []interface{}:
		b, _ := json.Marshal(t)
		s = string(b)
	default:
		s = fmt.Sprint(t)
	}
	s = strings.TrimSpace(s)
	switch s {
	case "None", "null", "false", "[]", "{}":
		return ""
	}
	return s
}

func (d *document) heading(text string) {
	d.pdf.SetFont("Helvetica", "B", 14)
	d.pdf.SetTextColor(0, 0, 139)
	d.pdf.CellFormat(0, 9, d.tr(text), "", 1, "L", false, 0, "")
	d.pdf.SetTextColor(0, 0, 0)
}

func (d *document) bold(text string) {
	d.pdf.SetFont("Helvetica", "B", 10)
	d.pdf.CellFormat(0, lineHeight, d.tr(text), "", 1, "L", false, 0, "")
}

func (d *document) paragraph(text string) {
	d.pdf.SetFont("Helvetica", "", 10)
	d.pdf.MultiCell(0, 5, d.tr(text), "", "L", false)
}

// row draws one bordered label/value line, growing with the wrapped value.
func (d *document) row(label, value string) {
	value = d.tr(value)
	d.pdf.SetFont("Helvetica", "", 10)
	// value is cp1252 bytes here, so it is measured bytewise like MultiCell wraps it.
	lines := d.pdf.SplitLines([]byte(value), valueWidth)
	height := lineHeight * float64(max(1, len(lines)))

	_, pageHeight := d.pdf.GetPageSize()
	_, _, _, bottom := d.pdf.GetMargins()
	if d.pdf.GetY()+height > pageHeight-bottom {
		d.pdf.AddPage()
	}

	x, y := d.pdf.GetXY()
	d.pdf.SetFont("Helvetica", "B", 10)
	d.pdf.SetFillColor(211, 211, 211)
	d.pdf.CellFormat(labelWidth, height, d.tr(label), "1", 0, "L", true, 0, "")
	d.pdf.SetFont("Helvetica", "", 10)
	d.pdf.MultiCell(valueWidth, lineHeight, value, "1", "L", false)
	d.pdf.SetXY(x, y+height)
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
