// Package report формирует PDF-версию месячного финансового отчёта.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/magabrotheeeer/finance-tracker/internal/lib/period"
	"github.com/magabrotheeeer/finance-tracker/internal/models"
)

var (
	colorPrimary    = [3]int{30, 58, 95}    // тёмно-синяя шапка
	colorAccent     = [3]int{46, 204, 113}  // прибыль
	colorDanger     = [3]int{231, 76, 60}   // убыток
	colorTextDark   = [3]int{44, 62, 80}
	colorTextMuted  = [3]int{127, 140, 141}
	colorBackground = [3]int{248, 249, 250} // фон строк-заголовков
	colorTableAlt   = [3]int{241, 245, 249} // чередование строк
)

// Generator генерирует PDF-отчёты
type Generator struct{}

// NewGenerator создает новый генератор отчётов
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate собирает отчёт за месяц для пользователя из задания
func (g *Generator) Generate(job models.ReportJob) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 25)
	pdf.AddPage()

	g.writeHeader(pdf, job)

	if job.Record == nil {
		pdf.Ln(20)
		pdf.SetFont("Arial", "", 12)
		pdf.SetTextColor(colorTextMuted[0], colorTextMuted[1], colorTextMuted[2])
		pdf.CellFormat(0, 10, "No financial data recorded for this period.", "", 1, "C", false, 0, "")
	} else {
		rec := job.Record
		g.writeRevenueSection(pdf, rec)
		g.writeCostsSection(pdf, rec)
		g.writeSummarySection(pdf, rec)
	}

	pdf.SetY(-20)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(colorTextMuted[0], colorTextMuted[1], colorTextMuted[2])
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated on %s", time.Now().UTC().Format("02 Jan 2006 15:04 UTC")), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("PDF output error: %w", err)
	}

	return buf.Bytes(), nil
}

func (g *Generator) writeHeader(pdf *fpdf.Fpdf, job models.ReportJob) {
	pageWidth, _ := pdf.GetPageSize()

	pdf.SetFillColor(colorPrimary[0], colorPrimary[1], colorPrimary[2])
	pdf.Rect(0, 0, pageWidth, 8, "F")

	pdf.SetY(20)
	pdf.SetFont("Arial", "B", 22)
	pdf.SetTextColor(colorPrimary[0], colorPrimary[1], colorPrimary[2])
	pdf.CellFormat(0, 12, "Monthly Financial Report", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 13)
	pdf.SetTextColor(colorTextDark[0], colorTextDark[1], colorTextDark[2])
	pdf.CellFormat(0, 8, period.Label(job.Year, job.Month), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 7, "Business", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)

	rows := [][2]string{
		{"Name", job.BusinessName},
		{"Type", job.BusinessType},
		{"Owner", job.FirstName + " " + job.LastName},
		{"Email", job.Email},
	}
	for _, row := range rows {
		if row[1] == "" || row[1] == " " {
			continue
		}
		pdf.SetTextColor(colorTextMuted[0], colorTextMuted[1], colorTextMuted[2])
		pdf.CellFormat(35, 6, row[0], "", 0, "L", false, 0, "")
		pdf.SetTextColor(colorTextDark[0], colorTextDark[1], colorTextDark[2])
		pdf.CellFormat(0, 6, row[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)
}

func (g *Generator) writeRevenueSection(pdf *fpdf.Fpdf, rec *models.Record) {
	g.writeTable(pdf, "Revenue", [][2]any{
		{"Services revenue", rec.ServicesRevenue},
		{"Products revenue", rec.ProductsRevenue},
		{"Other revenue", rec.OtherRevenue},
	}, "Total revenue", rec.TotalRevenue())
}

func (g *Generator) writeCostsSection(pdf *fpdf.Fpdf, rec *models.Record) {
	g.writeTable(pdf, "Variable costs", [][2]any{
		{"Cost of goods", rec.GoodsCost},
		{"Commissions", rec.Commissions},
		{"Marketing (variable)", rec.VariableMarketing},
	}, "Total variable costs", rec.VariableCosts())

	g.writeTable(pdf, "Fixed costs", [][2]any{
		{"Rent", rec.Rent},
		{"Salaries", rec.Salaries},
		{"Utilities", rec.Utilities},
		{"Marketing (fixed)", rec.FixedMarketing},
		{"Other fixed costs", rec.OtherFixedCosts},
	}, "Total fixed costs", rec.FixedCosts())
}

func (g *Generator) writeSummarySection(pdf *fpdf.Fpdf, rec *models.Record) {
	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(colorTextDark[0], colorTextDark[1], colorTextDark[2])
	pdf.CellFormat(0, 8, "Summary", "", 1, "L", false, 0, "")

	profit := rec.NetProfit()
	profitColor := colorAccent
	if profit < 0 {
		profitColor = colorDanger
	}

	pdf.SetFont("Arial", "", 10)
	g.summaryRow(pdf, "Total revenue", rec.TotalRevenue(), colorTextDark)
	g.summaryRow(pdf, "Total costs", rec.TotalCosts(), colorTextDark)
	g.summaryRow(pdf, "Net profit", profit, profitColor)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetTextColor(profitColor[0], profitColor[1], profitColor[2])
	pdf.CellFormat(90, 7, "Profit margin", "T", 0, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("%.2f %%", rec.MarginPercent()), "T", 1, "R", false, 0, "")
}

func (g *Generator) summaryRow(pdf *fpdf.Fpdf, label string, value float64, color [3]int) {
	pdf.SetTextColor(color[0], color[1], color[2])
	pdf.CellFormat(90, 7, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 7, formatMoney(value), "", 1, "R", false, 0, "")
}

func (g *Generator) writeTable(pdf *fpdf.Fpdf, title string, rows [][2]any, totalLabel string, total float64) {
	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(colorTextDark[0], colorTextDark[1], colorTextDark[2])
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	for i, row := range rows {
		fill := i%2 == 1
		pdf.SetFillColor(colorTableAlt[0], colorTableAlt[1], colorTableAlt[2])
		pdf.SetTextColor(colorTextDark[0], colorTextDark[1], colorTextDark[2])
		pdf.CellFormat(90, 7, row[0].(string), "", 0, "L", fill, 0, "")
		pdf.CellFormat(0, 7, formatMoney(row[1].(float64)), "", 1, "R", fill, 0, "")
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(colorBackground[0], colorBackground[1], colorBackground[2])
	pdf.CellFormat(90, 7, totalLabel, "T", 0, "L", true, 0, "")
	pdf.CellFormat(0, 7, formatMoney(total), "T", 1, "R", true, 0, "")
	pdf.Ln(4)
}

func formatMoney(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
