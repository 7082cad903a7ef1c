package excel

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/gigpay/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(report model.BestClientsReport) ([]byte, error) {
	file := excelize.NewFile()

	sheet := "Best clients"
	file.SetSheetName("Sheet1", sheet)

	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	totalPaid := decimal.Zero
	for _, client := range report.Clients {
		totalPaid = totalPaid.Add(client.Paid)
	}

	set("A1", "Report")
	set("B1", "Best clients by paid job total")
	set("A2", "Period start")
	set("B2", formatDate(report.PeriodStart))
	set("A3", "Period end")
	set("B3", formatDate(report.PeriodEnd))
	set("A4", "Clients")
	set("B4", len(report.Clients))
	set("A5", "Total paid")
	set("B5", totalPaid.StringFixed(2))

	tableRow := 7
	set(fmt.Sprintf("A%d", tableRow), "Client")
	set(fmt.Sprintf("B%d", tableRow), "Client ID")
	set(fmt.Sprintf("C%d", tableRow), "Paid")

	for i, client := range report.Clients {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), client.FullName)
		set(fmt.Sprintf("B%d", row), client.ID.String())
		set(fmt.Sprintf("C%d", row), client.Paid.StringFixed(2))
	}

	_ = file.SetColWidth(sheet, "A", "A", 32)
	_ = file.SetColWidth(sheet, "B", "B", 40)
	_ = file.SetColWidth(sheet, "C", "C", 16)

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
