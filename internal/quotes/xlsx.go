package quotes

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/Simplici0/estimator/internal/money"
)

var exportHeader = []string{
	"ID", "Created", "Contact", "Email", "Project type", "Complexity", "Pages",
	"Features", "Timeline", "Tech stack", "Client type", "Currency",
	"Subtotal", "Total", "Range min", "Range max",
}

// WriteXLSX writes one row per quote to a single-sheet workbook.
func WriteXLSX(w io.Writer, list []Quote) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Estimates")
	if err != nil {
		return eris.Wrap(err, "quotes: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range exportHeader {
		header.AddCell().SetString(h)
	}

	for _, q := range list {
		row := sheet.AddRow()
		in, b := q.Inputs, q.Breakdown

		row.AddCell().SetString(q.ID)
		row.AddCell().SetString(q.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
		row.AddCell().SetString(q.ContactName)
		row.AddCell().SetString(q.ContactEmail)
		row.AddCell().SetString(string(in.ProjectType))
		row.AddCell().SetString(string(in.Complexity))
		row.AddCell().SetInt(in.NumPages)
		row.AddCell().SetString(enabledFeatures(in.Features))
		row.AddCell().SetString(string(in.TimelineUrgency))
		row.AddCell().SetString(string(in.TechStackComplexity))
		row.AddCell().SetString(string(in.ClientType))
		row.AddCell().SetString(q.Currency)
		row.AddCell().SetFloat(money.RoundCents(b.Subtotal))
		row.AddCell().SetFloat(money.RoundCents(b.Total))
		row.AddCell().SetInt64(b.Range.Min)
		row.AddCell().SetInt64(b.Range.Max)
	}

	if err := file.Write(w); err != nil {
		return eris.Wrap(err, "quotes: write xlsx")
	}
	return nil
}
