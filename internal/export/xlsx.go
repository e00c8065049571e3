package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/birthday-leads/internal/model"
)

// WriteXLSX writes candidates as a single-sheet xlsx workbook.
func WriteXLSX(candidates []model.Candidate, path string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range columns {
		header.AddCell().Value = col
	}

	for _, c := range candidates {
		row := sheet.AddRow()
		for _, field := range buildRow(c) {
			row.AddCell().Value = field
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "export: save xlsx")
	}
	return nil
}
