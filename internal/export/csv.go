// Package export writes the candidate list as delimited-text and
// spreadsheet files with conflict-safe output paths.
package export

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/birthday-leads/internal/model"
)

// columns defines the ordered output columns shared by both writers.
var columns = []string{
	"First Name",
	"Last Name",
	"Guardian",
	"Email",
	"Mobile",
	"Date of Birth",
	"Turning Age",
	"Birthday",
	"Visitor Type",
	"Business Key",
}

// WriteCSV writes candidates as a semicolon-delimited file.
func WriteCSV(candidates []model.Candidate, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "export: create csv")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = ';'
	defer w.Flush()

	if err := w.Write(columns); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	for _, c := range candidates {
		if err := w.Write(buildRow(c)); err != nil {
			return eris.Wrap(err, "export: write row")
		}
	}
	w.Flush()
	return eris.Wrap(w.Error(), "export: flush csv")
}

func buildRow(c model.Candidate) []string {
	return []string{
		c.FirstName,
		c.LastName,
		c.GuardianName,
		c.Email,
		c.Phone,
		c.BirthDate.Format("2006-01-02"),
		strconv.Itoa(c.AgeTurning),
		c.NextOccurrence.Format("2006-01-02"),
		c.VisitorType,
		c.BusinessKey,
	}
}
