// Package ingest parses the raw customer export into closed row records,
// tolerating missing optional columns, mixed delimiters, and BOM-prefixed
// UTF-8/UTF-16 encodings.
package ingest

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/sells-group/birthday-leads/internal/model"
)

// Column header aliases, matched case-insensitively after trimming.
var (
	firstNameAliases   = []string{"first name", "firstname"}
	lastNameAliases    = []string{"last name", "lastname", "surname"}
	emailAliases       = []string{"email", "e-mail"}
	mobileAliases      = []string{"mobile", "mobile number", "phone"}
	birthDateAliases   = []string{"date of birth", "dob", "birthdate", "birthday"}
	visitorTypeAliases = []string{"visitor type", "visitortype"}
)

// ReadFile parses the export at path. An unreadable or empty file is a
// fatal error; individual malformed rows are not.
func ReadFile(path string) ([]model.Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: read source file")
	}
	rows, err := Parse(data)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: "+path)
	}
	return rows, nil
}

// Parse decodes and parses a raw export. The encoding is detected from a
// byte-order mark (UTF-8, UTF-16LE, UTF-16BE), defaulting to UTF-8; the
// delimiter is sniffed from the header line.
func Parse(data []byte) ([]model.Row, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, eris.New("empty source file")
	}

	text, err := decode(data)
	if err != nil {
		return nil, eris.Wrap(err, "decode source")
	}

	delim := detectDelimiter(firstLine(text))

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = delim
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1 // allow variable fields

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrap(err, "read header")
	}

	cols, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	var rows []model.Row
	ordinal := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A single unparseable line is a row-level error, not fatal.
			continue
		}
		ordinal++

		row := model.Row{
			Ordinal:   ordinal,
			FirstName: cols.field(record, cols.firstName),
			LastName:  cols.field(record, cols.lastName),
			Email:     cols.field(record, cols.email),
			Mobile:    cols.field(record, cols.mobile),
			BirthDate: cols.field(record, cols.birthDate),
		}
		if cols.visitorType >= 0 {
			vt := cols.field(record, cols.visitorType)
			row.VisitorType = &vt
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// columns holds the resolved index of each known column; -1 when absent.
type columns struct {
	firstName   int
	lastName    int
	email       int
	mobile      int
	birthDate   int
	visitorType int
}

func (c columns) field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func mapHeader(header []string) (columns, error) {
	cols := columns{firstName: -1, lastName: -1, email: -1, mobile: -1, birthDate: -1, visitorType: -1}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))
		switch {
		case matches(name, firstNameAliases):
			cols.firstName = i
		case matches(name, lastNameAliases):
			cols.lastName = i
		case matches(name, emailAliases):
			cols.email = i
		case matches(name, mobileAliases):
			cols.mobile = i
		case matches(name, birthDateAliases):
			cols.birthDate = i
		case matches(name, visitorTypeAliases):
			cols.visitorType = i
		}
	}

	var missing []string
	if cols.firstName < 0 {
		missing = append(missing, "first name")
	}
	if cols.lastName < 0 {
		missing = append(missing, "last name")
	}
	if cols.email < 0 {
		missing = append(missing, "email")
	}
	if cols.mobile < 0 {
		missing = append(missing, "mobile")
	}
	if cols.birthDate < 0 {
		missing = append(missing, "date of birth")
	}
	if len(missing) > 0 {
		return cols, eris.New("missing required columns: " + strings.Join(missing, ", "))
	}
	return cols, nil
}

func matches(name string, aliases []string) bool {
	for _, a := range aliases {
		if name == a {
			return true
		}
	}
	return false
}

// decode converts the raw bytes to a UTF-8 string based on an optional BOM.
func decode(data []byte) (string, error) {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return string(data[3:]), nil
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return decodeUTF16(data, unicode.LittleEndian)
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return decodeUTF16(data, unicode.BigEndian)
	default:
		return string(data), nil
	}
}

func decodeUTF16(data []byte, endian unicode.Endianness) (string, error) {
	dec := unicode.UTF16(endian, unicode.UseBOM).NewDecoder()
	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return "", eris.Wrap(err, "utf-16 decode")
	}
	return string(out), nil
}

// detectDelimiter samples the header line and picks whichever of semicolon
// and comma occurs more often, defaulting to comma.
func detectDelimiter(line string) rune {
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';'
	}
	return ','
}

func firstLine(text string) string {
	if i := strings.IndexAny(text, "\r\n"); i >= 0 {
		return text[:i]
	}
	return text
}
