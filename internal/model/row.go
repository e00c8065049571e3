// Package model defines the data types shared across the extraction and
// upload pipeline.
package model

// Row is the closed record produced by the ingestor for one source line.
// Required columns are plain strings (possibly empty); columns that may be
// absent from the export entirely are pointers, nil when the column does not
// exist in the file.
type Row struct {
	Ordinal     int     `json:"ordinal"` // 1-based position in the source file
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Email       string  `json:"email"`
	Mobile      string  `json:"mobile"`
	BirthDate   string  `json:"birth_date"` // raw, unparsed
	VisitorType *string `json:"visitor_type,omitempty"`
}

// HasVisitorType reports whether the source file carried a visitor type
// column at all. The guardian tie-break only prefers residents when it did.
func (r Row) HasVisitorType() bool {
	return r.VisitorType != nil
}
