package model

import "time"

// Candidate is a child row that survived every filter and is eligible for
// export and upload.
type Candidate struct {
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"` // normalized key
	BirthDate      time.Time `json:"birth_date"`
	VisitorType    string    `json:"visitor_type,omitempty"`
	GuardianName   string    `json:"guardian_name,omitempty"`
	AgeTurning     int       `json:"age_turning"`
	BirthdayDay    int       `json:"birthday_day"`
	BirthdayMonth  int       `json:"birthday_month"`
	NextOccurrence time.Time `json:"next_occurrence"` // sort order only
	BusinessKey    string    `json:"business_key"`
}

// FullName joins the non-empty name parts with a space.
func (c Candidate) FullName() string {
	switch {
	case c.FirstName != "" && c.LastName != "":
		return c.FirstName + " " + c.LastName
	case c.FirstName != "":
		return c.FirstName
	default:
		return c.LastName
	}
}

// Lead is the flattened projection of a Candidate handed to the upload path.
type Lead struct {
	ChildName    string    `json:"child_name"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	GuardianName string    `json:"guardian_name,omitempty"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	AgeTurning   int       `json:"age_turning"`
	BirthDate    time.Time `json:"birth_date"`
	BusinessKey  string    `json:"business_key"`
}

// LeadFromCandidate projects a Candidate onto the upload schema.
func LeadFromCandidate(c Candidate) Lead {
	return Lead{
		ChildName:    c.FullName(),
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		GuardianName: c.GuardianName,
		Email:        c.Email,
		Phone:        c.Phone,
		AgeTurning:   c.AgeTurning,
		BirthDate:    c.BirthDate,
		BusinessKey:  c.BusinessKey,
	}
}
