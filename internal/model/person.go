package model

import "time"

// VisitorTypeResident is the visitor type value that marks an adult as a
// resident for guardian tie-breaking.
const VisitorTypeResident = "Resident"

// Person is the normalized view of one source row. Many Persons coexist in
// memory for the duration of a single run; they are discarded when the run
// completes.
type Person struct {
	Ordinal     int
	FirstName   string
	LastName    string
	Email       string
	MobileRaw   string
	PhoneKey    string // digits only, country code applied, no leading +
	PhoneValid  bool
	BirthDate   *time.Time // nil when the raw value did not parse
	Age         int        // as of the run date; meaningless when BirthDate is nil
	VisitorType string     // empty when the column is absent or blank
}

// IsAdult reports whether the person can anchor a guardian match: a
// parseable date of birth and an age of at least 18 at processing time.
func (p Person) IsAdult() bool {
	return p.BirthDate != nil && p.Age >= 18
}

// FullName joins the non-empty name parts with a space.
func (p Person) FullName() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	default:
		return p.LastName
	}
}

// AgeOn returns the person's age in whole years on the given date.
func AgeOn(birth, on time.Time) int {
	age := on.Year() - birth.Year()
	anniversary := time.Date(on.Year(), birth.Month(), birth.Day(), 0, 0, 0, 0, time.UTC)
	if on.Before(anniversary) {
		age--
	}
	return age
}
