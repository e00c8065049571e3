package correlate

import (
	"fmt"
	"strings"
	"time"
)

// BusinessKey derives the stable per-person-per-birthdate identity string
// used for deduplication within a run and against the remote store.
// Identity priority: normalized phone, then email, then child name, then
// the row ordinal. The ISO date of birth is always suffixed.
//
// The row-ordinal fallback is not stable across re-exports of the same
// data; callers log a warning when it is used.
func BusinessKey(phoneKey, email, firstName, lastName string, ordinal int, dob time.Time) string {
	var id string
	switch {
	case phoneKey != "":
		id = phoneKey
	case strings.TrimSpace(email) != "":
		id = strings.TrimSpace(email)
	case strings.TrimSpace(firstName+lastName) != "":
		id = strings.ReplaceAll(firstName+lastName, " ", "")
	default:
		id = fmt.Sprintf("row%d", ordinal)
	}
	return strings.ToLower(id) + "-" + dob.Format("2006-01-02")
}

// IsOrdinalKey reports whether the key was built from the row-ordinal
// fallback, i.e. the row carried no identity information at all.
func IsOrdinalKey(phoneKey, email, firstName, lastName string) bool {
	return phoneKey == "" &&
		strings.TrimSpace(email) == "" &&
		strings.TrimSpace(firstName+lastName) == ""
}
