package correlate

import (
	"strings"

	"github.com/sells-group/birthday-leads/internal/model"
)

// GuardianIndex holds lookup structures over the adults of one run. It is
// populated during the index pass and read-only afterwards.
type GuardianIndex struct {
	byEmail map[string][]*model.Person
	byPhone map[string][]*model.Person
}

// NewGuardianIndex returns an empty index.
func NewGuardianIndex() *GuardianIndex {
	return &GuardianIndex{
		byEmail: make(map[string][]*model.Person),
		byPhone: make(map[string][]*model.Person),
	}
}

// Add registers an adult under its email and normalized phone key. An
// unvalidated phone still anchors matches, so validity is not checked here.
func (g *GuardianIndex) Add(p *model.Person) {
	if !p.IsAdult() {
		return
	}
	if email := strings.ToLower(strings.TrimSpace(p.Email)); email != "" {
		g.byEmail[email] = append(g.byEmail[email], p)
	}
	if p.PhoneKey != "" {
		g.byPhone[p.PhoneKey] = append(g.byPhone[p.PhoneKey], p)
	}
}

// Resolve finds the most plausible guardian for a child with the given
// contact data: email match first, then phone match. When preferResident is
// set and at least one matched adult is a resident, only residents are
// considered for the final tie-break, which always prefers an adult with a
// non-empty last name. Remaining ties resolve by file order.
func (g *GuardianIndex) Resolve(email, phoneKey string, preferResident bool) *model.Person {
	candidates := g.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if len(candidates) == 0 {
		candidates = g.byPhone[phoneKey]
	}
	if len(candidates) == 0 {
		return nil
	}

	if preferResident {
		var residents []*model.Person
		for _, p := range candidates {
			if p.VisitorType == model.VisitorTypeResident {
				residents = append(residents, p)
			}
		}
		if len(residents) > 0 {
			candidates = residents
		}
	}

	for _, p := range candidates {
		if p.LastName != "" {
			return p
		}
	}
	return candidates[0]
}
