package upload

import (
	"context"
	"fmt"
	"time"

	"github.com/sells-group/birthday-leads/internal/model"
	"github.com/sells-group/birthday-leads/pkg/erpnext"
)

// leadSource is the attribution written to every created Lead.
const leadSource = "Birthday Leads Export"

// RemoteStore abstracts the remote CRM's lead resource. Both operations are
// safe to call repeatedly; creation performs no deduplication of its own,
// that is entirely the coordinator's job.
type RemoteStore interface {
	// FindExistingKeys returns which of the given business keys already
	// exist remotely.
	FindExistingKeys(ctx context.Context, keys []string) (map[string]bool, error)

	// Create stores one lead. The timestamp is embedded in the record's
	// audit note.
	Create(ctx context.Context, lead model.Lead, ts time.Time) error
}

// ERPNextStore adapts the erpnext client to the RemoteStore contract.
type ERPNextStore struct {
	client erpnext.Client
}

// NewERPNextStore wraps an erpnext client.
func NewERPNextStore(client erpnext.Client) *ERPNextStore {
	return &ERPNextStore{client: client}
}

// FindExistingKeys implements RemoteStore.
func (s *ERPNextStore) FindExistingKeys(ctx context.Context, keys []string) (map[string]bool, error) {
	return s.client.FindLeadKeys(ctx, keys)
}

// Create implements RemoteStore, mapping the lead onto the ERPNext Lead
// doctype with a human-readable audit note.
func (s *ERPNextStore) Create(ctx context.Context, lead model.Lead, ts time.Time) error {
	notes := fmt.Sprintf("Imported by %s on %s. Child date of birth: %s.",
		leadSource,
		ts.Format("2006-01-02 15:04"),
		lead.BirthDate.Format("2006-01-02"),
	)

	return s.client.CreateLead(ctx, erpnext.LeadPayload{
		LeadName:    leadName(lead),
		FirstName:   lead.FirstName,
		LastName:    lead.LastName,
		EmailID:     lead.Email,
		MobileNo:    lead.Phone,
		BusinessKey: lead.BusinessKey,
		Source:      leadSource,
		Notes:       notes,
	})
}

// leadName prefers the guardian as the lead's display name, since the lead
// is the person the CRM will contact.
func leadName(lead model.Lead) string {
	if lead.GuardianName != "" {
		return lead.GuardianName
	}
	return lead.ChildName
}
