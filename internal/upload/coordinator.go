// Package upload synchronizes candidate leads into the remote CRM without
// creating duplicates across repeated runs.
package upload

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/birthday-leads/internal/model"
	"github.com/sells-group/birthday-leads/internal/progress"
)

// Coordinator filters leads, reconciles them against the remote store, and
// creates only the records that do not exist yet.
type Coordinator struct {
	store RemoteStore
	sink  progress.Sink

	// DryRun stops after the existence reconciliation; nothing is created.
	DryRun bool

	now func() time.Time
}

// NewCoordinator creates an upload coordinator. A nil sink discards
// progress events.
func NewCoordinator(store RemoteStore, sink progress.Sink) *Coordinator {
	if sink == nil {
		sink = progress.Nop
	}
	return &Coordinator{store: store, sink: sink, now: time.Now}
}

// Upload runs the idempotent synchronization and returns aggregate counts.
// A failure to look up existing keys aborts the whole upload; a failure to
// create one lead is counted and the loop continues. Cancellation surfaces
// as context.Canceled, distinguishable from failure by errors.Is.
func (c *Coordinator) Upload(ctx context.Context, leads []model.Lead) (*model.UploadSummary, error) {
	log := zap.L()
	summary := &model.UploadSummary{Total: len(leads)}

	// Keyed and complete leads only, one per unique key.
	unique := make(map[string]model.Lead)
	var order []string
	for _, lead := range leads {
		key := strings.ToLower(strings.TrimSpace(lead.BusinessKey))
		if key == "" {
			summary.MissingKey++
			log.Warn("upload: lead dropped, no business key", zap.String("child", lead.ChildName))
			continue
		}
		if missing := missingFields(lead); len(missing) > 0 {
			summary.MissingFields++
			log.Warn("upload: lead dropped, incomplete",
				zap.String("key", key),
				zap.Strings("missing", missing),
			)
			continue
		}
		if _, seen := unique[key]; !seen {
			lead.BusinessKey = key // canonical form, matches the lookup
			unique[key] = lead
			order = append(order, key)
		}
	}
	summary.Candidates = len(unique)
	c.sink.Step(10, "filtered")

	if len(unique) == 0 {
		return summary, nil
	}

	keys := make([]string, 0, len(unique))
	for key := range unique {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	existing, err := c.store.FindExistingKeys(ctx, keys)
	if err != nil {
		// Without knowing what exists remotely, creation cannot proceed
		// safely.
		return summary, eris.Wrap(err, "upload: existence lookup")
	}
	c.sink.Step(25, "reconciled")

	if c.DryRun {
		for _, key := range order {
			if existing[key] {
				summary.Duplicates++
			}
		}
		log.Info("upload: dry run",
			zap.Int("would_create", summary.Candidates-summary.Duplicates),
			zap.Int("duplicates", summary.Duplicates),
		)
		return summary, nil
	}

	ts := c.now()
	for i, key := range order {
		if ctx.Err() != nil {
			return summary, eris.Wrap(ctx.Err(), "upload: cancelled")
		}

		lead := unique[key]
		if existing[key] {
			summary.Duplicates++
			log.Info("upload: duplicate skipped", zap.String("key", key))
		} else if err := c.store.Create(ctx, lead, ts); err != nil {
			summary.Failed++
			log.Error("upload: create failed", zap.String("key", key), zap.Error(err))
		} else {
			summary.Created++
		}

		c.sink.Step(25+75*(i+1)/len(order), "uploading")
	}

	log.Info("upload: complete",
		zap.Int("total", summary.Total),
		zap.Int("created", summary.Created),
		zap.Int("duplicates", summary.Duplicates),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

// missingFields lists the required fields a lead lacks: a contact name
// (guardian, or both child first and last), phone, email, child name, a
// positive turning age, and a date of birth.
func missingFields(lead model.Lead) []string {
	var missing []string
	if lead.GuardianName == "" && (lead.FirstName == "" || lead.LastName == "") {
		missing = append(missing, "contact name")
	}
	if lead.Phone == "" {
		missing = append(missing, "phone")
	}
	if lead.Email == "" {
		missing = append(missing, "email")
	}
	if lead.ChildName == "" {
		missing = append(missing, "child name")
	}
	if lead.AgeTurning <= 0 {
		missing = append(missing, "age")
	}
	if lead.BirthDate.IsZero() {
		missing = append(missing, "date of birth")
	}
	return missing
}
