// Package correlate builds the candidate list: it normalizes raw rows,
// indexes adults, links children to guardians, and filters for birthdays
// inside the processing window.
package correlate

import (
	"context"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/birthday-leads/internal/model"
	"github.com/sells-group/birthday-leads/internal/phone"
	"github.com/sells-group/birthday-leads/internal/progress"
	"github.com/sells-group/birthday-leads/internal/window"
)

// Options configures one correlation run.
type Options struct {
	WindowStart time.Time
	WindowEnd   time.Time
	MinAge      int
	MaxAge      int
	// ValidatePhones enables the international parser fallback during
	// normalization and drops children whose own phone key is missing or
	// invalid. Guardian indexing is unaffected.
	ValidatePhones bool
	// Region is the default region for ambiguous numbers, e.g. "AE".
	Region string
	// Today overrides the processing date; zero means time.Now.
	Today time.Time
}

// Engine runs the two-pass correlation over one row set.
type Engine struct {
	opts Options
	norm phone.Normalizer
	sink progress.Sink
}

// New creates a correlation engine. A nil sink discards progress events.
func New(opts Options, sink progress.Sink) *Engine {
	if sink == nil {
		sink = progress.Nop
	}
	return &Engine{
		opts: opts,
		norm: phone.Normalizer{Extended: opts.ValidatePhones, Region: opts.Region},
		sink: sink,
	}
}

// Accepted date-of-birth layouts, tried in order.
var dobLayouts = []string{"2006-01-02", "2.1.2006", "2/1/2006"}

func parseBirthDate(raw string) (time.Time, bool) {
	for _, layout := range dobLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Run executes both passes and returns the sorted candidate list. The
// guardian index must be complete before any filtering decision, because a
// child's guardian can appear later in file order than the child itself, so
// the passes are never fused.
func (e *Engine) Run(ctx context.Context, rows []model.Row) ([]model.Candidate, error) {
	log := zap.L()
	today := e.opts.Today
	if today.IsZero() {
		today = time.Now()
	}
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	hasVisitorType := len(rows) > 0 && rows[0].HasVisitorType()

	// Pass 1: normalize every row and index the adults.
	persons := make([]*model.Person, 0, len(rows))
	index := NewGuardianIndex()
	for i, row := range rows {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "correlate: cancelled")
		}

		p := e.normalizeRow(row, today)
		persons = append(persons, p)
		index.Add(p)

		e.sink.Step(percent(i+1, len(rows))/2, "indexing")
	}

	// Pass 2: window filtering, guardian resolution, key assignment.
	var candidates []model.Candidate
	skippedDates := 0
	for i, p := range persons {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "correlate: cancelled")
		}
		e.sink.Step(50+percent(i+1, len(persons))/2, "filtering")

		if p.BirthDate == nil {
			skippedDates++
			continue
		}

		occurrence, ok := window.NextOccurrence(*p.BirthDate, e.opts.WindowStart, e.opts.WindowEnd)
		if !ok {
			continue
		}
		turning := window.TurningAge(*p.BirthDate, occurrence)
		if turning < e.opts.MinAge || turning > e.opts.MaxAge {
			continue
		}

		var guardianName string
		if guardian := index.Resolve(p.Email, p.PhoneKey, hasVisitorType); guardian != nil {
			guardianName = guardian.FullName()
		}

		// The child's own phone must hold up when strict validation is on;
		// its unvalidated key was still usable for guardian lookup above.
		if e.opts.ValidatePhones && (p.PhoneKey == "" || !p.PhoneValid) {
			log.Debug("correlate: child dropped, phone failed validation",
				zap.Int("ordinal", p.Ordinal),
				zap.String("guardian", guardianName),
			)
			continue
		}

		if IsOrdinalKey(p.PhoneKey, p.Email, p.FirstName, p.LastName) {
			log.Warn("correlate: row has no identity signals, key is unstable across runs",
				zap.Int("ordinal", p.Ordinal),
			)
		}

		candidates = append(candidates, model.Candidate{
			FirstName:      p.FirstName,
			LastName:       p.LastName,
			Email:          p.Email,
			Phone:          p.PhoneKey,
			BirthDate:      *p.BirthDate,
			VisitorType:    p.VisitorType,
			GuardianName:   guardianName,
			AgeTurning:     turning,
			BirthdayDay:    p.BirthDate.Day(),
			BirthdayMonth:  int(p.BirthDate.Month()),
			NextOccurrence: occurrence,
			BusinessKey:    BusinessKey(p.PhoneKey, p.Email, p.FirstName, p.LastName, p.Ordinal, *p.BirthDate),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if !a.NextOccurrence.Equal(b.NextOccurrence) {
			return a.NextOccurrence.Before(b.NextOccurrence)
		}
		if a.BirthdayMonth != b.BirthdayMonth {
			return a.BirthdayMonth < b.BirthdayMonth
		}
		return a.BirthdayDay < b.BirthdayDay
	})

	log.Info("correlate: run complete",
		zap.Int("rows", len(rows)),
		zap.Int("candidates", len(candidates)),
		zap.Int("unparseable_dates", skippedDates),
	)
	e.sink.Step(100, "done")

	return candidates, nil
}

// normalizeRow builds the Person view of one raw row.
func (e *Engine) normalizeRow(row model.Row, today time.Time) *model.Person {
	key, valid := e.norm.Normalize(row.Mobile)

	p := &model.Person{
		Ordinal:    row.Ordinal,
		FirstName:  row.FirstName,
		LastName:   row.LastName,
		Email:      row.Email,
		MobileRaw:  row.Mobile,
		PhoneKey:   key,
		PhoneValid: valid,
	}
	if row.VisitorType != nil {
		p.VisitorType = *row.VisitorType
	}
	if dob, ok := parseBirthDate(row.BirthDate); ok {
		p.BirthDate = &dob
		p.Age = model.AgeOn(dob, today)
	}
	return p
}

func percent(done, total int) int {
	if total == 0 {
		return 100
	}
	return done * 100 / total
}
