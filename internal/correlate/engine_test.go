package correlate

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/birthday-leads/internal/model"
	"github.com/sells-group/birthday-leads/internal/progress"
)

func testOptions() Options {
	return Options{
		WindowStart: time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
		WindowEnd:   time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC),
		MinAge:      2,
		MaxAge:      12,
		Region:      "AE",
		Today:       time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC),
	}
}

func row(ordinal int, first, last, email, mobile, dob string) model.Row {
	return model.Row{
		Ordinal:   ordinal,
		FirstName: first,
		LastName:  last,
		Email:     email,
		Mobile:    mobile,
		BirthDate: dob,
	}
}

func TestEngineRun(t *testing.T) {
	rows := []model.Row{
		row(1, "Khalid", "Hassan", "khalid@example.com", "0501234567", "1985-03-10"),
		row(2, "Omar", "Hassan", "khalid@example.com", "", "2018-04-03"),
		row(3, "Lina", "Hassan", "", "0501234567", "2020-04-20"),
		row(4, "Adult", "OffWindow", "other@example.com", "0521111111", "1990-10-01"),
		row(5, "Child", "OffWindow", "other@example.com", "", "2018-05-05"),
	}

	engine := New(testOptions(), nil)
	candidates, err := engine.Run(context.Background(), rows)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	// Sorted ascending by next occurrence.
	assert.Equal(t, "Omar", candidates[0].FirstName)
	assert.Equal(t, "Lina", candidates[1].FirstName)

	// Guardian resolved via shared email for Omar, shared phone for Lina.
	assert.Equal(t, "Khalid Hassan", candidates[0].GuardianName)
	assert.Equal(t, "Khalid Hassan", candidates[1].GuardianName)

	// Turning ages, not ages today.
	assert.Equal(t, 7, candidates[0].AgeTurning)
	assert.Equal(t, 5, candidates[1].AgeTurning)

	// Key priority: Omar has no phone, so his email anchors the key; Lina
	// falls back through phone.
	assert.Equal(t, "khalid@example.com-2018-04-03", candidates[0].BusinessKey)
	assert.Equal(t, "971501234567-2020-04-20", candidates[1].BusinessKey)
}

func TestEngineAgeBoundaries(t *testing.T) {
	opts := testOptions()
	opts.MinAge = 5
	opts.MaxAge = 7

	rows := []model.Row{
		row(1, "TooYoung", "A", "a@example.com", "", "2021-04-10"), // turning 4
		row(2, "AtMin", "B", "b@example.com", "", "2020-04-10"),    // turning 5
		row(3, "AtMax", "C", "c@example.com", "", "2018-04-10"),    // turning 7
		row(4, "TooOld", "D", "d@example.com", "", "2017-04-10"),   // turning 8
	}

	candidates, err := New(opts, nil).Run(context.Background(), rows)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "AtMin", candidates[0].FirstName)
	assert.Equal(t, "AtMax", candidates[1].FirstName)
}

func TestEngineWrappedWindowOrdering(t *testing.T) {
	opts := testOptions()
	opts.WindowStart = time.Date(2025, time.December, 20, 0, 0, 0, 0, time.UTC)
	opts.WindowEnd = time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)

	rows := []model.Row{
		row(1, "January", "Child", "jan@example.com", "", "2018-01-03"),
		row(2, "December", "Child", "dec@example.com", "", "2018-12-25"),
	}

	candidates, err := New(opts, nil).Run(context.Background(), rows)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	// December's occurrence is in 2025, January's in 2026.
	assert.Equal(t, "December", candidates[0].FirstName)
	assert.Equal(t, "January", candidates[1].FirstName)
}

func TestEngineStrictPhoneValidation(t *testing.T) {
	opts := testOptions()
	opts.ValidatePhones = true

	rows := []model.Row{
		row(1, "Khalid", "Hassan", "", "0511234567", "1985-03-10"), // unknown operator prefix
		row(2, "Valid", "Hassan", "", "0501234567", "2018-04-03"),
		row(3, "Invalid", "Hassan", "", "0511234567", "2018-04-10"),
		row(4, "NoPhone", "Hassan", "", "", "2018-04-15"),
	}

	candidates, err := New(opts, nil).Run(context.Background(), rows)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Valid", candidates[0].FirstName)
}

// A child dropped for an invalid phone still resolves a guardian through
// that phone before the drop decision: the index carries unvalidated keys,
// and only the export of the child itself is gated on validity.
func TestEngineGuardianResolvedBeforeStrictDrop(t *testing.T) {
	opts := testOptions()
	opts.ValidatePhones = true
	e := New(opts, nil)

	adult := e.normalizeRow(row(1, "Khalid", "Hassan", "", "0511234567", "1985-03-10"), opts.Today)
	child := e.normalizeRow(row(2, "Omar", "Hassan", "", "0511234567", "2018-04-03"), opts.Today)

	require.NotEmpty(t, child.PhoneKey)
	require.False(t, child.PhoneValid)

	index := NewGuardianIndex()
	index.Add(adult)

	// The shared unvalidated key anchors the guardian match.
	g := index.Resolve(child.Email, child.PhoneKey, false)
	require.NotNil(t, g)
	assert.Equal(t, "Khalid", g.FirstName)

	// The child itself is still excluded from the output.
	candidates, err := e.Run(context.Background(), []model.Row{
		row(1, "Khalid", "Hassan", "", "0511234567", "1985-03-10"),
		row(2, "Omar", "Hassan", "", "0511234567", "2018-04-03"),
	})
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestEngineMalformedDatesSkipped(t *testing.T) {
	rows := []model.Row{
		row(1, "Good", "A", "a@example.com", "", "2018-04-03"),
		row(2, "Bad", "B", "b@example.com", "", "not a date"),
		row(3, "Empty", "C", "c@example.com", "", ""),
		row(4, "AlsoGood", "D", "d@example.com", "", "10.04.2018"),
	}

	candidates, err := New(testOptions(), nil).Run(context.Background(), rows)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "Good", candidates[0].FirstName)
	assert.Equal(t, "AlsoGood", candidates[1].FirstName)
}

func TestEngineEmptyInput(t *testing.T) {
	candidates, err := New(testOptions(), nil).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestEngineKeyStability(t *testing.T) {
	var rows []model.Row
	for i := 1; i <= 20; i++ {
		rows = append(rows, row(i, fmt.Sprintf("Child%d", i), "Hassan",
			fmt.Sprintf("c%d@example.com", i), "", fmt.Sprintf("2018-04-%02d", i)))
	}

	first, err := New(testOptions(), nil).Run(context.Background(), rows)
	require.NoError(t, err)
	second, err := New(testOptions(), nil).Run(context.Background(), rows)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].BusinessKey, second[i].BusinessKey)
	}
}

func TestEngineCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(testOptions(), nil).Run(ctx, []model.Row{
		row(1, "Omar", "Hassan", "omar@example.com", "", "2018-04-03"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngineProgressMonotonic(t *testing.T) {
	var rows []model.Row
	for i := 1; i <= 50; i++ {
		rows = append(rows, row(i, fmt.Sprintf("C%d", i), "H", "", "", "2018-04-03"))
	}

	last := -1
	sink := progress.Func(func(pct int, _ string) {
		assert.GreaterOrEqual(t, pct, last)
		last = pct
	})

	_, err := New(testOptions(), sink).Run(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, 100, last)
}
