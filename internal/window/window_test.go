package window

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextOccurrence(t *testing.T) {
	tests := []struct {
		name   string
		dob    time.Time
		start  time.Time
		end    time.Time
		want   time.Time
		wantOK bool
	}{
		{
			name:   "inside normal window",
			dob:    date(2015, time.April, 3),
			start:  date(2024, time.April, 1),
			end:    date(2024, time.April, 30),
			want:   date(2024, time.April, 3),
			wantOK: true,
		},
		{
			name:  "outside normal window",
			dob:   date(2015, time.May, 3),
			start: date(2024, time.April, 1),
			end:   date(2024, time.April, 30),
		},
		{
			name:   "window start inclusive",
			dob:    date(2010, time.April, 1),
			start:  date(2024, time.April, 1),
			end:    date(2024, time.April, 30),
			want:   date(2024, time.April, 1),
			wantOK: true,
		},
		{
			name:   "window end inclusive",
			dob:    date(2010, time.April, 30),
			start:  date(2024, time.April, 1),
			end:    date(2024, time.April, 30),
			want:   date(2024, time.April, 30),
			wantOK: true,
		},
		{
			name:   "leap birthday in leap year stays Feb 29",
			dob:    date(2012, time.February, 29),
			start:  date(2024, time.February, 25),
			end:    date(2024, time.March, 3),
			want:   date(2024, time.February, 29),
			wantOK: true,
		},
		{
			name:   "leap birthday in non-leap year maps to Feb 28",
			dob:    date(2012, time.February, 29),
			start:  date(2025, time.February, 25),
			end:    date(2025, time.March, 3),
			want:   date(2025, time.February, 28),
			wantOK: true,
		},
		{
			name:   "wrapped window matches December tail",
			dob:    date(2014, time.December, 25),
			start:  date(2024, time.December, 20),
			end:    date(2025, time.January, 5),
			want:   date(2024, time.December, 25),
			wantOK: true,
		},
		{
			name:   "wrapped window matches January head",
			dob:    date(2014, time.January, 3),
			start:  date(2024, time.December, 20),
			end:    date(2025, time.January, 5),
			want:   date(2025, time.January, 3),
			wantOK: true,
		},
		{
			name:   "wrap expressed with bare earlier end date",
			dob:    date(2014, time.January, 3),
			start:  date(2024, time.December, 20),
			end:    date(2024, time.January, 5),
			want:   date(2025, time.January, 3),
			wantOK: true,
		},
		{
			name:  "wrapped window excludes mid-year birthday",
			dob:   date(2014, time.June, 15),
			start: date(2024, time.December, 20),
			end:   date(2025, time.January, 5),
		},
		{
			name:  "wrapped window excludes day before start",
			dob:   date(2014, time.December, 19),
			start: date(2024, time.December, 20),
			end:   date(2025, time.January, 5),
		},
		{
			name:  "wrapped window excludes day after end",
			dob:   date(2014, time.January, 6),
			start: date(2024, time.December, 20),
			end:   date(2025, time.January, 5),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NextOccurrence(tt.dob, tt.start, tt.end)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNextOccurrenceIgnoresTimeOfDay(t *testing.T) {
	dob := time.Date(2015, time.April, 3, 14, 30, 0, 0, time.UTC)
	end := time.Date(2024, time.April, 3, 0, 0, 0, 0, time.UTC)
	got, ok := NextOccurrence(dob, date(2024, time.April, 1), end)
	require.True(t, ok)
	assert.Equal(t, date(2024, time.April, 3), got)
}

func TestTurningAge(t *testing.T) {
	dob := date(2015, time.April, 3)
	occ, ok := NextOccurrence(dob, date(2024, time.April, 1), date(2024, time.April, 30))
	require.True(t, ok)
	assert.Equal(t, 9, TurningAge(dob, occ))

	// A January match in a wrapped window turns the age of the later year.
	dob = date(2014, time.January, 3)
	occ, ok = NextOccurrence(dob, date(2024, time.December, 20), date(2025, time.January, 5))
	require.True(t, ok)
	assert.Equal(t, 11, TurningAge(dob, occ))
}
