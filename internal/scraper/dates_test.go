package scraper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNormalizeDate(t *testing.T) {
	t.Parallel()

	ref := time.Date(2024, 1, 2, 18, 45, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "today token with time", raw: "Өнөөдөр 14:30", want: "2024-01-02 14:30"},
		{name: "yesterday token with time", raw: "Өчигдөр 09:00", want: "2024-01-01 09:00"},
		{name: "token without remainder", raw: "Өнөөдөр", want: "2024-01-02"},
		{name: "token with surrounding whitespace", raw: "  Өчигдөр   21:05 ", want: "2024-01-01 21:05"},
		{name: "absolute date passes through", raw: "2023-05-01 10:00", want: "2023-05-01 10:00"},
		{name: "unrelated text passes through", raw: "маргааш 10:00", want: "маргааш 10:00"},
		{name: "empty string passes through", raw: "", want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, NormalizeDate(tc.raw, ref))
		})
	}
}

// Yesterday must roll across month and year boundaries, not just decrement
// the day number.
func TestNormalizeDateYearBoundary(t *testing.T) {
	t.Parallel()

	ref := time.Date(2024, 1, 1, 0, 30, 0, 0, time.UTC)
	require.Equal(t, "2023-12-31 23:10", NormalizeDate("Өчигдөр 23:10", ref))
}
