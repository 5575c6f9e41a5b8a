package period_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/receiptmatch/internal/apperror"
	"github.com/MrJamesThe3rd/receiptmatch/internal/period"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestParse(t *testing.T) {
	r, err := period.Parse("2024-03-01", "2024-03-31")
	require.NoError(t, err)
	assert.Equal(t, date(2024, 3, 1), r.Start)
	assert.Equal(t, date(2024, 3, 31), r.End)

	_, err = period.Parse("2024-03-31", "2024-03-01")
	assert.True(t, apperror.IsValidation(err))

	_, err = period.Parse("03/01/2024", "2024-03-31")
	assert.True(t, apperror.IsValidation(err))
}

func TestRange_WidenAndContains(t *testing.T) {
	r := period.New(date(2024, 3, 10), date(2024, 3, 20)).Widen(14)

	assert.Equal(t, date(2024, 2, 25), r.Start)
	assert.Equal(t, date(2024, 4, 3), r.End)
	assert.True(t, r.Contains(time.Date(2024, 4, 3, 18, 30, 0, 0, time.UTC)))
	assert.False(t, r.Contains(date(2024, 4, 4)))
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{"SameDay", time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC), date(2024, 3, 10), 0},
		{"Forward", date(2024, 3, 10), date(2024, 3, 24), 14},
		{"Backward", date(2024, 3, 24), date(2024, 3, 10), 14},
		{"AcrossMonth", date(2024, 2, 28), date(2024, 3, 1), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, period.DaysBetween(tt.a, tt.b))
		})
	}
}
