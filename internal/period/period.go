// Package period holds calendar-date helpers shared by the sources and the engine.
package period

import (
	"time"

	"github.com/MrJamesThe3rd/receiptmatch/internal/apperror"
)

// Range is an inclusive range of calendar dates.
type Range struct {
	Start time.Time
	End   time.Time
}

// Day truncates t to its calendar date at midnight UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// New builds a range from two dates, ignoring any time component.
func New(start, end time.Time) Range {
	return Range{Start: Day(start), End: Day(end)}
}

// Parse reads a range from two YYYY-MM-DD strings.
func Parse(start, end string) (Range, error) {
	s, err := time.Parse(time.DateOnly, start)
	if err != nil {
		return Range{}, &apperror.ValidationError{Entity: "range", Field: "start", Reason: "must be YYYY-MM-DD"}
	}

	e, err := time.Parse(time.DateOnly, end)
	if err != nil {
		return Range{}, &apperror.ValidationError{Entity: "range", Field: "end", Reason: "must be YYYY-MM-DD"}
	}

	r := New(s, e)

	return r, r.Validate()
}

func (r Range) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return &apperror.ValidationError{Entity: "range", Field: "dates", Reason: "are required"}
	}

	if r.End.Before(r.Start) {
		return &apperror.ValidationError{Entity: "range", Field: "end", Reason: "is before start"}
	}

	return nil
}

// Widen extends the range by days on both sides.
func (r Range) Widen(days int) Range {
	return Range{
		Start: r.Start.AddDate(0, 0, -days),
		End:   r.End.AddDate(0, 0, days),
	}
}

func (r Range) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// EndOfDay is the last instant of the range, for timestamp columns.
func (r Range) EndOfDay() time.Time {
	return r.End.Add(24*time.Hour - time.Nanosecond)
}

func (r Range) String() string {
	return r.Start.Format(time.DateOnly) + ".." + r.End.Format(time.DateOnly)
}

// DaysBetween returns the absolute number of calendar days between a and b.
func DaysBetween(a, b time.Time) int {
	d := int(Day(a).Sub(Day(b)).Hours() / 24)
	if d < 0 {
		return -d
	}

	return d
}
