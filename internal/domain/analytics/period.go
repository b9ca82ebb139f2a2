package analytics

import (
	"fmt"
	"strings"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
)

const dateLayout = "2006-01-02"

// DateRange is an inclusive [Start, End] window over order creation time, in UTC
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the range
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// DefaultRange returns the trailing window of days ending with the minute that contains now.
// Both bounds stay fixed for the whole minute so repeated calls share a cache key.
func DefaultRange(now time.Time, days int) DateRange {
	end := now.UTC().Truncate(time.Minute).Add(time.Minute - time.Millisecond)
	return DateRange{Start: end.AddDate(0, 0, -days), End: end}
}

// ParseDateRange parses optional startDate/endDate query values.
// Accepts 2006-01-02 or RFC3339. A bare end date covers the whole day.
// Missing values fall back to the trailing default window.
func ParseDateRange(start, end string, now time.Time, defaultDays int) (DateRange, error) {
	r := DefaultRange(now, defaultDays)

	if end != "" {
		t, bare, err := parseDate(end)
		if err != nil {
			return DateRange{}, shared.NewValidationError("endDate", "endDate must be YYYY-MM-DD or RFC3339")
		}
		if bare {
			t = t.Add(24*time.Hour - time.Millisecond)
		}
		r.End = t
		if start == "" {
			r.Start = t.AddDate(0, 0, -defaultDays)
		}
	}
	if start != "" {
		t, _, err := parseDate(start)
		if err != nil {
			return DateRange{}, shared.NewValidationError("startDate", "startDate must be YYYY-MM-DD or RFC3339")
		}
		r.Start = t
	}
	if r.Start.After(r.End) {
		return DateRange{}, shared.NewValidationError("startDate", "startDate must not be after endDate")
	}
	return r, nil
}

func parseDate(s string) (time.Time, bool, error) {
	if t, err := time.ParseInLocation(dateLayout, s, time.UTC); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false, err
	}
	return t.UTC(), false, nil
}

// GroupBy is the time-series bucket width
type GroupBy string

const (
	GroupByDay   GroupBy = "day"
	GroupByWeek  GroupBy = "week"
	GroupByMonth GroupBy = "month"
)

// ParseGroupBy parses a groupBy query value; empty means day
func ParseGroupBy(s string) (GroupBy, error) {
	switch g := GroupBy(strings.ToLower(s)); g {
	case "":
		return GroupByDay, nil
	case GroupByDay, GroupByWeek, GroupByMonth:
		return g, nil
	default:
		return "", shared.NewValidationError("groupBy", fmt.Sprintf("groupBy must be day, week or month, got %q", s))
	}
}

// Truncate returns the start of the bucket containing t. Weeks start on Monday.
func (g GroupBy) Truncate(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch g {
	case GroupByWeek:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case GroupByMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return day
	}
}

// Label formats a bucket start for display
func (g GroupBy) Label(bucket time.Time) string {
	switch g {
	case GroupByWeek:
		year, week := bucket.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case GroupByMonth:
		return bucket.Format("2006-01")
	default:
		return bucket.Format(dateLayout)
	}
}
