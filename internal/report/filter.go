package report

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/geocoder89/fuellog/internal/domain/fueling"
)

// AllDrivers is the selector value that disables the driver filter.
const AllDrivers = "all"

const dayLayout = "2006-01-02"

var ErrInvalidDate = errors.New("date must be formatted as YYYY-MM-DD")

// Criteria bounds are inclusive instants; nil means unbounded.
type Criteria struct {
	DriverID string
	Start    *time.Time
	End      *time.Time
}

// Filter derives the report view from records without touching the input slice:
// driver selector, inclusive date bounds, then newest first. Equal timestamps keep
// their store order.
func Filter(records []fueling.Record, c Criteria) []fueling.Record {
	out := make([]fueling.Record, 0, len(records))

	for _, rec := range records {
		if c.DriverID != "" && c.DriverID != AllDrivers && rec.DriverID != c.DriverID {
			continue
		}
		if c.Start != nil && rec.RecordTimestamp.Before(*c.Start) {
			continue
		}
		if c.End != nil && rec.RecordTimestamp.After(*c.End) {
			continue
		}
		out = append(out, rec)
	}

	SortNewestFirst(out)
	return out
}

// SortNewestFirst sorts in place by record timestamp, descending.
func SortNewestFirst(records []fueling.Record) {
	slices.SortStableFunc(records, func(a, b fueling.Record) int {
		return b.RecordTimestamp.Compare(a.RecordTimestamp)
	})
}

// StartOfDay is 00:00:00 of day in loc.
func StartOfDay(day time.Time, loc *time.Location) time.Time {
	y, m, d := day.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// EndOfDay is 23:59:59 of day in loc; a record stamped exactly then is still included.
func EndOfDay(day time.Time, loc *time.Location) time.Time {
	y, m, d := day.In(loc).Date()
	return time.Date(y, m, d, 23, 59, 59, 0, loc)
}

// ParseCriteria builds criteria from the raw query values. Empty dates are unbounded.
func ParseCriteria(driver, startDate, endDate string, loc *time.Location) (Criteria, error) {
	c := Criteria{DriverID: strings.TrimSpace(driver)}
	if c.DriverID == "" {
		c.DriverID = AllDrivers
	}

	if s := strings.TrimSpace(startDate); s != "" {
		day, err := time.ParseInLocation(dayLayout, s, loc)
		if err != nil {
			return Criteria{}, ErrInvalidDate
		}
		start := StartOfDay(day, loc)
		c.Start = &start
	}

	if s := strings.TrimSpace(endDate); s != "" {
		day, err := time.ParseInLocation(dayLayout, s, loc)
		if err != nil {
			return Criteria{}, ErrInvalidDate
		}
		end := EndOfDay(day, loc)
		c.End = &end
	}

	return c, nil
}
