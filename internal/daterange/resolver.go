// Package daterange turns relative and absolute date phrases into calendar ranges.
package daterange

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gastos/internal/core"
)

var explicitPattern = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})\s+al\s+(\d{1,2})-(\d{1,2})$`)

// Resolve maps a phrase to an inclusive DateRange relative to today.
// Recognized phrases: "" or "hoy", "semana" (Monday through today) and
// "DD-MM al DD-MM" in today's year. Anything else wraps core.ErrInvalidRange.
func Resolve(phrase string, today time.Time) (core.DateRange, error) {
	today = core.Day(today)
	phrase = strings.ToLower(strings.TrimSpace(phrase))

	switch phrase {
	case "", "hoy":
		return core.DateRange{Start: today, End: today}, nil
	case "semana":
		return core.DateRange{Start: today.AddDate(0, 0, -weekdayIndex(today)), End: today}, nil
	}

	m := explicitPattern.FindStringSubmatch(phrase)
	if m == nil {
		return core.DateRange{}, fmt.Errorf("%w: unknown phrase %q", core.ErrInvalidRange, phrase)
	}
	start, err := calendarDate(today, m[1], m[2])
	if err != nil {
		return core.DateRange{}, err
	}
	end, err := calendarDate(today, m[3], m[4])
	if err != nil {
		return core.DateRange{}, err
	}
	r, err := core.NewDateRange(start, end)
	if err != nil {
		return core.DateRange{}, fmt.Errorf("%w: %s is after %s", err, start.Format("02/01"), end.Format("02/01"))
	}
	return r, nil
}

// weekdayIndex is 0 for Monday through 6 for Sunday.
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func calendarDate(today time.Time, dayStr, monthStr string) (time.Time, error) {
	day, _ := strconv.Atoi(dayStr)
	month, _ := strconv.Atoi(monthStr)
	d := time.Date(today.Year(), time.Month(month), day, 0, 0, 0, 0, today.Location())
	// time.Date normalizes overflow (31-02 becomes 02-03), so compare back.
	if d.Day() != day || int(d.Month()) != month {
		return time.Time{}, fmt.Errorf("%w: %s-%s is not a calendar date", core.ErrInvalidRange, dayStr, monthStr)
	}
	return d, nil
}
