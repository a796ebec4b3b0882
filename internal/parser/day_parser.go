package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/balkashynov/tick/internal/calendar"
)

var (
	slashDateRegex = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	daysAgoRegex   = regexp.MustCompile(`^(\d+)(?:\s*(?:d|day|days)(?:\s+ago)?)?$`)
)

// ParseDay resolves a report day relative to today.
// Supported formats:
// - "today", "yesterday"
// - dd/mm/yyyy (e.g., "15/10/2026")
// - yyyy-mm-dd (e.g., "2026-10-15")
// - X days ago (e.g., "3", "3d", "3 days ago")
//
// Days after today are rejected.
func ParseDay(input string, today calendar.Date) (calendar.Date, error) {
	input = strings.ToLower(strings.TrimSpace(input))

	var (
		day calendar.Date
		err error
	)
	switch {
	case input == "" || input == "today":
		day = today
	case input == "yesterday":
		day = today.AddDays(-1)
	case slashDateRegex.MatchString(input):
		day, err = parseSlashDate(input)
	case daysAgoRegex.MatchString(input):
		day, err = parseDaysAgo(input, today)
	default:
		day, err = calendar.Parse(input)
		if err != nil {
			err = fmt.Errorf("invalid day %q. Use: today, yesterday, dd/mm/yyyy, yyyy-mm-dd or X days ago", input)
		}
	}
	if err != nil {
		return calendar.Date{}, err
	}

	if day.After(today) {
		return calendar.Date{}, fmt.Errorf("%s is in the future", day)
	}
	return day, nil
}

// parseSlashDate parses dd/mm/yyyy format
func parseSlashDate(input string) (calendar.Date, error) {
	matches := slashDateRegex.FindStringSubmatch(input)

	day, _ := strconv.Atoi(matches[1])
	month, _ := strconv.Atoi(matches[2])
	year, _ := strconv.Atoi(matches[3])

	if month < 1 || month > 12 {
		return calendar.Date{}, fmt.Errorf("month must be between 1 and 12")
	}

	// time.Date normalizes overflow, so a changed day means it did not exist
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != time.Month(month) || t.Year() != year {
		return calendar.Date{}, fmt.Errorf("invalid date %q", input)
	}

	return calendar.DateOf(t), nil
}

func parseDaysAgo(input string, today calendar.Date) (calendar.Date, error) {
	matches := daysAgoRegex.FindStringSubmatch(input)
	n, err := strconv.Atoi(matches[1])
	if err != nil || n > calendar.MaxDaysBack {
		return calendar.Date{}, fmt.Errorf("days ago must be between 0 and %d", calendar.MaxDaysBack)
	}
	return today.AddDays(-n), nil
}

// FormatDay describes day relative to today for display
func FormatDay(day, today calendar.Date) string {
	label := day.Format("Monday, January 02")

	switch diff := day.DaysUntil(today); {
	case diff == 0:
		return label + " (today)"
	case diff == 1:
		return label + " (yesterday)"
	case diff > 1:
		return fmt.Sprintf("%s (%d days ago)", label, diff)
	default:
		return label
	}
}
