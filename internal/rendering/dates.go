package rendering

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Present is shown for ongoing, blank, or unparseable dates.
const Present = "Present"

var (
	yearMonthPattern  = regexp.MustCompile(`^(\d{4})-(\d{1,2})$`)
	monthSlashPattern = regexp.MustCompile(`^(\d{1,2})/(\d{4})$`)
	monthDashPattern  = regexp.MustCompile(`^(\d{1,2})-(\d{4})$`)
)

// genericLayouts are tried after the month/year shapes.
var genericLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006",
	"January 2006",
	"Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2006",
}

// FormatDate renders input as "Jan 2006". It returns Present when ongoing is
// set, when input is blank, or when input does not parse. It never fails.
func FormatDate(input string, ongoing bool) string {
	input = strings.TrimSpace(input)
	if ongoing || input == "" {
		return Present
	}

	if t, ok := parseDate(input); ok {
		return t.Format("Jan 2006")
	}
	return Present
}

// FormatDateRange renders "start -- end"; an empty end reads as ongoing.
func FormatDateRange(start, end string) string {
	return FormatDate(start, false) + " -- " + FormatDate(end, strings.TrimSpace(end) == "")
}

func parseDate(input string) (time.Time, bool) {
	if m := yearMonthPattern.FindStringSubmatch(input); m != nil {
		return yearMonth(m[1], m[2])
	}
	if m := monthSlashPattern.FindStringSubmatch(input); m != nil {
		return yearMonth(m[2], m[1])
	}
	if m := monthDashPattern.FindStringSubmatch(input); m != nil {
		return yearMonth(m[2], m[1])
	}

	for _, layout := range genericLayouts {
		if t, err := time.Parse(layout, input); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func yearMonth(year, month string) (time.Time, bool) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return time.Time{}, false
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return time.Time{}, false
	}
	return time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.UTC), true
}
