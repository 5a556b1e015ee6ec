package rendering

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		ongoing  bool
		expected string
	}{
		{"year-month", "2023-01", false, "Jan 2023"},
		{"year-month single digit", "2023-6", false, "Jun 2023"},
		{"month slash year", "06/2021", false, "Jun 2021"},
		{"month dash year", "12-2019", false, "Dec 2019"},
		{"iso date", "2022-03-15", false, "Mar 2022"},
		{"rfc3339", "2022-03-15T10:00:00Z", false, "Mar 2022"},
		{"long month name", "September 2020", false, "Sep 2020"},
		{"short month name", "Feb 2018", false, "Feb 2018"},
		{"surrounding whitespace", "  2023-01 ", false, "Jan 2023"},
		{"empty", "", false, "Present"},
		{"whitespace only", "   ", false, "Present"},
		{"ongoing wins", "2023-01", true, "Present"},
		{"not a date", "not-a-date", false, "Present"},
		{"month out of range", "13/2023", false, "Present"},
		{"month zero", "2023-00", false, "Present"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDate(tt.input, tt.ongoing))
		})
	}
}

func TestFormatDate_AllYearMonthsStable(t *testing.T) {
	months := []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
	for year := 1990; year <= 2030; year += 7 {
		for m := 1; m <= 12; m++ {
			input := fmt.Sprintf("%04d-%02d", year, m)
			expected := fmt.Sprintf("%s %d", months[m-1], year)
			assert.Equal(t, expected, FormatDate(input, false))
			assert.Equal(t, FormatDate(input, false), FormatDate(input, false))
		}
	}
}

func TestFormatDateRange(t *testing.T) {
	assert.Equal(t, "Jan 2020 -- Jun 2021", FormatDateRange("2020-01", "2021-06"))
	assert.Equal(t, "Jan 2020 -- Present", FormatDateRange("2020-01", ""))
	assert.Equal(t, "Present -- Present", FormatDateRange("", ""))
	assert.Equal(t, "Jan 2020 -- Present", FormatDateRange("2020-01", "13/2023"))
}
