// Package slot defines the fixed daily grid of hourly booking slots and the
// interval arithmetic shared by availability and admission checks.
package slot

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// The bookable day runs 09:00 to 22:00, one slot per hour.
const (
	OpeningHour = 9
	ClosingHour = 22
)

var timePattern = regexp.MustCompile(`^([0-1][0-9]|2[0-3]):[0-5][0-9]$`)

// Slot is one fixed half-open interval [Start, End) in 24-hour HH:MM form.
type Slot struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Label string `json:"label"`
}

// Daily returns the 13 hourly slots of a booking day, in order.
// The grid is a global constant, the same for every venue and date.
func Daily() []Slot {
	slots := make([]Slot, 0, ClosingHour-OpeningHour)
	for hour := OpeningHour; hour < ClosingHour; hour++ {
		start := fmt.Sprintf("%02d:00", hour)
		end := fmt.Sprintf("%02d:00", hour+1)
		slots = append(slots, Slot{
			Start: start,
			End:   end,
			Label: Label12Hour(start) + " - " + Label12Hour(end),
		})
	}
	return slots
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Touching intervals do not overlap.
// Lexicographic comparison is correct for zero-padded HH:MM strings.
func Overlaps(aStart, aEnd, bStart, bEnd string) bool {
	return aStart < bEnd && aEnd > bStart
}

// IsValidTime reports whether s is a 24-hour HH:MM time string.
func IsValidTime(s string) bool {
	return timePattern.MatchString(s)
}

// Duration returns the length of [start, end) in hours. Both arguments must
// be valid HH:MM strings; the result may be fractional.
func Duration(start, end string) float64 {
	return float64(minutes(end)-minutes(start)) / 60
}

// Label12Hour renders an HH:MM time in 12-hour form, e.g. "9:00 AM".
func Label12Hour(t string) string {
	parts := strings.SplitN(t, ":", 2)
	hour, _ := strconv.Atoi(parts[0])

	meridiem := "AM"
	if hour >= 12 {
		meridiem = "PM"
	}

	hour12 := hour % 12
	if hour12 == 0 {
		hour12 = 12
	}

	return fmt.Sprintf("%d:%s %s", hour12, parts[1], meridiem)
}

func minutes(t string) int {
	parts := strings.SplitN(t, ":", 2)
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	return h*60 + m
}
