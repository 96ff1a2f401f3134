package tweets

import (
	"fmt"
	"time"
)

const (
	dateLayout     = "2006-01-02"
	timeLayout     = "15:04"
	displayLayout  = "Jan 2, 2006"
	day            = 24 * time.Hour
	relativeCutoff = 7
)

// FormatRelativeDate renders a YYYY-MM-DD date relative to now: "today",
// "yesterday", "N days ago" up to six days, then an absolute date.
//
// The distance is the absolute number of whole days between now and midnight
// UTC of date, so a date three days in the future also reads "3 days ago".
// Strings that are not dates are returned unchanged.
func FormatRelativeDate(date string, now time.Time) string {
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return date
	}
	diff := now.Sub(d)
	if diff < 0 {
		diff = -diff
	}
	days := int(diff / day)

	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "yesterday"
	case days < relativeCutoff:
		return fmt.Sprintf("%d days ago", days)
	}
	return d.Format(displayLayout)
}
