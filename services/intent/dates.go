package intent

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// month-name layouts accepted from free text, tried in order.
var looseLayouts = []string{
	"2006-01-02",
	"January 2 2006",
	"Jan 2 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
}

var yearlessLayouts = []string{
	"January 2",
	"Jan 2",
	"2 January",
}

// ParseDate canonicalizes a free-text date to YYYY-MM-DD. Inputs
// without a year resolve to the next occurrence on or after now, so
// "March 1" said in August means next March.
func ParseDate(text string, now time.Time) (string, error) {
	text = strings.TrimSpace(strings.Trim(text, ".,!?"))
	if text == "" {
		return "", fmt.Errorf("empty date")
	}
	text = titleWords(text)

	for _, layout := range looseLayouts {
		if d, err := time.Parse(layout, text); err == nil {
			return d.Format(dateLayout), nil
		}
	}

	for _, layout := range yearlessLayouts {
		d, err := time.Parse(layout, text)
		if err != nil {
			continue
		}
		candidate := time.Date(now.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		if candidate.Before(now.Truncate(24 * time.Hour)) {
			candidate = candidate.AddDate(1, 0, 0)
		}
		return candidate.Format(dateLayout), nil
	}

	return "", fmt.Errorf("unrecognized date %q", text)
}

// titleWords uppercases the first letter of each word so month names
// parse regardless of how the user typed them.
func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
