package intent

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"travelagent/models"
)

// RulesExtractor is the deterministic extractor. It reads the latest
// user utterance in the context of the assistant's last question, the
// same way a human would interpret a short answer like "March 1".
type RulesExtractor struct {
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewRulesExtractor() *RulesExtractor {
	return &RulesExtractor{Now: time.Now}
}

var (
	budgetRe   = regexp.MustCompile(`\$\s*(\d+(?:\.\d+)?)`)
	budgetWdRe = regexp.MustCompile(`budget\s+(?:of\s+|is\s+)?(\d+(?:\.\d+)?)`)
	checkInRe  = regexp.MustCompile(`check[\s-]?in(?:\s+on)?[:\s]+([a-z0-9 -]+?)(?:\s*,|\s*;|\s*\.|\s+and\b|\s+check\b|$)`)
	checkOutRe = regexp.MustCompile(`check[\s-]?out(?:\s+on)?[:\s]+([a-z0-9 -]+?)(?:\s*,|\s*;|\s*\.|\s+and\b|\s+check\b|$)`)
	departRe   = regexp.MustCompile(`(?:depart(?:ing|ure)?|leav(?:e|ing))(?:\s+on)?[:\s]+([a-z0-9 -]+?)(?:\s*,|\s*;|\s*\.|\s+and\b|\s+return\b|$)`)
	returnRe   = regexp.MustCompile(`(?:return(?:ing)?|come\s+back|back)(?:\s+on)?[:\s]+([a-z0-9 -]+?)(?:\s*,|\s*;|\s*\.|\s+and\b|$)`)
	routeRe    = regexp.MustCompile(`from\s+([a-z ]+?)\s+to\s+([a-z ]+?)(?:\s*,|\s*\.|\s+on\b|\s+under\b|\s+for\b|\s+with\b|\s+and\b|\s+depart|\s+leav|$)`)
	guestsRe   = regexp.MustCompile(`(\d+)\s*guests?`)
	roomsRe    = regexp.MustCompile(`(\d+)\s*rooms?`)
)

// destination markers in priority order; the original parser used the
// same "in/to/at" split.
var destMarkers = []string{" in ", " to ", " at "}

// words that terminate a destination phrase.
var destStops = []string{"under", "for", "budget", "from", "on", "between", "check", "with", "during", "next", "this", "$"}

var cabinWords = []string{
	"premium economy", "premium", "economy", "coach", "eco",
	"business class", "business", "biz",
	"first class", "first",
}

func (e *RulesExtractor) Extract(_ context.Context, history []models.Message, st models.WorkflowState) (models.TripIntent, error) {
	var intent models.TripIntent

	userText := ""
	assistantText := ""
	for i := len(history) - 1; i >= 0; i-- {
		if userText == "" && history[i].Role == models.RoleUser {
			userText = history[i].Content
		}
		if assistantText == "" && history[i].Role == models.RoleAssistant {
			assistantText = history[i].Content
		}
		if userText != "" && assistantText != "" {
			break
		}
	}
	if strings.TrimSpace(userText) == "" {
		return intent, nil
	}

	now := time.Now()
	if e.Now != nil {
		now = e.Now()
	}
	text := strings.ToLower(userText)
	lastQ := strings.ToLower(assistantText)

	intent.TripType = classifyTrip(text)
	intent.BudgetUSD = extractBudget(text)
	intent.Guests, intent.Rooms = extractCounts(text)

	if m := routeRe.FindStringSubmatch(text); m != nil {
		intent.Origin = titleWords(strings.TrimSpace(m[1]))
		intent.Destination = titleWords(strings.TrimSpace(m[2]))
	} else if dest := extractDestination(text); dest != "" {
		intent.Destination = dest
	}

	if m := checkInRe.FindStringSubmatch(text); m != nil {
		if d, err := ParseDate(m[1], now); err == nil {
			intent.CheckIn = d
		}
	}
	if m := checkOutRe.FindStringSubmatch(text); m != nil {
		if d, err := ParseDate(m[1], now); err == nil {
			intent.CheckOut = d
		}
	}
	if m := departRe.FindStringSubmatch(text); m != nil {
		if d, err := ParseDate(m[1], now); err == nil {
			intent.DepartureDate = d
		}
	}
	if m := returnRe.FindStringSubmatch(text); m != nil {
		if d, err := ParseDate(m[1], now); err == nil {
			intent.ReturnDate = d
		}
	}

	for _, w := range cabinWords {
		if strings.Contains(text, w) {
			intent.Cabin = w
			break
		}
	}

	e.applyContext(&intent, lastQ, userText, now)
	return intent, nil
}

// applyContext interprets a short answer against the question the
// assistant just asked, mirroring the original context-aware parser.
func (e *RulesExtractor) applyContext(intent *models.TripIntent, lastQ, userText string, now time.Time) {
	answer := strings.TrimSpace(userText)
	switch {
	case strings.Contains(lastQ, "which city") || strings.Contains(lastQ, "where would you like"):
		if intent.Destination == "" && !strings.ContainsAny(answer, "0123456789$") {
			intent.Destination = titleWords(answer)
		}
	case strings.Contains(lastQ, "check-in") && intent.CheckIn == "":
		if d, err := ParseDate(answer, now); err == nil {
			intent.CheckIn = d
		}
	case strings.Contains(lastQ, "check-out") && intent.CheckOut == "":
		if d, err := ParseDate(answer, now); err == nil {
			intent.CheckOut = d
		}
	case strings.Contains(lastQ, "departure") || strings.Contains(lastQ, "depart"):
		if intent.DepartureDate == "" {
			if d, err := ParseDate(answer, now); err == nil {
				intent.DepartureDate = d
			}
		}
	case strings.Contains(lastQ, "return"):
		if intent.ReturnDate == "" {
			if d, err := ParseDate(answer, now); err == nil {
				intent.ReturnDate = d
			}
		}
	case strings.Contains(lastQ, "cabin") && intent.Cabin == "":
		intent.Cabin = strings.ToLower(answer)
	case strings.Contains(lastQ, "how many guests"):
		if nums := regexp.MustCompile(`\d+`).FindAllString(answer, -1); len(nums) > 0 {
			intent.Guests, _ = strconv.Atoi(nums[0])
			if len(nums) > 1 {
				intent.Rooms, _ = strconv.Atoi(nums[1])
			}
		}
	}
}

func classifyTrip(text string) models.TripType {
	flight := strings.Contains(text, "flight") || strings.Contains(text, "fly ") || strings.HasSuffix(text, "fly")
	hotel := strings.Contains(text, "hotel") || strings.Contains(text, "room") || strings.Contains(text, "stay")
	switch {
	case flight && hotel:
		return models.TripComplete
	case strings.Contains(text, "trip") || strings.Contains(text, "vacation"):
		return models.TripComplete
	case flight:
		return models.TripFlightOnly
	case hotel:
		return models.TripHotelOnly
	default:
		return models.TripUnknown
	}
}

func extractBudget(text string) decimal.Decimal {
	if m := budgetRe.FindStringSubmatch(text); m != nil {
		if d, err := decimal.NewFromString(m[1]); err == nil {
			return d
		}
	}
	if m := budgetWdRe.FindStringSubmatch(text); m != nil {
		if d, err := decimal.NewFromString(m[1]); err == nil {
			return d
		}
	}
	return decimal.Zero
}

func extractCounts(text string) (guests, rooms int) {
	if m := guestsRe.FindStringSubmatch(text); m != nil {
		guests, _ = strconv.Atoi(m[1])
	}
	if m := roomsRe.FindStringSubmatch(text); m != nil {
		rooms, _ = strconv.Atoi(m[1])
	}
	return guests, rooms
}

func extractDestination(text string) string {
	for _, marker := range destMarkers {
		search := 0
		for {
			idx := strings.Index(text[search:], marker)
			if idx < 0 {
				break
			}
			idx += search
			search = idx + len(marker)
			// "check in March 1" is a date phrase, not a place.
			if strings.HasSuffix(strings.TrimSpace(text[:idx]), "check") {
				continue
			}
			rest := strings.TrimSpace(text[idx+len(marker):])
			words := strings.Fields(rest)
			var dest []string
			for _, w := range words {
				w = strings.Trim(w, ".,!?")
				if isDestStop(w) {
					break
				}
				dest = append(dest, w)
				// Destinations longer than three words are noise.
				if len(dest) == 3 {
					break
				}
			}
			if len(dest) > 0 {
				return titleWords(strings.Join(dest, " "))
			}
		}
	}
	return ""
}

func isDestStop(w string) bool {
	if w == "" || strings.HasPrefix(w, "$") {
		return true
	}
	if w[0] >= '0' && w[0] <= '9' {
		return true
	}
	for _, stop := range destStops {
		if w == stop {
			return true
		}
	}
	return false
}
