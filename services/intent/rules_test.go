package intent

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelagent/models"
)

var testNow = time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

func newExtractor() *RulesExtractor {
	return &RulesExtractor{Now: func() time.Time { return testNow }}
}

func extract(t *testing.T, history ...models.Message) models.TripIntent {
	t.Helper()
	out, err := newExtractor().Extract(context.Background(), history, models.NewWorkflowState())
	require.NoError(t, err)
	return out
}

func user(text string) models.Message      { return models.NewMessage("user", text) }
func assistant(text string) models.Message { return models.NewMessage("assistant", text) }

func TestExtractHotelRequest(t *testing.T) {
	got := extract(t, user("Book a hotel in Tokyo under $300"))

	assert.Equal(t, models.TripHotelOnly, got.TripType)
	assert.Equal(t, "Tokyo", got.Destination)
	assert.True(t, got.BudgetUSD.Equal(decimal.NewFromInt(300)), "got %s", got.BudgetUSD)
}

func TestExtractFlightRoute(t *testing.T) {
	got := extract(t, user("I need a flight from Berlin to Lisbon on 2026-10-01"))

	assert.Equal(t, models.TripFlightOnly, got.TripType)
	assert.Equal(t, "Berlin", got.Origin)
	assert.Equal(t, "Lisbon", got.Destination)
}

func TestExtractCheckInCheckOutPair(t *testing.T) {
	got := extract(t, user("check in March 1, check out March 4"))

	assert.Equal(t, "2027-03-01", got.CheckIn)
	assert.Equal(t, "2027-03-04", got.CheckOut)
}

func TestExtractDepartureAndReturn(t *testing.T) {
	got := extract(t, user("departing 2026-09-10 and returning 2026-09-20"))

	assert.Equal(t, "2026-09-10", got.DepartureDate)
	assert.Equal(t, "2026-09-20", got.ReturnDate)
}

func TestExtractGuestsAndRooms(t *testing.T) {
	got := extract(t, user("2 guests and 1 room please"))

	assert.Equal(t, 2, got.Guests)
	assert.Equal(t, 1, got.Rooms)
}

func TestContextualCityAnswer(t *testing.T) {
	got := extract(t,
		assistant("Which city would you like to go to?"),
		user("Kyoto"),
	)
	assert.Equal(t, "Kyoto", got.Destination)
}

func TestContextualCheckInAnswer(t *testing.T) {
	got := extract(t,
		assistant("When is your check-in date? (YYYY-MM-DD)"),
		user("2026-11-03"),
	)
	assert.Equal(t, "2026-11-03", got.CheckIn)
}

func TestContextualCabinAnswer(t *testing.T) {
	got := extract(t,
		assistant("Which cabin class would you like: economy, premium economy, business, or first?"),
		user("business"),
	)
	assert.Equal(t, "business", got.Cabin)
}

func TestEmptyUtterance(t *testing.T) {
	got := extract(t, user("   "))
	assert.Equal(t, models.TripIntent{}, got)
}

func TestDestinationNotConfusedByCheckIn(t *testing.T) {
	// "check in March 1" must not read "March 1" as a destination.
	got := extract(t, user("check in March 1, check out March 4"))
	assert.Empty(t, got.Destination)
}

func TestParseDateYearless(t *testing.T) {
	d, err := ParseDate("march 1", testNow)
	require.NoError(t, err)
	assert.Equal(t, "2027-03-01", d)

	d, err = ParseDate("december 24", testNow)
	require.NoError(t, err)
	assert.Equal(t, "2026-12-24", d)
}

func TestParseDateCanonical(t *testing.T) {
	d, err := ParseDate("2026-10-05", testNow)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-05", d)
}

func TestParseDateUnrecognized(t *testing.T) {
	_, err := ParseDate("whenever works", testNow)
	assert.Error(t, err)
}
