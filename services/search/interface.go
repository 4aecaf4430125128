// Package search defines the flight/hotel search collaborator
// contracts and two implementations: an HTTP client for a live
// provider and a static catalog used when no provider is configured.
package search

import (
	"context"

	"github.com/shopspring/decimal"

	"travelagent/models"
)

// Query carries the accumulated trip intent to a search provider.
type Query struct {
	Origin        string            `json:"origin,omitempty"`
	Destination   string            `json:"destination"`
	DepartureDate string            `json:"departure_date,omitempty"`
	ReturnDate    string            `json:"return_date,omitempty"`
	CheckIn       string            `json:"check_in,omitempty"`
	CheckOut      string            `json:"check_out,omitempty"`
	Guests        int               `json:"guests,omitempty"`
	Rooms         int               `json:"rooms,omitempty"`
	Cabin         models.CabinClass `json:"cabin_class,omitempty"`
	BudgetUSD     decimal.Decimal   `json:"budget_usd"`
}

// FlightSearcher finds candidate flights for a query.
type FlightSearcher interface {
	SearchFlights(ctx context.Context, q Query) ([]models.FlightOption, error)
}

// HotelSearcher finds candidate hotels for a query.
type HotelSearcher interface {
	SearchHotels(ctx context.Context, q Query) ([]models.HotelOption, error)
}
