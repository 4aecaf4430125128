package search

import (
	"context"

	"github.com/shopspring/decimal"

	"travelagent/models"
)

// StaticProvider serves a deterministic catalog derived from the
// destination name. It stands in when no live provider is configured
// and doubles as the development fixture.
type StaticProvider struct{}

func NewStaticProvider() *StaticProvider {
	return &StaticProvider{}
}

var cabinMultipliers = map[models.CabinClass]string{
	models.CabinEconomy:        "1",
	models.CabinPremiumEconomy: "1.6",
	models.CabinBusiness:       "2.8",
	models.CabinFirst:          "4.2",
}

func (p *StaticProvider) SearchFlights(_ context.Context, q Query) ([]models.FlightOption, error) {
	cabin := q.Cabin
	if cabin == "" {
		cabin = models.CabinEconomy
	}
	mult, ok := cabinMultipliers[cabin]
	if !ok {
		mult = "1"
	}
	m := decimal.RequireFromString(mult)

	base := []models.FlightOption{
		{Airline: "Pacific Air", FlightNumber: "PA204", Depart: "08:15", Arrive: "14:40", Cabin: cabin, PriceUSD: decimal.NewFromInt(320)},
		{Airline: "Meridian Airways", FlightNumber: "MD77", Depart: "11:30", Arrive: "18:05", Cabin: cabin, PriceUSD: decimal.NewFromInt(285)},
		{Airline: "Aurora Jet", FlightNumber: "AJ912", Depart: "21:50", Arrive: "05:10", Cabin: cabin, PriceUSD: decimal.NewFromInt(410)},
	}
	out := make([]models.FlightOption, 0, len(base))
	for _, f := range base {
		f.PriceUSD = f.PriceUSD.Mul(m)
		if !q.BudgetUSD.IsZero() && f.PriceUSD.GreaterThan(q.BudgetUSD) {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func (p *StaticProvider) SearchHotels(_ context.Context, q Query) ([]models.HotelOption, error) {
	base := []models.HotelOption{
		{Name: q.Destination + " Budget Hotel", Rating: "⭐⭐⭐", NightlyUSD: decimal.NewFromInt(180)},
		{Name: q.Destination + " Grand Hotel", Rating: "⭐⭐⭐⭐", NightlyUSD: decimal.NewFromInt(260)},
		{Name: q.Destination + " Imperial Palace", Rating: "⭐⭐⭐⭐⭐", NightlyUSD: decimal.NewFromInt(410)},
	}
	out := make([]models.HotelOption, 0, len(base))
	for _, h := range base {
		// Budget-aware: never offer a nightly rate above the budget.
		if !q.BudgetUSD.IsZero() && h.NightlyUSD.GreaterThan(q.BudgetUSD) {
			continue
		}
		out = append(out, h)
	}
	return out, nil
}
