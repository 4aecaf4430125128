package workflow

import (
	"time"

	"github.com/shopspring/decimal"

	"travelagent/models"
	"travelagent/services/guardrail"
)

// Room tiers derived from a hotel's base nightly rate. Multipliers stay
// exact decimals; rounding happens only when a price is rendered.
var roomTiers = []struct {
	kind string
	desc string
	mult string
}{
	{"Standard", "Queen bed, city view", "1"},
	{"Deluxe", "King bed, high floor, lounge access", "1.3"},
	{"Executive Suite", "Separate living room, butler service", "2.5"},
}

func roomOptionsFor(h models.HotelOption) []models.RoomOption {
	out := make([]models.RoomOption, 0, len(roomTiers))
	for _, t := range roomTiers {
		out = append(out, models.RoomOption{
			Type:       t.kind,
			Desc:       t.desc,
			NightlyUSD: h.NightlyUSD.Mul(decimal.RequireFromString(t.mult)),
		})
	}
	return out
}

// nights counts whole nights between two canonical dates. Callers
// validate the dates first; malformed input counts as zero nights.
func nights(checkIn, checkOut string) int {
	in, err1 := time.Parse(guardrail.DateLayout, checkIn)
	out, err2 := time.Parse(guardrail.DateLayout, checkOut)
	if err1 != nil || err2 != nil {
		return 0
	}
	n := int(out.Sub(in).Hours() / 24)
	if n < 0 {
		return 0
	}
	return n
}

// tripTotal accumulates the unrounded booking total: flight price plus
// room rate times nights. Display rounding never feeds back into this.
func tripTotal(st models.WorkflowState) decimal.Decimal {
	total := decimal.Zero
	if st.SelectedFlight != nil {
		total = total.Add(st.SelectedFlight.PriceUSD)
	}
	if st.SelectedRoom != nil {
		n := nights(st.CheckIn, st.CheckOut)
		total = total.Add(st.SelectedRoom.NightlyUSD.Mul(decimal.NewFromInt(int64(n))))
	}
	return total
}

// formatUSD renders a price for display, rounded to cents.
func formatUSD(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
