// Package guardrail holds the pure pre-action checks the workflow runs
// before any state-mutating booking step: date sanity, budget
// sufficiency, the hard spend ceiling, and the swap buffer. Each check
// reports structured failures; the engine never proceeds past one.
package guardrail

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"travelagent/models"
)

// DateLayout is the canonical wire format for all workflow dates.
const DateLayout = "2006-01-02"

// MinSanePriceUSD is the floor below which a quoted total is treated as
// corrupted provider data rather than a bargain.
var MinSanePriceUSD = decimal.NewFromInt(5)

// Violation is one failed check. Field names the offending state field,
// Rule the invariant it broke.
type Violation struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Rule)
}

// ValidateDates checks every date field that is set. Violations are
// collected, not short-circuited, so the user sees all problems at
// once. now anchors the not-in-the-past rule.
func ValidateDates(now time.Time, s models.WorkflowState) []Violation {
	var out []Violation
	today := now.Truncate(24 * time.Hour)

	parsed := map[string]time.Time{}
	for field, value := range map[string]string{
		"departure_date": s.DepartureDate,
		"return_date":    s.ReturnDate,
		"check_in":       s.CheckIn,
		"check_out":      s.CheckOut,
	} {
		if value == "" {
			continue
		}
		d, err := time.Parse(DateLayout, value)
		if err != nil {
			out = append(out, Violation{Field: field, Rule: fmt.Sprintf("%q is not a valid date (want YYYY-MM-DD)", value)})
			continue
		}
		if d.Before(today) {
			out = append(out, Violation{Field: field, Rule: fmt.Sprintf("%s is in the past", value)})
		}
		parsed[field] = d
	}

	if dep, okD := parsed["departure_date"]; okD {
		if ret, okR := parsed["return_date"]; okR && !ret.After(dep) {
			out = append(out, Violation{Field: "return_date", Rule: "must be strictly after departure_date"})
		}
	}
	if in, okI := parsed["check_in"]; okI {
		if outd, okO := parsed["check_out"]; okO && !outd.After(in) {
			out = append(out, Violation{Field: "check_out", Rule: "must be strictly after check_in"})
		}
	}
	return out
}

// CheckBudget verifies a booking total against the user-declared
// budget. A zero budget means none was supplied and the budget rule is
// skipped; the sanity floor always applies.
func CheckBudget(total, budget decimal.Decimal) *Violation {
	if total.LessThan(MinSanePriceUSD) {
		return &Violation{
			Field: "total_price",
			Rule:  fmt.Sprintf("$%s is below the $%s sanity floor; refusing probable corrupt pricing data", total.StringFixed(2), MinSanePriceUSD.StringFixed(2)),
		}
	}
	if !budget.IsZero() && total.GreaterThan(budget) {
		return &Violation{
			Field: "total_price",
			Rule:  fmt.Sprintf("$%s exceeds your budget of $%s", total.StringFixed(2), budget.StringFixed(2)),
		}
	}
	return nil
}

// CheckSpendCeiling enforces the hard per-booking settlement cap. This
// bound is independent of any user-declared budget: it limits the
// maximum loss from a single automated action.
func CheckSpendCeiling(total, ceiling decimal.Decimal) *Violation {
	if total.GreaterThan(ceiling) {
		return &Violation{
			Field: "total_price",
			Rule:  fmt.Sprintf("$%s exceeds the $%s spend ceiling", total.StringFixed(2), ceiling.StringFixed(2)),
		}
	}
	return nil
}

// WithSwapBuffer uplifts an amount that requires a currency swap by a
// fixed percentage, absorbing rate drift between quote and settlement.
func WithSwapBuffer(amount decimal.Decimal, bufferPct decimal.Decimal) decimal.Decimal {
	one := decimal.NewFromInt(1)
	hundred := decimal.NewFromInt(100)
	return amount.Mul(one.Add(bufferPct.Div(hundred)))
}
