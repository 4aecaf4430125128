package guardrail

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelagent/models"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestValidateDatesAllValid(t *testing.T) {
	st := models.NewWorkflowState()
	st.DepartureDate = "2026-04-01"
	st.ReturnDate = "2026-04-08"
	st.CheckIn = "2026-04-01"
	st.CheckOut = "2026-04-08"

	assert.Empty(t, ValidateDates(now, st))
}

func TestValidateDatesCollectsAllViolations(t *testing.T) {
	st := models.NewWorkflowState()
	st.DepartureDate = "2026-01-01" // past
	st.ReturnDate = "2025-12-20"    // past and before departure
	st.CheckIn = "2026-04-05"
	st.CheckOut = "2026-04-05" // not strictly after check-in

	violations := ValidateDates(now, st)
	require.Len(t, violations, 4)

	fields := map[string]int{}
	for _, v := range violations {
		fields[v.Field]++
	}
	assert.Equal(t, 1, fields["departure_date"])
	assert.Equal(t, 2, fields["return_date"])
	assert.Equal(t, 1, fields["check_out"])
}

func TestValidateDatesMalformed(t *testing.T) {
	st := models.NewWorkflowState()
	st.CheckIn = "next tuesday"

	violations := ValidateDates(now, st)
	require.Len(t, violations, 1)
	assert.Equal(t, "check_in", violations[0].Field)
}

func TestValidateDatesUnsetFieldsSkipped(t *testing.T) {
	assert.Empty(t, ValidateDates(now, models.NewWorkflowState()))
}

func TestCheckBudget(t *testing.T) {
	budget := decimal.NewFromInt(300)

	assert.Nil(t, CheckBudget(decimal.NewFromInt(250), budget))
	assert.Nil(t, CheckBudget(decimal.NewFromInt(300), budget))
	assert.NotNil(t, CheckBudget(decimal.RequireFromString("300.01"), budget))

	// No budget supplied: only the sanity floor applies.
	assert.Nil(t, CheckBudget(decimal.NewFromInt(9000), decimal.Zero))
}

func TestCheckBudgetSanityFloor(t *testing.T) {
	v := CheckBudget(decimal.RequireFromString("0.50"), decimal.NewFromInt(300))
	require.NotNil(t, v)
	assert.Contains(t, v.Rule, "sanity floor")
}

func TestCheckSpendCeiling(t *testing.T) {
	ceiling := decimal.NewFromInt(500)

	assert.Nil(t, CheckSpendCeiling(decimal.NewFromInt(500), ceiling))
	v := CheckSpendCeiling(decimal.NewFromInt(600), ceiling)
	require.NotNil(t, v)
	assert.Contains(t, v.Rule, "spend ceiling")
}

func TestWithSwapBuffer(t *testing.T) {
	buffered := WithSwapBuffer(decimal.NewFromInt(100), decimal.NewFromInt(2))
	assert.True(t, buffered.Equal(decimal.NewFromInt(102)), "got %s", buffered)

	unchanged := WithSwapBuffer(decimal.NewFromInt(100), decimal.Zero)
	assert.True(t, unchanged.Equal(decimal.NewFromInt(100)))
}
