package pricing_models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtbook/courtbook/models/shared_models"
	"github.com/courtbook/courtbook/utils"
)

// rules below are pre-sorted the way RulesForDate returns them:
// priority DESC, created_at DESC, id DESC.
func sortedRules(rules ...PricingRule) []PricingRule {
	return rules
}

func recurringRule(start, end shared_models.TimeOfDay, price float64, priority int) PricingRule {
	dow := int16(0)
	return PricingRule{
		ID: uuid.New(), RuleType: shared_models.RuleRecurring, DayOfWeek: &dow,
		StartTime: start, EndTime: end, PricePer30Min: price, Priority: priority,
		IsActive: true,
	}
}

func oneTimeRule(start, end shared_models.TimeOfDay, price float64, priority int) PricingRule {
	d := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	return PricingRule{
		ID: uuid.New(), RuleType: shared_models.RuleOneTime, Date: &d,
		StartTime: start, EndTime: end, PricePer30Min: price, Priority: priority,
		IsActive: true,
	}
}

func TestPickApplicableRuleOneTimeBeatsRecurring(t *testing.T) {
	recurring := recurringRule(0, 1440, 600, 100)
	oneTime := oneTimeRule(0, 1440, 900, 0)
	// Priority sorting puts the recurring rule first; the one-time rule
	// still wins.
	rules := sortedRules(recurring, oneTime)

	picked := PickApplicableRule(rules, 600)
	require.NotNil(t, picked)
	assert.Equal(t, oneTime.ID, picked.ID)
}

func TestPickApplicableRuleHighestPriorityWins(t *testing.T) {
	peak := recurringRule(1080, 1320, 1200, 10) // 18:00-22:00
	base := recurringRule(360, 1320, 600, 0)    // 06:00-22:00
	rules := sortedRules(peak, base)

	picked := PickApplicableRule(rules, 1110) // 18:30
	require.NotNil(t, picked)
	assert.Equal(t, peak.ID, picked.ID)

	picked = PickApplicableRule(rules, 600) // 10:00, outside peak window
	require.NotNil(t, picked)
	assert.Equal(t, base.ID, picked.ID)
}

func TestPickApplicableRuleBoundaries(t *testing.T) {
	rule := recurringRule(360, 720, 600, 0) // 06:00-12:00
	rules := sortedRules(rule)

	assert.NotNil(t, PickApplicableRule(rules, 360))  // start inclusive
	assert.NotNil(t, PickApplicableRule(rules, 690))  // 11:30 slot
	assert.Nil(t, PickApplicableRule(rules, 720))     // end exclusive
	assert.Nil(t, PickApplicableRule(rules, 330))     // before window
}

func TestPickApplicableRuleDeterministicTieBreak(t *testing.T) {
	older := recurringRule(0, 1440, 500, 5)
	newer := recurringRule(0, 1440, 700, 5)
	// Same priority: the later-created rule sorts first, so it wins every
	// time for every slot.
	rules := sortedRules(newer, older)

	for _, tod := range []shared_models.TimeOfDay{0, 360, 720, 1410} {
		picked := PickApplicableRule(rules, tod)
		require.NotNil(t, picked)
		assert.Equal(t, newer.ID, picked.ID)
	}
}

func TestComputeRangePriceSumsSlots(t *testing.T) {
	base := recurringRule(360, 1320, 600, 0)
	rules := sortedRules(base)
	date := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	// One hour at 600 per 30 minutes.
	total, err := ComputeRangePrice(rules, uuid.New(), date, 600, 660)
	require.NoError(t, err)
	assert.InDelta(t, 1200.0, total, 0.001)
}

func TestComputeRangePriceMixedWindows(t *testing.T) {
	peak := recurringRule(1080, 1320, 1200, 10) // 18:00-22:00
	base := recurringRule(360, 1320, 600, 0)
	rules := sortedRules(peak, base)
	date := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	// 17:00-19:00: two base slots + two peak slots.
	total, err := ComputeRangePrice(rules, uuid.New(), date, 1020, 1140)
	require.NoError(t, err)
	assert.InDelta(t, 600*2+1200*2, total, 0.001)
}

func TestComputeRangePriceGapFailsWholeRange(t *testing.T) {
	morning := recurringRule(360, 720, 600, 0) // 06:00-12:00 only
	rules := sortedRules(morning)
	date := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	courtID := uuid.New()

	// 11:30-12:30: the 12:00 slot has no rule.
	_, err := ComputeRangePrice(rules, courtID, date, 690, 750)
	require.Error(t, err)
	assert.True(t, utils.IsPricingGap(err))

	var gap *utils.PricingGapError
	require.ErrorAs(t, err, &gap)
	assert.Equal(t, courtID, gap.CourtID)
	assert.Equal(t, 12, gap.At.Hour())
}

func TestComputeRangePriceToMidnight(t *testing.T) {
	allDay := recurringRule(0, shared_models.MinutesPerDay, 600, 0)
	date := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	courtID := uuid.New()

	// 23:00-24:00: two slots, priced like any other hour.
	total, err := ComputeRangePrice(sortedRules(allDay), courtID, date, 1380, shared_models.MinutesPerDay)
	require.NoError(t, err)
	assert.InDelta(t, 1200.0, total, 0.001)

	// Rules ending at 23:30 leave the final slot uncovered; the range must
	// fail rather than price to zero.
	early := recurringRule(0, 1410, 600, 0)
	_, err = ComputeRangePrice(sortedRules(early), courtID, date, 1380, shared_models.MinutesPerDay)
	var gap *utils.PricingGapError
	require.ErrorAs(t, err, &gap)
	assert.Equal(t, 23, gap.At.Hour())
	assert.Equal(t, 30, gap.At.Minute())
}

func TestCoversHalfOpen(t *testing.T) {
	rule := recurringRule(600, 660, 500, 0)
	assert.True(t, rule.Covers(600))
	assert.True(t, rule.Covers(630))
	assert.False(t, rule.Covers(660))
}
