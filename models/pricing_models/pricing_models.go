package pricing_models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/courtbook/courtbook/logger"
	"github.com/courtbook/courtbook/models/shared_models"
	"github.com/courtbook/courtbook/utils"
)

// PricingRule prices 30-minute slots inside its time window. RECURRING rules
// carry a day of week, ONE_TIME rules carry a calendar date; a row has exactly
// one of the two (enforced by a table check).
type PricingRule struct {
	ID             uuid.UUID               `json:"id"`
	CourtID        uuid.UUID               `json:"court_id"`
	OrganizationID uuid.UUID               `json:"organization_id"`
	RuleType       shared_models.RuleType  `json:"rule_type"`
	DayOfWeek      *int16                  `json:"day_of_week,omitempty"`
	Date           *time.Time              `json:"date,omitempty"`
	StartTime      shared_models.TimeOfDay `json:"start_time"`
	EndTime        shared_models.TimeOfDay `json:"end_time"`
	PricePer30Min  float64                 `json:"price_per_30_min"`
	IsPeak         bool                    `json:"is_peak"`
	Priority       int                     `json:"priority"`
	IsActive       bool                    `json:"is_active"`
	CreatedBy      *uuid.UUID              `json:"created_by,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

// Covers reports whether the slot starting at tod falls inside the rule's
// window. Start is inclusive, end exclusive.
func (r *PricingRule) Covers(tod shared_models.TimeOfDay) bool {
	return r.StartTime <= tod && tod < r.EndTime
}

// PickApplicableRule selects the rule pricing the slot that starts at tod.
// One-time rules beat recurring rules; within a kind the highest priority
// wins. rules must already be ordered by priority DESC, created_at DESC,
// id DESC, as RulesForDate returns them. Returns nil when no rule covers
// the slot.
func PickApplicableRule(rules []PricingRule, tod shared_models.TimeOfDay) *PricingRule {
	for i := range rules {
		if rules[i].RuleType == shared_models.RuleOneTime && rules[i].Covers(tod) {
			return &rules[i]
		}
	}
	for i := range rules {
		if rules[i].RuleType == shared_models.RuleRecurring && rules[i].Covers(tod) {
			return &rules[i]
		}
	}
	return nil
}

// ComputeRangePrice sums the per-slot prices for every 30-minute slot in
// [start, end). A slot no rule covers is a pricing gap and fails the whole
// range.
func ComputeRangePrice(rules []PricingRule, courtID uuid.UUID, date time.Time, start, end shared_models.TimeOfDay) (float64, error) {
	var total float64
	for tod := start; tod < end; tod += shared_models.SlotMinutes {
		rule := PickApplicableRule(rules, tod)
		if rule == nil {
			return 0, &utils.PricingGapError{CourtID: courtID, At: tod.At(date)}
		}
		total += rule.PricePer30Min
	}
	return total, nil
}

const ruleColumns = `id, court_id, organization_id, rule_type, day_of_week, date,
		start_time, end_time, price_per_30_min, is_peak, priority, is_active,
		created_by, created_at, updated_at`

func scanRule(row interface{ Scan(...any) error }) (*PricingRule, error) {
	var r PricingRule
	var ruleType string
	var start, end pgtype.Time
	if err := row.Scan(&r.ID, &r.CourtID, &r.OrganizationID, &ruleType,
		&r.DayOfWeek, &r.Date, &start, &end, &r.PricePer30Min, &r.IsPeak,
		&r.Priority, &r.IsActive, &r.CreatedBy, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	r.RuleType, err = shared_models.ParseRuleType(ruleType)
	if err != nil {
		return nil, fmt.Errorf("corrupt pricing rule row %s: %w", r.ID, err)
	}
	r.StartTime = shared_models.TimeOfDayFromMicroseconds(start.Microseconds)
	r.EndTime = shared_models.TimeOfDayFromMicroseconds(end.Microseconds)
	return &r, nil
}

// RulesForDate fetches the active rules that can price any slot on the date:
// one-time rules for the exact date plus recurring rules for its weekday.
// Ordering is the tie-break contract PickApplicableRule relies on.
func RulesForDate(ctx context.Context, q shared_models.Querier, courtID uuid.UUID, date time.Time) ([]PricingRule, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM pricing_rules
		WHERE court_id = $1 AND is_active = TRUE
		  AND ((rule_type = 'ONE_TIME' AND date = $2)
		    OR (rule_type = 'RECURRING' AND day_of_week = $3))
		ORDER BY priority DESC, created_at DESC, id DESC`, ruleColumns)

	rows, err := q.Query(ctx, query, courtID, date, shared_models.DayOfWeek(date))
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch pricing rules for court %s on %s: %v",
			courtID, date.Format("2006-01-02"), err)
		return nil, fmt.Errorf("database error fetching pricing rules: %w", err)
	}
	defer rows.Close()

	var out []PricingRule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pricing rule: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// CalculateBookingPrice prices the whole booking range. Bookings never span
// midnight, so a single date's rule set covers every slot.
func CalculateBookingPrice(ctx context.Context, q shared_models.Querier, courtID uuid.UUID, date time.Time, start, end shared_models.TimeOfDay) (float64, error) {
	rules, err := RulesForDate(ctx, q, courtID, date)
	if err != nil {
		return 0, err
	}
	return ComputeRangePrice(rules, courtID, date, start, end)
}

// CreatePricingRule inserts a new rule. Shape validation happens in the
// controller; the table checks back it up.
func CreatePricingRule(ctx context.Context, q shared_models.Querier, r *PricingRule) (*PricingRule, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID: %w", err)
	}
	r.ID = id
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
	r.IsActive = true

	start := pgtype.Time{Microseconds: r.StartTime.Microseconds(), Valid: true}
	end := pgtype.Time{Microseconds: r.EndTime.Microseconds(), Valid: true}

	_, err = q.Exec(ctx, `
		INSERT INTO pricing_rules
			(id, court_id, organization_id, rule_type, day_of_week, date,
			 start_time, end_time, price_per_30_min, is_peak, priority, is_active,
			 created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		r.ID, r.CourtID, r.OrganizationID, string(r.RuleType), r.DayOfWeek, r.Date,
		start, end, r.PricePer30Min, r.IsPeak, r.Priority, r.IsActive,
		r.CreatedBy, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to create pricing rule for court %s: %v", r.CourtID, err)
		return nil, fmt.Errorf("failed to create pricing rule: %w", err)
	}

	logger.InfoLogger.Infof("Pricing rule %s created for court %s (%s, priority %d, %.2f/30min)",
		r.ID, r.CourtID, r.RuleType, r.Priority, r.PricePer30Min)
	return r, nil
}

// ListPricingRules returns the rules for a court within the organization,
// highest precedence first.
func ListPricingRules(ctx context.Context, q shared_models.Querier, organizationID, courtID uuid.UUID) ([]PricingRule, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM pricing_rules
		WHERE court_id = $1 AND organization_id = $2
		ORDER BY priority DESC, created_at DESC, id DESC`, ruleColumns)

	rows, err := q.Query(ctx, query, courtID, organizationID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list pricing rules for court %s: %v", courtID, err)
		return nil, fmt.Errorf("database error listing pricing rules: %w", err)
	}
	defer rows.Close()

	rules := []PricingRule{}
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pricing rule: %w", err)
		}
		rules = append(rules, *r)
	}
	return rules, rows.Err()
}
