package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// DateKeyLayout is the calendar-date key format used for reconciliation records
const DateKeyLayout = "2006-01-02"

// DateKey returns the calendar-date key for a timestamp
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// ParseDateKey parses a calendar-date key
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.Parse(DateKeyLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q: %w", key, err)
	}
	return t, nil
}

// DenominationCount maps bill and coin face values to physical counts from a
// drawer count. Keys are decimal face values ("1000", "0.5").
type DenominationCount struct {
	Bills map[string]int `json:"bills"`
	Coins map[string]int `json:"coins"`
}

// Total computes the counted cash over both maps
func (d *DenominationCount) Total() (float64, error) {
	var total float64
	for _, group := range []map[string]int{d.Bills, d.Coins} {
		for face, count := range group {
			value, err := strconv.ParseFloat(face, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid denomination face value %q: %w", face, err)
			}
			if value < 0 || count < 0 {
				return 0, fmt.Errorf("denomination %q: face value and count must be non-negative", face)
			}
			total += value * float64(count)
		}
	}
	return roundToTwoDecimals(total), nil
}

// PaymentBreakdown buckets a day's order revenue by payment method
type PaymentBreakdown struct {
	Cash   float64 `json:"cash"`
	Mpesa  float64 `json:"mpesa"`
	Card   float64 `json:"card"`
	Credit float64 `json:"credit"`
}

// ReconciliationRecord is the immutable end-of-day closure for one calendar
// date: expected vs. counted cash and the variance between them. At most one
// record exists per date; corrections are separate adjustment records, never
// mutations of this one.
type ReconciliationRecord struct {
	ID               string            `json:"id"`
	DateKey          string            `json:"date_key" validate:"required"`
	ClosedBy         string            `json:"closed_by" validate:"required"`
	ClosedAt         time.Time         `json:"closed_at"`
	OrderCount       int               `json:"order_count"`
	OrderRevenue     float64           `json:"order_revenue"`
	Breakdown        PaymentBreakdown  `json:"payment_breakdown"`
	ExpenseCount     int               `json:"expense_count"`
	ExpenseTotal     float64           `json:"expense_total"`
	ExpectedCash     float64           `json:"expected_cash"`
	ActualCash       float64           `json:"actual_cash"`
	Variance         float64           `json:"variance"`
	VariancePercent  *float64          `json:"variance_percent,omitempty"`
	VarianceUndef    bool              `json:"variance_percent_undefined,omitempty"`
	Denominations    DenominationCount `json:"denominations"`
	Notes            string            `json:"notes,omitempty"`
}

// NewReconciliationRecord creates a record for a date with a generated ID.
// ClosedAt is left zero; the remote store assigns the close timestamp so a
// skewed terminal clock cannot dispute when the day was closed.
func NewReconciliationRecord(dateKey, closedBy string) *ReconciliationRecord {
	return &ReconciliationRecord{
		ID:       uuid.New().String(),
		DateKey:  dateKey,
		ClosedBy: closedBy,
	}
}

// SetVariance computes variance and variance percent from the expected and
// actual figures. When expected cash is zero the percentage has no defined
// value; a nonzero variance is flagged instead of dividing by zero.
func (r *ReconciliationRecord) SetVariance() {
	r.Variance = roundToTwoDecimals(r.ActualCash - r.ExpectedCash)
	if r.ExpectedCash != 0 {
		pct := roundToTwoDecimals(r.Variance / r.ExpectedCash * 100)
		r.VariancePercent = &pct
		r.VarianceUndef = false
		return
	}
	if r.Variance != 0 {
		r.VariancePercent = nil
		r.VarianceUndef = true
		return
	}
	zero := 0.0
	r.VariancePercent = &zero
	r.VarianceUndef = false
}

// Validate validates the reconciliation record
func (r *ReconciliationRecord) Validate() error {
	if r.DateKey == "" {
		return fmt.Errorf("date key is required")
	}
	if _, err := ParseDateKey(r.DateKey); err != nil {
		return err
	}
	if r.ClosedBy == "" {
		return fmt.Errorf("closed by is required")
	}
	if r.ActualCash == 0 {
		return fmt.Errorf("actual cash cannot be zero: the drawer must be counted before closing")
	}
	return nil
}
