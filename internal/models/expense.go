package models

import "time"

// ExpenseCategory classifies where drawer money went
type ExpenseCategory string

const (
	ExpenseCategoryStock     ExpenseCategory = "stock"
	ExpenseCategoryTransport ExpenseCategory = "transport"
	ExpenseCategoryUtilities ExpenseCategory = "utilities"
	ExpenseCategoryWages     ExpenseCategory = "wages"
	ExpenseCategoryOther     ExpenseCategory = "other"
)

// Expense is a cash outflow recorded against the drawer during a business day.
// Expenses are assumed paid out of the drawer, so the reconciliation engine
// subtracts them from expected cash.
type Expense struct {
	ID          string          `json:"id"`
	Amount      float64         `json:"amount" validate:"gt=0"`
	Category    ExpenseCategory `json:"category"`
	Description string          `json:"description,omitempty"`
	RecordedBy  string          `json:"recorded_by,omitempty"`
	IncurredAt  time.Time       `json:"incurred_at"`
}
