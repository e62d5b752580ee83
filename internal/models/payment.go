package models

import "fmt"

// PaymentDetailKind discriminates the payment detail variants
type PaymentDetailKind string

const (
	PaymentDetailCash  PaymentDetailKind = "cash"
	PaymentDetailSplit PaymentDetailKind = "split"
	PaymentDetailOther PaymentDetailKind = "other"
)

// CashPaymentDetail records a single cash tender
type CashPaymentDetail struct {
	AmountPaid  float64 `json:"amount_paid" validate:"gte=0"`
	ChangeGiven float64 `json:"change_given" validate:"gte=0"`
}

// SplitEntry is one method/amount pair inside a split payment
type SplitEntry struct {
	Method PaymentMethod `json:"method" validate:"required,oneof=cash card mpesa credit"`
	Amount float64       `json:"amount" validate:"gt=0"`
}

// SplitPaymentDetail records a payment split across multiple methods
type SplitPaymentDetail struct {
	Payments    []SplitEntry `json:"payments" validate:"required,min=1,dive"`
	TotalPaid   float64      `json:"total_paid"`
	ChangeGiven float64      `json:"change_given"`
}

// OtherPaymentDetail records a non-cash single-method payment
type OtherPaymentDetail struct {
	Method    PaymentMethod `json:"method" validate:"required"`
	Reference *string       `json:"reference,omitempty"`
}

// PaymentDetail is a tagged union: exactly the variant named by Kind is set.
type PaymentDetail struct {
	Kind  PaymentDetailKind   `json:"kind" validate:"required,oneof=cash split other"`
	Cash  *CashPaymentDetail  `json:"cash,omitempty"`
	Split *SplitPaymentDetail `json:"split,omitempty"`
	Other *OtherPaymentDetail `json:"other,omitempty"`
}

// NewCashPayment builds a cash payment detail and computes the change
func NewCashPayment(amountPaid, total float64) *PaymentDetail {
	change := amountPaid - total
	if change < 0 {
		change = 0
	}
	return &PaymentDetail{
		Kind: PaymentDetailCash,
		Cash: &CashPaymentDetail{AmountPaid: amountPaid, ChangeGiven: roundToTwoDecimals(change)},
	}
}

// NewSplitPayment builds a split payment detail with the aggregate paid amount
func NewSplitPayment(payments []SplitEntry, total float64) *PaymentDetail {
	var paid float64
	for _, p := range payments {
		paid += p.Amount
	}
	change := paid - total
	if change < 0 {
		change = 0
	}
	return &PaymentDetail{
		Kind: PaymentDetailSplit,
		Split: &SplitPaymentDetail{
			Payments:    payments,
			TotalPaid:   roundToTwoDecimals(paid),
			ChangeGiven: roundToTwoDecimals(change),
		},
	}
}

// Validate checks that exactly the variant named by Kind is populated
func (p *PaymentDetail) Validate() error {
	switch p.Kind {
	case PaymentDetailCash:
		if p.Cash == nil || p.Split != nil || p.Other != nil {
			return fmt.Errorf("cash payment detail requires only the cash variant")
		}
		if p.Cash.AmountPaid < 0 {
			return fmt.Errorf("amount paid cannot be negative")
		}
	case PaymentDetailSplit:
		if p.Split == nil || p.Cash != nil || p.Other != nil {
			return fmt.Errorf("split payment detail requires only the split variant")
		}
		if len(p.Split.Payments) == 0 {
			return fmt.Errorf("split payment must have at least one entry")
		}
		for i, entry := range p.Split.Payments {
			if entry.Amount <= 0 {
				return fmt.Errorf("split entry %d: amount must be positive", i+1)
			}
			if entry.Method == PaymentMethodSplit {
				return fmt.Errorf("split entry %d: nested split payments are not allowed", i+1)
			}
		}
	case PaymentDetailOther:
		if p.Other == nil || p.Cash != nil || p.Split != nil {
			return fmt.Errorf("other payment detail requires only the other variant")
		}
	default:
		return fmt.Errorf("unknown payment detail kind: %s", p.Kind)
	}
	return nil
}
