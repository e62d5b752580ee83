package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PaymentMethod represents how an order was paid
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodMpesa  PaymentMethod = "mpesa"
	PaymentMethodSplit  PaymentMethod = "split"
	PaymentMethodCredit PaymentMethod = "credit"
)

// DiscountKind represents how a discount was entered
type DiscountKind string

const (
	DiscountKindPercentage DiscountKind = "percentage"
	DiscountKindFixed      DiscountKind = "fixed"
)

// Discount represents an order-level discount
type Discount struct {
	Kind       DiscountKind `json:"kind" validate:"required,oneof=percentage fixed"`
	InputValue float64      `json:"input_value" validate:"gte=0"`
	Amount     float64      `json:"amount"`
}

// ComputeAmount derives the discount amount for a given subtotal
func (d *Discount) ComputeAmount(subtotal float64) float64 {
	switch d.Kind {
	case DiscountKindPercentage:
		return roundToTwoDecimals(subtotal * d.InputValue / 100)
	case DiscountKindFixed:
		return roundToTwoDecimals(d.InputValue)
	}
	return 0
}

// LineItem represents a single product line on an order
type LineItem struct {
	ProductID   string  `json:"product_id" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
	Quantity    float64 `json:"quantity" validate:"gt=0"`
	ImageURL    *string `json:"image_url,omitempty"`
	LineTotal   float64 `json:"line_total"`
}

// Order represents a completed sale. The identifier is client-generated so an
// order keeps its identity whether it reached the server or was queued locally.
// Immutable after capture except for the synced flag and server-assigned ID.
type Order struct {
	ID            string         `json:"id" validate:"required"`
	LineItems     []LineItem     `json:"line_items" validate:"required,min=1,dive"`
	Subtotal      float64        `json:"subtotal"`
	Tax           float64        `json:"tax"`
	Discount      *Discount      `json:"discount,omitempty"`
	DeliveryCost  float64        `json:"delivery_cost"`
	Total         float64        `json:"total"`
	PaymentMethod PaymentMethod  `json:"payment_method" validate:"required,oneof=cash card mpesa split credit"`
	PaymentDetail *PaymentDetail `json:"payment_detail,omitempty"`
	Cashier       string         `json:"cashier" validate:"required"`
	CustomerID    *string        `json:"customer_id,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`

	Synced   bool   `json:"synced"`
	ServerID string `json:"server_id,omitempty"`
}

// NewOrder creates an order with a client-generated ID and timestamp
func NewOrder(cashier string) *Order {
	return &Order{
		ID:            uuid.New().String(),
		PaymentMethod: PaymentMethodCash,
		Cashier:       cashier,
		CreatedAt:     time.Now(),
	}
}

// CalculateTotals recomputes line totals, subtotal, discount and total.
// Total never goes below the delivery cost even when the discount exceeds
// the subtotal.
func (o *Order) CalculateTotals() {
	var subtotal float64
	for i := range o.LineItems {
		o.LineItems[i].LineTotal = roundToTwoDecimals(o.LineItems[i].UnitPrice * o.LineItems[i].Quantity)
		subtotal += o.LineItems[i].LineTotal
	}
	o.Subtotal = roundToTwoDecimals(subtotal)

	discounted := o.Subtotal
	if o.Discount != nil {
		o.Discount.Amount = o.Discount.ComputeAmount(o.Subtotal)
		discounted = o.Subtotal - o.Discount.Amount
		if discounted < 0 {
			discounted = 0
		}
	}

	o.Total = roundToTwoDecimals(discounted + o.Tax + o.DeliveryCost)
}

// Validate validates the order data and its totals invariant
func (o *Order) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("order ID is required")
	}

	if len(o.LineItems) == 0 {
		return fmt.Errorf("order must have at least one line item")
	}

	for i, item := range o.LineItems {
		if item.Quantity <= 0 {
			return fmt.Errorf("line item %d: quantity must be positive", i+1)
		}
		if item.UnitPrice < 0 {
			return fmt.Errorf("line item %d: unit price cannot be negative", i+1)
		}
	}

	if o.CreatedAt.IsZero() {
		return fmt.Errorf("order timestamp is required")
	}

	if o.Total < 0 {
		return fmt.Errorf("total cannot be negative")
	}

	discounted := o.Subtotal
	if o.Discount != nil {
		discounted = o.Subtotal - o.Discount.Amount
		if discounted < 0 {
			discounted = 0
		}
	}
	expectedTotal := discounted + o.Tax + o.DeliveryCost
	if abs(o.Total-expectedTotal) > 0.01 {
		return fmt.Errorf("total amount does not match subtotal, discount and delivery")
	}

	if o.PaymentDetail != nil {
		if err := o.PaymentDetail.Validate(); err != nil {
			return err
		}
		if o.PaymentMethod == PaymentMethodSplit && o.PaymentDetail.Kind != PaymentDetailSplit {
			return fmt.Errorf("split orders require split payment detail")
		}
	}

	return nil
}

// CashPortion returns the part of the order total that went into the cash
// drawer: the full total for cash orders, the cash sub-amount for splits,
// zero otherwise.
func (o *Order) CashPortion() float64 {
	switch o.PaymentMethod {
	case PaymentMethodCash:
		return o.Total
	case PaymentMethodSplit:
		if o.PaymentDetail != nil && o.PaymentDetail.Split != nil {
			var cash float64
			for _, p := range o.PaymentDetail.Split.Payments {
				if p.Method == PaymentMethodCash {
					cash += p.Amount
				}
			}
			return cash
		}
	}
	return 0
}

// MethodPortion returns the part of the order total attributed to the given
// payment method, resolving split payments to their sub-amounts.
func (o *Order) MethodPortion(method PaymentMethod) float64 {
	if o.PaymentMethod == method {
		return o.Total
	}
	if o.PaymentMethod == PaymentMethodSplit && o.PaymentDetail != nil && o.PaymentDetail.Split != nil {
		var amount float64
		for _, p := range o.PaymentDetail.Split.Payments {
			if p.Method == method {
				amount += p.Amount
			}
		}
		return amount
	}
	return 0
}

// roundToTwoDecimals rounds a float64 to 2 decimal places
func roundToTwoDecimals(value float64) float64 {
	if value < 0 {
		return -float64(int(-value*100+0.5)) / 100
	}
	return float64(int(value*100+0.5)) / 100
}

// abs returns the absolute value of a float64
func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
