package models

import (
	"testing"
)

func sampleOrder() *Order {
	order := NewOrder("jane@butchery.local")
	order.LineItems = []LineItem{
		{ProductID: "prod-1", Name: "Beef sirloin", UnitPrice: 800, Quantity: 1.25},
		{ProductID: "prod-2", Name: "Goat ribs", UnitPrice: 650, Quantity: 2},
	}
	order.CalculateTotals()
	return order
}

func TestOrder_CalculateTotals(t *testing.T) {
	order := sampleOrder()

	if order.Subtotal != 2300 {
		t.Errorf("Subtotal = %v, want 2300", order.Subtotal)
	}
	if order.Total != 2300 {
		t.Errorf("Total = %v, want 2300", order.Total)
	}

	if err := order.Validate(); err != nil {
		t.Errorf("Validate() failed: %v", err)
	}
}

func TestOrder_CalculateTotals_PercentageDiscount(t *testing.T) {
	order := sampleOrder()
	order.Discount = &Discount{Kind: DiscountKindPercentage, InputValue: 10}
	order.CalculateTotals()

	if order.Discount.Amount != 230 {
		t.Errorf("Discount.Amount = %v, want 230", order.Discount.Amount)
	}
	if order.Total != 2070 {
		t.Errorf("Total = %v, want 2070", order.Total)
	}
	if err := order.Validate(); err != nil {
		t.Errorf("Validate() failed: %v", err)
	}
}

func TestOrder_CalculateTotals_DiscountExceedsSubtotal(t *testing.T) {
	order := sampleOrder()
	order.Discount = &Discount{Kind: DiscountKindFixed, InputValue: 5000}
	order.DeliveryCost = 150
	order.CalculateTotals()

	// Discount floors at zero; delivery is still owed.
	if order.Total != 150 {
		t.Errorf("Total = %v, want 150", order.Total)
	}
	if err := order.Validate(); err != nil {
		t.Errorf("Validate() failed: %v", err)
	}
}

func TestOrder_Validate_TotalMismatch(t *testing.T) {
	order := sampleOrder()
	order.Total = 9999

	if err := order.Validate(); err == nil {
		t.Error("Validate() should fail when total does not match line items")
	}
}

func TestOrder_Validate_NoLineItems(t *testing.T) {
	order := NewOrder("jane@butchery.local")
	order.CalculateTotals()

	if err := order.Validate(); err == nil {
		t.Error("Validate() should fail for an order without line items")
	}
}

func TestOrder_CashPortion_CashOrder(t *testing.T) {
	order := sampleOrder()
	order.PaymentMethod = PaymentMethodCash
	order.PaymentDetail = NewCashPayment(2500, order.Total)

	if got := order.CashPortion(); got != order.Total {
		t.Errorf("CashPortion() = %v, want %v", got, order.Total)
	}
	if order.PaymentDetail.Cash.ChangeGiven != 200 {
		t.Errorf("ChangeGiven = %v, want 200", order.PaymentDetail.Cash.ChangeGiven)
	}
}

func TestOrder_CashPortion_SplitOrder(t *testing.T) {
	order := sampleOrder()
	order.PaymentMethod = PaymentMethodSplit
	order.PaymentDetail = NewSplitPayment([]SplitEntry{
		{Method: PaymentMethodCash, Amount: 300},
		{Method: PaymentMethodMpesa, Amount: 2000},
	}, order.Total)

	if got := order.CashPortion(); got != 300 {
		t.Errorf("CashPortion() = %v, want 300", got)
	}
	if got := order.MethodPortion(PaymentMethodMpesa); got != 2000 {
		t.Errorf("MethodPortion(mpesa) = %v, want 2000", got)
	}
	if err := order.Validate(); err != nil {
		t.Errorf("Validate() failed: %v", err)
	}
}

func TestOrder_CashPortion_MpesaOrder(t *testing.T) {
	order := sampleOrder()
	order.PaymentMethod = PaymentMethodMpesa

	if got := order.CashPortion(); got != 0 {
		t.Errorf("CashPortion() = %v, want 0", got)
	}
}

func TestPaymentDetail_Validate_RejectsMixedVariants(t *testing.T) {
	detail := &PaymentDetail{
		Kind:  PaymentDetailCash,
		Cash:  &CashPaymentDetail{AmountPaid: 100},
		Split: &SplitPaymentDetail{Payments: []SplitEntry{{Method: PaymentMethodCash, Amount: 100}}},
	}

	if err := detail.Validate(); err == nil {
		t.Error("Validate() should reject a detail with multiple variants set")
	}
}

func TestPaymentDetail_Validate_RejectsNestedSplit(t *testing.T) {
	detail := NewSplitPayment([]SplitEntry{{Method: PaymentMethodSplit, Amount: 100}}, 100)

	if err := detail.Validate(); err == nil {
		t.Error("Validate() should reject a split entry with method split")
	}
}

func TestOrder_Validate_SplitMethodRequiresSplitDetail(t *testing.T) {
	order := sampleOrder()
	order.PaymentMethod = PaymentMethodSplit
	order.PaymentDetail = NewCashPayment(order.Total, order.Total)

	if err := order.Validate(); err == nil {
		t.Error("Validate() should reject a split order with cash payment detail")
	}
}
