package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"butchery-pos-api/internal/models"
	"butchery-pos-api/internal/remote"
)

// reconciliationService implements the Reconciler interface. A day moves
// Open -> Closed exactly once; history is never mutated, corrections are
// separate adjustment records.
type reconciliationService struct {
	store     remote.Store
	notifier  *DayCloseNotifier
	validator *validator.Validate
	logger    *logrus.Logger
}

// NewReconciliationService creates a new reconciliation service. notifier
// may be nil when day-close mail is not configured.
func NewReconciliationService(store remote.Store, notifier *DayCloseNotifier, logger *logrus.Logger) Reconciler {
	return &reconciliationService{
		store:     store,
		notifier:  notifier,
		validator: validator.New(),
		logger:    logger,
	}
}

// ComputeExpectedCash sums the cash-attributed portion of the day's orders
// and subtracts the day's expenses, which are paid out of the drawer. The
// result may be negative; that is a valid, surfaced state.
func (s *reconciliationService) ComputeExpectedCash(ctx context.Context, dateKey string) (float64, error) {
	orders, expenses, err := s.loadDay(ctx, dateKey)
	if err != nil {
		return 0, err
	}
	return expectedCash(orders, expenses), nil
}

// ComputePaymentBreakdown buckets the day's revenue by payment method,
// resolving split payments to their designated sub-amounts.
func (s *reconciliationService) ComputePaymentBreakdown(ctx context.Context, dateKey string) (*models.PaymentBreakdown, error) {
	orders, err := s.store.OrdersByDay(ctx, dateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders for %s: %w", dateKey, err)
	}
	breakdown := paymentBreakdown(orders)
	return &breakdown, nil
}

// CloseDay closes the business day: refuses an already-closed date and an
// uncounted drawer, computes expected cash and variance, and persists the
// record with a server-assigned close timestamp.
func (s *reconciliationService) CloseDay(ctx context.Context, req *CloseDayRequest) (*models.ReconciliationRecord, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request cannot be nil", ErrValidation)
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if _, err := models.ParseDateKey(req.DateKey); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	existing, err := s.store.ReconciliationByDate(ctx, req.DateKey)
	if err == nil && existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrDayAlreadyClosed, req.DateKey)
	}
	if err != nil && !remote.IsNotFound(err) {
		return nil, fmt.Errorf("failed to check existing reconciliation: %w", err)
	}

	actualCash, err := req.Denominations.Total()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if actualCash == 0 {
		return nil, ErrEmptyDrawer
	}

	orders, expenses, err := s.loadDay(ctx, req.DateKey)
	if err != nil {
		return nil, err
	}

	record := models.NewReconciliationRecord(req.DateKey, req.ClosedBy)
	record.OrderCount = len(orders)
	record.OrderRevenue = sumRevenue(orders)
	record.Breakdown = paymentBreakdown(orders)
	record.ExpenseCount = len(expenses)
	record.ExpenseTotal = sumExpenses(expenses)
	record.ExpectedCash = expectedCash(orders, expenses)
	record.ActualCash = actualCash
	record.SetVariance()
	record.Denominations = req.Denominations
	record.Notes = req.Notes

	if err := record.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	serverID, err := s.store.CreateReconciliation(ctx, *record)
	if err != nil {
		if remote.IsConflict(err) {
			// Another terminal closed the date between our check and write.
			return nil, fmt.Errorf("%w: %s", ErrDayAlreadyClosed, req.DateKey)
		}
		return nil, fmt.Errorf("failed to persist reconciliation: %w", err)
	}
	record.ID = serverID

	// Read back for the server-assigned close timestamp; the local record is
	// already authoritative for the money figures.
	if persisted, err := s.store.ReconciliationByDate(ctx, req.DateKey); err == nil && persisted != nil {
		record = persisted
	}

	s.logger.WithFields(logrus.Fields{
		"date":      record.DateKey,
		"closed_by": record.ClosedBy,
		"expected":  record.ExpectedCash,
		"actual":    record.ActualCash,
		"variance":  record.Variance,
	}).Info("Day closed")

	if s.notifier != nil {
		// Mail failures are logged, never block the close.
		go func(rec models.ReconciliationRecord) {
			if err := s.notifier.Notify(&rec); err != nil {
				s.logger.WithError(err).Warn("Day-close summary mail failed")
			}
		}(*record)
	}

	return record, nil
}

// TodayReconciliation implements Reconciler.TodayReconciliation
func (s *reconciliationService) TodayReconciliation(ctx context.Context) (*models.ReconciliationRecord, error) {
	record, err := s.store.ReconciliationByDate(ctx, models.DateKey(time.Now()))
	if remote.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load today's reconciliation: %w", err)
	}
	return record, nil
}

func (s *reconciliationService) loadDay(ctx context.Context, dateKey string) ([]models.Order, []models.Expense, error) {
	orders, err := s.store.OrdersByDay(ctx, dateKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load orders for %s: %w", dateKey, err)
	}
	expenses, err := s.store.ExpensesByDay(ctx, dateKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load expenses for %s: %w", dateKey, err)
	}
	return orders, expenses, nil
}

func expectedCash(orders []models.Order, expenses []models.Expense) float64 {
	var cash float64
	for _, order := range orders {
		cash += order.CashPortion()
	}
	return round2(cash - sumExpenses(expenses))
}

func paymentBreakdown(orders []models.Order) models.PaymentBreakdown {
	var breakdown models.PaymentBreakdown
	for _, order := range orders {
		breakdown.Cash += order.MethodPortion(models.PaymentMethodCash)
		breakdown.Mpesa += order.MethodPortion(models.PaymentMethodMpesa)
		breakdown.Card += order.MethodPortion(models.PaymentMethodCard)
		breakdown.Credit += order.MethodPortion(models.PaymentMethodCredit)
	}
	breakdown.Cash = round2(breakdown.Cash)
	breakdown.Mpesa = round2(breakdown.Mpesa)
	breakdown.Card = round2(breakdown.Card)
	breakdown.Credit = round2(breakdown.Credit)
	return breakdown
}

func sumRevenue(orders []models.Order) float64 {
	var total float64
	for _, order := range orders {
		total += order.Total
	}
	return round2(total)
}

func sumExpenses(expenses []models.Expense) float64 {
	var total float64
	for _, expense := range expenses {
		total += expense.Amount
	}
	return round2(total)
}

func round2(value float64) float64 {
	if value < 0 {
		return -float64(int(-value*100+0.5)) / 100
	}
	return float64(int(value*100+0.5)) / 100
}
