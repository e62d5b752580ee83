package services

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"butchery-pos-api/internal/models"
	"butchery-pos-api/internal/remote"
	"butchery-pos-api/internal/repositories"
)

// orderService implements the OrderCapture interface. The fallback is
// binary: a connectivity failure queues the order verbatim for later replay,
// a semantic rejection surfaces to the cashier. The two must never be
// confused, because the former is retryable and the latter is not.
type orderService struct {
	store       remote.Store
	pendingRepo repositories.PendingOrderRepository
	queueRepo   repositories.SyncQueueRepository
	monitor     *ConnectivityMonitor
	validator   *validator.Validate
	retryConfig *remote.RetryConfig
	logger      *logrus.Logger
}

// NewOrderService creates a new order capture service. retryConfig may be
// nil, in which case a failed remote write falls back to the local queue
// immediately instead of retrying in place.
func NewOrderService(
	store remote.Store,
	pendingRepo repositories.PendingOrderRepository,
	queueRepo repositories.SyncQueueRepository,
	monitor *ConnectivityMonitor,
	retryConfig *remote.RetryConfig,
	logger *logrus.Logger,
) OrderCapture {
	return &orderService{
		store:       store,
		pendingRepo: pendingRepo,
		queueRepo:   queueRepo,
		monitor:     monitor,
		validator:   validator.New(),
		retryConfig: retryConfig,
		logger:      logger,
	}
}

// Capture accepts a finalized sale. The order gets a client-generated ID and
// timestamp before any network attempt so it keeps its identity whether it
// reaches the server now or syncs later.
func (s *orderService) Capture(ctx context.Context, req *CaptureOrderRequest) (*CaptureResult, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request cannot be nil", ErrValidation)
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	order := s.buildOrder(req)
	if err := order.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	offlineID := models.NewOfflineID()

	serverID, err := s.createRemote(ctx, *order, offlineID)
	if err == nil {
		s.monitor.ReportSuccess()
		order.Synced = true
		order.ServerID = serverID

		s.logger.WithFields(logrus.Fields{
			"order_id":  order.ID,
			"server_id": serverID,
			"total":     order.Total,
		}).Info("Order captured online")

		s.applyStockAdjustments(ctx, order)
		return &CaptureResult{Order: *order}, nil
	}

	s.monitor.ReportFailure(err)

	if !remote.IsConnectivity(err) {
		// The server saw the order and rejected it on its merits. Queuing it
		// would just replay the same rejection later.
		return nil, fmt.Errorf("order rejected by remote store: %w", err)
	}

	record, saveErr := s.pendingRepo.SaveOffline(ctx, *order)
	if saveErr != nil {
		return nil, fmt.Errorf("order capture failed and offline fallback failed: %w", saveErr)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":   order.ID,
		"offline_id": record.OfflineID,
		"total":      order.Total,
	}).Warn("Remote store unreachable, order queued locally")

	s.enqueueStockMarkers(ctx, order)

	return &CaptureResult{
		Order:     record.Order,
		Queued:    true,
		OfflineID: record.OfflineID,
	}, nil
}

// PendingOrders implements OrderCapture.PendingOrders
func (s *orderService) PendingOrders(ctx context.Context) ([]*models.PendingOrderRecord, error) {
	records, err := s.pendingRepo.GetPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending orders: %w", err)
	}
	return records, nil
}

func (s *orderService) buildOrder(req *CaptureOrderRequest) *models.Order {
	order := models.NewOrder(req.Cashier)
	order.LineItems = req.LineItems
	order.Discount = req.Discount
	order.Tax = req.Tax
	order.DeliveryCost = req.DeliveryCost
	order.PaymentMethod = req.PaymentMethod
	order.PaymentDetail = req.PaymentDetail
	order.CustomerID = req.CustomerID
	order.CalculateTotals()
	return order
}

func (s *orderService) createRemote(ctx context.Context, order models.Order, offlineID string) (string, error) {
	if s.retryConfig == nil {
		return s.store.CreateOrder(ctx, order, offlineID)
	}

	var serverID string
	err := remote.WithRetry(ctx, s.retryConfig, func(ctx context.Context) error {
		id, err := s.store.CreateOrder(ctx, order, offlineID)
		if err != nil {
			return err
		}
		serverID = id
		return nil
	})
	return serverID, err
}

// applyStockAdjustments decrements stock for each line item after a
// successful remote create. Each adjustment is recorded as a durable marker
// first, then applied; the marker is cleared only on success, so a crash or
// failure between order create and stock update leaves a replayable trail
// instead of silently drifting inventory.
func (s *orderService) applyStockAdjustments(ctx context.Context, order *models.Order) {
	for _, item := range order.LineItems {
		adjustment := models.StockAdjustment{
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Delta:     -item.Quantity,
		}

		entry, err := s.enqueueMarker(ctx, adjustment)
		if err != nil {
			s.logger.WithError(err).WithField("product_id", item.ProductID).Error("Failed to record stock adjustment marker")
			continue
		}

		if err := s.store.AdjustStock(ctx, item.ProductID, adjustment.Delta); err != nil {
			s.monitor.ReportFailure(err)
			s.logger.WithError(err).WithFields(logrus.Fields{
				"order_id":   order.ID,
				"product_id": item.ProductID,
			}).Warn("Stock adjustment deferred to sync")
			continue
		}

		if err := s.queueRepo.Delete(ctx, entry.ID); err != nil {
			s.logger.WithError(err).WithField("ref", entry.Ref).Error("Failed to clear applied stock adjustment marker")
		}
	}
}

// enqueueStockMarkers queues the stock adjustments of an offline order. They
// replay after the order itself syncs.
func (s *orderService) enqueueStockMarkers(ctx context.Context, order *models.Order) {
	for _, item := range order.LineItems {
		adjustment := models.StockAdjustment{
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Delta:     -item.Quantity,
		}
		if _, err := s.enqueueMarker(ctx, adjustment); err != nil {
			s.logger.WithError(err).WithField("product_id", item.ProductID).Error("Failed to queue stock adjustment")
		}
	}
}

func (s *orderService) enqueueMarker(ctx context.Context, adjustment models.StockAdjustment) (*models.SyncQueueEntry, error) {
	payload, err := adjustment.Marshal()
	if err != nil {
		return nil, err
	}

	entry := &models.SyncQueueEntry{
		Type:    models.MutationTypeStockAdjustment,
		Action:  models.MutationActionUpdate,
		Ref:     adjustment.OrderID + "/" + adjustment.ProductID,
		Payload: payload,
	}
	if err := s.queueRepo.Enqueue(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}
