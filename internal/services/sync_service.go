package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"butchery-pos-api/internal/models"
	"butchery-pos-api/internal/remote"
	"butchery-pos-api/internal/repositories"
)

// SyncEngine drains the local durable queue against the remote store. Drains
// are strictly sequential: item N+1 is not attempted until item N's outcome
// is durably recorded, so a crash mid-pass never re-submits a synced order.
type SyncEngine struct {
	store       remote.Store
	pendingRepo repositories.PendingOrderRepository
	queueRepo   repositories.SyncQueueRepository
	monitor     *ConnectivityMonitor
	logger      *logrus.Logger

	running atomic.Bool

	mu        sync.Mutex
	listeners []func(SyncReport)
}

// NewSyncEngine creates a new synchronization engine
func NewSyncEngine(
	store remote.Store,
	pendingRepo repositories.PendingOrderRepository,
	queueRepo repositories.SyncQueueRepository,
	monitor *ConnectivityMonitor,
	logger *logrus.Logger,
) *SyncEngine {
	return &SyncEngine{
		store:       store,
		pendingRepo: pendingRepo,
		queueRepo:   queueRepo,
		monitor:     monitor,
		logger:      logger,
	}
}

// BindMonitor subscribes the engine to online transitions so reconnection
// triggers a drain automatically.
func (s *SyncEngine) BindMonitor() {
	s.monitor.Subscribe(func(online bool) {
		if !online {
			return
		}
		go func() {
			if _, err := s.Synchronize(context.Background()); err != nil {
				s.logger.WithError(err).Error("Reconnection sync failed")
			}
		}()
	})
}

// OnComplete implements Synchronizer.OnComplete
func (s *SyncEngine) OnComplete(listener func(SyncReport)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, listener)
}

// Synchronize runs one drain pass. A trigger while a pass is running
// coalesces into it (no-op, not queued); a trigger while offline is a
// recorded no-op. Each pending order is re-submitted with its original
// offline ID, so retries after partial failure cannot create duplicates.
func (s *SyncEngine) Synchronize(ctx context.Context) (*SyncReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Debug("Sync already in progress, trigger coalesced")
		return &SyncReport{Skipped: true, SkipReason: "sync already in progress"}, nil
	}
	defer s.running.Store(false)

	if !s.monitor.IsOnline() {
		s.logger.Debug("Sync trigger while offline, nothing to do")
		return &SyncReport{Skipped: true, SkipReason: "offline"}, nil
	}

	report := &SyncReport{}

	if err := s.drainOrders(ctx, report); err != nil {
		return report, err
	}
	s.replayStockAdjustments(ctx, report)

	s.logger.WithFields(logrus.Fields{
		"attempted":            report.Attempted,
		"synced":               report.Synced,
		"failed":               report.Failed,
		"adjustments_replayed": report.AdjustmentsReplayed,
	}).Info("Sync pass completed")

	if report.Synced > 0 {
		s.notify(*report)
	}

	return report, nil
}

func (s *SyncEngine) drainOrders(ctx context.Context, report *SyncReport) error {
	pending, err := s.pendingRepo.GetPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to load pending orders: %w", err)
	}

	for _, record := range pending {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		report.Attempted++

		serverID, err := s.store.CreateOrder(ctx, record.Order, record.OfflineID)
		if err != nil {
			// One bad record must not block the rest of the backlog.
			report.Failed++
			s.monitor.ReportFailure(err)
			s.logger.WithError(err).WithFields(logrus.Fields{
				"offline_id": record.OfflineID,
				"order_id":   record.Order.ID,
			}).Warn("Pending order sync failed, leaving queued")
			continue
		}

		s.monitor.ReportSuccess()

		// Durable progress before the next item.
		if err := s.pendingRepo.MarkSynced(ctx, record.OfflineID, serverID); err != nil {
			report.Failed++
			s.logger.WithError(err).WithField("offline_id", record.OfflineID).Error("Failed to mark order synced")
			continue
		}
		if err := s.queueRepo.DeleteByRef(ctx, models.MutationTypeOrder, record.OfflineID); err != nil {
			s.logger.WithError(err).WithField("offline_id", record.OfflineID).Error("Failed to clear order queue entry")
		}

		report.Synced++
	}

	return nil
}

// replayStockAdjustments sweeps the stock-adjustment markers left by order
// captures whose inventory effect has not been applied remotely yet.
func (s *SyncEngine) replayStockAdjustments(ctx context.Context, report *SyncReport) {
	entries, err := s.queueRepo.ListByType(ctx, models.MutationTypeStockAdjustment)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list queued stock adjustments")
		return
	}

	for _, entry := range entries {
		adjustment, err := models.UnmarshalStockAdjustment(entry.Payload)
		if err != nil {
			// Unreadable marker: drop it rather than jamming the queue.
			s.logger.WithError(err).WithField("ref", entry.Ref).Error("Dropping corrupt stock adjustment entry")
			if delErr := s.queueRepo.Delete(ctx, entry.ID); delErr != nil {
				s.logger.WithError(delErr).WithField("ref", entry.Ref).Error("Failed to drop corrupt entry")
			}
			continue
		}

		if err := s.store.AdjustStock(ctx, adjustment.ProductID, adjustment.Delta); err != nil {
			if remote.IsConnectivity(err) {
				report.AdjustmentsFailed++
				s.monitor.ReportFailure(err)
				s.logger.WithError(err).WithField("ref", entry.Ref).Warn("Stock adjustment replay failed, leaving queued")
				continue
			}
			// Semantic failure (product gone, for instance) will never
			// succeed on retry; clear the marker without counting a replay.
			s.logger.WithError(err).WithField("ref", entry.Ref).Error("Stock adjustment rejected, removing from queue")
			if delErr := s.queueRepo.Delete(ctx, entry.ID); delErr != nil {
				s.logger.WithError(delErr).WithField("ref", entry.Ref).Error("Failed to clear rejected entry")
			}
			continue
		}

		if err := s.queueRepo.Delete(ctx, entry.ID); err != nil {
			s.logger.WithError(err).WithField("ref", entry.Ref).Error("Failed to clear stock adjustment entry")
			continue
		}
		report.AdjustmentsReplayed++
	}
}

func (s *SyncEngine) notify(report SyncReport) {
	s.mu.Lock()
	listeners := make([]func(SyncReport), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, listener := range listeners {
		listener(report)
	}
}
