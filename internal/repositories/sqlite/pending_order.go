package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"butchery-pos-api/internal/models"
	"butchery-pos-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// PendingOrderRepository implements repositories.PendingOrderRepository with
// SQLite. Writes are transactional so a pending order and its sync-queue
// entry are durable together before SaveOffline returns.
type PendingOrderRepository struct {
	baseRepository
}

// NewPendingOrderRepository creates a new pending order repository
func NewPendingOrderRepository(db *sql.DB, logger *logrus.Logger) *PendingOrderRepository {
	return &PendingOrderRepository{
		baseRepository: newBaseRepository(db, "pending_orders", logger),
	}
}

// SaveOffline persists the order and enqueues its sync mutation in one
// transaction. If the process dies immediately after return, the order is
// already on disk.
func (r *PendingOrderRepository) SaveOffline(ctx context.Context, order models.Order) (*models.PendingOrderRecord, error) {
	record := models.NewPendingOrderRecord(order)

	payload, err := record.MarshalOrder()
	if err != nil {
		return nil, repositories.NewRepositoryError("save_offline", r.table, record.OfflineID, err)
	}

	err = r.withTransaction(ctx, "save_offline", func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO pending_orders (offline_id, order_payload, created_at_ms, synced)
			VALUES (?, ?, ?, 0)
		`, record.OfflineID, string(payload), record.CreatedAt)
		if err != nil {
			return repositories.NewRepositoryError("save_offline", r.table, record.OfflineID, err)
		}

		seq, err := result.LastInsertId()
		if err != nil {
			return repositories.NewRepositoryError("save_offline", r.table, record.OfflineID, err)
		}
		record.LocalSeq = seq

		_, err = tx.ExecContext(ctx, `
			INSERT INTO sync_queue (type, action, ref, payload, enqueued_at_ms)
			VALUES (?, ?, ?, ?, ?)
		`, models.MutationTypeOrder, models.MutationActionCreate, record.OfflineID, string(payload), record.CreatedAt)
		if err != nil {
			return repositories.NewRepositoryError("enqueue", "sync_queue", record.OfflineID, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.WithFields(logrus.Fields{
		"offline_id": record.OfflineID,
		"local_seq":  record.LocalSeq,
		"order_id":   order.ID,
		"total":      order.Total,
	}).Info("Order saved offline")

	return record, nil
}

// GetPending returns all unsynced records in insertion order
func (r *PendingOrderRepository) GetPending(ctx context.Context) ([]*models.PendingOrderRecord, error) {
	rows, err := r.executeQuery(ctx, "get_pending", `
		SELECT local_seq, offline_id, order_payload, created_at_ms, synced, server_id, synced_at_ms
		FROM pending_orders
		WHERE synced = 0
		ORDER BY local_seq ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.PendingOrderRecord
	for rows.Next() {
		record, err := r.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError("get_pending", r.table, "", err)
	}

	return records, nil
}

// GetByOfflineID returns a record by its offline ID, synced or not
func (r *PendingOrderRepository) GetByOfflineID(ctx context.Context, offlineID string) (*models.PendingOrderRecord, error) {
	row := r.executeQueryRow(ctx, "get_by_offline_id", `
		SELECT local_seq, offline_id, order_payload, created_at_ms, synced, server_id, synced_at_ms
		FROM pending_orders
		WHERE offline_id = ?
	`, offlineID)

	record, err := r.scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, repositories.NotFoundError(r.table, offlineID)
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// MarkSynced flips the record to synced and stores the server-assigned ID.
// Unknown offline IDs are a no-op so duplicate sync attempts stay harmless.
func (r *PendingOrderRepository) MarkSynced(ctx context.Context, offlineID, serverID string) error {
	now := time.Now().UnixMilli()

	result, err := r.executeExec(ctx, "mark_synced", `
		UPDATE pending_orders
		SET synced = 1, server_id = ?, synced_at_ms = ?
		WHERE offline_id = ? AND synced = 0
	`, serverID, now, offlineID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return repositories.NewRepositoryError("mark_synced", r.table, offlineID, err)
	}

	if affected == 0 {
		r.logger.WithField("offline_id", offlineID).Debug("MarkSynced found no unsynced record, treating as duplicate attempt")
		return nil
	}

	r.logger.WithFields(logrus.Fields{
		"offline_id": offlineID,
		"server_id":  serverID,
	}).Info("Pending order marked synced")

	return nil
}

// CountPending returns the number of unsynced records
func (r *PendingOrderRepository) CountPending(ctx context.Context) (int, error) {
	var count int
	row := r.executeQueryRow(ctx, "count_pending", `SELECT COUNT(*) FROM pending_orders WHERE synced = 0`)
	if err := row.Scan(&count); err != nil {
		return 0, repositories.NewRepositoryError("count_pending", r.table, "", err)
	}
	return count, nil
}

// PruneSynced deletes synced records older than the cutoff. Unsynced records
// are never touched.
func (r *PendingOrderRepository) PruneSynced(ctx context.Context, olderThanMs int64) (int64, error) {
	result, err := r.executeExec(ctx, "prune_synced", `
		DELETE FROM pending_orders WHERE synced = 1 AND synced_at_ms < ?
	`, olderThanMs)
	if err != nil {
		return 0, err
	}

	pruned, err := result.RowsAffected()
	if err != nil {
		return 0, repositories.NewRepositoryError("prune_synced", r.table, "", err)
	}

	if pruned > 0 {
		r.logger.WithField("pruned", pruned).Info("Pruned synced pending orders")
	}

	return pruned, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *PendingOrderRepository) scanRecord(row rowScanner) (*models.PendingOrderRecord, error) {
	var record models.PendingOrderRecord
	var payload string
	var synced int

	err := row.Scan(&record.LocalSeq, &record.OfflineID, &payload, &record.CreatedAt, &synced, &record.ServerID, &record.SyncedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, repositories.NewRepositoryError("scan", r.table, "", err)
	}

	record.Synced = synced == 1
	if err := json.Unmarshal([]byte(payload), &record.Order); err != nil {
		return nil, repositories.NewRepositoryError("scan", r.table, record.OfflineID, err)
	}

	return &record, nil
}
