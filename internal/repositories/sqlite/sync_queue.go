package sqlite

import (
	"context"
	"database/sql"
	"time"

	"butchery-pos-api/internal/models"
	"butchery-pos-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// SyncQueueRepository implements repositories.SyncQueueRepository with
// SQLite. Entries are consumed in enqueue order.
type SyncQueueRepository struct {
	baseRepository
}

// NewSyncQueueRepository creates a new sync queue repository
func NewSyncQueueRepository(db *sql.DB, logger *logrus.Logger) *SyncQueueRepository {
	return &SyncQueueRepository{
		baseRepository: newBaseRepository(db, "sync_queue", logger),
	}
}

// Enqueue appends a mutation envelope to the queue
func (r *SyncQueueRepository) Enqueue(ctx context.Context, entry *models.SyncQueueEntry) error {
	if entry.EnqueuedAt == 0 {
		entry.EnqueuedAt = time.Now().UnixMilli()
	}

	result, err := r.executeExec(ctx, "enqueue", `
		INSERT INTO sync_queue (type, action, ref, payload, enqueued_at_ms)
		VALUES (?, ?, ?, ?, ?)
	`, entry.Type, entry.Action, entry.Ref, string(entry.Payload), entry.EnqueuedAt)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return repositories.NewRepositoryError("enqueue", r.table, entry.Ref, err)
	}
	entry.ID = id

	r.logger.WithFields(logrus.Fields{
		"type":   entry.Type,
		"action": entry.Action,
		"ref":    entry.Ref,
	}).Debug("Mutation enqueued")

	return nil
}

// ListByType returns entries of one mutation type in enqueue order
func (r *SyncQueueRepository) ListByType(ctx context.Context, mutationType string) ([]*models.SyncQueueEntry, error) {
	rows, err := r.executeQuery(ctx, "list_by_type", `
		SELECT id, type, action, ref, payload, enqueued_at_ms
		FROM sync_queue
		WHERE type = ?
		ORDER BY enqueued_at_ms ASC, id ASC
	`, mutationType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.SyncQueueEntry
	for rows.Next() {
		var entry models.SyncQueueEntry
		var payload string
		if err := rows.Scan(&entry.ID, &entry.Type, &entry.Action, &entry.Ref, &payload, &entry.EnqueuedAt); err != nil {
			return nil, repositories.NewRepositoryError("list_by_type", r.table, "", err)
		}
		entry.Payload = []byte(payload)
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError("list_by_type", r.table, "", err)
	}

	return entries, nil
}

// Delete removes a consumed entry by its auto-id
func (r *SyncQueueRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.executeExec(ctx, "delete", `DELETE FROM sync_queue WHERE id = ?`, id)
	return err
}

// DeleteByRef removes entries correlated with a mutation ref, such as an
// order's offline ID once that order is synced
func (r *SyncQueueRepository) DeleteByRef(ctx context.Context, mutationType, ref string) error {
	_, err := r.executeExec(ctx, "delete_by_ref", `
		DELETE FROM sync_queue WHERE type = ? AND ref = ?
	`, mutationType, ref)
	return err
}

// Size returns the number of queued mutations
func (r *SyncQueueRepository) Size(ctx context.Context) (int, error) {
	var count int
	row := r.executeQueryRow(ctx, "size", `SELECT COUNT(*) FROM sync_queue`)
	if err := row.Scan(&count); err != nil {
		return 0, repositories.NewRepositoryError("size", r.table, "", err)
	}
	return count, nil
}
