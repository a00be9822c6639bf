package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/domain"
)

// NotificationRepository persists per-recipient alerts.
type NotificationRepository interface {
	InsertBatch(ctx context.Context, notifications []domain.Notification) error
	ListByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]domain.Notification, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
	MarkRead(ctx context.Context, recipientID, notificationID string) error
	MarkAllRead(ctx context.Context, recipientID string) error
	MarkReadByRelated(ctx context.Context, recipientID, relatedID string) error
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository builds repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) InsertBatch(ctx context.Context, notifications []domain.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	const query = `
        INSERT INTO notifications (recipient_id, title, message, type, link, related_id)
        VALUES ($1,$2,$3,$4,$5,$6)`
	for _, n := range notifications {
		batch.Queue(query, n.RecipientID, n.Title, n.Message, n.Type, n.Link, n.RelatedID)
	}
	results := r.pool.SendBatch(ctx, batch)
	defer results.Close() //nolint:errcheck
	for range notifications {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, recipient_id, title, message, type, link, related_id, is_read, created_at
        FROM notifications WHERE recipient_id=$1
        ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, recipientID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID,
			&n.RecipientID,
			&n.Title,
			&n.Message,
			&n.Type,
			&n.Link,
			&n.RelatedID,
			&n.IsRead,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id=$1 AND is_read=FALSE`,
		recipientID).Scan(&count)
	return count, err
}

func (r *notificationRepository) MarkRead(ctx context.Context, recipientID, notificationID string) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE notifications SET is_read=TRUE WHERE id=$1 AND recipient_id=$2`,
		notificationID, recipientID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE notifications SET is_read=TRUE WHERE recipient_id=$1 AND is_read=FALSE`,
		recipientID)
	return err
}

func (r *notificationRepository) MarkReadByRelated(ctx context.Context, recipientID, relatedID string) error {
	if relatedID == "" {
		return nil
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE notifications SET is_read=TRUE WHERE recipient_id=$1 AND related_id=$2 AND is_read=FALSE`,
		recipientID, relatedID)
	return err
}
