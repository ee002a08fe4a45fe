package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rakesh-tirumalaparapu/zipp/internal/notification/models"
	"github.com/rakesh-tirumalaparapu/zipp/internal/platform/postgres"
	id "github.com/rakesh-tirumalaparapu/zipp/pkg/domain"
	"github.com/rakesh-tirumalaparapu/zipp/pkg/platform/sentinel"
	txcontext "github.com/rakesh-tirumalaparapu/zipp/pkg/platform/tx"
)

const notificationColumns = `id, user_id, application_number, message, is_read, created_at`

type PostgresNotificationStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresNotificationStore {
	return &PostgresNotificationStore{db: db}
}

// Create runs inside a savepoint when a transaction is open so one failed
// recipient does not poison the fan-out it belongs to.
func (s *PostgresNotificationStore) Create(ctx context.Context, n *models.Notification) error {
	return txcontext.Savepoint(ctx, "notification_insert", func(ctx context.Context) error {
		_, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, `
			INSERT INTO notifications (`+notificationColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, n.ID.String(), n.UserID.String(), sql.NullString{String: n.ApplicationNumber, Valid: n.ApplicationNumber != ""},
			n.Message, n.Read, n.CreatedAt)
		if err != nil {
			if postgres.IsUniqueViolation(err) {
				return sentinel.ErrAlreadyUsed
			}
			return fmt.Errorf("insert notification: %w", err)
		}
		return nil
	})
}

func (s *PostgresNotificationStore) FindByID(ctx context.Context, notificationID id.NotificationID) (*models.Notification, error) {
	row := txcontext.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, notificationID.String())
	n, err := scanNotification(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return n, nil
}

func (s *PostgresNotificationStore) ListByUser(ctx context.Context, userID id.UserID) ([]*models.Notification, error) {
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`, userID.String())
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return out, nil
}

func (s *PostgresNotificationStore) CountUnread(ctx context.Context, userID id.UserID) (int, error) {
	var count int
	err := txcontext.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT is_read`, userID.String()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

func (s *PostgresNotificationStore) MarkRead(ctx context.Context, notificationID id.NotificationID) error {
	res, err := txcontext.Executor(ctx, s.db).ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1`, notificationID.String())
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(row rowScanner) (*models.Notification, error) {
	var (
		n                 models.Notification
		rawID, rawUser    string
		applicationNumber sql.NullString
	)
	if err := row.Scan(&rawID, &rawUser, &applicationNumber, &n.Message, &n.Read, &n.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan notification: %w", err)
	}
	var err error
	if n.ID, err = id.ParseNotificationID(rawID); err != nil {
		return nil, fmt.Errorf("scan notification id: %w", err)
	}
	if n.UserID, err = id.ParseUserID(rawUser); err != nil {
		return nil, fmt.Errorf("scan notification user id: %w", err)
	}
	n.ApplicationNumber = applicationNumber.String
	return &n, nil
}
