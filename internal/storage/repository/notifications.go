package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/newspaper-backend/internal/models"
)

// CreateNotification добавляет запись в журнал уведомлений и возвращает её ID.
// Журнал append-only: методов изменения и удаления у хранилища нет.
func (s *Storage) CreateNotification(ctx context.Context, n models.Notification) (int, error) {
	const op = "storage.CreateNotification"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO notifications (subject_email, display_name, kind, created_at)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		n.SubjectEmail, n.DisplayName, n.Kind, n.Timestamp).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListNotifications возвращает весь журнал уведомлений, новые записи первыми.
func (s *Storage) ListNotifications(ctx context.Context) ([]*models.Notification, error) {
	const op = "storage.ListNotifications"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, subject_email, display_name, kind, created_at
			  FROM notifications
			  ORDER BY created_at DESC, id DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.Notification
	for rows.Next() {
		var item models.Notification
		if err := rows.Scan(&item.ID, &item.SubjectEmail, &item.DisplayName,
			&item.Kind, &item.Timestamp); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
