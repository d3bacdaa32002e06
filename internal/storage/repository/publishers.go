package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/newspaper-backend/internal/models"
)

// CreatePublisher вставляет нового издателя и возвращает его ID.
func (s *Storage) CreatePublisher(ctx context.Context, publisher models.Publisher) (int, error) {
	const op = "storage.CreatePublisher"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO publishers (name, logo)
			  VALUES ($1, $2)
			  RETURNING id`
	var newID int
	if err := s.DB.QueryRowContext(ctx, query, publisher.Name, publisher.Logo).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListPublishers возвращает всех издателей.
func (s *Storage) ListPublishers(ctx context.Context) ([]*models.Publisher, error) {
	const op = "storage.ListPublishers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, logo FROM publishers ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.Publisher
	for rows.Next() {
		var item models.Publisher
		if err := rows.Scan(&item.ID, &item.Name, &item.Logo); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
