// Package notification реализует шину уведомлений: запись событий активности
// аккаунтов в журнал и их рассылку подключённым наблюдателям.
package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/newspaper-backend/internal/lib/sl"
	"github.com/magabrotheeeer/newspaper-backend/internal/models"
)

// Repository определяет методы журнала уведомлений.
type Repository interface {
	CreateNotification(ctx context.Context, n models.Notification) (int, error)
	ListNotifications(ctx context.Context) ([]*models.Notification, error)
}

// Broadcaster — приёмник живой рассылки (websocket-хаб).
// Передаётся явно: шина не обращается к глобальному реестру подключений.
type Broadcaster interface {
	Broadcast(topic string, payload any) error
}

// Service — шина уведомлений.
type Service struct {
	repo        Repository
	broadcaster Broadcaster
	log         *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, broadcaster Broadcaster, log *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		broadcaster: broadcaster,
		log:         log,
	}
}

// Record сначала сохраняет событие в журнал, затем рассылает его наблюдателям.
// Журнал — источник истины, поэтому ошибка записи прерывает операцию;
// рассылка best-effort: её ошибка логируется и не влияет на результат.
// Имя события при рассылке — его вид (registered/login/logout).
func (s *Service) Record(ctx context.Context, n models.Notification) error {
	const op = "notification.Record"
	if !n.Kind.Valid() {
		return fmt.Errorf("%s: unknown notification kind %q", op, n.Kind)
	}

	id, err := s.repo.CreateNotification(ctx, n)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n.ID = id

	if err := s.broadcaster.Broadcast(string(n.Kind), n); err != nil {
		s.log.Warn("failed to broadcast notification", sl.Err(err))
	}
	return nil
}

// List возвращает весь журнал уведомлений, новые записи первыми.
// Пагинации нет: ограничение выборки остаётся на вызывающей стороне.
func (s *Service) List(ctx context.Context) ([]*models.Notification, error) {
	return s.repo.ListNotifications(ctx)
}
