// Package sweeper реализует периодическую задачу сброса истёкших
// премиум-подписок. Единственный агент, которому разрешено очищать
// premium_until и понижать роль premium -> normal.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/magabrotheeeer/newspaper-backend/internal/lib/sl"
	"github.com/magabrotheeeer/newspaper-backend/internal/models"
	"github.com/magabrotheeeer/newspaper-backend/internal/rabbitmq"
)

var downgradesTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "premium_downgrades_total",
	Help: "Number of premium subscriptions reset after expiry.",
})

// UserRepository определяет метод хранилища, нужный sweeper'у.
type UserRepository interface {
	// DowngradeExpired атомарно сбрасывает все истёкшие подписки
	// и возвращает затронутых пользователей.
	DowngradeExpired(ctx context.Context, now time.Time) ([]models.ExpiredPremiumInfo, error)
}

// Publisher публикует сообщения о сброшенных подписках для сервиса рассылки.
type Publisher interface {
	Publish(exchange, routingKey string, message any) error
}

// Service — периодическая задача сброса истёкших подписок.
type Service struct {
	repo     UserRepository
	pub      Publisher
	log      *slog.Logger
	interval time.Duration
}

// New создает новый экземпляр Service. pub может быть nil,
// тогда письма об истечении не рассылаются.
func New(repo UserRepository, pub Publisher, log *slog.Logger, interval time.Duration) *Service {
	return &Service{
		repo:     repo,
		pub:      pub,
		log:      log,
		interval: interval,
	}
}

// Run выполняет сброс с заданным периодом до отмены контекста.
// Ошибка одного прохода логируется, задача продолжает работу.
func (s *Service) Run(ctx context.Context) {
	s.runSweep(ctx, time.Now())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runSweep(ctx, time.Now())
		case <-ctx.Done():
			s.log.Info("sweeper stopped")
			return
		}
	}
}

// runSweep — один проход: единственное условное обновление в хранилище.
// Повторный проход по уже сброшенному пользователю ничего не меняет,
// а выдача премиума между проходами не может быть потеряна, потому что
// предикат "подписка истекла" проверяется внутри самого обновления.
func (s *Service) runSweep(ctx context.Context, now time.Time) {
	expired, err := s.repo.DowngradeExpired(ctx, now)
	if err != nil {
		s.log.Error("sweep failed", sl.Err(err))
		return
	}
	if len(expired) == 0 {
		return
	}
	s.log.Info("reset expired premium subscriptions", slog.Int("count", len(expired)))

	for _, info := range expired {
		downgradesTotal.Inc()
		s.log.Info("downgraded premium user",
			slog.String("email", info.Email),
			slog.Time("expired_at", info.ExpiredAt))
		if s.pub == nil {
			continue
		}
		if err := s.pub.Publish(rabbitmq.Exchange, rabbitmq.RoutingKeyExpired, info); err != nil {
			s.log.Error("failed to publish expired premium message", sl.Err(err))
		}
	}
}
