// Package entitlement содержит движок премиум-прав: чистую проверку
// действующей подписки и именованные операции смены роли пользователя.
package entitlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/newspaper-backend/internal/lib/sl"
	"github.com/magabrotheeeer/newspaper-backend/internal/models"
	"github.com/magabrotheeeer/newspaper-backend/internal/storage/repository"
)

// ErrInvalidGrant возвращается при некорректных параметрах выдачи премиума.
var ErrInvalidGrant = errors.New("invalid grant")

// Unit — явная единица измерения срока подписки.
// Величина срока всегда сопровождается единицей, перегрузки значения нет.
type Unit string

const (
	// UnitMinutes — срок в минутах.
	UnitMinutes Unit = "minutes"
	// UnitDays — срок в днях.
	UnitDays Unit = "days"
)

// Duration переводит количество единиц в time.Duration.
func (u Unit) Duration(amount int) (time.Duration, error) {
	switch u {
	case UnitMinutes:
		return time.Duration(amount) * time.Minute, nil
	case UnitDays:
		return time.Duration(amount) * 24 * time.Hour, nil
	}
	return 0, fmt.Errorf("%w: unknown unit %q", ErrInvalidGrant, u)
}

// IsEntitled сообщает, действует ли премиум-подписка пользователя в момент now.
// Чистая функция над снимком пользователя, хранилище не читает: решение
// принимается по состоянию, прочитанному непосредственно перед вызовом.
func IsEntitled(u *models.User, now time.Time) bool {
	return u != nil &&
		u.Role == models.RolePremium &&
		u.PremiumUntil != nil &&
		u.PremiumUntil.After(now)
}

// UserRepository определяет методы хранилища, нужные движку прав.
type UserRepository interface {
	// GetUserByEmail возвращает пользователя по email или repository.ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// SetPremium выдаёт премиум до указанной даты, возвращает число изменённых строк.
	SetPremium(ctx context.Context, email string, until time.Time) (int, error)
	// SetAdmin назначает пользователя администратором.
	SetAdmin(ctx context.Context, email string) (int, error)
}

// Service реализует операции выдачи и смены ролей.
type Service struct {
	repo UserRepository
	log  *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(repo UserRepository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// Grant выдаёт пользователю премиум на amount единиц unit, отсчитывая от now.
// Повторная выдача при ещё действующей подписке заменяет окно: новый срок
// отсчитывается от now, прежний остаток не суммируется.
// Возвращает дату окончания новой подписки.
func (s *Service) Grant(ctx context.Context, email string, amount int, unit Unit, now time.Time) (time.Time, error) {
	if email == "" {
		return time.Time{}, fmt.Errorf("%w: email is required", ErrInvalidGrant)
	}
	if amount <= 0 {
		return time.Time{}, fmt.Errorf("%w: duration must be positive", ErrInvalidGrant)
	}
	d, err := unit.Duration(amount)
	if err != nil {
		return time.Time{}, err
	}

	until := now.Add(d)
	count, err := s.repo.SetPremium(ctx, email, until)
	if err != nil {
		return time.Time{}, err
	}
	if count == 0 {
		return time.Time{}, repository.ErrNotFound
	}

	s.log.Info("granted premium",
		slog.String("email", email),
		slog.Time("premium_until", until))
	return until, nil
}

// MakeAdmin назначает пользователя администратором.
func (s *Service) MakeAdmin(ctx context.Context, email string) error {
	count, err := s.repo.SetAdmin(ctx, email)
	if err != nil {
		return err
	}
	if count == 0 {
		return repository.ErrNotFound
	}
	s.log.Info("promoted user to admin", slog.String("email", email))
	return nil
}

// RoleOf возвращает действующую роль пользователя на момент now.
// Пользователь с ролью premium и истёкшим сроком считается normal,
// даже если фоновая очистка ещё не сбросила запись.
func (s *Service) RoleOf(ctx context.Context, email string, now time.Time) (models.Role, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Error("failed to read user", sl.Err(err))
		}
		return "", err
	}
	if user.Role == models.RolePremium && !IsEntitled(user, now) {
		return models.RoleNormal, nil
	}
	return user.Role, nil
}
