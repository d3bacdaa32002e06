// Package user содержит бизнес-логику учётных записей: регистрацию,
// вход и выход с записью событий в шину уведомлений, а также выборки
// и статистику пользователей.
package user

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/newspaper-backend/internal/models"
	"github.com/magabrotheeeer/newspaper-backend/internal/storage/repository"
)

// Repository определяет методы хранилища, нужные сервису пользователей.
type Repository interface {
	RegisterUser(ctx context.Context, user models.User) (string, bool, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	ListUsersPage(ctx context.Context, limit, offset int) ([]*models.User, int, error)
	CountUserStats(ctx context.Context) (*models.UserStats, error)
	TouchLastLogin(ctx context.Context, email string, now time.Time) (int, error)
	TouchLastLogout(ctx context.Context, email string, now time.Time) (int, error)
}

// Notifier — шина уведомлений, в которую записываются события аккаунтов.
type Notifier interface {
	Record(ctx context.Context, n models.Notification) error
}

// Service реализует операции над учётными записями.
type Service struct {
	repo     Repository
	notifier Notifier
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, notifier Notifier, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		log:      log,
	}
}

// Register создаёт пользователя с ролью normal, если email ещё не занят.
// Второй результат false означает, что пользователь уже существовал;
// событие registered записывается только при фактической вставке.
func (s *Service) Register(ctx context.Context, req models.DummyUser, now time.Time) (string, bool, error) {
	uid, inserted, err := s.repo.RegisterUser(ctx, models.User{
		Email: req.Email,
		Name:  req.Name,
		Role:  models.RoleNormal,
	})
	if err != nil {
		return "", false, err
	}
	if !inserted {
		return "", false, nil
	}

	s.log.Info("registered new user", slog.String("email", req.Email))
	err = s.notifier.Record(ctx, models.Notification{
		SubjectEmail: req.Email,
		DisplayName:  req.Name,
		Kind:         models.KindRegistered,
		Timestamp:    now,
	})
	if err != nil {
		return "", false, err
	}
	return uid, true, nil
}

// Login фиксирует вход пользователя и записывает событие login.
// Проверки учётных данных нет: аутентификация вне границ сервиса.
func (s *Service) Login(ctx context.Context, email string, now time.Time) (*models.Notification, error) {
	return s.touch(ctx, email, now, models.KindLogin, s.repo.TouchLastLogin)
}

// Logout фиксирует выход пользователя и записывает событие logout.
func (s *Service) Logout(ctx context.Context, email string, now time.Time) (*models.Notification, error) {
	return s.touch(ctx, email, now, models.KindLogout, s.repo.TouchLastLogout)
}

func (s *Service) touch(ctx context.Context, email string, now time.Time, kind models.NotificationKind,
	update func(context.Context, string, time.Time) (int, error)) (*models.Notification, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	count, err := update(ctx, email, now)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, repository.ErrNotFound
	}

	n := models.Notification{
		SubjectEmail: email,
		DisplayName:  user.Name,
		Kind:         kind,
		Timestamp:    now,
	}
	if err := s.notifier.Record(ctx, n); err != nil {
		return nil, err
	}
	return &n, nil
}

// Get возвращает пользователя по email.
func (s *Service) Get(ctx context.Context, email string) (*models.User, error) {
	return s.repo.GetUserByEmail(ctx, email)
}

// List возвращает всех пользователей.
func (s *Service) List(ctx context.Context) ([]*models.User, error) {
	return s.repo.ListUsers(ctx)
}

// ListPage возвращает страницу пользователей и общее число записей.
func (s *Service) ListPage(ctx context.Context, limit, offset int) ([]*models.User, int, error) {
	return s.repo.ListUsersPage(ctx, limit, offset)
}

// Stats возвращает агрегированную статистику по ролям.
func (s *Service) Stats(ctx context.Context) (*models.UserStats, error) {
	return s.repo.CountUserStats(ctx)
}
