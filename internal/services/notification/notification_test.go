package notification

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/newspaper-backend/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateNotification(ctx context.Context, n models.Notification) (int, error) {
	args := m.Called(ctx, n)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) ListNotifications(ctx context.Context) ([]*models.Notification, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Notification), args.Error(1)
}

type BroadcasterMock struct{ mock.Mock }

func (m *BroadcasterMock) Broadcast(topic string, payload any) error {
	return m.Called(topic, payload).Error(0)
}

func NewNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestService_Record(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	base := models.Notification{
		SubjectEmail: "user@example.com",
		DisplayName:  "Пользователь",
		Kind:         models.KindLogin,
		Timestamp:    now,
	}
	persisted := base
	persisted.ID = 17

	tests := []struct {
		name       string
		n          models.Notification
		setupMocks func(repo *RepoMock, bc *BroadcasterMock)
		wantErr    bool
	}{
		{
			name: "запись в журнал и рассылка ровно один раз",
			n:    base,
			setupMocks: func(repo *RepoMock, bc *BroadcasterMock) {
				repo.On("CreateNotification", mock.Anything, base).Return(17, nil).Once()
				bc.On("Broadcast", "login", persisted).Return(nil).Once()
			},
		},
		{
			name: "имя события при рассылке равно его виду",
			n: models.Notification{
				SubjectEmail: "user@example.com",
				Kind:         models.KindRegistered,
				Timestamp:    now,
			},
			setupMocks: func(repo *RepoMock, bc *BroadcasterMock) {
				repo.On("CreateNotification", mock.Anything, mock.Anything).Return(1, nil).Once()
				bc.On("Broadcast", "registered", mock.Anything).Return(nil).Once()
			},
		},
		{
			name: "ошибка журнала прерывает операцию без рассылки",
			n:    base,
			setupMocks: func(repo *RepoMock, _ *BroadcasterMock) {
				repo.On("CreateNotification", mock.Anything, base).
					Return(0, errors.New("db down")).Once()
			},
			wantErr: true,
		},
		{
			name: "ошибка рассылки не влияет на результат",
			n:    base,
			setupMocks: func(repo *RepoMock, bc *BroadcasterMock) {
				repo.On("CreateNotification", mock.Anything, base).Return(17, nil).Once()
				bc.On("Broadcast", "login", persisted).
					Return(errors.New("queue full")).Once()
			},
		},
		{
			name: "неизвестный вид события отклоняется до записи",
			n: models.Notification{
				SubjectEmail: "user@example.com",
				Kind:         models.NotificationKind("password_changed"),
				Timestamp:    now,
			},
			setupMocks: func(_ *RepoMock, _ *BroadcasterMock) {},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			bc := new(BroadcasterMock)
			tt.setupMocks(repo, bc)
			service := New(repo, bc, NewNoopLogger())

			err := service.Record(context.Background(), tt.n)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
			bc.AssertExpectations(t)
		})
	}
}

func TestService_List(t *testing.T) {
	items := []*models.Notification{
		{ID: 2, Kind: models.KindLogout},
		{ID: 1, Kind: models.KindLogin},
	}

	repo := new(RepoMock)
	bc := new(BroadcasterMock)
	repo.On("ListNotifications", mock.Anything).Return(items, nil).Once()

	service := New(repo, bc, NewNoopLogger())
	got, err := service.List(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, items, got)
	repo.AssertExpectations(t)
}
