package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/newspaper-backend/internal/models"
)

func TestStorage_RegisterUser(t *testing.T) {
	tests := []struct {
		name         string
		user         models.User
		setup        func(t *testing.T, factory *TestDataFactory)
		wantInserted bool
	}{
		{
			name: "успешная регистрация нового пользователя",
			user: models.User{Email: "new@example.com", Name: "Новый"},
			setup: func(_ *testing.T, _ *TestDataFactory) {
			},
			wantInserted: true,
		},
		{
			name: "повторная регистрация не создает дубликат",
			user: models.User{Email: "existing@example.com", Name: "Другое имя"},
			setup: func(t *testing.T, factory *TestDataFactory) {
				factory.CreateUser(t, "existing@example.com", "Существующий", "normal", nil)
			},
			wantInserted: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			tt.setup(t, factory)

			uid, inserted, err := storage.RegisterUser(context.Background(), tt.user)
			require.NoError(t, err)
			assert.Equal(t, tt.wantInserted, inserted)
			if tt.wantInserted {
				assert.NotEmpty(t, uid)
			}
		})
	}
}

func TestStorage_GetUserByEmail(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	until := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	factory.CreateUser(t, "premium@example.com", "Премиум", "premium", &until)

	got, err := storage.GetUserByEmail(context.Background(), "premium@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RolePremium, got.Role)
	require.NotNil(t, got.PremiumUntil)
	assert.True(t, got.PremiumUntil.Equal(until))

	_, err = storage.GetUserByEmail(context.Background(), "missing@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStorage_DowngradeExpired(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	expired := now.Add(-time.Hour)
	active := now.Add(time.Hour)

	tests := []struct {
		name      string
		setup     func(t *testing.T, factory *TestDataFactory)
		wantCount int
		verify    func(t *testing.T, verification *TestVerification)
	}{
		{
			name: "сбрасывает только истекшие премиум-подписки",
			setup: func(t *testing.T, factory *TestDataFactory) {
				factory.CreateUser(t, "expired@example.com", "Истёкший", "premium", &expired)
				factory.CreateUser(t, "active@example.com", "Активный", "premium", &active)
				factory.CreateUser(t, "normal@example.com", "Обычный", "normal", nil)
			},
			wantCount: 1,
			verify: func(t *testing.T, verification *TestVerification) {
				verification.VerifyUserRole(t, "expired@example.com", "normal")
				verification.VerifyUserRole(t, "active@example.com", "premium")
			},
		},
		{
			name: "не трогает администраторов с истекшей датой",
			setup: func(t *testing.T, factory *TestDataFactory) {
				factory.CreateUser(t, "admin@example.com", "Админ", "admin", &expired)
			},
			wantCount: 0,
			verify: func(t *testing.T, verification *TestVerification) {
				verification.VerifyUserRole(t, "admin@example.com", "admin")
			},
		},
		{
			name: "повторный проход ничего не находит",
			setup: func(t *testing.T, factory *TestDataFactory) {
				factory.CreateUser(t, "once@example.com", "Один раз", "premium", &expired)
			},
			wantCount: 1,
			verify: func(t *testing.T, _ *TestVerification) {
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			tt.setup(t, factory)

			got, err := storage.DowngradeExpired(context.Background(), now)
			require.NoError(t, err)
			assert.Len(t, got, tt.wantCount)

			tt.verify(t, NewTestVerification(storage))

			// Повторный проход возвращает пустой результат
			again, err := storage.DowngradeExpired(context.Background(), now)
			require.NoError(t, err)
			assert.Empty(t, again)
		})
	}
}

func TestStorage_CreateArticleWithQuota(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	factory.CreateUser(t, "author@example.com", "Автор", "normal", nil)

	entry := models.Article{
		Title:       "Первая статья",
		Description: "текст",
		Publisher:   "Газета",
		Tags:        []string{"go", "news"},
		OwnerEmail:  "author@example.com",
		AuthorName:  "Автор",
	}

	// Первая вставка проходит квоту
	id, inserted, err := storage.CreateArticleWithQuota(context.Background(), entry)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NotZero(t, id)

	// Вторая отклоняется без ошибки
	entry.Title = "Вторая статья"
	_, inserted, err = storage.CreateArticleWithQuota(context.Background(), entry)
	require.NoError(t, err)
	assert.False(t, inserted)

	NewTestVerification(storage).VerifyArticleCount(t, "author@example.com", 1)
}

func TestStorage_ReadArticle_Tags(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	factory.CreateUser(t, "author@example.com", "Автор", "premium", nil)

	id, err := storage.CreateArticle(context.Background(), models.Article{
		Title:       "Статья с тегами",
		Description: "текст",
		Publisher:   "Газета",
		Tags:        []string{"go", "backend"},
		OwnerEmail:  "author@example.com",
	})
	require.NoError(t, err)

	got, err := storage.ReadArticle(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "backend"}, got.Tags)
	assert.Equal(t, models.StatusPending, got.Status)
}

func TestStorage_ListApprovedArticles(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	factory.CreateUser(t, "author@example.com", "Автор", "premium", nil)
	factory.CreateArticle(t, "author@example.com", "Одобренная", "approved", 10)
	factory.CreateArticle(t, "author@example.com", "На модерации", "pending", 0)
	factory.CreateArticle(t, "author@example.com", "Отклоненная", "declined", 0)

	got, err := storage.ListApprovedArticles(context.Background(), models.ArticleFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Одобренная", got[0].Title)

	// Фильтр по подстроке заголовка
	got, err = storage.ListApprovedArticles(context.Background(), models.ArticleFilter{Title: "одобр"})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = storage.ListApprovedArticles(context.Background(), models.ArticleFilter{Title: "нет такой"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStorage_ModerationFlow(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	factory.CreateUser(t, "author@example.com", "Автор", "premium", nil)
	id := factory.CreateArticle(t, "author@example.com", "Черновик", "pending", 0)
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	count, err := storage.ApproveArticle(context.Background(), id, now)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := storage.ReadArticle(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)
	require.NotNil(t, got.PostedDate)

	count, err = storage.DeclineArticle(context.Background(), id, "нарушение правил")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err = storage.ReadArticle(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDeclined, got.Status)
	assert.Equal(t, "нарушение правил", got.DeclineReason)

	// Несуществующая статья
	count, err = storage.ApproveArticle(context.Background(), 9999, now)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestStorage_IncrementViews(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	factory.CreateUser(t, "author@example.com", "Автор", "premium", nil)
	id := factory.CreateArticle(t, "author@example.com", "Популярная", "approved", 0)

	for range 3 {
		count, err := storage.IncrementViews(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	}

	got, err := storage.ReadArticle(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Views)
	assert.Equal(t, 6, got.Score)
}

func TestStorage_Notifications(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	base := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	_, err := storage.CreateNotification(context.Background(), models.Notification{
		SubjectEmail: "user@example.com",
		DisplayName:  "Пользователь",
		Kind:         models.KindRegistered,
		Timestamp:    base,
	})
	require.NoError(t, err)

	_, err = storage.CreateNotification(context.Background(), models.Notification{
		SubjectEmail: "user@example.com",
		DisplayName:  "Пользователь",
		Kind:         models.KindLogin,
		Timestamp:    base.Add(time.Minute),
	})
	require.NoError(t, err)

	got, err := storage.ListNotifications(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Новые записи первыми
	assert.Equal(t, models.KindLogin, got[0].Kind)
	assert.Equal(t, models.KindRegistered, got[1].Kind)
}

func TestStorage_CountUserStats(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	until := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	factory.CreateUser(t, "a@example.com", "A", "normal", nil)
	factory.CreateUser(t, "b@example.com", "B", "normal", nil)
	factory.CreateUser(t, "c@example.com", "C", "premium", &until)

	stats, err := storage.CountUserStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Normal)
	assert.Equal(t, 1, stats.Premium)
}
