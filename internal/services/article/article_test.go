package article

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
	"github.com/magabrotheeeer/newspaper-backend/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) CreateArticle(ctx context.Context, article models.Article) (int, error) {
	args := m.Called(ctx, article)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) CreateArticleWithQuota(ctx context.Context, article models.Article) (int, bool, error) {
	args := m.Called(ctx, article)
	return args.Int(0), args.Bool(1), args.Error(2)
}

func (m *RepoMock) ReadArticle(ctx context.Context, id int) (*models.Article, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Article), args.Error(1)
}

func (m *RepoMock) ListApprovedArticles(ctx context.Context, filter models.ArticleFilter) ([]*models.Article, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*models.Article), args.Error(1)
}

func (m *RepoMock) ListArticlesByOwner(ctx context.Context, ownerEmail string) ([]*models.Article, error) {
	args := m.Called(ctx, ownerEmail)
	return args.Get(0).([]*models.Article), args.Error(1)
}

func (m *RepoMock) ListArticlesPage(ctx context.Context, ownerEmail string, limit, offset int) ([]*models.Article, int, error) {
	args := m.Called(ctx, ownerEmail, limit, offset)
	return args.Get(0).([]*models.Article), args.Int(1), args.Error(2)
}

func (m *RepoMock) ListTrendingArticles(ctx context.Context, limit int) ([]*models.Article, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*models.Article), args.Error(1)
}

func (m *RepoMock) ListTags(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *RepoMock) UpdateArticle(ctx context.Context, id int, req models.DummyArticle) (int, error) {
	args := m.Called(ctx, id, req)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) RemoveArticle(ctx context.Context, id int) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) ApproveArticle(ctx context.Context, id int, now time.Time) (int, error) {
	args := m.Called(ctx, id, now)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) DeclineArticle(ctx context.Context, id int, reason string) (int, error) {
	args := m.Called(ctx, id, reason)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) FeatureArticle(ctx context.Context, id int) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) IncrementViews(ctx context.Context, id int) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}

func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

func NewNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestService_Create(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	req := models.DummyArticle{
		Title:       "Заголовок",
		Description: "Текст",
		Publisher:   "Газета",
		Tags:        []string{"go"},
		AuthorName:  "Автор",
	}
	entry := models.Article{
		Title:       req.Title,
		Description: req.Description,
		Publisher:   req.Publisher,
		Tags:        req.Tags,
		OwnerEmail:  "user@example.com",
		AuthorName:  req.AuthorName,
	}

	tests := []struct {
		name       string
		setupMocks func(repo *RepoMock, cache *CacheMock)
		wantID     int
		wantErr    error
	}{
		{
			name: "премиум-автор публикует без ограничений",
			setupMocks: func(repo *RepoMock, cache *CacheMock) {
				repo.On("GetUserByEmail", mock.Anything, "user@example.com").
					Return(&models.User{Email: "user@example.com", Role: models.RolePremium, PremiumUntil: &future}, nil).Once()
				repo.On("CreateArticle", mock.Anything, entry).Return(42, nil).Once()
				cache.On("Invalidate", "articles:tags").Return(nil).Once()
			},
			wantID: 42,
		},
		{
			name: "обычный автор проходит шлюз квоты",
			setupMocks: func(repo *RepoMock, cache *CacheMock) {
				repo.On("GetUserByEmail", mock.Anything, "user@example.com").
					Return(&models.User{Email: "user@example.com", Role: models.RoleNormal}, nil).Once()
				repo.On("CreateArticleWithQuota", mock.Anything, entry).Return(7, true, nil).Once()
				cache.On("Invalidate", "articles:tags").Return(nil).Once()
			},
			wantID: 7,
		},
		{
			name: "квота исчерпана",
			setupMocks: func(repo *RepoMock, _ *CacheMock) {
				repo.On("GetUserByEmail", mock.Anything, "user@example.com").
					Return(&models.User{Email: "user@example.com", Role: models.RoleNormal}, nil).Once()
				repo.On("CreateArticleWithQuota", mock.Anything, entry).Return(0, false, nil).Once()
			},
			wantErr: ErrQuotaExceeded,
		},
		{
			name: "премиум с истекшим сроком идет через квоту",
			setupMocks: func(repo *RepoMock, _ *CacheMock) {
				repo.On("GetUserByEmail", mock.Anything, "user@example.com").
					Return(&models.User{Email: "user@example.com", Role: models.RolePremium, PremiumUntil: &past}, nil).Once()
				repo.On("CreateArticleWithQuota", mock.Anything, entry).Return(0, false, nil).Once()
			},
			wantErr: ErrQuotaExceeded,
		},
		{
			name: "автор не найден",
			setupMocks: func(repo *RepoMock, _ *CacheMock) {
				repo.On("GetUserByEmail", mock.Anything, "user@example.com").
					Return(nil, repository.ErrNotFound).Once()
			},
			wantErr: repository.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			tt.setupMocks(repo, cache)
			service := New(repo, cache, NewNoopLogger())

			gotID, err := service.Create(context.Background(), "user@example.com", req, now)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantID, gotID)
			}
			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestService_Create_AuthorNameFallback(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)

	req := models.DummyArticle{
		Title:       "Заголовок",
		Description: "Текст",
		Publisher:   "Газета",
	}

	repo := new(RepoMock)
	cache := new(CacheMock)
	repo.On("GetUserByEmail", mock.Anything, "user@example.com").
		Return(&models.User{Email: "user@example.com", Name: "Имя из профиля",
			Role: models.RolePremium, PremiumUntil: &future}, nil).Once()
	repo.On("CreateArticle", mock.Anything, mock.MatchedBy(func(a models.Article) bool {
		return a.AuthorName == "Имя из профиля"
	})).Return(1, nil).Once()
	cache.On("Invalidate", "articles:tags").Return(nil).Once()

	service := New(repo, cache, NewNoopLogger())
	_, err := service.Create(context.Background(), "user@example.com", req, now)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestService_Read(t *testing.T) {
	cached := &models.Article{ID: 5, Title: "Из кеша"}
	stored := &models.Article{ID: 5, Title: "Из базы"}

	tests := []struct {
		name       string
		setupMocks func(repo *RepoMock, cache *CacheMock)
		wantTitle  string
		wantErr    error
	}{
		{
			name: "попадание в кеш",
			setupMocks: func(_ *RepoMock, cache *CacheMock) {
				cache.On("Get", "article:5", mock.Anything).
					Run(func(args mock.Arguments) {
						ptr := args.Get(1).(**models.Article)
						*ptr = cached
					}).Return(true, nil).Once()
			},
			wantTitle: "Из кеша",
		},
		{
			name: "промах кеша читает базу и пишет в кеш",
			setupMocks: func(repo *RepoMock, cache *CacheMock) {
				cache.On("Get", "article:5", mock.Anything).Return(false, nil).Once()
				repo.On("ReadArticle", mock.Anything, 5).Return(stored, nil).Once()
				cache.On("Set", "article:5", stored, 5*time.Minute).Return(nil).Once()
			},
			wantTitle: "Из базы",
		},
		{
			name: "статья не найдена",
			setupMocks: func(repo *RepoMock, cache *CacheMock) {
				cache.On("Get", "article:5", mock.Anything).Return(false, nil).Once()
				repo.On("ReadArticle", mock.Anything, 5).Return(nil, repository.ErrNotFound).Once()
			},
			wantErr: repository.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			tt.setupMocks(repo, cache)
			service := New(repo, cache, NewNoopLogger())

			got, err := service.Read(context.Background(), 5)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantTitle, got.Title)
			}
			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestService_Decline(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(repo *RepoMock, cache *CacheMock)
		wantErr    error
	}{
		{
			name: "успешное отклонение",
			setupMocks: func(repo *RepoMock, cache *CacheMock) {
				repo.On("DeclineArticle", mock.Anything, 3, "спам").Return(1, nil).Once()
				cache.On("Invalidate", "article:3").Return(nil).Once()
			},
		},
		{
			name: "статья не найдена",
			setupMocks: func(repo *RepoMock, _ *CacheMock) {
				repo.On("DeclineArticle", mock.Anything, 3, "спам").Return(0, nil).Once()
			},
			wantErr: repository.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			tt.setupMocks(repo, cache)
			service := New(repo, cache, NewNoopLogger())

			err := service.Decline(context.Background(), 3, "спам")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestService_View(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(repo *RepoMock, cache *CacheMock)
		wantErr    error
	}{
		{
			name: "просмотр сбрасывает кеш статьи и рейтинга",
			setupMocks: func(repo *RepoMock, cache *CacheMock) {
				repo.On("IncrementViews", mock.Anything, 9).Return(1, nil).Once()
				cache.On("Invalidate", "article:9").Return(nil).Once()
				cache.On("Invalidate", "articles:trending").Return(nil).Once()
			},
		},
		{
			name: "статья не найдена",
			setupMocks: func(repo *RepoMock, _ *CacheMock) {
				repo.On("IncrementViews", mock.Anything, 9).Return(0, nil).Once()
			},
			wantErr: repository.ErrNotFound,
		},
		{
			name: "ошибка хранилища",
			setupMocks: func(repo *RepoMock, _ *CacheMock) {
				repo.On("IncrementViews", mock.Anything, 9).
					Return(0, errors.New("db down")).Once()
			},
			wantErr: errors.New("db down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			tt.setupMocks(repo, cache)
			service := New(repo, cache, NewNoopLogger())

			err := service.View(context.Background(), 9)

			if tt.wantErr != nil {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestService_ListTags(t *testing.T) {
	tags := []string{"go", "news"}

	t.Run("промах кеша читает базу", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		cache.On("Get", "articles:tags", mock.Anything).Return(false, nil).Once()
		repo.On("ListTags", mock.Anything).Return(tags, nil).Once()
		cache.On("Set", "articles:tags", tags, time.Hour).Return(nil).Once()

		service := New(repo, cache, NewNoopLogger())
		got, err := service.ListTags(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, tags, got)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})
}
