// Package article содержит бизнес-логику статей: шлюз публикации с квотой,
// модерацию, счётчики просмотров и кеширование горячих выборок.
package article

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/newspaper-backend/internal/models"
	"github.com/magabrotheeeer/newspaper-backend/internal/services/entitlement"
	"github.com/magabrotheeeer/newspaper-backend/internal/storage/repository"
)

// ErrQuotaExceeded возвращается шлюзом публикации, когда автор без
// действующей премиум-подписки уже использовал свою квоту.
var ErrQuotaExceeded = errors.New("quota exceeded; upgrade required")

// Лимит статей для автора без премиум-подписки.
const freeArticleLimit = 1

// Repository определяет методы хранилища, нужные сервису статей.
type Repository interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateArticle(ctx context.Context, article models.Article) (int, error)
	CreateArticleWithQuota(ctx context.Context, article models.Article) (int, bool, error)
	ReadArticle(ctx context.Context, id int) (*models.Article, error)
	ListApprovedArticles(ctx context.Context, filter models.ArticleFilter) ([]*models.Article, error)
	ListArticlesByOwner(ctx context.Context, ownerEmail string) ([]*models.Article, error)
	ListArticlesPage(ctx context.Context, ownerEmail string, limit, offset int) ([]*models.Article, int, error)
	ListTrendingArticles(ctx context.Context, limit int) ([]*models.Article, error)
	ListTags(ctx context.Context) ([]string, error)
	UpdateArticle(ctx context.Context, id int, req models.DummyArticle) (int, error)
	RemoveArticle(ctx context.Context, id int) (int, error)
	ApproveArticle(ctx context.Context, id int, now time.Time) (int, error)
	DeclineArticle(ctx context.Context, id int, reason string) (int, error)
	FeatureArticle(ctx context.Context, id int) (int, error)
	IncrementViews(ctx context.Context, id int) (int, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

const (
	cacheKeyTrending = "articles:trending"
	cacheKeyTags     = "articles:tags"
)

// Service реализует бизнес-логику работы со статьями.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Create — шлюз публикации. Автор с действующей премиум-подпиской публикует
// без ограничений; автор без неё — не больше freeArticleLimit статей.
// Решение принимается по состоянию пользователя, прочитанному здесь же:
// права не кешируются между запросами. Для автора без подписки проверка
// квоты и вставка выполняются одним оператором хранилища, поэтому два
// конкурентных запроса не могут оба пройти квоту.
func (s *Service) Create(ctx context.Context, ownerEmail string, req models.DummyArticle, now time.Time) (int, error) {
	user, err := s.repo.GetUserByEmail(ctx, ownerEmail)
	if err != nil {
		return 0, err
	}

	authorName := req.AuthorName
	if authorName == "" {
		authorName = user.Name
	}
	entry := models.Article{
		Title:       req.Title,
		Image:       req.Image,
		Description: req.Description,
		Publisher:   req.Publisher,
		Tags:        req.Tags,
		OwnerEmail:  ownerEmail,
		AuthorName:  authorName,
	}

	var id int
	if entitlement.IsEntitled(user, now) {
		id, err = s.repo.CreateArticle(ctx, entry)
		if err != nil {
			return 0, err
		}
	} else {
		newID, inserted, err := s.repo.CreateArticleWithQuota(ctx, entry)
		if err != nil {
			return 0, err
		}
		if !inserted {
			return 0, fmt.Errorf("%w: free limit is %d article(s)", ErrQuotaExceeded, freeArticleLimit)
		}
		id = newID
	}

	s.log.Info("created new article", slog.Int("id", id), slog.String("owner", ownerEmail))
	s.invalidate(cacheKeyTags)
	return id, nil
}

// Read возвращает статью по ID, используя кеш или хранилище.
func (s *Service) Read(ctx context.Context, id int) (*models.Article, error) {
	var result *models.Article
	cacheKey := articleKey(id)
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		s.log.Warn("failed to read from cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	if found {
		return result, nil
	}
	result, err = s.repo.ReadArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(cacheKey, result, 5*time.Minute); err != nil {
		s.log.Warn("failed to add to cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return result, nil
}

// ListApproved возвращает одобренные статьи по фильтру, свежие первыми.
func (s *Service) ListApproved(ctx context.Context, filter models.ArticleFilter) ([]*models.Article, error) {
	return s.repo.ListApprovedArticles(ctx, filter)
}

// ListByOwner возвращает все статьи автора (или вообще все при пустом email).
func (s *Service) ListByOwner(ctx context.Context, ownerEmail string) ([]*models.Article, error) {
	return s.repo.ListArticlesByOwner(ctx, ownerEmail)
}

// ListPage возвращает страницу статей и общее число записей.
func (s *Service) ListPage(ctx context.Context, ownerEmail string, limit, offset int) ([]*models.Article, int, error) {
	return s.repo.ListArticlesPage(ctx, ownerEmail, limit, offset)
}

// ListTrending возвращает статьи с наибольшим рейтингом, используя кеш.
func (s *Service) ListTrending(ctx context.Context, limit int) ([]*models.Article, error) {
	var result []*models.Article
	found, err := s.cache.Get(cacheKeyTrending, &result)
	if err != nil {
		s.log.Warn("failed to read from cache", slog.String("key", cacheKeyTrending), slog.Any("err", err))
	}
	if found && len(result) >= limit {
		return result[:limit], nil
	}
	result, err = s.repo.ListTrendingArticles(ctx, limit)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(cacheKeyTrending, result, 5*time.Minute); err != nil {
		s.log.Warn("failed to add to cache", slog.String("key", cacheKeyTrending), slog.Any("err", err))
	}
	return result, nil
}

// ListTags возвращает отсортированный список всех тегов, используя кеш.
func (s *Service) ListTags(ctx context.Context) ([]string, error) {
	var result []string
	found, err := s.cache.Get(cacheKeyTags, &result)
	if err != nil {
		s.log.Warn("failed to read from cache", slog.String("key", cacheKeyTags), slog.Any("err", err))
	}
	if found {
		return result, nil
	}
	result, err = s.repo.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(cacheKeyTags, result, time.Hour); err != nil {
		s.log.Warn("failed to add to cache", slog.String("key", cacheKeyTags), slog.Any("err", err))
	}
	return result, nil
}

// Update обновляет содержимое статьи и возвращает её на модерацию.
func (s *Service) Update(ctx context.Context, id int, req models.DummyArticle) error {
	count, err := s.repo.UpdateArticle(ctx, id, req)
	if err != nil {
		return err
	}
	if count == 0 {
		return repository.ErrNotFound
	}
	s.invalidate(articleKey(id), cacheKeyTags)
	return nil
}

// Remove удаляет статью.
func (s *Service) Remove(ctx context.Context, id int) error {
	count, err := s.repo.RemoveArticle(ctx, id)
	if err != nil {
		return err
	}
	if count == 0 {
		return repository.ErrNotFound
	}
	s.invalidate(articleKey(id), cacheKeyTrending)
	return nil
}

// Approve одобряет статью и фиксирует дату публикации.
func (s *Service) Approve(ctx context.Context, id int, now time.Time) error {
	count, err := s.repo.ApproveArticle(ctx, id, now)
	if err != nil {
		return err
	}
	if count == 0 {
		return repository.ErrNotFound
	}
	s.invalidate(articleKey(id))
	return nil
}

// Decline отклоняет статью с указанием причины.
func (s *Service) Decline(ctx context.Context, id int, reason string) error {
	count, err := s.repo.DeclineArticle(ctx, id, reason)
	if err != nil {
		return err
	}
	if count == 0 {
		return repository.ErrNotFound
	}
	s.invalidate(articleKey(id))
	return nil
}

// Feature помечает статью как премиум-материал.
// Отметка не зависит от подписки автора статьи.
func (s *Service) Feature(ctx context.Context, id int) error {
	count, err := s.repo.FeatureArticle(ctx, id)
	if err != nil {
		return err
	}
	if count == 0 {
		return repository.ErrNotFound
	}
	s.invalidate(articleKey(id))
	return nil
}

// View атомарно увеличивает счётчики просмотров и рейтинга статьи.
func (s *Service) View(ctx context.Context, id int) error {
	count, err := s.repo.IncrementViews(ctx, id)
	if err != nil {
		return err
	}
	if count == 0 {
		return repository.ErrNotFound
	}
	s.invalidate(articleKey(id), cacheKeyTrending)
	return nil
}

func (s *Service) invalidate(keys ...string) {
	for _, key := range keys {
		if err := s.cache.Invalidate(key); err != nil {
			s.log.Warn("failed to invalidate cache", slog.String("key", key), slog.Any("err", err))
		}
	}
}

func articleKey(id int) string {
	return fmt.Sprintf("article:%d", id)
}
