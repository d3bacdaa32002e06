package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/magabrotheeeer/newspaper-backend/internal/models"
)

// Теги хранятся в колонке text[]; через database/sql массивы передаются
// строкой с разделителем-запятой и конвертируются на стороне SQL
// (string_to_array / array_to_string).
func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

const articleColumns = `id, title, image, description, publisher,
			      array_to_string(tags, ','), owner_email, author_name, status, decline_reason,
			      is_premium_featured, views, score, posted_date, created_at, updated_at`

// CreateArticle вставляет новую статью без проверки квоты и возвращает её ID.
// Используется для авторов с действующей премиум-подпиской.
func (s *Storage) CreateArticle(ctx context.Context, article models.Article) (int, error) {
	const op = "storage.CreateArticle"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO articles (title, image, description, publisher, tags,
			      owner_email, author_name, status)
			  VALUES ($1, $2, $3, $4, string_to_array($5, ','), $6, $7, $8)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		article.Title, article.Image, article.Description, article.Publisher,
		joinTags(article.Tags), article.OwnerEmail, article.AuthorName, models.StatusPending).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// CreateArticleWithQuota вставляет статью только если у автора ещё нет ни одной.
// Проверка и вставка выражены одним оператором, поэтому два конкурентных
// запроса одного автора не могут оба пройти квоту. Второй результат false
// означает, что квота исчерпана и запись не создана.
func (s *Storage) CreateArticleWithQuota(ctx context.Context, article models.Article) (int, bool, error) {
	const op = "storage.CreateArticleWithQuota"
	select {
	case <-ctx.Done():
		return 0, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO articles (title, image, description, publisher, tags,
			      owner_email, author_name, status)
			  SELECT $1, $2, $3, $4, string_to_array($5, ','), $6, $7, $8
			  WHERE (SELECT COUNT(*) FROM articles WHERE owner_email = $6) = 0
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		article.Title, article.Image, article.Description, article.Publisher,
		joinTags(article.Tags), article.OwnerEmail, article.AuthorName, models.StatusPending).Scan(&newID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", op, err)
	}
	return newID, true, nil
}

// ReadArticle возвращает статью по её ID или ErrNotFound.
func (s *Storage) ReadArticle(ctx context.Context, id int) (*models.Article, error) {
	const op = "storage.ReadArticle"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + articleColumns + `
			  FROM articles WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)
	article, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return article, nil
}

// ListApprovedArticles возвращает одобренные статьи по фильтру,
// отсортированные по дате публикации по убыванию.
func (s *Storage) ListApprovedArticles(ctx context.Context, filter models.ArticleFilter) ([]*models.Article, error) {
	const op = "storage.ListApprovedArticles"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + articleColumns + `
			  FROM articles
			  WHERE status = $1
			  	AND ($2 = '' OR title ILIKE '%' || $2 || '%')
			  	AND ($3 = '' OR publisher = $3)
			  	AND ($4 = '' OR tags && string_to_array($4, ','))
			  	AND (NOT $5 OR is_premium_featured)
			  ORDER BY posted_date DESC NULLS LAST`
	rows, err := s.DB.QueryContext(ctx, query,
		models.StatusApproved, filter.Title, filter.Publisher, joinTags(filter.Tags), filter.PremiumFeatured)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	result, err := scanArticles(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListArticlesByOwner возвращает все статьи автора без учёта статуса.
func (s *Storage) ListArticlesByOwner(ctx context.Context, ownerEmail string) ([]*models.Article, error) {
	const op = "storage.ListArticlesByOwner"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + articleColumns + `
			  FROM articles
			  WHERE ($1 = '' OR owner_email = $1)
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, ownerEmail)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	result, err := scanArticles(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListArticlesPage возвращает страницу статей автора и общее число записей.
func (s *Storage) ListArticlesPage(ctx context.Context, ownerEmail string, limit, offset int) ([]*models.Article, int, error) {
	const op = "storage.ListArticlesPage"
	select {
	case <-ctx.Done():
		return nil, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var total int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM articles WHERE ($1 = '' OR owner_email = $1)`, ownerEmail).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT ` + articleColumns + `
			  FROM articles
			  WHERE ($1 = '' OR owner_email = $1)
			  ORDER BY id
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, ownerEmail, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	result, err := scanArticles(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return result, total, nil
}

// ListTrendingArticles возвращает статьи с наибольшим рейтингом.
func (s *Storage) ListTrendingArticles(ctx context.Context, limit int) ([]*models.Article, error) {
	const op = "storage.ListTrendingArticles"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + articleColumns + `
			  FROM articles
			  ORDER BY score DESC
			  LIMIT $1`
	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	result, err := scanArticles(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListTags возвращает отсортированный список всех различных тегов статей.
func (s *Storage) ListTags(ctx context.Context) ([]string, error) {
	const op = "storage.ListTags"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT DISTINCT unnest(tags) AS tag
			  FROM articles
			  WHERE tags IS NOT NULL AND array_length(tags, 1) > 0
			  ORDER BY tag`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateArticle обновляет содержимое статьи и возвращает её на модерацию.
func (s *Storage) UpdateArticle(ctx context.Context, id int, req models.DummyArticle) (int, error) {
	const op = "storage.UpdateArticle"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE articles
			  SET title = $1, image = $2, description = $3, publisher = $4,
			      tags = string_to_array($5, ','), status = $6, updated_at = now()
			  WHERE id = $7`
	result, err := s.DB.ExecContext(ctx, query,
		req.Title, req.Image, req.Description, req.Publisher, joinTags(req.Tags),
		models.StatusPending, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveArticle удаляет статью по ID и возвращает количество удалённых строк.
func (s *Storage) RemoveArticle(ctx context.Context, id int) (int, error) {
	const op = "storage.RemoveArticle"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM articles WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ApproveArticle переводит статью в статус approved и фиксирует дату публикации.
func (s *Storage) ApproveArticle(ctx context.Context, id int, now time.Time) (int, error) {
	const op = "storage.ApproveArticle"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE articles
			  SET status = $1, posted_date = $2, decline_reason = '', updated_at = now()
			  WHERE id = $3`
	result, err := s.DB.ExecContext(ctx, query, models.StatusApproved, now, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// DeclineArticle переводит статью в статус declined с указанием причины.
func (s *Storage) DeclineArticle(ctx context.Context, id int, reason string) (int, error) {
	const op = "storage.DeclineArticle"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE articles
			  SET status = $1, decline_reason = $2, updated_at = now()
			  WHERE id = $3`
	result, err := s.DB.ExecContext(ctx, query, models.StatusDeclined, reason, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// FeatureArticle помечает статью как премиум-материал.
// Отметка не зависит от подписки автора, это отдельное действие модератора.
func (s *Storage) FeatureArticle(ctx context.Context, id int) (int, error) {
	const op = "storage.FeatureArticle"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE articles
			  SET is_premium_featured = true, updated_at = now()
			  WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// IncrementViews атомарно увеличивает счётчики просмотров и рейтинга статьи.
func (s *Storage) IncrementViews(ctx context.Context, id int) (int, error) {
	const op = "storage.IncrementViews"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE articles
			  SET views = views + 1, score = score + 2
			  WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// CountArticlesByOwner возвращает количество статей автора.
func (s *Storage) CountArticlesByOwner(ctx context.Context, ownerEmail string) (int, error) {
	const op = "storage.CountArticlesByOwner"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var count int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM articles WHERE owner_email = $1`, ownerEmail).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*models.Article, error) {
	var item models.Article
	var tags string
	var postedDate sql.NullTime
	if err := row.Scan(&item.ID, &item.Title, &item.Image, &item.Description, &item.Publisher,
		&tags, &item.OwnerEmail, &item.AuthorName, &item.Status, &item.DeclineReason,
		&item.IsPremiumFeatured, &item.Views, &item.Score, &postedDate,
		&item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}
	item.Tags = splitTags(tags)
	if postedDate.Valid {
		item.PostedDate = &postedDate.Time
	}
	return &item, nil
}

func scanArticles(rows *sql.Rows) ([]*models.Article, error) {
	var result []*models.Article
	for rows.Next() {
		item, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
