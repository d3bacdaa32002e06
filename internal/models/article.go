package models

import "time"

// Статусы модерации статьи.
const (
	// StatusPending — статья ожидает модерации.
	StatusPending = "pending"
	// StatusApproved — статья одобрена и видна читателям.
	StatusApproved = "approved"
	// StatusDeclined — статья отклонена модератором.
	StatusDeclined = "declined"
)

// Article представляет статью, опубликованную пользователем.
// Счётчики Views и Score монотонно неубывающие, увеличиваются при просмотре.
type Article struct {
	ID                int        `json:"id"`
	Title             string     `json:"title"`
	Image             string     `json:"image,omitempty"`
	Description       string     `json:"description"`
	Publisher         string     `json:"publisher"`
	Tags              []string   `json:"tags"`
	OwnerEmail        string     `json:"owner_email"`
	AuthorName        string     `json:"author_name,omitempty"`
	Status            string     `json:"status"`
	DeclineReason     string     `json:"decline_reason,omitempty"`
	IsPremiumFeatured bool       `json:"is_premium_featured"`
	Views             int        `json:"views"`
	Score             int        `json:"score"`
	PostedDate        *time.Time `json:"posted_date,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// DummyArticle используется для приёма данных статьи из JSON-запроса
// до их валидации и преобразования в Article.
type DummyArticle struct {
	Title       string   `json:"title" validate:"required"`       // Заголовок
	Image       string   `json:"image,omitempty"`                 // Ссылка на обложку (опционально)
	Description string   `json:"description" validate:"required"` // Текст статьи
	Publisher   string   `json:"publisher" validate:"required"`   // Название издателя
	Tags        []string `json:"tags"`                            // Теги
	AuthorName  string   `json:"author_name,omitempty"`           // Имя автора
}

// ArticleFilter задаёт параметры выборки одобренных статей.
type ArticleFilter struct {
	Title           string   // Подстрока заголовка, пустая строка — без фильтра
	Publisher       string   // Точное имя издателя, пустая строка — без фильтра
	Tags            []string // Любой из тегов, пустой срез — без фильтра
	PremiumFeatured bool     // Только статьи с премиум-отметкой
	OwnerEmail      string   // Статьи конкретного автора, пустая строка — все
}

// Publisher представляет издание, к которому привязываются статьи.
type Publisher struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
}

// DummyPublisher используется для приёма данных издателя из JSON-запроса.
type DummyPublisher struct {
	Name string `json:"name" validate:"required"` // Название издания
	Logo string `json:"logo,omitempty"`           // Ссылка на логотип
}
