// Package create реализует HTTP-обработчик публикации статьи.
//
// Обработчик проходит через шлюз публикации: автор без действующей
// премиум-подписки может иметь не больше одной статьи.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/newspaper-backend/internal/http/response"
	"github.com/magabrotheeeer/newspaper-backend/internal/lib/sl"
	"github.com/magabrotheeeer/newspaper-backend/internal/models"
	"github.com/magabrotheeeer/newspaper-backend/internal/services/article"
	"github.com/magabrotheeeer/newspaper-backend/internal/storage/repository"
)

// Request представляет тело запроса на публикацию статьи.
type Request struct {
	Email string `json:"email" validate:"required,email"` // Электронная почта автора
	models.DummyArticle
}

// Handler управляет HTTP-запросами на публикацию статей.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс сервиса статей.
type Service interface {
	Create(ctx context.Context, ownerEmail string, req models.DummyArticle, now time.Time) (int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Опубликовать статью
// @Description Создаёт статью от имени автора. Автор без премиум-подписки ограничен одной статьёй.
// @Tags Articles
// @Accept  json
// @Produce  json
// @Param request body Request true "Email автора и данные статьи"
// @Success 200 {object} map[string]any "ID созданной статьи"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Квота публикаций исчерпана"
// @Failure 404 {object} response.ErrorResponse "Автор не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /articles [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.article.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	id, err := h.service.Create(r.Context(), req.Email, req.DummyArticle, time.Now())
	if errors.Is(err, repository.ErrNotFound) {
		log.Info("user not found", slog.String("email", req.Email))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	}
	if errors.Is(err, article.ErrQuotaExceeded) {
		log.Info("quota exceeded", slog.String("email", req.Email))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("article quota exceeded, premium required"))
		return
	}
	if err != nil {
		log.Error("failed to create article", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create article"))
		return
	}

	log.Info("success to create article", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id": id,
	}))
}
