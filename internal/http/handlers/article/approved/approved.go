// Package approved реализует HTTP-обработчик витрины одобренных статей.
package approved

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/newspaper-backend/internal/http/response"
	"github.com/magabrotheeeer/newspaper-backend/internal/lib/sl"
	"github.com/magabrotheeeer/newspaper-backend/internal/models"
)

// Handler управляет HTTP-запросами на витрину одобренных статей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс сервиса статей.
type Service interface {
	ListApproved(ctx context.Context, filter models.ArticleFilter) ([]*models.Article, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Витрина одобренных статей
// @Description Возвращает одобренные статьи, свежие первыми, с фильтрами по заголовку, издателю, тегам и премиум-отметке.
// @Tags Articles
// @Produce  json
// @Param title query string false "Подстрока заголовка"
// @Param publisher query string false "Название издателя"
// @Param tags query string false "Теги через запятую (достаточно совпадения любого)"
// @Param premium query bool false "Только премиум-материалы"
// @Success 200 {object} response.Response
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /articles/approved [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.article.approved"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	filter := models.ArticleFilter{
		Title:           r.URL.Query().Get("title"),
		Publisher:       r.URL.Query().Get("publisher"),
		PremiumFeatured: r.URL.Query().Get("premium") == "true",
	}
	if raw := r.URL.Query().Get("tags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				filter.Tags = append(filter.Tags, tag)
			}
		}
	}

	articles, err := h.service.ListApproved(r.Context(), filter)
	if err != nil {
		log.Error("failed to list approved articles", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list approved articles"))
		return
	}

	log.Info("success to list approved articles", slog.Int("count", len(articles)))
	render.JSON(w, r, response.OKWithData(articles))
}
