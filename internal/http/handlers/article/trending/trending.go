// Package trending реализует HTTP-обработчик популярных статей.
package trending

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/newspaper-backend/internal/http/response"
	"github.com/magabrotheeeer/newspaper-backend/internal/lib/sl"
	"github.com/magabrotheeeer/newspaper-backend/internal/models"
)

const defaultLimit = 10

// Handler управляет HTTP-запросами на популярные статьи.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс сервиса статей.
type Service interface {
	ListTrending(ctx context.Context, limit int) ([]*models.Article, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Популярные статьи
// @Description Возвращает статьи с наибольшим рейтингом.
// @Tags Articles
// @Produce  json
// @Param limit query int false "Максимум статей (по умолчанию 10)"
// @Success 200 {object} response.Response
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /articles/trending [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.article.trending"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}

	articles, err := h.service.ListTrending(r.Context(), limit)
	if err != nil {
		log.Error("failed to list trending articles", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list trending articles"))
		return
	}

	log.Info("success to list trending articles", slog.Int("count", len(articles)))
	render.JSON(w, r, response.OKWithData(articles))
}
