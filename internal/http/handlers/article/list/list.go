// Package list реализует HTTP-обработчик получения статей.
//
// Без параметров возвращает все статьи, с параметром email — статьи автора,
// с параметрами page/limit — страницу с общим количеством.
package list

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

// Handler управляет HTTP-запросами на получение статей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс сервиса статей.
type Service interface {
	ListByOwner(ctx context.Context, ownerEmail string) ([]*models.Article, error)
	ListPage(ctx context.Context, ownerEmail string, limit, offset int) ([]*models.Article, int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить статьи
// @Description Возвращает все статьи, статьи автора по email или страницу по page/limit.
// @Tags Articles
// @Produce  json
// @Param email query string false "Электронная почта автора"
// @Param page query int false "Номер страницы (с 1)"
// @Param limit query int false "Размер страницы"
// @Success 200 {object} response.Response
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /articles [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.article.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	email := r.URL.Query().Get("email")
	pageStr := r.URL.Query().Get("page")
	limitStr := r.URL.Query().Get("limit")

	if pageStr != "" || limitStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			page = 1
		}
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			limit = 20
		}
		articles, total, err := h.service.ListPage(r.Context(), email, limit, (page-1)*limit)
		if err != nil {
			log.Error("failed to list articles page", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not list articles"))
			return
		}
		render.JSON(w, r, response.OKWithData(map[string]any{
			"articles": articles,
			"total":    total,
			"page":     page,
			"limit":    limit,
		}))
		return
	}

	articles, err := h.service.ListByOwner(r.Context(), email)
	if err != nil {
		log.Error("failed to list articles", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list articles"))
		return
	}

	log.Info("success to list articles", slog.Int("count", len(articles)))
	render.JSON(w, r, response.OKWithData(articles))
}
