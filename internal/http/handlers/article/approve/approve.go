// Package approve реализует HTTP-обработчик одобрения статьи модератором.
package approve

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/newspaper-backend/internal/http/response"
	"github.com/magabrotheeeer/newspaper-backend/internal/lib/sl"
	"github.com/magabrotheeeer/newspaper-backend/internal/storage/repository"
)

// Handler управляет HTTP-запросами на одобрение статей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс сервиса статей.
type Service interface {
	Approve(ctx context.Context, id int, now time.Time) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Одобрить статью
// @Description Переводит статью в статус approved и фиксирует дату публикации.
// @Tags Moderation
// @Produce  json
// @Param id path int true "ID статьи"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Статья не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/articles/{id}/approve [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.article.approve"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid article id"))
		return
	}

	err = h.service.Approve(r.Context(), id, time.Now())
	if errors.Is(err, repository.ErrNotFound) {
		log.Info("article not found", slog.Int("id", id))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("article not found"))
		return
	}
	if err != nil {
		log.Error("failed to approve article", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not approve article"))
		return
	}

	log.Info("success to approve article", slog.Int("id", id))
	render.JSON(w, r, response.OK())
}
