// Package list реализует HTTP-обработчик получения издателей.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/newspaper-backend/internal/http/response"
	"github.com/magabrotheeeer/newspaper-backend/internal/lib/sl"
	"github.com/magabrotheeeer/newspaper-backend/internal/models"
)

// Handler управляет HTTP-запросами на получение издателей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс хранилища издателей.
type Service interface {
	ListPublishers(ctx context.Context) ([]*models.Publisher, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить издателей
// @Description Возвращает все издания.
// @Tags Publishers
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /publishers [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.publisher.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	publishers, err := h.service.ListPublishers(r.Context())
	if err != nil {
		log.Error("failed to list publishers", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list publishers"))
		return
	}

	log.Info("success to list publishers", slog.Int("count", len(publishers)))
	render.JSON(w, r, response.OKWithData(publishers))
}
