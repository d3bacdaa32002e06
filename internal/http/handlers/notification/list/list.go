// Package list реализует HTTP-обработчик журнала уведомлений.
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

// Handler управляет HTTP-запросами на журнал уведомлений.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс шины уведомлений.
type Service interface {
	List(ctx context.Context) ([]*models.Notification, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Журнал уведомлений
// @Description Возвращает записанные события активности аккаунтов, новые первыми.
// @Tags Notifications
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/notifications [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notification.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	notifications, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list notifications", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list notifications"))
		return
	}

	log.Info("success to list notifications", slog.Int("count", len(notifications)))
	render.JSON(w, r, response.OKWithData(notifications))
}
