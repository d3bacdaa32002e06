// Package role реализует HTTP-обработчик получения действующей роли пользователя.
//
// Действующая роль учитывает срок подписки: пользователь с ролью premium
// и истёкшей датой до первого прохода фоновой очистки считается normal.
package role

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/newspaper-backend/internal/http/response"
	"github.com/magabrotheeeer/newspaper-backend/internal/lib/sl"
	"github.com/magabrotheeeer/newspaper-backend/internal/models"
	"github.com/magabrotheeeer/newspaper-backend/internal/storage/repository"
)

// Handler управляет HTTP-запросами на получение роли пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс движка премиум-прав.
type Service interface {
	RoleOf(ctx context.Context, email string, now time.Time) (models.Role, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить действующую роль пользователя
// @Description Возвращает роль с учётом срока премиум-подписки на текущий момент.
// @Tags Users
// @Produce  json
// @Param email path string true "Электронная почта пользователя"
// @Success 200 {object} map[string]any "Роль пользователя"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /users/{email}/role [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.role"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	email := chi.URLParam(r, "email")
	if email == "" {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("email is required"))
		return
	}

	userRole, err := h.service.RoleOf(r.Context(), email, time.Now())
	if errors.Is(err, repository.ErrNotFound) {
		log.Info("user not found", slog.String("email", email))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	}
	if err != nil {
		log.Error("failed to get user role", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not get user role"))
		return
	}

	log.Info("success to get user role",
		slog.String("email", email),
		slog.String("role", string(userRole)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"role": userRole,
	}))
}
