// Package list реализует HTTP-обработчик получения пользователей.
//
// Без параметров возвращает всех пользователей, с параметром email — одного,
// с параметрами page/limit — страницу с общим количеством.
package list

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/newspaper-backend/internal/http/response"
	"github.com/magabrotheeeer/newspaper-backend/internal/lib/sl"
	"github.com/magabrotheeeer/newspaper-backend/internal/models"
	"github.com/magabrotheeeer/newspaper-backend/internal/storage/repository"
)

// Handler управляет HTTP-запросами на получение пользователей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс сервиса пользователей.
type Service interface {
	Get(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	ListPage(ctx context.Context, limit, offset int) ([]*models.User, int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить пользователей
// @Description Возвращает всех пользователей, одного по email или страницу по page/limit.
// @Tags Users
// @Produce  json
// @Param email query string false "Электронная почта пользователя"
// @Param page query int false "Номер страницы (с 1)"
// @Param limit query int false "Размер страницы"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /users [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if email := r.URL.Query().Get("email"); email != "" {
		user, err := h.service.Get(r.Context(), email)
		if errors.Is(err, repository.ErrNotFound) {
			log.Info("user not found", slog.String("email", email))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		if err != nil {
			log.Error("failed to get user", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not get user"))
			return
		}
		render.JSON(w, r, response.OKWithData(user))
		return
	}

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
		users, total, err := h.service.ListPage(r.Context(), limit, (page-1)*limit)
		if err != nil {
			log.Error("failed to list users page", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not list users"))
			return
		}
		render.JSON(w, r, response.OKWithData(map[string]any{
			"users": users,
			"total": total,
			"page":  page,
			"limit": limit,
		}))
		return
	}

	users, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list users"))
		return
	}

	log.Info("success to list users", slog.Int("count", len(users)))
	render.JSON(w, r, response.OKWithData(users))
}
