// Package grantpremium реализует HTTP-обработчик выдачи премиум-подписки.
//
// Срок подписки передаётся явной парой amount/unit (minutes или days);
// перегрузки величины срока, как в старых клиентах, нет.
package grantpremium

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
	"github.com/magabrotheeeer/newspaper-backend/internal/services/entitlement"
	"github.com/magabrotheeeer/newspaper-backend/internal/storage/repository"
)

// Request представляет тело запроса на выдачу премиума.
type Request struct {
	Email  string `json:"email" validate:"required,email"`           // Электронная почта
	Amount int    `json:"amount" validate:"required,gt=0"`           // Срок подписки в единицах unit
	Unit   string `json:"unit" validate:"required,oneof=minutes days"` // Единица срока
}

// Handler управляет HTTP-запросами на выдачу премиум-подписки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс движка премиум-прав.
type Service interface {
	Grant(ctx context.Context, email string, amount int, unit entitlement.Unit, now time.Time) (time.Time, error)
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
// @Summary Выдать премиум-подписку
// @Description Переводит пользователя в роль premium до даты now + amount*unit. Повторная выдача заменяет окно подписки.
// @Tags Users
// @Accept  json
// @Produce  json
// @Param request body Request true "Email, срок и единица срока"
// @Success 200 {object} map[string]any "Дата окончания подписки"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или параметры выдачи"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /users/premium [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.grantpremium"
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

	until, err := h.service.Grant(r.Context(), req.Email, req.Amount, entitlement.Unit(req.Unit), time.Now())
	if errors.Is(err, repository.ErrNotFound) {
		log.Info("user not found", slog.String("email", req.Email))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	}
	if errors.Is(err, entitlement.ErrInvalidGrant) {
		log.Error("invalid grant", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid grant parameters"))
		return
	}
	if err != nil {
		log.Error("failed to grant premium", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not grant premium"))
		return
	}

	log.Info("success to grant premium",
		slog.String("email", req.Email),
		slog.Time("premium_until", until))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"premium_until": until,
	}))
}
