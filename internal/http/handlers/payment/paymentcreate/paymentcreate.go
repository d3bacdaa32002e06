// Package paymentcreate реализует HTTP-обработчик создания платёжного намерения.
package paymentcreate

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/newspaper-backend/internal/http/response"
	"github.com/magabrotheeeer/newspaper-backend/internal/lib/sl"
	"github.com/magabrotheeeer/newspaper-backend/internal/paymentprovider"
)

// Request представляет тело запроса на создание платежа.
type Request struct {
	Amount int64 `json:"amount" validate:"required,gt=0"` // Сумма в минимальных единицах валюты
}

// Handler управляет HTTP-запросами на создание платежей.
type Handler struct {
	log      *slog.Logger
	client   PaymentClient
	currency string
	validate *validator.Validate
}

// PaymentClient описывает интерфейс клиента платёжного провайдера.
type PaymentClient interface {
	CreatePaymentIntent(req paymentprovider.CreatePaymentIntentRequest) (*paymentprovider.CreatePaymentIntentResponse, error)
}

// New создает новый Handler с переданными логгером и клиентом.
func New(log *slog.Logger, client PaymentClient, currency string) *Handler {
	return &Handler{
		log:      log,
		client:   client,
		currency: currency,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать платёжное намерение
// @Description Создаёт платёж у провайдера и возвращает клиентский секрет для завершения оплаты.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Param request body Request true "Сумма платежа"
// @Success 200 {object} map[string]any "Клиентский секрет"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка провайдера"
// @Router /create-payment-intent [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.paymentcreate"
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

	intent, err := h.client.CreatePaymentIntent(paymentprovider.CreatePaymentIntentRequest{
		Amount:   req.Amount,
		Currency: h.currency,
	})
	if err != nil {
		log.Error("failed to create payment intent", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create payment intent"))
		return
	}

	log.Info("success to create payment intent", slog.String("intent_id", intent.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"client_secret": intent.ClientSecret,
	}))
}
