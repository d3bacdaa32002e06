package paymentprovider

// CreatePaymentIntentRequest — параметры создания платёжного намерения.
// Сумма указывается в минимальных единицах валюты (центах).
type CreatePaymentIntentRequest struct {
	Amount   int64  `json:"amount" validate:"required,gt=0"`
	Currency string `json:"currency" validate:"required"`
}

// CreatePaymentIntentResponse — ответ Stripe на создание платёжного намерения.
type CreatePaymentIntentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}
