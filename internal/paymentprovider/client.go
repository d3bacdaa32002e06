// Package paymentprovider содержит HTTP-клиент платёжного провайдера (Stripe).
// Ядро использует единственную операцию: создание платёжного намерения
// с возвратом клиентского секрета для завершения оплаты на фронтенде.
package paymentprovider

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client клиент для работы с API Stripe.
type Client struct {
	secretKey  string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент Stripe.
func NewClient(secretKey string) *Client {
	return &Client{
		secretKey:  secretKey,
		apiURL:     "https://api.stripe.com/v1",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) newRequest(method, path string, form url.Values) (*http.Request, error) {
	req, err := http.NewRequest(method, c.apiURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req, nil
}

// CreatePaymentIntent отправляет запрос на создание платёжного намерения.
func (c *Client) CreatePaymentIntent(reqParams CreatePaymentIntentRequest) (*CreatePaymentIntentResponse, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(reqParams.Amount, 10))
	form.Set("currency", reqParams.Currency)
	form.Add("payment_method_types[]", "card")

	req, err := c.newRequest("POST", "/payment_intents", form)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("unexpected status: " + resp.Status)
	}

	var intentResp CreatePaymentIntentResponse
	if err := json.NewDecoder(resp.Body).Decode(&intentResp); err != nil {
		return nil, err
	}
	return &intentResp, nil
}
