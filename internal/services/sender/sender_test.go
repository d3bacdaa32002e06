package sender

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/magabrotheeeer/newspaper-backend/internal/lib/smtp"
	"github.com/magabrotheeeer/newspaper-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) GetSMTPUser() string {
	args := m.Called()
	return args.String(0)
}

type MockSMTPClient struct {
	mock.Mock
}

func (m *MockSMTPClient) Mail(from string) error {
	args := m.Called(from)
	return args.Error(0)
}

func (m *MockSMTPClient) Rcpt(to string) error {
	args := m.Called(to)
	return args.Error(0)
}

func (m *MockSMTPClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (m *MockSMTPClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockSMTPClient) Quit() error {
	args := m.Called()
	return args.Error(0)
}

type MockSMTPWriter struct {
	mock.Mock
}

func (m *MockSMTPWriter) Write(p []byte) (n int, err error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *MockSMTPWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestService_SendInfoExpiredPremium(t *testing.T) {
	tests := []struct {
		name          string
		body          []byte
		setupMocks    func(*MockTransport)
		expectedError bool
		errorMessage  string
	}{
		{
			name: "успех - письмо о сбросе премиума отправлено",
			body: []byte(`{"email":"reader@example.com","name":"Иван","expired_at":"2025-06-01T12:00:00Z"}`),
			setupMocks: func(tr *MockTransport) {
				mockClient := new(MockSMTPClient)
				mockWriter := new(MockSMTPWriter)

				tr.On("GetSMTPUser").Return("news@example.com")
				tr.On("Connect").Return(mockClient, nil).Once()
				mockClient.On("Mail", "news@example.com").Return(nil).Once()
				mockClient.On("Rcpt", "reader@example.com").Return(nil).Once()
				mockClient.On("Data").Return(mockWriter, nil).Once()
				mockWriter.On("Write", mock.AnythingOfType("[]uint8")).Return(100, nil).Once()
				mockWriter.On("Close").Return(nil).Once()
				mockClient.On("Quit").Return(nil).Once()
				mockClient.On("Close").Return(nil).Once()
			},
			expectedError: false,
		},
		{
			name: "невалидный JSON",
			body: []byte(`invalid json`),
			setupMocks: func(_ *MockTransport) {
				// транспорт не должен вызываться
			},
			expectedError: true,
			errorMessage:  "error unmarshalling message",
		},
		{
			name: "ошибка соединения с SMTP",
			body: []byte(`{"email":"reader@example.com","name":"Иван","expired_at":"2025-06-01T12:00:00Z"}`),
			setupMocks: func(tr *MockTransport) {
				tr.On("GetSMTPUser").Return("news@example.com")
				tr.On("Connect").Return(nil, errors.New("connection error")).Once()
			},
			expectedError: true,
			errorMessage:  "connection error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := new(MockTransport)
			service := New(newNoopLogger(), transport)

			tt.setupMocks(transport)

			err := service.SendInfoExpiredPremium(tt.body)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMessage)
			} else {
				assert.NoError(t, err)
			}

			transport.AssertExpectations(t)
		})
	}
}

func TestService_SMTPErrorHandling(t *testing.T) {
	message := models.ExpiredPremiumInfo{
		Email:     "reader@example.com",
		Name:      "Иван",
		ExpiredAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	body, _ := json.Marshal(message)

	tests := []struct {
		name         string
		setupMocks   func(*MockTransport)
		errorMessage string
	}{
		{
			name: "ошибка MAIL FROM",
			setupMocks: func(tr *MockTransport) {
				mockClient := new(MockSMTPClient)

				tr.On("GetSMTPUser").Return("news@example.com")
				tr.On("Connect").Return(mockClient, nil).Once()
				mockClient.On("Mail", "news@example.com").Return(errors.New("mail error")).Once()
				mockClient.On("Close").Return(nil).Once()
			},
			errorMessage: "mail error",
		},
		{
			name: "ошибка RCPT TO",
			setupMocks: func(tr *MockTransport) {
				mockClient := new(MockSMTPClient)

				tr.On("GetSMTPUser").Return("news@example.com")
				tr.On("Connect").Return(mockClient, nil).Once()
				mockClient.On("Mail", "news@example.com").Return(nil).Once()
				mockClient.On("Rcpt", "reader@example.com").Return(errors.New("rcpt error")).Once()
				mockClient.On("Close").Return(nil).Once()
			},
			errorMessage: "rcpt error",
		},
		{
			name: "ошибка DATA",
			setupMocks: func(tr *MockTransport) {
				mockClient := new(MockSMTPClient)

				tr.On("GetSMTPUser").Return("news@example.com")
				tr.On("Connect").Return(mockClient, nil).Once()
				mockClient.On("Mail", "news@example.com").Return(nil).Once()
				mockClient.On("Rcpt", "reader@example.com").Return(nil).Once()
				mockClient.On("Data").Return(nil, errors.New("data error")).Once()
				mockClient.On("Close").Return(nil).Once()
			},
			errorMessage: "data error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := new(MockTransport)
			service := New(newNoopLogger(), transport)

			tt.setupMocks(transport)

			err := service.SendInfoExpiredPremium(body)

			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMessage)

			transport.AssertExpectations(t)
		})
	}
}

func TestService_New(t *testing.T) {
	transport := new(MockTransport)
	logger := newNoopLogger()

	service := New(logger, transport)

	assert.NotNil(t, service)
	assert.Equal(t, transport, service.transport)
	assert.Equal(t, logger, service.log)
}
