package models

import "time"

// NotificationKind — закрытое перечисление видов событий активности аккаунта.
type NotificationKind string

const (
	// KindRegistered — регистрация нового пользователя.
	KindRegistered NotificationKind = "registered"
	// KindLogin — вход пользователя.
	KindLogin NotificationKind = "login"
	// KindLogout — выход пользователя.
	KindLogout NotificationKind = "logout"
)

// Valid сообщает, принадлежит ли значение к множеству известных видов событий.
func (k NotificationKind) Valid() bool {
	switch k {
	case KindRegistered, KindLogin, KindLogout:
		return true
	}
	return false
}

// Notification — запись о дискретном событии активности аккаунта.
// Журнал уведомлений append-only: записи никогда не изменяются и не удаляются.
type Notification struct {
	ID           int              `json:"id,omitempty"`
	SubjectEmail string           `json:"subject_email"`
	DisplayName  string           `json:"display_name"`
	Kind         NotificationKind `json:"kind"`
	Timestamp    time.Time        `json:"timestamp"`
}

// ExpiredPremiumInfo — сообщение о сбросе истёкшей премиум-подписки,
// публикуемое sweeper'ом в RabbitMQ для сервиса рассылки.
type ExpiredPremiumInfo struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	ExpiredAt time.Time `json:"expired_at"`
}
