// Package models содержит доменные структуры пользователя, статьи, издателя
// и уведомления, а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// Role — закрытое перечисление ролей пользователя.
// Переходы между ролями выполняются только именованными операциями:
// normal -> premium (выдача подписки), premium -> normal (сброс по истечении),
// * -> admin (назначение администратором).
type Role string

const (
	// RoleNormal — обычный пользователь, публикация ограничена квотой.
	RoleNormal Role = "normal"
	// RolePremium — пользователь с действующей премиум-подпиской.
	RolePremium Role = "premium"
	// RoleAdmin — администратор.
	RoleAdmin Role = "admin"
)

// Valid сообщает, принадлежит ли значение к множеству известных ролей.
func (r Role) Valid() bool {
	switch r {
	case RoleNormal, RolePremium, RoleAdmin:
		return true
	}
	return false
}

// User представляет зарегистрированного пользователя системы.
// Инвариант: Role == RolePremium тогда и только тогда, когда PremiumUntil
// задан и (на момент записи) находится в будущем. Поле PremiumUntil
// сбрасывает только sweeper при истечении подписки.
type User struct {
	UID          string     // Уникальный идентификатор пользователя
	Email        string     // Электронная почта, внешний идентификатор
	Name         string     // Отображаемое имя
	Role         Role       // Роль пользователя
	PremiumUntil *time.Time // Дата истечения премиум-подписки, nil если её нет
	LastLogin    *time.Time // Время последнего входа, информационное поле
	LastLogout   *time.Time // Время последнего выхода, информационное поле
}

// DummyUser используется для приёма данных регистрации из JSON-запроса.
type DummyUser struct {
	Email string `json:"email" validate:"required,email"` // Электронная почта
	Name  string `json:"name" validate:"required"`        // Отображаемое имя
}

// UserStats содержит агрегированную статистику по пользователям.
type UserStats struct {
	Total   int `json:"total"`
	Normal  int `json:"normal"`
	Premium int `json:"premium"`
}
