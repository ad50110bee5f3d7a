// Package models содержит доменные структуры приложения: пользователей,
// профили с кредитным балансом, журнал кредитов, кэшированные ответы,
// интеграции с рекламными платформами, команды и шаблоны промптов.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID          string    // Уникальный идентификатор пользователя
	Email        string    // Электронная почта
	Username     string    // Имя пользователя (уникальное)
	PasswordHash string    // Хэш пароля пользователя
	Role         string    // Роль пользователя, admin или user
	CreatedAt    time.Time // Дата регистрации
}

// Profile хранит кредитный баланс и платёжные флаги пользователя.
// Баланс меняется только вместе с записью в журнал кредитов.
type Profile struct {
	UserUID             string `json:"user_uid"`
	Credits             int    `json:"credits"`
	HasPaid             bool   `json:"has_paid"`
	ReceivedFreeCredits bool   `json:"received_free_credits"`
	CustomerID          string `json:"-"` // Идентификатор клиента у платёжного провайдера
}
