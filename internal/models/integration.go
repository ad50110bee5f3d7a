package models

import "time"

// Integration представляет подключённый рекламный кабинет пользователя.
// Токены хранятся только на сервере и не возвращаются клиенту.
type Integration struct {
	ID           int64      `json:"id"`
	UserUID      string     `json:"-"`
	Platform     string     `json:"platform"`
	AccessToken  string     `json:"-"`
	RefreshToken string     `json:"-"`
	ExpiresAt    *time.Time `json:"-"`
	AccountName  string     `json:"account_name"`
	CreatedAt    time.Time  `json:"connected_at"`
}

// OAuthState временное состояние между редиректом на провайдера и колбэком.
type OAuthState struct {
	UserUID  string `json:"user_uid"`
	Platform string `json:"platform"`
}
