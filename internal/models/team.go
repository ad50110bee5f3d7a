package models

import "time"

// Статусы приглашения в команду.
const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationExpired  = "expired"
)

// TeamMember представляет участника команды владельца аккаунта.
type TeamMember struct {
	ID        int64     `json:"id"`
	OwnerUID  string    `json:"owner_uid"`
	MemberUID string    `json:"member_uid"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// TeamInvitation представляет приглашение в команду, отправленное по email.
type TeamInvitation struct {
	ID        int64     `json:"id"`
	OwnerUID  string    `json:"owner_uid"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Token     string    `json:"-"` // Одноразовый токен, уходит только в письме
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// InvitationInfo сообщение для отправки письма-приглашения через очередь.
type InvitationInfo struct {
	Email     string    `json:"email"`
	OwnerName string    `json:"owner_name"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreditsGrantedInfo сообщение для отправки письма о начислении кредитов.
type CreditsGrantedInfo struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Credits  int    `json:"credits"`
	Reason   string `json:"reason"`
}
