// Package services содержит логику бизнес-уровня для регистрации,
// аутентификации и защиты от перебора паролей.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/magabrotheeeer/adpilot/internal/lib/jwt"
	"github.com/magabrotheeeer/adpilot/internal/lib/password"
	"github.com/magabrotheeeer/adpilot/internal/metrics"
	"github.com/magabrotheeeer/adpilot/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyAttempts    = errors.New("too many login attempts")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя с пустым профилем и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)

	// GetUserByEmail возвращает пользователя по email или ошибку, если не найден.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// AttemptCounter считает неудачные попытки входа в общем хранилище,
// чтобы лимит действовал на все экземпляры сервиса.
type AttemptCounter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
	Invalidate(key string) error
}

// AuthService отвечает за регистрацию, авторизацию и валидацию JWT.
type AuthService struct {
	users       UserRepository
	jwtMaker    jwt.Maker
	attempts    AttemptCounter
	maxAttempts int
	lockout     time.Duration
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, attempts AttemptCounter, maxAttempts int, lockout time.Duration) *AuthService {
	return &AuthService{
		users:       users,
		jwtMaker:    jwtMaker,
		attempts:    attempts,
		maxAttempts: maxAttempts,
		lockout:     lockout,
	}
}

// Register создает нового пользователя с хэшированием пароля и дефолтной ролью "user".
func (s *AuthService) Register(ctx context.Context, email, username, rawPassword string) (string, error) {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", err
	}
	user := models.User{
		Email:        normalizeEmail(email),
		Username:     username,
		PasswordHash: hashed,
		Role:         "user", // дефолтная роль при регистрации
	}
	return s.users.RegisterUser(ctx, user)
}

// Login проверяет пароль пользователя и генерирует JWT.
// Неудачные попытки считаются по нормализованному email: после превышения
// лимита вход блокируется до истечения окна, даже если пароль верный.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (token, role string, err error) {
	email = normalizeEmail(email)
	key := attemptsKey(email)

	count, err := s.attempts.Incr(ctx, key, s.lockout)
	if err != nil {
		return "", "", err
	}
	if count > int64(s.maxAttempts) {
		metrics.LoginLockouts.Inc()
		return "", "", ErrTooManyAttempts
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return "", "", ErrInvalidCredentials
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", "", ErrInvalidCredentials
	}

	token, err = s.jwtMaker.GenerateToken(user.Username, user.Role, user.UID)
	if err != nil {
		return "", "", err
	}

	// успешный вход сбрасывает счётчик
	if err := s.attempts.Invalidate(key); err != nil {
		return "", "", err
	}
	return token, user.Role, nil
}

// ValidateToken проверяет JWT и возвращает информацию о пользователе, роль и признак валидности.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*models.User, string, bool, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, "", false, err
	}
	user := &models.User{
		Username: claims.Username,
		Role:     claims.Role,
		UID:      claims.UserUID,
	}
	return user, claims.Role, true, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func attemptsKey(email string) string {
	return fmt.Sprintf("login_attempts:%s", email)
}
