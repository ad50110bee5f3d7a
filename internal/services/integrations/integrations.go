// Package services содержит подключение рекламных кабинетов по OAuth:
// выдачу ссылки авторизации, обмен кода на токены и хранение подключений.
package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"github.com/magabrotheeeer/adpilot/internal/config"
	"github.com/magabrotheeeer/adpilot/internal/models"
)

var (
	ErrUnknownPlatform = errors.New("unknown platform")
	ErrInvalidState    = errors.New("invalid or expired oauth state")
)

// IntegrationsRepository описывает контракт хранилища подключений.
type IntegrationsRepository interface {
	UpsertIntegration(ctx context.Context, in models.Integration) error
	ListIntegrations(ctx context.Context, userUID string) ([]*models.Integration, error)
	RemoveIntegration(ctx context.Context, userUID, platform string) (int, error)
}

// StateStore хранит одноразовые state-токены между редиректом и колбэком.
// Общее хранилище, чтобы колбэк мог прийти на любой экземпляр сервиса.
type StateStore interface {
	Set(key string, value any, expiration time.Duration) error
	Get(key string, result any) (bool, error)
	Invalidate(key string) error
}

// IntegrationsService управляет OAuth-подключениями рекламных платформ.
type IntegrationsService struct {
	repo     IntegrationsRepository
	states   StateStore
	configs  map[string]*oauth2.Config
	stateTTL time.Duration
}

// NewIntegrationsService собирает конфигурации OAuth для всех платформ.
func NewIntegrationsService(repo IntegrationsRepository, states StateStore, cfg config.OAuth) *IntegrationsService {
	return &IntegrationsService{
		repo:     repo,
		states:   states,
		stateTTL: cfg.StateTTL,
		configs: map[string]*oauth2.Config{
			models.PlatformGoogle: {
				ClientID:     cfg.Google.ClientID,
				ClientSecret: cfg.Google.ClientSecret,
				RedirectURL:  cfg.RedirectURL,
				Scopes:       []string{"https://www.googleapis.com/auth/adwords"},
				Endpoint: oauth2.Endpoint{
					AuthURL:  "https://accounts.google.com/o/oauth2/auth",
					TokenURL: "https://oauth2.googleapis.com/token",
				},
			},
			models.PlatformMeta: {
				ClientID:     cfg.Meta.ClientID,
				ClientSecret: cfg.Meta.ClientSecret,
				RedirectURL:  cfg.RedirectURL,
				Scopes:       []string{"ads_management", "ads_read"},
				Endpoint: oauth2.Endpoint{
					AuthURL:  "https://www.facebook.com/v19.0/dialog/oauth",
					TokenURL: "https://graph.facebook.com/v19.0/oauth/access_token",
				},
			},
			models.PlatformLinkedIn: {
				ClientID:     cfg.LinkedIn.ClientID,
				ClientSecret: cfg.LinkedIn.ClientSecret,
				RedirectURL:  cfg.RedirectURL,
				Scopes:       []string{"r_ads", "rw_ads"},
				Endpoint: oauth2.Endpoint{
					AuthURL:  "https://www.linkedin.com/oauth/v2/authorization",
					TokenURL: "https://www.linkedin.com/oauth/v2/accessToken",
				},
			},
			models.PlatformMicrosoft: {
				ClientID:     cfg.Microsoft.ClientID,
				ClientSecret: cfg.Microsoft.ClientSecret,
				RedirectURL:  cfg.RedirectURL,
				Scopes:       []string{"https://ads.microsoft.com/msads.manage", "offline_access"},
				Endpoint: oauth2.Endpoint{
					AuthURL:  "https://login.microsoftonline.com/common/oauth2/v2.0/authorize",
					TokenURL: "https://login.microsoftonline.com/common/oauth2/v2.0/token",
				},
			},
		},
	}
}

// ConnectURL выдаёт ссылку авторизации у провайдера платформы и сохраняет
// одноразовый state на время stateTTL.
func (s *IntegrationsService) ConnectURL(_ context.Context, userUID, platform string) (string, error) {
	const op = "services.integrations.ConnectURL"

	conf, ok := s.configs[platform]
	if !ok {
		return "", fmt.Errorf("%s: %w: %s", op, ErrUnknownPlatform, platform)
	}

	state, err := newStateToken()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := s.states.Set(stateKey(state), models.OAuthState{UserUID: userUID, Platform: platform}, s.stateTTL); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return conf.AuthCodeURL(state, oauth2.AccessTypeOffline), nil
}

// HandleCallback обменивает код авторизации на токены и сохраняет
// подключение. State одноразовый: повторный колбэк с тем же state отклоняется.
func (s *IntegrationsService) HandleCallback(ctx context.Context, state, code string) (*models.Integration, error) {
	const op = "services.integrations.HandleCallback"

	var saved models.OAuthState
	found, err := s.states.Get(stateKey(state), &saved)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidState)
	}
	if err := s.states.Invalidate(stateKey(state)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	conf, ok := s.configs[saved.Platform]
	if !ok {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrUnknownPlatform, saved.Platform)
	}

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	integration := models.Integration{
		UserUID:      saved.UserUID,
		Platform:     saved.Platform,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		integration.ExpiresAt = &expiry
	}

	if err := s.repo.UpsertIntegration(ctx, integration); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &integration, nil
}

// List возвращает подключения пользователя без токенов.
func (s *IntegrationsService) List(ctx context.Context, userUID string) ([]*models.Integration, error) {
	const op = "services.integrations.List"

	integrations, err := s.repo.ListIntegrations(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return integrations, nil
}

// Disconnect удаляет подключение платформы. Возвращает число удалённых записей.
func (s *IntegrationsService) Disconnect(ctx context.Context, userUID, platform string) (int, error) {
	const op = "services.integrations.Disconnect"

	if !models.IsKnownPlatform(platform) {
		return 0, fmt.Errorf("%s: %w: %s", op, ErrUnknownPlatform, platform)
	}
	removed, err := s.repo.RemoveIntegration(ctx, userUID, platform)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return removed, nil
}

func newStateToken() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func stateKey(state string) string {
	return "oauth_state:" + state
}
