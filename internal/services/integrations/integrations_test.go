package services_test

import (
	"context"
	"encoding/json"
	"net/url"
	"testing"
	"time"

	"github.com/magabrotheeeer/adpilot/internal/config"
	"github.com/magabrotheeeer/adpilot/internal/models"
	services "github.com/magabrotheeeer/adpilot/internal/services/integrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Мок для IntegrationsRepository
type IntegrationsRepoMock struct {
	mock.Mock
}

func (m *IntegrationsRepoMock) UpsertIntegration(ctx context.Context, in models.Integration) error {
	args := m.Called(ctx, in)
	return args.Error(0)
}

func (m *IntegrationsRepoMock) ListIntegrations(ctx context.Context, userUID string) ([]*models.Integration, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Integration), args.Error(1)
}

func (m *IntegrationsRepoMock) RemoveIntegration(ctx context.Context, userUID, platform string) (int, error) {
	args := m.Called(ctx, userUID, platform)
	return args.Int(0), args.Error(1)
}

// Хранилище state-токенов в памяти
type stateStoreStub struct {
	values map[string][]byte
}

func newStateStoreStub() *stateStoreStub {
	return &stateStoreStub{values: make(map[string][]byte)}
}

func (s *stateStoreStub) Set(key string, value any, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.values[key] = data
	return nil
}

func (s *stateStoreStub) Get(key string, result any) (bool, error) {
	data, ok := s.values[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, result)
}

func (s *stateStoreStub) Invalidate(key string) error {
	delete(s.values, key)
	return nil
}

func testConfig() config.OAuth {
	return config.OAuth{
		RedirectURL: "https://app.example.com/integrations/callback",
		StateTTL:    10 * time.Minute,
		Google:      config.OAuthApp{ClientID: "google-id", ClientSecret: "google-secret"},
		Meta:        config.OAuthApp{ClientID: "meta-id", ClientSecret: "meta-secret"},
		LinkedIn:    config.OAuthApp{ClientID: "linkedin-id", ClientSecret: "linkedin-secret"},
		Microsoft:   config.OAuthApp{ClientID: "microsoft-id", ClientSecret: "microsoft-secret"},
	}
}

func TestConnectURL(t *testing.T) {
	states := newStateStoreStub()
	svc := services.NewIntegrationsService(new(IntegrationsRepoMock), states, testConfig())

	authURL, err := svc.ConnectURL(context.Background(), "user-uid", models.PlatformGoogle)
	require.NoError(t, err)

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	assert.Equal(t, "accounts.google.com", parsed.Host)
	assert.Equal(t, "google-id", parsed.Query().Get("client_id"))
	assert.Equal(t, "https://app.example.com/integrations/callback", parsed.Query().Get("redirect_uri"))

	state := parsed.Query().Get("state")
	require.NotEmpty(t, state)

	// state сохранён вместе с владельцем и платформой
	var saved models.OAuthState
	found, err := states.Get("oauth_state:"+state, &saved)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "user-uid", saved.UserUID)
	assert.Equal(t, models.PlatformGoogle, saved.Platform)
}

func TestConnectURL_UnknownPlatform(t *testing.T) {
	svc := services.NewIntegrationsService(new(IntegrationsRepoMock), newStateStoreStub(), testConfig())

	_, err := svc.ConnectURL(context.Background(), "user-uid", "tiktok")
	assert.ErrorIs(t, err, services.ErrUnknownPlatform)
}

func TestHandleCallback_UnknownState(t *testing.T) {
	svc := services.NewIntegrationsService(new(IntegrationsRepoMock), newStateStoreStub(), testConfig())

	_, err := svc.HandleCallback(context.Background(), "missing-state", "code")
	assert.ErrorIs(t, err, services.ErrInvalidState)
}

func TestDisconnect(t *testing.T) {
	repo := new(IntegrationsRepoMock)
	repo.On("RemoveIntegration", mock.Anything, "user-uid", models.PlatformMeta).Return(1, nil).Once()
	svc := services.NewIntegrationsService(repo, newStateStoreStub(), testConfig())

	removed, err := svc.Disconnect(context.Background(), "user-uid", models.PlatformMeta)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	repo.AssertExpectations(t)
}

func TestDisconnect_UnknownPlatform(t *testing.T) {
	svc := services.NewIntegrationsService(new(IntegrationsRepoMock), newStateStoreStub(), testConfig())

	_, err := svc.Disconnect(context.Background(), "user-uid", "tiktok")
	assert.ErrorIs(t, err, services.ErrUnknownPlatform)
}
