package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/magabrotheeeer/adpilot/internal/models"
	aicache "github.com/magabrotheeeer/adpilot/internal/services/aicache"
	services "github.com/magabrotheeeer/adpilot/internal/services/generation"
	"github.com/magabrotheeeer/adpilot/internal/storage/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Мок для Completer
type CompleterMock struct {
	mock.Mock
}

func (m *CompleterMock) Complete(ctx context.Context, systemPrompt, userPrompt string, jsonMode bool) (string, error) {
	args := m.Called(ctx, systemPrompt, userPrompt, jsonMode)
	return args.String(0), args.Error(1)
}

// Мок для ImageRenderer
type RendererMock struct {
	mock.Mock
}

func (m *RendererMock) GenerateImage(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// Мок для CreditCharger
type ChargerMock struct {
	mock.Mock
}

func (m *ChargerMock) Deduct(ctx context.Context, userUID string, amount int, reason, refID string) error {
	args := m.Called(ctx, userUID, amount, reason, refID)
	return args.Error(0)
}

func (m *ChargerMock) Add(ctx context.Context, userUID string, amount int, reason, refID string) error {
	args := m.Called(ctx, userUID, amount, reason, refID)
	return args.Error(0)
}

// Мок для TemplateRepository
type TemplatesMock struct {
	mock.Mock
}

func (m *TemplatesMock) GetTemplateForPlatform(ctx context.Context, userUID, platform string) (*models.PromptTemplate, error) {
	args := m.Called(ctx, userUID, platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PromptTemplate), args.Error(1)
}

// Хранилище кэша в памяти для настоящего AICacheService
type cacheRepoStub struct {
	entries map[string]*models.CacheEntry
}

func newCacheRepoStub() *cacheRepoStub {
	return &cacheRepoStub{entries: make(map[string]*models.CacheEntry)}
}

func (r *cacheRepoStub) GetCachedResponse(_ context.Context, key string) (*models.CacheEntry, bool, error) {
	entry, ok := r.entries[key]
	if !ok {
		return nil, false, nil
	}
	return entry, true, nil
}

func (r *cacheRepoStub) UpsertCachedResponse(_ context.Context, key string, response json.RawMessage, expiration time.Time) error {
	r.entries[key] = &models.CacheEntry{Key: key, Response: response, Expiration: expiration}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func builtinTemplate(platform string) *models.PromptTemplate {
	return &models.PromptTemplate{
		ID:       1,
		Platform: platform,
		Body:     "Write {{count}} ads for {{product_name}} in {{language}}.",
		Builtin:  true,
	}
}

func newService(completer *CompleterMock, charger *ChargerMock, templates *TemplatesMock) *services.GenerationService {
	cache := aicache.NewAICacheService(newCacheRepoStub(), time.Hour)
	return services.NewGenerationService(discardLogger(), completer, new(RendererMock), charger, cache, templates, 1)
}

func newImageService(renderer *RendererMock, charger *ChargerMock) *services.GenerationService {
	cache := aicache.NewAICacheService(newCacheRepoStub(), time.Hour)
	return services.NewGenerationService(discardLogger(), new(CompleterMock), renderer, charger, cache, new(TemplatesMock), 1)
}

func TestGenerate_Success(t *testing.T) {
	completer := new(CompleterMock)
	charger := new(ChargerMock)
	templates := new(TemplatesMock)

	charger.On("Deduct", mock.Anything, "user-uid", 2, "ad_generation", "google,meta").
		Return(nil).Once()
	templates.On("GetTemplateForPlatform", mock.Anything, "user-uid", "google").
		Return(builtinTemplate("google"), nil).Once()
	templates.On("GetTemplateForPlatform", mock.Anything, "user-uid", "meta").
		Return(builtinTemplate("meta"), nil).Once()
	completer.On("Complete", mock.Anything, mock.Anything, mock.Anything, true).
		Return(`{"ads":[{"headline":"H","body":"B","call_to_action":"Go"}]}`, nil).Twice()

	svc := newService(completer, charger, templates)
	result, err := svc.Generate(context.Background(), "user-uid", models.GenerateAdsRequest{
		Platforms:   []string{"Google", "meta", "google"},
		ProductName: "Widget",
		Count:       1,
	})
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	require.Len(t, result.Ads, 2)
	assert.Equal(t, "google", result.Ads[0].Platform)
	assert.Equal(t, "meta", result.Ads[1].Platform)
	assert.False(t, result.Ads[0].Fallback)

	charger.AssertExpectations(t)
	completer.AssertExpectations(t)
}

func TestGenerate_CacheHitStillCharges(t *testing.T) {
	completer := new(CompleterMock)
	charger := new(ChargerMock)
	templates := new(TemplatesMock)

	charger.On("Deduct", mock.Anything, "user-uid", 1, "ad_generation", "google").
		Return(nil).Twice()
	templates.On("GetTemplateForPlatform", mock.Anything, "user-uid", "google").
		Return(builtinTemplate("google"), nil).Once()
	completer.On("Complete", mock.Anything, mock.Anything, mock.Anything, true).
		Return(`{"ads":[{"headline":"H","body":"B","call_to_action":"Go"}]}`, nil).Once()

	svc := newService(completer, charger, templates)
	req := models.GenerateAdsRequest{
		Platforms:   []string{"google"},
		ProductName: "Widget",
		Count:       1,
	}

	first, err := svc.Generate(context.Background(), "user-uid", req)
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	// повторный идентичный запрос: модель не вызывается, кредиты списаны
	second, err := svc.Generate(context.Background(), "user-uid", req)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Ads, second.Ads)

	charger.AssertExpectations(t)
	completer.AssertExpectations(t)
}

func TestGenerate_InsufficientCredits(t *testing.T) {
	completer := new(CompleterMock)
	charger := new(ChargerMock)
	templates := new(TemplatesMock)

	charger.On("Deduct", mock.Anything, "user-uid", 1, "ad_generation", "google").
		Return(repository.ErrInsufficientCredits).Once()

	svc := newService(completer, charger, templates)
	_, err := svc.Generate(context.Background(), "user-uid", models.GenerateAdsRequest{
		Platforms:   []string{"google"},
		ProductName: "Widget",
	})
	assert.ErrorIs(t, err, repository.ErrInsufficientCredits)
	completer.AssertNotCalled(t, "Complete")
}

func TestGenerate_UnknownPlatform(t *testing.T) {
	svc := newService(new(CompleterMock), new(ChargerMock), new(TemplatesMock))

	_, err := svc.Generate(context.Background(), "user-uid", models.GenerateAdsRequest{
		Platforms:   []string{"tiktok"},
		ProductName: "Widget",
	})
	assert.ErrorIs(t, err, services.ErrUnknownPlatform)
}

func TestGenerate_FallbackOnModelError(t *testing.T) {
	completer := new(CompleterMock)
	charger := new(ChargerMock)
	templates := new(TemplatesMock)

	charger.On("Deduct", mock.Anything, "user-uid", 1, "ad_generation", "google").
		Return(nil).Once()
	templates.On("GetTemplateForPlatform", mock.Anything, "user-uid", "google").
		Return(builtinTemplate("google"), nil).Once()
	completer.On("Complete", mock.Anything, mock.Anything, mock.Anything, true).
		Return("", errors.New("upstream unavailable")).Once()

	svc := newService(completer, charger, templates)
	result, err := svc.Generate(context.Background(), "user-uid", models.GenerateAdsRequest{
		Platforms:   []string{"google"},
		ProductName: "Widget",
		ProductInfo: "A very useful widget",
		Count:       2,
	})
	require.NoError(t, err)
	require.Len(t, result.Ads, 2)
	for _, ad := range result.Ads {
		assert.True(t, ad.Fallback)
		assert.Equal(t, "Widget", ad.Headline)
		assert.Equal(t, "A very useful widget", ad.Body)
	}
}

func TestRenderImage_Success(t *testing.T) {
	renderer := new(RendererMock)
	charger := new(ChargerMock)

	charger.On("Deduct", mock.Anything, "user-uid", 1, "image_generation", "").
		Return(nil).Once()
	renderer.On("GenerateImage", mock.Anything, "robot mascot").
		Return("https://images.example.com/1.png", nil).Once()

	svc := newImageService(renderer, charger)
	url, err := svc.RenderImage(context.Background(), "user-uid", "robot mascot")
	require.NoError(t, err)
	assert.Equal(t, "https://images.example.com/1.png", url)

	charger.AssertExpectations(t)
	renderer.AssertExpectations(t)
}

func TestRenderImage_InsufficientCredits(t *testing.T) {
	renderer := new(RendererMock)
	charger := new(ChargerMock)

	charger.On("Deduct", mock.Anything, "user-uid", 1, "image_generation", "").
		Return(repository.ErrInsufficientCredits).Once()

	svc := newImageService(renderer, charger)
	_, err := svc.RenderImage(context.Background(), "user-uid", "robot mascot")
	assert.ErrorIs(t, err, repository.ErrInsufficientCredits)
	renderer.AssertNotCalled(t, "GenerateImage")
}

func TestRenderImage_RefundsOnModelError(t *testing.T) {
	renderer := new(RendererMock)
	charger := new(ChargerMock)

	charger.On("Deduct", mock.Anything, "user-uid", 1, "image_generation", "").
		Return(nil).Once()
	renderer.On("GenerateImage", mock.Anything, "robot mascot").
		Return("", errors.New("upstream unavailable")).Once()
	// без изображения списанный кредит возвращается
	charger.On("Add", mock.Anything, "user-uid", 1, "image_generation_refund", "").
		Return(nil).Once()

	svc := newImageService(renderer, charger)
	_, err := svc.RenderImage(context.Background(), "user-uid", "robot mascot")
	require.Error(t, err)
	charger.AssertExpectations(t)
}

func TestGenerate_FallbackOnGarbageResponse(t *testing.T) {
	completer := new(CompleterMock)
	charger := new(ChargerMock)
	templates := new(TemplatesMock)

	charger.On("Deduct", mock.Anything, "user-uid", 1, "ad_generation", "google").
		Return(nil).Once()
	templates.On("GetTemplateForPlatform", mock.Anything, "user-uid", "google").
		Return(builtinTemplate("google"), nil).Once()
	completer.On("Complete", mock.Anything, mock.Anything, mock.Anything, true).
		Return(`{"ads":[]}`, nil).Once()

	svc := newService(completer, charger, templates)
	result, err := svc.Generate(context.Background(), "user-uid", models.GenerateAdsRequest{
		Platforms:   []string{"google"},
		ProductName: "Widget",
		Count:       1,
	})
	require.NoError(t, err)
	require.Len(t, result.Ads, 1)
	assert.True(t, result.Ads[0].Fallback)
}
