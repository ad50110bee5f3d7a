// Package services содержит конвейер генерации рекламных объявлений:
// списание кредитов, кэш, вызов модели и запасные объявления при сбое.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/adpilot/internal/lib/sl"
	"github.com/magabrotheeeer/adpilot/internal/metrics"
	"github.com/magabrotheeeer/adpilot/internal/models"
	aicache "github.com/magabrotheeeer/adpilot/internal/services/aicache"
)

var ErrUnknownPlatform = errors.New("unknown platform")

const (
	defaultAdCount = 3

	imageGenerationCost = 1
)

// Completer описывает контракт клиента языковой модели.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, jsonMode bool) (string, error)
}

// ImageRenderer генерирует изображение по текстовому описанию.
type ImageRenderer interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// CreditCharger списывает кредиты перед генерацией и возвращает их,
// если модель изображений не отдала результат.
type CreditCharger interface {
	Deduct(ctx context.Context, userUID string, amount int, reason, refID string) error
	Add(ctx context.Context, userUID string, amount int, reason, refID string) error
}

// ResponseCache сворачивает одинаковые запросы и кэширует ответы модели.
type ResponseCache interface {
	Key(params any) (string, error)
	GetOrCreate(ctx context.Context, key string, create func(ctx context.Context) (json.RawMessage, error)) (*aicache.Result, error)
}

// TemplateRepository отдаёт шаблон промпта для платформы.
type TemplateRepository interface {
	GetTemplateForPlatform(ctx context.Context, userUID, platform string) (*models.PromptTemplate, error)
}

// GenerationService генерирует объявления для выбранных платформ.
type GenerationService struct {
	log             *slog.Logger
	completer       Completer
	images          ImageRenderer
	credits         CreditCharger
	cache           ResponseCache
	templates       TemplateRepository
	costPerPlatform int
}

// NewGenerationService создает новый экземпляр GenerationService.
func NewGenerationService(log *slog.Logger, completer Completer, images ImageRenderer, credits CreditCharger, cache ResponseCache, templates TemplateRepository, costPerPlatform int) *GenerationService {
	return &GenerationService{
		log:             log,
		completer:       completer,
		images:          images,
		credits:         credits,
		cache:           cache,
		templates:       templates,
		costPerPlatform: costPerPlatform,
	}
}

type cacheParams struct {
	Platform    string `json:"platform"`
	ProductName string `json:"product_name"`
	ProductInfo string `json:"product_info"`
	MindTrigger string `json:"mind_trigger"`
	Language    string `json:"language"`
	Count       int    `json:"count"`
}

// Generate списывает кредиты за каждую платформу и возвращает объявления.
// Кредиты списываются до обращения к кэшу: попадание в кэш не делает
// запрос бесплатным. При сбое модели пользователь получает запасные
// объявления из шаблона, кредиты при этом не возвращаются.
func (s *GenerationService) Generate(ctx context.Context, userUID string, req models.GenerateAdsRequest) (*models.GenerateAdsResult, error) {
	const op = "services.generation.Generate"

	platforms, err := normalizePlatforms(req.Platforms)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	count := req.Count
	if count <= 0 {
		count = defaultAdCount
	}

	cost := s.costPerPlatform * len(platforms)
	if err := s.credits.Deduct(ctx, userUID, cost, "ad_generation", strings.Join(platforms, ",")); err != nil {
		metrics.AdGenerations.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := &models.GenerateAdsResult{FromCache: true}
	for _, platform := range platforms {
		ads, fromCache := s.generateForPlatform(ctx, userUID, platform, req, count)
		result.Ads = append(result.Ads, ads...)
		if !fromCache {
			result.FromCache = false
		}
	}

	metrics.AdGenerations.WithLabelValues("ok").Inc()
	return result, nil
}

// RenderImage генерирует изображение для объявления по текстовому
// описанию. Кредит списывается до обращения к модели; при сбое модели
// запасного изображения нет, поэтому кредит возвращается.
func (s *GenerationService) RenderImage(ctx context.Context, userUID, prompt string) (string, error) {
	const op = "services.generation.RenderImage"

	if err := s.credits.Deduct(ctx, userUID, imageGenerationCost, "image_generation", ""); err != nil {
		metrics.ImageGenerations.WithLabelValues("rejected").Inc()
		return "", fmt.Errorf("%s: %w", op, err)
	}

	url, err := s.images.GenerateImage(ctx, prompt)
	if err != nil {
		metrics.ImageGenerations.WithLabelValues("error").Inc()
		if refundErr := s.credits.Add(ctx, userUID, imageGenerationCost, "image_generation_refund", ""); refundErr != nil {
			s.log.Error("failed to refund image generation credit", sl.Err(refundErr))
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	metrics.ImageGenerations.WithLabelValues("ok").Inc()
	return url, nil
}

func (s *GenerationService) generateForPlatform(ctx context.Context, userUID, platform string, req models.GenerateAdsRequest, count int) ([]models.Ad, bool) {
	params := cacheParams{
		Platform:    platform,
		ProductName: req.ProductName,
		ProductInfo: req.ProductInfo,
		MindTrigger: req.MindTrigger,
		Language:    req.Language,
		Count:       count,
	}

	key, err := s.cache.Key(params)
	if err != nil {
		s.log.Error("failed to build cache key", sl.Err(err))
		return s.fallbackAds(platform, req, count), false
	}

	cached, err := s.cache.GetOrCreate(ctx, key, func(ctx context.Context) (json.RawMessage, error) {
		return s.callModel(ctx, userUID, platform, req, count)
	})
	if err != nil {
		s.log.Error("ad generation failed, serving fallback ads",
			slog.String("platform", platform), sl.Err(err))
		metrics.AdGenerations.WithLabelValues("fallback").Inc()
		return s.fallbackAds(platform, req, count), false
	}

	ads, err := parseAds(cached.Response, platform)
	if err != nil {
		s.log.Error("failed to parse model response",
			slog.String("platform", platform), sl.Err(err))
		metrics.AdGenerations.WithLabelValues("fallback").Inc()
		return s.fallbackAds(platform, req, count), false
	}
	return ads, cached.FromCache
}

func (s *GenerationService) callModel(ctx context.Context, userUID, platform string, req models.GenerateAdsRequest, count int) (json.RawMessage, error) {
	tpl, err := s.templates.GetTemplateForPlatform(ctx, userUID, platform)
	if err != nil {
		return nil, err
	}

	userPrompt := renderTemplate(tpl.Body, map[string]string{
		"count":        fmt.Sprintf("%d", count),
		"product_name": req.ProductName,
		"product_info": req.ProductInfo,
		"mind_trigger": req.MindTrigger,
		"language":     languageOrDefault(req.Language),
	})

	content, err := s.completer.Complete(ctx,
		"You are an expert advertising copywriter. Respond with a JSON object of the form {\"ads\": [...]}.",
		userPrompt, true)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(content), nil
}

// fallbackAds собирает простые объявления из данных запроса,
// чтобы пользователь не остался с пустым ответом после сбоя модели.
func (s *GenerationService) fallbackAds(platform string, req models.GenerateAdsRequest, count int) []models.Ad {
	ads := make([]models.Ad, 0, count)
	for i := 0; i < count; i++ {
		ads = append(ads, models.Ad{
			Platform:     platform,
			Headline:     req.ProductName,
			Body:         fallbackBody(req),
			CallToAction: "Learn more",
			Fallback:     true,
		})
	}
	return ads
}

func fallbackBody(req models.GenerateAdsRequest) string {
	if req.ProductInfo != "" {
		return req.ProductInfo
	}
	return fmt.Sprintf("Discover %s today.", req.ProductName)
}

type modelAdList struct {
	Ads []models.Ad `json:"ads"`
}

func parseAds(response json.RawMessage, platform string) ([]models.Ad, error) {
	var list modelAdList
	if err := json.Unmarshal(response, &list); err != nil {
		// модель могла вернуть массив без обёртки
		var plain []models.Ad
		if err2 := json.Unmarshal(response, &plain); err2 != nil {
			return nil, err
		}
		list.Ads = plain
	}
	if len(list.Ads) == 0 {
		return nil, errors.New("model returned no ads")
	}
	for i := range list.Ads {
		list.Ads[i].Platform = platform
	}
	return list.Ads, nil
}

func normalizePlatforms(platforms []string) ([]string, error) {
	seen := make(map[string]struct{}, len(platforms))
	result := make([]string, 0, len(platforms))
	for _, p := range platforms {
		p = strings.ToLower(strings.TrimSpace(p))
		if !models.IsKnownPlatform(p) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPlatform, p)
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		result = append(result, p)
	}
	return result, nil
}

func languageOrDefault(language string) string {
	if language == "" {
		return "English"
	}
	return language
}

func renderTemplate(body string, vars map[string]string) string {
	for name, value := range vars {
		body = strings.ReplaceAll(body, "{{"+name+"}}", value)
	}
	return body
}
