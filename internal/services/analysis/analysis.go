// Package services содержит анализ сайта: загрузка страницы, извлечение
// текста и разбор моделью с кэшированием по нормализованному URL.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/magabrotheeeer/adpilot/internal/lib/sl"
	"github.com/magabrotheeeer/adpilot/internal/lib/urlnorm"
	"github.com/magabrotheeeer/adpilot/internal/metrics"
	"github.com/magabrotheeeer/adpilot/internal/models"
)

// Размер страницы ограничен, чтобы не скармливать модели мегабайты разметки
const maxPageBytes = 512 * 1024

// CacheRepository описывает контракт хранилища результатов анализа.
type CacheRepository interface {
	GetWebsiteAnalysis(ctx context.Context, urlKey string) (*models.WebsiteAnalysis, bool, error)
	UpsertWebsiteAnalysis(ctx context.Context, urlKey string, analysis json.RawMessage, expiration time.Time) error
}

// Completer описывает контракт клиента языковой модели.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, jsonMode bool) (string, error)
}

// AnalysisService загружает сайт и извлекает из него сведения о продукте.
type AnalysisService struct {
	log        *slog.Logger
	repo       CacheRepository
	completer  Completer
	httpClient *http.Client
	ttl        time.Duration
}

// NewAnalysisService создает новый экземпляр AnalysisService.
func NewAnalysisService(log *slog.Logger, repo CacheRepository, completer Completer, ttl time.Duration) *AnalysisService {
	return &AnalysisService{
		log:       log,
		repo:      repo,
		completer: completer,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		ttl: ttl,
	}
}

// SiteAnalysis — результат анализа сайта моделью.
type SiteAnalysis struct {
	ProductName   string   `json:"product_name"`
	Description   string   `json:"description"`
	Audience      string   `json:"audience"`
	SellingPoints []string `json:"selling_points"`
	Tone          string   `json:"tone"`
}

// AnalyzeResult — анализ вместе с признаком попадания в кэш.
type AnalyzeResult struct {
	URL       string          `json:"url"`
	Analysis  json.RawMessage `json:"analysis"`
	FromCache bool            `json:"from_cache"`
}

// Analyze возвращает анализ сайта. Результат кэшируется по
// нормализованному URL: варианты написания одного адреса делят запись.
func (s *AnalysisService) Analyze(ctx context.Context, rawURL string) (*AnalyzeResult, error) {
	const op = "services.analysis.Analyze"

	urlKey, err := urlnorm.Normalize(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cached, found, err := s.repo.GetWebsiteAnalysis(ctx, urlKey)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if found {
		metrics.CacheRequests.WithLabelValues("website", "hit").Inc()
		return &AnalyzeResult{URL: urlKey, Analysis: cached.Analysis, FromCache: true}, nil
	}
	metrics.CacheRequests.WithLabelValues("website", "miss").Inc()

	// грузим исходный адрес: ключ кэша без схемы и для запроса не годится
	fetchURL := strings.TrimSpace(rawURL)
	if !strings.Contains(fetchURL, "://") {
		fetchURL = "https://" + fetchURL
	}
	pageText, err := s.fetchPageText(ctx, fetchURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	content, err := s.completer.Complete(ctx,
		"You analyze marketing websites. Respond with a JSON object with fields product_name, description, audience, selling_points, tone.",
		pageText, true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	analysis := json.RawMessage(content)
	if !json.Valid(analysis) {
		return nil, fmt.Errorf("%s: model returned invalid json", op)
	}

	if err := s.repo.UpsertWebsiteAnalysis(ctx, urlKey, analysis, time.Now().UTC().Add(s.ttl)); err != nil {
		// свежий анализ отдаём даже без записи в кэш
		s.log.Error("failed to cache website analysis", sl.Err(err))
	}
	return &AnalyzeResult{URL: urlKey, Analysis: analysis, FromCache: false}, nil
}

func (s *AnalysisService) fetchPageText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "adpilot-analyzer/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d fetching page", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", err
	}
	return extractText(string(body)), nil
}

var (
	scriptRe = regexp.MustCompile(`(?is)<(script|style|noscript)[^>]*>.*?</(script|style|noscript)>`)
	tagRe    = regexp.MustCompile(`(?s)<[^>]*>`)
	spaceRe  = regexp.MustCompile(`\s+`)
)

// extractText грубо снимает разметку, оставляя видимый текст страницы
func extractText(html string) string {
	text := scriptRe.ReplaceAllString(html, " ")
	text = tagRe.ReplaceAllString(text, " ")
	text = spaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
