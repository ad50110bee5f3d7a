// Package services содержит кэш ответов модели с защитой от
// одновременной генерации одного и того же ключа.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/magabrotheeeer/adpilot/internal/lib/cachekey"
	"github.com/magabrotheeeer/adpilot/internal/metrics"
	"github.com/magabrotheeeer/adpilot/internal/models"
)

// CacheRepository описывает контракт хранилища кэшированных ответов.
type CacheRepository interface {
	GetCachedResponse(ctx context.Context, key string) (*models.CacheEntry, bool, error)
	UpsertCachedResponse(ctx context.Context, key string, response json.RawMessage, expiration time.Time) error
}

// Result — результат обращения к кэшу.
type Result struct {
	Response  json.RawMessage
	FromCache bool
}

// AICacheService отдаёт ответ из кэша или вызывает генератор.
// Одновременные запросы с одинаковым ключом сворачиваются в один вызов
// генератора, остальные ждут его результат.
type AICacheService struct {
	repo  CacheRepository
	ttl   time.Duration
	group singleflight.Group
}

// NewAICacheService создает новый экземпляр AICacheService.
func NewAICacheService(repo CacheRepository, ttl time.Duration) *AICacheService {
	return &AICacheService{
		repo: repo,
		ttl:  ttl,
	}
}

// Key строит ключ кэша из параметров запроса.
// Порядок полей в params не влияет на ключ.
func (s *AICacheService) Key(params any) (string, error) {
	return cachekey.Key(params)
}

// GetOrCreate возвращает закэшированный ответ по ключу или вызывает create,
// кладёт его результат в кэш и возвращает его. Ошибка записи в кэш не
// считается фатальной: свежий ответ отдаётся в любом случае.
func (s *AICacheService) GetOrCreate(ctx context.Context, key string, create func(ctx context.Context) (json.RawMessage, error)) (*Result, error) {
	const op = "services.aicache.GetOrCreate"

	entry, found, err := s.repo.GetCachedResponse(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if found {
		metrics.CacheRequests.WithLabelValues("openai", "hit").Inc()
		return &Result{Response: entry.Response, FromCache: true}, nil
	}
	metrics.CacheRequests.WithLabelValues("openai", "miss").Inc()

	v, err, _ := s.group.Do(key, func() (any, error) {
		// пока ждали очередь, ответ мог появиться
		entry, found, err := s.repo.GetCachedResponse(ctx, key)
		if err == nil && found {
			return entry.Response, nil
		}

		response, err := create(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.repo.UpsertCachedResponse(ctx, key, response, time.Now().UTC().Add(s.ttl)); err != nil {
			return response, nil
		}
		return response, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Result{Response: v.(json.RawMessage), FromCache: false}, nil
}
