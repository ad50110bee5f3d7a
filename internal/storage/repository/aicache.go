package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/adpilot/internal/models"
)

// GetCachedResponse возвращает кэшированный ответ генерации по ключу.
// Просроченные записи отфильтровываются условием expiration > now(),
// физически они не удаляются.
func (s *Storage) GetCachedResponse(ctx context.Context, key string) (*models.CacheEntry, bool, error) {
	const op = "storage.GetCachedResponse"
	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT key, response, created_at, expiration
			  FROM openai_cache
			  WHERE key = $1 AND expiration > now()`
	entry := &models.CacheEntry{}
	row := s.DB.QueryRowContext(ctx, query, key)
	if err := row.Scan(&entry.Key, &entry.Response, &entry.CreatedAt, &entry.Expiration); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return entry, true, nil
}

// UpsertCachedResponse сохраняет ответ генерации. Повторная запись по тому же
// ключу заменяет содержимое и продлевает срок жизни.
func (s *Storage) UpsertCachedResponse(ctx context.Context, key string, response json.RawMessage, expiration time.Time) error {
	const op = "storage.UpsertCachedResponse"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO openai_cache (key, response, expiration)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (key) DO UPDATE
			  SET response = EXCLUDED.response,
			      created_at = now(),
			      expiration = EXCLUDED.expiration`
	if _, err := s.DB.ExecContext(ctx, query, key, response, expiration); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetWebsiteAnalysis возвращает кэшированный анализ сайта по нормализованному URL.
func (s *Storage) GetWebsiteAnalysis(ctx context.Context, urlKey string) (*models.WebsiteAnalysis, bool, error) {
	const op = "storage.GetWebsiteAnalysis"
	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT url_key, analysis, created_at, expiration
			  FROM website_analysis_cache
			  WHERE url_key = $1 AND expiration > now()`
	entry := &models.WebsiteAnalysis{}
	row := s.DB.QueryRowContext(ctx, query, urlKey)
	if err := row.Scan(&entry.URLKey, &entry.Analysis, &entry.CreatedAt, &entry.Expiration); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return entry, true, nil
}

// UpsertWebsiteAnalysis сохраняет результат анализа сайта.
func (s *Storage) UpsertWebsiteAnalysis(ctx context.Context, urlKey string, analysis json.RawMessage, expiration time.Time) error {
	const op = "storage.UpsertWebsiteAnalysis"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO website_analysis_cache (url_key, analysis, expiration)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (url_key) DO UPDATE
			  SET analysis = EXCLUDED.analysis,
			      created_at = now(),
			      expiration = EXCLUDED.expiration`
	if _, err := s.DB.ExecContext(ctx, query, urlKey, analysis, expiration); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
