package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/adpilot/internal/models"
)

// ListTemplates возвращает встроенные шаблоны и шаблоны пользователя.
func (s *Storage) ListTemplates(ctx context.Context, userUID string) ([]*models.PromptTemplate, error) {
	const op = "storage.ListTemplates"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, COALESCE(user_uid, ''), name, platform, body, user_uid IS NULL, created_at
			  FROM prompt_templates
			  WHERE user_uid IS NULL OR user_uid = $1
			  ORDER BY user_uid IS NULL DESC, id`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.PromptTemplate
	for rows.Next() {
		var item models.PromptTemplate
		if err := rows.Scan(&item.ID, &item.UserUID, &item.Name, &item.Platform,
			&item.Body, &item.Builtin, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CreateTemplate сохраняет пользовательский шаблон и возвращает его ID.
func (s *Storage) CreateTemplate(ctx context.Context, tpl models.PromptTemplate) (int64, error) {
	const op = "storage.CreateTemplate"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO prompt_templates (user_uid, name, platform, body)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID int64
	if err := s.DB.QueryRowContext(ctx, query,
		tpl.UserUID, tpl.Name, tpl.Platform, tpl.Body).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// RemoveTemplate удаляет шаблон пользователя. Встроенные шаблоны
// (user_uid IS NULL) удалить нельзя.
func (s *Storage) RemoveTemplate(ctx context.Context, id int64, userUID string) (int, error) {
	const op = "storage.RemoveTemplate"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM prompt_templates WHERE id = $1 AND user_uid = $2`
	res, err := s.DB.ExecContext(ctx, query, id, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// GetTemplateForPlatform возвращает шаблон для платформы: сначала
// пользовательский, затем встроенный.
func (s *Storage) GetTemplateForPlatform(ctx context.Context, userUID, platform string) (*models.PromptTemplate, error) {
	const op = "storage.GetTemplateForPlatform"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, COALESCE(user_uid, ''), name, platform, body, user_uid IS NULL, created_at
			  FROM prompt_templates
			  WHERE platform = $1 AND (user_uid = $2 OR user_uid IS NULL)
			  ORDER BY user_uid IS NULL
			  LIMIT 1`
	tpl := &models.PromptTemplate{}
	row := s.DB.QueryRowContext(ctx, query, platform, userUID)
	if err := row.Scan(&tpl.ID, &tpl.UserUID, &tpl.Name, &tpl.Platform,
		&tpl.Body, &tpl.Builtin, &tpl.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tpl, nil
}
