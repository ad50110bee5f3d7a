package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/adpilot/internal/models"
)

// UpsertIntegration сохраняет токены подключённого рекламного кабинета.
// Повторное подключение той же платформы заменяет старые токены.
func (s *Storage) UpsertIntegration(ctx context.Context, in models.Integration) error {
	const op = "storage.UpsertIntegration"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var expiresAt *time.Time
	if in.ExpiresAt != nil {
		expiresAt = in.ExpiresAt
	}

	query := `INSERT INTO user_integrations
			      (user_uid, platform, access_token, refresh_token, expires_at, account_name)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  ON CONFLICT (user_uid, platform) DO UPDATE
			  SET access_token = EXCLUDED.access_token,
			      refresh_token = EXCLUDED.refresh_token,
			      expires_at = EXCLUDED.expires_at,
			      account_name = EXCLUDED.account_name`
	if _, err := s.DB.ExecContext(ctx, query, in.UserUID, in.Platform,
		in.AccessToken, in.RefreshToken, expiresAt, in.AccountName); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListIntegrations возвращает подключённые кабинеты пользователя.
// Токены не включаются в выдачу для клиента (json-теги в модели).
func (s *Storage) ListIntegrations(ctx context.Context, userUID string) ([]*models.Integration, error) {
	const op = "storage.ListIntegrations"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, platform, account_name, created_at
			  FROM user_integrations
			  WHERE user_uid = $1
			  ORDER BY platform`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Integration
	for rows.Next() {
		var item models.Integration
		if err := rows.Scan(&item.ID, &item.UserUID, &item.Platform,
			&item.AccountName, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RemoveIntegration удаляет подключение платформы и возвращает
// количество удалённых строк.
func (s *Storage) RemoveIntegration(ctx context.Context, userUID, platform string) (int, error) {
	const op = "storage.RemoveIntegration"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM user_integrations WHERE user_uid = $1 AND platform = $2`
	res, err := s.DB.ExecContext(ctx, query, userUID, platform)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
