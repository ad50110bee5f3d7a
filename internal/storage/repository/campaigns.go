package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/adpilot/internal/models"
)

// GetDraft возвращает активный черновик кампании пользователя.
func (s *Storage) GetDraft(ctx context.Context, userUID string) (*models.CampaignDraft, error) {
	const op = "storage.GetDraft"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, step, data, created_at, updated_at
			  FROM campaign_drafts
			  WHERE user_uid = $1`
	draft := &models.CampaignDraft{}
	row := s.DB.QueryRowContext(ctx, query, userUID)
	if err := row.Scan(&draft.ID, &draft.UserUID, &draft.Step,
		&draft.Data, &draft.CreatedAt, &draft.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return draft, nil
}

// CreateDraft создает черновик кампании на первом шаге.
// У пользователя может быть только один активный черновик.
func (s *Storage) CreateDraft(ctx context.Context, userUID string) (*models.CampaignDraft, error) {
	const op = "storage.CreateDraft"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO campaign_drafts (user_uid, step, data)
			  VALUES ($1, $2, '{}'::jsonb)
			  ON CONFLICT (user_uid) DO UPDATE
			  SET step = campaign_drafts.step
			  RETURNING id, user_uid, step, data, created_at, updated_at`
	draft := &models.CampaignDraft{}
	row := s.DB.QueryRowContext(ctx, query, userUID, models.StepWebsiteAnalysis)
	if err := row.Scan(&draft.ID, &draft.UserUID, &draft.Step,
		&draft.Data, &draft.CreatedAt, &draft.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return draft, nil
}

// UpdateDraft сохраняет номер шага и накопленные данные черновика.
func (s *Storage) UpdateDraft(ctx context.Context, userUID string, step int, data json.RawMessage) error {
	const op = "storage.UpdateDraft"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE campaign_drafts
			  SET step = $1, data = $2, updated_at = now()
			  WHERE user_uid = $3`
	res, err := s.DB.ExecContext(ctx, query, step, data, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// RemoveDraft удаляет черновик после публикации кампании.
func (s *Storage) RemoveDraft(ctx context.Context, userUID string) (int, error) {
	const op = "storage.RemoveDraft"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM campaign_drafts WHERE user_uid = $1`
	res, err := s.DB.ExecContext(ctx, query, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
