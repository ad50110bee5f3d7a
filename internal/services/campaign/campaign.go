// Package services содержит мастер создания кампании: линейный проход
// по шагам с накоплением данных и сохранением черновика между визитами.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/adpilot/internal/models"
)

var ErrPlatformsRequired = errors.New("at least one platform must be selected")

// DraftRepository описывает контракт хранилища черновиков кампаний.
// У пользователя может быть не больше одного черновика.
type DraftRepository interface {
	GetDraft(ctx context.Context, userUID string) (*models.CampaignDraft, error)
	CreateDraft(ctx context.Context, userUID string) (*models.CampaignDraft, error)
	UpdateDraft(ctx context.Context, userUID string, step int, data json.RawMessage) error
	RemoveDraft(ctx context.Context, userUID string) (int, error)
}

// CampaignService управляет прохождением мастера кампании.
type CampaignService struct {
	repo DraftRepository
}

// NewCampaignService создает новый экземпляр CampaignService.
func NewCampaignService(repo DraftRepository) *CampaignService {
	return &CampaignService{repo: repo}
}

// Start возвращает существующий черновик или создаёт новый на первом шаге.
func (s *CampaignService) Start(ctx context.Context, userUID string) (*models.CampaignDraft, error) {
	const op = "services.campaign.Start"

	draft, err := s.repo.CreateDraft(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return draft, nil
}

// Get возвращает текущий черновик пользователя.
func (s *CampaignService) Get(ctx context.Context, userUID string) (*models.CampaignDraft, error) {
	const op = "services.campaign.Get"

	draft, err := s.repo.GetDraft(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return draft, nil
}

// Next сохраняет данные текущего шага и продвигает мастер вперёд.
// Переход с шага выбора платформ требует хотя бы одну платформу.
// На последнем шаге номер не растёт: мастер остаётся на сводке.
func (s *CampaignService) Next(ctx context.Context, userUID string, stepData json.RawMessage) (*models.CampaignDraft, error) {
	const op = "services.campaign.Next"

	draft, err := s.repo.GetDraft(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	merged, err := mergeStepData(draft.Data, stepData)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if draft.Step == models.StepPlatformSelection {
		if err := requirePlatforms(merged); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	next := draft.Step + 1
	if next > models.StepSummary {
		next = models.StepSummary
	}

	if err := s.repo.UpdateDraft(ctx, userUID, next, merged); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	draft.Step = next
	draft.Data = merged
	return draft, nil
}

// Back возвращает мастер на предыдущий шаг, данные шагов сохраняются.
// С первого шага назад уйти нельзя: номер остаётся первым.
func (s *CampaignService) Back(ctx context.Context, userUID string) (*models.CampaignDraft, error) {
	const op = "services.campaign.Back"

	draft, err := s.repo.GetDraft(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	prev := draft.Step - 1
	if prev < models.StepWebsiteAnalysis {
		prev = models.StepWebsiteAnalysis
	}

	if err := s.repo.UpdateDraft(ctx, userUID, prev, draft.Data); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	draft.Step = prev
	return draft, nil
}

// Discard удаляет черновик. Возвращает число удалённых записей.
func (s *CampaignService) Discard(ctx context.Context, userUID string) (int, error) {
	const op = "services.campaign.Discard"

	removed, err := s.repo.RemoveDraft(ctx, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return removed, nil
}

// mergeStepData накладывает данные шага поверх накопленных данных черновика.
func mergeStepData(existing, incoming json.RawMessage) (json.RawMessage, error) {
	if len(incoming) == 0 {
		return existing, nil
	}

	merged := make(map[string]json.RawMessage)
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &merged); err != nil {
			return nil, err
		}
	}
	var update map[string]json.RawMessage
	if err := json.Unmarshal(incoming, &update); err != nil {
		return nil, err
	}
	for k, v := range update {
		merged[k] = v
	}
	return json.Marshal(merged)
}

func requirePlatforms(data json.RawMessage) error {
	var payload struct {
		Platforms []string `json:"platforms"`
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
	}
	if len(payload.Platforms) == 0 {
		return ErrPlatformsRequired
	}
	for _, p := range payload.Platforms {
		if !models.IsKnownPlatform(p) {
			return fmt.Errorf("unknown platform: %s", p)
		}
	}
	return nil
}
