// Package services содержит логику бизнес-уровня для кредитного баланса
// и журнала операций с кредитами.
package services

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/adpilot/internal/metrics"
	"github.com/magabrotheeeer/adpilot/internal/models"
)

// CreditsRepository описывает контракт хранилища баланса и журнала кредитов.
// Списание и начисление меняют баланс и журнал в одной транзакции.
type CreditsRepository interface {
	GetProfile(ctx context.Context, userUID string) (*models.Profile, error)
	DeductCredits(ctx context.Context, userUID string, amount int, reason, refID string) error
	AddCredits(ctx context.Context, userUID string, amount int, reason, refID string) error
	ClaimFreeCredits(ctx context.Context, userUID string, amount int) error
	ListLedgerEntries(ctx context.Context, userUID string, limit, offset int) ([]*models.LedgerEntry, error)
}

// CreditsService управляет балансом кредитов пользователей.
type CreditsService struct {
	repo        CreditsRepository
	freeCredits int
}

// NewCreditsService создает новый экземпляр CreditsService.
func NewCreditsService(repo CreditsRepository, freeCredits int) *CreditsService {
	return &CreditsService{
		repo:        repo,
		freeCredits: freeCredits,
	}
}

// GetBalance возвращает профиль пользователя с текущим балансом.
func (s *CreditsService) GetBalance(ctx context.Context, userUID string) (*models.Profile, error) {
	const op = "services.credits.GetBalance"

	profile, err := s.repo.GetProfile(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return profile, nil
}

// CheckBalance сообщает, хватает ли пользователю required кредитов.
// Сама по себе проверка ничего не резервирует: защита от гонок лежит
// на условном списании в Deduct.
func (s *CreditsService) CheckBalance(ctx context.Context, userUID string, required int) (bool, error) {
	const op = "services.credits.CheckBalance"

	profile, err := s.repo.GetProfile(ctx, userUID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return profile.Credits >= required, nil
}

// Deduct списывает amount кредитов. Возвращает ошибку хранилища
// ErrInsufficientCredits, если баланса не хватает.
func (s *CreditsService) Deduct(ctx context.Context, userUID string, amount int, reason, refID string) error {
	const op = "services.credits.Deduct"

	if err := s.repo.DeductCredits(ctx, userUID, amount, reason, refID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	metrics.CreditsSpent.Add(float64(amount))
	return nil
}

// Add начисляет amount кредитов с записью в журнал.
func (s *CreditsService) Add(ctx context.Context, userUID string, amount int, reason, refID string) error {
	const op = "services.credits.Add"

	if err := s.repo.AddCredits(ctx, userUID, amount, reason, refID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ClaimFree начисляет стартовые кредиты. Повторный вызов возвращает
// ошибку хранилища ErrAlreadyClaimed.
func (s *CreditsService) ClaimFree(ctx context.Context, userUID string) error {
	const op = "services.credits.ClaimFree"

	if err := s.repo.ClaimFreeCredits(ctx, userUID, s.freeCredits); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// History возвращает страницу журнала операций, новые записи первыми.
func (s *CreditsService) History(ctx context.Context, userUID string, limit, offset int) ([]*models.LedgerEntry, error) {
	const op = "services.credits.History"

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	entries, err := s.repo.ListLedgerEntries(ctx, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entries, nil
}
