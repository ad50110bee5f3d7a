package services_test

import (
	"context"
	"testing"

	"github.com/magabrotheeeer/adpilot/internal/models"
	services "github.com/magabrotheeeer/adpilot/internal/services/credits"
	"github.com/magabrotheeeer/adpilot/internal/storage/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Мок для CreditsRepository
type CreditsRepoMock struct {
	mock.Mock
}

func (m *CreditsRepoMock) GetProfile(ctx context.Context, userUID string) (*models.Profile, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *CreditsRepoMock) DeductCredits(ctx context.Context, userUID string, amount int, reason, refID string) error {
	args := m.Called(ctx, userUID, amount, reason, refID)
	return args.Error(0)
}

func (m *CreditsRepoMock) AddCredits(ctx context.Context, userUID string, amount int, reason, refID string) error {
	args := m.Called(ctx, userUID, amount, reason, refID)
	return args.Error(0)
}

func (m *CreditsRepoMock) ClaimFreeCredits(ctx context.Context, userUID string, amount int) error {
	args := m.Called(ctx, userUID, amount)
	return args.Error(0)
}

func (m *CreditsRepoMock) ListLedgerEntries(ctx context.Context, userUID string, limit, offset int) ([]*models.LedgerEntry, error) {
	args := m.Called(ctx, userUID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerEntry), args.Error(1)
}

func TestCreditsService_Deduct(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(r *CreditsRepoMock)
		wantErr    error
	}{
		{
			name: "успешное списание",
			setupMocks: func(r *CreditsRepoMock) {
				r.On("DeductCredits", mock.Anything, "user-uid", 2, "ad_generation", "ref-1").
					Return(nil).Once()
			},
		},
		{
			name: "недостаточно кредитов",
			setupMocks: func(r *CreditsRepoMock) {
				r.On("DeductCredits", mock.Anything, "user-uid", 2, "ad_generation", "ref-1").
					Return(repository.ErrInsufficientCredits).Once()
			},
			wantErr: repository.ErrInsufficientCredits,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(CreditsRepoMock)
			tt.setupMocks(repo)
			svc := services.NewCreditsService(repo, 10)

			err := svc.Deduct(context.Background(), "user-uid", 2, "ad_generation", "ref-1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestCreditsService_CheckBalance(t *testing.T) {
	tests := []struct {
		name     string
		credits  int
		required int
		want     bool
	}{
		{"баланса хватает", 10, 3, true},
		{"баланс ровно по требованию", 3, 3, true},
		{"баланса не хватает", 2, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(CreditsRepoMock)
			repo.On("GetProfile", mock.Anything, "user-uid").
				Return(&models.Profile{UserUID: "user-uid", Credits: tt.credits}, nil).Once()
			svc := services.NewCreditsService(repo, 10)

			got, err := svc.CheckBalance(context.Background(), "user-uid", tt.required)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
			repo.AssertExpectations(t)
		})
	}
}

func TestCreditsService_CheckBalance_UnknownUser(t *testing.T) {
	repo := new(CreditsRepoMock)
	repo.On("GetProfile", mock.Anything, "ghost").
		Return(nil, repository.ErrNotFound).Once()
	svc := services.NewCreditsService(repo, 10)

	_, err := svc.CheckBalance(context.Background(), "ghost", 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreditsService_ClaimFree(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(r *CreditsRepoMock)
		wantErr    error
	}{
		{
			name: "первое получение",
			setupMocks: func(r *CreditsRepoMock) {
				r.On("ClaimFreeCredits", mock.Anything, "user-uid", 10).Return(nil).Once()
			},
		},
		{
			name: "повторное получение",
			setupMocks: func(r *CreditsRepoMock) {
				r.On("ClaimFreeCredits", mock.Anything, "user-uid", 10).
					Return(repository.ErrAlreadyClaimed).Once()
			},
			wantErr: repository.ErrAlreadyClaimed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(CreditsRepoMock)
			tt.setupMocks(repo)
			svc := services.NewCreditsService(repo, 10)

			err := svc.ClaimFree(context.Background(), "user-uid")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestCreditsService_History_Defaults(t *testing.T) {
	repo := new(CreditsRepoMock)
	repo.On("ListLedgerEntries", mock.Anything, "user-uid", 50, 0).
		Return([]*models.LedgerEntry{}, nil).Once()
	svc := services.NewCreditsService(repo, 10)

	// некорректные limit и offset приводятся к дефолтным
	_, err := svc.History(context.Background(), "user-uid", -5, -1)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}
