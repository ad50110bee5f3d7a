// Package services содержит управление шаблонами промптов генерации.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/adpilot/internal/models"
)

var ErrUnknownPlatform = errors.New("unknown platform")

// TemplatesRepository описывает контракт хранилища шаблонов.
type TemplatesRepository interface {
	ListTemplates(ctx context.Context, userUID string) ([]*models.PromptTemplate, error)
	CreateTemplate(ctx context.Context, tpl models.PromptTemplate) (int64, error)

	// RemoveTemplate удаляет только шаблоны самого пользователя,
	// встроенные шаблоны удалить нельзя.
	RemoveTemplate(ctx context.Context, id int64, userUID string) (int, error)
}

// TemplatesService управляет встроенными и пользовательскими шаблонами.
type TemplatesService struct {
	repo TemplatesRepository
}

// NewTemplatesService создает новый экземпляр TemplatesService.
func NewTemplatesService(repo TemplatesRepository) *TemplatesService {
	return &TemplatesService{repo: repo}
}

// List возвращает встроенные шаблоны и шаблоны пользователя.
func (s *TemplatesService) List(ctx context.Context, userUID string) ([]*models.PromptTemplate, error) {
	const op = "services.templates.List"

	templates, err := s.repo.ListTemplates(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return templates, nil
}

// Create сохраняет пользовательский шаблон для платформы.
func (s *TemplatesService) Create(ctx context.Context, userUID string, dummy models.DummyPromptTemplate) (int64, error) {
	const op = "services.templates.Create"

	if !models.IsKnownPlatform(dummy.Platform) {
		return 0, fmt.Errorf("%s: %w: %s", op, ErrUnknownPlatform, dummy.Platform)
	}

	id, err := s.repo.CreateTemplate(ctx, models.PromptTemplate{
		UserUID:  userUID,
		Name:     dummy.Name,
		Platform: dummy.Platform,
		Body:     dummy.Body,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// Remove удаляет шаблон пользователя. Возвращает число удалённых записей.
func (s *TemplatesService) Remove(ctx context.Context, id int64, userUID string) (int, error) {
	const op = "services.templates.Remove"

	removed, err := s.repo.RemoveTemplate(ctx, id, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return removed, nil
}
