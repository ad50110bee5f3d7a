// Package services содержит работу с командами: приглашения по email
// и управление участниками.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/adpilot/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/adpilot/internal/lib/sl"
	"github.com/magabrotheeeer/adpilot/internal/models"
)

var (
	ErrInvitationExpired  = errors.New("invitation expired")
	ErrInvitationNotFound = errors.New("invitation not found")
)

// Сколько живёт приглашение до подтверждения
const invitationTTL = 7 * 24 * time.Hour

// TeamRepository описывает контракт хранилища команд и приглашений.
type TeamRepository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	CreateInvitation(ctx context.Context, inv models.TeamInvitation) (int64, error)
	GetInvitationByToken(ctx context.Context, token string) (*models.TeamInvitation, error)
	AcceptInvitation(ctx context.Context, invitationID int64, ownerUID, memberUID, role string) error
	ListTeamMembers(ctx context.Context, ownerUID string) ([]*models.TeamMember, error)
	RemoveTeamMember(ctx context.Context, ownerUID, memberUID string) (int, error)
}

// TeamService управляет приглашениями и составом команды.
type TeamService struct {
	log     *slog.Logger
	repo    TeamRepository
	channel *amqp.Channel
}

// NewTeamService создает новый экземпляр TeamService.
// channel может быть nil: тогда письма-приглашения не отправляются.
func NewTeamService(log *slog.Logger, repo TeamRepository, channel *amqp.Channel) *TeamService {
	return &TeamService{
		log:     log,
		repo:    repo,
		channel: channel,
	}
}

// Invite создаёт приглашение и ставит письмо в очередь отправки.
func (s *TeamService) Invite(ctx context.Context, ownerUID, email, role string) (*models.TeamInvitation, error) {
	const op = "services.team.Invite"

	owner, err := s.repo.GetUser(ctx, ownerUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if role == "" {
		role = "member"
	}

	inv := models.TeamInvitation{
		OwnerUID:  ownerUID,
		Email:     email,
		Role:      role,
		Token:     uuid.NewString(),
		Status:    models.InvitationPending,
		ExpiresAt: time.Now().UTC().Add(invitationTTL),
	}
	inv.ID, err = s.repo.CreateInvitation(ctx, inv)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.notifyInvited(inv, owner.Username)
	return &inv, nil
}

// Accept принимает приглашение по токену и добавляет пользователя в команду.
func (s *TeamService) Accept(ctx context.Context, token, memberUID string) error {
	const op = "services.team.Accept"

	inv, err := s.repo.GetInvitationByToken(ctx, token)
	if err != nil {
		return fmt.Errorf("%s: %w", op, ErrInvitationNotFound)
	}
	if inv.Status != models.InvitationPending {
		return fmt.Errorf("%s: %w", op, ErrInvitationNotFound)
	}
	if time.Now().UTC().After(inv.ExpiresAt) {
		return fmt.Errorf("%s: %w", op, ErrInvitationExpired)
	}

	if err := s.repo.AcceptInvitation(ctx, inv.ID, inv.OwnerUID, memberUID, inv.Role); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Members возвращает участников команды владельца.
func (s *TeamService) Members(ctx context.Context, ownerUID string) ([]*models.TeamMember, error) {
	const op = "services.team.Members"

	members, err := s.repo.ListTeamMembers(ctx, ownerUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return members, nil
}

// Remove исключает участника из команды. Возвращает число удалённых записей.
func (s *TeamService) Remove(ctx context.Context, ownerUID, memberUID string) (int, error) {
	const op = "services.team.Remove"

	removed, err := s.repo.RemoveTeamMember(ctx, ownerUID, memberUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return removed, nil
}

// notifyInvited ставит письмо-приглашение в очередь.
// Сбой очереди не откатывает приглашение.
func (s *TeamService) notifyInvited(inv models.TeamInvitation, ownerName string) {
	if s.channel == nil {
		return
	}
	info := models.InvitationInfo{
		Email:     inv.Email,
		OwnerName: ownerName,
		Token:     inv.Token,
		ExpiresAt: inv.ExpiresAt,
	}
	if err := rabbitmq.PublishMessage(s.channel, "notifications", "team.invited", info); err != nil {
		s.log.Error("failed to publish invitation", sl.Err(err))
	}
}
