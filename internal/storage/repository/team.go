package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/adpilot/internal/models"
)

// CreateInvitation сохраняет приглашение в команду и возвращает его ID.
func (s *Storage) CreateInvitation(ctx context.Context, inv models.TeamInvitation) (int64, error) {
	const op = "storage.CreateInvitation"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO team_invitations (owner_uid, email, role, token, status, expires_at)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var newID int64
	err := s.DB.QueryRowContext(ctx, query,
		inv.OwnerUID, inv.Email, inv.Role, inv.Token, inv.Status, inv.ExpiresAt).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetInvitationByToken возвращает приглашение по одноразовому токену.
func (s *Storage) GetInvitationByToken(ctx context.Context, token string) (*models.TeamInvitation, error) {
	const op = "storage.GetInvitationByToken"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, owner_uid, email, role, token, status, created_at, expires_at
			  FROM team_invitations
			  WHERE token = $1`
	inv := &models.TeamInvitation{}
	row := s.DB.QueryRowContext(ctx, query, token)
	if err := row.Scan(&inv.ID, &inv.OwnerUID, &inv.Email, &inv.Role,
		&inv.Token, &inv.Status, &inv.CreatedAt, &inv.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return inv, nil
}

// AcceptInvitation отмечает приглашение принятым и создает запись участника
// команды в одной транзакции.
func (s *Storage) AcceptInvitation(ctx context.Context, invitationID int64, ownerUID, memberUID, role string) error {
	const op = "storage.AcceptInvitation"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `UPDATE team_invitations
			  SET status = 'accepted'
			  WHERE id = $1 AND status = 'pending'`
	res, err := tx.ExecContext(ctx, query, invitationID)
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

	query = `INSERT INTO team_members (owner_uid, member_uid, role)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (owner_uid, member_uid) DO NOTHING`
	if _, err := tx.ExecContext(ctx, query, ownerUID, memberUID, role); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListTeamMembers возвращает участников команды владельца.
func (s *Storage) ListTeamMembers(ctx context.Context, ownerUID string) ([]*models.TeamMember, error) {
	const op = "storage.ListTeamMembers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, owner_uid, member_uid, role, created_at
			  FROM team_members
			  WHERE owner_uid = $1
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, ownerUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.TeamMember
	for rows.Next() {
		var item models.TeamMember
		if err := rows.Scan(&item.ID, &item.OwnerUID, &item.MemberUID,
			&item.Role, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RemoveTeamMember удаляет участника из команды владельца и возвращает
// количество удалённых строк.
func (s *Storage) RemoveTeamMember(ctx context.Context, ownerUID, memberUID string) (int, error) {
	const op = "storage.RemoveTeamMember"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM team_members WHERE owner_uid = $1 AND member_uid = $2`
	res, err := s.DB.ExecContext(ctx, query, ownerUID, memberUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
