package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/adpilot/internal/models"
)

// GetProfile возвращает профиль пользователя с текущим балансом.
func (s *Storage) GetProfile(ctx context.Context, userUID string) (*models.Profile, error) {
	const op = "storage.GetProfile"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_uid, credits, has_paid, received_free_credits,
			      COALESCE(customer_id, '')
			  FROM profiles
			  WHERE user_uid = $1`
	p := &models.Profile{}
	row := s.DB.QueryRowContext(ctx, query, userUID)
	if err := row.Scan(&p.UserUID, &p.Credits, &p.HasPaid,
		&p.ReceivedFreeCredits, &p.CustomerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// DeductCredits списывает amount кредитов и пишет запись журнала в одной
// транзакции. Условие credits >= amount проверяется самим UPDATE, поэтому
// параллельные списания не могут увести баланс в минус: проигравшая
// транзакция получает ноль затронутых строк и ErrInsufficientCredits,
// запись в журнал при этом не создаётся.
func (s *Storage) DeductCredits(ctx context.Context, userUID string, amount int, reason, refID string) error {
	const op = "storage.DeductCredits"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}
	if amount <= 0 {
		return fmt.Errorf("%s: amount must be positive", op)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `UPDATE profiles
			  SET credits = credits - $1
			  WHERE user_uid = $2 AND credits >= $1`
	res, err := tx.ExecContext(ctx, query, amount, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		// ноль строк может значить и отсутствие профиля
		var exists bool
		row := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM profiles WHERE user_uid = $1)`, userUID)
		if err := row.Scan(&exists); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if !exists {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, ErrInsufficientCredits)
	}

	query = `INSERT INTO credit_ledger (user_uid, change, reason, ref_id)
			 VALUES ($1, $2, $3, $4)`
	if _, err := tx.ExecContext(ctx, query, userUID, -amount, reason, refID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// AddCredits начисляет amount кредитов и пишет запись журнала
// в одной транзакции.
func (s *Storage) AddCredits(ctx context.Context, userUID string, amount int, reason, refID string) error {
	const op = "storage.AddCredits"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}
	if amount <= 0 {
		return fmt.Errorf("%s: amount must be positive", op)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `UPDATE profiles
			  SET credits = credits + $1
			  WHERE user_uid = $2`
	res, err := tx.ExecContext(ctx, query, amount, userUID)
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

	query = `INSERT INTO credit_ledger (user_uid, change, reason, ref_id)
			 VALUES ($1, $2, $3, $4)`
	if _, err := tx.ExecContext(ctx, query, userUID, amount, reason, refID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ClaimFreeCredits одноразово начисляет бесплатные кредиты. Флаг
// received_free_credits переключается тем же UPDATE, что и баланс,
// поэтому повторное начисление невозможно даже при параллельных запросах.
func (s *Storage) ClaimFreeCredits(ctx context.Context, userUID string, amount int) error {
	const op = "storage.ClaimFreeCredits"
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

	query := `UPDATE profiles
			  SET credits = credits + $1, received_free_credits = true
			  WHERE user_uid = $2 AND received_free_credits = false`
	res, err := tx.ExecContext(ctx, query, amount, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrAlreadyClaimed)
	}

	query = `INSERT INTO credit_ledger (user_uid, change, reason, ref_id)
			 VALUES ($1, $2, $3, $4)`
	if _, err := tx.ExecContext(ctx, query, userUID, amount, "free_credits", ""); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListLedgerEntries возвращает записи журнала кредитов пользователя
// от новых к старым с пагинацией.
func (s *Storage) ListLedgerEntries(ctx context.Context, userUID string, limit, offset int) ([]*models.LedgerEntry, error) {
	const op = "storage.ListLedgerEntries"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, change, reason, COALESCE(ref_id, ''), created_at
			  FROM credit_ledger
			  WHERE user_uid = $1
			  ORDER BY id DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.LedgerEntry
	for rows.Next() {
		var item models.LedgerEntry
		if err := rows.Scan(&item.ID, &item.UserUID, &item.Change,
			&item.Reason, &item.RefID, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// SetHasPaid отмечает профиль оплаченным и сохраняет идентификатор
// клиента у платёжного провайдера.
func (s *Storage) SetHasPaid(ctx context.Context, userUID, customerID string) error {
	const op = "storage.SetHasPaid"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE profiles
			  SET has_paid = true, customer_id = $1
			  WHERE user_uid = $2`
	res, err := s.DB.ExecContext(ctx, query, customerID, userUID)
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

// SetHasPaidByCustomer переключает признак оплаты по идентификатору
// клиента у платёжного провайдера.
func (s *Storage) SetHasPaidByCustomer(ctx context.Context, customerID string, hasPaid bool) error {
	const op = "storage.SetHasPaidByCustomer"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE profiles
			  SET has_paid = $1
			  WHERE customer_id = $2`
	res, err := s.DB.ExecContext(ctx, query, hasPaid, customerID)
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

// InsertBillingEvent регистрирует событие платёжного провайдера.
// Возвращает false, если событие с таким ID уже было обработано.
func (s *Storage) InsertBillingEvent(ctx context.Context, eventID, eventType string) (bool, error) {
	const op = "storage.InsertBillingEvent"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO billing_events (event_id, event_type)
			  VALUES ($1, $2)
			  ON CONFLICT (event_id) DO NOTHING`
	res, err := s.DB.ExecContext(ctx, query, eventID, eventType)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected == 1, nil
}

// RemoveBillingEvent удаляет запись о событии, чтобы повторная доставка
// от провайдера могла обработать его заново.
func (s *Storage) RemoveBillingEvent(ctx context.Context, eventID string) error {
	const op = "storage.RemoveBillingEvent"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM billing_events WHERE event_id = $1`
	if _, err := s.DB.ExecContext(ctx, query, eventID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
