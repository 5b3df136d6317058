/**
 * @description
 * This package is the budget ledger: the single writer of club budgets. It
 * exposes one primitive, the atomic movement of a monetary amount from one
 * club's budget to another's. Both mutations become visible together or not
 * at all.
 *
 * Key properties:
 * - Club rows are locked FOR UPDATE in ascending club-id order, so two
 *   concurrent transfers touching the same pair of clubs in opposite
 *   directions cannot deadlock.
 * - A debit exceeding the source budget fails with InsufficientFundsError
 *   and leaves both balances untouched; budgets can never go negative.
 * - A zero amount is a legal no-op that still counts as success.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5: Transactions and row locking.
 * - github.com/shopspring/decimal: Monetary math.
 * - internal/domain: Club model and typed errors.
 */

package ledger

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/transfersystem/transfer-service/internal/domain"
)

// Ledger moves funds between club budgets. Implementations must serialize
// concurrent transfers touching the same club.
type Ledger interface {
	// Transfer debits amount from fromClubID and credits it to toClubID as a
	// standalone atomic operation.
	Transfer(ctx context.Context, fromClubID, toClubID uuid.UUID, amount decimal.Decimal) error

	// TransferTx performs the same movement inside a caller-owned database
	// transaction, so the workflow engine can commit the budget movement and
	// the transfer status change as one unit.
	TransferTx(ctx context.Context, tx pgx.Tx, fromClubID, toClubID uuid.UUID, amount decimal.Decimal) error
}

// PostgresLedger is the pgx-backed Ledger implementation.
type PostgresLedger struct {
	db *pgxpool.Pool
}

// NewPostgresLedger creates a new PostgresLedger instance.
func NewPostgresLedger(db *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{db: db}
}

// move validates and applies the balance movement to a pair of in-memory club
// records. It is the arithmetic core shared by TransferTx and the tests: the
// source is debited, the destination credited, and the sum of the two budgets
// is conserved.
func move(from, to *domain.Club, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return &domain.ValidationError{Field: "amount", Reason: "ledger transfer amount must not be negative"}
	}
	if amount.IsZero() {
		return nil
	}
	if from.Budget.LessThan(amount) {
		return &domain.InsufficientFundsError{
			ClubID:    from.ID.String(),
			Required:  amount,
			Available: from.Budget,
		}
	}
	from.Budget = from.Budget.Sub(amount)
	to.Budget = to.Budget.Add(amount)
	return nil
}

// Transfer implements Ledger.
func (l *PostgresLedger) Transfer(ctx context.Context, fromClubID, toClubID uuid.UUID, amount decimal.Decimal) error {
	tx, err := l.db.Begin(ctx)
	if err != nil {
		return &domain.TransientError{Op: "ledger transfer begin", Err: err}
	}
	defer tx.Rollback(ctx)

	if err := l.TransferTx(ctx, tx, fromClubID, toClubID, amount); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return &domain.TransientError{Op: "ledger transfer commit", Err: err}
	}
	return nil
}

// TransferTx implements Ledger.
func (l *PostgresLedger) TransferTx(ctx context.Context, tx pgx.Tx, fromClubID, toClubID uuid.UUID, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return &domain.ValidationError{Field: "amount", Reason: "ledger transfer amount must not be negative"}
	}
	if fromClubID == toClubID {
		return &domain.ValidationError{Field: "to_club_id", Reason: "ledger transfer requires two distinct clubs"}
	}

	// Lock both club rows in ascending id order regardless of transfer
	// direction; every concurrent transfer acquires the same total order.
	first, second := fromClubID, toClubID
	if bytes.Compare(second[:], first[:]) < 0 {
		first, second = second, first
	}

	clubs := make(map[uuid.UUID]*domain.Club, 2)
	for _, id := range []uuid.UUID{first, second} {
		club, err := lockClub(ctx, tx, id)
		if err != nil {
			return err
		}
		clubs[id] = club
	}

	from, to := clubs[fromClubID], clubs[toClubID]
	if err := move(from, to, amount); err != nil {
		return err
	}
	if amount.IsZero() {
		return nil
	}

	for _, club := range []*domain.Club{from, to} {
		if _, err := tx.Exec(ctx, `UPDATE clubs SET budget = $2 WHERE id = $1`, club.ID, club.Budget); err != nil {
			return fmt.Errorf("failed to update budget for club %s: %w", club.ID, err)
		}
	}
	return nil
}

func lockClub(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Club, error) {
	var club domain.Club
	err := tx.QueryRow(ctx, `SELECT id, name, budget FROM clubs WHERE id = $1 FOR UPDATE`, id).
		Scan(&club.ID, &club.Name, &club.Budget)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, &domain.NotFoundError{Resource: "club", ID: id.String()}
		}
		return nil, fmt.Errorf("failed to lock club %s: %w", id, err)
	}
	return &club, nil
}
