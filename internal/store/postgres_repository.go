/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository`
 * interface. It contains all the SQL for the transfers, players and clubs
 * tables. Clause sets are stored as a JSONB column on the transfer row so
 * one transfer save is always a single-row write.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - github.com/shopspring/decimal: NUMERIC column handling.
 * - internal/domain: Domain models and typed errors.
 */

package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/transfersystem/transfer-service/internal/domain"
)

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// WithTx runs fn inside a transaction, committing on nil and rolling back otherwise.
func (r *PostgresRepository) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return &domain.TransientError{Op: "begin transaction", Err: err}
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return &domain.TransientError{Op: "commit transaction", Err: err}
	}
	return nil
}

const transferColumns = `id, player_id, from_club_id, to_club_id, status, previous_status,
	clauses, computed_fee, initiation_timestamp, last_transition_timestamp`

// CreateTransfer inserts a new transfer row.
func (r *PostgresRepository) CreateTransfer(ctx context.Context, transfer *domain.Transfer) error {
	clausesJSON, err := json.Marshal(transfer.Clauses)
	if err != nil {
		return fmt.Errorf("failed to encode clauses: %w", err)
	}
	query := `
		INSERT INTO transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.db.Exec(ctx, query,
		transfer.ID, transfer.PlayerID, transfer.FromClubID, transfer.ToClubID,
		string(transfer.Status), statusPtrToText(transfer.PreviousStatus),
		clausesJSON, feeToNull(transfer.ComputedFee),
		transfer.InitiationTimestamp, transfer.LastTransitionTimestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transfer: %w", err)
	}
	return nil
}

// FindTransferByID retrieves a transfer by id.
func (r *PostgresRepository) FindTransferByID(ctx context.Context, id uuid.UUID) (*domain.Transfer, error) {
	row := r.db.QueryRow(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1`, id)
	return scanTransfer(row, id)
}

// FindTransferByIDForUpdate retrieves a transfer by id and locks its row for
// the remainder of the enclosing transaction. Concurrent workflow actions on
// the same transfer serialize here.
func (r *PostgresRepository) FindTransferByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Transfer, error) {
	row := tx.QueryRow(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1 FOR UPDATE`, id)
	return scanTransfer(row, id)
}

// UpdateTransferTx persists the mutable transfer fields inside the caller's transaction.
func (r *PostgresRepository) UpdateTransferTx(ctx context.Context, tx pgx.Tx, transfer *domain.Transfer) error {
	clausesJSON, err := json.Marshal(transfer.Clauses)
	if err != nil {
		return fmt.Errorf("failed to encode clauses: %w", err)
	}
	query := `
		UPDATE transfers
		SET status = $2,
		    previous_status = $3,
		    clauses = $4,
		    computed_fee = $5,
		    last_transition_timestamp = $6
		WHERE id = $1
	`
	tag, err := tx.Exec(ctx, query,
		transfer.ID, string(transfer.Status), statusPtrToText(transfer.PreviousStatus),
		clausesJSON, feeToNull(transfer.ComputedFee), transfer.LastTransitionTimestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to update transfer %s: %w", transfer.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Resource: "transfer", ID: transfer.ID.String()}
	}
	return nil
}

// ListTransfers returns all transfers, newest first.
func (r *PostgresRepository) ListTransfers(ctx context.Context) ([]domain.Transfer, error) {
	rows, err := r.db.Query(ctx, `SELECT `+transferColumns+` FROM transfers ORDER BY initiation_timestamp DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	defer rows.Close()

	var transfers []domain.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows, uuid.Nil)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, *t)
	}
	return transfers, rows.Err()
}

// PlayerHasActiveTransfer reports whether the player is tied up in a
// SUBMITTED, NEGOTIATION or APPROVED transfer.
func (r *PostgresRepository) PlayerHasActiveTransfer(ctx context.Context, playerID uuid.UUID) (bool, error) {
	statuses := make([]string, 0, len(domain.ActiveTransferStatuses))
	for _, s := range domain.ActiveTransferStatuses {
		statuses = append(statuses, string(s))
	}
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM transfers WHERE player_id = $1 AND status = ANY($2))`
	if err := r.db.QueryRow(ctx, query, playerID, statuses).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check active transfers for player %s: %w", playerID, err)
	}
	return exists, nil
}

// CreatePlayer inserts a new player row.
func (r *PostgresRepository) CreatePlayer(ctx context.Context, player *domain.Player) error {
	query := `INSERT INTO players (id, name, market_value, current_club_id) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.Exec(ctx, query, player.ID, player.Name, player.MarketValue, player.CurrentClubID); err != nil {
		return fmt.Errorf("failed to insert player: %w", err)
	}
	return nil
}

// FindPlayerByID retrieves a player by id.
func (r *PostgresRepository) FindPlayerByID(ctx context.Context, id uuid.UUID) (*domain.Player, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, market_value, current_club_id FROM players WHERE id = $1`, id)
	return scanPlayer(row, id)
}

// FindPlayerByIDTx retrieves a player by id inside the caller's transaction.
func (r *PostgresRepository) FindPlayerByIDTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Player, error) {
	row := tx.QueryRow(ctx, `SELECT id, name, market_value, current_club_id FROM players WHERE id = $1`, id)
	return scanPlayer(row, id)
}

// FindPlayerByName retrieves a player by exact name. Used by the seeder for idempotency.
func (r *PostgresRepository) FindPlayerByName(ctx context.Context, name string) (*domain.Player, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, market_value, current_club_id FROM players WHERE name = $1`, name)
	return scanPlayer(row, uuid.Nil)
}

// ListPlayers returns all players ordered by name.
func (r *PostgresRepository) ListPlayers(ctx context.Context) ([]domain.Player, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, market_value, current_club_id FROM players ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var players []domain.Player
	for rows.Next() {
		var p domain.Player
		if err := rows.Scan(&p.ID, &p.Name, &p.MarketValue, &p.CurrentClubID); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// UpdatePlayer updates a player's name, market value and club assignment.
func (r *PostgresRepository) UpdatePlayer(ctx context.Context, player *domain.Player) error {
	query := `UPDATE players SET name = $2, market_value = $3, current_club_id = $4 WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, player.ID, player.Name, player.MarketValue, player.CurrentClubID)
	if err != nil {
		return fmt.Errorf("failed to update player %s: %w", player.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Resource: "player", ID: player.ID.String()}
	}
	return nil
}

// UpdatePlayerClubTx moves a player to a new club inside the caller's
// transaction. The workflow engine uses this when a transfer completes.
func (r *PostgresRepository) UpdatePlayerClubTx(ctx context.Context, tx pgx.Tx, playerID, clubID uuid.UUID) error {
	tag, err := tx.Exec(ctx, `UPDATE players SET current_club_id = $2 WHERE id = $1`, playerID, clubID)
	if err != nil {
		return fmt.Errorf("failed to move player %s to club %s: %w", playerID, clubID, err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Resource: "player", ID: playerID.String()}
	}
	return nil
}

// DeletePlayer removes a player row.
func (r *PostgresRepository) DeletePlayer(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete player %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Resource: "player", ID: id.String()}
	}
	return nil
}

// CreateClub inserts a new club row with its opening budget. This is the only
// budget write outside the ledger.
func (r *PostgresRepository) CreateClub(ctx context.Context, club *domain.Club) error {
	if _, err := r.db.Exec(ctx, `INSERT INTO clubs (id, name, budget) VALUES ($1, $2, $3)`,
		club.ID, club.Name, club.Budget); err != nil {
		return fmt.Errorf("failed to insert club: %w", err)
	}
	return nil
}

// FindClubByID retrieves a club by id.
func (r *PostgresRepository) FindClubByID(ctx context.Context, id uuid.UUID) (*domain.Club, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, budget FROM clubs WHERE id = $1`, id)
	return scanClub(row, id)
}

// FindClubByName retrieves a club by exact name. Used by the seeder for idempotency.
func (r *PostgresRepository) FindClubByName(ctx context.Context, name string) (*domain.Club, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, budget FROM clubs WHERE name = $1`, name)
	return scanClub(row, uuid.Nil)
}

// ListClubs returns all clubs ordered by name.
func (r *PostgresRepository) ListClubs(ctx context.Context) ([]domain.Club, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, budget FROM clubs ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list clubs: %w", err)
	}
	defer rows.Close()

	var clubs []domain.Club
	for rows.Next() {
		var c domain.Club
		if err := rows.Scan(&c.ID, &c.Name, &c.Budget); err != nil {
			return nil, fmt.Errorf("failed to scan club: %w", err)
		}
		clubs = append(clubs, c)
	}
	return clubs, rows.Err()
}

// RenameClub updates a club's name. There is intentionally no way to update
// the budget column here.
func (r *PostgresRepository) RenameClub(ctx context.Context, id uuid.UUID, name string) error {
	tag, err := r.db.Exec(ctx, `UPDATE clubs SET name = $2 WHERE id = $1`, id, name)
	if err != nil {
		return fmt.Errorf("failed to rename club %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Resource: "club", ID: id.String()}
	}
	return nil
}

// DeleteClub removes a club row.
func (r *PostgresRepository) DeleteClub(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM clubs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete club %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Resource: "club", ID: id.String()}
	}
	return nil
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransfer(row rowScanner, id uuid.UUID) (*domain.Transfer, error) {
	var (
		t           domain.Transfer
		statusText  string
		prevText    *string
		clausesJSON []byte
		fee         decimal.NullDecimal
	)
	err := row.Scan(
		&t.ID, &t.PlayerID, &t.FromClubID, &t.ToClubID,
		&statusText, &prevText, &clausesJSON, &fee,
		&t.InitiationTimestamp, &t.LastTransitionTimestamp,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, &domain.NotFoundError{Resource: "transfer", ID: id.String()}
		}
		return nil, fmt.Errorf("failed to scan transfer: %w", err)
	}

	status, err := domain.ParseTransferStatus(statusText)
	if err != nil {
		return nil, fmt.Errorf("stored transfer %s has invalid status %q", t.ID, statusText)
	}
	t.Status = status
	if prevText != nil {
		prev, err := domain.ParseTransferStatus(*prevText)
		if err != nil {
			return nil, fmt.Errorf("stored transfer %s has invalid previous status %q", t.ID, *prevText)
		}
		t.PreviousStatus = &prev
	}
	if len(clausesJSON) > 0 {
		if err := json.Unmarshal(clausesJSON, &t.Clauses); err != nil {
			return nil, fmt.Errorf("failed to decode clauses for transfer %s: %w", t.ID, err)
		}
	}
	if fee.Valid {
		t.ComputedFee = &fee.Decimal
	}
	return &t, nil
}

func scanPlayer(row rowScanner, id uuid.UUID) (*domain.Player, error) {
	var p domain.Player
	if err := row.Scan(&p.ID, &p.Name, &p.MarketValue, &p.CurrentClubID); err != nil {
		if err == pgx.ErrNoRows {
			return nil, &domain.NotFoundError{Resource: "player", ID: id.String()}
		}
		return nil, fmt.Errorf("failed to scan player: %w", err)
	}
	return &p, nil
}

func scanClub(row rowScanner, id uuid.UUID) (*domain.Club, error) {
	var c domain.Club
	if err := row.Scan(&c.ID, &c.Name, &c.Budget); err != nil {
		if err == pgx.ErrNoRows {
			return nil, &domain.NotFoundError{Resource: "club", ID: id.String()}
		}
		return nil, fmt.Errorf("failed to scan club: %w", err)
	}
	return &c, nil
}

func statusPtrToText(s *domain.TransferStatus) *string {
	if s == nil {
		return nil
	}
	text := string(*s)
	return &text
}

func feeToNull(fee *decimal.Decimal) decimal.NullDecimal {
	if fee == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *fee, Valid: true}
}
