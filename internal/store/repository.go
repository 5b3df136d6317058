/**
 * @description
 * This file defines the `Repository` interface, the contract for all data
 * access the transfer service needs. The workflow engine depends on this
 * interface rather than on PostgreSQL directly, which keeps the engine
 * testable with in-memory stubs.
 *
 * @notes
 * - Club budgets are deliberately absent from this contract beyond reads and
 *   the opening balance at creation: the budget ledger owns every later
 *   budget write.
 * - The *Tx variants operate inside a caller-owned transaction obtained via
 *   WithTx, so one workflow action persists as a single unit of work.
 */

package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/transfersystem/transfer-service/internal/domain"
)

// Repository defines the set of methods for interacting with the database.
type Repository interface {
	// WithTx runs fn inside a database transaction. The transaction commits
	// when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error

	// Transfer methods
	CreateTransfer(ctx context.Context, transfer *domain.Transfer) error
	FindTransferByID(ctx context.Context, id uuid.UUID) (*domain.Transfer, error)
	// FindTransferByIDForUpdate loads a transfer and holds its row lock for
	// the rest of the enclosing transaction.
	FindTransferByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Transfer, error)
	UpdateTransferTx(ctx context.Context, tx pgx.Tx, transfer *domain.Transfer) error
	ListTransfers(ctx context.Context) ([]domain.Transfer, error)
	PlayerHasActiveTransfer(ctx context.Context, playerID uuid.UUID) (bool, error)

	// Player methods
	CreatePlayer(ctx context.Context, player *domain.Player) error
	FindPlayerByID(ctx context.Context, id uuid.UUID) (*domain.Player, error)
	FindPlayerByIDTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Player, error)
	FindPlayerByName(ctx context.Context, name string) (*domain.Player, error)
	ListPlayers(ctx context.Context) ([]domain.Player, error)
	UpdatePlayer(ctx context.Context, player *domain.Player) error
	UpdatePlayerClubTx(ctx context.Context, tx pgx.Tx, playerID, clubID uuid.UUID) error
	DeletePlayer(ctx context.Context, id uuid.UUID) error

	// Club methods. RenameClub is intentionally narrow: club updates cannot
	// touch the budget column, which the ledger owns.
	CreateClub(ctx context.Context, club *domain.Club) error
	FindClubByID(ctx context.Context, id uuid.UUID) (*domain.Club, error)
	FindClubByName(ctx context.Context, name string) (*domain.Club, error)
	ListClubs(ctx context.Context) ([]domain.Club, error)
	RenameClub(ctx context.Context, id uuid.UUID, name string) error
	DeleteClub(ctx context.Context, id uuid.UUID) error
}
