/**
 * @description
 * This file contains the application service for the transfer system. The
 * `Service` struct composes the repository, the budget ledger, the fee
 * estimator and the event producer, and exposes the operations the API layer
 * consumes: transfer initiation, player and club management, and reads.
 *
 * The workflow action handling itself (the state machine orchestration) lives
 * in workflow.go.
 *
 * @dependencies
 * - github.com/google/uuid: For UUID generation.
 * - github.com/shopspring/decimal: Monetary values.
 * - internal/domain, internal/store, internal/fee, internal/ledger: Core model and collaborators.
 * - pkg/rabbitmq: Event publishing at the notification boundary.
 */

package app

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/transfersystem/transfer-service/internal/domain"
	"github.com/transfersystem/transfer-service/internal/fee"
	"github.com/transfersystem/transfer-service/internal/ledger"
	"github.com/transfersystem/transfer-service/internal/store"
	"github.com/transfersystem/transfer-service/pkg/rabbitmq"
)

// ErrPlayerInActiveTransfer is returned when a new transfer is initiated for
// a player who is already in a SUBMITTED, NEGOTIATION or APPROVED transfer.
var ErrPlayerInActiveTransfer = errors.New("player is already in an active transfer")

// Service provides the core business logic for the transfer system.
type Service struct {
	repo          store.Repository
	ledger        ledger.Ledger
	estimator     *fee.Estimator
	eventProducer rabbitmq.Publisher

	// defaultBaseValuation prices players with no positive market value.
	defaultBaseValuation decimal.Decimal

	locks keyedMutex
}

// NewService creates a new transfer service instance.
func NewService(repo store.Repository, l ledger.Ledger, estimator *fee.Estimator, producer rabbitmq.Publisher, defaultBaseValuation decimal.Decimal) *Service {
	return &Service{
		repo:                 repo,
		ledger:               l,
		estimator:            estimator,
		eventProducer:        producer,
		defaultBaseValuation: defaultBaseValuation,
	}
}

// InitiateTransferInput carries the fields for creating a DRAFT transfer.
type InitiateTransferInput struct {
	PlayerID   uuid.UUID
	FromClubID uuid.UUID
	ToClubID   uuid.UUID
	Clauses    []domain.Clause
}

// InitiateTransfer validates the request and creates a new transfer in DRAFT.
// Validation happens before any state mutation: referenced records must
// exist, the clubs must differ, the player must not already be in an active
// transfer, and the debited club's budget must cover the estimated fee. The
// budget check here is advisory; completion re-checks atomically under row
// locks.
func (s *Service) InitiateTransfer(ctx context.Context, input InitiateTransferInput) (*domain.Transfer, error) {
	now := time.Now().UTC()
	transfer := &domain.Transfer{
		ID:                      uuid.New(),
		PlayerID:                input.PlayerID,
		FromClubID:              input.FromClubID,
		ToClubID:                input.ToClubID,
		Status:                  domain.StatusDraft,
		Clauses:                 input.Clauses,
		InitiationTimestamp:     now,
		LastTransitionTimestamp: now,
	}
	if err := domain.NormalizeClauses(transfer.Clauses); err != nil {
		return nil, err
	}
	if err := transfer.Validate(); err != nil {
		return nil, err
	}

	player, err := s.repo.FindPlayerByID(ctx, input.PlayerID)
	if err != nil {
		return nil, err
	}
	fromClub, err := s.repo.FindClubByID(ctx, input.FromClubID)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindClubByID(ctx, input.ToClubID); err != nil {
		return nil, err
	}

	active, err := s.repo.PlayerHasActiveTransfer(ctx, input.PlayerID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, ErrPlayerInActiveTransfer
	}

	estimated := s.estimator.Estimate(s.baseValuation(player), transfer.Clauses)
	if fromClub.Budget.LessThan(estimated) {
		return nil, &domain.InsufficientFundsError{
			ClubID:    fromClub.ID.String(),
			Required:  estimated,
			Available: fromClub.Budget,
		}
	}

	if err := s.repo.CreateTransfer(ctx, transfer); err != nil {
		return nil, err
	}
	log.Printf("level=info component=workflow msg=\"transfer initiated\" transfer_id=%s player_id=%s from_club=%s to_club=%s",
		transfer.ID, transfer.PlayerID, transfer.FromClubID, transfer.ToClubID)
	return transfer, nil
}

// GetTransfer returns a transfer by id.
func (s *Service) GetTransfer(ctx context.Context, id uuid.UUID) (*domain.Transfer, error) {
	return s.repo.FindTransferByID(ctx, id)
}

// ListTransfers returns all transfers, newest first.
func (s *Service) ListTransfers(ctx context.Context) ([]domain.Transfer, error) {
	return s.repo.ListTransfers(ctx)
}

// baseValuation returns the player's market value, falling back to the
// configured default when the player has no positive valuation.
func (s *Service) baseValuation(player *domain.Player) decimal.Decimal {
	if player.MarketValue.IsPositive() {
		return player.MarketValue
	}
	return s.defaultBaseValuation
}

// CreatePlayerInput carries the fields for creating or updating a player.
type CreatePlayerInput struct {
	Name          string
	MarketValue   decimal.Decimal
	CurrentClubID *uuid.UUID
}

// CreatePlayer creates a new player record.
func (s *Service) CreatePlayer(ctx context.Context, input CreatePlayerInput) (*domain.Player, error) {
	player := &domain.Player{
		ID:            uuid.New(),
		Name:          input.Name,
		MarketValue:   input.MarketValue,
		CurrentClubID: input.CurrentClubID,
	}
	if err := player.Validate(); err != nil {
		return nil, err
	}
	if input.CurrentClubID != nil {
		if _, err := s.repo.FindClubByID(ctx, *input.CurrentClubID); err != nil {
			return nil, err
		}
	}
	if err := s.repo.CreatePlayer(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}

// GetPlayer returns a player by id.
func (s *Service) GetPlayer(ctx context.Context, id uuid.UUID) (*domain.Player, error) {
	return s.repo.FindPlayerByID(ctx, id)
}

// ListPlayers returns all players.
func (s *Service) ListPlayers(ctx context.Context) ([]domain.Player, error) {
	return s.repo.ListPlayers(ctx)
}

// UpdatePlayer updates a player's name, market value and club assignment.
func (s *Service) UpdatePlayer(ctx context.Context, id uuid.UUID, input CreatePlayerInput) (*domain.Player, error) {
	player, err := s.repo.FindPlayerByID(ctx, id)
	if err != nil {
		return nil, err
	}
	player.Name = input.Name
	player.MarketValue = input.MarketValue
	player.CurrentClubID = input.CurrentClubID
	if err := player.Validate(); err != nil {
		return nil, err
	}
	if input.CurrentClubID != nil {
		if _, err := s.repo.FindClubByID(ctx, *input.CurrentClubID); err != nil {
			return nil, err
		}
	}
	if err := s.repo.UpdatePlayer(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}

// DeletePlayer removes a player record.
func (s *Service) DeletePlayer(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeletePlayer(ctx, id)
}

// CreateClubInput carries the fields for creating a club.
type CreateClubInput struct {
	Name   string
	Budget decimal.Decimal
}

// CreateClub creates a new club with its opening budget. This is the only
// path that sets a budget directly; afterwards the ledger owns the column.
func (s *Service) CreateClub(ctx context.Context, input CreateClubInput) (*domain.Club, error) {
	club := &domain.Club{
		ID:     uuid.New(),
		Name:   input.Name,
		Budget: input.Budget,
	}
	if err := club.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.CreateClub(ctx, club); err != nil {
		return nil, err
	}
	return club, nil
}

// GetClub returns a club by id.
func (s *Service) GetClub(ctx context.Context, id uuid.UUID) (*domain.Club, error) {
	return s.repo.FindClubByID(ctx, id)
}

// ListClubs returns all clubs.
func (s *Service) ListClubs(ctx context.Context) ([]domain.Club, error) {
	return s.repo.ListClubs(ctx)
}

// RenameClub updates a club's name. Budgets are not updatable through the
// club surface; only the ledger's transfer primitive moves them.
func (s *Service) RenameClub(ctx context.Context, id uuid.UUID, name string) (*domain.Club, error) {
	if name == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "club name must not be empty"}
	}
	if err := s.repo.RenameClub(ctx, id, name); err != nil {
		return nil, err
	}
	return s.repo.FindClubByID(ctx, id)
}

// DeleteClub removes a club record.
func (s *Service) DeleteClub(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteClub(ctx, id)
}
