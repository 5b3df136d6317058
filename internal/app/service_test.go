package app

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/transfersystem/transfer-service/internal/domain"
)

func initiateFixture(marketValue int64, fromBudget string) (*workflowRepoStub, InitiateTransferInput) {
	playerID := uuid.New()
	fromClubID := uuid.New()
	toClubID := uuid.New()

	repo := &workflowRepoStub{
		player: &domain.Player{ID: playerID, Name: "Test Player", MarketValue: decimal.NewFromInt(marketValue)},
		findClubBudgets: map[uuid.UUID]decimal.Decimal{
			fromClubID: decimal.RequireFromString(fromBudget),
			toClubID:   decimal.NewFromInt(0),
		},
	}
	input := InitiateTransferInput{
		PlayerID:   playerID,
		FromClubID: fromClubID,
		ToClubID:   toClubID,
	}
	return repo, input
}

func TestInitiateTransfer_CreatesDraft(t *testing.T) {
	repo, input := initiateFixture(5_000_000, "10000000")
	service := newWorkflowService(repo, &ledgerStub{})

	transfer, err := service.InitiateTransfer(context.Background(), input)
	if err != nil {
		t.Fatalf("expected initiation to succeed, got %v", err)
	}
	if transfer.Status != domain.StatusDraft {
		t.Fatalf("expected DRAFT, got %s", transfer.Status)
	}
	if transfer.ComputedFee != nil {
		t.Fatal("a draft must not carry a computed fee")
	}
	if len(repo.createdTransfers) != 1 {
		t.Fatalf("expected one persisted transfer, got %d", len(repo.createdTransfers))
	}
	if transfer.InitiationTimestamp.IsZero() || transfer.LastTransitionTimestamp.IsZero() {
		t.Fatal("expected both timestamps to be set")
	}
}

func TestInitiateTransfer_RejectsSameClubOnBothSides(t *testing.T) {
	repo, input := initiateFixture(5_000_000, "10000000")
	input.ToClubID = input.FromClubID
	service := newWorkflowService(repo, &ledgerStub{})

	_, err := service.InitiateTransfer(context.Background(), input)
	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(repo.createdTransfers) != 0 {
		t.Fatal("nothing must be persisted on validation failure")
	}
}

func TestInitiateTransfer_RejectsUnknownToClub(t *testing.T) {
	repo, input := initiateFixture(5_000_000, "10000000")
	delete(repo.findClubBudgets, input.ToClubID)
	service := newWorkflowService(repo, &ledgerStub{})

	_, err := service.InitiateTransfer(context.Background(), input)
	if !domain.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestInitiateTransfer_RejectsPlayerAlreadyInActiveTransfer(t *testing.T) {
	repo, input := initiateFixture(5_000_000, "10000000")
	repo.activeTransfer = true
	service := newWorkflowService(repo, &ledgerStub{})

	_, err := service.InitiateTransfer(context.Background(), input)
	if !errors.Is(err, ErrPlayerInActiveTransfer) {
		t.Fatalf("expected ErrPlayerInActiveTransfer, got %v", err)
	}
	if len(repo.createdTransfers) != 0 {
		t.Fatal("nothing must be persisted while the player is tied up")
	}
}

func TestInitiateTransfer_RejectsWhenBudgetCannotCoverEstimate(t *testing.T) {
	repo, input := initiateFixture(5_000_000, "4999999.99")
	service := newWorkflowService(repo, &ledgerStub{})

	_, err := service.InitiateTransfer(context.Background(), input)
	var fundsErr *domain.InsufficientFundsError
	if !errors.As(err, &fundsErr) {
		t.Fatalf("expected InsufficientFundsError, got %v", err)
	}
	if fundsErr.ClubID != input.FromClubID.String() {
		t.Fatal("the buying side of the budget check is the from club")
	}
	if len(repo.createdTransfers) != 0 {
		t.Fatal("nothing must be persisted on a failed budget check")
	}
}

func TestInitiateTransfer_FallsBackToDefaultValuation(t *testing.T) {
	// Player has no positive market value; the configured default of
	// 1,000,000 is what the budget check must price against.
	repo, input := initiateFixture(0, "999999")
	service := newWorkflowService(repo, &ledgerStub{})

	_, err := service.InitiateTransfer(context.Background(), input)
	var fundsErr *domain.InsufficientFundsError
	if !errors.As(err, &fundsErr) {
		t.Fatalf("expected InsufficientFundsError from the default valuation, got %v", err)
	}
	if !fundsErr.Required.Equal(decimal.RequireFromString("1000000.00")) {
		t.Fatalf("expected the default valuation to price the deal, got %s", fundsErr.Required)
	}

	repo.findClubBudgets[input.FromClubID] = decimal.NewFromInt(1_000_000)
	if _, err := service.InitiateTransfer(context.Background(), input); err != nil {
		t.Fatalf("expected initiation to succeed once the budget covers the default, got %v", err)
	}
}

func TestInitiateTransfer_NormalizesClauses(t *testing.T) {
	repo, input := initiateFixture(5_000_000, "10000000")
	input.Clauses = []domain.Clause{{Type: " sell_on ", Percentage: decPtr("10")}}
	service := newWorkflowService(repo, &ledgerStub{})

	transfer, err := service.InitiateTransfer(context.Background(), input)
	if err != nil {
		t.Fatalf("expected initiation to succeed, got %v", err)
	}
	if transfer.Clauses[0].Type != domain.ClauseSellOn {
		t.Fatalf("expected clause type to be normalized, got %q", transfer.Clauses[0].Type)
	}
}
