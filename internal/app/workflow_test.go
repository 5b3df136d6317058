package app

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/transfersystem/transfer-service/internal/domain"
	"github.com/transfersystem/transfer-service/internal/fee"
	"github.com/transfersystem/transfer-service/internal/store"
)

type workflowRepoStub struct {
	store.Repository

	mu       sync.Mutex
	transfer *domain.Transfer
	player   *domain.Player

	updateCalled     int
	playerMovedTo    *uuid.UUID
	activeTransfer   bool
	findClubBudgets  map[uuid.UUID]decimal.Decimal
	createdTransfers []*domain.Transfer
}

func (s *workflowRepoStub) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

func (s *workflowRepoStub) FindTransferByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transfer == nil || s.transfer.ID != id {
		return nil, &domain.NotFoundError{Resource: "transfer", ID: id.String()}
	}
	copied := *s.transfer
	return &copied, nil
}

func (s *workflowRepoStub) UpdateTransferTx(ctx context.Context, tx pgx.Tx, transfer *domain.Transfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateCalled++
	copied := *transfer
	s.transfer = &copied
	return nil
}

func (s *workflowRepoStub) FindPlayerByIDTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player == nil || s.player.ID != id {
		return nil, &domain.NotFoundError{Resource: "player", ID: id.String()}
	}
	copied := *s.player
	return &copied, nil
}

func (s *workflowRepoStub) UpdatePlayerClubTx(ctx context.Context, tx pgx.Tx, playerID, clubID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	moved := clubID
	s.playerMovedTo = &moved
	return nil
}

func (s *workflowRepoStub) FindPlayerByID(ctx context.Context, id uuid.UUID) (*domain.Player, error) {
	return s.FindPlayerByIDTx(ctx, nil, id)
}

func (s *workflowRepoStub) FindClubByID(ctx context.Context, id uuid.UUID) (*domain.Club, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	budget, ok := s.findClubBudgets[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "club", ID: id.String()}
	}
	return &domain.Club{ID: id, Name: "Club", Budget: budget}, nil
}

func (s *workflowRepoStub) PlayerHasActiveTransfer(ctx context.Context, playerID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeTransfer, nil
}

func (s *workflowRepoStub) CreateTransfer(ctx context.Context, transfer *domain.Transfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *transfer
	s.createdTransfers = append(s.createdTransfers, &copied)
	s.transfer = &copied
	return nil
}

type ledgerStub struct {
	mu    sync.Mutex
	calls []ledgerCall
	err   error
}

type ledgerCall struct {
	from, to uuid.UUID
	amount   decimal.Decimal
}

func (l *ledgerStub) Transfer(ctx context.Context, fromClubID, toClubID uuid.UUID, amount decimal.Decimal) error {
	return l.TransferTx(ctx, nil, fromClubID, toClubID, amount)
}

func (l *ledgerStub) TransferTx(ctx context.Context, tx pgx.Tx, fromClubID, toClubID uuid.UUID, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.calls = append(l.calls, ledgerCall{from: fromClubID, to: toClubID, amount: amount})
	return nil
}

func (l *ledgerStub) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.calls)
}

func approvedTransfer(playerID, fromClubID, toClubID uuid.UUID) *domain.Transfer {
	return &domain.Transfer{
		ID:         uuid.New(),
		PlayerID:   playerID,
		FromClubID: fromClubID,
		ToClubID:   toClubID,
		Status:     domain.StatusApproved,
		Clauses: []domain.Clause{
			{Type: domain.ClauseSellOn, Percentage: decPtr("20")},
			{Type: domain.ClauseLoyaltyFee, Amount: decPtr("100000")},
		},
	}
}

func decPtr(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

func newWorkflowService(repo *workflowRepoStub, l *ledgerStub) *Service {
	return NewService(repo, l, fee.NewEstimator(), nil, decimal.NewFromInt(1_000_000))
}

func TestApplyAction_CompleteRunsFullSideEffectSet(t *testing.T) {
	playerID := uuid.New()
	fromClubID := uuid.New()
	toClubID := uuid.New()

	repo := &workflowRepoStub{
		transfer: approvedTransfer(playerID, fromClubID, toClubID),
		player:   &domain.Player{ID: playerID, Name: "Test Player", MarketValue: decimal.NewFromInt(5_000_000)},
	}
	budgetLedger := &ledgerStub{}
	service := newWorkflowService(repo, budgetLedger)

	updated, err := service.ApplyAction(context.Background(), repo.transfer.ID, domain.ActionComplete)
	if err != nil {
		t.Fatalf("expected completion to succeed, got %v", err)
	}

	if updated.Status != domain.StatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", updated.Status)
	}
	if updated.ComputedFee == nil {
		t.Fatal("expected computed fee to be set on completion")
	}
	// 5,000,000 + 20% + 100,000
	if want := decimal.RequireFromString("6100000.00"); !updated.ComputedFee.Equal(want) {
		t.Fatalf("expected fee %s, got %s", want, updated.ComputedFee)
	}
	if updated.PreviousStatus == nil || *updated.PreviousStatus != domain.StatusApproved {
		t.Fatal("expected previous status APPROVED to be recorded")
	}

	if budgetLedger.callCount() != 1 {
		t.Fatalf("expected exactly one ledger movement, got %d", budgetLedger.callCount())
	}
	call := budgetLedger.calls[0]
	if call.from != fromClubID || call.to != toClubID {
		t.Fatal("ledger movement must debit the from club and credit the to club")
	}
	if !call.amount.Equal(*updated.ComputedFee) {
		t.Fatalf("ledger amount %s must equal the computed fee %s", call.amount, updated.ComputedFee)
	}

	if repo.playerMovedTo == nil || *repo.playerMovedTo != toClubID {
		t.Fatal("expected the player to move to the buying club")
	}
}

func TestApplyAction_SecondCompleteIsRejectedWithoutLedgerCall(t *testing.T) {
	playerID := uuid.New()
	repo := &workflowRepoStub{
		transfer: approvedTransfer(playerID, uuid.New(), uuid.New()),
		player:   &domain.Player{ID: playerID, Name: "Test Player", MarketValue: decimal.NewFromInt(1_000_000)},
	}
	budgetLedger := &ledgerStub{}
	service := newWorkflowService(repo, budgetLedger)

	if _, err := service.ApplyAction(context.Background(), repo.transfer.ID, domain.ActionComplete); err != nil {
		t.Fatalf("first completion failed: %v", err)
	}

	_, err := service.ApplyAction(context.Background(), repo.transfer.ID, domain.ActionComplete)
	var transitionErr *domain.InvalidTransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if transitionErr.Current != domain.StatusCompleted {
		t.Fatalf("expected rejection from COMPLETED, got %s", transitionErr.Current)
	}
	if budgetLedger.callCount() != 1 {
		t.Fatalf("expected the budget to move exactly once, got %d ledger calls", budgetLedger.callCount())
	}
}

func TestApplyAction_CancelFromDraftNeverTouchesLedger(t *testing.T) {
	transfer := approvedTransfer(uuid.New(), uuid.New(), uuid.New())
	transfer.Status = domain.StatusDraft
	repo := &workflowRepoStub{transfer: transfer}
	budgetLedger := &ledgerStub{}
	service := newWorkflowService(repo, budgetLedger)

	updated, err := service.ApplyAction(context.Background(), transfer.ID, domain.ActionCancel)
	if err != nil {
		t.Fatalf("expected cancel to succeed, got %v", err)
	}
	if updated.Status != domain.StatusCancelled {
		t.Fatalf("expected CANCELLED, got %s", updated.Status)
	}
	if updated.ComputedFee != nil {
		t.Fatal("cancelled transfers must not carry a fee")
	}
	if budgetLedger.callCount() != 0 {
		t.Fatal("cancel must never touch the ledger")
	}
}

func TestApplyAction_LedgerFailureLeavesTransferApproved(t *testing.T) {
	playerID := uuid.New()
	repo := &workflowRepoStub{
		transfer: approvedTransfer(playerID, uuid.New(), uuid.New()),
		player:   &domain.Player{ID: playerID, Name: "Test Player", MarketValue: decimal.NewFromInt(9_000_000_000)},
	}
	budgetLedger := &ledgerStub{
		err: &domain.InsufficientFundsError{
			ClubID:    repo.transfer.FromClubID.String(),
			Required:  decimal.NewFromInt(9_000_000_000),
			Available: decimal.NewFromInt(10),
		},
	}
	service := newWorkflowService(repo, budgetLedger)

	_, err := service.ApplyAction(context.Background(), repo.transfer.ID, domain.ActionComplete)
	var fundsErr *domain.InsufficientFundsError
	if !errors.As(err, &fundsErr) {
		t.Fatalf("expected InsufficientFundsError, got %v", err)
	}

	if repo.transfer.Status != domain.StatusApproved {
		t.Fatalf("expected transfer to stay APPROVED, got %s", repo.transfer.Status)
	}
	if repo.transfer.ComputedFee != nil {
		t.Fatal("a failed completion must not persist a fee")
	}
	if repo.updateCalled != 0 {
		t.Fatal("a failed completion must not persist the transfer")
	}
	if repo.playerMovedTo != nil {
		t.Fatal("a failed completion must not move the player")
	}
}

func TestApplyAction_UnknownTransferReturnsNotFound(t *testing.T) {
	repo := &workflowRepoStub{}
	service := newWorkflowService(repo, &ledgerStub{})

	_, err := service.ApplyAction(context.Background(), uuid.New(), domain.ActionSubmit)
	if !domain.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestApplyAction_ConcurrentCompletesMoveBudgetOnce(t *testing.T) {
	playerID := uuid.New()
	repo := &workflowRepoStub{
		transfer: approvedTransfer(playerID, uuid.New(), uuid.New()),
		player:   &domain.Player{ID: playerID, Name: "Test Player", MarketValue: decimal.NewFromInt(2_000_000)},
	}
	budgetLedger := &ledgerStub{}
	service := newWorkflowService(repo, budgetLedger)

	const attempts = 8
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.ApplyAction(context.Background(), repo.transfer.ID, domain.ActionComplete)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var successes, rejections int
	for err := range errs {
		switch {
		case err == nil:
			successes++
		default:
			var transitionErr *domain.InvalidTransitionError
			if !errors.As(err, &transitionErr) {
				t.Fatalf("unexpected error kind: %v", err)
			}
			rejections++
		}
	}

	if successes != 1 {
		t.Fatalf("expected exactly one successful completion, got %d", successes)
	}
	if rejections != attempts-1 {
		t.Fatalf("expected %d rejected attempts, got %d", attempts-1, rejections)
	}
	if budgetLedger.callCount() != 1 {
		t.Fatalf("expected exactly one ledger movement, got %d", budgetLedger.callCount())
	}
}
