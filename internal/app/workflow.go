/**
 * @description
 * This file contains the workflow engine: the single entry point through
 * which a transfer's lifecycle advances. ApplyAction loads the transfer,
 * validates the requested action against the transition table, runs the
 * completion side effects when the transfer enters COMPLETED, and persists
 * everything as one unit of work.
 *
 * Key guarantees:
 * - Actions against the same transfer are mutually exclusive: an in-process
 *   keyed mutex serializes local callers and the FOR UPDATE row lock
 *   serializes across instances.
 * - A transition either commits with its full side-effect set (status,
 *   computed fee, ledger movement, player club move, timestamp) or leaves
 *   the persisted transfer exactly as it was.
 * - COMPLETED is terminal, so a second complete fails the transition check
 *   before the ledger is ever consulted; the budget movement happens at most
 *   once per transfer.
 */

package app

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/transfersystem/transfer-service/internal/domain"
)

// ApplyAction applies a workflow action to the transfer with the given id and
// returns the updated transfer. It fails with a typed error when the transfer
// is unknown, the action is not legal in the current status, or the
// completion side effects cannot be carried out.
func (s *Service) ApplyAction(ctx context.Context, transferID uuid.UUID, action domain.TransferAction) (*domain.Transfer, error) {
	unlock := s.locks.lock(transferID)
	defer unlock()

	var updated *domain.Transfer
	err := s.repo.WithTx(ctx, func(tx pgx.Tx) error {
		transfer, err := s.repo.FindTransferByIDForUpdate(ctx, tx, transferID)
		if err != nil {
			return err
		}

		next, err := transfer.Status.Next(action)
		if err != nil {
			return err
		}

		previous := transfer.Status
		transfer.PreviousStatus = &previous
		transfer.Status = next
		transfer.LastTransitionTimestamp = time.Now().UTC()

		if next == domain.StatusCompleted {
			if err := s.completeTransfer(ctx, tx, transfer); err != nil {
				return err
			}
		}

		if err := s.repo.UpdateTransferTx(ctx, tx, transfer); err != nil {
			return err
		}
		updated = transfer
		return nil
	})
	if err != nil {
		log.Printf("level=warn component=workflow msg=\"action rejected\" transfer_id=%s action=%s err=%v",
			transferID, action, err)
		return nil, err
	}

	log.Printf("level=info component=workflow msg=\"transition applied\" transfer_id=%s action=%s status=%s",
		updated.ID, action, updated.Status)
	s.publishLifecycleEvent(ctx, updated, action)
	return updated, nil
}

// completeTransfer runs the side effects of entering COMPLETED inside the
// caller's transaction: price the deal, move the budget from the selling
// club's account to the buying club's account, and move the player.
func (s *Service) completeTransfer(ctx context.Context, tx pgx.Tx, transfer *domain.Transfer) error {
	player, err := s.repo.FindPlayerByIDTx(ctx, tx, transfer.PlayerID)
	if err != nil {
		return err
	}

	feeAmount := s.estimator.Estimate(s.baseValuation(player), transfer.Clauses)
	if err := s.ledger.TransferTx(ctx, tx, transfer.FromClubID, transfer.ToClubID, feeAmount); err != nil {
		return err
	}
	if err := s.repo.UpdatePlayerClubTx(ctx, tx, transfer.PlayerID, transfer.ToClubID); err != nil {
		return err
	}
	transfer.ComputedFee = &feeAmount
	return nil
}

// publishLifecycleEvent emits the transition to the notification boundary.
// Publishing happens after the transaction committed and is best effort: a
// broker failure never rolls back a committed transition.
func (s *Service) publishLifecycleEvent(ctx context.Context, transfer *domain.Transfer, action domain.TransferAction) {
	if s.eventProducer == nil {
		return
	}
	event := domain.TransferLifecycleEvent{
		EventID:    uuid.New(),
		TransferID: transfer.ID,
		PlayerID:   transfer.PlayerID,
		FromClubID: transfer.FromClubID,
		ToClubID:   transfer.ToClubID,
		Action:     action,
		Status:     transfer.Status,
		Fee:        transfer.ComputedFee,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.eventProducer.PublishTransferEvent(ctx, event); err != nil {
		log.Printf("level=warn component=workflow msg=\"lifecycle event publish failed\" transfer_id=%s status=%s err=%v",
			transfer.ID, transfer.Status, err)
	}
}
