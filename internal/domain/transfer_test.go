package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext_AllowedTransitions(t *testing.T) {
	cases := []struct {
		current TransferStatus
		action  TransferAction
		want    TransferStatus
	}{
		{StatusDraft, ActionSubmit, StatusSubmitted},
		{StatusDraft, ActionCancel, StatusCancelled},
		{StatusSubmitted, ActionNegotiate, StatusNegotiation},
		{StatusSubmitted, ActionApprove, StatusApproved},
		{StatusSubmitted, ActionCancel, StatusCancelled},
		{StatusNegotiation, ActionApprove, StatusApproved},
		{StatusNegotiation, ActionCancel, StatusCancelled},
		{StatusApproved, ActionComplete, StatusCompleted},
		{StatusApproved, ActionCancel, StatusCancelled},
	}
	for _, tc := range cases {
		next, err := tc.current.Next(tc.action)
		require.NoError(t, err, "%s + %s", tc.current, tc.action)
		assert.Equal(t, tc.want, next, "%s + %s", tc.current, tc.action)
	}
}

func TestNext_RejectsEverythingElse(t *testing.T) {
	allStatuses := []TransferStatus{
		StatusDraft, StatusSubmitted, StatusNegotiation, StatusApproved,
		StatusCompleted, StatusCancelled, StatusRejected,
	}
	allActions := []TransferAction{
		ActionSubmit, ActionNegotiate, ActionApprove, ActionComplete, ActionCancel,
	}

	allowed := map[TransferStatus]map[TransferAction]bool{
		StatusDraft:       {ActionSubmit: true, ActionCancel: true},
		StatusSubmitted:   {ActionNegotiate: true, ActionApprove: true, ActionCancel: true},
		StatusNegotiation: {ActionApprove: true, ActionCancel: true},
		StatusApproved:    {ActionComplete: true, ActionCancel: true},
	}

	for _, status := range allStatuses {
		for _, action := range allActions {
			if allowed[status][action] {
				continue
			}
			_, err := status.Next(action)
			require.Error(t, err, "%s + %s should be rejected", status, action)
			var transitionErr *InvalidTransitionError
			require.ErrorAs(t, err, &transitionErr)
			assert.Equal(t, status, transitionErr.Current)
			assert.Equal(t, action, transitionErr.Action)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.False(t, StatusDraft.IsTerminal())
	assert.False(t, StatusSubmitted.IsTerminal())
	assert.False(t, StatusNegotiation.IsTerminal())
	assert.False(t, StatusApproved.IsTerminal())
}

func TestParseTransferStatus(t *testing.T) {
	status, err := ParseTransferStatus("  negotiation ")
	require.NoError(t, err)
	assert.Equal(t, StatusNegotiation, status)

	_, err = ParseTransferStatus("LIMBO")
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestParseTransferAction(t *testing.T) {
	action, err := ParseTransferAction(" APPROVE ")
	require.NoError(t, err)
	assert.Equal(t, ActionApprove, action)

	_, err = ParseTransferAction("reject")
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestDisplayStatus_CancelledFromReviewShowsRejected(t *testing.T) {
	submitted := StatusSubmitted
	negotiation := StatusNegotiation
	approved := StatusApproved
	draft := StatusDraft

	cases := []struct {
		name     string
		status   TransferStatus
		previous *TransferStatus
		want     TransferStatus
	}{
		{"cancelled from submitted", StatusCancelled, &submitted, StatusRejected},
		{"cancelled from negotiation", StatusCancelled, &negotiation, StatusRejected},
		{"cancelled from approved", StatusCancelled, &approved, StatusCancelled},
		{"cancelled from draft", StatusCancelled, &draft, StatusCancelled},
		{"cancelled without history", StatusCancelled, nil, StatusCancelled},
		{"completed keeps its label", StatusCompleted, &approved, StatusCompleted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			transfer := Transfer{Status: tc.status, PreviousStatus: tc.previous}
			assert.Equal(t, tc.want, transfer.DisplayStatus())
		})
	}
}

func validTransfer() Transfer {
	now := time.Now().UTC()
	return Transfer{
		ID:                      uuid.New(),
		PlayerID:                uuid.New(),
		FromClubID:              uuid.New(),
		ToClubID:                uuid.New(),
		Status:                  StatusDraft,
		InitiationTimestamp:     now,
		LastTransitionTimestamp: now,
	}
}

func TestTransferValidate(t *testing.T) {
	t.Run("valid draft", func(t *testing.T) {
		transfer := validTransfer()
		require.NoError(t, transfer.Validate())
	})

	t.Run("same club on both sides", func(t *testing.T) {
		transfer := validTransfer()
		transfer.ToClubID = transfer.FromClubID
		var validationErr *ValidationError
		require.ErrorAs(t, transfer.Validate(), &validationErr)
		assert.Equal(t, "to_club_id", validationErr.Field)
	})

	t.Run("missing player", func(t *testing.T) {
		transfer := validTransfer()
		transfer.PlayerID = uuid.Nil
		var validationErr *ValidationError
		require.ErrorAs(t, transfer.Validate(), &validationErr)
		assert.Equal(t, "player_id", validationErr.Field)
	})

	t.Run("fee without completion", func(t *testing.T) {
		transfer := validTransfer()
		feeValue := decimal.NewFromInt(100)
		transfer.ComputedFee = &feeValue
		var validationErr *ValidationError
		require.ErrorAs(t, transfer.Validate(), &validationErr)
		assert.Equal(t, "computed_fee", validationErr.Field)
	})

	t.Run("completion without fee", func(t *testing.T) {
		transfer := validTransfer()
		transfer.Status = StatusCompleted
		var validationErr *ValidationError
		require.ErrorAs(t, transfer.Validate(), &validationErr)
		assert.Equal(t, "computed_fee", validationErr.Field)
	})

	t.Run("invalid clause surfaces", func(t *testing.T) {
		transfer := validTransfer()
		transfer.Clauses = []Clause{{Type: "SELL_ON"}}
		var validationErr *ValidationError
		require.ErrorAs(t, transfer.Validate(), &validationErr)
	})
}
