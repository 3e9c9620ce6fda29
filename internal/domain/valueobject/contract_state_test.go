package valueobject_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/timebank-backend/internal/domain/valueobject"
	"github.com/ignatzorin/timebank-backend/internal/pkg/apperror"
)

func TestContractState_PairsMatchTable(t *testing.T) {
	cases := []struct {
		state  valueobject.ContractState
		status valueobject.ContractStatus
		phase  valueobject.PaymentPhase
	}{
		{valueobject.ContractStateDraft, valueobject.ContractStatusDraft, valueobject.PaymentPhaseUnfunded},
		{valueobject.ContractStateActive, valueobject.ContractStatusActive, valueobject.PaymentPhaseEscrowed},
		{valueobject.ContractStateDelivered, valueobject.ContractStatusDelivered, valueobject.PaymentPhaseEscrowed},
		{valueobject.ContractStateCompleted, valueobject.ContractStatusCompleted, valueobject.PaymentPhaseReleased},
		{valueobject.ContractStateCancelledUnfunded, valueobject.ContractStatusCancelled, valueobject.PaymentPhaseUnfunded},
		{valueobject.ContractStateCancelledRefunded, valueobject.ContractStatusCancelled, valueobject.PaymentPhaseRefunded},
		{valueobject.ContractStateDisputed, valueobject.ContractStatusDisputed, valueobject.PaymentPhaseEscrowed},
	}

	for _, tc := range cases {
		t.Run(string(tc.state), func(t *testing.T) {
			assert.Equal(t, tc.status, tc.state.Status())
			assert.Equal(t, tc.phase, tc.state.Phase())

			joined, err := valueobject.JoinContractState(tc.status, tc.phase)
			require.NoError(t, err)
			assert.Equal(t, tc.state, joined)
		})
	}
	assert.Len(t, valueobject.AllContractStates(), len(cases))
}

func TestJoinContractState_RejectsInvalidPair(t *testing.T) {
	invalid := []struct {
		status valueobject.ContractStatus
		phase  valueobject.PaymentPhase
	}{
		{valueobject.ContractStatusDraft, valueobject.PaymentPhaseEscrowed},
		{valueobject.ContractStatusActive, valueobject.PaymentPhaseUnfunded},
		{valueobject.ContractStatusCompleted, valueobject.PaymentPhaseEscrowed},
		{valueobject.ContractStatusCancelled, valueobject.PaymentPhaseEscrowed},
		{valueobject.ContractStatusCancelled, valueobject.PaymentPhaseReleased},
		{valueobject.ContractStatusDisputed, valueobject.PaymentPhaseRefunded},
	}

	for _, tc := range invalid {
		_, err := valueobject.JoinContractState(tc.status, tc.phase)
		assert.Error(t, err, "%s/%s", tc.status, tc.phase)
	}
}

func TestContractState_Next(t *testing.T) {
	cases := []struct {
		from valueobject.ContractState
		op   valueobject.ContractOperation
		to   valueobject.ContractState
		ok   bool
	}{
		{valueobject.ContractStateDraft, valueobject.ContractOpEscrow, valueobject.ContractStateActive, true},
		{valueobject.ContractStateDraft, valueobject.ContractOpCancel, valueobject.ContractStateCancelledUnfunded, true},
		{valueobject.ContractStateDraft, valueobject.ContractOpDeliver, "", false},
		{valueobject.ContractStateDraft, valueobject.ContractOpRelease, "", false},
		{valueobject.ContractStateActive, valueobject.ContractOpDeliver, valueobject.ContractStateDelivered, true},
		{valueobject.ContractStateActive, valueobject.ContractOpDispute, valueobject.ContractStateDisputed, true},
		{valueobject.ContractStateActive, valueobject.ContractOpCancel, valueobject.ContractStateCancelledRefunded, true},
		{valueobject.ContractStateActive, valueobject.ContractOpEscrow, "", false},
		{valueobject.ContractStateActive, valueobject.ContractOpRelease, "", false},
		{valueobject.ContractStateDelivered, valueobject.ContractOpRelease, valueobject.ContractStateCompleted, true},
		{valueobject.ContractStateDelivered, valueobject.ContractOpDeliver, "", false},
		{valueobject.ContractStateDelivered, valueobject.ContractOpDispute, "", false},
		{valueobject.ContractStateDisputed, valueobject.ContractOpRelease, valueobject.ContractStateCompleted, true},
		{valueobject.ContractStateDisputed, valueobject.ContractOpCancel, valueobject.ContractStateCancelledRefunded, true},
		{valueobject.ContractStateCompleted, valueobject.ContractOpCancel, "", false},
		{valueobject.ContractStateCancelledRefunded, valueobject.ContractOpEscrow, "", false},
	}

	for _, tc := range cases {
		next, ok := tc.from.Next(tc.op)
		assert.Equal(t, tc.ok, ok, "%s --%s-->", tc.from, tc.op)
		if tc.ok {
			assert.Equal(t, tc.to, next)
			assert.True(t, next.IsValid())
		}
	}
}

func TestContractState_TerminalStates(t *testing.T) {
	assert.True(t, valueobject.ContractStateCompleted.IsTerminal())
	assert.True(t, valueobject.ContractStateCancelledUnfunded.IsTerminal())
	assert.True(t, valueobject.ContractStateCancelledRefunded.IsTerminal())
	assert.False(t, valueobject.ContractStateDisputed.IsTerminal())
	assert.False(t, valueobject.ContractStateDelivered.IsTerminal())
}

func TestProposalStatus_TerminalIsFinal(t *testing.T) {
	terminal := []valueobject.ProposalStatus{
		valueobject.ProposalStatusAccepted,
		valueobject.ProposalStatusRejected,
		valueobject.ProposalStatusWithdrawn,
		valueobject.ProposalStatusExpired,
	}
	for _, s := range terminal {
		assert.True(t, s.IsTerminal(), s)
		assert.False(t, s.CanTransitionTo(valueobject.ProposalStatusSubmitted), s)
	}
	assert.False(t, valueobject.ProposalStatusSubmitted.IsTerminal())
	assert.False(t, valueobject.ProposalStatusShortlisted.CanTransitionTo(valueobject.ProposalStatusShortlisted))
}

func TestTaskStatus_Transitions(t *testing.T) {
	assert.True(t, valueobject.TaskStatusDraft.CanTransitionTo(valueobject.TaskStatusOpen))
	assert.True(t, valueobject.TaskStatusOpen.CanTransitionTo(valueobject.TaskStatusExpired))
	assert.True(t, valueobject.TaskStatusContracted.CanTransitionTo(valueobject.TaskStatusCompleted))
	assert.False(t, valueobject.TaskStatusDraft.CanTransitionTo(valueobject.TaskStatusContracted))
	assert.False(t, valueobject.TaskStatusExpired.CanTransitionTo(valueobject.TaskStatusOpen))

	_, err := valueobject.NewTaskStatus("archived")
	assert.True(t, apperror.IsValidation(err))
}
