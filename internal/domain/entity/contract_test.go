package entity_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/timebank-backend/internal/domain/entity"
	"github.com/ignatzorin/timebank-backend/internal/domain/valueobject"
	"github.com/ignatzorin/timebank-backend/internal/pkg/apperror"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestTask(t *testing.T, requesterID uuid.UUID) *entity.Task {
	t.Helper()
	task, err := entity.NewTask(requesterID, entity.TaskParams{
		Title:          "Translate a landing page",
		Description:    "Need a careful translation of a marketing landing page into Russian.",
		Budget:         decimal.NewFromInt(50),
		Deadline:       testNow.Add(72 * time.Hour),
		RequiredSkills: []string{"Translation", "Russian"},
		Category:       "Translation",
	}, testNow)
	require.NoError(t, err)
	return task
}

func newTestContract(t *testing.T) *entity.Contract {
	t.Helper()
	task := newTestTask(t, uuid.New())
	require.NoError(t, task.Publish(nil, testNow))

	proposal, err := entity.NewProposal(task.ID, uuid.New(), 3, decimal.NewFromInt(40), "I can do it tomorrow", testNow)
	require.NoError(t, err)
	require.NoError(t, proposal.Accept(testNow))

	contract, err := entity.NewContract(task, proposal, testNow)
	require.NoError(t, err)
	return contract
}

func TestNewContract_CopiesTermsFromProposal(t *testing.T) {
	c := newTestContract(t)

	assert.Equal(t, valueobject.ContractStatusDraft, c.Status())
	assert.Equal(t, valueobject.PaymentPhaseUnfunded, c.Phase())
	assert.True(t, c.AgreedAmount.Equal(decimal.NewFromInt(40)))
	assert.True(t, c.Payment.Amount.Equal(c.AgreedAmount))
	assert.Equal(t, 180, c.AgreedMinutes)
	assert.Equal(t, testNow.Add(72*time.Hour), c.Deadline)
}

func TestNewContract_RequiresAcceptedProposal(t *testing.T) {
	task := newTestTask(t, uuid.New())
	proposal, err := entity.NewProposal(task.ID, uuid.New(), 1, decimal.NewFromInt(10), "hello", testNow)
	require.NoError(t, err)

	_, err = entity.NewContract(task, proposal, testNow)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestContract_PlanChecksRoleBeforeState(t *testing.T) {
	c := newTestContract(t)

	// исполнитель не может внести эскроу даже из подходящего состояния
	_, err := c.Plan(valueobject.ContractOpEscrow, c.ProviderID)
	assert.True(t, apperror.IsForbidden(err))

	// посторонний пользователь
	_, err = c.Plan(valueobject.ContractOpDispute, uuid.New())
	assert.True(t, apperror.IsForbidden(err))

	// правильная роль, неправильное состояние
	_, err = c.Plan(valueobject.ContractOpDeliver, c.ProviderID)
	assert.True(t, apperror.IsInvalidState(err))
	assert.Equal(t, valueobject.ContractStateDraft, c.State)
}

func TestContract_FullHappyPath(t *testing.T) {
	c := newTestContract(t)

	steps := []struct {
		op    valueobject.ContractOperation
		actor uuid.UUID
		want  valueobject.ContractState
	}{
		{valueobject.ContractOpEscrow, c.RequesterID, valueobject.ContractStateActive},
		{valueobject.ContractOpDeliver, c.ProviderID, valueobject.ContractStateDelivered},
		{valueobject.ContractOpRelease, c.RequesterID, valueobject.ContractStateCompleted},
	}
	for _, s := range steps {
		next, err := c.Plan(s.op, s.actor)
		require.NoError(t, err, s.op)
		c.Apply(s.op, next, s.actor, "", testNow)
		assert.Equal(t, s.want, c.State)
	}

	assert.NotNil(t, c.Payment.EscrowedAt)
	assert.NotNil(t, c.Payment.ReleasedAt)
	assert.Nil(t, c.Payment.RefundedAt)
	assert.NotNil(t, c.DeliveredAt)
	assert.NotNil(t, c.CompletedAt)
}

func TestContract_ProviderCannotCancelAfterDelivery(t *testing.T) {
	c := newTestContract(t)
	c.State = valueobject.ContractStateDelivered

	_, err := c.Plan(valueobject.ContractOpCancel, c.ProviderID)
	assert.True(t, apperror.IsForbidden(err))

	next, err := c.Plan(valueobject.ContractOpCancel, c.RequesterID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.ContractStateCancelledRefunded, next)
}

func TestContract_CancelRecordsReasonAndRefundTime(t *testing.T) {
	c := newTestContract(t)
	c.State = valueobject.ContractStateActive

	next, err := c.Plan(valueobject.ContractOpCancel, c.ProviderID)
	require.NoError(t, err)
	c.Apply(valueobject.ContractOpCancel, next, c.ProviderID, "", testNow)

	assert.Equal(t, valueobject.ContractStatusCancelled, c.Status())
	assert.Equal(t, valueobject.PaymentPhaseRefunded, c.Phase())
	assert.Equal(t, entity.CancelReasonProvider, c.CancelReason)
	assert.NotNil(t, c.Payment.RefundedAt)
}

func TestContract_CancelFromDraftStaysUnfunded(t *testing.T) {
	c := newTestContract(t)

	next, err := c.Plan(valueobject.ContractOpCancel, c.RequesterID)
	require.NoError(t, err)
	c.Apply(valueobject.ContractOpCancel, next, c.RequesterID, "", testNow)

	assert.Equal(t, valueobject.PaymentPhaseUnfunded, c.Phase())
	assert.Equal(t, entity.CancelReasonRequester, c.CancelReason)
	assert.Nil(t, c.Payment.RefundedAt)
}

func TestContract_DisputeStoresReason(t *testing.T) {
	c := newTestContract(t)
	c.State = valueobject.ContractStateActive

	next, err := c.Plan(valueobject.ContractOpDispute, c.RequesterID)
	require.NoError(t, err)
	c.Apply(valueobject.ContractOpDispute, next, c.RequesterID, "  work not started  ", testNow)

	assert.Equal(t, valueobject.ContractStateDisputed, c.State)
	assert.Equal(t, "work not started", c.DisputeReason)
	assert.Equal(t, valueobject.PaymentPhaseEscrowed, c.Phase())
}

func TestContract_CloneIsIndependent(t *testing.T) {
	c := newTestContract(t)
	c.Payment.EscrowedAt = &testNow

	cp := c.Clone()
	later := testNow.Add(time.Hour)
	*cp.Payment.EscrowedAt = later

	assert.Equal(t, testNow, *c.Payment.EscrowedAt)
}
