package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/timebank-backend/internal/domain/valueobject"
	"github.com/ignatzorin/timebank-backend/internal/pkg/apperror"
)

type ContractRole string

const (
	RoleRequester ContractRole = "requester"
	RoleProvider  ContractRole = "provider"
)

type CancelReason string

const (
	CancelReasonNone      CancelReason = ""
	CancelReasonRequester CancelReason = "requester_cancelled"
	CancelReasonProvider  CancelReason = "provider_cancelled"
)

const MaxDisputeReasonLength = 2000

// Payment - платёж контракта. Сумма фиксируется при создании и не пересчитывается.
type Payment struct {
	ID         uuid.UUID
	Amount     decimal.Decimal
	EscrowedAt *time.Time
	ReleasedAt *time.Time
	RefundedAt *time.Time
}

// Contract и Payment образуют один агрегат: статус и фаза меняются только вместе через State.
type Contract struct {
	ID            uuid.UUID
	TaskID        uuid.UUID
	ProposalID    uuid.UUID
	RequesterID   uuid.UUID
	ProviderID    uuid.UUID
	AgreedAmount  decimal.Decimal
	AgreedMinutes int
	State         valueobject.ContractState
	Deadline      time.Time
	Payment       Payment
	CancelReason  CancelReason
	DisputeReason string
	ActivatedAt   *time.Time
	DeliveredAt   *time.Time
	CompletedAt   *time.Time
	CancelledAt   *time.Time
	DisputedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewContract создаёт контракт из принятого предложения в состоянии (draft, unfunded).
func NewContract(task *Task, proposal *Proposal, now time.Time) (*Contract, error) {
	if proposal.TaskID != task.ID {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "предложение относится к другой задаче")
	}
	if proposal.Status != valueobject.ProposalStatusAccepted {
		return nil, apperror.InvalidState("proposal", string(proposal.Status), "contract")
	}

	return &Contract{
		ID:            uuid.New(),
		TaskID:        task.ID,
		ProposalID:    proposal.ID,
		RequesterID:   task.RequesterID,
		ProviderID:    proposal.ProviderID,
		AgreedAmount:  proposal.BidAmount,
		AgreedMinutes: proposal.ProposedMinutes(),
		State:         valueobject.ContractStateDraft,
		Deadline:      task.Deadline,
		Payment: Payment{
			ID:     uuid.New(),
			Amount: proposal.BidAmount,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (c *Contract) Status() valueobject.ContractStatus {
	return c.State.Status()
}

func (c *Contract) Phase() valueobject.PaymentPhase {
	return c.State.Phase()
}

// RoleOf возвращает роль пользователя в контракте.
func (c *Contract) RoleOf(userID uuid.UUID) (ContractRole, bool) {
	switch userID {
	case c.RequesterID:
		return RoleRequester, true
	case c.ProviderID:
		return RoleProvider, true
	}
	return "", false
}

func (c *Contract) IsParticipant(userID uuid.UUID) bool {
	_, ok := c.RoleOf(userID)
	return ok
}

var operationRoles = map[valueobject.ContractOperation][]ContractRole{
	valueobject.ContractOpEscrow:  {RoleRequester},
	valueobject.ContractOpDeliver: {RoleProvider},
	valueobject.ContractOpRelease: {RoleRequester},
	valueobject.ContractOpCancel:  {RoleRequester, RoleProvider},
	valueobject.ContractOpDispute: {RoleRequester, RoleProvider},
}

func roleAllowed(op valueobject.ContractOperation, role ContractRole) bool {
	for _, r := range operationRoles[op] {
		if r == role {
			return true
		}
	}
	return false
}

// Plan проверяет права участника и совместное состояние и возвращает следующее состояние.
// Контракт не изменяется.
func (c *Contract) Plan(op valueobject.ContractOperation, actorID uuid.UUID) (valueobject.ContractState, error) {
	role, ok := c.RoleOf(actorID)
	if !ok {
		return "", apperror.New(apperror.ErrCodeForbidden, "вы не участник этого контракта")
	}
	if !roleAllowed(op, role) {
		return "", apperror.New(apperror.ErrCodeForbidden, "операция недоступна для вашей роли в контракте").
			WithDetail("role", string(role)).
			WithDetail("operation", string(op))
	}

	next, ok := c.State.Next(op)
	if !ok {
		return "", apperror.InvalidState("contract", string(c.State), string(op)).
			WithDetail("status", string(c.Status())).
			WithDetail("phase", string(c.Phase()))
	}

	// исполнитель может отменить контракт только до сдачи работы
	if op == valueobject.ContractOpCancel && role == RoleProvider && c.State == valueobject.ContractStateDelivered {
		return "", apperror.New(apperror.ErrCodeForbidden, "после сдачи работы отменить контракт может только заказчик").
			WithDetail("role", string(role)).
			WithDetail("operation", string(op))
	}
	return next, nil
}

// Apply переводит контракт в next, ранее полученное из Plan, и проставляет отметки времени.
func (c *Contract) Apply(op valueobject.ContractOperation, next valueobject.ContractState, actorID uuid.UUID, reason string, now time.Time) {
	prevPhase := c.Phase()
	c.State = next

	switch op {
	case valueobject.ContractOpEscrow:
		c.ActivatedAt = &now
		c.Payment.EscrowedAt = &now
	case valueobject.ContractOpDeliver:
		c.DeliveredAt = &now
	case valueobject.ContractOpRelease:
		c.CompletedAt = &now
		c.Payment.ReleasedAt = &now
	case valueobject.ContractOpDispute:
		c.DisputedAt = &now
		c.DisputeReason = truncateReason(reason)
	case valueobject.ContractOpCancel:
		c.CancelledAt = &now
		if prevPhase == valueobject.PaymentPhaseEscrowed {
			c.Payment.RefundedAt = &now
		}
		if role, _ := c.RoleOf(actorID); role == RoleProvider {
			c.CancelReason = CancelReasonProvider
		} else {
			c.CancelReason = CancelReasonRequester
		}
	}
	c.UpdatedAt = now
}

func truncateReason(reason string) string {
	reason = strings.TrimSpace(reason)
	if r := []rune(reason); len(r) > MaxDisputeReasonLength {
		return string(r[:MaxDisputeReasonLength])
	}
	return reason
}

func (c *Contract) Clone() *Contract {
	cp := *c
	cp.Payment.EscrowedAt = cloneTime(c.Payment.EscrowedAt)
	cp.Payment.ReleasedAt = cloneTime(c.Payment.ReleasedAt)
	cp.Payment.RefundedAt = cloneTime(c.Payment.RefundedAt)
	cp.ActivatedAt = cloneTime(c.ActivatedAt)
	cp.DeliveredAt = cloneTime(c.DeliveredAt)
	cp.CompletedAt = cloneTime(c.CompletedAt)
	cp.CancelledAt = cloneTime(c.CancelledAt)
	cp.DisputedAt = cloneTime(c.DisputedAt)
	return &cp
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
