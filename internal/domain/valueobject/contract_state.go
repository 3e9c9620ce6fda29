package valueobject

import "github.com/ignatzorin/timebank-backend/internal/pkg/apperror"

type ContractStatus string

const (
	ContractStatusDraft     ContractStatus = "draft"
	ContractStatusActive    ContractStatus = "active"
	ContractStatusDelivered ContractStatus = "delivered"
	ContractStatusCompleted ContractStatus = "completed"
	ContractStatusCancelled ContractStatus = "cancelled"
	ContractStatusDisputed  ContractStatus = "disputed"
)

func (s ContractStatus) IsValid() bool {
	switch s {
	case ContractStatusDraft, ContractStatusActive, ContractStatusDelivered,
		ContractStatusCompleted, ContractStatusCancelled, ContractStatusDisputed:
		return true
	}
	return false
}

type PaymentPhase string

const (
	PaymentPhaseUnfunded PaymentPhase = "unfunded"
	PaymentPhaseEscrowed PaymentPhase = "escrowed"
	PaymentPhaseReleased PaymentPhase = "released"
	PaymentPhaseRefunded PaymentPhase = "refunded"
)

// ContractState - совместное состояние контракта и его платежа.
// Статус и фаза наружу отдаются только как производные от него.
type ContractState string

const (
	ContractStateDraft             ContractState = "draft"
	ContractStateActive            ContractState = "active"
	ContractStateDelivered         ContractState = "delivered"
	ContractStateCompleted         ContractState = "completed"
	ContractStateCancelledUnfunded ContractState = "cancelled_unfunded"
	ContractStateCancelledRefunded ContractState = "cancelled_refunded"
	ContractStateDisputed          ContractState = "disputed"
)

type statePair struct {
	status ContractStatus
	phase  PaymentPhase
}

var contractStatePairs = map[ContractState]statePair{
	ContractStateDraft:             {ContractStatusDraft, PaymentPhaseUnfunded},
	ContractStateActive:            {ContractStatusActive, PaymentPhaseEscrowed},
	ContractStateDelivered:         {ContractStatusDelivered, PaymentPhaseEscrowed},
	ContractStateCompleted:         {ContractStatusCompleted, PaymentPhaseReleased},
	ContractStateCancelledUnfunded: {ContractStatusCancelled, PaymentPhaseUnfunded},
	ContractStateCancelledRefunded: {ContractStatusCancelled, PaymentPhaseRefunded},
	ContractStateDisputed:          {ContractStatusDisputed, PaymentPhaseEscrowed},
}

// AllContractStates перечисляет все допустимые совместные состояния.
func AllContractStates() []ContractState {
	return []ContractState{
		ContractStateDraft, ContractStateActive, ContractStateDelivered, ContractStateCompleted,
		ContractStateCancelledUnfunded, ContractStateCancelledRefunded, ContractStateDisputed,
	}
}

func (s ContractState) IsValid() bool {
	_, ok := contractStatePairs[s]
	return ok
}

func (s ContractState) Status() ContractStatus {
	return contractStatePairs[s].status
}

func (s ContractState) Phase() PaymentPhase {
	return contractStatePairs[s].phase
}

func (s ContractState) IsTerminal() bool {
	return len(contractTransitions[s]) == 0
}

// IsFunded: деньги заказчика сейчас лежат в эскроу.
func (s ContractState) IsFunded() bool {
	return s.Phase() == PaymentPhaseEscrowed
}

// JoinContractState собирает совместное состояние из пары столбцов хранилища.
// Пара, которой нет в таблице, отвергается.
func JoinContractState(status ContractStatus, phase PaymentPhase) (ContractState, error) {
	for state, pair := range contractStatePairs {
		if pair.status == status && pair.phase == phase {
			return state, nil
		}
	}
	return "", apperror.New(apperror.ErrCodeInternal, "недопустимая комбинация статуса контракта и фазы платежа").
		WithDetail("status", string(status)).
		WithDetail("phase", string(phase))
}

type ContractOperation string

const (
	ContractOpEscrow  ContractOperation = "escrow"
	ContractOpDeliver ContractOperation = "deliver"
	ContractOpRelease ContractOperation = "release"
	ContractOpCancel  ContractOperation = "cancel"
	ContractOpDispute ContractOperation = "dispute"
)

// NewContractOperation разбирает имя операции. refund - синоним cancel.
func NewContractOperation(op string) (ContractOperation, error) {
	switch o := ContractOperation(op); o {
	case ContractOpEscrow, ContractOpDeliver, ContractOpRelease, ContractOpCancel, ContractOpDispute:
		return o, nil
	case "refund":
		return ContractOpCancel, nil
	}
	return "", apperror.Validation("operation", "неизвестная операция над контрактом")
}

var contractTransitions = map[ContractState]map[ContractOperation]ContractState{
	ContractStateDraft: {
		ContractOpEscrow: ContractStateActive,
		ContractOpCancel: ContractStateCancelledUnfunded,
	},
	ContractStateActive: {
		ContractOpDeliver: ContractStateDelivered,
		ContractOpCancel:  ContractStateCancelledRefunded,
		ContractOpDispute: ContractStateDisputed,
	},
	ContractStateDelivered: {
		ContractOpRelease: ContractStateCompleted,
		ContractOpCancel:  ContractStateCancelledRefunded,
	},
	ContractStateDisputed: {
		ContractOpRelease: ContractStateCompleted,
		ContractOpCancel:  ContractStateCancelledRefunded,
	},
	ContractStateCompleted:         {},
	ContractStateCancelledUnfunded: {},
	ContractStateCancelledRefunded: {},
}

// Next возвращает состояние после операции или false, если из текущего она недоступна.
func (s ContractState) Next(op ContractOperation) (ContractState, bool) {
	next, ok := contractTransitions[s][op]
	return next, ok
}
