package valueobject

import "github.com/ignatzorin/timebank-backend/internal/pkg/apperror"

type TaskStatus string

const (
	TaskStatusDraft      TaskStatus = "draft"
	TaskStatusOpen       TaskStatus = "open"
	TaskStatusContracted TaskStatus = "contracted"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
	TaskStatusExpired    TaskStatus = "expired"
)

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusDraft, TaskStatusOpen, TaskStatusContracted, TaskStatusCompleted, TaskStatusCancelled, TaskStatusExpired:
		return true
	}
	return false
}

var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskStatusDraft:      {TaskStatusOpen, TaskStatusCancelled},
	TaskStatusOpen:       {TaskStatusContracted, TaskStatusCancelled, TaskStatusExpired},
	TaskStatusContracted: {TaskStatusCompleted, TaskStatusCancelled},
	TaskStatusCompleted:  {},
	TaskStatusCancelled:  {},
	TaskStatusExpired:    {},
}

func (s TaskStatus) CanTransitionTo(newStatus TaskStatus) bool {
	for _, status := range taskTransitions[s] {
		if status == newStatus {
			return true
		}
	}
	return false
}

func (s TaskStatus) IsTerminal() bool {
	return len(taskTransitions[s]) == 0
}

func NewTaskStatus(status string) (TaskStatus, error) {
	s := TaskStatus(status)
	if !s.IsValid() {
		return "", apperror.Validation("status", "некорректный статус задачи")
	}
	return s, nil
}

type ProposalStatus string

const (
	ProposalStatusSubmitted   ProposalStatus = "submitted"
	ProposalStatusShortlisted ProposalStatus = "shortlisted"
	ProposalStatusAccepted    ProposalStatus = "accepted"
	ProposalStatusRejected    ProposalStatus = "rejected"
	ProposalStatusWithdrawn   ProposalStatus = "withdrawn"
	ProposalStatusExpired     ProposalStatus = "expired"
)

func (s ProposalStatus) IsValid() bool {
	switch s {
	case ProposalStatusSubmitted, ProposalStatusShortlisted, ProposalStatusAccepted,
		ProposalStatusRejected, ProposalStatusWithdrawn, ProposalStatusExpired:
		return true
	}
	return false
}

var proposalTransitions = map[ProposalStatus][]ProposalStatus{
	ProposalStatusSubmitted: {
		ProposalStatusShortlisted, ProposalStatusAccepted, ProposalStatusRejected,
		ProposalStatusWithdrawn, ProposalStatusExpired,
	},
	ProposalStatusShortlisted: {
		ProposalStatusAccepted, ProposalStatusRejected, ProposalStatusWithdrawn, ProposalStatusExpired,
	},
	ProposalStatusAccepted:  {},
	ProposalStatusRejected:  {},
	ProposalStatusWithdrawn: {},
	ProposalStatusExpired:   {},
}

func (s ProposalStatus) CanTransitionTo(newStatus ProposalStatus) bool {
	for _, status := range proposalTransitions[s] {
		if status == newStatus {
			return true
		}
	}
	return false
}

// IsTerminal: из терминального статуса переходов нет.
func (s ProposalStatus) IsTerminal() bool {
	return len(proposalTransitions[s]) == 0
}

func NewProposalStatus(status string) (ProposalStatus, error) {
	s := ProposalStatus(status)
	if !s.IsValid() {
		return "", apperror.Validation("status", "некорректный статус предложения")
	}
	return s, nil
}

// RejectReason отличает отклонение заказчиком от автоматического при принятии конкурента.
type RejectReason string

const (
	RejectReasonNone       RejectReason = ""
	RejectReasonDeclined   RejectReason = "declined"
	RejectReasonSuperseded RejectReason = "superseded"
)

type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeEscrowHold TransactionType = "escrow_hold"
	TransactionTypeRelease    TransactionType = "release"
	TransactionTypeRefund     TransactionType = "refund"
	TransactionTypeFee        TransactionType = "fee"
)

func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypeEscrowHold,
		TransactionTypeRelease, TransactionTypeRefund, TransactionTypeFee:
		return true
	}
	return false
}

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusReversed  TransactionStatus = "reversed"
)

func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusCompleted, TransactionStatusFailed, TransactionStatusReversed:
		return true
	}
	return false
}
