package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/timebank-backend/internal/domain/entity"
)

type DisputeRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type PaymentResponse struct {
	ID         uuid.UUID       `json:"id"`
	Amount     decimal.Decimal `json:"amount"`
	Phase      string          `json:"phase"`
	EscrowedAt *time.Time      `json:"escrowedAt,omitempty"`
	ReleasedAt *time.Time      `json:"releasedAt,omitempty"`
	RefundedAt *time.Time      `json:"refundedAt,omitempty"`
}

// ContractResponse отдаёт статус и фазу по отдельности, как их видит клиент.
type ContractResponse struct {
	ID            uuid.UUID       `json:"id"`
	TaskID        uuid.UUID       `json:"taskId"`
	ProposalID    uuid.UUID       `json:"proposalId"`
	RequesterID   uuid.UUID       `json:"requesterId"`
	ProviderID    uuid.UUID       `json:"providerId"`
	AgreedAmount  decimal.Decimal `json:"agreedAmount"`
	AgreedMinutes int             `json:"agreedMinutes"`
	Status        string          `json:"status"`
	Deadline      time.Time       `json:"deadline"`
	Payment       PaymentResponse `json:"payment"`
	CancelReason  string          `json:"cancelReason,omitempty"`
	DisputeReason string          `json:"disputeReason,omitempty"`
	ActivatedAt   *time.Time      `json:"activatedAt,omitempty"`
	DeliveredAt   *time.Time      `json:"deliveredAt,omitempty"`
	CompletedAt   *time.Time      `json:"completedAt,omitempty"`
	CancelledAt   *time.Time      `json:"cancelledAt,omitempty"`
	DisputedAt    *time.Time      `json:"disputedAt,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func ToContractResponse(c *entity.Contract) ContractResponse {
	return ContractResponse{
		ID:            c.ID,
		TaskID:        c.TaskID,
		ProposalID:    c.ProposalID,
		RequesterID:   c.RequesterID,
		ProviderID:    c.ProviderID,
		AgreedAmount:  c.AgreedAmount,
		AgreedMinutes: c.AgreedMinutes,
		Status:        string(c.Status()),
		Deadline:      c.Deadline,
		Payment: PaymentResponse{
			ID:         c.Payment.ID,
			Amount:     c.Payment.Amount,
			Phase:      string(c.Phase()),
			EscrowedAt: c.Payment.EscrowedAt,
			ReleasedAt: c.Payment.ReleasedAt,
			RefundedAt: c.Payment.RefundedAt,
		},
		CancelReason:  string(c.CancelReason),
		DisputeReason: c.DisputeReason,
		ActivatedAt:   c.ActivatedAt,
		DeliveredAt:   c.DeliveredAt,
		CompletedAt:   c.CompletedAt,
		CancelledAt:   c.CancelledAt,
		DisputedAt:    c.DisputedAt,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func ToContractResponses(contracts []*entity.Contract) []ContractResponse {
	responses := make([]ContractResponse, 0, len(contracts))
	for _, c := range contracts {
		responses = append(responses, ToContractResponse(c))
	}
	return responses
}
