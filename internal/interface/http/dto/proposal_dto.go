package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/timebank-backend/internal/domain/entity"
	"github.com/ignatzorin/timebank-backend/internal/usecase/proposal"
)

type SubmitProposalRequest struct {
	EstimatedHours int             `json:"estimatedHours" binding:"required"`
	BidAmount      decimal.Decimal `json:"bidAmount" binding:"required"`
	Message        string          `json:"message" binding:"required"`
}

type ProposalResponse struct {
	ID             uuid.UUID       `json:"id"`
	TaskID         uuid.UUID       `json:"taskId"`
	ProviderID     uuid.UUID       `json:"providerId"`
	EstimatedHours int             `json:"estimatedHours"`
	BidAmount      decimal.Decimal `json:"bidAmount"`
	Message        string          `json:"message"`
	Status         string          `json:"status"`
	RejectReason   string          `json:"rejectReason,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

type AcceptResponse struct {
	Proposal ProposalResponse `json:"proposal"`
	Contract ContractResponse `json:"contract"`
}

func ToProposalResponse(p *entity.Proposal) ProposalResponse {
	return ProposalResponse{
		ID:             p.ID,
		TaskID:         p.TaskID,
		ProviderID:     p.ProviderID,
		EstimatedHours: p.EstimatedHours,
		BidAmount:      p.BidAmount,
		Message:        p.Message,
		Status:         string(p.Status),
		RejectReason:   string(p.RejectReason),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func ToProposalResponses(proposals []*entity.Proposal) []ProposalResponse {
	responses := make([]ProposalResponse, 0, len(proposals))
	for _, p := range proposals {
		responses = append(responses, ToProposalResponse(p))
	}
	return responses
}

func ToAcceptResponse(res *proposal.AcceptResult) AcceptResponse {
	return AcceptResponse{
		Proposal: ToProposalResponse(res.Proposal),
		Contract: ToContractResponse(res.Contract),
	}
}
