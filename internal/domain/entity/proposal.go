package entity

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/timebank-backend/internal/domain/valueobject"
	"github.com/ignatzorin/timebank-backend/internal/pkg/apperror"
)

const (
	MinProposalHours         = 1
	MaxProposalHours         = 1000
	MaxProposalMessageLength = 5000
)

type Proposal struct {
	ID             uuid.UUID
	TaskID         uuid.UUID
	ProviderID     uuid.UUID
	EstimatedHours int
	BidAmount      decimal.Decimal
	Message        string
	Status         valueobject.ProposalStatus
	RejectReason   valueobject.RejectReason
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func NewProposal(taskID, providerID uuid.UUID, estimatedHours int, bid decimal.Decimal, message string, now time.Time) (*Proposal, error) {
	if estimatedHours < MinProposalHours || estimatedHours > MaxProposalHours {
		return nil, apperror.Validation("estimatedHours", "оценка должна быть от 1 до 1000 часов")
	}
	bid, err := valueobject.NewCoinsInRange("bidAmount", bid, valueobject.MinBid, valueobject.MaxBid)
	if err != nil {
		return nil, err
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperror.Validation("message", "сопроводительное сообщение обязательно")
	}
	if utf8.RuneCountInString(message) > MaxProposalMessageLength {
		return nil, apperror.Validation("message", "сообщение слишком длинное")
	}

	return &Proposal{
		ID:             uuid.New(),
		TaskID:         taskID,
		ProviderID:     providerID,
		EstimatedHours: estimatedHours,
		BidAmount:      bid,
		Message:        message,
		Status:         valueobject.ProposalStatusSubmitted,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (p *Proposal) transition(to valueobject.ProposalStatus, op string, now time.Time) error {
	if !p.Status.CanTransitionTo(to) {
		return apperror.InvalidState("proposal", string(p.Status), op)
	}
	p.Status = to
	p.UpdatedAt = now
	return nil
}

func (p *Proposal) Shortlist(now time.Time) error {
	return p.transition(valueobject.ProposalStatusShortlisted, "shortlist", now)
}

func (p *Proposal) Accept(now time.Time) error {
	return p.transition(valueobject.ProposalStatusAccepted, "accept", now)
}

func (p *Proposal) Reject(reason valueobject.RejectReason, now time.Time) error {
	if err := p.transition(valueobject.ProposalStatusRejected, "reject", now); err != nil {
		return err
	}
	p.RejectReason = reason
	return nil
}

func (p *Proposal) Withdraw(now time.Time) error {
	return p.transition(valueobject.ProposalStatusWithdrawn, "withdraw", now)
}

func (p *Proposal) Expire(now time.Time) error {
	return p.transition(valueobject.ProposalStatusExpired, "expire", now)
}

func (p *Proposal) IsTerminal() bool {
	return p.Status.IsTerminal()
}

func (p *Proposal) IsOwnedBy(userID uuid.UUID) bool {
	return p.ProviderID == userID
}

func (p *Proposal) ProposedMinutes() int {
	return p.EstimatedHours * 60
}

func (p *Proposal) Clone() *Proposal {
	cp := *p
	return &cp
}
