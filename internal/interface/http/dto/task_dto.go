package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/timebank-backend/internal/domain/entity"
)

type TaskRequest struct {
	Title          string          `json:"title" binding:"required"`
	Description    string          `json:"description" binding:"required"`
	Budget         decimal.Decimal `json:"budget" binding:"required"`
	Deadline       time.Time       `json:"deadline" binding:"required"`
	RequiredSkills []string        `json:"requiredSkills" binding:"required"`
	Category       string          `json:"category" binding:"required"`
	Complexity     string          `json:"complexity"`
	Urgency        string          `json:"urgency"`
}

func (r TaskRequest) Params() entity.TaskParams {
	return entity.TaskParams{
		Title:          r.Title,
		Description:    r.Description,
		Budget:         r.Budget,
		Deadline:       r.Deadline,
		RequiredSkills: r.RequiredSkills,
		Category:       r.Category,
		Complexity:     r.Complexity,
		Urgency:        r.Urgency,
	}
}

type TaskResponse struct {
	ID             uuid.UUID       `json:"id"`
	RequesterID    uuid.UUID       `json:"requesterId"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Budget         decimal.Decimal `json:"budget"`
	Deadline       time.Time       `json:"deadline"`
	RequiredSkills []string        `json:"requiredSkills"`
	Category       string          `json:"category"`
	Complexity     string          `json:"complexity"`
	Urgency        string          `json:"urgency"`
	Status         string          `json:"status"`
	ProposalCount  int             `json:"proposalCount"`
	PublishedAt    *time.Time      `json:"publishedAt,omitempty"`
	ClosedAt       *time.Time      `json:"closedAt,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func ToTaskResponse(t *entity.Task) TaskResponse {
	return TaskResponse{
		ID:             t.ID,
		RequesterID:    t.RequesterID,
		Title:          t.Title,
		Description:    t.Description,
		Budget:         t.Budget,
		Deadline:       t.Deadline,
		RequiredSkills: t.RequiredSkills,
		Category:       string(t.Category),
		Complexity:     string(t.Complexity),
		Urgency:        string(t.Urgency),
		Status:         string(t.Status),
		ProposalCount:  t.ProposalCount,
		PublishedAt:    t.PublishedAt,
		ClosedAt:       t.ClosedAt,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func ToTaskResponses(tasks []*entity.Task) []TaskResponse {
	responses := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		responses = append(responses, ToTaskResponse(t))
	}
	return responses
}
