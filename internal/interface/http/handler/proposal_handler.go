package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/timebank-backend/internal/domain/entity"
	"github.com/ignatzorin/timebank-backend/internal/domain/repository"
	"github.com/ignatzorin/timebank-backend/internal/interface/http/dto"
	"github.com/ignatzorin/timebank-backend/internal/interface/http/response"
	"github.com/ignatzorin/timebank-backend/internal/usecase/proposal"
)

type ProposalHandler struct {
	submitUC    *proposal.SubmitProposalUseCase
	shortlistUC *proposal.ShortlistProposalUseCase
	rejectUC    *proposal.RejectProposalUseCase
	withdrawUC  *proposal.WithdrawProposalUseCase
	acceptUC    *proposal.AcceptProposalUseCase
	getUC       *proposal.GetProposalUseCase
	listTaskUC  *proposal.ListTaskProposalsUseCase
	listMyUC    *proposal.ListMyProposalsUseCase
	inboxUC     *proposal.ListInboxUseCase
}

type ProposalUseCases struct {
	Submit    *proposal.SubmitProposalUseCase
	Shortlist *proposal.ShortlistProposalUseCase
	Reject    *proposal.RejectProposalUseCase
	Withdraw  *proposal.WithdrawProposalUseCase
	Accept    *proposal.AcceptProposalUseCase
	Get       *proposal.GetProposalUseCase
	ListTask  *proposal.ListTaskProposalsUseCase
	ListMy    *proposal.ListMyProposalsUseCase
	Inbox     *proposal.ListInboxUseCase
}

func NewProposalHandler(uc ProposalUseCases) *ProposalHandler {
	return &ProposalHandler{
		submitUC:    uc.Submit,
		shortlistUC: uc.Shortlist,
		rejectUC:    uc.Reject,
		withdrawUC:  uc.Withdraw,
		acceptUC:    uc.Accept,
		getUC:       uc.Get,
		listTaskUC:  uc.ListTask,
		listMyUC:    uc.ListMy,
		inboxUC:     uc.Inbox,
	}
}

// SubmitProposal обрабатывает POST /api/tasks/:id/proposals.
func (h *ProposalHandler) SubmitProposal(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.SubmitProposalRequest
	if !bindJSON(c, &req) {
		return
	}

	created, err := h.submitUC.Execute(c.Request.Context(), proposal.SubmitProposalInput{
		TaskID:         taskID,
		ProviderID:     userID,
		EstimatedHours: req.EstimatedHours,
		BidAmount:      req.BidAmount,
		Message:        req.Message,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToProposalResponse(created))
}

// AcceptProposal обрабатывает POST /api/proposals/:id/accept и возвращает созданный контракт.
func (h *ProposalHandler) AcceptProposal(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	proposalID, ok := pathID(c, "id")
	if !ok {
		return
	}

	res, err := h.acceptUC.Execute(c.Request.Context(), proposalID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToAcceptResponse(res))
}

func (h *ProposalHandler) ShortlistProposal(c *gin.Context) {
	h.proposalAction(c, h.shortlistUC.Execute)
}

func (h *ProposalHandler) RejectProposal(c *gin.Context) {
	h.proposalAction(c, h.rejectUC.Execute)
}

func (h *ProposalHandler) WithdrawProposal(c *gin.Context) {
	h.proposalAction(c, h.withdrawUC.Execute)
}

func (h *ProposalHandler) GetProposal(c *gin.Context) {
	h.proposalAction(c, h.getUC.Execute)
}

// proposalAction - общий путь для операций вида (proposalID, userID) -> proposal.
func (h *ProposalHandler) proposalAction(c *gin.Context, run func(ctx context.Context, proposalID, userID uuid.UUID) (*entity.Proposal, error)) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	proposalID, ok := pathID(c, "id")
	if !ok {
		return
	}

	p, err := run(c.Request.Context(), proposalID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToProposalResponse(p))
}

// ListTaskProposals обрабатывает GET /api/tasks/:id/proposals (только владелец задачи).
func (h *ProposalHandler) ListTaskProposals(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	list, err := h.listTaskUC.Execute(c.Request.Context(), taskID, userID, c.Query("status"), parsePage(c))
	h.writeList(c, list, err)
}

func (h *ProposalHandler) ListMyProposals(c *gin.Context) {
	h.listForUser(c, h.listMyUC.Execute)
}

func (h *ProposalHandler) ListInbox(c *gin.Context) {
	h.listForUser(c, h.inboxUC.Execute)
}

func (h *ProposalHandler) listForUser(c *gin.Context, run func(ctx context.Context, userID uuid.UUID, status string, page repository.Page) (*proposal.ProposalList, error)) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	list, err := run(c.Request.Context(), userID, c.Query("status"), parsePage(c))
	h.writeList(c, list, err)
}

func (h *ProposalHandler) writeList(c *gin.Context, list *proposal.ProposalList, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, dto.ToProposalResponses(list.Proposals), list.Total, list.Page.Limit, list.Page.Offset)
}
