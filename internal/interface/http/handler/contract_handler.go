package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/timebank-backend/internal/domain/valueobject"
	"github.com/ignatzorin/timebank-backend/internal/interface/http/dto"
	"github.com/ignatzorin/timebank-backend/internal/interface/http/response"
	"github.com/ignatzorin/timebank-backend/internal/usecase/contract"
)

type ContractHandler struct {
	transitionUC *contract.TransitionContractUseCase
	getUC        *contract.GetContractUseCase
	listUC       *contract.ListContractsUseCase
}

func NewContractHandler(
	transitionUC *contract.TransitionContractUseCase,
	getUC *contract.GetContractUseCase,
	listUC *contract.ListContractsUseCase,
) *ContractHandler {
	return &ContractHandler{transitionUC: transitionUC, getUC: getUC, listUC: listUC}
}

// Escrow обрабатывает POST /api/contracts/:id/payment/escrow.
func (h *ContractHandler) Escrow(c *gin.Context) {
	h.transition(c, valueobject.ContractOpEscrow, "")
}

// Deliver обрабатывает POST /api/contracts/:id/deliver.
func (h *ContractHandler) Deliver(c *gin.Context) {
	h.transition(c, valueobject.ContractOpDeliver, "")
}

// Release обрабатывает POST /api/contracts/:id/payment/release.
func (h *ContractHandler) Release(c *gin.Context) {
	h.transition(c, valueobject.ContractOpRelease, "")
}

// Cancel обслуживает и /payment/refund, и /cancel: это одна операция.
func (h *ContractHandler) Cancel(c *gin.Context) {
	h.transition(c, valueobject.ContractOpCancel, "")
}

// Dispute обрабатывает POST /api/contracts/:id/dispute {reason}.
func (h *ContractHandler) Dispute(c *gin.Context) {
	var req dto.DisputeRequest
	if !bindJSON(c, &req) {
		return
	}
	h.transition(c, valueobject.ContractOpDispute, req.Reason)
}

func (h *ContractHandler) transition(c *gin.Context, op valueobject.ContractOperation, reason string) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	contractID, ok := pathID(c, "id")
	if !ok {
		return
	}

	updated, err := h.transitionUC.Execute(c.Request.Context(), contract.TransitionInput{
		ContractID: contractID,
		ActorID:    userID,
		Operation:  op,
		Reason:     reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToContractResponse(updated))
}

func (h *ContractHandler) GetContract(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	contractID, ok := pathID(c, "id")
	if !ok {
		return
	}

	found, err := h.getUC.Execute(c.Request.Context(), contractID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToContractResponse(found))
}

// ListContracts обрабатывает GET /api/contracts?role=&status=.
func (h *ContractHandler) ListContracts(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	list, err := h.listUC.Execute(c.Request.Context(), contract.ListContractsInput{
		UserID: userID,
		Role:   c.Query("role"),
		Status: c.Query("status"),
		Page:   parsePage(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, dto.ToContractResponses(list.Contracts), list.Total, list.Page.Limit, list.Page.Offset)
}
