package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/timebank-backend/internal/interface/http/dto"
	"github.com/ignatzorin/timebank-backend/internal/interface/http/response"
	"github.com/ignatzorin/timebank-backend/internal/usecase/wallet"
)

type WalletHandler struct {
	balanceUC  *wallet.GetBalanceUseCase
	depositUC  *wallet.DepositUseCase
	withdrawUC *wallet.WithdrawUseCase
	listTxUC   *wallet.ListTransactionsUseCase
	getTxUC    *wallet.GetTransactionUseCase
}

func NewWalletHandler(
	balanceUC *wallet.GetBalanceUseCase,
	depositUC *wallet.DepositUseCase,
	withdrawUC *wallet.WithdrawUseCase,
	listTxUC *wallet.ListTransactionsUseCase,
	getTxUC *wallet.GetTransactionUseCase,
) *WalletHandler {
	return &WalletHandler{
		balanceUC:  balanceUC,
		depositUC:  depositUC,
		withdrawUC: withdrawUC,
		listTxUC:   listTxUC,
		getTxUC:    getTxUC,
	}
}

// GetWallet обрабатывает GET /api/wallet.
func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	w, err := h.balanceUC.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToWalletResponse(w))
}

// Deposit обрабатывает POST /api/wallet/deposit {amount}.
func (h *WalletHandler) Deposit(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.AmountRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.depositUC.Execute(c.Request.Context(), userID, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toMoveResponse(res))
}

// Withdraw создаёт заявку на вывод в статусе pending.
func (h *WalletHandler) Withdraw(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.AmountRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.withdrawUC.Execute(c.Request.Context(), userID, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toMoveResponse(res))
}

// ListTransactions обрабатывает GET /api/transactions?type=income|expense|<тип>.
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	list, err := h.listTxUC.Execute(c.Request.Context(), userID, c.Query("type"), parsePage(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, dto.ToTransactionResponses(list.Transactions), list.Total, list.Page.Limit, list.Page.Offset)
}

func (h *WalletHandler) GetTransaction(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "некорректный идентификатор транзакции")
		return
	}

	tx, err := h.getTxUC.Execute(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToTransactionResponse(tx))
}

func toMoveResponse(res *wallet.MoveResult) dto.MoveResponse {
	return dto.MoveResponse{
		Wallet:      dto.ToWalletResponse(res.Wallet),
		Transaction: dto.ToTransactionResponse(res.Transaction),
	}
}
