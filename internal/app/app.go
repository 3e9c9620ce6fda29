// Package app собирает use case, обработчики и фоновые задачи поверх выбранного хранилища.
package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/timebank-backend/internal/config"
	"github.com/ignatzorin/timebank-backend/internal/domain/event"
	"github.com/ignatzorin/timebank-backend/internal/infrastructure/ai"
	"github.com/ignatzorin/timebank-backend/internal/infrastructure/notify"
	"github.com/ignatzorin/timebank-backend/internal/interface/http/handler"
	"github.com/ignatzorin/timebank-backend/internal/interface/http/router"
	"github.com/ignatzorin/timebank-backend/internal/ledger"
	"github.com/ignatzorin/timebank-backend/internal/pricing"
	"github.com/ignatzorin/timebank-backend/internal/service"
	"github.com/ignatzorin/timebank-backend/internal/sweep"
	"github.com/ignatzorin/timebank-backend/internal/usecase/contract"
	"github.com/ignatzorin/timebank-backend/internal/usecase/proposal"
	"github.com/ignatzorin/timebank-backend/internal/usecase/task"
	"github.com/ignatzorin/timebank-backend/internal/usecase/user"
	"github.com/ignatzorin/timebank-backend/internal/usecase/wallet"
	"github.com/ignatzorin/timebank-backend/internal/ws"
)

type App struct {
	Repos   Repositories
	Ledger  *ledger.Ledger
	Journal *ledger.Journal
	Tokens  *service.TokenManager
	Hub     *ws.Hub
	Sweeper *sweep.Sweeper
	Settle  *wallet.SettleWithdrawalUseCase

	Engine  *gin.Engine
	Handler http.Handler
}

// New связывает всё приложение. checks попадают в /health.
func New(cfg *config.Config, repos Repositories, checks map[string]handler.Check) *App {
	journal := ledger.NewJournal(repos.Transactions)
	l := ledger.New(repos.Tx, repos.Wallets, journal)
	tokens := service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)
	hub := ws.NewHub()
	var oracle pricing.Oracle = pricing.NewTableOracle()
	if cfg.AIBaseURL != "" {
		oracle = ai.NewPricingOracle(ai.NewClient(cfg.AIBaseURL, cfg.AIModel, cfg.AIAPIKey, cfg.AITimeout), oracle)
	}

	var publisher event.Publisher = notify.Multi{notify.LogPublisher{}, notify.NewHubPublisher(hub)}

	authHandler := handler.NewAuthHandler(
		user.NewRegisterUseCase(repos.Tx, repos.Users, repos.Wallets, tokens),
		user.NewLoginUseCase(repos.Users, repos.Wallets, tokens),
		user.NewGetMeUseCase(repos.Users, repos.Wallets),
	)

	taskHandler := handler.NewTaskHandler(
		task.NewCreateTaskUseCase(repos.Tasks),
		task.NewUpdateTaskUseCase(repos.Tx, repos.Tasks),
		task.NewPublishTaskUseCase(repos.Tx, repos.Tasks, oracle, cfg.FloorValidation),
		task.NewCancelTaskUseCase(repos.Tx, repos.Tasks, repos.Proposals),
		task.NewGetTaskUseCase(repos.Tasks),
		task.NewListTasksUseCase(repos.Tasks),
		task.NewListMyTasksUseCase(repos.Tasks),
	)

	proposalHandler := handler.NewProposalHandler(handler.ProposalUseCases{
		Submit:    proposal.NewSubmitProposalUseCase(repos.Tx, repos.Proposals, repos.Tasks),
		Shortlist: proposal.NewShortlistProposalUseCase(repos.Tx, repos.Proposals, repos.Tasks),
		Reject:    proposal.NewRejectProposalUseCase(repos.Tx, repos.Proposals, repos.Tasks),
		Withdraw:  proposal.NewWithdrawProposalUseCase(repos.Tx, repos.Proposals),
		Accept:    proposal.NewAcceptProposalUseCase(repos.Tx, repos.Proposals, repos.Tasks, repos.Contracts, publisher),
		Get:       proposal.NewGetProposalUseCase(repos.Proposals, repos.Tasks),
		ListTask:  proposal.NewListTaskProposalsUseCase(repos.Proposals, repos.Tasks),
		ListMy:    proposal.NewListMyProposalsUseCase(repos.Proposals),
		Inbox:     proposal.NewListInboxUseCase(repos.Proposals),
	})

	contractHandler := handler.NewContractHandler(
		contract.NewTransitionContractUseCase(repos.Tx, repos.Contracts, repos.Tasks, l, publisher),
		contract.NewGetContractUseCase(repos.Contracts),
		contract.NewListContractsUseCase(repos.Contracts),
	)

	walletHandler := handler.NewWalletHandler(
		wallet.NewGetBalanceUseCase(l),
		wallet.NewDepositUseCase(l),
		wallet.NewWithdrawUseCase(l),
		wallet.NewListTransactionsUseCase(journal),
		wallet.NewGetTransactionUseCase(journal),
	)

	engine := router.SetupRouter(cfg, router.Handlers{
		Auth:     authHandler,
		Task:     taskHandler,
		Proposal: proposalHandler,
		Contract: contractHandler,
		Wallet:   walletHandler,
		Pricing:  handler.NewPricingHandler(oracle),
		WS:       handler.NewWSHandler(hub, tokens, cfg.AllowedOrigins),
		Health:   handler.NewHealthHandler(checks),
	}, tokens)

	return &App{
		Repos:   repos,
		Ledger:  l,
		Journal: journal,
		Tokens:  tokens,
		Hub:     hub,
		Sweeper: sweep.NewSweeper(repos.Tx, repos.Tasks, repos.Proposals, cfg.ProposalTTL, cfg.SweepBatchSize),
		Settle:  wallet.NewSettleWithdrawalUseCase(l),
		Engine:  engine,
		Handler: router.WithCORS(engine, cfg.AllowedOrigins),
	}
}
