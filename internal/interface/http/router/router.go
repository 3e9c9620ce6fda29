package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/ignatzorin/timebank-backend/internal/config"
	"github.com/ignatzorin/timebank-backend/internal/interface/http/handler"
	"github.com/ignatzorin/timebank-backend/internal/interface/http/middleware"
	"github.com/ignatzorin/timebank-backend/internal/interface/http/response"
)

type Handlers struct {
	Auth     *handler.AuthHandler
	Task     *handler.TaskHandler
	Proposal *handler.ProposalHandler
	Contract *handler.ContractHandler
	Wallet   *handler.WalletHandler
	Pricing  *handler.PricingHandler
	WS       *handler.WSHandler
	Health   *handler.HealthHandler
}

func SetupRouter(cfg *config.Config, h Handlers, tokens middleware.TokenParser) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.ErrorHandler())
	r.NoRoute(func(c *gin.Context) { response.NotFound(c, "маршрут не найден") })

	r.GET("/health", h.Health.Health)

	api := r.Group("/api")
	auth := middleware.AuthMiddleware(tokens)
	// операции с деньгами ограничиваются по пользователю, поэтому лимитер стоит после auth
	moneyLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(5, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
	}
	api.GET("/auth/me", auth, h.Auth.Me)

	// Публичные маршруты
	public := api.Group("/")
	public.Use(middleware.OptionalAuth(tokens))
	{
		public.GET("/tasks", h.Task.ListTasks)
		public.GET("/tasks/:id", middleware.UUIDValidator("id"), h.Task.GetTask)
		public.GET("/pricing/recommend", h.Pricing.Recommend)
	}
	api.GET("/ws", h.WS.Handle)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(auth)
	{
		protected.POST("/tasks", h.Task.CreateTask)
		protected.GET("/tasks/my", h.Task.ListMyTasks)
		protected.PUT("/tasks/:id", middleware.UUIDValidator("id"), h.Task.UpdateTask)
		protected.POST("/tasks/:id/publish", middleware.UUIDValidator("id"), h.Task.PublishTask)
		protected.POST("/tasks/:id/cancel", middleware.UUIDValidator("id"), h.Task.CancelTask)

		protected.GET("/tasks/:id/proposals", middleware.UUIDValidator("id"), h.Proposal.ListTaskProposals)
		protected.POST("/tasks/:id/proposals", middleware.UUIDValidator("id"), h.Proposal.SubmitProposal)
		protected.GET("/proposals/my", h.Proposal.ListMyProposals)
		protected.GET("/proposals/inbox", h.Proposal.ListInbox)
		protected.GET("/proposals/:id", middleware.UUIDValidator("id"), h.Proposal.GetProposal)
		protected.POST("/proposals/:id/shortlist", middleware.UUIDValidator("id"), h.Proposal.ShortlistProposal)
		protected.POST("/proposals/:id/reject", middleware.UUIDValidator("id"), h.Proposal.RejectProposal)
		protected.POST("/proposals/:id/withdraw", middleware.UUIDValidator("id"), h.Proposal.WithdrawProposal)
		protected.POST("/proposals/:id/accept", middleware.UUIDValidator("id"), h.Proposal.AcceptProposal)

		protected.GET("/contracts", h.Contract.ListContracts)
		protected.GET("/contracts/:id", middleware.UUIDValidator("id"), h.Contract.GetContract)
		protected.POST("/contracts/:id/deliver", middleware.UUIDValidator("id"), h.Contract.Deliver)
		protected.POST("/contracts/:id/dispute", middleware.UUIDValidator("id"), h.Contract.Dispute)

		protected.GET("/wallet", h.Wallet.GetWallet)
		protected.GET("/transactions", h.Wallet.ListTransactions)
		protected.GET("/transactions/:id", h.Wallet.GetTransaction)
	}

	money := api.Group("/")
	money.Use(auth, moneyLimit)
	{
		money.POST("/contracts/:id/payment/escrow", middleware.UUIDValidator("id"), h.Contract.Escrow)
		money.POST("/contracts/:id/payment/release", middleware.UUIDValidator("id"), h.Contract.Release)
		money.POST("/contracts/:id/payment/refund", middleware.UUIDValidator("id"), h.Contract.Cancel)
		money.POST("/contracts/:id/cancel", middleware.UUIDValidator("id"), h.Contract.Cancel)
		money.POST("/wallet/deposit", h.Wallet.Deposit)
		money.POST("/wallet/withdraw", h.Wallet.Withdraw)
	}

	return r
}

// WithCORS оборачивает движок в rs/cors с разрешёнными origin из конфигурации.
func WithCORS(engine http.Handler, allowedOrigins []string) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept", "Origin", "X-Requested-With"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
	}).Handler(engine)
}
