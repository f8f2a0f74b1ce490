// Package api exposes the ledger over a JSON REST interface built on gin.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models/dto"
	"github.com/mmynk/splitledger/internal/service"
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the services behind the REST routes.
type Handler struct {
	authService   *service.AuthService
	groupService  *service.GroupService
	ledgerService *service.LedgerService
	jwtManager    *auth.JWTManager
	db            Pinger
	started       time.Time
}

// NewHandler creates a new API handler.
func NewHandler(authService *service.AuthService, groupService *service.GroupService, ledgerService *service.LedgerService, jwtManager *auth.JWTManager, db Pinger) *Handler {
	return &Handler{
		authService:   authService,
		groupService:  groupService,
		ledgerService: ledgerService,
		jwtManager:    jwtManager,
		db:            db,
		started:       time.Now(),
	}
}

// NewRouter builds a gin engine with logging, recovery and metrics
// middleware and every route registered. metricsHandler is served at
// /metrics when non-nil.
func NewRouter(h *Handler, obs middleware.RequestObserver, metricsHandler http.Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger())
	if obs != nil {
		router.Use(Metrics(obs))
	}
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}
	h.SetupRoutes(router)
	return router
}

// SetupRoutes configures the API routes.
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/signup", h.SignUp)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/check-email", h.CheckEmail)
		authGroup.POST("/logout", AuthMiddleware(h.jwtManager), h.Logout)
	}

	protected := router.Group("/")
	protected.Use(AuthMiddleware(h.jwtManager))
	{
		protected.GET("/profile", h.GetProfile)
		protected.PUT("/profile", h.UpdateProfile)

		protected.POST("/groups", h.CreateGroup)
		protected.GET("/groups", h.ListGroups)
		protected.GET("/groups/:id", h.GetGroup)
		protected.PUT("/groups/:id", h.UpdateGroup)
		protected.DELETE("/groups/:id", h.DeleteGroup)

		protected.GET("/groups/:id/members", h.ListMembers)
		protected.POST("/groups/:id/members", h.AddMember)
		protected.DELETE("/groups/:id/members/:userId", h.RemoveMember)

		protected.POST("/groups/:id/expenses", h.RecordExpense)
		protected.GET("/groups/:id/expenses", h.ListExpenses)
		protected.GET("/groups/:id/balances", h.GroupBalances)

		protected.GET("/expenses/:id", h.GetExpense)
		protected.DELETE("/expenses/:id", h.DeleteExpense)

		protected.POST("/shares/:id/settle", h.SettleShare)

		protected.GET("/balances", h.UserSummary)
	}
}

// Health reports liveness and database reachability.
func (h *Handler) Health(c *gin.Context) {
	resp := dto.HealthResponse{
		Status:   "ok",
		Database: "ok",
		Uptime:   time.Since(h.started).Round(time.Second).String(),
	}
	status := http.StatusOK
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		}
	}
	c.JSON(status, resp)
}
