// Package server assembles the HTTP listener serving both REST and Connect.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/splitledger/internal/api"
	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/rpc"
	"github.com/mmynk/splitledger/internal/service"
	"github.com/mmynk/splitledger/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner   *http.Server
	handler http.Handler
}

// New wires services, the REST router and the Connect handler onto one
// listener. Connect procedures are matched by path prefix; everything
// else goes to gin.
func New(cfg config.Config, store storage.Store, m *metrics.Metrics) *Server {
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL, auth.WithRevocationCheck(store))
	authenticator := auth.NewPasswordAuthenticator(store)

	authService := service.NewAuthService(authenticator, jwtManager, store, slog.Default())
	groupService := service.NewGroupService(store)
	ledgerService := service.NewLedgerService(store, service.WithRecorder(m))

	router := api.NewRouter(api.NewHandler(authService, groupService, ledgerService, jwtManager, store), m, m.Handler())

	rpcPath, rpcHandler := rpc.NewHandler(
		rpc.NewLedgerServer(groupService, ledgerService),
		connect.WithInterceptors(
			middleware.MetricsInterceptor(m),
			middleware.LoggingInterceptor(nil),
			middleware.RequireAuth(jwtManager),
		),
	)

	root := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, rpcPath) {
			rpcHandler.ServeHTTP(w, r)
			return
		}
		router.ServeHTTP(w, r)
	})

	// h2c lets Connect and gRPC clients use HTTP/2 without TLS.
	handler := h2c.NewHandler(middleware.CORS(cfg.CORSOrigins, root), &http2.Server{})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer, handler: handler}
}

// Handler returns the root handler, including CORS and h2c.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
