package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tanushree1025/DESIGN-THEETA/internal/app/server/handlers"
	"github.com/tanushree1025/DESIGN-THEETA/internal/config"
	"github.com/tanushree1025/DESIGN-THEETA/internal/core/services"
	"github.com/tanushree1025/DESIGN-THEETA/pkg/middleware"
)

type Server struct {
	mux  *http.ServeMux
	addr string
	log  *slog.Logger

	authHandler   *handlers.AuthHandler
	uploadHandler *handlers.UploadHandler
	wsHandler     *handlers.WSHandler
	tokenSvc      *services.TokenService
	uploadDir     string
	serviceName   string
}

func NewServer(
	log *slog.Logger,
	cfg *config.Config,
	tokenSvc *services.TokenService,
	authHandler *handlers.AuthHandler,
	uploadHandler *handlers.UploadHandler,
	wsHandler *handlers.WSHandler,
) *Server {
	s := &Server{
		mux:           http.NewServeMux(),
		addr:          cfg.Service.Addr,
		log:           log,
		authHandler:   authHandler,
		uploadHandler: uploadHandler,
		wsHandler:     wsHandler,
		tokenSvc:      tokenSvc,
		uploadDir:     cfg.Upload.Dir,
		serviceName:   cfg.Service.Name,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	auth := middleware.Auth(s.tokenSvc)

	s.mux.HandleFunc("POST /api/auth/register", s.authHandler.Register)
	s.mux.HandleFunc("POST /api/auth/login", s.authHandler.Login)
	s.mux.HandleFunc("POST /api/auth/forgot-password", s.authHandler.ForgotPassword)
	s.mux.HandleFunc("POST /api/auth/reset-password", s.authHandler.ResetPassword)
	s.mux.Handle("POST /api/admin/create-admin", auth(http.HandlerFunc(s.authHandler.CreateAdmin)))
	s.mux.Handle("POST /api/upload", auth(http.HandlerFunc(s.uploadHandler.Upload)))

	// uploaded files (including voice) are served statically
	s.mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.uploadDir))))

	s.mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "time": time.Now()})
	})
	s.mux.Handle("GET /metrics", promhttp.Handler())

	// the websocket handshake carries its own credential; no auth middleware
	s.mux.HandleFunc("/ws", s.wsHandler.Handler)
}

func (s *Server) Start(ctx context.Context) error {
	handler := middleware.RequestLogger(s.log)(
		middleware.Tracer(s.serviceName)(s.mux),
	)
	server := &http.Server{
		Addr:        s.addr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// no WriteTimeout: websocket connections outlive any sane value
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
	s.log.Info("server starting", "addr", s.addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
