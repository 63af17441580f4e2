package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/vitormoschetta/gemini-relay/internal/config"
	"github.com/vitormoschetta/gemini-relay/internal/handler"
	"github.com/vitormoschetta/gemini-relay/internal/metrics"
)

const shutdownTimeout = 5 * time.Second

// Routes agrupa os handlers montados no router. Metrics e MCP são opcionais.
type Routes struct {
	Root    http.HandlerFunc
	Health  http.HandlerFunc
	Chat    http.HandlerFunc
	Metrics http.Handler
	MCP     http.Handler
}

// Server representa o servidor HTTP com todas as dependências
type Server struct {
	cfg     config.Config
	metrics metrics.HTTP
	logger  *slog.Logger
	Router  chi.Router
}

// NewServer cria uma nova instância do servidor
func NewServer(cfg config.Config, m metrics.HTTP, logger *slog.Logger) *Server {
	if m == nil {
		m = metrics.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{cfg: cfg, metrics: m, logger: logger}
}

// SetupRouter configura as rotas e middlewares do Chi
func (s *Server) SetupRouter(routes Routes) {
	r := chi.NewRouter()

	// Middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(handler.Correlation)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(s.corsOptions()))

	// Rotas
	r.Group(func(r chi.Router) {
		// O timeout do router fica acima do timeout de geração.
		r.Use(middleware.Timeout(s.requestTimeout()))
		r.Get("/", routes.Root)
		r.Get("/health", routes.Health)
		r.Post("/chat", routes.Chat)
	})
	if routes.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", routes.Metrics)
	}
	if routes.MCP != nil {
		r.Handle("/mcp", routes.MCP)
	}

	s.Router = r
}

// corsOptions libera tudo quando AllowedOrigins contém "*"
func (s *Server) corsOptions() cors.Options {
	opts := cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{handler.CorrelationHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowsAllOrigins() {
		// Com credenciais o navegador recusa "*"; a origem é ecoada.
		opts.AllowedOrigins = nil
		opts.AllowOriginFunc = func(*http.Request, string) bool { return true }
	}
	return opts
}

func (s *Server) requestTimeout() time.Duration {
	if s.cfg.GenerateTimeout <= 0 {
		return 10 * time.Minute
	}
	return s.cfg.GenerateTimeout + 5*time.Second
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		elapsed := time.Since(start)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		s.metrics.ObserveRequest(r.Method, route, strconv.Itoa(status), elapsed.Seconds())
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration_ms", elapsed.Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
			"correlation_id", handler.CorrelationID(r.Context()),
		)
	})
}

// Start inicia o servidor HTTP e faz graceful shutdown quando ctx termina
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve atende conexões em ln até ctx terminar
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.Router == nil {
		return errors.New("server: router not configured")
	}

	httpServer := &http.Server{
		Handler:           s.Router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      s.requestTimeout() + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("gemini relay listening",
			"addr", ln.Addr().String(),
			"provider", s.cfg.Provider,
			"default_model", s.cfg.DefaultModel,
			"allowed_origins", s.cfg.AllowedOrigins,
			"metrics", s.cfg.MetricsEnabled,
			"mcp", s.cfg.MCPEnabled,
		)
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Aguardar sinal de interrupção
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	s.logger.Info("server stopped gracefully")
	return nil
}
