// Package httpserver exposes the engine in serve mode: replies arrive by
// POST instead of CLI args, and the queue and stats views are readable
// without shell access to the data directory.
package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"journalclub/internal/config"
	"journalclub/internal/pipeline"
)

// Server wraps the HTTP server and its router.
type Server struct {
	http *http.Server
	log  *zap.Logger
}

func New(cfg *config.Config, engine *pipeline.Engine, log *zap.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.GetHead)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout()))
	r.Use(accessLog(log))

	r.Get("/healthz", handleHealthz(time.Now()))
	r.Route("/api", func(r chi.Router) {
		r.Post("/reply", handleReply(engine))
		r.Get("/queue", handleQueue(engine))
		r.Get("/stats", handleStats(engine))
	})

	return &Server{
		http: &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		log: log,
	}
}

// Handler returns the routed handler, used by tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// Start blocks serving requests until an error or Stop.
func (s *Server) Start() error {
	s.log.Info("http server listening", zap.String("addr", s.http.Addr))
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop drains in-flight requests under the context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("http server shutting down")
	return s.http.Shutdown(ctx)
}

// accessLog writes one structured line per request.
func accessLog(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote_ip", r.RemoteAddr),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
