package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"papercut/process"
	"papercut/text"

	"go.uber.org/zap"
)

// Extractor runs the extraction pipeline for one request.
type Extractor interface {
	Extract(ctx context.Context, req process.Request) (text.Result, error)
}

// Server represents the API server
type Server struct {
	extractor Extractor
	logger    *zap.Logger
	port      int
}

// NewServer creates a new API server
func NewServer(extractor Extractor, logger *zap.Logger, port int) *Server {
	return &Server{
		extractor: extractor,
		logger:    logger,
		port:      port,
	}
}

// Handler returns the routed handler, wrapped with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.ExtractHandler)

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return s.withRequestID(mux)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown error", zap.Error(err))
		}
	}()

	s.logger.Info("starting httpd", zap.Int("port", s.port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
