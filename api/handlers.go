package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"papercut/process"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	requestIDHeader = "X-Request-ID"
	// maxRequestBytes bounds the JSON body of POST /.
	maxRequestBytes = 1 << 20
)

type ExtractResponse struct {
	Text string `json:"text"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// ExtractHandler handles extraction requests
func (s *Server) ExtractHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	logger := s.logger.With(zap.String("request_id", w.Header().Get(requestIDHeader)))

	req, err := decodeRequest(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.URL == "" && req.FilePath == "" {
		http.Error(w, "Missing url or file_path", http.StatusBadRequest)
		return
	}

	res, err := s.extractor.Extract(r.Context(), req)
	if err != nil {
		if errors.Is(err, process.ErrMalformedRequest) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Error("extraction failed",
			zap.String("url", req.URL),
			zap.String("file_path", req.FilePath),
			zap.Error(err))
		writeJSON(w, logger, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	logger.Info("extraction succeeded",
		zap.Int("pages_scanned", res.PagesScanned),
		zap.String("stop_keyword", res.StopKeyword))
	writeJSON(w, logger, http.StatusOK, ExtractResponse{Text: res.Text})
}

// decodeRequest reads exactly one JSON object from the body. Trailing
// content after the object makes the body invalid.
func decodeRequest(w http.ResponseWriter, r *http.Request) (process.Request, error) {
	defer r.Body.Close()

	var req process.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		return req, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after JSON object")
		}
		return req, err
	}
	return req, nil
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to write response", zap.Int("status", status), zap.Error(err))
	}
}

// withRequestID tags every request with an id, echoed in the response, and
// logs its outcome.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		s.logger.Info("request handled",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
