package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"autodiag/internal/diagnose"
	"autodiag/internal/evidence"
	"autodiag/internal/logging"
	"autodiag/internal/services"
	"autodiag/internal/wavio"
)

const maxRequestBytes = 64 << 20

// Server exposes the diagnosis engine over HTTP.
type Server struct {
	bind         string
	orchestrator *diagnose.Orchestrator
	logger       *slog.Logger
}

// NewServer constructs an HTTP server for the given orchestrator.
func NewServer(bind string, orchestrator *diagnose.Orchestrator, logger *slog.Logger) *Server {
	return &Server{
		bind:         bind,
		orchestrator: orchestrator,
		logger:       logging.NewComponentLogger(logger, "api"),
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/diagnose", s.handleDiagnose)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// ListenAndServe serves until the context is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.bind,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info("api listening", logging.String("bind", s.bind))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

type corpusItemPayload struct {
	evidence.ReferenceItem
	AudioWAV []byte `json:"audio_wav,omitempty"`
}

type diagnoseRequest struct {
	Vehicle       diagnose.Vehicle     `json:"vehicle"`
	SoundLocation string               `json:"sound_location"`
	AudioWAV      []byte               `json:"audio_wav"`
	Corpus        []corpusItemPayload  `json:"corpus,omitempty"`
	User          evidence.UserContext `json:"user"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleDiagnose(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	ctx := services.WithRequestID(r.Context(), requestID)
	w.Header().Set("X-Request-ID", requestID)
	logger := logging.WithContext(ctx, s.logger)

	var payload diagnoseRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := decoder.Decode(&payload); err != nil {
		wrapped := services.Wrap(services.ErrValidation, "api", "diagnose", "invalid request body", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: wrapped.Error()})
		return
	}

	req := diagnose.Request{
		Vehicle:       payload.Vehicle,
		SoundLocation: payload.SoundLocation,
		User:          payload.User,
	}

	// An undecodable query upload is "no acoustic evidence", not a request
	// error; the orchestrator decides whether anything is salvageable.
	if len(payload.AudioWAV) > 0 {
		if signal, err := wavio.Decode(payload.AudioWAV); err == nil {
			req.Samples = signal.Samples
			req.SampleRate = signal.SampleRate
		} else {
			logger.Debug("query wav decode failed", logging.Error(err))
		}
	}

	for _, item := range payload.Corpus {
		corpusItem := diagnose.CorpusItem{Item: item.ReferenceItem}
		if len(item.AudioWAV) > 0 {
			if signal, err := wavio.Decode(item.AudioWAV); err == nil {
				corpusItem.Samples = signal.Samples
				corpusItem.SampleRate = signal.SampleRate
			} else {
				logger.Debug("corpus wav decode failed",
					logging.String("item_id", item.ID),
					logging.Error(err),
				)
			}
		}
		req.Corpus = append(req.Corpus, corpusItem)
	}

	result, err := s.orchestrator.Run(ctx, req)
	if err != nil {
		logger.Error("diagnosis failed", logging.Error(err))
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
