package internal

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/trendsniper/trendsniper/shared/events"
)

const (
	maxBodyBytes    = 2 << 20
	minMultiContent = 30
)

type AnalyzeRequest struct {
	Text string `json:"text"`
}

func (r AnalyzeRequest) validate() error {
	if r.Text == "" {
		return errNoText
	}
	return nil
}

type AnalyzeResponse struct {
	Result string `json:"result"`
}

type MultiRequest struct {
	Content string `json:"content"`
	Pro     bool   `json:"pro"`
}

func (r MultiRequest) validate() error {
	if len(strings.TrimSpace(r.Content)) < minMultiContent {
		return errContentTooShort
	}
	return nil
}

type MultiResponse struct {
	Items []ProductInsight `json:"items"`
}

type LeaderboardEntry struct {
	Name     string `json:"name"`
	Count    int    `json:"count"`
	Category string `json:"category"`
}

var leaderboard = []LeaderboardEntry{
	{Name: "Mini Massager", Count: 132, Category: "Health Products"},
	{Name: "Wireless Earbuds", Count: 109, Category: "Tech"},
	{Name: "Hair Curler", Count: 98, Category: "Beauty & Skincare"},
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("POST /analyze-multi", s.handleAnalyzeMulti)
	mux.HandleFunc("GET /verify", s.handleVerify)
	mux.HandleFunc("GET /leaderboard", s.handleLeaderboard)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("/ws", s.hub.ServeWS)

	return requestLog(cors(mux))
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}

	started := time.Now()
	res := s.analyzer.Analyze(r.Context(), req.Text)
	if !res.OK() {
		log.Error().Err(res.Err).Str("provider", res.Err.Provider).Msg("analyze failed")
		s.emitFailed(r.Context(), events.EndpointAnalyze, len(req.Text), res.Err.Error(), started)
		writeError(w, res.Err)
		return
	}

	s.events.emit(r.Context(), events.AnalysisCompleted, events.AnalysisCompletedPayload{
		RequestID:  requestIDFrom(r.Context()),
		Endpoint:   events.EndpointAnalyze,
		Provider:   s.analyzer.Provider(),
		Model:      s.analyzer.Model(),
		InputChars: len(req.Text),
		Result:     res.Text,
		DurationMS: time.Since(started).Milliseconds(),
	})
	jsonOK(w, AnalyzeResponse{Result: res.Text}, http.StatusOK)
}

func (s *Server) handleAnalyzeMulti(w http.ResponseWriter, r *http.Request) {
	var req MultiRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}

	started := time.Now()
	res := s.analyzer.AnalyzeMulti(r.Context(), req.Content, req.Pro)
	switch {
	case res.Err != nil:
		log.Error().Err(res.Err).Str("provider", res.Err.Provider).Msg("analyze-multi failed")
		s.emitFailed(r.Context(), events.EndpointAnalyzeMulti, len(req.Content), res.Err.Error(), started)
		jsonOK(w, map[string]string{
			"error":   "Failed to analyze content",
			"details": res.Err.Error(),
		}, http.StatusInternalServerError)
	case res.Invalid != nil:
		log.Error().Err(res.Invalid).Msg("invalid JSON from model")
		s.emitFailed(r.Context(), events.EndpointAnalyzeMulti, len(req.Content), res.Invalid.Error(), started)
		jsonOK(w, map[string]string{
			"error": "AI returned invalid JSON",
			"raw":   res.Raw,
		}, http.StatusInternalServerError)
	default:
		s.events.emit(r.Context(), events.AnalysisCompleted, events.AnalysisCompletedPayload{
			RequestID:  requestIDFrom(r.Context()),
			Endpoint:   events.EndpointAnalyzeMulti,
			Provider:   s.analyzer.Provider(),
			Model:      s.analyzer.Model(),
			InputChars: len(req.Content),
			Items:      len(res.Items),
			DurationMS: time.Since(started).Milliseconds(),
		})
		jsonOK(w, MultiResponse{Items: res.Items}, http.StatusOK)
	}
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	valid := code != "" && slices.Contains(s.cfg.LicenseCodes, code)
	jsonOK(w, map[string]bool{"valid": valid}, http.StatusOK)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, map[string]any{"top": leaderboard}, http.StatusOK)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, map[string]any{
		"status":   "online",
		"provider": s.analyzer.Provider(),
		"model":    s.analyzer.Model(),
		"clients":  s.hub.ClientCount(),
		"version":  Version,
	}, http.StatusOK)
}

func (s *Server) emitFailed(ctx context.Context, endpoint string, inputChars int, msg string, started time.Time) {
	s.events.emit(ctx, events.AnalysisFailed, events.AnalysisFailedPayload{
		RequestID:  requestIDFrom(ctx),
		Endpoint:   endpoint,
		Provider:   s.analyzer.Provider(),
		Model:      s.analyzer.Model(),
		InputChars: inputChars,
		Error:      msg,
		DurationMS: time.Since(started).Milliseconds(),
	})
}

// decodeBody reads exactly one JSON value and treats an empty body as an
// empty object.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	err := dec.Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err == nil {
		if err = dec.Decode(&json.RawMessage{}); errors.Is(err, io.EOF) {
			return nil
		}
		if err == nil {
			err = errors.New("trailing data after JSON body")
		}
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return errBodyTooLarge
	}
	log.Debug().Err(err).Msg("decode request body")
	return errInvalidBody
}

func writeError(w http.ResponseWriter, err error) {
	jsonErr(w, err.Error(), statusFor(err))
}

func jsonOK(w http.ResponseWriter, v any, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonErr(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		w.Header().Set("Access-Control-Expose-Headers", requestIDHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
