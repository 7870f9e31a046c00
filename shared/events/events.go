// Package events defines the message contract for finished analyses.
// The same envelope is published on RabbitMQ and pushed to WebSocket clients.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ── Routing keys (RabbitMQ topic exchange: trendsniper.events) ───────────────
const (
	AnalysisCompleted = "analysis.completed"
	AnalysisFailed    = "analysis.failed"

	// AnalysisAll matches every analysis event.
	AnalysisAll = "analysis.#"

	keyPrefix = "analysis."
)

const (
	EndpointAnalyze      = "analyze"
	EndpointAnalyzeMulti = "analyze-multi"
)

// ── Envelope wraps every message ─────────────────────────────────────────────

// Envelope is what travels on the exchange and what /ws clients receive.
type Envelope struct {
	ID         string          `json:"id"`
	RoutingKey string          `json:"routing_key"`
	Timestamp  time.Time       `json:"ts"`
	Payload    json.RawMessage `json:"payload"`
}

// Analysis reports whether the envelope carries one of this package's events.
func (e *Envelope) Analysis() bool {
	return strings.HasPrefix(e.RoutingKey, keyPrefix)
}

// Wrap encodes payload into a new envelope stamped in UTC. Only analysis.*
// routing keys are accepted.
func Wrap(routingKey string, payload any) ([]byte, error) {
	if !strings.HasPrefix(routingKey, keyPrefix) {
		return nil, fmt.Errorf("routing key %q is not an analysis event", routingKey)
	}
	p, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", routingKey, err)
	}
	return json.Marshal(Envelope{
		ID:         uuid.NewString(),
		RoutingKey: routingKey,
		Timestamp:  time.Now().UTC(),
		Payload:    p,
	})
}

// UnwrapEnvelope decodes the envelope and leaves the payload raw.
func UnwrapEnvelope(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.RoutingKey == "" {
		return nil, errors.New("envelope has no routing key")
	}
	return &env, nil
}

// Unwrap decodes an envelope and its payload as T.
func Unwrap[T any](raw []byte) (*T, error) {
	env, err := UnwrapEnvelope(raw)
	if err != nil {
		return nil, err
	}
	return Decode[T](env)
}

func Decode[T any](env *Envelope) (*T, error) {
	var t T
	if err := json.Unmarshal(env.Payload, &t); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", env.RoutingKey, err)
	}
	return &t, nil
}

// ── Payload types ─────────────────────────────────────────────────────────────

type AnalysisCompletedPayload struct {
	RequestID  string `json:"request_id"`
	Endpoint   string `json:"endpoint"`
	Provider   string `json:"provider"`
	Model      string `json:"model"`
	InputChars int    `json:"input_chars"`
	Result     string `json:"result,omitempty"`
	Items      int    `json:"items,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

type AnalysisFailedPayload struct {
	RequestID  string `json:"request_id"`
	Endpoint   string `json:"endpoint"`
	Provider   string `json:"provider"`
	Model      string `json:"model"`
	InputChars int    `json:"input_chars"`
	Error      string `json:"error"`
	DurationMS int64  `json:"duration_ms"`
}
