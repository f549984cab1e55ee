// Package events defines the message contract published on RabbitMQ.
// The gateway and the worker talk only through these envelopes.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ── Routing keys (RabbitMQ topic exchange: promptable.events) ────────────────
const (
	GenerateRequested = "generate.requested"
	GenerateComplete  = "generate.complete"
	GenerateFailed    = "generate.failed"
)

// ── Envelope wraps every message ─────────────────────────────────────────────

type Envelope struct {
	ID         string          `json:"id"`
	RoutingKey string          `json:"routing_key"`
	Timestamp  time.Time       `json:"ts"`
	Payload    json.RawMessage `json:"payload"`
}

func Wrap(routingKey string, payload any) ([]byte, error) {
	p, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{
		ID:         uuid.New().String(),
		RoutingKey: routingKey,
		Timestamp:  time.Now(),
		Payload:    p,
	})
}

func Unwrap[T any](raw []byte) (*T, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	var t T
	return &t, json.Unmarshal(env.Payload, &t)
}

func UnwrapEnvelope(raw []byte) (*Envelope, error) {
	var env Envelope
	return &env, json.Unmarshal(raw, &env)
}

// ── Payload types ─────────────────────────────────────────────────────────────

type GenerateRequestedPayload struct {
	JobID       string         `json:"job_id"`
	TypeName    string         `json:"type_name"`
	RecordID    string         `json:"record_id"`
	Context     map[string]any `json:"context,omitempty"`
	Model       string         `json:"model,omitempty"`
	Temperature *float64       `json:"temperature,omitempty"`
	Format      string         `json:"format,omitempty"`
}

type GenerateCompletePayload struct {
	JobID    string `json:"job_id"`
	TypeName string `json:"type_name"`
	RecordID string `json:"record_id"`
	Text     string `json:"text"`
	OK       bool   `json:"ok"`
}

type GenerateFailedPayload struct {
	JobID    string `json:"job_id"`
	TypeName string `json:"type_name"`
	RecordID string `json:"record_id"`
	Error    string `json:"error"`
}
