// Package audit records raw and transformed payloads. Recording is best
// effort: callers log failures and carry on.
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Statuses written by the pipeline.
const (
	StatusReceived    = "RECEIVED"
	StatusTransformed = "TRANSFORMED"
	StatusFailed      = "FAILED"
)

// Kinds of entries.
const (
	KindRaw         = "raw"
	KindTransformed = "transformed"
)

// Sink stores payloads keyed by request id.
type Sink interface {
	StoreRaw(ctx context.Context, requestID string, payload any, status string) error
	StoreTransformed(ctx context.Context, requestID string, payload any, status string) error
}

// Entry is one stored payload.
type Entry struct {
	Kind      string
	RequestID string
	Payload   string
	Status    string
	CreatedAt time.Time
}

// Nop discards everything.
type Nop struct{}

// StoreRaw implements Sink.
func (Nop) StoreRaw(context.Context, string, any, string) error { return nil }

// StoreTransformed implements Sink.
func (Nop) StoreTransformed(context.Context, string, any, string) error { return nil }

// Memory keeps entries in process. It is safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
}

// StoreRaw implements Sink.
func (m *Memory) StoreRaw(_ context.Context, requestID string, payload any, status string) error {
	return m.add(KindRaw, requestID, payload, status)
}

// StoreTransformed implements Sink.
func (m *Memory) StoreTransformed(_ context.Context, requestID string, payload any, status string) error {
	return m.add(KindTransformed, requestID, payload, status)
}

func (m *Memory) add(kind, requestID string, payload any, status string) error {
	data, err := encode(payload)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, Entry{
		Kind:      kind,
		RequestID: requestID,
		Payload:   data,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	})

	return nil
}

// Entries returns a copy of everything stored so far.
func (m *Memory) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]Entry(nil), m.entries...)
}

// encode writes payload as JSON without HTML escaping, so XML bodies are
// stored as written.
func encode(payload any) (string, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	err := enc.Encode(payload)
	if err != nil {
		return "", fmt.Errorf("failed to serialize payload for persistence: %w", err)
	}

	return strings.TrimSuffix(buf.String(), "\n"), nil
}
