// Package persist stores per-browser state records in a versioned envelope.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"gymhub/internal/adapters/storage/clientstate"
)

// CurrentVersion is the envelope version written by this build.
const CurrentVersion = 1

var (
	ErrMalformed       = errors.New("malformed client state")
	ErrVersionMismatch = errors.New("client state version mismatch")
)

type envelope struct {
	Version int             `json:"version"`
	State   json.RawMessage `json:"state"`
}

// Encode wraps state in an envelope of the given version.
func Encode[T any](version int, state T) ([]byte, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return json.Marshal(envelope{Version: version, State: raw})
}

// Decode unwraps an envelope written by Encode.
// POST: Returns ErrVersionMismatch if the record was written by another version,
// ErrMalformed if it cannot be parsed
func Decode[T any](version int, data []byte) (T, error) {
	var zero T
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Version != version {
		return zero, fmt.Errorf("%w: got %d, want %d", ErrVersionMismatch, env.Version, version)
	}
	if len(env.State) == 0 {
		return zero, fmt.Errorf("%w: missing state", ErrMalformed)
	}
	var state T
	if err := json.Unmarshal(env.State, &state); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return state, nil
}

// Slot is one named record per device, such as the branch context or cart.
// Reads never fail: anything unusable yields the zero value of T.
// Writes never fail either; errors are logged and dropped.
type Slot[T any] struct {
	store     clientstate.Store
	namespace string
	version   int
}

// NewSlot creates a slot writing CurrentVersion envelopes under namespace.
func NewSlot[T any](store clientstate.Store, namespace string) *Slot[T] {
	return &Slot[T]{store: store, namespace: namespace, version: CurrentVersion}
}

// Namespace returns the record namespace.
func (s *Slot[T]) Namespace() string {
	return s.namespace
}

// Load rehydrates the device's record.
// POST: Returns the stored state, or the zero value when the record is missing,
// malformed, or of another version
func (s *Slot[T]) Load(ctx context.Context, deviceID string) T {
	var zero T
	key := clientstate.Key(s.namespace, deviceID)
	data, err := s.store.Get(ctx, key)
	if errors.Is(err, clientstate.ErrNotFound) {
		return zero
	}
	if err != nil {
		slog.Warn("client_state_read_failed", "namespace", s.namespace, "error", err)
		return zero
	}
	state, err := Decode[T](s.version, data)
	if err != nil {
		slog.Warn("client_state_discarded", "namespace", s.namespace, "error", err)
		return zero
	}
	return state
}

// Save writes the device's record. Failures are logged, not returned.
func (s *Slot[T]) Save(ctx context.Context, deviceID string, state T) {
	data, err := Encode(s.version, state)
	if err != nil {
		slog.Error("client_state_write_failed", "namespace", s.namespace, "error", err)
		return
	}
	if err := s.store.Put(ctx, clientstate.Key(s.namespace, deviceID), data); err != nil {
		slog.Error("client_state_write_failed", "namespace", s.namespace, "error", err)
	}
}

// Delete removes the device's record. Failures are logged, not returned.
func (s *Slot[T]) Delete(ctx context.Context, deviceID string) {
	if err := s.store.Delete(ctx, clientstate.Key(s.namespace, deviceID)); err != nil {
		slog.Error("client_state_delete_failed", "namespace", s.namespace, "error", err)
	}
}
