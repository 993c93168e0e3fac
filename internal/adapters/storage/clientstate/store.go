package clientstate

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no record exists for a key.
var ErrNotFound = errors.New("client state not found")

// Store persists opaque per-browser records keyed by namespace and device.
// It is the server-side stand-in for the browser's durable key-value storage.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Key builds the record key for a namespace and device id.
func Key(namespace, deviceID string) string {
	return namespace + ":" + deviceID
}
