// Package session keeps per-browser widget state (the last submitted
// symbol) between page loads.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// State is what the dashboard remembers for one browser session.
type State struct {
	Symbol   string    `json:"symbol"`
	LastSeen time.Time `json:"last_seen"`
}

// Store persists session state. Get returns (nil, nil) for unknown IDs.
type Store interface {
	Get(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, id string, st *State) error
	// Sweep removes sessions idle for longer than the store's TTL.
	Sweep(ctx context.Context) (int, error)
	Close() error
}

// NewID returns a fresh random session ID.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like an ID produced by NewID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
