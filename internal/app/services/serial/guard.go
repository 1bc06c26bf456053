// Package serial provides per-collection serialization of privileged
// operations. Mint and withdraw execute as one atomic unit per collection; a
// collaborator that re-enters the service while an operation is in flight is
// rejected instead of observing intermediate state.
package serial

import (
	"sync"

	"github.com/MintGate-Network/mint_layer/internal/app/domain/collection"
)

// Guard tracks in-flight privileged operations keyed by collection ID.
type Guard struct {
	mu       sync.Mutex
	inFlight map[string]bool
}

// NewGuard creates an empty guard.
func NewGuard() *Guard {
	return &Guard{inFlight: make(map[string]bool)}
}

// Acquire marks the collection busy. It fails with
// collection.ErrMintInProgress when an operation is already running, which is
// how reentrant calls surface.
func (g *Guard) Acquire(collectionID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.inFlight[collectionID] {
		return collection.ErrMintInProgress
	}
	g.inFlight[collectionID] = true
	return nil
}

// Release clears the in-flight mark. Callers release in a defer scoped to the
// operation's lifetime.
func (g *Guard) Release(collectionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inFlight, collectionID)
}
