// Package memory provides a thread-safe in-memory persistence layer
// implementing the storage interfaces. It is intended for tests and
// prototyping and deliberately keeps the implementation simple.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MintGate-Network/mint_layer/internal/app/domain/collection"
	"github.com/MintGate-Network/mint_layer/internal/app/domain/token"
	"github.com/MintGate-Network/mint_layer/internal/app/domain/treasury"
	"github.com/MintGate-Network/mint_layer/internal/app/storage"
)

// Store is the in-memory implementation of all storage interfaces.
type Store struct {
	mu          sync.RWMutex
	nextID      int64
	collections map[string]collection.Collection
	tokens      map[string][]token.Token
	balances    map[string]treasury.Balance
	entries     map[string][]treasury.Entry
}

var _ storage.CollectionStore = (*Store)(nil)
var _ storage.TokenStore = (*Store)(nil)
var _ storage.TreasuryStore = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		nextID:      1,
		collections: make(map[string]collection.Collection),
		tokens:      make(map[string][]token.Token),
		balances:    make(map[string]treasury.Balance),
		entries:     make(map[string][]treasury.Entry),
	}
}

func (s *Store) nextIDLocked() string {
	id := s.nextID
	s.nextID++
	return fmt.Sprintf("%d", id)
}

// CollectionStore implementation ----------------------------------------------

func (s *Store) CreateCollection(_ context.Context, col collection.Collection) (collection.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if col.ID == "" {
		col.ID = s.nextIDLocked()
	} else if _, exists := s.collections[col.ID]; exists {
		return collection.Collection{}, fmt.Errorf("collection %s already exists", col.ID)
	}

	now := time.Now().UTC()
	col.CreatedAt = now
	col.UpdatedAt = now
	col.TotalMinted = 0

	s.collections[col.ID] = col
	return col, nil
}

func (s *Store) GetCollection(_ context.Context, id string) (collection.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.collections[id]
	if !ok {
		return collection.Collection{}, fmt.Errorf("collection %s: %w", id, collection.ErrNotFound)
	}
	return col, nil
}

func (s *Store) ListCollections(_ context.Context) ([]collection.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]collection.Collection, 0, len(s.collections))
	for _, col := range s.collections {
		result = append(result, col)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Store) ReserveSupply(_ context.Context, id string, count uint64) (collection.TokenRange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.collections[id]
	if !ok {
		return collection.TokenRange{}, fmt.Errorf("collection %s: %w", id, collection.ErrNotFound)
	}
	if count == 0 {
		return collection.TokenRange{}, collection.ErrInvalidCount
	}
	if count > col.MaxSupply-col.TotalMinted {
		return collection.TokenRange{}, fmt.Errorf("%d of %d minted, requested %d: %w",
			col.TotalMinted, col.MaxSupply, count, collection.ErrSupplyExceeded)
	}

	rng := collection.TokenRange{FirstID: col.TotalMinted + 1, Count: count}
	col.TotalMinted += count
	col.UpdatedAt = time.Now().UTC()
	s.collections[id] = col
	return rng, nil
}

func (s *Store) ReleaseSupply(_ context.Context, id string, rng collection.TokenRange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.collections[id]
	if !ok {
		return fmt.Errorf("collection %s: %w", id, collection.ErrNotFound)
	}
	if rng.Count == 0 || rng.LastID() != col.TotalMinted {
		return fmt.Errorf("range [%d,%d] is not the reservation tail of collection %s",
			rng.FirstID, rng.LastID(), id)
	}

	col.TotalMinted -= rng.Count
	col.UpdatedAt = time.Now().UTC()
	s.collections[id] = col
	return nil
}

// TokenStore implementation ----------------------------------------------------

func (s *Store) CreateTokens(_ context.Context, toks []token.Token) error {
	if len(toks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	collectionID := toks[0].CollectionID
	for _, tok := range toks {
		if tok.CollectionID != collectionID {
			return fmt.Errorf("tokens span multiple collections")
		}
	}
	s.tokens[collectionID] = append(s.tokens[collectionID], toks...)
	return nil
}

func (s *Store) ListTokens(_ context.Context, collectionID string) ([]token.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]token.Token, len(s.tokens[collectionID]))
	copy(result, s.tokens[collectionID])
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Store) DeleteTokens(_ context.Context, collectionID string, rng collection.TokenRange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.tokens[collectionID][:0]
	for _, tok := range s.tokens[collectionID] {
		if tok.ID >= rng.FirstID && tok.ID <= rng.LastID() {
			continue
		}
		kept = append(kept, tok)
	}
	s.tokens[collectionID] = kept
	return nil
}

func (s *Store) GetToken(_ context.Context, collectionID string, id uint64) (token.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, tok := range s.tokens[collectionID] {
		if tok.ID == id {
			return tok, nil
		}
	}
	return token.Token{}, fmt.Errorf("token %d in collection %s: %w", id, collectionID, collection.ErrNotFound)
}

// TreasuryStore implementation -------------------------------------------------

func (s *Store) RecordDeposit(_ context.Context, collectionID string, amount uint64, reference string) (treasury.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bal := s.balances[collectionID]
	bal.CollectionID = collectionID
	bal.Proceeds += amount
	bal.TotalDeposited += amount
	bal.UpdatedAt = time.Now().UTC()
	s.balances[collectionID] = bal

	entry := treasury.Entry{
		ID:           uuid.NewString(),
		CollectionID: collectionID,
		Type:         treasury.EntryDeposit,
		Amount:       amount,
		Reference:    reference,
		CreatedAt:    bal.UpdatedAt,
	}
	s.entries[collectionID] = append(s.entries[collectionID], entry)
	return entry, nil
}

func (s *Store) RecordWithdrawal(_ context.Context, collectionID string, amount uint64, to, reference string) (treasury.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bal := s.balances[collectionID]
	if amount > bal.Proceeds {
		return treasury.Entry{}, fmt.Errorf("requested %d, held %d: %w", amount, bal.Proceeds, storage.ErrInsufficientProceeds)
	}

	bal.CollectionID = collectionID
	bal.Proceeds -= amount
	bal.TotalWithdrawn += amount
	bal.UpdatedAt = time.Now().UTC()
	s.balances[collectionID] = bal

	entry := treasury.Entry{
		ID:           uuid.NewString(),
		CollectionID: collectionID,
		Type:         treasury.EntryWithdrawal,
		Amount:       amount,
		To:           to,
		Reference:    reference,
		CreatedAt:    bal.UpdatedAt,
	}
	s.entries[collectionID] = append(s.entries[collectionID], entry)
	return entry, nil
}

func (s *Store) GetBalance(_ context.Context, collectionID string) (treasury.Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bal := s.balances[collectionID]
	bal.CollectionID = collectionID
	return bal, nil
}

func (s *Store) ListEntries(_ context.Context, collectionID string) ([]treasury.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]treasury.Entry, len(s.entries[collectionID]))
	copy(result, s.entries[collectionID])
	return result, nil
}
