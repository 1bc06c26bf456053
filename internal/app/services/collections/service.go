// Package collections manages collection records and their read surface.
package collections

import (
	"context"
	"fmt"
	"strings"

	"github.com/MintGate-Network/mint_layer/internal/app/domain/collection"
	"github.com/MintGate-Network/mint_layer/internal/app/storage"
	"github.com/MintGate-Network/mint_layer/pkg/logger"
)

// Service manages collection lifecycle and inspection.
type Service struct {
	store storage.CollectionStore
	log   *logger.Logger
}

// New constructs a collections service.
func New(store storage.CollectionStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("collections")
	}
	return &Service{store: store, log: log}
}

// Create registers a new collection. MaxSupply, PricePerMint and the
// authorized principal are fixed from this point on.
func (s *Service) Create(ctx context.Context, name, symbol string, maxSupply, pricePerMint uint64, principal string) (collection.Collection, error) {
	name = strings.TrimSpace(name)
	symbol = strings.TrimSpace(symbol)
	principal = strings.TrimSpace(principal)

	if name == "" || symbol == "" {
		return collection.Collection{}, fmt.Errorf("name and symbol are required")
	}
	if maxSupply == 0 {
		return collection.Collection{}, fmt.Errorf("max_supply must be positive")
	}
	if principal == "" {
		return collection.Collection{}, fmt.Errorf("authorized_principal is required")
	}

	created, err := s.store.CreateCollection(ctx, collection.Collection{
		Name:                name,
		Symbol:              symbol,
		MaxSupply:           maxSupply,
		PricePerMint:        pricePerMint,
		AuthorizedPrincipal: principal,
	})
	if err != nil {
		return collection.Collection{}, err
	}

	s.log.WithField("collection_id", created.ID).
		WithField("max_supply", maxSupply).
		WithField("price_per_mint", pricePerMint).
		Info("collection created")
	return created, nil
}

// Get returns one collection.
func (s *Service) Get(ctx context.Context, id string) (collection.Collection, error) {
	return s.store.GetCollection(ctx, id)
}

// List returns all collections.
func (s *Service) List(ctx context.Context) ([]collection.Collection, error) {
	return s.store.ListCollections(ctx)
}

// PricePerMint returns the fixed unit price of a collection.
func (s *Service) PricePerMint(ctx context.Context, id string) (uint64, error) {
	col, err := s.store.GetCollection(ctx, id)
	if err != nil {
		return 0, err
	}
	return col.PricePerMint, nil
}
