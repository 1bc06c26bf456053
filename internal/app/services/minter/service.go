// Package minter orchestrates payment-gated, supply-capped nested mints.
package minter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MintGate-Network/mint_layer/internal/app/domain/collection"
	"github.com/MintGate-Network/mint_layer/internal/app/domain/token"
	"github.com/MintGate-Network/mint_layer/internal/app/metrics"
	"github.com/MintGate-Network/mint_layer/internal/app/services/serial"
	treasurysvc "github.com/MintGate-Network/mint_layer/internal/app/services/treasury"
	"github.com/MintGate-Network/mint_layer/internal/app/storage"
	"github.com/MintGate-Network/mint_layer/pkg/logger"
)

// Service is the nested minter. One mint runs as a single guarded operation:
// authorize, validate payment, reserve supply, attach every new identifier
// under the destination parent, then commit token rows and proceeds. A
// registry failure rolls the reservation back and retains no payment.
type Service struct {
	collections storage.CollectionStore
	tokens      storage.TokenStore
	allocator   *SupplyAllocator
	gate        *PaymentGate
	registry    AssetRegistry
	treasury    *treasurysvc.Service
	guard       *serial.Guard
	log         *logger.Logger
}

// New constructs a minter. The guard must be shared with the treasury service
// so mint and withdraw serialize per collection.
func New(collections storage.CollectionStore, tokens storage.TokenStore, registry AssetRegistry, treasury *treasurysvc.Service, guard *serial.Guard, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("minter")
	}
	if guard == nil {
		guard = serial.NewGuard()
	}
	return &Service{
		collections: collections,
		tokens:      tokens,
		allocator:   NewSupplyAllocator(collections),
		gate:        NewPaymentGate(),
		registry:    registry,
		treasury:    treasury,
		guard:       guard,
		log:         log,
	}
}

// Mint issues req.Count new identifiers of the collection to req.Recipient,
// nesting each under req.DestinationParent, and returns the receipt carrying
// the first identifier of the reserved range.
func (s *Service) Mint(ctx context.Context, collectionID string, req collection.MintRequest) (collection.MintReceipt, error) {
	started := time.Now()

	receipt, err := s.mint(ctx, collectionID, req)
	if err != nil {
		metrics.RecordMint(failureStatus(err), 0, time.Since(started))
		return collection.MintReceipt{}, err
	}

	metrics.RecordMint("completed", receipt.Range.Count, time.Since(started))
	return receipt, nil
}

func (s *Service) mint(ctx context.Context, collectionID string, req collection.MintRequest) (collection.MintReceipt, error) {
	if req.Count == 0 {
		return collection.MintReceipt{}, collection.ErrInvalidCount
	}
	if strings.TrimSpace(req.Recipient) == "" {
		return collection.MintReceipt{}, fmt.Errorf("recipient is required")
	}

	if err := s.guard.Acquire(collectionID); err != nil {
		return collection.MintReceipt{}, err
	}
	defer s.guard.Release(collectionID)

	col, err := s.collections.GetCollection(ctx, collectionID)
	if err != nil {
		return collection.MintReceipt{}, err
	}

	// Authorization comes first: an unauthorized caller consumes no payment
	// and reserves no supply.
	if req.Caller != col.AuthorizedPrincipal {
		return collection.MintReceipt{}, fmt.Errorf("caller %s: %w", req.Caller, collection.ErrUnauthorized)
	}

	paid, err := s.gate.Validate(req.Count, col.PricePerMint, req.SuppliedValue)
	if err != nil {
		return collection.MintReceipt{}, err
	}

	rng, err := s.allocator.Reserve(ctx, collectionID, req.Count)
	if err != nil {
		return collection.MintReceipt{}, err
	}

	if err := s.attachRange(ctx, collectionID, rng, req); err != nil {
		if relErr := s.allocator.Release(ctx, collectionID, rng); relErr != nil {
			s.log.WithError(relErr).
				WithField("collection_id", collectionID).
				Error("supply rollback failed")
		}
		return collection.MintReceipt{}, err
	}

	mintedAt := time.Now().UTC()
	toks := make([]token.Token, 0, rng.Count)
	for id := rng.FirstID; id <= rng.LastID(); id++ {
		toks = append(toks, token.Token{
			ID:           id,
			CollectionID: collectionID,
			Owner:        req.Recipient,
			ParentID:     req.DestinationParent,
			MintedAt:     mintedAt,
		})
	}
	if err := s.tokens.CreateTokens(ctx, toks); err != nil {
		if relErr := s.allocator.Release(ctx, collectionID, rng); relErr != nil {
			s.log.WithError(relErr).
				WithField("collection_id", collectionID).
				Error("supply rollback failed")
		}
		return collection.MintReceipt{}, fmt.Errorf("record tokens: %w", err)
	}

	reference := fmt.Sprintf("mint %s [%d,%d]", collectionID, rng.FirstID, rng.LastID())
	if _, err := s.treasury.Credit(ctx, collectionID, paid, reference); err != nil {
		// Undo the persisted tokens and the reservation; a mint without
		// recorded proceeds must not stand.
		if delErr := s.tokens.DeleteTokens(ctx, collectionID, rng); delErr != nil {
			s.log.WithError(delErr).
				WithField("collection_id", collectionID).
				Error("token rollback failed")
		}
		if relErr := s.allocator.Release(ctx, collectionID, rng); relErr != nil {
			s.log.WithError(relErr).
				WithField("collection_id", collectionID).
				Error("supply rollback failed")
		}
		return collection.MintReceipt{}, fmt.Errorf("credit proceeds: %w", err)
	}

	metrics.SetSupply(collectionID, col.TotalMinted+rng.Count)
	s.log.WithField("collection_id", collectionID).
		WithField("first_id", rng.FirstID).
		WithField("count", rng.Count).
		WithField("recipient", req.Recipient).
		WithField("parent", req.DestinationParent).
		Info("minted")

	if col.TotalMinted+rng.Count == col.MaxSupply {
		s.log.WithField("collection_id", collectionID).Info("collection sold out")
	}

	return collection.MintReceipt{
		CollectionID: collectionID,
		Range:        rng,
		Recipient:    req.Recipient,
		Parent:       req.DestinationParent,
		PaidValue:    paid,
		MintedAt:     mintedAt,
	}, nil
}

// Tokens lists every minted token of a collection in identifier order.
func (s *Service) Tokens(ctx context.Context, collectionID string) ([]token.Token, error) {
	return s.tokens.ListTokens(ctx, collectionID)
}

// attachRange registers each reserved identifier with the asset registry in
// ascending order. The first failure aborts; the caller rolls back.
func (s *Service) attachRange(ctx context.Context, collectionID string, rng collection.TokenRange, req collection.MintRequest) error {
	for id := rng.FirstID; id <= rng.LastID(); id++ {
		attach := AttachRequest{
			CollectionID: collectionID,
			ParentID:     req.DestinationParent,
			ChildID:      id,
			Owner:        req.Recipient,
		}
		if err := s.registry.AttachChild(ctx, attach); err != nil {
			return fmt.Errorf("attach child %d under %d: %v: %w",
				id, req.DestinationParent, err, collection.ErrRegistryFailure)
		}
	}
	return nil
}

func failureStatus(err error) string {
	switch {
	case errors.Is(err, collection.ErrWrongPaymentAmount):
		return "wrong_payment"
	case errors.Is(err, collection.ErrSupplyExceeded):
		return "supply_exceeded"
	case errors.Is(err, collection.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, collection.ErrRegistryFailure):
		return "registry_failure"
	case errors.Is(err, collection.ErrMintInProgress):
		return "reentrant"
	default:
		return "error"
	}
}
