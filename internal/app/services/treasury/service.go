// Package treasury accumulates mint proceeds and distributes them to the
// authorized principal.
package treasury

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MintGate-Network/mint_layer/internal/app/domain/collection"
	domain "github.com/MintGate-Network/mint_layer/internal/app/domain/treasury"
	"github.com/MintGate-Network/mint_layer/internal/app/metrics"
	"github.com/MintGate-Network/mint_layer/internal/app/services/serial"
	"github.com/MintGate-Network/mint_layer/internal/app/storage"
	"github.com/MintGate-Network/mint_layer/pkg/logger"
)

// Service manages the proceeds ledger of each collection.
type Service struct {
	collections storage.CollectionStore
	store       storage.TreasuryStore
	transferrer ValueTransferrer
	guard       *serial.Guard
	log         *logger.Logger
}

// New constructs a treasury service. The guard must be the same instance used
// by the minter so that mint and withdraw serialize against each other.
func New(collections storage.CollectionStore, store storage.TreasuryStore, transferrer ValueTransferrer, guard *serial.Guard, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("treasury")
	}
	if guard == nil {
		guard = serial.NewGuard()
	}
	return &Service{
		collections: collections,
		store:       store,
		transferrer: transferrer,
		guard:       guard,
		log:         log,
	}
}

// Credit records mint proceeds. It is called by the minter inside its own
// guarded operation and performs no authorization of its own.
func (s *Service) Credit(ctx context.Context, collectionID string, amount uint64, reference string) (domain.Entry, error) {
	entry, err := s.store.RecordDeposit(ctx, collectionID, amount, reference)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("record deposit: %w", err)
	}
	s.log.WithField("collection_id", collectionID).
		WithField("amount", amount).
		Debug("proceeds credited")
	return entry, nil
}

// Withdraw moves amount of accumulated proceeds to the given address. Only
// the collection's authorized principal may withdraw; the balance is debited
// as the final step, after the outbound transfer succeeded.
func (s *Service) Withdraw(ctx context.Context, collectionID, caller, to string, amount uint64) (domain.Entry, error) {
	to = strings.TrimSpace(to)
	if to == "" {
		return domain.Entry{}, fmt.Errorf("destination address is required")
	}
	if amount == 0 {
		return domain.Entry{}, fmt.Errorf("amount must be positive")
	}

	if err := s.guard.Acquire(collectionID); err != nil {
		return domain.Entry{}, err
	}
	defer s.guard.Release(collectionID)

	col, err := s.collections.GetCollection(ctx, collectionID)
	if err != nil {
		return domain.Entry{}, err
	}
	if caller != col.AuthorizedPrincipal {
		return domain.Entry{}, fmt.Errorf("caller %s: %w", caller, collection.ErrUnauthorized)
	}

	bal, err := s.store.GetBalance(ctx, collectionID)
	if err != nil {
		return domain.Entry{}, err
	}
	if amount > bal.Proceeds {
		metrics.RecordWithdrawal("rejected")
		return domain.Entry{}, fmt.Errorf("requested %d, held %d: %w", amount, bal.Proceeds, collection.ErrTransferFailed)
	}

	if s.transferrer == nil {
		return domain.Entry{}, fmt.Errorf("no value transferrer configured: %w", collection.ErrTransferFailed)
	}
	if err := s.transferrer.Transfer(ctx, to, amount); err != nil {
		metrics.RecordWithdrawal("failed")
		return domain.Entry{}, fmt.Errorf("transfer to %s: %v: %w", to, err, collection.ErrTransferFailed)
	}

	entry, err := s.store.RecordWithdrawal(ctx, collectionID, amount, to, "")
	if err != nil {
		if errors.Is(err, storage.ErrInsufficientProceeds) {
			return domain.Entry{}, fmt.Errorf("%v: %w", err, collection.ErrTransferFailed)
		}
		// The transfer went out but the ledger debit failed; this must not
		// pass silently.
		s.log.WithError(err).
			WithField("collection_id", collectionID).
			Error("ledger debit failed after successful transfer")
		return domain.Entry{}, fmt.Errorf("record withdrawal: %w", err)
	}

	metrics.RecordWithdrawal("completed")
	s.log.WithField("collection_id", collectionID).
		WithField("to", to).
		WithField("amount", amount).
		Info("proceeds withdrawn")
	return entry, nil
}

// Balance returns the inspectable proceeds position.
func (s *Service) Balance(ctx context.Context, collectionID string) (domain.Balance, error) {
	if _, err := s.collections.GetCollection(ctx, collectionID); err != nil {
		return domain.Balance{}, err
	}
	return s.store.GetBalance(ctx, collectionID)
}

// Entries returns the proceeds ledger of a collection.
func (s *Service) Entries(ctx context.Context, collectionID string) ([]domain.Entry, error) {
	if _, err := s.collections.GetCollection(ctx, collectionID); err != nil {
		return nil, err
	}
	return s.store.ListEntries(ctx, collectionID)
}
