package storage

import (
	"context"
	"errors"

	"github.com/MintGate-Network/mint_layer/internal/app/domain/collection"
	"github.com/MintGate-Network/mint_layer/internal/app/domain/token"
	"github.com/MintGate-Network/mint_layer/internal/app/domain/treasury"
)

// CollectionStore persists collection issuance state.
//
// ReserveSupply and ReleaseSupply are the only ways TotalMinted moves.
// Implementations must make ReserveSupply indivisible: the cap check and the
// counter advance happen as one step, so a concurrent reservation can never
// observe a stale counter.
type CollectionStore interface {
	CreateCollection(ctx context.Context, col collection.Collection) (collection.Collection, error)
	GetCollection(ctx context.Context, id string) (collection.Collection, error)
	ListCollections(ctx context.Context) ([]collection.Collection, error)

	// ReserveSupply advances TotalMinted by count and returns the reserved
	// contiguous range (1-indexed). Fails with collection.ErrSupplyExceeded,
	// leaving the counter untouched, when the cap would be crossed.
	ReserveSupply(ctx context.Context, id string, count uint64) (collection.TokenRange, error)

	// ReleaseSupply undoes a reservation made by ReserveSupply. Only the most
	// recent (tail) range of a collection may be released; this is the mint
	// rollback path and operations are serialized per collection.
	ReleaseSupply(ctx context.Context, id string, rng collection.TokenRange) error
}

// TokenStore persists minted token records. Records for one mint are written
// in a single call only after every registry attachment succeeded, so a
// partially attached range never appears here.
type TokenStore interface {
	CreateTokens(ctx context.Context, toks []token.Token) error
	ListTokens(ctx context.Context, collectionID string) ([]token.Token, error)
	GetToken(ctx context.Context, collectionID string, id uint64) (token.Token, error)

	// DeleteTokens removes the records of one identifier range. This is the
	// mint rollback path for failures after tokens were persisted.
	DeleteTokens(ctx context.Context, collectionID string, rng collection.TokenRange) error
}

// TreasuryStore persists the proceeds ledger. Balance updates and entry
// appends are applied together; RecordWithdrawal fails without mutation when
// the balance is insufficient.
type TreasuryStore interface {
	RecordDeposit(ctx context.Context, collectionID string, amount uint64, reference string) (treasury.Entry, error)
	RecordWithdrawal(ctx context.Context, collectionID string, amount uint64, to, reference string) (treasury.Entry, error)
	GetBalance(ctx context.Context, collectionID string) (treasury.Balance, error)
	ListEntries(ctx context.Context, collectionID string) ([]treasury.Entry, error)
}

// ErrInsufficientProceeds is returned by RecordWithdrawal when the requested
// amount exceeds the held balance.
var ErrInsufficientProceeds = errors.New("insufficient proceeds balance")
