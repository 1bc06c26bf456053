package minter

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/MintGate-Network/mint_layer/internal/app/domain/collection"
	treasurydomain "github.com/MintGate-Network/mint_layer/internal/app/domain/treasury"
	"github.com/MintGate-Network/mint_layer/internal/app/services/serial"
	treasurysvc "github.com/MintGate-Network/mint_layer/internal/app/services/treasury"
	"github.com/MintGate-Network/mint_layer/internal/app/storage/memory"
)

// fakeRegistry records attach calls and can be told to fail from a given call
// onward, or to call back into the minter mid-attachment.
type fakeRegistry struct {
	calls    []AttachRequest
	failFrom int // 1-based call number to start failing at, 0 means never
	reenter  func(ctx context.Context) error
}

func (f *fakeRegistry) AttachChild(ctx context.Context, req AttachRequest) error {
	f.calls = append(f.calls, req)
	if f.reenter != nil {
		if err := f.reenter(ctx); err != nil {
			return err
		}
	}
	if f.failFrom > 0 && len(f.calls) >= f.failFrom {
		return fmt.Errorf("registry rejected child %d", req.ChildID)
	}
	return nil
}

type fixture struct {
	store    *memory.Store
	registry *fakeRegistry
	treasury *treasurysvc.Service
	minter   *Service
	col      collection.Collection
}

func newFixture(t *testing.T, maxSupply, pricePerMint uint64) *fixture {
	t.Helper()

	store := memory.New()
	col, err := store.CreateCollection(context.Background(), collection.Collection{
		Name:                "Glass Figurines",
		Symbol:              "GLASS",
		MaxSupply:           maxSupply,
		PricePerMint:        pricePerMint,
		AuthorizedPrincipal: "principal-1",
	})
	if err != nil {
		t.Fatalf("create collection: %v", err)
	}

	registry := &fakeRegistry{}
	guard := serial.NewGuard()
	treasury := treasurysvc.New(store, store, nil, guard, nil)
	minter := New(store, store, registry, treasury, guard, nil)

	return &fixture{store: store, registry: registry, treasury: treasury, minter: minter, col: col}
}

func (f *fixture) request(count, supplied uint64) collection.MintRequest {
	return collection.MintRequest{
		Caller:            "principal-1",
		Recipient:         "alice",
		Count:             count,
		DestinationParent: 7,
		SuppliedValue:     supplied,
	}
}

func TestMintHappyPath(t *testing.T) {
	f := newFixture(t, 100, 10)
	ctx := context.Background()

	receipt, err := f.minter.Mint(ctx, f.col.ID, f.request(3, 30))
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if receipt.Range.FirstID != 1 || receipt.Range.Count != 3 {
		t.Fatalf("expected range [1,3], got [%d,%d]", receipt.Range.FirstID, receipt.Range.LastID())
	}
	if receipt.PaidValue != 30 {
		t.Fatalf("expected paid 30, got %d", receipt.PaidValue)
	}

	// The registry saw every identifier in ascending order under the parent.
	if len(f.registry.calls) != 3 {
		t.Fatalf("expected 3 attach calls, got %d", len(f.registry.calls))
	}
	for i, call := range f.registry.calls {
		if call.ChildID != uint64(i+1) {
			t.Fatalf("attach call %d carried child %d", i, call.ChildID)
		}
		if call.ParentID != 7 {
			t.Fatalf("attach call %d carried parent %d", i, call.ParentID)
		}
	}

	toks, err := f.minter.Tokens(ctx, f.col.ID)
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	if len(toks) != 3 {
		t.Fatalf("expected 3 tokens, got %d", len(toks))
	}
	for i, tok := range toks {
		if tok.ID != uint64(i+1) || tok.Owner != "alice" || tok.ParentID != 7 {
			t.Fatalf("unexpected token %+v", tok)
		}
	}

	bal, err := f.treasury.Balance(ctx, f.col.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if bal.Proceeds != 30 {
		t.Fatalf("expected proceeds 30, got %d", bal.Proceeds)
	}
}

func TestMintRangesAreConsecutive(t *testing.T) {
	f := newFixture(t, 100, 10)
	ctx := context.Background()

	first, err := f.minter.Mint(ctx, f.col.ID, f.request(3, 30))
	if err != nil {
		t.Fatalf("first mint: %v", err)
	}
	second, err := f.minter.Mint(ctx, f.col.ID, f.request(2, 20))
	if err != nil {
		t.Fatalf("second mint: %v", err)
	}

	if first.Range.FirstID != 1 || first.Range.LastID() != 3 {
		t.Fatalf("first range [%d,%d]", first.Range.FirstID, first.Range.LastID())
	}
	if second.Range.FirstID != 4 || second.Range.LastID() != 5 {
		t.Fatalf("second range [%d,%d]", second.Range.FirstID, second.Range.LastID())
	}
}

func TestMintWrongPayment(t *testing.T) {
	f := newFixture(t, 100, 10)
	ctx := context.Background()

	for _, supplied := range []uint64{29, 31, 0} {
		_, err := f.minter.Mint(ctx, f.col.ID, f.request(3, supplied))
		if !errors.Is(err, collection.ErrWrongPaymentAmount) {
			t.Fatalf("supplied %d: expected ErrWrongPaymentAmount, got %v", supplied, err)
		}
	}

	// Nothing was minted and nothing was retained.
	col, err := f.store.GetCollection(ctx, f.col.ID)
	if err != nil {
		t.Fatalf("get collection: %v", err)
	}
	if col.TotalMinted != 0 {
		t.Fatalf("expected total minted 0, got %d", col.TotalMinted)
	}
	bal, err := f.treasury.Balance(ctx, f.col.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if bal.Proceeds != 0 {
		t.Fatalf("expected proceeds 0, got %d", bal.Proceeds)
	}
}

func TestMintSupplyExceeded(t *testing.T) {
	f := newFixture(t, 5, 10)
	ctx := context.Background()

	if _, err := f.minter.Mint(ctx, f.col.ID, f.request(4, 40)); err != nil {
		t.Fatalf("mint to 4: %v", err)
	}

	_, err := f.minter.Mint(ctx, f.col.ID, f.request(2, 20))
	if !errors.Is(err, collection.ErrSupplyExceeded) {
		t.Fatalf("expected ErrSupplyExceeded, got %v", err)
	}

	// The failed request retained no payment and minted nothing.
	bal, err := f.treasury.Balance(ctx, f.col.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if bal.Proceeds != 40 {
		t.Fatalf("expected proceeds 40, got %d", bal.Proceeds)
	}

	// The remaining supply is still mintable.
	receipt, err := f.minter.Mint(ctx, f.col.ID, f.request(1, 10))
	if err != nil {
		t.Fatalf("mint last: %v", err)
	}
	if receipt.Range.FirstID != 5 {
		t.Fatalf("expected id 5, got %d", receipt.Range.FirstID)
	}

	col, err := f.store.GetCollection(ctx, f.col.ID)
	if err != nil {
		t.Fatalf("get collection: %v", err)
	}
	if col.Status() != collection.StatusSoldOut {
		t.Fatalf("expected sold out, got %s", col.Status())
	}
}

func TestMintUnauthorized(t *testing.T) {
	f := newFixture(t, 100, 10)
	ctx := context.Background()

	req := f.request(1, 10)
	req.Caller = "mallory"
	_, err := f.minter.Mint(ctx, f.col.ID, req)
	if !errors.Is(err, collection.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	col, err := f.store.GetCollection(ctx, f.col.ID)
	if err != nil {
		t.Fatalf("get collection: %v", err)
	}
	if col.TotalMinted != 0 {
		t.Fatalf("expected total minted 0, got %d", col.TotalMinted)
	}
}

func TestMintRegistryFailureRollsBack(t *testing.T) {
	f := newFixture(t, 100, 10)
	ctx := context.Background()

	if _, err := f.minter.Mint(ctx, f.col.ID, f.request(2, 20)); err != nil {
		t.Fatalf("seed mint: %v", err)
	}

	// Fail on the second attachment of the next batch.
	f.registry.failFrom = 4

	_, err := f.minter.Mint(ctx, f.col.ID, f.request(3, 30))
	if !errors.Is(err, collection.ErrRegistryFailure) {
		t.Fatalf("expected ErrRegistryFailure, got %v", err)
	}

	// All or nothing: the counter is restored, no partial tokens exist, and
	// the payment was not retained.
	col, err := f.store.GetCollection(ctx, f.col.ID)
	if err != nil {
		t.Fatalf("get collection: %v", err)
	}
	if col.TotalMinted != 2 {
		t.Fatalf("expected total minted 2 after rollback, got %d", col.TotalMinted)
	}
	toks, err := f.minter.Tokens(ctx, f.col.ID)
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	if len(toks) != 2 {
		t.Fatalf("expected 2 tokens after rollback, got %d", len(toks))
	}
	bal, err := f.treasury.Balance(ctx, f.col.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if bal.Proceeds != 20 {
		t.Fatalf("expected proceeds 20, got %d", bal.Proceeds)
	}

	// The same range is handed out again on the next successful mint.
	f.registry.failFrom = 0
	receipt, err := f.minter.Mint(ctx, f.col.ID, f.request(3, 30))
	if err != nil {
		t.Fatalf("retry mint: %v", err)
	}
	if receipt.Range.FirstID != 3 {
		t.Fatalf("expected retry to start at 3, got %d", receipt.Range.FirstID)
	}
}

func TestMintReentrantRegistryRejected(t *testing.T) {
	f := newFixture(t, 100, 10)
	ctx := context.Background()

	// A registry that calls back into the minter for the same collection must
	// observe the in-flight guard, and the triggering mint must roll back.
	var reentryErr error
	f.registry.reenter = func(ctx context.Context) error {
		_, reentryErr = f.minter.Mint(ctx, f.col.ID, f.request(1, 10))
		return reentryErr
	}

	_, err := f.minter.Mint(ctx, f.col.ID, f.request(1, 10))
	if !errors.Is(err, collection.ErrRegistryFailure) {
		t.Fatalf("expected ErrRegistryFailure, got %v", err)
	}
	if !errors.Is(reentryErr, collection.ErrMintInProgress) {
		t.Fatalf("expected inner ErrMintInProgress, got %v", reentryErr)
	}

	col, err := f.store.GetCollection(ctx, f.col.ID)
	if err != nil {
		t.Fatalf("get collection: %v", err)
	}
	if col.TotalMinted != 0 {
		t.Fatalf("expected total minted 0 after rollback, got %d", col.TotalMinted)
	}
}

// failingDepositStore rejects every proceeds deposit.
type failingDepositStore struct {
	*memory.Store
}

func (f *failingDepositStore) RecordDeposit(context.Context, string, uint64, string) (treasurydomain.Entry, error) {
	return treasurydomain.Entry{}, fmt.Errorf("ledger unavailable")
}

func TestMintCreditFailureRollsBack(t *testing.T) {
	store := memory.New()
	col, err := store.CreateCollection(context.Background(), collection.Collection{
		Name:                "Glass Figurines",
		Symbol:              "GLASS",
		MaxSupply:           100,
		PricePerMint:        10,
		AuthorizedPrincipal: "principal-1",
	})
	if err != nil {
		t.Fatalf("create collection: %v", err)
	}

	guard := serial.NewGuard()
	treasury := treasurysvc.New(store, &failingDepositStore{Store: store}, nil, guard, nil)
	minter := New(store, store, &fakeRegistry{}, treasury, guard, nil)
	ctx := context.Background()

	_, err = minter.Mint(ctx, col.ID, collection.MintRequest{
		Caller:            "principal-1",
		Recipient:         "alice",
		Count:             2,
		DestinationParent: 7,
		SuppliedValue:     20,
	})
	if err == nil {
		t.Fatal("expected mint to fail when the credit fails")
	}

	// No partial state survives: counter restored, no token rows.
	got, err := store.GetCollection(ctx, col.ID)
	if err != nil {
		t.Fatalf("get collection: %v", err)
	}
	if got.TotalMinted != 0 {
		t.Fatalf("expected total minted 0 after rollback, got %d", got.TotalMinted)
	}
	toks, err := store.ListTokens(ctx, col.ID)
	if err != nil {
		t.Fatalf("list tokens: %v", err)
	}
	if len(toks) != 0 {
		t.Fatalf("expected no tokens after rollback, got %d", len(toks))
	}
}

func TestMintZeroCount(t *testing.T) {
	f := newFixture(t, 100, 10)

	_, err := f.minter.Mint(context.Background(), f.col.ID, f.request(0, 0))
	if !errors.Is(err, collection.ErrInvalidCount) {
		t.Fatalf("expected ErrInvalidCount, got %v", err)
	}
}

func TestMintUnknownCollection(t *testing.T) {
	f := newFixture(t, 100, 10)

	_, err := f.minter.Mint(context.Background(), "missing", f.request(1, 10))
	if !errors.Is(err, collection.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMintFreeCollection(t *testing.T) {
	f := newFixture(t, 10, 0)

	receipt, err := f.minter.Mint(context.Background(), f.col.ID, f.request(2, 0))
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if receipt.PaidValue != 0 {
		t.Fatalf("expected paid 0, got %d", receipt.PaidValue)
	}

	// Any nonzero value against a free collection is a wrong payment.
	_, err = f.minter.Mint(context.Background(), f.col.ID, f.request(1, 1))
	if !errors.Is(err, collection.ErrWrongPaymentAmount) {
		t.Fatalf("expected ErrWrongPaymentAmount, got %v", err)
	}
}
