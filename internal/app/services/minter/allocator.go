package minter

import (
	"context"

	"github.com/MintGate-Network/mint_layer/internal/app/domain/collection"
	"github.com/MintGate-Network/mint_layer/internal/app/storage"
)

// SupplyAllocator reserves contiguous identifier ranges against a collection's
// fixed supply cap. The cap check and counter advance are delegated to the
// store as one indivisible operation; the allocator adds input validation and
// the rollback path.
type SupplyAllocator struct {
	store storage.CollectionStore
}

// NewSupplyAllocator constructs an allocator over the given store.
func NewSupplyAllocator(store storage.CollectionStore) *SupplyAllocator {
	return &SupplyAllocator{store: store}
}

// Reserve allocates the next count identifiers of the collection. On success
// the returned range starts at totalMinted+1 and the counter has advanced by
// count. A cap violation fails with collection.ErrSupplyExceeded and no
// mutation.
func (a *SupplyAllocator) Reserve(ctx context.Context, collectionID string, count uint64) (collection.TokenRange, error) {
	if count == 0 {
		return collection.TokenRange{}, collection.ErrInvalidCount
	}
	return a.store.ReserveSupply(ctx, collectionID, count)
}

// Release returns a freshly reserved range, restoring the counter. Used only
// to roll back a mint whose registry attachment failed.
func (a *SupplyAllocator) Release(ctx context.Context, collectionID string, rng collection.TokenRange) error {
	return a.store.ReleaseSupply(ctx, collectionID, rng)
}
