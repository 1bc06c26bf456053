// Package collection defines the issuance domain: capped collections,
// contiguous identifier ranges and the mint request/receipt pair.
package collection

import "time"

// Status describes whether a collection can still mint.
type Status string

const (
	StatusActive  Status = "active"
	StatusSoldOut Status = "sold_out"
)

// Collection is a supply-capped token collection. MaxSupply, PricePerMint and
// AuthorizedPrincipal are fixed at creation; only TotalMinted advances.
type Collection struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Symbol              string    `json:"symbol"`
	MaxSupply           uint64    `json:"max_supply"`
	TotalMinted         uint64    `json:"total_minted"`
	PricePerMint        uint64    `json:"price_per_mint"`
	AuthorizedPrincipal string    `json:"authorized_principal"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Status reports whether supply remains.
func (c Collection) Status() Status {
	if c.TotalMinted >= c.MaxSupply {
		return StatusSoldOut
	}
	return StatusActive
}

// Remaining returns how many identifiers are still mintable.
func (c Collection) Remaining() uint64 {
	if c.TotalMinted >= c.MaxSupply {
		return 0
	}
	return c.MaxSupply - c.TotalMinted
}

// TokenRange is a contiguous run of identifiers. Identifiers are 1-indexed;
// the first range of a collection starts at 1.
type TokenRange struct {
	FirstID uint64 `json:"first_id"`
	Count   uint64 `json:"count"`
}

// LastID returns the final identifier of the range.
func (r TokenRange) LastID() uint64 {
	return r.FirstID + r.Count - 1
}

// MintRequest carries everything a nested mint needs.
type MintRequest struct {
	Caller            string
	Recipient         string
	Count             uint64
	DestinationParent uint64
	SuppliedValue     uint64
}

// MintReceipt records a completed mint.
type MintReceipt struct {
	CollectionID string     `json:"collection_id"`
	Range        TokenRange `json:"range"`
	Recipient    string     `json:"recipient"`
	Parent       uint64     `json:"parent"`
	PaidValue    uint64     `json:"paid_value"`
	MintedAt     time.Time  `json:"minted_at"`
}
