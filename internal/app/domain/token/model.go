// Package token defines a minted token and its nesting position.
package token

import "time"

// Token is one minted identifier. ParentID names the asset it is nested
// under in the external registry.
type Token struct {
	ID           uint64    `json:"id"`
	CollectionID string    `json:"collection_id"`
	Owner        string    `json:"owner"`
	ParentID     uint64    `json:"parent_id"`
	MintedAt     time.Time `json:"minted_at"`
}
