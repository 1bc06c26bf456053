package minter

import "context"

// AttachRequest registers one newly minted identifier as a child of an
// existing parent token, owned by Owner. Payload is opaque to this core and
// forwarded to the registry unchanged; mints send it empty.
type AttachRequest struct {
	CollectionID string `json:"collection_id"`
	ParentID     uint64 `json:"parent_id"`
	ChildID      uint64 `json:"child_id"`
	Owner        string `json:"owner"`
	Payload      []byte `json:"payload,omitempty"`
}

// AssetRegistry is the external collaborator that persists token existence
// and the parent-child graph. Existence and ownership checks for the parent
// are the registry's responsibility; this core does not re-validate them.
type AssetRegistry interface {
	AttachChild(ctx context.Context, req AttachRequest) error
}
