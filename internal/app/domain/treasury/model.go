// Package treasury defines the proceeds ledger types.
package treasury

import "time"

// EntryType discriminates ledger entries.
type EntryType string

const (
	EntryDeposit    EntryType = "deposit"
	EntryWithdrawal EntryType = "withdrawal"
)

// Entry is one ledger movement. To is set on withdrawals only.
type Entry struct {
	ID           string    `json:"id"`
	CollectionID string    `json:"collection_id"`
	Type         EntryType `json:"type"`
	Amount       uint64    `json:"amount"`
	To           string    `json:"to,omitempty"`
	Reference    string    `json:"reference,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Balance is the current proceeds position of a collection.
type Balance struct {
	CollectionID   string    `json:"collection_id"`
	Proceeds       uint64    `json:"proceeds"`
	TotalDeposited uint64    `json:"total_deposited"`
	TotalWithdrawn uint64    `json:"total_withdrawn"`
	UpdatedAt      time.Time `json:"updated_at"`
}
