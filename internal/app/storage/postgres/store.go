// Package postgres implements the storage interfaces backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MintGate-Network/mint_layer/internal/app/domain/collection"
	"github.com/MintGate-Network/mint_layer/internal/app/domain/token"
	"github.com/MintGate-Network/mint_layer/internal/app/domain/treasury"
	"github.com/MintGate-Network/mint_layer/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.CollectionStore = (*Store)(nil)
var _ storage.TokenStore = (*Store)(nil)
var _ storage.TreasuryStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// --- CollectionStore --------------------------------------------------------

func (s *Store) CreateCollection(ctx context.Context, col collection.Collection) (collection.Collection, error) {
	if col.ID == "" {
		col.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	col.CreatedAt = now
	col.UpdatedAt = now
	col.TotalMinted = 0

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO collections (id, name, symbol, max_supply, total_minted, price_per_mint, authorized_principal, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, $5, $6, $7, $8)
	`, col.ID, col.Name, col.Symbol, col.MaxSupply, col.PricePerMint, col.AuthorizedPrincipal, col.CreatedAt, col.UpdatedAt)
	if err != nil {
		return collection.Collection{}, err
	}
	return col, nil
}

func (s *Store) GetCollection(ctx context.Context, id string) (collection.Collection, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, symbol, max_supply, total_minted, price_per_mint, authorized_principal, created_at, updated_at
		FROM collections
		WHERE id = $1
	`, id)

	var col collection.Collection
	err := row.Scan(&col.ID, &col.Name, &col.Symbol, &col.MaxSupply, &col.TotalMinted,
		&col.PricePerMint, &col.AuthorizedPrincipal, &col.CreatedAt, &col.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return collection.Collection{}, fmt.Errorf("collection %s: %w", id, collection.ErrNotFound)
	}
	if err != nil {
		return collection.Collection{}, err
	}
	return col, nil
}

func (s *Store) ListCollections(ctx context.Context) ([]collection.Collection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, symbol, max_supply, total_minted, price_per_mint, authorized_principal, created_at, updated_at
		FROM collections
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []collection.Collection
	for rows.Next() {
		var col collection.Collection
		if err := rows.Scan(&col.ID, &col.Name, &col.Symbol, &col.MaxSupply, &col.TotalMinted,
			&col.PricePerMint, &col.AuthorizedPrincipal, &col.CreatedAt, &col.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, col)
	}
	return result, rows.Err()
}

// ReserveSupply performs the cap check and counter advance in one conditional
// UPDATE, so concurrent reservations serialize on the row and can never
// observe a stale counter.
func (s *Store) ReserveSupply(ctx context.Context, id string, count uint64) (collection.TokenRange, error) {
	if count == 0 {
		return collection.TokenRange{}, collection.ErrInvalidCount
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE collections
		SET total_minted = total_minted + $2, updated_at = $3
		WHERE id = $1 AND total_minted + $2 <= max_supply
		RETURNING total_minted
	`, id, count, time.Now().UTC())

	var totalAfter uint64
	err := row.Scan(&totalAfter)
	if errors.Is(err, sql.ErrNoRows) {
		// Either the collection is unknown or the cap would be crossed.
		col, getErr := s.GetCollection(ctx, id)
		if getErr != nil {
			return collection.TokenRange{}, getErr
		}
		return collection.TokenRange{}, fmt.Errorf("%d of %d minted, requested %d: %w",
			col.TotalMinted, col.MaxSupply, count, collection.ErrSupplyExceeded)
	}
	if err != nil {
		return collection.TokenRange{}, err
	}

	return collection.TokenRange{FirstID: totalAfter - count + 1, Count: count}, nil
}

func (s *Store) ReleaseSupply(ctx context.Context, id string, rng collection.TokenRange) error {
	if rng.Count == 0 {
		return fmt.Errorf("empty range")
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE collections
		SET total_minted = total_minted - $2, updated_at = $3
		WHERE id = $1 AND total_minted = $4
	`, id, rng.Count, time.Now().UTC(), rng.LastID())
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("range [%d,%d] is not the reservation tail of collection %s",
			rng.FirstID, rng.LastID(), id)
	}
	return nil
}

// --- TokenStore -------------------------------------------------------------

func (s *Store) CreateTokens(ctx context.Context, toks []token.Token) error {
	if len(toks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, tok := range toks {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO tokens (collection_id, token_id, owner, parent_id, minted_at)
			VALUES ($1, $2, $3, $4, $5)
		`, tok.CollectionID, tok.ID, tok.Owner, tok.ParentID, tok.MintedAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) ListTokens(ctx context.Context, collectionID string) ([]token.Token, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT collection_id, token_id, owner, parent_id, minted_at
		FROM tokens
		WHERE collection_id = $1
		ORDER BY token_id
	`, collectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []token.Token
	for rows.Next() {
		var tok token.Token
		if err := rows.Scan(&tok.CollectionID, &tok.ID, &tok.Owner, &tok.ParentID, &tok.MintedAt); err != nil {
			return nil, err
		}
		result = append(result, tok)
	}
	return result, rows.Err()
}

func (s *Store) DeleteTokens(ctx context.Context, collectionID string, rng collection.TokenRange) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM tokens
		WHERE collection_id = $1 AND token_id BETWEEN $2 AND $3
	`, collectionID, rng.FirstID, rng.LastID())
	return err
}

func (s *Store) GetToken(ctx context.Context, collectionID string, id uint64) (token.Token, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT collection_id, token_id, owner, parent_id, minted_at
		FROM tokens
		WHERE collection_id = $1 AND token_id = $2
	`, collectionID, id)

	var tok token.Token
	err := row.Scan(&tok.CollectionID, &tok.ID, &tok.Owner, &tok.ParentID, &tok.MintedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return token.Token{}, fmt.Errorf("token %d in collection %s: %w", id, collectionID, collection.ErrNotFound)
	}
	if err != nil {
		return token.Token{}, err
	}
	return tok, nil
}

// --- TreasuryStore ----------------------------------------------------------

func (s *Store) RecordDeposit(ctx context.Context, collectionID string, amount uint64, reference string) (treasury.Entry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return treasury.Entry{}, err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO treasury_balances (collection_id, proceeds, total_deposited, total_withdrawn, updated_at)
		VALUES ($1, $2, $2, 0, $3)
		ON CONFLICT (collection_id) DO UPDATE
		SET proceeds = treasury_balances.proceeds + $2,
		    total_deposited = treasury_balances.total_deposited + $2,
		    updated_at = $3
	`, collectionID, amount, now); err != nil {
		return treasury.Entry{}, err
	}

	entry := treasury.Entry{
		ID:           uuid.NewString(),
		CollectionID: collectionID,
		Type:         treasury.EntryDeposit,
		Amount:       amount,
		Reference:    reference,
		CreatedAt:    now,
	}
	if err := insertEntry(ctx, tx, entry); err != nil {
		return treasury.Entry{}, err
	}
	if err := tx.Commit(); err != nil {
		return treasury.Entry{}, err
	}
	return entry, nil
}

func (s *Store) RecordWithdrawal(ctx context.Context, collectionID string, amount uint64, to, reference string) (treasury.Entry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return treasury.Entry{}, err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx, `
		UPDATE treasury_balances
		SET proceeds = proceeds - $2,
		    total_withdrawn = total_withdrawn + $2,
		    updated_at = $3
		WHERE collection_id = $1 AND proceeds >= $2
	`, collectionID, amount, now)
	if err != nil {
		return treasury.Entry{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return treasury.Entry{}, fmt.Errorf("collection %s: %w", collectionID, storage.ErrInsufficientProceeds)
	}

	entry := treasury.Entry{
		ID:           uuid.NewString(),
		CollectionID: collectionID,
		Type:         treasury.EntryWithdrawal,
		Amount:       amount,
		To:           to,
		Reference:    reference,
		CreatedAt:    now,
	}
	if err := insertEntry(ctx, tx, entry); err != nil {
		return treasury.Entry{}, err
	}
	if err := tx.Commit(); err != nil {
		return treasury.Entry{}, err
	}
	return entry, nil
}

func insertEntry(ctx context.Context, tx *sql.Tx, entry treasury.Entry) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO treasury_entries (id, collection_id, entry_type, amount, recipient, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, entry.ID, entry.CollectionID, string(entry.Type), entry.Amount, entry.To, entry.Reference, entry.CreatedAt)
	return err
}

func (s *Store) GetBalance(ctx context.Context, collectionID string) (treasury.Balance, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT collection_id, proceeds, total_deposited, total_withdrawn, updated_at
		FROM treasury_balances
		WHERE collection_id = $1
	`, collectionID)

	var bal treasury.Balance
	err := row.Scan(&bal.CollectionID, &bal.Proceeds, &bal.TotalDeposited, &bal.TotalWithdrawn, &bal.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return treasury.Balance{CollectionID: collectionID}, nil
	}
	if err != nil {
		return treasury.Balance{}, err
	}
	return bal, nil
}

func (s *Store) ListEntries(ctx context.Context, collectionID string) ([]treasury.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, collection_id, entry_type, amount, recipient, reference, created_at
		FROM treasury_entries
		WHERE collection_id = $1
		ORDER BY created_at
	`, collectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []treasury.Entry
	for rows.Next() {
		var entry treasury.Entry
		var entryType string
		if err := rows.Scan(&entry.ID, &entry.CollectionID, &entryType, &entry.Amount,
			&entry.To, &entry.Reference, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.Type = treasury.EntryType(entryType)
		result = append(result, entry)
	}
	return result, rows.Err()
}
