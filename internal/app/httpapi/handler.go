// Package httpapi exposes the issuance core over REST.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	app "github.com/MintGate-Network/mint_layer/internal/app"
	"github.com/MintGate-Network/mint_layer/internal/app/domain/collection"
)

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app *app.Application
}

// NewHandler returns a router exposing the core REST API.
func NewHandler(application *app.Application) http.Handler {
	h := &handler{app: application}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.HandleFunc("/collections", h.createCollection).Methods(http.MethodPost)
	r.HandleFunc("/collections", h.listCollections).Methods(http.MethodGet)
	r.HandleFunc("/collections/{id}", h.getCollection).Methods(http.MethodGet)
	r.HandleFunc("/collections/{id}/price", h.price).Methods(http.MethodGet)
	r.HandleFunc("/collections/{id}/mint", h.mint).Methods(http.MethodPost)
	r.HandleFunc("/collections/{id}/withdraw", h.withdraw).Methods(http.MethodPost)
	r.HandleFunc("/collections/{id}/tokens", h.listTokens).Methods(http.MethodGet)
	r.HandleFunc("/collections/{id}/treasury", h.treasury).Methods(http.MethodGet)
	return r
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) createCollection(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name                string `json:"name"`
		Symbol              string `json:"symbol"`
		MaxSupply           uint64 `json:"max_supply"`
		PricePerMint        uint64 `json:"price_per_mint"`
		AuthorizedPrincipal string `json:"authorized_principal"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	col, err := h.app.Collections.Create(r.Context(), payload.Name, payload.Symbol,
		payload.MaxSupply, payload.PricePerMint, payload.AuthorizedPrincipal)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, collectionView(col))
}

func (h *handler) listCollections(w http.ResponseWriter, r *http.Request) {
	cols, err := h.app.Collections.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	views := make([]map[string]any, 0, len(cols))
	for _, col := range cols {
		views = append(views, collectionView(col))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *handler) getCollection(w http.ResponseWriter, r *http.Request) {
	col, err := h.app.Collections.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, collectionView(col))
}

func (h *handler) price(w http.ResponseWriter, r *http.Request) {
	price, err := h.app.Collections.PricePerMint(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"price_per_mint": price})
}

func (h *handler) mint(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Caller            string `json:"caller"`
		Recipient         string `json:"recipient"`
		Count             uint64 `json:"count"`
		DestinationParent uint64 `json:"destination_parent"`
		SuppliedValue     uint64 `json:"supplied_value"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	receipt, err := h.app.Minter.Mint(r.Context(), mux.Vars(r)["id"], collection.MintRequest{
		Caller:            payload.Caller,
		Recipient:         payload.Recipient,
		Count:             payload.Count,
		DestinationParent: payload.DestinationParent,
		SuppliedValue:     payload.SuppliedValue,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"collection_id": receipt.CollectionID,
		"first_id":      receipt.Range.FirstID,
		"last_id":       receipt.Range.LastID(),
		"count":         receipt.Range.Count,
		"recipient":     receipt.Recipient,
		"parent":        receipt.Parent,
		"paid_value":    receipt.PaidValue,
		"minted_at":     receipt.MintedAt,
	})
}

func (h *handler) withdraw(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Caller string `json:"caller"`
		To     string `json:"to"`
		Amount uint64 `json:"amount"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	entry, err := h.app.Treasury.Withdraw(r.Context(), mux.Vars(r)["id"], payload.Caller, payload.To, payload.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *handler) listTokens(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := h.app.Collections.Get(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	toks, err := h.app.Minter.Tokens(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, toks)
}

func (h *handler) treasury(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	bal, err := h.app.Treasury.Balance(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	entries, err := h.app.Treasury.Entries(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"collection_id":   bal.CollectionID,
		"proceeds":        bal.Proceeds,
		"total_deposited": bal.TotalDeposited,
		"total_withdrawn": bal.TotalWithdrawn,
		"entries":         entries,
	})
}

func collectionView(col collection.Collection) map[string]any {
	return map[string]any{
		"id":                   col.ID,
		"name":                 col.Name,
		"symbol":               col.Symbol,
		"max_supply":           col.MaxSupply,
		"total_minted":         col.TotalMinted,
		"price_per_mint":       col.PricePerMint,
		"authorized_principal": col.AuthorizedPrincipal,
		"status":               col.Status(),
		"created_at":           col.CreatedAt,
		"updated_at":           col.UpdatedAt,
	}
}

// writeDomainError maps the issuance error taxonomy onto HTTP statuses so a
// caller can distinguish the failure kinds.
func writeDomainError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, collection.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, collection.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, collection.ErrWrongPaymentAmount):
		status = http.StatusPaymentRequired
	case errors.Is(err, collection.ErrSupplyExceeded):
		status = http.StatusConflict
	case errors.Is(err, collection.ErrMintInProgress):
		status = http.StatusConflict
	case errors.Is(err, collection.ErrRegistryFailure):
		status = http.StatusBadGateway
	case errors.Is(err, collection.ErrTransferFailed):
		status = http.StatusBadGateway
	}
	writeError(w, status, err)
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
