package treasury

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MintGate-Network/mint_layer/pkg/logger"
)

// ValueTransferrer moves native-currency value out of the treasury. The
// transfer either completes or fails as a whole; a failure is reported, never
// swallowed, and never retried here.
type ValueTransferrer interface {
	Transfer(ctx context.Context, to string, amount uint64) error
}

// HTTPTransferrer executes transfers through an HTTP payout endpoint.
type HTTPTransferrer struct {
	client   *http.Client
	endpoint *url.URL
	apiKey   string
	log      *logger.Logger
}

var _ ValueTransferrer = (*HTTPTransferrer)(nil)

// NewHTTPTransferrer constructs a transferrer for the provided endpoint.
func NewHTTPTransferrer(client *http.Client, endpoint, apiKey string, log *logger.Logger) (*HTTPTransferrer, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("transfer endpoint required")
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse transfer endpoint: %w", err)
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if log == nil {
		log = logger.NewDefault("treasury-transfer")
	}
	return &HTTPTransferrer{
		client:   client,
		endpoint: parsed,
		apiKey:   strings.TrimSpace(apiKey),
		log:      log,
	}, nil
}

// Transfer posts the payout to {endpoint}/transfers and fails unless it is
// acknowledged.
func (t *HTTPTransferrer) Transfer(ctx context.Context, to string, amount uint64) error {
	body, err := json.Marshal(map[string]any{"to": to, "amount": amount})
	if err != nil {
		return fmt.Errorf("encode transfer: %w", err)
	}

	requestURL := t.endpoint.JoinPath("transfers")
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build transfer request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if t.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("transfer request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		if payload.Error != "" {
			return fmt.Errorf("transfer status %d: %s", resp.StatusCode, payload.Error)
		}
		return fmt.Errorf("transfer status %d", resp.StatusCode)
	}
	return nil
}
