package minter

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

// HTTPRegistry talks to an asset registry over HTTP.
type HTTPRegistry struct {
	client   *http.Client
	endpoint *url.URL
	apiKey   string
	log      *logger.Logger
}

var _ AssetRegistry = (*HTTPRegistry)(nil)

// NewHTTPRegistry constructs a registry client for the provided endpoint.
func NewHTTPRegistry(client *http.Client, endpoint, apiKey string, log *logger.Logger) (*HTTPRegistry, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("registry endpoint required")
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse registry endpoint: %w", err)
	}
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	if log == nil {
		log = logger.NewDefault("registry-http")
	}
	return &HTTPRegistry{
		client:   client,
		endpoint: parsed,
		apiKey:   strings.TrimSpace(apiKey),
		log:      log,
	}, nil
}

// AttachChild posts one attachment to {endpoint}/children and fails unless
// the registry acknowledges it.
func (r *HTTPRegistry) AttachChild(ctx context.Context, req AttachRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode attach request: %w", err)
	}

	requestURL := r.endpoint.JoinPath("children")
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build attach request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("attach request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		if payload.Error != "" {
			return fmt.Errorf("registry status %d: %s", resp.StatusCode, payload.Error)
		}
		return fmt.Errorf("registry status %d", resp.StatusCode)
	}
	return nil
}
