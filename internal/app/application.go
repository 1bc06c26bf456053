// Package app ties the issuance services together and manages their
// lifecycle.
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	collectionssvc "github.com/MintGate-Network/mint_layer/internal/app/services/collections"
	mintersvc "github.com/MintGate-Network/mint_layer/internal/app/services/minter"
	"github.com/MintGate-Network/mint_layer/internal/app/services/serial"
	statssvc "github.com/MintGate-Network/mint_layer/internal/app/services/stats"
	treasurysvc "github.com/MintGate-Network/mint_layer/internal/app/services/treasury"
	"github.com/MintGate-Network/mint_layer/internal/app/storage"
	"github.com/MintGate-Network/mint_layer/internal/app/storage/memory"
	"github.com/MintGate-Network/mint_layer/internal/app/system"
	"github.com/MintGate-Network/mint_layer/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Collections storage.CollectionStore
	Tokens      storage.TokenStore
	Treasury    storage.TreasuryStore
}

// Options carries optional collaborators and tuning.
type Options struct {
	// Registry overrides the asset registry client. When nil, the
	// REGISTRY_ENDPOINT environment variable configures an HTTP client.
	Registry mintersvc.AssetRegistry

	// Transferrer overrides the outbound value transferrer. When nil, the
	// TRANSFER_ENDPOINT environment variable configures an HTTP client.
	Transferrer treasurysvc.ValueTransferrer

	StatsInterval time.Duration
}

// Application wires the issuance core and manages service lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Collections *collectionssvc.Service
	Minter      *mintersvc.Service
	Treasury    *treasurysvc.Service
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, opts Options, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Collections == nil {
		stores.Collections = mem
	}
	if stores.Tokens == nil {
		stores.Tokens = mem
	}
	if stores.Treasury == nil {
		stores.Treasury = mem
	}

	httpClient := &http.Client{Timeout: 10 * time.Second}

	registry := opts.Registry
	if registry == nil {
		if endpoint := strings.TrimSpace(os.Getenv("REGISTRY_ENDPOINT")); endpoint != "" {
			client, err := mintersvc.NewHTTPRegistry(httpClient, endpoint, os.Getenv("REGISTRY_API_KEY"), log)
			if err != nil {
				return nil, fmt.Errorf("configure asset registry: %w", err)
			}
			registry = client
		} else {
			return nil, fmt.Errorf("no asset registry configured; set REGISTRY_ENDPOINT or provide Options.Registry")
		}
	}

	transferrer := opts.Transferrer
	if transferrer == nil {
		if endpoint := strings.TrimSpace(os.Getenv("TRANSFER_ENDPOINT")); endpoint != "" {
			client, err := treasurysvc.NewHTTPTransferrer(httpClient, endpoint, os.Getenv("TRANSFER_API_KEY"), log)
			if err != nil {
				return nil, fmt.Errorf("configure value transferrer: %w", err)
			}
			transferrer = client
		} else {
			log.Warn("TRANSFER_ENDPOINT not set; withdrawals will fail until a transferrer is configured")
		}
	}

	guard := serial.NewGuard()
	collections := collectionssvc.New(stores.Collections, log)
	treasury := treasurysvc.New(stores.Collections, stores.Treasury, transferrer, guard, log)
	minterService := mintersvc.New(stores.Collections, stores.Tokens, registry, treasury, guard, log)

	manager := system.NewManager()
	for _, name := range []string{"collections", "minter", "treasury"} {
		if err := manager.Register(system.NoopService{ServiceName: name}); err != nil {
			return nil, fmt.Errorf("register %s service: %w", name, err)
		}
	}

	refresher := statssvc.NewRefresher(stores.Collections, stores.Treasury, log)
	if opts.StatsInterval > 0 {
		refresher.WithInterval(opts.StatsInterval)
	}
	if err := manager.Register(refresher); err != nil {
		return nil, fmt.Errorf("register %s: %w", refresher.Name(), err)
	}

	return &Application{
		manager:     manager,
		log:         log,
		Collections: collections,
		Minter:      minterService,
		Treasury:    treasury,
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
