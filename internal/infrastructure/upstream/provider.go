package upstream

import (
	"fmt"
	"strings"

	"market-data-service/internal/domain/interfaces"
	"market-data-service/internal/infrastructure/config"
	"market-data-service/internal/infrastructure/upstream/financego"
	"market-data-service/internal/infrastructure/upstream/mock"
	"market-data-service/internal/infrastructure/upstream/yahoo"
)

// NewProvider crea el proveedor de mercado según la configuración.
// development.mock_mode fuerza el proveedor mock y desactiva el fallback;
// upstream.fallback envuelve al primario en un FallbackProvider.
func NewProvider(cfg *config.Config) (interfaces.MarketDataProvider, error) {
	if cfg.Development.MockMode {
		return mock.NewProvider(), nil
	}

	primary, err := newNamedProvider(cfg.Upstream.Provider, cfg.Upstream)
	if err != nil {
		return nil, err
	}
	if cfg.Upstream.Fallback == "" {
		return primary, nil
	}

	secondary, err := newNamedProvider(cfg.Upstream.Fallback, cfg.Upstream)
	if err != nil {
		return nil, fmt.Errorf("fallback: %w", err)
	}
	return NewFallbackProvider(primary, secondary), nil
}

func newNamedProvider(name string, cfg config.UpstreamConfig) (interfaces.MarketDataProvider, error) {
	switch strings.ToLower(name) {
	case "", yahoo.ProviderName:
		return yahoo.NewClientWithConfig(cfg), nil
	case financego.ProviderName:
		return financego.NewProvider(cfg), nil
	case mock.ProviderName:
		return mock.NewProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported upstream provider: %s", name)
	}
}
