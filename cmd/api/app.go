package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"market-data-service/internal/application/services"
	"market-data-service/internal/domain/interfaces"
	"market-data-service/internal/infrastructure/config"
	"market-data-service/internal/infrastructure/logging"
	"market-data-service/internal/infrastructure/upstream"
)

const serviceName = "market-data-service"

// loadConfig lee .env, archivo y variables de entorno y valida el resultado
func loadConfig() (*config.Config, error) {
	loader := config.NewLoader().WithEnvFile(envFile)
	if cfgFile != "" {
		loader = loader.WithConfigFile(cfgFile)
	}

	cfg, err := loader.LoadForEnvironment(config.GetEnvironment())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if debug {
		cfg.Development.DebugMode = true
		cfg.Logging.Level = "debug"
	}

	if err := config.NewValidator().Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// initLogging inicializa los loggers globales. fallback es la salida cuando
// logging.output no indica otra cosa (stderr en los comandos que imprimen JSON).
func initLogging(cfg *config.Config, fallback io.Writer) error {
	loggerCfg := logging.NewConfig(serviceName, Version, config.GetEnvironment()).
		WithLevel(logging.LogLevelFromString(cfg.Logging.Level)).
		WithFormat(logging.LogFormatFromString(cfg.Logging.Format)).
		WithSource(cfg.Development.DebugMode)

	switch output := strings.TrimSpace(cfg.Logging.Output); strings.ToLower(output) {
	case "", "stdout":
		loggerCfg = loggerCfg.WithOutput(fallback)
	case "stderr":
		loggerCfg = loggerCfg.WithOutput(os.Stderr)
	default:
		loggerCfg = loggerCfg.WithFile(output, logging.RotationConfig{
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
			Compress:   true,
		})
	}

	return logging.InitializeGlobalLoggers(loggerCfg)
}

// buildMarket crea el proveedor y el orquestador
func buildMarket(cfg *config.Config) (interfaces.MarketDataProvider, interfaces.MarketDataService, error) {
	provider, err := upstream.NewProvider(cfg)
	if err != nil {
		return nil, nil, err
	}
	return provider, services.NewMarketDataServiceFromConfig(cfg, provider), nil
}
