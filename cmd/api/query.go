package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"market-data-service/internal/application/dto"
	"market-data-service/internal/domain/interfaces"
	"market-data-service/internal/infrastructure/logging"

	"github.com/spf13/cobra"
)

var (
	historyStart    string
	historyEnd      string
	historyInterval string
	queryTimeout    time.Duration
)

var quotesCmd = &cobra.Command{
	Use:   "quotes SYMBOL [SYMBOL...]",
	Short: "Fetch current quotes once and print the batch as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery(cmd.OutOrStdout(), func(ctx context.Context, market interfaces.MarketDataService, maxSymbols int) (interface{}, error) {
			request := &dto.QuotesRequest{Symbols: args}
			if err := request.Validate(maxSymbols); err != nil {
				return nil, err
			}
			return dto.NewMarketMapper().ToQuotesResponse(market.GetQuotes(ctx, request.Symbols)), nil
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history SYMBOL [SYMBOL...]",
	Short: "Fetch historical high/low series once and print the batch as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery(cmd.OutOrStdout(), func(ctx context.Context, market interfaces.MarketDataService, maxSymbols int) (interface{}, error) {
			request := &dto.HistoryRequest{
				Symbols:  args,
				Start:    historyStart,
				End:      historyEnd,
				Interval: historyInterval,
			}
			query, err := request.Validate(maxSymbols, time.Now())
			if err != nil {
				return nil, err
			}
			result := market.GetHistory(ctx, query.Symbols, query.Window, query.Interval)
			return dto.NewMarketMapper().ToHistoryResponse(result), nil
		})
	},
}

func init() {
	for _, cmd := range []*cobra.Command{quotesCmd, historyCmd} {
		cmd.Flags().DurationVar(&queryTimeout, "timeout", 2*time.Minute, "overall deadline for the query")
	}
	historyCmd.Flags().StringVar(&historyStart, "start", "", "window start (YYYY-MM-DD), defaults to three years before end")
	historyCmd.Flags().StringVar(&historyEnd, "end", "", "window end (YYYY-MM-DD, inclusive), defaults to today")
	historyCmd.Flags().StringVar(&historyInterval, "interval", "1d", "interval: 1h, 1d, 1wk or 1mo")

	rootCmd.AddCommand(quotesCmd, historyCmd)
}

type queryFunc func(ctx context.Context, market interfaces.MarketDataService, maxSymbols int) (interface{}, error)

// runQuery arma el stack sin servidor, ejecuta la consulta e imprime el JSON.
// Los logs van a stderr para no mezclarse con la salida.
func runQuery(out io.Writer, query queryFunc) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := initLogging(cfg, os.Stderr); err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	defer func() { _ = logging.SyncGlobalLoggers() }()

	_, market, err := buildMarket(cfg)
	if err != nil {
		return fmt.Errorf("creating upstream provider: %w", err)
	}
	defer market.Close()

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	ctx = logging.WithRequestID(ctx, logging.GenerateRequestID())

	response, err := query(ctx, market, cfg.API.MaxSymbolsPerRequest)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}
