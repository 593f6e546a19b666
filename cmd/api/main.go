// @title Market Data Service API
// @version 1.0.0
// @description Batch quotes and historical high/low series with a TTL cache, stale-while-revalidate refresh and history snapshots.
// @license.name MIT
// @host localhost:5100
// @BasePath /
// @schemes http
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	envFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "market-data",
	Short: "Market data batch fetch and cache service",
	Long: `market-data resolves current quotes and historical high/low series for
batches of symbols. Results are cached in memory, refreshed in the background
once stale, and daily history can be persisted as snapshots.`,
	SilenceUsage: true,
	// sin subcomando se comporta como serve
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config (empty disables it)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
