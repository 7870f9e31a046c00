package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/trendsniper/trendsniper/services/analyzer/internal"
)

var (
	debug bool
	port  string
)

var rootCmd = &cobra.Command{
	Use:   "analyzer",
	Short: "TrendSniper analyzer - ask an LLM whether text is a real ad or winning product",
	// Serving is the default action.
	RunE:         runServe,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "TrendSniper analyzer v%s\n", internal.Version)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging (overrides DEBUG)")
	rootCmd.PersistentFlags().StringVar(&port, "port", "", "Listen port (overrides PORT)")
	rootCmd.AddCommand(serveCmd, versionCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg := internal.ConfigFromEnv()
	if cmd.Flags().Changed("debug") {
		cfg.Debug = debug
	}
	if port != "" {
		cfg.Port = port
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info().Msg("shutdown signal, stopping analyzer")
		cancel()
	}()

	s, err := internal.NewServer(cfg)
	if err != nil {
		log.Error().Err(err).Msg("failed to start analyzer")
		return err
	}
	defer s.Close()

	printBanner()
	log.Info().
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Bool("debug", cfg.Debug).
		Bool("amqp", cfg.AMQPURL != "").
		Msg("analyzer online")

	if err := s.Run(ctx); err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("analyzer exited")
		return err
	}
	return nil
}

func printBanner() {
	log.Info().Msg("╔══════════════════════════════════════╗")
	log.Info().Msg("║  TrendSniper  Analyzer  v" + internal.Version + "       ║")
	log.Info().Msg("║  ad text → product + confidence      ║")
	log.Info().Msg("╚══════════════════════════════════════╝")
}
