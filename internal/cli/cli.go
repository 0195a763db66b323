// Package cli wires the relayproxy command-line surface: the server
// entry point (serve) and the snapshot-inspection tooling built on top
// of it (inspect, diff).
package cli

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/esse/relayproxy/internal/config"
	"github.com/esse/relayproxy/internal/logger"
	"github.com/esse/relayproxy/internal/pipeline"
	"github.com/esse/relayproxy/internal/ratelimit"
	"github.com/esse/relayproxy/internal/store"
	"github.com/spf13/cobra"
)

// Execute runs the CLI, exiting the process with a nonzero status on
// error.
func Execute() {
	var logLevel string

	root := &cobra.Command{
		Use:   "relayproxy",
		Short: "Record and replay HTTP traffic through a passthrough proxy",
		Long: `relayproxy interposes between a client and an upstream HTTP origin,
operating in one of three modes: passthrough (transparent forwarding),
record (forward and persist every exchange to disk), or replay (serve
previously recorded responses without contacting the upstream).`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Setup(logLevel)
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	root.AddCommand(
		newServeCmd(),
		newInspectCmd(),
		newDiffCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	cfg := config.Default()
	var rateLimit float64
	var maxConcurrent int
	var upstreamTimeoutSeconds float64

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the recording/replaying proxy server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.RateLimit = rateLimit
			cfg.MaxConcurrent = maxConcurrent
			cfg.UpstreamTimeout = time.Duration(upstreamTimeoutSeconds * float64(time.Second))

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			upstream, err := cfg.UpstreamURL()
			if err != nil {
				return err
			}

			if cfg.Record && cfg.Dir == "" {
				cmd.Println("warning: --record has no effect without --dir; running passthrough")
			}

			sessions := store.New()
			pl := pipeline.New(pipeline.Config{
				RecordDir:       cfg.RecordDir(),
				Record:          cfg.Record,
				UpstreamBase:    upstream,
				UpstreamTimeout: cfg.UpstreamTimeout,
			}, sessions)

			var handler http.Handler = pl.Handler()
			handler = ratelimit.Middleware(ratelimit.Config{
				RequestsPerSecond: cfg.RateLimit,
				MaxConcurrent:     cfg.MaxConcurrent,
			}, handler)
			handler = logger.Middleware(handler)

			cmd.Printf("relayproxy listening on %s, forwarding to %s\n", cfg.Addr(), cfg.ForwardTo)
			return http.ListenAndServe(cfg.Addr(), handler)
		},
	}

	cmd.Flags().StringVar(&cfg.ListenAddr, "listen-addr", cfg.ListenAddr, "Address to listen on")
	cmd.Flags().Uint16Var(&cfg.Port, "port", cfg.Port, "Port to listen on")
	cmd.Flags().StringVar(&cfg.ForwardTo, "forward-to", "", "Upstream base URL to forward requests to (required)")
	cmd.Flags().BoolVarP(&cfg.Record, "record", "u", false, "Record mode; requires --dir to have any effect")
	cmd.Flags().StringVarP(&cfg.Dir, "dir", "d", "", "Directory to read/write session snapshots (empty: passthrough)")
	cmd.Flags().Float64Var(&rateLimit, "rate-limit", 0, "Sustained requests/second allowed through the proxy (0: unlimited)")
	cmd.Flags().IntVar(&maxConcurrent, "max-concurrent", 0, "Maximum in-flight requests (0: unlimited)")
	cmd.Flags().Float64Var(&upstreamTimeoutSeconds, "upstream-timeout", 30, "Upstream exchange timeout, in seconds")

	return cmd
}
