package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/edp1096/toy-ybus/pkg/config"
	"github.com/edp1096/toy-ybus/pkg/netlist"
)

var (
	configPath  string
	logLevel    string
	reuseName   string
	formatName  string
	metricsAddr string
	plotPath    string
	zoneCount   int
	concurrency int
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ybus",
		Short:         "Sparse nodal admittance solver",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML run configuration")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	root.PersistentFlags().StringVar(&reuseName, "reuse", "", "factorization reuse tier: none, compressed, symbolic, numeric")
	root.PersistentFlags().StringVar(&formatName, "format", "", "matrix storage: complex or real")
	root.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address after the run")

	run := &cobra.Command{
		Use:   "run <netlist>",
		Short: "Run the analyses of a netlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, args, nil)
		},
	}
	run.Flags().StringVar(&plotPath, "plot", "", "write bus voltage magnitudes to an image (.png, .svg, .pdf)")

	batch := &cobra.Command{
		Use:   "batch <netlist>...",
		Short: "Run several netlists concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, args, nil)
		},
	}
	batch.Flags().IntVar(&concurrency, "concurrency", 0, "netlists solved at once")

	islands := &cobra.Command{
		Use:   "islands <netlist>",
		Short: "Report the electrical islands of a netlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, args, []netlist.AnalysisType{netlist.AnalysisIslands})
		},
	}

	partition := &cobra.Command{
		Use:   "partition <netlist>",
		Short: "Split the buses of a netlist into zones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, args, []netlist.AnalysisType{netlist.AnalysisPartition})
		},
	}
	partition.Flags().IntVarP(&zoneCount, "zones", "k", 0, "number of zones")

	root.AddCommand(run, batch, islands, partition)
	return root
}

// loadConfig reads the configuration file, then applies the flags given on
// the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return nil, err
		}
	}

	changed := func(name string) bool {
		f := cmd.Flag(name)
		return f != nil && f.Changed
	}
	if changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if changed("reuse") {
		cfg.Reuse = reuseName
	}
	if changed("format") {
		cfg.Format = formatName
	}
	if changed("metrics-addr") {
		cfg.MetricsAddr = metricsAddr
	}
	if changed("plot") {
		cfg.Plot = plotPath
	}
	if changed("zones") {
		cfg.Zones = zoneCount
	}
	if changed("concurrency") {
		cfg.Concurrency = concurrency
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
