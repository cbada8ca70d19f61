package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/edp1096/toy-ybus/pkg/analysis"
	"github.com/edp1096/toy-ybus/pkg/config"
	"github.com/edp1096/toy-ybus/pkg/netlist"
	"github.com/edp1096/toy-ybus/pkg/network"
	"github.com/edp1096/toy-ybus/pkg/system"
	"github.com/edp1096/toy-ybus/pkg/telemetry"
)

type runner struct {
	cfg       *config.Config
	logger    *slog.Logger
	collector *telemetry.Collector
}

func execute(cmd *cobra.Command, paths []string, only []netlist.AnalysisType) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	r := &runner{
		cfg:       cfg,
		logger:    newLogger(cfg),
		collector: telemetry.New(registry),
	}

	if len(paths) > 1 && cfg.Plot != "" {
		r.logger.Warn("plot ignored for several netlists", "plot", cfg.Plot)
		cfg.Plot = ""
	}

	outputs := make([]bytes.Buffer, len(paths))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(cfg.Concurrency)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return r.process(&outputs[i], path, only)
		})
	}
	err = g.Wait()

	for i := range outputs {
		if _, werr := outputs[i].WriteTo(cmd.OutOrStdout()); werr != nil {
			return werr
		}
	}
	if err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		return r.serveMetrics(cmd.Context(), registry)
	}
	return nil
}

// process solves one netlist. Each call owns its network and system.
func (r *runner) process(w io.Writer, path string, only []netlist.AnalysisType) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading netlist file: %v", err)
	}

	data, err := netlist.Parse(string(content))
	if err != nil {
		return fmt.Errorf("parsing netlist %s: %v", path, err)
	}
	if r.cfg.Zones > 0 {
		data.Zones = r.cfg.Zones
	}

	nw, err := network.Build(data, r.logger.With("netlist", path), r.systemOptions(data)...)
	if err != nil {
		return fmt.Errorf("%s: %v", path, err)
	}
	defer nw.Destroy()

	kinds := data.Analyses
	if only != nil {
		kinds = only
	}

	fmt.Fprintf(w, "\n%s (%s)\n", data.Title, path)
	for _, kind := range kinds {
		analyzer, err := analysis.New(kind, data)
		if err != nil {
			return err
		}
		if err := analyzer.Setup(nw); err != nil {
			return fmt.Errorf("%s: %v analysis setup failed: %v", path, kind, err)
		}

		r.logger.Info("analysis start", "netlist", path, "analysis", kind, "reuse", nw.System().Reuse())
		if err := analyzer.Execute(); err != nil {
			return fmt.Errorf("%s: %v analysis execution failed: %w", path, kind, err)
		}
		r.logger.Info("analysis done", "netlist", path, "analysis", kind)

		results := analyzer.GetResults()
		printResults(w, kind, results)

		if r.cfg.Plot != "" && (kind == netlist.AnalysisOP || kind == netlist.AnalysisAC) {
			if err := plotResults(r.cfg.Plot, data.Title, results); err != nil {
				return fmt.Errorf("plot: %v", err)
			}
		}
	}
	return nil
}

// systemOptions merges the run configuration with the .options line of the
// netlist, which wins.
func (r *runner) systemOptions(data *netlist.NetlistData) []system.Option {
	tier := r.cfg.ReuseTier()
	if data.Options.HasReuse {
		tier = data.Options.Reuse
	}
	format := r.cfg.MatrixFormat()
	if data.Options.HasFormat {
		format = data.Options.Format
	}

	return []system.Option{
		system.WithReuse(tier),
		system.WithFormat(format),
		system.WithObserver(r.collector),
	}
}

// serveMetrics exposes the collected metrics until interrupted.
func (r *runner) serveMetrics(parent context.Context, registry *prometheus.Registry) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: r.cfg.MetricsAddr, Handler: mux}

	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()

	r.logger.Warn("serving metrics, interrupt to exit", "addr", r.cfg.MetricsAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
