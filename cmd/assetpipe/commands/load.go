package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	nethttp "net/http"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/meigma/assetpipe"
	"github.com/meigma/assetpipe/metrics"
	"github.com/meigma/assetpipe/pack"
	"github.com/meigma/assetpipe/plan"
)

func newLoadCmd(a *app) *cobra.Command {
	var (
		listen string
		lodAll bool
	)
	cmd := &cobra.Command{
		Use:   "load PLAN",
		Short: "Replay a load plan through the pipeline and report diagnostics",
		Long: `Replay a load plan through the asset pipeline. The command acts as the
consumer: it waits for the workers before each group and then requests every
asset of the group, printing how each kind was served.

Examples:
  # Run a plan produced by synth
  assetpipe load out/plan.json

  # Expose Prometheus metrics while running
  assetpipe load out/plan.json --metrics-listen 127.0.0.1:9090`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen != "" {
				a.cfg.Metrics.Listen = listen
			}
			return a.runLoad(cmd.Context(), cmd.OutOrStdout(), args[0], lodAll)
		},
	}
	cmd.Flags().StringVar(&listen, "metrics-listen", "", "serve Prometheus metrics on host:port (overrides metrics.listen)")
	cmd.Flags().BoolVar(&lodAll, "lod", false, "request level-of-detail copies instead of primary objects")
	return cmd
}

func (a *app) runLoad(ctx context.Context, out io.Writer, planPath string, lod bool) error {
	p, err := plan.Load(planPath)
	if err != nil {
		return err
	}

	lib := pack.NewLibrary(a.cfg.LibraryOptions(a.logger)...)
	defer lib.Close()

	refs, err := plan.Resolve(ctx, lib, p)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	opts := append(a.cfg.PipelineOptions(),
		assetpipe.WithLogger(a.logger),
		assetpipe.WithMetrics(metrics.New(reg)),
	)

	if a.cfg.Metrics.Listen != "" {
		stop, err := serveMetrics(a.cfg.Metrics.Listen, reg)
		if err != nil {
			return err
		}
		defer stop()
		a.logger.Info("serving metrics", "addr", a.cfg.Metrics.Listen)
	}

	pipe := assetpipe.New(lib, opts...)
	start := time.Now()
	if err := pipe.Start(ctx, refs); err != nil {
		return err
	}

	failures, err := consume(ctx, pipe, refs, !lod)
	stats := pipe.Dispose()
	if err != nil {
		return err
	}

	a.logger.Info("plan replayed", "assets", len(refs), "failures", failures, "elapsed", time.Since(start))
	return printStats(out, stats, failures)
}

// consume requests every ref of the plan group by group, the way a
// consumer would. Per-asset failures are counted, not returned.
func consume(ctx context.Context, pipe *assetpipe.Pipeline, refs []assetpipe.Ref, primary bool) (int, error) {
	failures := 0
	for _, group := range assetpipe.Groups(refs) {
		if err := pipe.WaitForWorkers(ctx); err != nil {
			return failures, err
		}
		for _, ref := range group {
			if err := request(pipe, ref, primary); err != nil {
				if errors.Is(err, assetpipe.ErrClosed) {
					return failures, err
				}
				failures++
			}
		}
	}
	return failures, nil
}

func request(pipe *assetpipe.Pipeline, ref assetpipe.Ref, primary bool) error {
	var err error
	switch ref.Kind {
	case assetpipe.KindTexture:
		_, err = pipe.GetTexture(ref.Hash, ref.Container, primary)
	case assetpipe.KindMesh:
		_, err = pipe.GetMesh(ref.Hash, ref.Container, primary)
	case assetpipe.KindMaterial:
		_, err = pipe.GetMaterial(ref.Hash, ref.Container, primary)
	default:
		_, err = pipe.ReadAsset(ref.Hash, ref.Container)
	}
	return err
}

func printStats(w io.Writer, stats assetpipe.Stats, failures int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tHIT\tPRELOADED\tLOADED")
	for _, k := range []assetpipe.Kind{assetpipe.KindTexture, assetpipe.KindMesh, assetpipe.KindMaterial} {
		ks := stats.Kind(k)
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", k, ks.Hit, ks.Preloaded, ks.Loaded)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "max cache entries %d, reads %d (%d failed), decodes %d (%d failed), request failures %d\n",
		stats.MaxCacheCount, stats.Read, stats.ReadFailures, stats.Decoded, stats.DecodeFailures, failures)
	return err
}

// serveMetrics starts a /metrics listener and returns a function that shuts
// it down.
func serveMetrics(addr string, reg *prometheus.Registry) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}
	mux := nethttp.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &nethttp.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() { _ = srv.Serve(ln) }()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
