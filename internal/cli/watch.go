package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dirstore/internal/observe"
	"github.com/mesh-intelligence/dirstore/internal/watch"
)

const metricsShutdownTimeout = 5 * time.Second

// watchedEvent is the JSON form of one watch line.
type watchedEvent struct {
	watch.Event
	Values []string `json:"values,omitempty"`
}

func newWatchCmd(a *app) *cobra.Command {
	var metricsAddr string
	cmd := &cobra.Command{
		Use:   "watch <table>",
		Short: "Print changes to a table as they happen",
		Long:  "Follow the entries of a table on disk and print one line per change until interrupted.\nWith --metrics-addr, serve Prometheus metrics for the store reads made while watching.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			metrics := observe.NewMetrics(reg)

			backend, err := a.attachBackend(metrics)
			if err != nil {
				return err
			}
			defer backend.Detach()
			table, err := backend.GetTable(args[0])
			if err != nil {
				return err
			}

			if metricsAddr != "" {
				stop := serveMetrics(a, metricsAddr, reg)
				defer stop()
			}

			w, err := watch.New(backend.DataDir(), args[0], a.logger)
			if err != nil {
				return &systemError{fmt.Errorf("watch: %w", err)}
			}
			a.logger.Info("Watching table", "table", args[0])

			err = w.Run(ctx, func(ev watch.Event) {
				out := watchedEvent{Event: ev}
				if ev.Kind == watch.FieldChanged {
					values, verr := table.ListValuesForField(ev.Entry, ev.Field)
					if verr != nil {
						a.logger.Warn("Failed to read values", "entry", ev.Entry, "field", ev.Field, "err", verr)
					}
					out.Values = values
				}
				printEvent(a, cmd, out)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	return cmd
}

func printEvent(a *app, cmd *cobra.Command, ev watchedEvent) {
	out := cmd.OutOrStdout()
	if a.flags.jsonMode {
		if err := writeJSONLine(out, ev); err != nil {
			a.logger.Warn("Failed to print event", "err", err)
		}
		return
	}
	switch ev.Kind {
	case watch.FieldChanged:
		fmt.Fprintf(out, "%s\t%s\t%s = [%s]\n", ev.Kind, ev.Entry, ev.Field, strings.Join(ev.Values, ", "))
	default:
		fmt.Fprintf(out, "%s\t%s\n", ev.Kind, ev.Entry)
	}
}

// serveMetrics starts an HTTP server for reg on addr. The returned function
// shuts it down.
func serveMetrics(a *app, addr string, reg *prometheus.Registry) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Metrics server failed", "addr", addr, "err", err)
		}
	}()
	a.logger.Info("Serving metrics", "addr", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
