package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/thnkslprpt/cfdp/internal/cflog"
	"github.com/thnkslprpt/cfdp/internal/channel"
	"github.com/thnkslprpt/cfdp/internal/config"
	"github.com/thnkslprpt/cfdp/internal/router"
)

var (
	metricsAddr  string
	txnCapacity  int
	wakeupPeriod time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Load a channel configuration and run the receiver engine",
	RunE:  runReceiver,
}

func init() {
	flags := runCmd.Flags()
	flags.StringVar(&metricsAddr, "metrics-addr", ":9090", "address to serve Prometheus metrics on")
	flags.IntVar(&txnCapacity, "txn-capacity", 32, "maximum concurrent transactions per channel")
	flags.DurationVar(&wakeupPeriod, "wakeup-period", time.Second, "interval between channel wakeups")
	pflag.CommandLine.AddFlagSet(flags)
}

func runReceiver(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}

	log := cflog.New(os.Stdout)

	channels := make(map[string]*channel.Channel, len(cfg.Channels))
	for _, chCfg := range cfg.Channels {
		channels[chCfg.Name] = channel.New(chCfg, cfg.TicksPerSecond, cfg.TmpDir, cfg.CRCBytesPerWakeup, log, txnCapacity, nil)
	}
	r := router.New(channels)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go serveMetrics(ctx, metricsAddr)

	return r.RunForever(ctx, wakeupPeriod)
}

func serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	_ = srv.ListenAndServe()
}
