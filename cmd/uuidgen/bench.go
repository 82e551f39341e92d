package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pg-sharding/pguuidv7/clock"
	"github.com/pg-sharding/pguuidv7/closer"
	"github.com/pg-sharding/pguuidv7/errors"
	"github.com/pg-sharding/pguuidv7/logging"
	"github.com/pg-sharding/pguuidv7/metrics"
	"github.com/pg-sharding/pguuidv7/pprof"
	"github.com/pg-sharding/pguuidv7/safe"
	"github.com/pg-sharding/pguuidv7/safe/errorgroup"
	"github.com/pg-sharding/pguuidv7/uuidv7"
)

// watchServer logs a server's exit error in the background, ignoring
// clean shutdowns.
func watchServer(logger *logging.Logger, name string, errCh <-chan error) {
	go func() {
		if err, ok := <-errCh; ok && err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(name+" stopped", logging.ErrAttr(err))
		}
	}()
}

func newBenchCmd(logger *logging.Logger) *cobra.Command {
	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "Generate identifiers at full speed and report throughput",
		Long:  "bench drives one shared generator from several workers, exporting generation\nmetrics and optional profiling endpoints while it runs.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			duration, _ := cmd.Flags().GetDuration("duration")
			workers, _ := cmd.Flags().GetInt("workers")
			entropyMode, _ := cmd.Flags().GetString("entropy")
			metricsHost, _ := cmd.Flags().GetString("metrics-host")
			metricsPort, _ := cmd.Flags().GetInt("metrics-port")
			pprofHost, _ := cmd.Flags().GetString("pprof-host")
			pprofPort, _ := cmd.Flags().GetInt("pprof-port")
			linger, _ := cmd.Flags().GetBool("linger")

			if workers < 1 {
				return fmt.Errorf("invalid --workers %d; need at least 1", workers)
			}
			src, err := newSource(entropyMode)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			collector := metrics.NewGeneratorCollector()
			gen := uuidv7.NewGenerator(uuidv7.WithEntropy(src), uuidv7.WithRecorder(collector))

			lc := closer.NewLIFOCloser()
			defer lc.Close()

			if metricsPort != 0 {
				cfg := metrics.NewConfig(metrics.WithHost(metricsHost), metrics.WithPort(metricsPort))
				srv, err := metrics.NewServer(cfg)
				if err != nil {
					return errors.Wrapf(err, "metrics server on %s", cfg.Addr())
				}
				lc.Add(srv)
				watchServer(logger, "metrics server", safe.SafeGo(ctx, srv.Run, nil))
				logger.Info("metrics listening", logging.StringAttr("addr", cfg.Addr()))
			}
			if pprofPort != 0 {
				srv := pprof.NewServer(pprof.NewConfig(pprofHost, pprofPort, 0))
				lc.Add(srv)
				watchServer(logger, "pprof server", safe.SafeGo(ctx, srv.Run, nil))
				logger.Info("pprof listening", logging.StringAttr("addr", fmt.Sprintf("%s:%d", pprofHost, pprofPort)))
			}

			batchSeconds := metrics.NewHistogram(metrics.HistogramOpts{
				Namespace: "uuidv7",
				Subsystem: "bench",
				Name:      "batch_duration_seconds",
				Help:      "Duration of 1000-identifier benchmark batches.",
				Buckets:   []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01},
			})
			rateGauge := metrics.NewGauge(metrics.GaugeOpts{
				Namespace: "uuidv7",
				Subsystem: "bench",
				Name:      "ids_per_second",
				Help:      "Generation throughput of the last completed run.",
			})

			runCtx, stopRun := context.WithTimeout(ctx, duration)
			defer stopRun()

			clk := clock.New()
			start := clk.Now()
			var total uint64

			g, _ := errorgroup.WithContext(runCtx)
			for w := 0; w < workers; w++ {
				g.Go(func(ctx context.Context) error {
					const batchSize = 1000
					for {
						select {
						case <-ctx.Done():
							return nil
						default:
						}
						bStart := time.Now()
						for i := 0; i < batchSize; i++ {
							if _, err := gen.Next(); err != nil {
								return err
							}
						}
						batchSeconds.Observe(time.Since(bStart).Seconds())
						atomic.AddUint64(&total, batchSize)
					}
				})
			}
			benchErr := g.Wait()
			elapsed := clk.Since(start)
			if benchErr != nil {
				return benchErr
			}

			generated := atomic.LoadUint64(&total)
			perSecond := float64(generated) / elapsed.Seconds()
			rateGauge.Set(perSecond)
			logger.Info("benchmark complete",
				logging.Uint64Attr("identifiers", generated),
				logging.DurationAttr("elapsed", elapsed.Round(time.Millisecond)),
				logging.Float64Attr("per_second", perSecond),
			)

			if linger && (metricsPort != 0 || pprofPort != 0) {
				logger.Info("lingering for scrapes, interrupt to exit")
				return closer.CloseOnSignalWithContext(ctx, lc, syscall.SIGINT, syscall.SIGTERM)
			}
			return lc.Close()
		},
		SilenceUsage: true,
	}
	benchCmd.Flags().Duration("duration", 5*time.Second, "how long to generate")
	benchCmd.Flags().Int("workers", 4, "concurrent workers sharing one generator")
	benchCmd.Flags().String("entropy", envOr("UUIDGEN_ENTROPY", "crypto"), "random source: crypto or chacha8")
	benchCmd.Flags().String("metrics-host", "127.0.0.1", "metrics server host")
	benchCmd.Flags().Int("metrics-port", 0, "metrics server port, 0 disables the server")
	benchCmd.Flags().String("pprof-host", "127.0.0.1", "pprof server host")
	benchCmd.Flags().Int("pprof-port", 0, "pprof server port, 0 disables the server")
	benchCmd.Flags().Bool("linger", false, "keep telemetry servers up after the run until interrupted")
	return benchCmd
}
