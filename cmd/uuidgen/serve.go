package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pg-sharding/pguuidv7/closer"
	"github.com/pg-sharding/pguuidv7/errors"
	"github.com/pg-sharding/pguuidv7/httpapi"
	"github.com/pg-sharding/pguuidv7/logging"
	"github.com/pg-sharding/pguuidv7/metrics"
	"github.com/pg-sharding/pguuidv7/pprof"
	"github.com/pg-sharding/pguuidv7/safe"
	"github.com/pg-sharding/pguuidv7/tracing"
	"github.com/pg-sharding/pguuidv7/uuidv7"
)

func newServeCmd(logger *logging.Logger) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve identifiers over HTTP",
		Long:  "serve runs the HTTP generation API with request logging, Prometheus metrics\nand optional OTLP tracing.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			host, _ := cmd.Flags().GetString("host")
			port, _ := cmd.Flags().GetInt("port")
			entropyMode, _ := cmd.Flags().GetString("entropy")
			maxBatch, _ := cmd.Flags().GetInt("max-batch")
			metricsHost, _ := cmd.Flags().GetString("metrics-host")
			metricsPort, _ := cmd.Flags().GetInt("metrics-port")
			pprofHost, _ := cmd.Flags().GetString("pprof-host")
			pprofPort, _ := cmd.Flags().GetInt("pprof-port")
			otlpHost, _ := cmd.Flags().GetString("otlp-host")
			otlpPort, _ := cmd.Flags().GetString("otlp-port")
			envName, _ := cmd.Flags().GetString("env")

			src, err := newSource(entropyMode)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			lc := closer.NewLIFOCloser()

			if otlpHost != "" {
				tp, err := tracing.New(ctx,
					tracing.WithHost(otlpHost),
					tracing.WithPort(otlpPort),
					tracing.WithServiceName("uuidgen"),
					tracing.WithServiceID(uuidv7.Must().String()),
					tracing.WithServiceVersion(version),
					tracing.WithEnvName(envName),
				)
				if err != nil {
					return err
				}
				lc.Add(closer.CloserFunc(func() error {
					return tp.Shutdown(context.Background())
				}))
				logger.Info("tracing enabled",
					logging.StringAttr("collector", otlpHost+":"+otlpPort))
			}

			collector := metrics.NewGeneratorCollector()
			gen := uuidv7.NewGenerator(uuidv7.WithEntropy(src), uuidv7.WithRecorder(collector))

			// One slot is enough, the first dead server takes the
			// process down.
			fatal := make(chan error, 1)
			watchFatal := func(name string, errCh <-chan error) {
				go func() {
					if err, ok := <-errCh; ok && err != nil && !errors.Is(err, http.ErrServerClosed) {
						select {
						case fatal <- errors.Wrap(err, name):
						default:
						}
					}
				}()
			}

			if metricsPort != 0 {
				cfg := metrics.NewConfig(metrics.WithHost(metricsHost), metrics.WithPort(metricsPort))
				srv, err := metrics.NewServer(cfg)
				if err != nil {
					return errors.Wrapf(err, "metrics server on %s", cfg.Addr())
				}
				lc.Add(srv)
				watchFatal("metrics server", safe.SafeGo(ctx, srv.Run, nil))
				logger.Info("metrics listening", logging.StringAttr("addr", cfg.Addr()))
			}
			if pprofPort != 0 {
				srv := pprof.NewServer(pprof.NewConfig(pprofHost, pprofPort, 0))
				lc.Add(srv)
				watchFatal("pprof server", safe.SafeGo(ctx, srv.Run, nil))
				logger.Info("pprof listening", logging.StringAttr("addr", fmt.Sprintf("%s:%d", pprofHost, pprofPort)))
			}

			apiCfg := httpapi.NewConfig(
				httpapi.WithHost(host),
				httpapi.WithPort(port),
				httpapi.WithMaxBatch(maxBatch),
			)
			api, err := httpapi.NewServer(apiCfg, gen)
			if err != nil {
				return errors.Wrapf(err, "api server on %s", apiCfg.Addr())
			}
			lc.Add(api)
			watchFatal("api server", safe.SafeGo(ctx, api.Run, nil))
			logger.Info("api listening", logging.StringAttr("addr", apiCfg.Addr()))

			select {
			case err := <-fatal:
				if closeErr := lc.Close(); closeErr != nil {
					logger.Error("shutdown failed", logging.ErrAttr(closeErr))
				}
				return err
			case <-ctx.Done():
				logger.Info("shutting down")
				return lc.Close()
			}
		},
		SilenceUsage: true,
	}
	serveCmd.Flags().String("host", envOr("UUIDGEN_HOST", "0.0.0.0"), "API server host")
	serveCmd.Flags().Int("port", 8080, "API server port")
	serveCmd.Flags().String("entropy", envOr("UUIDGEN_ENTROPY", "crypto"), "random source: crypto or chacha8")
	serveCmd.Flags().Int("max-batch", 10_000, "largest batch a single request may ask for")
	serveCmd.Flags().String("metrics-host", "0.0.0.0", "metrics server host")
	serveCmd.Flags().Int("metrics-port", 9090, "metrics server port, 0 disables the server")
	serveCmd.Flags().String("pprof-host", "127.0.0.1", "pprof server host")
	serveCmd.Flags().Int("pprof-port", 0, "pprof server port, 0 disables the server")
	serveCmd.Flags().String("otlp-host", envOr("UUIDGEN_OTLP_HOST", ""), "OTLP collector host, empty disables tracing")
	serveCmd.Flags().String("otlp-port", envOr("UUIDGEN_OTLP_PORT", "4318"), "OTLP collector port")
	serveCmd.Flags().String("env", envOr("UUIDGEN_ENV", "dev"), "deployment environment reported with traces")
	return serveCmd
}
