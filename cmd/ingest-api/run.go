package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	apiserver "github.com/salestream/ingest/internal/api_server"
	"github.com/salestream/ingest/internal/config"
	"github.com/salestream/ingest/internal/events"
	"github.com/salestream/ingest/internal/ingest"
	"github.com/salestream/ingest/internal/service"
	"github.com/salestream/ingest/internal/store"
	"github.com/salestream/ingest/pkg/log"
	"github.com/salestream/ingest/pkg/retry"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the sales ingest api",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}

		logger := log.InitLog(log.Level(cfg.Service.LogLevel))
		defer func() { _ = logger.Sync() }()
		undo := zap.ReplaceGlobals(logger)
		defer undo()

		zap.S().Info("Starting ingest API service")
		defer zap.S().Info("Ingest API service stopped")

		objectStore, err := store.NewMinioStore(
			store.WithEndpoint(cfg.Store.Endpoint),
			store.WithBucket(cfg.Store.Bucket),
			store.WithAccessKey(cfg.Store.AccessKey),
			store.WithSecretKey(cfg.Store.SecretKey),
			store.WithSSL(cfg.Store.UseSSL),
		)
		if err != nil {
			zap.S().Errorf("initializing object store: %v", err)
			return err
		}

		guardOpts := []ingest.GuardOption{}
		pipelineOpts := []ingest.PipelineOption{
			ingest.WithPrefixes(cfg.Store.InboundPrefix, cfg.Store.ProcessedPrefix, cfg.Store.RejectedPrefix),
			ingest.WithMaxAttempts(maxAttempts(cfg.Service.MaxAttempts)),
		}

		if cfg.Database.Type != "none" {
			db, err := store.InitDB(cfg)
			if err != nil {
				zap.S().Errorf("initializing idempotency ledger: %v", err)
				return err
			}
			ledger := store.NewLedger(db)
			if err := ledger.Migrate(); err != nil {
				zap.S().Errorf("migrating idempotency ledger: %v", err)
				return err
			}
			defer ledger.Close()

			guardOpts = append(guardOpts, ingest.WithLedger(ledger))
			pipelineOpts = append(pipelineOpts, ingest.WithPipelineLedger(ledger))
		}

		producer := events.NewEventProducer(&events.StdoutWriter{}, events.WithOutputTopic(cfg.Events.Topic))
		defer func() { _ = producer.Close() }()

		guard := ingest.NewIdempotencyGuard(objectStore, cfg.Store.ProcessedPrefix, cfg.Store.RejectedPrefix, guardOpts...)
		pipeline := ingest.NewPipeline(objectStore, guard, events.NewCompletionPublisher(producer), pipelineOpts...)
		svc := service.NewIngestService(pipeline)

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
		defer cancel()

		go func() {
			defer cancel()
			listener, err := newListener(cfg.Service.Address)
			if err != nil {
				zap.S().Errorf("creating listener: %s", err)
				return
			}

			server := apiserver.New(cfg, svc, listener)
			if err := server.Run(ctx); err != nil {
				zap.S().Errorf("Error running server: %s", err)
			}
		}()

		go func() {
			defer cancel()
			listener, err := newListener(cfg.Service.MetricsAddress)
			if err != nil {
				zap.S().Errorf("creating metrics listener: %s", err)
				return
			}

			metricsServer := apiserver.NewMetricServer(cfg.Service.MetricsAddress, listener)
			if err := metricsServer.Run(ctx); err != nil {
				zap.S().Errorf("Error running metrics server: %s", err)
			}
		}()

		<-ctx.Done()
		return nil
	},
}

func maxAttempts(n int) int {
	if n <= 0 {
		return retry.DefaultMaxAttempts
	}
	return n
}

func newListener(address string) (net.Listener, error) {
	if address == "" {
		address = "localhost:0"
	}
	return net.Listen("tcp", address)
}
