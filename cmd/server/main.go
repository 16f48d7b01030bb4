package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"eventcounter/api/grpcserver"
	"eventcounter/config"
	"eventcounter/domain/eventtree"
	"eventcounter/infra/kafka"
	"eventcounter/infra/logutil"
	"eventcounter/infra/metrics"
	"eventcounter/infra/sequence"
	entrywal "eventcounter/infra/wal/entry"
	exitwal "eventcounter/infra/wal/exit"
	"eventcounter/jobs/broadcaster"
	"eventcounter/service"
	"eventcounter/snapshot"
)

func main() {
	var configPath string

	cmd := &cobra.Command{
		Use:           "server",
		Short:         "Serve the event counter over gRPC",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default()
			if configPath != "" {
				var err error
				if cfg, err = config.Load(configPath); err != nil {
					return err
				}
			}

			logger, err := logutil.New(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if err := run(cfg, logger); err != nil {
				logger.Error("server exited", zap.Error(err))
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to the TOML config file")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// ---------------- Entry WAL ----------------

	entryWAL, err := entrywal.Open(entrywal.Config{
		Dir:             cfg.WAL.Dir,
		SegmentSize:     cfg.WAL.SegmentSize,
		SegmentDuration: cfg.WAL.SegmentDuration.Duration,
		SyncEveryWrite:  cfg.WAL.SyncEveryWrite,
	})
	if err != nil {
		return errors.Wrap(err, "open entry WAL")
	}
	defer entryWAL.Close()
	entryWAL.OnAppend(m.ObserveWALAppend)

	// ---------------- Outbox ----------------

	var (
		outbox  service.Outbox
		exitWAL *exitwal.ExitWAL
	)
	if cfg.Outbox.Enabled {
		if exitWAL, err = exitwal.Open(cfg.Outbox.Dir); err != nil {
			return errors.Wrap(err, "open outbox")
		}
		defer exitWAL.Close()
		outbox = exitWAL
	}

	// ---------------- Service + recovery ----------------

	svc := service.NewCounterService(eventtree.New(), sequence.New(0), entryWAL, outbox, m, logger)

	snapWriter := &snapshot.Writer{Dir: cfg.Snapshot.Dir}
	if err := svc.Recover(service.RecoverConfig{
		SnapshotPath:    snapWriter.Path(),
		BootstrapFile:   cfg.Bootstrap.File,
		VerifyBootstrap: cfg.Bootstrap.Verify,
		WALDir:          cfg.WAL.Dir,
	}); err != nil {
		return errors.Wrap(err, "recover")
	}

	// ---------------- Background jobs ----------------

	svc.StartSnapshotJob(ctx, snapWriter, cfg.Snapshot.Interval.Duration)

	if exitWAL != nil {
		pub, err := kafka.NewPublisher(kafka.Config{
			Client:  cfg.Kafka.Client,
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		})
		if err != nil {
			return err
		}
		bc := broadcaster.New(exitWAL, pub, cfg.Kafka.PollInterval.Duration, m, logger)
		defer bc.Close()
		go bc.Run(ctx)
	}

	if cfg.Metrics.Enabled {
		metricsSrv := &http.Server{Addr: cfg.Metrics.Addr, Handler: m.Handler()}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
		defer metricsSrv.Close()
	}

	// ---------------- gRPC ----------------

	lis, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen %s", cfg.Server.Addr)
	}
	grpcSrv := grpcserver.NewGRPCServer(svc, logger)

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		grpcSrv.GracefulStop()
	}()

	logger.Info("event counter serving",
		zap.String("addr", cfg.Server.Addr), zap.Int("events", svc.Len()))
	if err := grpcSrv.Serve(lis); err != nil {
		return err
	}

	// Leave a snapshot behind so the next start skips most of the WAL.
	if _, err := svc.SnapshotNow(snapWriter); err != nil {
		logger.Warn("final snapshot failed", zap.Error(err))
	}
	return nil
}
