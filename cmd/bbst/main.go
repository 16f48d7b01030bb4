package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"eventcounter/api/grpcserver"
	"eventcounter/domain/eventtree"
	"eventcounter/infra/bootstrap"
	"eventcounter/infra/logutil"
	"eventcounter/infra/sequence"
	"eventcounter/service"
	"eventcounter/shell"
)

type options struct {
	logLevel string
	verify   bool
	addr     string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "bbst <bootstrap-file>",
		Short:         "Load sorted events from a file and answer counter commands on stdin",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocal(cmd, opts, args[0])
		},
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "error", "log level (debug, info, warn, error)")
	root.Flags().BoolVar(&opts.verify, "verify", false, "reject a bootstrap file whose ids do not strictly increase")

	remote := &cobra.Command{
		Use:          "remote",
		Short:        "Answer counter commands on stdin against a running server",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRemote(cmd, opts)
		},
	}
	remote.Flags().StringVar(&opts.addr, "addr", "localhost:50051", "server address")
	root.AddCommand(remote)

	return root
}

func newLogger(opts *options) (*zap.Logger, error) {
	return logutil.New(logutil.LogConfig{Level: opts.logLevel, Format: "console"})
}

func runLocal(cmd *cobra.Command, opts *options, path string) error {
	logger, err := newLogger(opts)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	start := time.Now()
	events, err := bootstrap.DecodeFile(path)
	if err != nil {
		return err
	}
	if opts.verify {
		if err := bootstrap.CheckSorted(events); err != nil {
			return err
		}
	}
	svc := service.NewCounterService(eventtree.New(), sequence.New(0), nil, nil, nil, logger)
	svc.Bootstrap(events)
	fmt.Fprintf(cmd.OutOrStdout(), "Time(sec):%.3f\n", time.Since(start).Seconds())

	return shell.New(svc, cmd.OutOrStdout(), logger).Run(cmd.Context(), cmd.InOrStdin())
}

func runRemote(cmd *cobra.Command, opts *options) error {
	logger, err := newLogger(opts)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	client, err := grpcserver.Dial(opts.addr)
	if err != nil {
		return err
	}
	defer client.Close()

	return shell.New(client, cmd.OutOrStdout(), logger).Run(cmd.Context(), cmd.InOrStdin())
}
