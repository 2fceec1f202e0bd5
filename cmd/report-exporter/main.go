package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kubev2v/assessment-report-exporter/internal/cli"
	"github.com/kubev2v/assessment-report-exporter/internal/config"
	"github.com/kubev2v/assessment-report-exporter/pkg/log"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)

	command := NewReportExporterCommand()
	err := command.ExecuteContext(ctx)
	cancel()
	if err != nil {
		os.Exit(1)
	}
}

func NewReportExporterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report-exporter [flags] [options]",
		Short: "report-exporter turns migration assessment inventories into HTML and PDF reports.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New()
			if err != nil {
				return err
			}
			logger := log.InitLog(log.ParseLevel(cfg.Service.LogLevel), cfg.Service.LogFormat)
			undo := zap.ReplaceGlobals(logger)
			cobra.OnFinalize(func() {
				_ = logger.Sync()
				undo()
			})
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
			os.Exit(1)
		},
	}
	cmd.AddCommand(cli.NewCmdExport())
	cmd.AddCommand(cli.NewCmdServe())
	cmd.AddCommand(cli.NewCmdVersion())

	return cmd
}
