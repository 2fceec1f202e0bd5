package cli

import (
	"context"
	"net"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	apiserver "github.com/kubev2v/assessment-report-exporter/internal/api_server"
	"github.com/kubev2v/assessment-report-exporter/internal/service"
	"github.com/kubev2v/assessment-report-exporter/internal/service/report/html"
)

type ServeOptions struct {
	GlobalOptions

	NoPDF bool
}

func DefaultServeOptions() *ServeOptions {
	return &ServeOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdServe() *cobra.Command {
	o := DefaultServeOptions()
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the export API and the metrics endpoint.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			return o.Run(cmd.Context())
		},
		SilenceUsage: true,
	}
	cmd.Flags().BoolVar(&o.NoPDF, "no-pdf", o.NoPDF, "Serve HTML exports only, without starting a browser.")
	return cmd
}

func (o *ServeOptions) Run(ctx context.Context) error {
	logger := zap.S().Named("serve")

	// exports are streamed back; the saver carried by each request context replaces this one
	var pdfGenerator service.PDFGenerator
	if !o.NoPDF {
		generator, closeBrowser, err := newPDFGenerator(ctx, o.cfg, nil)
		if err != nil {
			logger.Warnw("browser unavailable, pdf exports are disabled", "error", err)
		} else {
			defer func() {
				_ = closeBrowser()
			}()
			pdfGenerator = generator
		}
	}
	exporter := service.NewReportExportService(pdfGenerator, html.NewGenerator(nil))

	apiListener, err := newListener(o.cfg.Service.Address)
	if err != nil {
		return err
	}
	metricsListener, err := newListener(o.cfg.Service.MetricsAddress)
	if err != nil {
		_ = apiListener.Close()
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return apiserver.New(o.cfg, apiListener, exporter).Run(ctx)
	})
	g.Go(func() error {
		return apiserver.NewMetricServer(o.cfg.Service.MetricsAddress, metricsListener).Run(ctx)
	})
	return g.Wait()
}

func newListener(address string) (net.Listener, error) {
	if address == "" {
		address = "localhost:0"
	}
	return net.Listen("tcp", address)
}
