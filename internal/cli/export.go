package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kubev2v/assessment-report-exporter/internal/service"
	"github.com/kubev2v/assessment-report-exporter/internal/service/report/download"
	"github.com/kubev2v/assessment-report-exporter/internal/service/report/html"
	"github.com/kubev2v/assessment-report-exporter/internal/service/report/types"
	"github.com/kubev2v/assessment-report-exporter/pkg/inventory"
)

func NewCmdExport() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export (html | pdf)",
		Short: "Export an assessment report.",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}
	cmd.AddCommand(NewCmdExportHTML())
	cmd.AddCommand(NewCmdExportPDF())
	return cmd
}

type ExportHTMLOptions struct {
	GlobalOptions

	InventoryFile string
	Title         string
	Filename      string

	titleSet bool
}

func DefaultExportHTMLOptions() *ExportHTMLOptions {
	return &ExportHTMLOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdExportHTML() *cobra.Command {
	o := DefaultExportHTMLOptions()
	cmd := &cobra.Command{
		Use:   "html --inventory FILE",
		Short: "Export the inventory as a standalone HTML report.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), cmd)
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *ExportHTMLOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.InventoryFile, "inventory", "i", o.InventoryFile, "Inventory snapshot, JSON or YAML.")
	fs.StringVarP(&o.Title, "title", "t", o.Title, "Document title. An empty title is kept as-is.")
	fs.StringVarP(&o.Filename, "filename", "f", o.Filename, fmt.Sprintf("Name of the written file. Defaults to %s.", html.DefaultFilename))
}

func (o *ExportHTMLOptions) Complete(cmd *cobra.Command, args []string) error {
	if err := o.GlobalOptions.Complete(cmd, args); err != nil {
		return err
	}
	o.titleSet = cmd.Flags().Changed("title")
	return nil
}

func (o *ExportHTMLOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if o.InventoryFile == "" {
		return errors.New("--inventory is required")
	}
	return nil
}

func (o *ExportHTMLOptions) Run(ctx context.Context, cmd *cobra.Command) error {
	snapshot, err := inventory.Load(o.InventoryFile)
	if err != nil {
		return err
	}

	saver := download.NewFileSaver(o.OutputDir)
	svc := service.NewReportExportService(nil, html.NewGenerator(saver))

	opts := types.HTMLOptions{Filename: o.Filename}
	if o.titleSet {
		opts.DocumentTitle = &o.Title
	}

	if o.Output == "" {
		drawSummary(cmd.OutOrStdout(), snapshot)
	}

	stop := startSpinner("Exporting HTML report...")
	result := svc.ExportHTML(ctx, snapshot, opts)
	stop()

	return finish(cmd, o.Output, result, saver)
}

type ExportPDFOptions struct {
	GlobalOptions

	InventoryFile string
	TreeFile      string
	Stylesheets   []string
	Scripts       []string
	Title         string

	titleSet bool
}

func DefaultExportPDFOptions() *ExportPDFOptions {
	return &ExportPDFOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdExportPDF() *cobra.Command {
	o := DefaultExportPDFOptions()
	cmd := &cobra.Command{
		Use:   "pdf (--inventory FILE | --tree FILE)",
		Short: "Render a report in a headless browser and export it as a paginated PDF.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), cmd)
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *ExportPDFOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.InventoryFile, "inventory", "i", o.InventoryFile, "Inventory snapshot rendered with the HTML report.")
	fs.StringVar(&o.TreeFile, "tree", o.TreeFile, "HTML markup mounted as-is instead of the HTML report.")
	fs.StringSliceVar(&o.Stylesheets, "stylesheet", o.Stylesheets, "Stylesheet URL loaded with --tree. Repeatable.")
	fs.StringSliceVar(&o.Scripts, "script", o.Scripts, "Script URL run after the --tree markup. Repeatable.")
	fs.StringVarP(&o.Title, "title", "t", o.Title, "Cover page title, also used for the file name.")
}

func (o *ExportPDFOptions) Complete(cmd *cobra.Command, args []string) error {
	if err := o.GlobalOptions.Complete(cmd, args); err != nil {
		return err
	}
	o.titleSet = cmd.Flags().Changed("title")
	return nil
}

func (o *ExportPDFOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if (o.InventoryFile == "") == (o.TreeFile == "") {
		return errors.New("exactly one of --inventory and --tree is required")
	}
	if o.TreeFile == "" && (len(o.Stylesheets) > 0 || len(o.Scripts) > 0) {
		return errors.New("--stylesheet and --script require --tree")
	}
	return nil
}

func (o *ExportPDFOptions) Run(ctx context.Context, cmd *cobra.Command) error {
	opts := types.PDFOptions{}
	if o.titleSet {
		opts.DocumentTitle = &o.Title
	}

	var snapshot *inventory.Snapshot
	var tree types.VisualTree
	if o.InventoryFile != "" {
		var err error
		if snapshot, err = inventory.Load(o.InventoryFile); err != nil {
			return err
		}
	} else {
		markup, err := os.ReadFile(o.TreeFile)
		if err != nil {
			return fmt.Errorf("reading visual tree: %w", err)
		}
		tree = types.VisualTree{HTML: string(markup), Stylesheets: o.Stylesheets, Scripts: o.Scripts}
	}

	saver := download.NewFileSaver(o.OutputDir)
	stop := startSpinner("Starting browser...")
	generator, closeBrowser, err := newPDFGenerator(ctx, o.cfg, saver)
	stop()
	if err != nil {
		return fmt.Errorf("starting browser: %w", err)
	}
	defer func() {
		_ = closeBrowser()
	}()

	svc := service.NewReportExportService(generator, html.NewGenerator(saver))

	if o.Output == "" {
		drawSummary(cmd.OutOrStdout(), snapshot)
	}

	stop = startSpinner("Exporting PDF report...")
	var result types.ExportResult
	if snapshot != nil {
		result = svc.ExportInventoryPDF(ctx, snapshot, opts)
	} else {
		result = svc.ExportPDF(ctx, tree, opts)
	}
	stop()

	return finish(cmd, o.Output, result, saver)
}

// finish prints the outcome and turns a failed export into the command error.
func finish(cmd *cobra.Command, output string, result types.ExportResult, saver *download.FileSaver) error {
	outcome := ExportOutcome{ExportResult: result}
	if result.Success {
		outcome.Path = saver.LastPath()
	}
	if err := printOutcome(cmd.OutOrStdout(), output, outcome); err != nil {
		return err
	}
	if !result.Success {
		return errors.New(result.Error.Message)
	}
	return nil
}
