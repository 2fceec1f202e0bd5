package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thoas/go-funk"

	"github.com/kubev2v/assessment-report-exporter/internal/config"
)

const (
	jsonFormat = "json"
	yamlFormat = "yaml"
)

var (
	legalOutputTypes = []string{jsonFormat, yamlFormat}
)

type GlobalOptions struct {
	OutputDir string
	Output    string

	cfg *config.Config
}

func DefaultGlobalOptions() GlobalOptions {
	return GlobalOptions{
		OutputDir: ".",
	}
}

func (o *GlobalOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.OutputDir, "output-dir", "d", o.OutputDir, "Directory the exported document is written to. Defaults to REPORT_EXPORTER_OUTPUT_DIR.")
	fs.StringVarP(&o.Output, "output", "o", o.Output, fmt.Sprintf("Format of the export result. One of: (%s).", strings.Join(legalOutputTypes, ", ")))
}

func (o *GlobalOptions) Complete(cmd *cobra.Command, args []string) error {
	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("reading configuration: %w", err)
	}
	o.cfg = cfg

	if !cmd.Flags().Changed("output-dir") {
		o.OutputDir = cfg.Service.OutputDir
	}
	return nil
}

func (o *GlobalOptions) Validate(args []string) error {
	if len(o.Output) > 0 && !funk.Contains(legalOutputTypes, o.Output) {
		return fmt.Errorf("output format must be one of %s", strings.Join(legalOutputTypes, ", "))
	}
	if o.OutputDir == "" {
		return fmt.Errorf("output directory must not be empty")
	}
	return nil
}
