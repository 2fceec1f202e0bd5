package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"sigs.k8s.io/yaml"

	"github.com/kubev2v/assessment-report-exporter/internal/service/report"
	"github.com/kubev2v/assessment-report-exporter/internal/service/report/types"
	"github.com/kubev2v/assessment-report-exporter/pkg/inventory"
)

// ExportOutcome is printed once an export command is done.
type ExportOutcome struct {
	types.ExportResult
	Path string `json:"path,omitempty"`
}

// printValue prints v as JSON or YAML.
func printValue(w io.Writer, output string, v any) error {
	var data []byte
	var err error
	switch output {
	case jsonFormat:
		data, err = json.MarshalIndent(v, "", "  ")
		data = append(data, '\n')
	case yamlFormat:
		data, err = yaml.Marshal(v)
	default:
		return fmt.Errorf("unsupported output format: %s", output)
	}
	if err != nil {
		return fmt.Errorf("marshalling output: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func printOutcome(w io.Writer, output string, outcome ExportOutcome) error {
	if output != "" {
		return printValue(w, output, outcome)
	}

	if outcome.Success {
		_, err := fmt.Fprintf(w, "%s Report written to %s\n", text.FgGreen.Sprint("✔"), outcome.Path)
		return err
	}
	_, err := fmt.Fprintf(w, "%s Export failed (%s): %s\n", text.FgRed.Sprint("✘"), outcome.Error.Kind, outcome.Error.Message)
	return err
}

// drawSummary prints the headline figures of snapshot. Snapshots that do not normalize are
// skipped; the export reports why.
func drawSummary(w io.Writer, snapshot *inventory.Snapshot) {
	if snapshot == nil {
		return
	}
	inv, err := inventory.Normalize(snapshot)
	if err != nil {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Total VMs", "Migratable VMs", "ESXi Hosts", "Datastores", "Networks"})
	t.AppendRow(table.Row{
		inv.VirtualMachines.Total,
		inv.VirtualMachines.TotalMigratable,
		inv.Infrastructure.TotalHosts,
		len(inv.Infrastructure.Datastores),
		len(inv.Infrastructure.Networks),
	})
	t.SetStyle(table.StyleRounded)
	t.Render()

	osData := report.BuildOSData(inventory.ExtractOSEntries(inv.VirtualMachines))
	if len(osData) == 0 {
		return
	}
	osTable := table.NewWriter()
	osTable.SetOutputMirror(w)
	osTable.AppendHeader(table.Row{"Operating System", "VMs"})
	for _, entry := range osData {
		osTable.AppendRow(table.Row{entry.Label, entry.Value})
	}
	osTable.SetStyle(table.StyleRounded)
	osTable.Render()
}

// startSpinner shows a spinner on stderr while an export runs. It stays silent when stderr
// is not a terminal.
func startSpinner(suffix string) func() {
	loader := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	loader.Color("yellow") //nolint:errcheck
	loader.Suffix = " " + suffix
	loader.Start()
	return loader.Stop
}
