package html

import (
	"bytes"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/kubev2v/assessment-report-exporter/internal/service/report"
	"github.com/kubev2v/assessment-report-exporter/internal/service/report/types"
	"github.com/kubev2v/assessment-report-exporter/pkg/inventory"
)

// DefaultTitle is used for the document title and heading when no title is supplied.
const DefaultTitle = "VMware Infrastructure Assessment Report"

// GeneratedLayout renders the generation timestamp shown under the heading.
const GeneratedLayout = "2006-01-02 at 15:04:05"

var parsedDocumentTemplate = template.Must(template.New("report").Parse(documentTemplate))

// Builder renders the self-contained HTML report. Its output depends only on its inputs.
type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

// Build renders the report. A nil title selects DefaultTitle; an empty title is kept as is.
func (b *Builder) Build(series *types.ChartSeries, inv *inventory.NormalizedInventory, generatedAt time.Time, title *string) (string, error) {
	if series == nil || inv == nil {
		return "", fmt.Errorf("html builder: series and inventory are required")
	}

	documentTitle := DefaultTitle
	if title != nil {
		documentTitle = *title
	}

	vms := inv.VirtualMachines
	infra := inv.Infrastructure

	data := documentData{
		Title:      escape(documentTitle),
		CSS:        reportCSS(),
		ChartJSURL: ChartJSURL,
		Generated:  generatedAt.Format(GeneratedLayout),

		TotalVMs:        vms.Total,
		TotalMigratable: vms.TotalMigratable,
		TotalHosts:      infra.TotalHosts,
		TotalDatastores: len(infra.Datastores),
		TotalNetworks:   len(infra.Networks),

		WarningsChartSection: b.generateWarningsChartSection(series.WarningsData),

		OSTable:       b.generateOSTable(inventory.ExtractOSEntries(vms), vms.Total),
		ResourceTable: b.generateResourceTable(series.ResourceData, vms.Total),

		WarningsTableSection: b.generateWarningsTableSection(vms.MigrationWarnings, vms.Total),
		BlockersTableSection: b.generateBlockersTableSection(vms.NotMigratableReasons, vms.Total),
		StorageTable:         b.generateStorageTable(infra.Datastores),
		NetworkTable:         b.generateNetworkTable(infra.Networks),

		JavaScript: b.generateChartScript(series),
	}

	var buf bytes.Buffer
	if err := parsedDocumentTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute HTML template: %w", err)
	}

	return buf.String(), nil
}

func (b *Builder) generateOSTable(entries []inventory.OSEntry, totalVMs int) string {
	if len(entries) == 0 {
		return `<tr><td colspan="4" class="empty-note">No operating system data available</td></tr>`
	}

	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(x, y inventory.OSEntry) int {
		return y.Count - x.Count
	})

	var rows strings.Builder
	for _, os := range sorted {
		rows.WriteString(fmt.Sprintf(`
                        <tr>
                            <td><strong>%s</strong></td>
                            <td>%d</td>
                            <td>%s%%</td>
                            <td>%s</td>
                        </tr>`, escape(os.Name), os.Count, percentOf(float64(os.Count), float64(totalVMs)), OSPriority(os.Name)))
	}

	return rows.String()
}

func (b *Builder) generateResourceTable(resources []types.ResourceDatum, totalVMs int) string {
	overheads := map[string]float64{
		"CPU Cores":  report.CPUOverheadFactor,
		"Memory GB":  report.MemoryOverheadFactor,
		"Storage GB": report.StorageOverheadFactor,
	}

	var rows strings.Builder
	for _, r := range resources {
		average := 0.0
		if totalVMs > 0 {
			average = r.Current / float64(totalVMs)
		}
		overhead := math.Round((overheads[r.Name] - 1) * 100)

		rows.WriteString(fmt.Sprintf(`
                        <tr>
                            <td><strong>%s</strong></td>
                            <td>%s</td>
                            <td>%.1f</td>
                            <td>%s (with %.0f%% overhead)</td>
                        </tr>`, escape(r.Name), formatQuantity(r.Current), average, formatQuantity(r.Projected), overhead))
	}

	return rows.String()
}

func (b *Builder) generateWarningsChartSection(warnings []types.LabelValue) string {
	if len(warnings) == 0 {
		return ""
	}

	return `<div class="chart-container">
                    <h3>Migration Warnings</h3>
                    <div class="chart-wrapper">
                        <canvas id="warningsChart"></canvas>
                    </div>
                </div>`
}

func (b *Builder) generateWarningsTableSection(warnings []inventory.MigrationIssue, totalVMs int) string {
	if len(warnings) == 0 {
		return `<div class="table-section">
                <h3>Migration Warnings Analysis</h3>
                <p class="empty-note">No migration warnings to display.</p>
            </div>`
	}

	var rows strings.Builder
	for _, warning := range warnings {
		tier := ClassifyWarning(warning.Count)
		rows.WriteString(fmt.Sprintf(`
                        <tr class="%s">
                            <td><strong>%s</strong></td>
                            <td>%d</td>
                            <td>%s</td>
                            <td>%s%%</td>
                            <td>%s</td>
                        </tr>`, tier.RowClass, escape(warning.Label), warning.Count, tier.Impact,
			percentOf(float64(warning.Count), float64(totalVMs)), tier.Priority))
	}

	return fmt.Sprintf(`<div class="table-section">
                <h3>Migration Warnings Analysis</h3>
                <table>
                    <thead>
                        <tr>
                            <th>Warning Category</th>
                            <th>Affected VMs</th>
                            <th>Impact Level</th>
                            <th>%% of Total VMs</th>
                            <th>Priority</th>
                        </tr>
                    </thead>
                    <tbody>
                        %s
                    </tbody>
                </table>
            </div>`, rows.String())
}

func (b *Builder) generateBlockersTableSection(reasons []inventory.MigrationIssue, totalVMs int) string {
	if len(reasons) == 0 {
		return ""
	}

	var rows strings.Builder
	for _, reason := range reasons {
		rows.WriteString(fmt.Sprintf(`
                        <tr class="warning-high">
                            <td><strong>%s</strong></td>
                            <td>%d</td>
                            <td>%s%%</td>
                        </tr>`, escape(reason.Label), reason.Count, percentOf(float64(reason.Count), float64(totalVMs))))
	}

	return fmt.Sprintf(`<div class="table-section">
                <h3>Migration Blockers</h3>
                <table>
                    <thead>
                        <tr>
                            <th>Reason</th>
                            <th>Affected VMs</th>
                            <th>%% of Total VMs</th>
                        </tr>
                    </thead>
                    <tbody>
                        %s
                    </tbody>
                </table>
            </div>`, rows.String())
}

func (b *Builder) generateStorageTable(datastores []inventory.Datastore) string {
	if len(datastores) == 0 {
		return `<tr><td colspan="7" class="empty-note">No datastore information available</td></tr>`
	}

	var rows strings.Builder
	for _, ds := range datastores {
		hwAccel := "❌ No"
		if ds.HardwareAcceleratedMove {
			hwAccel = "✅ Yes"
		}

		rows.WriteString(fmt.Sprintf(`
                        <tr>
                            <td><strong>%s</strong></td>
                            <td>%s</td>
                            <td>%s</td>
                            <td>%s</td>
                            <td>%s</td>
                            <td>%s%%</td>
                            <td>%s</td>
                        </tr>`,
			escape(ds.Vendor), escape(ds.Type), escape(ds.ProtocolType),
			formatNumber(ds.TotalCapacityGB),
			formatNumber(ds.FreeCapacityGB),
			Utilization(ds.TotalCapacityGB, ds.FreeCapacityGB), hwAccel))
	}

	return rows.String()
}

func (b *Builder) generateNetworkTable(networks []inventory.Network) string {
	if len(networks) == 0 {
		return `<tr><td colspan="4" class="empty-note">No network information available</td></tr>`
	}

	var rows strings.Builder
	for _, n := range networks {
		vlan := "-"
		if n.VlanID != "" {
			vlan = escape(n.VlanID)
		}
		dvswitch := "-"
		if n.Dvswitch != "" {
			dvswitch = escape(n.Dvswitch)
		}

		rows.WriteString(fmt.Sprintf(`
                        <tr>
                            <td><strong>%s</strong></td>
                            <td>%s</td>
                            <td>%s</td>
                            <td>%s</td>
                        </tr>`, escape(n.Name), escape(n.Type), vlan, dvswitch))
	}

	return rows.String()
}

// OSPriority classifies an operating system name for migration planning.
func OSPriority(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "windows"):
		return "High"
	case strings.Contains(lower, "linux"), strings.Contains(lower, "red hat"):
		return "Medium"
	default:
		return "Review Required"
	}
}

// WarningTier is the impact classification of a migration warning.
type WarningTier struct {
	Impact   string
	Priority string
	RowClass string
	Color    string
}

var (
	tierCritical = WarningTier{Impact: "Critical", Priority: "Immediate", RowClass: "warning-high", Color: "#e74c3c"}
	tierHigh     = WarningTier{Impact: "High", Priority: "Before Migration", RowClass: "warning-medium", Color: "#f39c12"}
	tierMedium   = WarningTier{Impact: "Medium", Priority: "During Migration", RowClass: "warning-low", Color: "#27ae60"}
	tierLow      = WarningTier{Impact: "Low", Priority: "Post Migration", RowClass: "", Color: "#3498db"}
)

// ClassifyWarning maps the number of affected VMs to an impact tier.
func ClassifyWarning(count int) WarningTier {
	switch {
	case count > 50:
		return tierCritical
	case count > 20:
		return tierHigh
	case count > 5:
		return tierMedium
	default:
		return tierLow
	}
}

// Utilization returns the used share of a datastore with one decimal, "0.0" when total is zero.
func Utilization(total, free float64) string {
	if total <= 0 {
		return "0.0"
	}
	return fmt.Sprintf("%.1f", (total-free)/total*100)
}

func percentOf(count, total float64) string {
	if total <= 0 {
		return "0.0"
	}
	return fmt.Sprintf("%.1f", count/total*100)
}

func formatNumber(num float64) string {
	if num >= 1000000 {
		return fmt.Sprintf("%.1fM", num/1000000)
	} else if num >= 1000 {
		return fmt.Sprintf("%.1fK", num/1000)
	}
	return formatQuantity(num)
}

func formatQuantity(num float64) string {
	return strconv.FormatFloat(num, 'f', -1, 64)
}

func escape(s string) string {
	return template.HTMLEscapeString(s)
}
