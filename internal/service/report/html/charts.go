package html

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kubev2v/assessment-report-exporter/internal/service/report/types"
)

var osColors = []string{"#3498db", "#e74c3c", "#27ae60", "#f39c12", "#9b59b6", "#1abc9c", "#34495e", "#e67e22"}

// generateChartScript returns the script initialising every chart placeholder. It runs on
// DOMContentLoaded, or right away when the document is already loaded (mounted fragments).
func (b *Builder) generateChartScript(series *types.ChartSeries) string {
	charts := []string{
		b.generatePowerStatesChart(series.PowerStateData),
		b.generateResourceChart(series.ResourceData),
		b.generateOSChart(series.OSData),
		b.generateWarningsChart(series.WarningsData),
		b.generateStorageChart(series.StorageLabels, series.StorageUsedData, series.StorageTotalData),
	}

	return fmt.Sprintf(`<script>
        (function() {
            function initCharts() {
                if (typeof Chart === 'undefined') {
                    return;
                }
                %s
            }
            if (document.readyState === 'loading') {
                document.addEventListener('DOMContentLoaded', initCharts);
            } else {
                initCharts();
            }
        })();
    </script>`, strings.Join(charts, "\n"))
}

func (b *Builder) generatePowerStatesChart(states []types.LabelValue) string {
	labels, values := splitLabelValues(states)
	return fmt.Sprintf(`
                // Power States Doughnut Chart
                const powerCtx = document.getElementById('powerChart');
                if (powerCtx) {
                    new Chart(powerCtx, {
                        type: 'doughnut',
                        data: {
                            labels: %s,
                            datasets: [{
                                data: %s,
                                backgroundColor: ['#27ae60', '#e74c3c', '#f39c12', '#95a5a6', '#34495e']
                            }]
                        },
                        options: {
                            responsive: true,
                            maintainAspectRatio: false,
                            plugins: { legend: { position: 'bottom' } }
                        }
                    });
                }`, jsValue(labels), jsValue(values))
}

func (b *Builder) generateResourceChart(resources []types.ResourceDatum) string {
	labels := make([]string, 0, len(resources))
	current := make([]float64, 0, len(resources))
	projected := make([]float64, 0, len(resources))
	for _, r := range resources {
		labels = append(labels, r.Name)
		current = append(current, r.Current)
		projected = append(projected, r.Projected)
	}

	return fmt.Sprintf(`
                // Resource Utilization Bar Chart
                const resourceCtx = document.getElementById('resourceChart');
                if (resourceCtx) {
                    new Chart(resourceCtx, {
                        type: 'bar',
                        data: {
                            labels: %s,
                            datasets: [{
                                label: 'Current',
                                data: %s,
                                backgroundColor: '#3498db'
                            }, {
                                label: 'Projected',
                                data: %s,
                                backgroundColor: '#2ecc71'
                            }]
                        },
                        options: {
                            responsive: true,
                            maintainAspectRatio: false,
                            plugins: { legend: { position: 'bottom' } },
                            scales: { y: { beginAtZero: true } }
                        }
                    });
                }`, jsValue(labels), jsValue(current), jsValue(projected))
}

func (b *Builder) generateOSChart(osData []types.LabelValue) string {
	labels, values := splitLabelValues(osData)
	colors := osColors[:min(len(values), len(osColors))]
	if len(osData) == 0 {
		labels = []string{"No Data Available"}
		values = []float64{0}
		colors = []string{"#cccccc"}
	}

	return fmt.Sprintf(`
                // Operating Systems Horizontal Bar Chart
                const osCtx = document.getElementById('osChart');
                if (osCtx) {
                    new Chart(osCtx, {
                        type: 'bar',
                        data: {
                            labels: %s,
                            datasets: [{
                                data: %s,
                                backgroundColor: %s
                            }]
                        },
                        options: {
                            indexAxis: 'y',
                            responsive: true,
                            maintainAspectRatio: false,
                            plugins: { legend: { display: false } },
                            scales: { x: { beginAtZero: true } }
                        }
                    });
                }`, jsValue(labels), jsValue(values), jsValue(colors))
}

func (b *Builder) generateWarningsChart(warnings []types.LabelValue) string {
	if len(warnings) == 0 {
		return ""
	}

	labels, values := splitLabelValues(warnings)
	colors := make([]string, 0, len(warnings))
	for _, w := range warnings {
		colors = append(colors, ClassifyWarning(int(w.Value)).Color)
	}

	return fmt.Sprintf(`
                // Migration Warnings Chart
                const warningsCtx = document.getElementById('warningsChart');
                if (warningsCtx) {
                    new Chart(warningsCtx, {
                        type: 'bar',
                        data: {
                            labels: %s,
                            datasets: [{
                                data: %s,
                                backgroundColor: %s
                            }]
                        },
                        options: {
                            responsive: true,
                            maintainAspectRatio: false,
                            plugins: { legend: { display: false } },
                            scales: { y: { beginAtZero: true } }
                        }
                    });
                }`, jsValue(labels), jsValue(values), jsValue(colors))
}

func (b *Builder) generateStorageChart(labels []string, used, total []float64) string {
	return fmt.Sprintf(`
                // Storage Utilization Chart
                const storageCtx = document.getElementById('storageChart');
                if (storageCtx) {
                    new Chart(storageCtx, {
                        type: 'bar',
                        data: {
                            labels: %s,
                            datasets: [{
                                label: 'Used (GB)',
                                data: %s,
                                backgroundColor: '#e74c3c'
                            }, {
                                label: 'Total (GB)',
                                data: %s,
                                backgroundColor: '#3498db'
                            }]
                        },
                        options: {
                            responsive: true,
                            maintainAspectRatio: false,
                            plugins: { legend: { position: 'bottom' } },
                            scales: { y: { beginAtZero: true } }
                        }
                    });
                }`, jsValue(labels), jsValue(used), jsValue(total))
}

func splitLabelValues(data []types.LabelValue) ([]string, []float64) {
	labels := make([]string, 0, len(data))
	values := make([]float64, 0, len(data))
	for _, d := range data {
		labels = append(labels, d.Label)
		values = append(values, d.Value)
	}
	return labels, values
}

// jsValue encodes v as a script literal. encoding/json escapes <, > and & so the
// result cannot close the surrounding script element.
func jsValue(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(data)
}
