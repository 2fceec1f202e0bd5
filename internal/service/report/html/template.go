package html

// documentData feeds documentTemplate. Every string field is either escaped or
// generated from numbers before it reaches the template.
type documentData struct {
	Title      string
	CSS        string
	ChartJSURL string
	Generated  string

	TotalVMs        int
	TotalMigratable int
	TotalHosts      int
	TotalDatastores int
	TotalNetworks   int

	WarningsChartSection string

	OSTable       string
	ResourceTable string

	WarningsTableSection string
	BlockersTableSection string
	StorageTable         string
	NetworkTable         string

	JavaScript string
}

const documentTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        {{.CSS}}
    </style>
</head>
<body>
    <div class="container">
        <div data-pdf-segment="1">
            <div class="header">
                <h1>{{.Title}}</h1>
                <p>Generated: {{.Generated}}</p>
            </div>

            <div class="summary-grid">
                <div class="summary-card">
                    <h4>Total VMs</h4>
                    <div class="number">{{.TotalVMs}}</div>
                </div>
                <div class="summary-card" style="background: #e74c3c;">
                    <h4>ESXi Hosts</h4>
                    <div class="number">{{.TotalHosts}}</div>
                </div>
                <div class="summary-card" style="background: #27ae60;">
                    <h4>Datastores</h4>
                    <div class="number">{{.TotalDatastores}}</div>
                </div>
                <div class="summary-card" style="background: #f39c12;">
                    <h4>Networks</h4>
                    <div class="number">{{.TotalNetworks}}</div>
                </div>
                <div class="summary-card" style="background: #9b59b6;">
                    <h4>Migratable VMs</h4>
                    <div class="number">{{.TotalMigratable}}</div>
                </div>
            </div>

            <div class="chart-grid">
                <div class="chart-container">
                    <h3>VM Power States Distribution</h3>
                    <div class="chart-wrapper">
                        <canvas id="powerChart"></canvas>
                    </div>
                </div>

                <div class="chart-container">
                    <h3>Resource Utilization</h3>
                    <div class="chart-wrapper">
                        <canvas id="resourceChart"></canvas>
                    </div>
                </div>

                <div class="chart-container">
                    <h3>Top Operating Systems</h3>
                    <div class="chart-wrapper">
                        <canvas id="osChart"></canvas>
                    </div>
                </div>

                {{.WarningsChartSection}}

                <div class="chart-container">
                    <h3>Storage Utilization by Datastore</h3>
                    <div class="chart-wrapper">
                        <canvas id="storageChart"></canvas>
                    </div>
                </div>
            </div>
        </div>

        <div class="section" data-pdf-segment="2">
            <h2>Detailed Analysis Tables</h2>

            <div class="table-section">
                <h3>Operating System Distribution</h3>
                <table>
                    <thead>
                        <tr>
                            <th>Operating System</th>
                            <th>VM Count</th>
                            <th>Percentage</th>
                            <th>Migration Priority</th>
                        </tr>
                    </thead>
                    <tbody>
                        {{.OSTable}}
                    </tbody>
                </table>
            </div>

            <div class="table-section">
                <h3>Resource Allocation Analysis</h3>
                <table>
                    <thead>
                        <tr>
                            <th>Resource Type</th>
                            <th>Current Total</th>
                            <th>Average per VM</th>
                            <th>Projected Total</th>
                        </tr>
                    </thead>
                    <tbody>
                        {{.ResourceTable}}
                    </tbody>
                </table>
            </div>
        </div>

        <div class="section" data-pdf-segment="3">
            {{.WarningsTableSection}}

            {{.BlockersTableSection}}

            <div class="table-section">
                <h3>Storage Infrastructure</h3>
                <table>
                    <thead>
                        <tr>
                            <th>Vendor</th>
                            <th>Type</th>
                            <th>Protocol</th>
                            <th>Total Capacity (GB)</th>
                            <th>Free Capacity (GB)</th>
                            <th>Utilization %</th>
                            <th>Hardware Acceleration</th>
                        </tr>
                    </thead>
                    <tbody>
                        {{.StorageTable}}
                    </tbody>
                </table>
            </div>

            <div class="table-section">
                <h3>Networks</h3>
                <table>
                    <thead>
                        <tr>
                            <th>Name</th>
                            <th>Type</th>
                            <th>VLAN</th>
                            <th>Distributed Switch</th>
                        </tr>
                    </thead>
                    <tbody>
                        {{.NetworkTable}}
                    </tbody>
                </table>
            </div>
        </div>

        <div class="footer">
            <p>Migration assessment - Generated from inventory data</p>
            <p>Charts are interactive - hover for details, click legend items to show/hide data series.</p>
        </div>
    </div>

    <script src="{{.ChartJSURL}}"></script>
    {{.JavaScript}}
</body>
</html>
`
