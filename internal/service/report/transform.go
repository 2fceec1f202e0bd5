package report

import (
	"math"
	"slices"
	"sort"

	"github.com/kubev2v/assessment-report-exporter/internal/service/report/types"
	"github.com/kubev2v/assessment-report-exporter/pkg/inventory"
)

// Overhead applied on top of the current allocation when projecting the target capacity.
const (
	CPUOverheadFactor     = 1.20
	MemoryOverheadFactor  = 1.25
	StorageOverheadFactor = 1.15
)

// TopOSEntries is the number of operating systems kept for the OS chart.
const TopOSEntries = 8

const (
	powerStateOn        = "poweredOn"
	powerStateOff       = "poweredOff"
	powerStateSuspended = "suspended"
)

var knownPowerStates = []struct {
	key   string
	label string
}{
	{key: powerStateOn, label: "Powered On"},
	{key: powerStateOff, label: "Powered Off"},
	{key: powerStateSuspended, label: "Suspended"},
}

// ChartDataTransformer derives the chart series from an inventory snapshot.
// It is a pure function of its input.
type ChartDataTransformer struct{}

func NewChartDataTransformer() *ChartDataTransformer {
	return &ChartDataTransformer{}
}

// Transform normalizes raw and derives every chart series from it. Normalization
// failures are returned unchanged.
func (t *ChartDataTransformer) Transform(raw *inventory.Snapshot) (*types.ChartSeries, error) {
	inv, err := inventory.Normalize(raw)
	if err != nil {
		return nil, err
	}
	return t.TransformNormalized(inv), nil
}

// TransformNormalized derives the chart series from an already normalized inventory.
func (t *ChartDataTransformer) TransformNormalized(inv *inventory.NormalizedInventory) *types.ChartSeries {
	labels, used, total := buildStorageData(inv.Infrastructure.Datastores)

	return &types.ChartSeries{
		PowerStateData:   buildPowerStateData(inv.VirtualMachines.PowerStates),
		ResourceData:     buildResourceData(inv.VirtualMachines),
		OSData:           BuildOSData(inventory.ExtractOSEntries(inv.VirtualMachines)),
		WarningsData:     buildWarningsData(inv.VirtualMachines.MigrationWarnings),
		StorageLabels:    labels,
		StorageUsedData:  used,
		StorageTotalData: total,
	}
}

func buildPowerStateData(states map[string]int) []types.LabelValue {
	data := make([]types.LabelValue, 0, len(knownPowerStates)+len(states))
	known := make(map[string]bool, len(knownPowerStates))
	for _, s := range knownPowerStates {
		known[s.key] = true
		data = append(data, types.LabelValue{Label: s.label, Value: float64(states[s.key])})
	}

	// any other state reported by the collector is kept, in a stable order
	var others []string
	for state := range states {
		if !known[state] {
			others = append(others, state)
		}
	}
	sort.Strings(others)
	for _, state := range others {
		data = append(data, types.LabelValue{Label: state, Value: float64(states[state])})
	}

	return data
}

func buildResourceData(vms inventory.VMsData) []types.ResourceDatum {
	return []types.ResourceDatum{
		project("CPU Cores", vms.CPUCores.Total, CPUOverheadFactor),
		project("Memory GB", vms.RamGB.Total, MemoryOverheadFactor),
		project("Storage GB", vms.DiskGB.Total, StorageOverheadFactor),
	}
}

func project(name string, current, factor float64) types.ResourceDatum {
	return types.ResourceDatum{
		Name:      name,
		Current:   current,
		Projected: math.Round(current * factor),
	}
}

// BuildOSData sorts the entries by count, descending, and keeps the first TopOSEntries.
// Entries with the same count keep their original order.
func BuildOSData(entries []inventory.OSEntry) []types.LabelValue {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b inventory.OSEntry) int {
		return b.Count - a.Count
	})
	if len(sorted) > TopOSEntries {
		sorted = sorted[:TopOSEntries]
	}

	data := make([]types.LabelValue, 0, len(sorted))
	for _, e := range sorted {
		data = append(data, types.LabelValue{Label: e.Name, Value: float64(e.Count)})
	}
	return data
}

func buildWarningsData(warnings []inventory.MigrationIssue) []types.LabelValue {
	data := make([]types.LabelValue, 0, len(warnings))
	for _, w := range warnings {
		data = append(data, types.LabelValue{Label: w.Label, Value: float64(w.Count)})
	}
	return data
}

func buildStorageData(datastores []inventory.Datastore) (labels []string, used []float64, total []float64) {
	labels = make([]string, 0, len(datastores))
	used = make([]float64, 0, len(datastores))
	total = make([]float64, 0, len(datastores))

	for _, ds := range datastores {
		labels = append(labels, ds.Vendor+" "+ds.Type)
		used = append(used, ds.TotalCapacityGB-ds.FreeCapacityGB)
		total = append(total, ds.TotalCapacityGB)
	}
	return labels, used, total
}
