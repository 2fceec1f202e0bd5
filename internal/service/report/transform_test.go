package report_test

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubev2v/assessment-report-exporter/internal/service/report"
	"github.com/kubev2v/assessment-report-exporter/internal/service/report/types"
	"github.com/kubev2v/assessment-report-exporter/pkg/inventory"
)

func newSnapshot(vms inventory.VMsData, infra inventory.InfrastructureData) *inventory.Snapshot {
	return &inventory.Snapshot{
		Scope: inventory.Scope{Infra: &infra, VMs: &vms},
	}
}

var _ = Describe("ChartDataTransformer", func() {
	var transformer *report.ChartDataTransformer

	BeforeEach(func() {
		transformer = report.NewChartDataTransformer()
	})

	Context("resource projection", func() {
		It("applies the fixed overhead factors", func() {
			series, err := transformer.Transform(newSnapshot(inventory.VMsData{
				CPUCores: inventory.ResourceTotal{Total: 100},
				RamGB:    inventory.ResourceTotal{Total: 200},
				DiskGB:   inventory.ResourceTotal{Total: 1000},
			}, inventory.InfrastructureData{}))
			Expect(err).To(BeNil())

			Expect(series.ResourceData).To(Equal([]types.ResourceDatum{
				{Name: "CPU Cores", Current: 100, Projected: 120},
				{Name: "Memory GB", Current: 200, Projected: 250},
				{Name: "Storage GB", Current: 1000, Projected: 1150},
			}))
		})

		It("rounds only the projected value", func() {
			series, err := transformer.Transform(newSnapshot(inventory.VMsData{
				CPUCores: inventory.ResourceTotal{Total: 3},
				RamGB:    inventory.ResourceTotal{Total: 10.5},
				DiskGB:   inventory.ResourceTotal{Total: 100},
			}, inventory.InfrastructureData{}))
			Expect(err).To(BeNil())

			Expect(series.ResourceData[0].Current).To(Equal(3.0))
			Expect(series.ResourceData[0].Projected).To(Equal(4.0)) // 3.6
			Expect(series.ResourceData[1].Current).To(Equal(10.5))
			Expect(series.ResourceData[1].Projected).To(Equal(13.0)) // 13.125
			Expect(series.ResourceData[2].Projected).To(Equal(115.0))
		})
	})

	Context("power states", func() {
		It("always reports the known states and keeps unknown ones", func() {
			series, err := transformer.Transform(newSnapshot(inventory.VMsData{
				PowerStates: map[string]int{"poweredOn": 5, "zombie": 1, "migrating": 2},
			}, inventory.InfrastructureData{}))
			Expect(err).To(BeNil())

			Expect(series.PowerStateData).To(Equal([]types.LabelValue{
				{Label: "Powered On", Value: 5},
				{Label: "Powered Off", Value: 0},
				{Label: "Suspended", Value: 0},
				{Label: "migrating", Value: 2},
				{Label: "zombie", Value: 1},
			}))
		})
	})

	Context("storage", func() {
		It("derives parallel label, used and total series", func() {
			series, err := transformer.Transform(newSnapshot(inventory.VMsData{}, inventory.InfrastructureData{
				Datastores: []inventory.Datastore{
					{Vendor: "NETAPP", Type: "NFS", TotalCapacityGB: 1000, FreeCapacityGB: 400},
					{Vendor: "PURE", Type: "VMFS", TotalCapacityGB: 500, FreeCapacityGB: 500},
				},
			}))
			Expect(err).To(BeNil())

			Expect(series.StorageLabels).To(Equal([]string{"NETAPP NFS", "PURE VMFS"}))
			Expect(series.StorageUsedData).To(Equal([]float64{600, 0}))
			Expect(series.StorageTotalData).To(Equal([]float64{1000, 500}))
		})
	})

	Context("warnings", func() {
		It("keeps label and count pairs in order", func() {
			series, err := transformer.Transform(newSnapshot(inventory.VMsData{
				MigrationWarnings: []inventory.MigrationIssue{
					{Label: "CBT disabled", Count: 12},
					{Label: "Shared disk", Count: 2},
				},
			}, inventory.InfrastructureData{}))
			Expect(err).To(BeNil())

			Expect(series.WarningsData).To(Equal([]types.LabelValue{
				{Label: "CBT disabled", Value: 12},
				{Label: "Shared disk", Value: 2},
			}))
		})
	})

	It("propagates normalization failures unchanged", func() {
		series, err := transformer.Transform(&inventory.Snapshot{})
		Expect(series).To(BeNil())

		var shapeErr *inventory.ErrInvalidInventoryShape
		Expect(err).To(BeAssignableToTypeOf(shapeErr))
		Expect(err.Error()).To(Equal("Invalid inventory data structure"))
	})

	It("is deterministic", func() {
		snapshot := newSnapshot(inventory.VMsData{
			PowerStates: map[string]int{"poweredOn": 1, "a": 1, "b": 2, "c": 3},
			OS:          inventory.OSDistribution{{Name: "x", Value: inventory.OSCount{Count: 1}}},
		}, inventory.InfrastructureData{})

		first, err := transformer.Transform(snapshot)
		Expect(err).To(BeNil())
		for i := 0; i < 10; i++ {
			again, err := transformer.Transform(snapshot)
			Expect(err).To(BeNil())
			Expect(again).To(Equal(first))
		}
	})
})

var _ = Describe("BuildOSData", func() {
	It("returns the top 8 entries sorted by count", func() {
		entries := make([]inventory.OSEntry, 0, 10)
		for i := 1; i <= 10; i++ {
			entries = append(entries, inventory.OSEntry{Name: fmt.Sprintf("os-%d", i), Count: i * 10})
		}

		data := report.BuildOSData(entries)
		Expect(data).To(HaveLen(8))
		Expect(data[0]).To(Equal(types.LabelValue{Label: "os-10", Value: 100}))
		Expect(data[7]).To(Equal(types.LabelValue{Label: "os-3", Value: 30}))
		for i := 1; i < len(data); i++ {
			Expect(data[i-1].Value).To(BeNumerically(">", data[i].Value))
		}
	})

	It("breaks ties by original order", func() {
		data := report.BuildOSData([]inventory.OSEntry{
			{Name: "first", Count: 5},
			{Name: "big", Count: 9},
			{Name: "second", Count: 5},
			{Name: "third", Count: 5},
		})

		Expect(data).To(Equal([]types.LabelValue{
			{Label: "big", Value: 9},
			{Label: "first", Value: 5},
			{Label: "second", Value: 5},
			{Label: "third", Value: 5},
		}))
	})

	It("does not reorder the caller's slice", func() {
		entries := []inventory.OSEntry{{Name: "a", Count: 1}, {Name: "b", Count: 2}}
		report.BuildOSData(entries)
		Expect(entries[0].Name).To(Equal("a"))
	})

	It("accepts an empty distribution", func() {
		Expect(report.BuildOSData(nil)).To(BeEmpty())
	})
})
