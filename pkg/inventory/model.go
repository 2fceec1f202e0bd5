package inventory

// NormalizedInventory is the canonical shape every supported snapshot generation is mapped onto.
// Both fields are always populated once normalization succeeds.
type NormalizedInventory struct {
	Infrastructure  InfrastructureData
	VirtualMachines VMsData
}

// InfrastructureData contains infrastructure-level data (hosts, datastores, networks).
type InfrastructureData struct {
	TotalHosts       int            `json:"totalHosts"`
	TotalClusters    int            `json:"totalClusters,omitempty"`
	TotalDatacenters int            `json:"totalDatacenters,omitempty"`
	HostPowerStates  map[string]int `json:"hostPowerStates,omitempty"`
	Datastores       []Datastore    `json:"datastores"`
	Networks         []Network      `json:"networks"`
}

// VMsData contains aggregated VM statistics and distribution data.
type VMsData struct {
	Total                int              `json:"total"`
	TotalMigratable      int              `json:"totalMigratable,omitempty"`
	PowerStates          map[string]int   `json:"powerStates"`
	CPUCores             ResourceTotal    `json:"cpuCores"`
	RamGB                ResourceTotal    `json:"ramGB"`
	DiskGB               ResourceTotal    `json:"diskGB"`
	OSInfo               OSDistribution   `json:"osInfo,omitempty"`
	OS                   OSDistribution   `json:"os,omitempty"`
	MigrationWarnings    []MigrationIssue `json:"migrationWarnings"`
	NotMigratableReasons []MigrationIssue `json:"notMigratableReasons,omitempty"`
}

// ResourceTotal is the aggregated amount of a resource across all VMs.
type ResourceTotal struct {
	Total float64 `json:"total"`
}

// MigrationIssue represents a migration concern with its count.
type MigrationIssue struct {
	ID         string `json:"id,omitempty"`
	Label      string `json:"label"`
	Assessment string `json:"assessment,omitempty"`
	Count      int    `json:"count"`
}

// Datastore represents a VMware datastore.
type Datastore struct {
	DiskID                  string  `json:"diskId,omitempty"`
	Vendor                  string  `json:"vendor"`
	Model                   string  `json:"model,omitempty"`
	Type                    string  `json:"type"`
	ProtocolType            string  `json:"protocolType"`
	TotalCapacityGB         float64 `json:"totalCapacityGB"`
	FreeCapacityGB          float64 `json:"freeCapacityGB"`
	HardwareAcceleratedMove bool    `json:"hardwareAcceleratedMove"`
}

// Network represents a VMware network.
type Network struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	VlanID   string `json:"vlanId,omitempty"`
	Dvswitch string `json:"dvswitch,omitempty"`
}

// OSEntry is one operating system and the number of VMs running it.
type OSEntry struct {
	Name  string
	Count int
}
