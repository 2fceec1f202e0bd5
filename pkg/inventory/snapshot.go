package inventory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

// Scope is one level of a snapshot which may carry an infrastructure and a VM record.
type Scope struct {
	Infra *InfrastructureData `json:"infra,omitempty"`
	VMs   *VMsData            `json:"vms,omitempty"`
}

func (s *Scope) complete() bool {
	return s != nil && s.Infra != nil && s.VMs != nil
}

// NestedInventory is the `inventory` field of the second and third snapshot generations.
type NestedInventory struct {
	Scope
	VCenterID string `json:"vcenter_id,omitempty"`
	VCenter   *Scope `json:"vcenter,omitempty"`
}

// Snapshot is a point-in-time capture of a virtualized estate, as handed over by the caller.
// Three schema generations are accepted:
//
//	{"infra": ..., "vms": ...}
//	{"inventory": {"infra": ..., "vms": ...}}
//	{"inventory": {"vcenter": {"infra": ..., "vms": ...}}}
type Snapshot struct {
	Scope
	Inventory *NestedInventory `json:"inventory,omitempty"`
}

// Parse decodes a snapshot from JSON or YAML. JSON documents are decoded directly so the key
// order of OS maps survives; YAML documents lose it.
func Parse(data []byte) (*Snapshot, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty inventory document")
	}

	var snapshot Snapshot
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &snapshot); err != nil {
			return nil, fmt.Errorf("failed to decode inventory json: %w", err)
		}
		return &snapshot, nil
	}

	if err := yaml.Unmarshal(trimmed, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode inventory yaml: %w", err)
	}
	return &snapshot, nil
}

// Load reads and parses the snapshot stored at path.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory file %s: %w", path, err)
	}
	return Parse(data)
}
