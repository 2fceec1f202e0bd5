package inventory

import (
	"maps"
	"slices"
)

// Shape identifies which snapshot generation a snapshot was recognised as.
type Shape string

const (
	ShapeDirect    Shape = "direct"
	ShapeInventory Shape = "inventory"
	ShapeVCenter   Shape = "inventory.vcenter"
	ShapeUnknown   Shape = "unknown"
)

type shapeDetector struct {
	shape  Shape
	detect func(*Snapshot) *Scope
}

// shapeDetectors are tried in order; the first complete scope wins.
var shapeDetectors = []shapeDetector{
	{
		shape: ShapeDirect,
		detect: func(s *Snapshot) *Scope {
			return &s.Scope
		},
	},
	{
		shape: ShapeInventory,
		detect: func(s *Snapshot) *Scope {
			if s.Inventory == nil {
				return nil
			}
			return &s.Inventory.Scope
		},
	},
	{
		shape: ShapeVCenter,
		detect: func(s *Snapshot) *Scope {
			if s.Inventory == nil {
				return nil
			}
			return s.Inventory.VCenter
		},
	},
}

func resolve(raw *Snapshot) (Shape, *Scope) {
	if raw == nil {
		return ShapeUnknown, nil
	}
	for _, d := range shapeDetectors {
		if scope := d.detect(raw); scope.complete() {
			return d.shape, scope
		}
	}
	return ShapeUnknown, nil
}

// DetectShape reports which snapshot generation raw matches.
func DetectShape(raw *Snapshot) Shape {
	shape, _ := resolve(raw)
	return shape
}

// Normalize maps raw onto the canonical NormalizedInventory. The result never aliases the
// snapshot's maps or slices, so raw stays untouched whatever the caller does with the result.
func Normalize(raw *Snapshot) (*NormalizedInventory, error) {
	_, scope := resolve(raw)
	if scope == nil {
		return nil, NewErrInvalidInventoryShape()
	}

	return &NormalizedInventory{
		Infrastructure:  copyInfra(*scope.Infra),
		VirtualMachines: copyVMs(*scope.VMs),
	}, nil
}

func copyInfra(in InfrastructureData) InfrastructureData {
	out := in
	out.HostPowerStates = copyCounts(in.HostPowerStates)
	out.Datastores = nonNil(slices.Clone(in.Datastores))
	out.Networks = nonNil(slices.Clone(in.Networks))
	return out
}

func copyVMs(in VMsData) VMsData {
	out := in
	out.PowerStates = copyCounts(in.PowerStates)
	out.OSInfo = slices.Clone(in.OSInfo)
	out.OS = slices.Clone(in.OS)
	out.MigrationWarnings = nonNil(slices.Clone(in.MigrationWarnings))
	out.NotMigratableReasons = nonNil(slices.Clone(in.NotMigratableReasons))
	return out
}

func copyCounts(in map[string]int) map[string]int {
	if in == nil {
		return map[string]int{}
	}
	return maps.Clone(in)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
