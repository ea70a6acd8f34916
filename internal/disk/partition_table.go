package disk

import (
	"fmt"
	"strconv"
)

// Fixed offsets of the automatic layouts.
const (
	firstPartitionStart = 1 * MiB
	efiEnd              = 125 * MiB
	efiBootEnd          = 637 * MiB
	legacyBootEnd       = 512 * MiB
)

type PartitionTable struct {
	Mode       BootMode
	Type       string // Partition table type, e.g. msdos, gpt.
	Partitions []Partition
}

// NewPartitionTable returns the fixed partition table for mode. The order of
// the partitions matches the order of the paths PlanLayout derives.
func NewPartitionTable(mode BootMode) PartitionTable {
	pt := PartitionTable{
		Mode: mode,
		Type: mode.PartitionTableType(),
	}
	if mode.IsEFI() {
		pt.Partitions = []Partition{
			{Role: RoleEFI, Type: "fat32", Start: firstPartitionStart, End: efiEnd, Flag: "esp"},
			{Role: RoleBoot, Type: "ext4", Start: efiEnd, End: efiBootEnd},
			{Role: RoleRoot, Type: "btrfs", Start: efiBootEnd},
		}
	} else {
		pt.Partitions = []Partition{
			{Role: RoleBoot, Type: "ext4", Start: firstPartitionStart, End: legacyBootEnd, Flag: "boot"},
			{Role: RoleRoot, Type: "btrfs", Start: legacyBootEnd},
		}
	}
	return pt
}

// PartedStep is one invocation of parted against the whole device.
type PartedStep struct {
	Description string
	Args        []string
}

// PartedSteps returns the parted invocations that write the table to device:
// the label first, then every partition in order, then the partition flags.
func (pt PartitionTable) PartedSteps(device string) []PartedStep {
	steps := []PartedStep{
		{
			Description: fmt.Sprintf("create %s label on %s", pt.Type, device),
			Args:        []string{"-s", device, "mklabel", pt.Type},
		},
	}
	for _, p := range pt.Partitions {
		start, end := p.Bounds()
		steps = append(steps, PartedStep{
			Description: fmt.Sprintf("create %s partition on %s", p.Role, device),
			Args:        []string{"-s", device, "mkpart", "primary", p.Type, start, end},
		})
	}
	for idx, p := range pt.Partitions {
		if p.Flag == "" {
			continue
		}
		number := strconv.Itoa(idx + 1)
		steps = append(steps, PartedStep{
			Description: fmt.Sprintf("set %s flag on %s partition %s", p.Flag, device, number),
			Args:        []string{"-s", device, "set", number, p.Flag, "on"},
		})
	}
	return steps
}
