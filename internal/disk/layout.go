package disk

import (
	"fmt"

	"github.com/gobwas/glob"
)

// Devices whose kernel name ends in a digit separate the partition number
// with a "p", e.g. /dev/nvme0n1p1 or /dev/mmcblk0p2.
var partitionSuffixDevices = glob.MustCompile("*{nvme,mmcblk}*")

// PartitionName returns the path of partition number n (one based) of device.
func PartitionName(device string, n int) string {
	if partitionSuffixDevices.Match(device) {
		return fmt.Sprintf("%sp%d", device, n)
	}
	return fmt.Sprintf("%s%d", device, n)
}

// Layout is the ordered list of partition paths of an automatically
// partitioned device: [efi,] boot, root.
type Layout struct {
	Device string
	Mode   BootMode

	partitions []string
}

// PlanLayout derives the partition paths that will exist once
// NewPartitionTable(mode) has been written to device. It does not read the
// device.
func PlanLayout(device string, mode BootMode) Layout {
	roles := Roles(mode)
	partitions := make([]string, len(roles))
	for idx := range roles {
		partitions[idx] = PartitionName(device, idx+1)
	}
	return Layout{
		Device:     device,
		Mode:       mode,
		partitions: partitions,
	}
}

// Partitions returns a copy of the partition paths in on-disk order.
func (l Layout) Partitions() []string {
	return append([]string(nil), l.partitions...)
}

// Path returns the path of the partition with the given role. ok is false if
// the layout has no such partition, i.e. the EFI partition in legacy mode.
func (l Layout) Path(role Role) (string, bool) {
	for idx, r := range Roles(l.Mode) {
		if r == role {
			return l.partitions[idx], true
		}
	}
	return "", false
}

func (l Layout) Root() string {
	p, _ := l.Path(RoleRoot)
	return p
}

// WithRoot returns a copy of the layout whose root partition is replaced by
// device. All other entries are kept.
func (l Layout) WithRoot(device string) Layout {
	partitions := l.Partitions()
	partitions[len(partitions)-1] = device
	return Layout{
		Device:     l.Device,
		Mode:       l.Mode,
		partitions: partitions,
	}
}
