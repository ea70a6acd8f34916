// Package disk describes the storage layout jade provisions.
//
// Nothing in this package touches a device. It derives partition paths,
// partition table geometry, filesystem creation arguments and mount options
// that the provision package then executes, so that the naming used by every
// later stage is kept in lock-step with what the partition table writer
// creates.
package disk

import (
	"fmt"
	"path"
)

const (
	KiB = 1024
	MiB = 1024 * KiB
)

// Filesystem labels of an automatically partitioned disk. Later stages find
// the filesystems by label, not by partition path.
const (
	EFILabel  = "crystal-efi"
	BootLabel = "crystal-boot"
	RootLabel = "crystal-root"
)

const byLabelDir = "/dev/disk/by-label"

// ByLabel returns the udev path of the filesystem with the given label.
func ByLabel(label string) string {
	return path.Join(byLabelDir, label)
}

// BootMode selects the firmware interface the installed system boots with.
type BootMode int

const (
	BootModeLegacy BootMode = iota
	BootModeEFI
)

// BootModeFromEFI maps the operator's EFI flag to a BootMode.
func BootModeFromEFI(efi bool) BootMode {
	if efi {
		return BootModeEFI
	}
	return BootModeLegacy
}

func (m BootMode) String() string {
	switch m {
	case BootModeLegacy:
		return "legacy"
	case BootModeEFI:
		return "efi"
	default:
		panic(fmt.Sprintf("unknown boot mode %d", int(m)))
	}
}

// IsEFI returns true if the mode requires an EFI system partition.
func (m BootMode) IsEFI() bool {
	return m == BootModeEFI
}

// PartitionTableType is the parted label type for the mode.
func (m BootMode) PartitionTableType() string {
	if m.IsEFI() {
		return "gpt"
	}
	return "msdos"
}
