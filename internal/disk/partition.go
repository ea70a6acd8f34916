package disk

import "fmt"

// Role identifies what a partition of an automatic layout is used for.
type Role int

const (
	RoleEFI Role = iota
	RoleBoot
	RoleRoot
)

func (r Role) String() string {
	switch r {
	case RoleEFI:
		return "efi"
	case RoleBoot:
		return "boot"
	case RoleRoot:
		return "root"
	default:
		panic(fmt.Sprintf("unknown partition role %d", int(r)))
	}
}

// Label is the filesystem label given to the partition.
func (r Role) Label() string {
	switch r {
	case RoleEFI:
		return EFILabel
	case RoleBoot:
		return BootLabel
	default:
		return RootLabel
	}
}

// Filesystem is the filesystem created on a partition with this role.
func (r Role) Filesystem() FilesystemKind {
	switch r {
	case RoleEFI:
		return FilesystemVFAT
	case RoleBoot:
		return FilesystemExt4
	default:
		return FilesystemBtrfs
	}
}

// Roles returns the partition roles of mode in on-disk order.
func Roles(mode BootMode) []Role {
	if mode.IsEFI() {
		return []Role{RoleEFI, RoleBoot, RoleRoot}
	}
	return []Role{RoleBoot, RoleRoot}
}

type Partition struct {
	Role Role
	// Type is the parted file system type hint, e.g. fat32.
	Type  string
	Start uint64 // Start of the partition in bytes
	End   uint64 // End of the partition in bytes, 0 extends it to the end of the disk
	// Flag is set on the partition after it is created, e.g. esp.
	Flag string
}

func formatOffset(offset uint64) string {
	if offset%MiB != 0 {
		panic(fmt.Sprintf("programming error: offset %d is not MiB aligned", offset))
	}
	return fmt.Sprintf("%dMiB", offset/MiB)
}

// Bounds returns the start and end arguments for parted.
func (p Partition) Bounds() (string, string) {
	end := "100%"
	if p.End != 0 {
		end = formatOffset(p.End)
	}
	return formatOffset(p.Start), end
}
