package disk

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownFilesystem = errors.New("unknown filesystem")

// FilesystemKind is the closed set of filesystems jade can create.
type FilesystemKind int

const (
	filesystemInvalid FilesystemKind = iota
	// FilesystemNone leaves the partition as it is.
	FilesystemNone
	FilesystemVFAT
	FilesystemBFS
	FilesystemCramfs
	FilesystemExt2
	FilesystemExt3
	FilesystemExt4
	FilesystemFAT
	FilesystemMSDOS
	FilesystemXFS
	FilesystemBtrfs
	FilesystemMinix
	FilesystemF2FS
)

var filesystemNames = map[FilesystemKind]string{
	FilesystemNone:   "noformat",
	FilesystemVFAT:   "vfat",
	FilesystemBFS:    "bfs",
	FilesystemCramfs: "cramfs",
	FilesystemExt2:   "ext2",
	FilesystemExt3:   "ext3",
	FilesystemExt4:   "ext4",
	FilesystemFAT:    "fat",
	FilesystemMSDOS:  "msdos",
	FilesystemXFS:    "xfs",
	FilesystemBtrfs:  "btrfs",
	FilesystemMinix:  "minix",
	FilesystemF2FS:   "f2fs",
}

// ParseFilesystemKind maps an operator supplied filesystem name to its kind.
// Both "noformat" and "don't format" select FilesystemNone.
func ParseFilesystemKind(name string) (FilesystemKind, error) {
	name = strings.TrimSpace(name)
	if name == "don't format" {
		return FilesystemNone, nil
	}
	for kind, n := range filesystemNames {
		if n == name {
			return kind, nil
		}
	}
	return filesystemInvalid, fmt.Errorf("%w: %q", ErrUnknownFilesystem, name)
}

func (k FilesystemKind) String() string {
	if name, ok := filesystemNames[k]; ok {
		return name
	}
	return fmt.Sprintf("FilesystemKind(%d)", int(k))
}

// Valid returns true if k is one of the declared kinds.
func (k FilesystemKind) Valid() bool {
	_, ok := filesystemNames[k]
	return ok
}

// Formats returns false for FilesystemNone.
func (k FilesystemKind) Formats() bool {
	return k.Valid() && k != FilesystemNone
}

// Mkfs describes how a filesystem is created on a device.
type Mkfs struct {
	Kind  FilesystemKind
	Label string
	// Force overwrites an existing filesystem signature without asking.
	// btrfs is always forced.
	Force bool
}

// Command returns the executable and arguments that create the filesystem on
// device. ok is false for FilesystemNone.
func (m Mkfs) Command(device string) (name string, args []string, ok bool) {
	if !m.Kind.Formats() {
		return "", nil, false
	}
	name = "mkfs." + m.Kind.String()
	switch m.Kind {
	case FilesystemVFAT:
		args = []string{"-F32"}
		if m.Label != "" {
			args = append(args, "-n", m.Label)
		}
	case FilesystemExt2, FilesystemExt3, FilesystemExt4:
		if m.Force {
			args = append(args, "-F")
		}
		if m.Label != "" {
			args = append(args, "-L", m.Label)
		}
	case FilesystemBtrfs:
		args = []string{"-f"}
		if m.Label != "" {
			args = append(args, "-L", m.Label)
		}
	case FilesystemXFS:
		if m.Force {
			args = append(args, "-f")
		}
		if m.Label != "" {
			args = append(args, "-L", m.Label)
		}
	case FilesystemF2FS:
		if m.Force {
			args = append(args, "-f")
		}
		if m.Label != "" {
			args = append(args, "-l", m.Label)
		}
	}
	return name, append(args, device), true
}

func (m Mkfs) String() string {
	if m.Label == "" {
		return m.Kind.String()
	}
	return fmt.Sprintf("%s with label %s", m.Kind, m.Label)
}
