package disk

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/crystal-linux/jade/internal/pathpolicy"
)

var (
	ErrDuplicateMountpoint = errors.New("duplicate mountpoint")
	ErrNoRootMountpoint    = errors.New("no partition is mounted at /")
)

// PartitionSpec is an operator supplied partition for manual mode. The
// mountpoint is relative to the target root.
type PartitionSpec struct {
	Mountpoint  string
	Filesystem  FilesystemKind
	BlockDevice string
}

// ParsePartitionSpec parses "mountpoint:blockdevice:filesystem".
func ParsePartitionSpec(s string) (PartitionSpec, error) {
	fields := strings.SplitN(s, ":", 3)
	if len(fields) != 3 {
		return PartitionSpec{}, fmt.Errorf("invalid partition %q, expected mountpoint:blockdevice:filesystem", s)
	}
	kind, err := ParseFilesystemKind(fields[2])
	if err != nil {
		return PartitionSpec{}, fmt.Errorf("partition %q: %w", s, err)
	}
	spec := PartitionSpec{
		Mountpoint:  fields[0],
		BlockDevice: fields[1],
		Filesystem:  kind,
	}
	if err := spec.Validate(); err != nil {
		return PartitionSpec{}, err
	}
	return spec, nil
}

func (ps PartitionSpec) Validate() error {
	if err := pathpolicy.Mountpoints.Check(ps.Mountpoint); err != nil {
		return err
	}
	if ps.BlockDevice == "" || ps.BlockDevice[0] != '/' {
		return fmt.Errorf("block device %q for %s must be an absolute path", ps.BlockDevice, ps.Mountpoint)
	}
	if !ps.Filesystem.Valid() {
		return fmt.Errorf("%w: %s for %s", ErrUnknownFilesystem, ps.Filesystem, ps.Mountpoint)
	}
	return nil
}

func (ps PartitionSpec) String() string {
	return fmt.Sprintf("%s:%s:%s", ps.Mountpoint, ps.BlockDevice, ps.Filesystem)
}

// PartitionSpecs is an immutable, validated snapshot of the manual
// partitions, ordered by mountpoint length so that a parent directory is
// always mounted before its children.
type PartitionSpecs struct {
	specs []PartitionSpec
}

// NewPartitionSpecs validates and sorts a copy of specs. Mountpoints must be
// unique and one of them must be /. Specs with mountpoints of equal length
// keep their input order.
func NewPartitionSpecs(specs []PartitionSpec) (PartitionSpecs, error) {
	seen := make(map[string]bool, len(specs))
	sorted := make([]PartitionSpec, 0, len(specs))
	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			return PartitionSpecs{}, err
		}
		if seen[spec.Mountpoint] {
			return PartitionSpecs{}, fmt.Errorf("%w: %s", ErrDuplicateMountpoint, spec.Mountpoint)
		}
		seen[spec.Mountpoint] = true
		sorted = append(sorted, spec)
	}
	if !seen["/"] {
		return PartitionSpecs{}, ErrNoRootMountpoint
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Mountpoint) < len(sorted[j].Mountpoint)
	})
	return PartitionSpecs{specs: sorted}, nil
}

// Root returns the spec mounted at /. ok is false for the zero value.
func (ps PartitionSpecs) Root() (spec PartitionSpec, ok bool) {
	if len(ps.specs) == 0 || ps.specs[0].Mountpoint != "/" {
		return PartitionSpec{}, false
	}
	return ps.specs[0], true
}

// All returns a copy of the ordered specs.
func (ps PartitionSpecs) All() []PartitionSpec {
	return append([]PartitionSpec(nil), ps.specs...)
}
