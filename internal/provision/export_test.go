package provision

import (
	"golang.org/x/sys/unix"

	"github.com/crystal-linux/jade/internal/disk"
)

// MockStatDevice replaces the device lookup and returns a restore function.
func MockStatDevice(f func(path string, st *unix.Stat_t) error) (restore func()) {
	saved := statDevice
	statDevice = f
	return func() {
		statDevice = saved
	}
}

// BlockDevice pretends every device exists and is a block device.
func BlockDevice(path string, st *unix.Stat_t) error {
	st.Mode = unix.S_IFBLK | 0660
	return nil
}

func (pt *Partitioned) Layout() disk.Layout {
	return pt.layout
}

func (pt *Partitioned) Encrypted() bool {
	return pt.luks != nil
}

func (pt *Partitioned) LUKS() *disk.LUKSContainer {
	return pt.luks
}
