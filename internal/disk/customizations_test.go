package disk_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crystal-linux/jade/internal/disk"
	"github.com/crystal-linux/jade/internal/pathpolicy"
)

func mountpoints(specs disk.PartitionSpecs) []string {
	var mps []string
	for _, spec := range specs.All() {
		mps = append(mps, spec.Mountpoint)
	}
	return mps
}

func TestParsePartitionSpec(t *testing.T) {
	spec, err := disk.ParsePartitionSpec("/home:/dev/sda3:ext4")
	require.NoError(t, err)
	assert.Equal(t, disk.PartitionSpec{
		Mountpoint:  "/home",
		BlockDevice: "/dev/sda3",
		Filesystem:  disk.FilesystemExt4,
	}, spec)
	assert.Equal(t, "/home:/dev/sda3:ext4", spec.String())

	spec, err = disk.ParsePartitionSpec("/boot/efi:/dev/nvme0n1p1:don't format")
	require.NoError(t, err)
	assert.Equal(t, disk.FilesystemNone, spec.Filesystem)

	invalid := map[string]error{
		"/:/dev/sda1":           nil,
		"/:/dev/sda1:zfs":       disk.ErrUnknownFilesystem,
		"home:/dev/sda1:ext4":   nil,
		"/proc:/dev/sda1:ext4":  pathpolicy.ErrReservedMountpoint,
		"/home:sda1:ext4":       nil,
		"/home/../:/dev/a:ext4": nil,
	}
	for s, target := range invalid {
		_, err := disk.ParsePartitionSpec(s)
		assert.Error(t, err, s)
		if target != nil {
			assert.True(t, errors.Is(err, target), s)
		}
	}
}

func TestPartitionSpecsOrder(t *testing.T) {
	input := []disk.PartitionSpec{
		{Mountpoint: "/boot/efi", BlockDevice: "/dev/sda1", Filesystem: disk.FilesystemVFAT},
		{Mountpoint: "/home", BlockDevice: "/dev/sda4", Filesystem: disk.FilesystemExt4},
		{Mountpoint: "/", BlockDevice: "/dev/sda3", Filesystem: disk.FilesystemBtrfs},
		{Mountpoint: "/boot", BlockDevice: "/dev/sda2", Filesystem: disk.FilesystemExt4},
	}

	specs, err := disk.NewPartitionSpecs(input)
	require.NoError(t, err)
	assert.Equal(t, []string{"/", "/home", "/boot", "/boot/efi"}, mountpoints(specs))
	root, ok := specs.Root()
	require.True(t, ok)
	assert.Equal(t, "/dev/sda3", root.BlockDevice)

	// the input is not reordered
	assert.Equal(t, "/boot/efi", input[0].Mountpoint)

	// sorting a sorted snapshot is a no-op
	again, err := disk.NewPartitionSpecs(specs.All())
	require.NoError(t, err)
	assert.Equal(t, specs, again)

	// lengths never decrease
	all := specs.All()
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, len(all[i-1].Mountpoint), len(all[i].Mountpoint))
	}
}

func TestPartitionSpecsDuplicate(t *testing.T) {
	_, err := disk.NewPartitionSpecs([]disk.PartitionSpec{
		{Mountpoint: "/", BlockDevice: "/dev/sda2", Filesystem: disk.FilesystemBtrfs},
		{Mountpoint: "/", BlockDevice: "/dev/sda3", Filesystem: disk.FilesystemExt4},
	})
	assert.True(t, errors.Is(err, disk.ErrDuplicateMountpoint))
}

func TestPartitionSpecsInvalidKind(t *testing.T) {
	_, err := disk.NewPartitionSpecs([]disk.PartitionSpec{
		{Mountpoint: "/", BlockDevice: "/dev/sda2"},
	})
	assert.True(t, errors.Is(err, disk.ErrUnknownFilesystem))
}

func TestPartitionSpecsNeedRoot(t *testing.T) {
	testCases := map[string][]disk.PartitionSpec{
		"empty": nil,
		"home-only": {
			{Mountpoint: "/home", BlockDevice: "/dev/sdb1", Filesystem: disk.FilesystemExt4},
		},
		"boot-and-efi": {
			{Mountpoint: "/boot", BlockDevice: "/dev/sda2", Filesystem: disk.FilesystemExt4},
			{Mountpoint: "/boot/efi", BlockDevice: "/dev/sda1", Filesystem: disk.FilesystemVFAT},
		},
	}

	for name, input := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := disk.NewPartitionSpecs(input)
			assert.True(t, errors.Is(err, disk.ErrNoRootMountpoint), err)
		})
	}

	_, ok := disk.PartitionSpecs{}.Root()
	assert.False(t, ok)
}
