package plan

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crystal-linux/jade/internal/disk"
	"github.com/crystal-linux/jade/internal/install"
	"github.com/crystal-linux/jade/internal/provision"
)

func TestLoad(t *testing.T) {
	p, err := Load("testdata/auto-efi.toml")
	require.NoError(t, err)
	assert.Equal(t, PartitionPlan{
		Mode:       PartitionAuto,
		Device:     "/dev/sda",
		EFI:        true,
		Encrypt:    true,
		Passphrase: "correct horse battery staple",
	}, p.Partition)
	assert.Equal(t, "linux-zen", p.Kernel)
	assert.Equal(t, install.BootloaderOptions{
		Kind:   install.BootloaderGrubEFI,
		EFIDir: "/boot/efi",
	}, p.BootloaderOptions())
	assert.True(t, p.Timeshift)
	assert.True(t, p.Zram)
	assert.False(t, p.Flatpak)
	assert.True(t, p.Nix)

	p, err = Load("testdata/manual.toml")
	require.NoError(t, err)
	assert.Equal(t, PartitionManual, p.Partition.Mode)
	assert.Equal(t, install.BootloaderRefind, p.Bootloader.Type)
	specs := p.Specs().All()
	require.Len(t, specs, 3)
	assert.Equal(t, "/", specs[0].Mountpoint)
	assert.Equal(t, "/boot", specs[1].Mountpoint)
	assert.Equal(t, disk.FilesystemNone, specs[2].Filesystem)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load("testdata/unknown-key.toml")
	assert.ErrorContains(t, err, "partition.swap")

	_, err = Load("testdata/missing.toml")
	assert.True(t, errors.Is(err, os.ErrNotExist))

	bad := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[bootloader]\ntype = \"lilo\"\n"), 0600))
	_, err = Load(bad)
	assert.ErrorContains(t, err, "unknown bootloader")
}

func TestValidate(t *testing.T) {
	type testCase struct {
		plan   Plan
		errIs  error
		errMsg string
	}

	testCases := map[string]testCase{
		"auto-no-device": {
			plan:   Plan{},
			errMsg: "needs a device",
		},
		"auto-with-partitions": {
			plan: Plan{Partition: PartitionPlan{
				Device:     "/dev/sda",
				Partitions: []string{"/:/dev/sda1:btrfs"},
			}},
			errMsg: "only used with manual",
		},
		"auto-encrypt-no-passphrase": {
			plan:  Plan{Partition: PartitionPlan{Device: "/dev/sda", Encrypt: true}},
			errIs: provision.ErrEmptyPassphrase,
		},
		"manual-encrypt": {
			plan: Plan{Partition: PartitionPlan{
				Mode:       PartitionManual,
				Encrypt:    true,
				Passphrase: "secret",
				Partitions: []string{"/:/dev/sda1:btrfs"},
			}},
			errIs: provision.ErrEncryptionUnsupported,
		},
		"manual-empty": {
			plan:   Plan{Partition: PartitionPlan{Mode: PartitionManual}},
			errMsg: "at least one partition",
		},
		"manual-no-root": {
			plan: Plan{Partition: PartitionPlan{
				Mode:       PartitionManual,
				Partitions: []string{"/home:/dev/sdb1:ext4"},
			}},
			errIs: disk.ErrNoRootMountpoint,
		},
		"manual-unknown-fs": {
			plan: Plan{Partition: PartitionPlan{
				Mode:       PartitionManual,
				Partitions: []string{"/:/dev/sda1:zfs"},
			}},
			errIs: disk.ErrUnknownFilesystem,
		},
		"manual-duplicate": {
			plan: Plan{Partition: PartitionPlan{
				Mode:       PartitionManual,
				Partitions: []string{"/:/dev/sda1:btrfs", "/:/dev/sda2:ext4"},
			}},
			errIs: disk.ErrDuplicateMountpoint,
		},
		"grub-efi-no-efidir": {
			plan: Plan{
				Partition:  PartitionPlan{Device: "/dev/sda"},
				Bootloader: BootloaderPlan{Type: install.BootloaderGrubEFI},
			},
			errMsg: "needs an efidir",
		},
		"grub-legacy-no-device": {
			plan: Plan{
				Partition:  PartitionPlan{Device: "/dev/sda"},
				Bootloader: BootloaderPlan{Type: install.BootloaderGrubLegacy},
			},
			errMsg: "needs a device",
		},
		"refind-default-no-device": {
			plan: Plan{
				Partition:  PartitionPlan{Device: "/dev/sda"},
				Bootloader: BootloaderPlan{Type: install.BootloaderRefind, EFIDir: "/boot/efi", Default: true},
			},
			errMsg: "as default needs a device",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			err := tc.plan.Validate()
			require.Error(t, err)
			if tc.errIs != nil {
				assert.True(t, errors.Is(err, tc.errIs), err.Error())
			}
			if tc.errMsg != "" {
				assert.Contains(t, err.Error(), tc.errMsg)
			}
		})
	}
}

func TestPartitionModeString(t *testing.T) {
	assert.Equal(t, "auto", PartitionAuto.String())
	assert.Equal(t, "manual", PartitionManual.String())

	var m PartitionMode
	assert.NoError(t, m.UnmarshalText([]byte("manual")))
	assert.Equal(t, PartitionManual, m)
	assert.Error(t, m.UnmarshalText([]byte("lvm")))
}
