package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigDefaults(t *testing.T) {
	config, err := parseConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, &jadeConfig{
		MountRoot:        "/mnt",
		EncryptionScript: "/tmp/encryption.sh",
		HostPacmanConf:   "/etc/pacman.conf",
		ChrootCommand:    "arch-chroot",
		PacstrapCommand:  "pacstrap",
		BasePackages:     defaultBasePackages,
		Services:         []string{"bluetooth", "cups"},
		Theme:            "/usr/share/grub/themes/crystal/theme.txt",
	}, config)
}

func TestParseConfig(t *testing.T) {
	config, err := parseConfig("testdata/jade.toml")
	require.NoError(t, err)

	assert.Equal(t, "/target", config.MountRoot)
	assert.Equal(t, "/run/jade/encryption.sh", config.EncryptionScript)
	assert.Equal(t, "systemd-nspawn-chroot", config.ChrootCommand)
	assert.Equal(t, "pacstrap", config.PacstrapCommand)
	assert.True(t, config.DryRun)
	assert.Equal(t, []string{"base", "linux-firmware", "crystal-core"}, config.BasePackages)
	assert.Equal(t, []string{"NetworkManager"}, config.Services)
}

func TestParseConfigErrors(t *testing.T) {
	_, err := parseConfig("testdata/relative-root.toml")
	assert.ErrorContains(t, err, "mount_root needs to be an absolute path")

	_, err = parseConfig("testdata/unknown-key.toml")
	assert.ErrorContains(t, err, "mirrorlist")

	hostRoot := filepath.Join(t.TempDir(), "host-root.toml")
	require.NoError(t, os.WriteFile(hostRoot, []byte("mount_root = \"/\"\n"), 0600))
	_, err = parseConfig(hostRoot)
	assert.ErrorContains(t, err, "host root")

	noPackages := filepath.Join(t.TempDir(), "no-packages.toml")
	require.NoError(t, os.WriteFile(noPackages, []byte("base_packages = []\n"), 0600))
	_, err = parseConfig(noPackages)
	assert.ErrorContains(t, err, "base_packages must not be empty")

	invalid := filepath.Join(t.TempDir(), "invalid.toml")
	require.NoError(t, os.WriteFile(invalid, []byte("mount_root = \n"), 0600))
	_, err = parseConfig(invalid)
	assert.Error(t, err)
}
