package main

import (
	"fmt"
	"os"
	"path"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"

	"github.com/crystal-linux/jade/internal/install"
	"github.com/crystal-linux/jade/internal/provision"
	"github.com/crystal-linux/jade/internal/runner"
)

const defaultConfigFile = "/etc/jade/jade.toml"

var defaultBasePackages = []string{
	"base",
	"linux-firmware",
	"systemd-sysvcompat",
	"networkmanager",
	"man-db",
	"man-pages",
	"texinfo",
	"nano",
	"sudo",
	"curl",
	"archlinux-keyring",
	"btrfs-progs",
	"which",
	"base-devel",
	"bluez",
	"bluez-utils",
	"cups",
}

type jadeConfig struct {
	// MountRoot is where the target tree is assembled.
	MountRoot        string `toml:"mount_root"`
	EncryptionScript string `toml:"encryption_script"`
	HostPacmanConf   string `toml:"host_pacman_conf"`
	ChrootCommand    string `toml:"chroot_command"`
	PacstrapCommand  string `toml:"pacstrap_command"`
	// log commands instead of running them
	DryRun       bool     `toml:"dry_run"`
	BasePackages []string `toml:"base_packages"`
	Services     []string `toml:"services"`
	Theme        string   `toml:"theme"`
}

func parseConfig(file string) (*jadeConfig, error) {
	// set defaults
	config := jadeConfig{
		MountRoot:        provision.DefaultRoot,
		EncryptionScript: provision.DefaultEncryptionScript,
		HostPacmanConf:   install.DefaultHostPacmanConf,
		ChrootCommand:    runner.DefaultChrootCommand,
		PacstrapCommand:  install.DefaultPacstrapCommand,
		BasePackages:     defaultBasePackages,
		Services:         install.DefaultServices,
		Theme:            install.DefaultTheme,
	}

	md, err := toml.DecodeFile(file, &config)
	if err != nil {
		// Return error only when we failed to decode the file.
		// A non-existing config isn't an error, use defaults in this case.
		if !os.IsNotExist(err) {
			return nil, err
		}

		logrus.Info("Configuration file not found, using defaults")
	} else if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown keys in %s: %v", file, undecoded)
	}

	if !path.IsAbs(config.MountRoot) {
		return nil, fmt.Errorf("mount_root needs to be an absolute path. Got: %s", config.MountRoot)
	}
	config.MountRoot = path.Clean(config.MountRoot)
	if config.MountRoot == "/" {
		return nil, fmt.Errorf("mount_root must not be the host root")
	}
	if !path.IsAbs(config.EncryptionScript) {
		return nil, fmt.Errorf("encryption_script needs to be an absolute path. Got: %s", config.EncryptionScript)
	}
	if len(config.BasePackages) == 0 {
		return nil, fmt.Errorf("base_packages must not be empty")
	}

	return &config, nil
}
