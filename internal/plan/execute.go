package plan

import (
	"github.com/sirupsen/logrus"

	"github.com/crystal-linux/jade/internal/disk"
	"github.com/crystal-linux/jade/internal/install"
	"github.com/crystal-linux/jade/internal/provision"
)

// Executor runs a validated plan from an empty device to an installed system.
type Executor struct {
	Provisioner *provision.Provisioner
	Installer   *install.Installer
	Logger      *logrus.Entry
}

func (e *Executor) logger() *logrus.Entry {
	if e.Logger == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return e.Logger
}

// Execute runs every stage of the plan in order and stops at the first
// error.
func (e *Executor) Execute(p *Plan) error {
	logger := e.logger()

	m, err := e.Provision(p)
	if err != nil {
		return err
	}

	kernel := install.KernelFlavorOrDefault(p.Kernel, logger)
	if err := e.Installer.InstallBase(m, kernel); err != nil {
		return err
	}
	if err := e.Installer.GenFstab(m); err != nil {
		return err
	}
	if err := e.Installer.InstallBootloader(m, p.BootloaderOptions()); err != nil {
		return err
	}

	extras := []struct {
		enabled bool
		name    string
		run     func(*provision.Mounted) error
	}{
		{p.Timeshift, "timeshift", func(m *provision.Mounted) error {
			return e.Installer.SetupTimeshift(m, p.Bootloader.Type)
		}},
		{p.Zram, "zram", e.Installer.Zram},
		{p.Flatpak, "flatpak", e.Installer.Flatpak},
		{p.Nix, "nix", e.Installer.Nix},
	}
	for _, extra := range extras {
		if !extra.enabled {
			continue
		}
		logger.Infof("setting up %s", extra.name)
		if err := extra.run(m); err != nil {
			return err
		}
	}

	logger.Info("installation finished")
	return nil
}

// Provision runs the partitioning part of the plan and returns the mounted
// target tree.
func (e *Executor) Provision(p *Plan) (*provision.Mounted, error) {
	part := p.Partition
	if part.Mode == PartitionManual {
		return e.Provisioner.Manual(p.Specs())
	}

	u, err := e.Provisioner.Begin(part.Device, disk.BootModeFromEFI(part.EFI))
	if err != nil {
		return nil, err
	}
	pt, err := u.Partition()
	if err != nil {
		return nil, err
	}
	if part.Encrypt {
		pt, err = pt.Encrypt(part.Passphrase)
		if err != nil {
			return nil, err
		}
	}
	f, err := pt.Format()
	if err != nil {
		return nil, err
	}
	return f.Mount()
}
