// Package install installs the operating system into a mounted target tree.
//
// Every operation takes a *provision.Mounted, so nothing here can run before
// the tree has been assembled.
package install

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/crystal-linux/jade/internal/fsnode"
	"github.com/crystal-linux/jade/internal/provision"
	"github.com/crystal-linux/jade/internal/runner"
)

const (
	DefaultPacstrapCommand = "pacstrap"
	DefaultHostPacmanConf  = "/etc/pacman.conf"
	DefaultTheme           = "/usr/share/grub/themes/crystal/theme.txt"
)

var DefaultServices = []string{"bluetooth", "cups"}

var (
	ErrMissingDirectory = errors.New("directory does not exist")

	// ErrBootModeMismatch is returned when an EFI bootloader is requested
	// for a tree provisioned without an EFI system partition.
	ErrBootModeMismatch = errors.New("bootloader does not match the boot mode of the target")
)

type Installer struct {
	Runner runner.Runner
	Files  *fsnode.Writer

	// PacstrapCommand installs packages into a root: <cmd> <root> <pkgs...>.
	PacstrapCommand string

	// HostPacmanConf is copied into the target after the base install.
	HostPacmanConf string

	// EncryptionScript is the script staged by the encryption step. It is
	// run when GRUB is configured for an encrypted root.
	EncryptionScript string

	// BasePackages is the base package set. The kernel and its headers are
	// inserted after the first entry.
	BasePackages []string

	// Services are enabled in the target after the base install.
	Services []string

	// Theme is the GRUB theme file inside the target.
	Theme string

	Logger *logrus.Entry
}

// New returns an Installer with the default commands and paths.
func New(r runner.Runner, files *fsnode.Writer, logger *logrus.Entry) *Installer {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Installer{
		Runner:           r,
		Files:            files,
		PacstrapCommand:  DefaultPacstrapCommand,
		HostPacmanConf:   DefaultHostPacmanConf,
		EncryptionScript: provision.DefaultEncryptionScript,
		Services:         DefaultServices,
		Theme:            DefaultTheme,
		Logger:           logger,
	}
}

func (i *Installer) logger() *logrus.Entry {
	if i.Logger == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return i.Logger
}

func (i *Installer) chroot(m *provision.Mounted, name string, args ...string) runner.Command {
	return runner.New(name, args...).Chroot(m.Root())
}

// InstallPackages installs pkgs into the target tree.
func (i *Installer) InstallPackages(m *provision.Mounted, pkgs ...string) error {
	if len(pkgs) == 0 {
		return nil
	}
	pacstrap := i.PacstrapCommand
	if pacstrap == "" {
		pacstrap = DefaultPacstrapCommand
	}
	args := append([]string{m.Root()}, pkgs...)
	cmd := runner.New(pacstrap, args...).Describe("install packages %v", pkgs)
	return i.Runner.Run(cmd)
}

// BasePackageList returns the packages of a base install with kernel: the
// first base package, the kernel, its headers, then the rest.
func (i *Installer) BasePackageList(kernel KernelFlavor) ([]string, error) {
	if len(i.BasePackages) == 0 {
		return nil, fmt.Errorf("no base packages configured")
	}
	pkgs := make([]string, 0, len(i.BasePackages)+2)
	pkgs = append(pkgs, i.BasePackages[0], kernel.String(), kernel.Headers())
	return append(pkgs, i.BasePackages[1:]...), nil
}

// InstallBase installs the base system, copies the host's pacman
// configuration into it and enables the configured services.
func (i *Installer) InstallBase(m *provision.Mounted, kernel KernelFlavor) error {
	pkgs, err := i.BasePackageList(kernel)
	if err != nil {
		return err
	}
	if err := i.Files.CreateDirectory(m.Path("/etc")); err != nil {
		return err
	}
	i.logger().Infof("installing base system with kernel %s", kernel)
	if err := i.InstallPackages(m, pkgs...); err != nil {
		return err
	}

	hostConf := i.HostPacmanConf
	if hostConf == "" {
		hostConf = DefaultHostPacmanConf
	}
	if err := i.Files.CopyFile(hostConf, m.Path("/etc/pacman.conf")); err != nil {
		return err
	}

	for _, svc := range i.Services {
		cmd := i.chroot(m, "systemctl", "enable", svc).Describe("enable %s", svc)
		if err := i.Runner.Run(cmd); err != nil {
			return err
		}
	}
	return nil
}

// GenFstab appends the fstab of the mounted tree, by UUID, to its
// /etc/fstab.
func (i *Installer) GenFstab(m *provision.Mounted) error {
	cmd := runner.New("genfstab", "-U", m.Root()).Describe("generate fstab")
	out, err := i.Runner.Output(cmd)
	if err != nil {
		return err
	}
	return i.Files.AppendText(m.Path("/etc/fstab"), out)
}

// SetupTimeshift installs btrfs snapshot tooling. The GRUB integration is
// only installed when bootloader is a GRUB strategy.
func (i *Installer) SetupTimeshift(m *provision.Mounted, bootloader Bootloader) error {
	pkgs := []string{"timeshift", "timeshift-autosnap"}
	if bootloader.IsGrub() {
		pkgs = append(pkgs, "grub-btrfs")
	}
	if err := i.InstallPackages(m, pkgs...); err != nil {
		return err
	}
	return i.Runner.Run(i.chroot(m, "timeshift", "--btrfs").Describe("setup timeshift"))
}

// Zram installs zram-generator with a single zram device.
func (i *Installer) Zram(m *provision.Mounted) error {
	if err := i.InstallPackages(m, "zram-generator"); err != nil {
		return err
	}
	conf := m.Path("/etc/systemd/zram-generator.conf")
	if err := i.Files.CreateDirectory(m.Path("/etc/systemd")); err != nil {
		return err
	}
	if err := i.Files.CreateFile(conf); err != nil {
		return err
	}
	return i.Files.AppendLine(conf, "[zram0]")
}

// Flatpak installs flatpak and adds the flathub remote.
func (i *Installer) Flatpak(m *provision.Mounted) error {
	if err := i.InstallPackages(m, "flatpak"); err != nil {
		return err
	}
	cmd := i.chroot(m, "flatpak", "remote-add", "--if-not-exists", "flathub",
		"https://flathub.org/repo/flathub.flatpakrepo").Describe("add flathub remote")
	return i.Runner.Run(cmd)
}

// Nix installs the nix package manager, the prerequisite of home-manager.
func (i *Installer) Nix(m *provision.Mounted) error {
	return i.InstallPackages(m, "nix")
}
