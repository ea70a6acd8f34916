package install

import (
	"fmt"
	"path"

	"github.com/crystal-linux/jade/internal/disk"
	"github.com/crystal-linux/jade/internal/fsnode"
	"github.com/crystal-linux/jade/internal/provision"
	"github.com/crystal-linux/jade/internal/runner"
)

const (
	grubDefaults   = "/etc/default/grub"
	grubConfig     = "/boot/grub/grub.cfg"
	refindLinuxCfg = "/boot/refind_linux.conf"

	// The UUID is filled in by the encryption script.
	grubCryptCmdline = `GRUB_CMDLINE_LINUX="cryptdevice=UUID=:root root=/dev/mapper/root"`
)

var (
	grubEFIPackages    = []string{"grub", "efibootmgr", "crystal-grub-theme", "os-prober", "crystal-branding"}
	grubLegacyPackages = []string{"grub", "crystal-grub-theme", "os-prober", "crystal-branding"}
	refindPackages     = []string{"refind"}
)

// InstallBootloader installs the strategy selected by opts.
func (i *Installer) InstallBootloader(m *provision.Mounted, opts BootloaderOptions) error {
	if mode, ok := m.BootMode(); ok && !mode.IsEFI() && opts.Kind.NeedsEFI() {
		return fmt.Errorf("%w: %s needs an EFI system partition, the target was partitioned for %s boot",
			ErrBootModeMismatch, opts.Kind, mode)
	}
	switch opts.Kind {
	case BootloaderGrubEFI:
		return i.InstallGrubEFI(m, opts.EFIDir)
	case BootloaderGrubLegacy:
		return i.InstallGrubLegacy(m, opts.Device)
	case BootloaderRefind:
		return i.InstallRefind(m, opts.EFIDir, opts.Default, opts.Device)
	case BootloaderNone:
		return nil
	default:
		return fmt.Errorf("unknown bootloader %s", opts.Kind)
	}
}

// checkEFIDir returns the canonical efidir if it is a directory in the
// mounted tree.
func checkEFIDir(m *provision.Mounted, efidir string) (string, error) {
	if efidir == "" || efidir[0] != '/' {
		return "", fmt.Errorf("EFI directory %q must be an absolute path inside the target", efidir)
	}
	efidir = path.Clean(efidir)
	if !fsnode.IsDir(m.Path(efidir)) {
		return "", fmt.Errorf("%w: the efidir %s", ErrMissingDirectory, m.Path(efidir))
	}
	return efidir, nil
}

func checkDevice(device string) error {
	if device == "" || !fsnode.Exists(device) {
		return fmt.Errorf("%w: %q", provision.ErrDeviceNotFound, device)
	}
	return nil
}

// InstallGrubEFI installs GRUB to the EFI system partition mounted at efidir
// inside the target, both to the removable media path and as a boot entry.
func (i *Installer) InstallGrubEFI(m *provision.Mounted, efidir string) error {
	efidir, err := checkEFIDir(m, efidir)
	if err != nil {
		return err
	}
	if err := i.InstallPackages(m, grubEFIPackages...); err != nil {
		return err
	}

	args := []string{"--target=x86_64-efi", "--efi-directory=" + efidir, "--bootloader-id=crystal"}
	removable := i.chroot(m, "grub-install", append(args, "--removable")...).
		Describe("install grub as efi with --removable")
	if err := i.Runner.Run(removable); err != nil {
		return err
	}
	if err := i.Runner.Run(i.chroot(m, "grub-install", args...).Describe("install grub as efi without --removable")); err != nil {
		return err
	}
	return i.configureGrub(m)
}

// InstallGrubLegacy writes GRUB's BIOS boot code to device.
func (i *Installer) InstallGrubLegacy(m *provision.Mounted, device string) error {
	if err := checkDevice(device); err != nil {
		return err
	}
	if err := i.InstallPackages(m, grubLegacyPackages...); err != nil {
		return err
	}
	cmd := i.chroot(m, "grub-install", "--target=i386-pc", device).Describe("install grub as legacy")
	if err := i.Runner.Run(cmd); err != nil {
		return err
	}
	return i.configureGrub(m)
}

// configureGrub enables the theme, prepares the encrypted root if the tree
// has one and generates grub.cfg.
func (i *Installer) configureGrub(m *provision.Mounted) error {
	defaults := m.Path(grubDefaults)
	theme := i.Theme
	if theme == "" {
		theme = DefaultTheme
	}
	if err := i.Files.AppendLine(defaults, fmt.Sprintf("GRUB_THEME=%q", theme)); err != nil {
		return err
	}

	if m.Encrypted() {
		script := i.EncryptionScript
		if script == "" {
			script = provision.DefaultEncryptionScript
		}
		i.logger().Info("configuring grub for the encrypted root")
		if err := i.Files.AppendLine(defaults, grubCryptCmdline); err != nil {
			return err
		}
		if err := i.Runner.Run(runner.New("bash", script).Describe("set LUKS UUID in grub defaults")); err != nil {
			return err
		}
	}

	return i.Runner.Run(i.chroot(m, "grub-mkconfig", "-o", grubConfig).Describe("create grub.cfg"))
}

// InstallRefind installs rEFInd to the EFI system partition mounted at
// efidir. With useDefault it is installed to the fallback filename of the
// ESP on device.
func (i *Installer) InstallRefind(m *provision.Mounted, efidir string, useDefault bool, device string) error {
	if _, err := checkEFIDir(m, efidir); err != nil {
		return err
	}
	if useDefault {
		if err := checkDevice(device); err != nil {
			return err
		}
	}
	options := refindOptions(m)
	if err := i.InstallPackages(m, refindPackages...); err != nil {
		return err
	}
	var args []string
	if useDefault {
		args = []string{"--usedefault", device}
	}
	if err := i.Runner.Run(i.chroot(m, "refind-install", args...).Describe("install refind")); err != nil {
		return err
	}

	conf := m.Path(refindLinuxCfg)
	if err := i.Files.CreateFile(conf); err != nil {
		return err
	}
	return i.Files.AppendLine(conf, fmt.Sprintf("%q %q", "Boot with standard options", options))
}

// refindOptions returns the kernel command line rEFInd boots with.
func refindOptions(m *provision.Mounted) string {
	options := "rw rootflags=subvol=@"
	if !m.Encrypted() {
		return fmt.Sprintf("root=LABEL=%s %s", disk.RootLabel, options)
	}
	return fmt.Sprintf("cryptdevice=UUID=%s:%s root=%s %s", m.LUKSUUID(), disk.MappedName, disk.MappedDevice, options)
}
