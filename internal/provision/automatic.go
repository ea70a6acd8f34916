package provision

import (
	"fmt"

	"github.com/crystal-linux/jade/internal/disk"
	"github.com/crystal-linux/jade/internal/runner"
)

// Unpartitioned is a device that exists and has been planned but not yet
// written to.
type Unpartitioned struct {
	p      *Provisioner
	device string
	mode   disk.BootMode
	table  disk.PartitionTable
	layout disk.Layout
	used   bool
}

// Begin checks that device exists and plans its automatic layout. Nothing is
// written.
func (p *Provisioner) Begin(device string, mode disk.BootMode) (*Unpartitioned, error) {
	if err := p.CheckDevice(device); err != nil {
		return nil, err
	}
	return &Unpartitioned{
		p:      p,
		device: device,
		mode:   mode,
		table:  disk.NewPartitionTable(mode),
		layout: disk.PlanLayout(device, mode),
	}, nil
}

// Partition writes the partition table. This destroys any data on the
// device.
func (u *Unpartitioned) Partition() (*Partitioned, error) {
	if u.used {
		return nil, fmt.Errorf("%w: %s is already partitioned", ErrStageUsed, u.device)
	}
	u.used = true

	if err := u.p.removeEncryptionScript(); err != nil {
		return nil, err
	}
	u.p.logger().Infof("partitioning %s for %s boot", u.device, u.mode)
	for _, step := range u.table.PartedSteps(u.device) {
		cmd := runner.New("parted", step.Args...).Describe("%s", step.Description)
		if err := u.p.run(cmd); err != nil {
			return nil, err
		}
	}
	return &Partitioned{
		p:      u.p,
		mode:   u.mode,
		layout: u.layout,
	}, nil
}

// Partitioned is a device with a written partition table and, optionally, an
// opened encrypted root.
type Partitioned struct {
	p      *Provisioner
	mode   disk.BootMode
	layout disk.Layout
	luks   *disk.LUKSContainer
	used   bool
}

// Encrypt formats the root partition as a LUKS volume, opens it, checks that
// it can be closed and opened again, and stages the script that points the
// bootloader configuration at the volume's UUID.
func (pt *Partitioned) Encrypt(passphrase string) (*Partitioned, error) {
	if pt.luks != nil {
		return nil, fmt.Errorf("root partition is already encrypted")
	}
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}
	if pt.used {
		return nil, fmt.Errorf("%w: the partitions were already encrypted or formatted", ErrStageUsed)
	}
	pt.used = true

	lc := disk.NewLUKSContainer(pt.layout.Root())
	if err := lc.GenUUID(pt.p.Rand); err != nil {
		return nil, fmt.Errorf("cannot generate LUKS UUID: %w", err)
	}

	key := []byte(passphrase)
	format := runner.New("cryptsetup", lc.FormatArgs()...).Describe("format %s as LUKS volume", lc.Device)
	format.Stdin = key
	open := runner.New("cryptsetup", lc.OpenArgs()...).Describe("open %s as %s", lc.Device, lc.Name)
	open.Stdin = key
	cmds := []runner.Command{
		format,
		open,
		runner.New("cryptsetup", lc.CloseArgs()...).Describe("close %s", lc.Name),
		open.Describe("reopen %s as %s", lc.Device, lc.Name),
	}
	for _, cmd := range cmds {
		if err := pt.p.run(cmd); err != nil {
			return nil, err
		}
	}

	if err := pt.p.stageEncryptionScript(lc); err != nil {
		return nil, err
	}

	return &Partitioned{
		p:      pt.p,
		mode:   pt.mode,
		layout: pt.layout.WithRoot(lc.MappedDevice()),
		luks:   lc,
	}, nil
}

// EncryptionScript returns the lines of the script that replaces the empty
// cryptdevice placeholder in the target's GRUB defaults with the volume UUID.
// Other UUID= entries of the file are left alone.
func EncryptionScript(root, uuid string) []string {
	return []string{
		"#!/bin/bash",
		"UUID=" + uuid,
		fmt.Sprintf(`sed -i "s/cryptdevice=UUID=:/cryptdevice=UUID=${UUID}:/" %s/etc/default/grub`, root),
	}
}

func (p *Provisioner) stageEncryptionScript(lc *disk.LUKSContainer) error {
	script := p.encryptionScript()
	if err := p.Files.CreateFile(script); err != nil {
		return err
	}
	for _, line := range EncryptionScript(p.root(), lc.UUID) {
		if err := p.Files.AppendLine(script, line); err != nil {
			return err
		}
	}
	return nil
}

// Format creates the filesystem of every partition of the layout.
func (pt *Partitioned) Format() (*Formatted, error) {
	if pt.used {
		return nil, fmt.Errorf("%w: the partitions were already encrypted or formatted", ErrStageUsed)
	}
	pt.used = true

	for _, role := range disk.Roles(pt.mode) {
		device, _ := pt.layout.Path(role)
		mkfs := disk.Mkfs{
			Kind:  role.Filesystem(),
			Label: role.Label(),
			Force: true,
		}
		name, args, _ := mkfs.Command(device)
		cmd := runner.New(name, args...).Describe("format %s partition %s as %s", role, device, mkfs)
		if err := pt.p.run(cmd); err != nil {
			return nil, err
		}
	}
	f := &Formatted{
		p:    pt.p,
		mode: pt.mode,
	}
	if pt.luks != nil {
		f.luksUUID = pt.luks.UUID
	}
	return f, nil
}

type labelMount struct {
	label      string
	mountpoint string
}

// Formatted is an automatically partitioned device whose filesystems exist.
type Formatted struct {
	p        *Provisioner
	mode     disk.BootMode
	luksUUID string
	used     bool
}

// rootDevice is the device holding the root btrfs filesystem.
func (f *Formatted) rootDevice() string {
	if f.luksUUID != "" {
		return disk.MappedDevice
	}
	return disk.ByLabel(disk.RootLabel)
}

// Mount assembles the target tree: the root filesystem is mounted once to
// create the subvolumes, then remounted with @ selected, followed by /home,
// /boot and, in EFI mode, /boot/efi.
func (f *Formatted) Mount() (*Mounted, error) {
	if f.used {
		return nil, fmt.Errorf("%w: the target tree was already mounted", ErrStageUsed)
	}
	f.used = true

	p := f.p
	root := p.root()
	rootDev := f.rootDevice()
	fs := disk.NewRootBtrfs()

	if err := p.run(mountCommand(rootDev, root, "")); err != nil {
		return nil, err
	}
	for _, sv := range fs.Subvolumes {
		cmd := runner.New("btrfs", "subvolume", "create", sv.Name).
			InDir(root).
			Describe("create btrfs subvolume %s", sv.Name)
		if err := p.run(cmd); err != nil {
			return nil, err
		}
	}
	if err := p.run(umountCommand(root)); err != nil {
		return nil, err
	}

	// subvolumes are mounted in the order they are declared, / first
	for _, sv := range fs.Subvolumes {
		target := p.target(sv.Mountpoint)
		if sv.Mountpoint != "/" {
			if err := p.Files.CreateDirectory(target); err != nil {
				return nil, err
			}
		}
		if err := p.run(mountCommand(rootDev, target, sv.MountOptions())); err != nil {
			return nil, err
		}
	}

	mounts := []labelMount{
		{disk.BootLabel, "/boot"},
	}
	if f.mode.IsEFI() {
		mounts = append(mounts, labelMount{disk.EFILabel, "/boot/efi"})
	}
	for _, m := range mounts {
		target := p.target(m.mountpoint)
		if err := p.Files.CreateDirectory(target); err != nil {
			return nil, err
		}
		if err := p.run(mountCommand(disk.ByLabel(m.label), target, "")); err != nil {
			return nil, err
		}
	}

	p.logger().Infof("target tree mounted at %s", root)
	return &Mounted{
		root:     root,
		mode:     &f.mode,
		luksUUID: f.luksUUID,
	}, nil
}
