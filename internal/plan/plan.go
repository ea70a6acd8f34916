// Package plan runs a complete installation described by a TOML file.
package plan

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/crystal-linux/jade/internal/disk"
	"github.com/crystal-linux/jade/internal/install"
	"github.com/crystal-linux/jade/internal/provision"
)

type PartitionMode int

const (
	PartitionAuto PartitionMode = iota
	PartitionManual
)

func (m PartitionMode) String() string {
	switch m {
	case PartitionAuto:
		return "auto"
	case PartitionManual:
		return "manual"
	default:
		panic(fmt.Sprintf("unknown partition mode %d", int(m)))
	}
}

func (m *PartitionMode) UnmarshalText(text []byte) error {
	switch strings.TrimSpace(string(text)) {
	case "auto":
		*m = PartitionAuto
	case "manual":
		*m = PartitionManual
	default:
		return fmt.Errorf("unknown partition mode %q, expected auto or manual", string(text))
	}
	return nil
}

type PartitionPlan struct {
	Mode   PartitionMode `toml:"mode"`
	Device string        `toml:"device"`
	EFI    bool          `toml:"efi"`

	Encrypt    bool   `toml:"encrypt"`
	Passphrase string `toml:"passphrase"`

	// Partitions are "mountpoint:blockdevice:filesystem" specs for manual
	// mode.
	Partitions []string `toml:"partitions"`
}

type BootloaderPlan struct {
	Type    install.Bootloader `toml:"type"`
	EFIDir  string             `toml:"efidir"`
	Device  string             `toml:"device"`
	Default bool               `toml:"default"`
}

type Plan struct {
	Partition  PartitionPlan  `toml:"partition"`
	Kernel     string         `toml:"kernel"`
	Bootloader BootloaderPlan `toml:"bootloader"`

	Timeshift bool `toml:"timeshift"`
	Zram      bool `toml:"zram"`
	Flatpak   bool `toml:"flatpak"`
	Nix       bool `toml:"nix"`

	specs disk.PartitionSpecs
}

// Load reads and validates the plan in file. Unknown keys are rejected.
func Load(file string) (*Plan, error) {
	var p Plan
	md, err := toml.DecodeFile(file, &p)
	if err != nil {
		return nil, fmt.Errorf("cannot read plan %s: %w", file, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown keys in plan %s: %v", file, undecoded)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan %s: %w", file, err)
	}
	return &p, nil
}

// Validate checks the plan for consistency. Nothing is executed.
func (p *Plan) Validate() error {
	part := p.Partition
	switch part.Mode {
	case PartitionAuto:
		if part.Device == "" {
			return fmt.Errorf("automatic partitioning needs a device")
		}
		if len(part.Partitions) > 0 {
			return fmt.Errorf("partitions are only used with manual partitioning")
		}
		if part.Encrypt && part.Passphrase == "" {
			return provision.ErrEmptyPassphrase
		}
	case PartitionManual:
		if part.Encrypt {
			return provision.ErrEncryptionUnsupported
		}
		if len(part.Partitions) == 0 {
			return fmt.Errorf("manual partitioning needs at least one partition")
		}
		var specs []disk.PartitionSpec
		for _, s := range part.Partitions {
			spec, err := disk.ParsePartitionSpec(s)
			if err != nil {
				return err
			}
			specs = append(specs, spec)
		}
		sorted, err := disk.NewPartitionSpecs(specs)
		if err != nil {
			return err
		}
		p.specs = sorted
	}

	bl := p.Bootloader
	switch bl.Type {
	case install.BootloaderGrubEFI:
		if bl.EFIDir == "" {
			return fmt.Errorf("%s needs an efidir", bl.Type)
		}
	case install.BootloaderGrubLegacy:
		if bl.Device == "" {
			return fmt.Errorf("%s needs a device", bl.Type)
		}
	case install.BootloaderRefind:
		if bl.EFIDir == "" {
			return fmt.Errorf("%s needs an efidir", bl.Type)
		}
		if bl.Default && bl.Device == "" {
			return fmt.Errorf("%s as default needs a device", bl.Type)
		}
	}
	return nil
}

// Specs returns the sorted manual partitions.
func (p *Plan) Specs() disk.PartitionSpecs {
	return p.specs
}

func (p *Plan) BootloaderOptions() install.BootloaderOptions {
	return install.BootloaderOptions{
		Kind:    p.Bootloader.Type,
		EFIDir:  p.Bootloader.EFIDir,
		Device:  p.Bootloader.Device,
		Default: p.Bootloader.Default,
	}
}
