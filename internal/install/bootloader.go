package install

import (
	"fmt"
	"strings"
)

// Bootloader is the strategy used to make the target bootable. Exactly one
// is installed per run.
type Bootloader int

const (
	BootloaderNone Bootloader = iota
	BootloaderGrubEFI
	BootloaderGrubLegacy
	BootloaderRefind
)

var bootloaderNames = map[Bootloader]string{
	BootloaderNone:       "none",
	BootloaderGrubEFI:    "grub-efi",
	BootloaderGrubLegacy: "grub-legacy",
	BootloaderRefind:     "refind",
}

func ParseBootloader(name string) (Bootloader, error) {
	for b, n := range bootloaderNames {
		if n == name {
			return b, nil
		}
	}
	return BootloaderNone, fmt.Errorf("unknown bootloader %q, expected one of: grub-efi, grub-legacy, refind", name)
}

func (b Bootloader) String() string {
	if name, ok := bootloaderNames[b]; ok {
		return name
	}
	return fmt.Sprintf("Bootloader(%d)", int(b))
}

// IsGrub returns true for both GRUB strategies.
func (b Bootloader) IsGrub() bool {
	return b == BootloaderGrubEFI || b == BootloaderGrubLegacy
}

// NeedsEFI returns true for the strategies that install to an EFI system
// partition.
func (b Bootloader) NeedsEFI() bool {
	return b == BootloaderGrubEFI || b == BootloaderRefind
}

func (b *Bootloader) UnmarshalText(text []byte) error {
	parsed, err := ParseBootloader(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// BootloaderOptions selects a strategy and its target.
type BootloaderOptions struct {
	Kind Bootloader

	// EFIDir is the EFI system partition mountpoint inside the target tree,
	// used by grub-efi and refind.
	EFIDir string

	// Device is the disk the boot code is written to, used by grub-legacy,
	// and by refind when Default is set.
	Device string

	// Default installs rEFInd to the default/fallback filename on Device.
	Default bool
}
