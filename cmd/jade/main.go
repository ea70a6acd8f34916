// jade provisions the storage of a new Crystal Linux system and installs the
// base system into it.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/crystal-linux/jade/internal/common"
	"github.com/crystal-linux/jade/internal/install"
	"github.com/crystal-linux/jade/internal/plan"
	"github.com/crystal-linux/jade/internal/provision"
	"github.com/crystal-linux/jade/internal/runner"
)

type globalOptions struct {
	configFile string
	dryRun     bool
	verbosity  int

	config *jadeConfig
}

func (o *globalOptions) environment() *environment {
	return newEnvironment(o.config, o.dryRun)
}

// attach returns the environment and the tree mounted by an earlier
// partition run.
func (o *globalOptions) attach() (*environment, *provision.Mounted, error) {
	env := o.environment()
	m, err := env.provisioner.Attach()
	if err != nil {
		return nil, nil, err
	}
	return env, m, nil
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "jade",
		Short:         "Partition, format and install a Crystal Linux system",
		Version:       common.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			common.ConfigureLogging(logrus.StandardLogger(), cmd.ErrOrStderr(), opts.verbosity)
			config, err := parseConfig(opts.configFile)
			if err != nil {
				return fmt.Errorf("cannot load configuration: %w", err)
			}
			opts.config = config
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", defaultConfigFile, "configuration file")
	rootCmd.PersistentFlags().BoolVar(&opts.dryRun, "dry-run", false, "log the commands instead of running them")
	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", "increase verbosity, may be repeated")

	rootCmd.AddCommand(
		newPartitionCmd(opts),
		newInstallBaseCmd(opts),
		newGenFstabCmd(opts),
		newSetupTimeshiftCmd(opts),
		newBootloaderCmd(opts),
		newExtraCmd(opts, "zram", "Install and configure zram swap", (*install.Installer).Zram),
		newExtraCmd(opts, "nix", "Install the nix package manager", (*install.Installer).Nix),
		newExtraCmd(opts, "flatpak", "Install flatpak and add the flathub remote", (*install.Installer).Flatpak),
		newConfigCmd(opts),
	)
	return rootCmd
}

func newPartitionCmd(opts *globalOptions) *cobra.Command {
	var (
		mode       string
		device     string
		efi        bool
		encrypt    bool
		passphrase string
	)

	cmd := &cobra.Command{
		Use:     "partition [flags] [mountpoint:blockdevice:filesystem...]",
		Short:   "Partition, format and mount the target",
		Example: "  jade partition --mode auto --device /dev/sda --efi\n" +
			"  jade partition --mode manual /:/dev/sda3:btrfs /boot/efi:/dev/sda1:vfat",
		RunE: func(cmd *cobra.Command, args []string) error {
			var partitionMode plan.PartitionMode
			if err := partitionMode.UnmarshalText([]byte(mode)); err != nil {
				return err
			}
			if passphrase == "" {
				passphrase = os.Getenv("JADE_PASSPHRASE")
			}

			p := &plan.Plan{
				Partition: plan.PartitionPlan{
					Mode:       partitionMode,
					Device:     device,
					EFI:        efi,
					Encrypt:    encrypt,
					Passphrase: passphrase,
					Partitions: args,
				},
			}
			if err := p.Validate(); err != nil {
				return err
			}
			_, err := opts.environment().executor().Provision(p)
			return err
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "auto", "partitioning mode, auto or manual")
	cmd.Flags().StringVar(&device, "device", "", "device to partition in auto mode")
	cmd.Flags().BoolVar(&efi, "efi", false, "create an EFI system partition")
	cmd.Flags().BoolVar(&encrypt, "encrypt", false, "encrypt the root partition")
	cmd.Flags().StringVar(&passphrase, "passphrase", "", "passphrase of the encrypted root, defaults to $JADE_PASSPHRASE")
	return cmd
}

func newInstallBaseCmd(opts *globalOptions) *cobra.Command {
	var kernel string

	cmd := &cobra.Command{
		Use:   "install-base",
		Short: "Install the base system into the target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, m, err := opts.attach()
			if err != nil {
				return err
			}
			return env.installer.InstallBase(m, install.KernelFlavorOrDefault(kernel, env.logger))
		},
	}
	cmd.Flags().StringVar(&kernel, "kernel", "linux", "kernel: linux, linux-lts, linux-zen or linux-hardened")
	return cmd
}

func newGenFstabCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "genfstab",
		Short: "Generate the target's fstab",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, m, err := opts.attach()
			if err != nil {
				return err
			}
			return env.installer.GenFstab(m)
		},
	}
}

func newSetupTimeshiftCmd(opts *globalOptions) *cobra.Command {
	var bootloader string

	cmd := &cobra.Command{
		Use:   "setup-timeshift",
		Short: "Install btrfs snapshot tooling",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bl, err := install.ParseBootloader(bootloader)
			if err != nil {
				return err
			}
			env, m, err := opts.attach()
			if err != nil {
				return err
			}
			return env.installer.SetupTimeshift(m, bl)
		},
	}
	cmd.Flags().StringVar(&bootloader, "bootloader", install.BootloaderGrubEFI.String(), "installed bootloader: grub-efi, grub-legacy or refind")
	return cmd
}

func newBootloaderCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bootloader",
		Short: "Install a bootloader into the target",
	}

	run := func(o *install.BootloaderOptions) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			env, m, err := opts.attach()
			if err != nil {
				return err
			}
			return env.installer.InstallBootloader(m, *o)
		}
	}

	grubEFI := &install.BootloaderOptions{Kind: install.BootloaderGrubEFI}
	grubEFICmd := &cobra.Command{
		Use:   "grub-efi",
		Short: "Install GRUB for UEFI systems",
		Args:  cobra.NoArgs,
		RunE:  run(grubEFI),
	}
	grubEFICmd.Flags().StringVar(&grubEFI.EFIDir, "efidir", "/boot/efi", "EFI system partition mountpoint inside the target")

	grubLegacy := &install.BootloaderOptions{Kind: install.BootloaderGrubLegacy}
	grubLegacyCmd := &cobra.Command{
		Use:   "grub-legacy",
		Short: "Install GRUB for BIOS systems",
		Args:  cobra.NoArgs,
		RunE:  run(grubLegacy),
	}
	grubLegacyCmd.Flags().StringVar(&grubLegacy.Device, "device", "", "disk to write the boot code to")
	_ = grubLegacyCmd.MarkFlagRequired("device")

	refind := &install.BootloaderOptions{Kind: install.BootloaderRefind}
	refindCmd := &cobra.Command{
		Use:   "refind",
		Short: "Install rEFInd",
		Args:  cobra.NoArgs,
		RunE:  run(refind),
	}
	refindCmd.Flags().StringVar(&refind.EFIDir, "efidir", "/boot/efi", "EFI system partition mountpoint inside the target")
	refindCmd.Flags().BoolVar(&refind.Default, "default", false, "install to the default boot filename")
	refindCmd.Flags().StringVar(&refind.Device, "device", "", "disk holding the EFI system partition, used with --default")

	cmd.AddCommand(grubEFICmd, grubLegacyCmd, refindCmd)
	return cmd
}

func newExtraCmd(opts *globalOptions, use, short string, run func(*install.Installer, *provision.Mounted) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, m, err := opts.attach()
			if err != nil {
				return err
			}
			return run(env.installer, m)
		},
	}
}

func newConfigCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config <plan.toml>",
		Short: "Run a complete installation described by a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := plan.Load(args[0])
			if err != nil {
				return err
			}
			return opts.environment().executor().Execute(p)
		},
	}
}

// exitCode passes on the status of a failed external command, so that
// wrapper scripts can tell what went wrong. Everything else exits with 1.
func exitCode(err error) int {
	if code := runner.ExitCode(err); code > 0 {
		return code
	}
	return 1
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.Error(err)
		os.Exit(exitCode(err))
	}
}
