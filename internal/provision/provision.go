// Package provision turns a block device into the mounted target tree.
//
// The stages are modelled as a typed pipeline: Begin returns an
// *Unpartitioned, whose Partition method returns a *Partitioned, and so on up
// to *Mounted, the only value the install package accepts. A stage can only
// be reached through the one before it, so it is not possible to format a
// device whose table was never written or to install into a tree that was
// never mounted.
//
// Every stage stops at the first failing command and returns its error.
// Nothing is rolled back.
package provision

import (
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/crystal-linux/jade/internal/fsnode"
	"github.com/crystal-linux/jade/internal/runner"
)

const (
	DefaultRoot             = "/mnt"
	DefaultEncryptionScript = "/tmp/encryption.sh"
)

var (
	ErrDeviceNotFound = errors.New("device not found")
	ErrNotMounted     = errors.New("target root is not mounted")

	// ErrEncryptionUnsupported is returned when encryption is requested
	// together with manual partitioning.
	ErrEncryptionUnsupported = errors.New("encryption is only supported with automatic partitioning")

	ErrEmptyPassphrase = errors.New("empty passphrase")

	// ErrStageUsed is returned when a pipeline stage is run a second time.
	ErrStageUsed = errors.New("pipeline stage was already used")
)

// var alias for unix.Stat() that can be mocked for testing
var statDevice = unix.Stat

// Provisioner holds what every stage of the pipeline needs.
type Provisioner struct {
	Runner runner.Runner
	Files  *fsnode.Writer

	// Root is where the target tree is assembled.
	Root string

	// EncryptionScript is where the bootloader fixup for an encrypted root
	// is staged.
	EncryptionScript string

	// Rand is the source of the LUKS volume UUID. The system random source
	// is used if nil.
	Rand io.Reader

	Logger *logrus.Entry
}

// New returns a Provisioner with the default paths.
func New(r runner.Runner, files *fsnode.Writer, logger *logrus.Entry) *Provisioner {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Provisioner{
		Runner:           r,
		Files:            files,
		Root:             DefaultRoot,
		EncryptionScript: DefaultEncryptionScript,
		Logger:           logger,
	}
}

func (p *Provisioner) logger() *logrus.Entry {
	if p.Logger == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return p.Logger
}

func (p *Provisioner) root() string {
	if p.Root == "" {
		return DefaultRoot
	}
	return p.Root
}

func (p *Provisioner) encryptionScript() string {
	if p.EncryptionScript == "" {
		return DefaultEncryptionScript
	}
	return p.EncryptionScript
}

// removeEncryptionScript drops a script left behind by an earlier encrypted
// run, so that it is not applied to the tree this run creates.
func (p *Provisioner) removeEncryptionScript() error {
	return p.Files.RemoveFile(p.encryptionScript())
}

// target returns mountpoint relative to the target root.
func (p *Provisioner) target(mountpoint string) string {
	return path.Join(p.root(), mountpoint)
}

func (p *Provisioner) run(cmd runner.Command) error {
	return p.Runner.Run(cmd)
}

// CheckDevice returns ErrDeviceNotFound if device does not exist. A path that
// exists but is not a block device is accepted with a warning.
func (p *Provisioner) CheckDevice(device string) error {
	var st unix.Stat_t
	if err := statDevice(device, &st); err != nil {
		if errors.Is(err, unix.ENOENT) || errors.Is(err, unix.ENOTDIR) {
			return fmt.Errorf("%w: %s", ErrDeviceNotFound, device)
		}
		return fmt.Errorf("cannot stat %s: %w", device, err)
	}
	if st.Mode&unix.S_IFMT != unix.S_IFBLK {
		p.logger().Warnf("%s is not a block device", device)
	}
	return nil
}

// mountCommand mounts device at target, passing options if not empty.
func mountCommand(device, target, options string) runner.Command {
	if options == "" {
		return runner.New("mount", device, target).
			Describe("mount %s with no options at %s", device, target)
	}
	return runner.New("mount", device, target, "-o", options).
		Describe("mount %s with options %s at %s", device, options, target)
}

func umountCommand(target string) runner.Command {
	return runner.New("umount", target).Describe("unmount %s", target)
}
