package provision

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/crystal-linux/jade/internal/disk"
	"github.com/crystal-linux/jade/internal/fsnode"
	"github.com/crystal-linux/jade/internal/runner"
)

// Mounted is a fully assembled target tree. It is produced by Formatted.Mount,
// Provisioner.Manual or Provisioner.Attach.
type Mounted struct {
	root     string
	mode     *disk.BootMode
	luksUUID string
}

// Root returns the host path the target tree is mounted at.
func (m *Mounted) Root() string {
	return m.root
}

// Path returns the host path of p inside the target tree.
func (m *Mounted) Path(p string) string {
	return path.Join(m.root, p)
}

// BootMode returns the boot mode the tree was provisioned for. ok is false if
// the tree was assembled by hand or attached.
func (m *Mounted) BootMode() (mode disk.BootMode, ok bool) {
	if m.mode == nil {
		return disk.BootModeLegacy, false
	}
	return *m.mode, true
}

// Encrypted returns true if the root filesystem is on a LUKS volume set up
// by this run, or by the earlier run whose tree was attached.
func (m *Mounted) Encrypted() bool {
	return m.luksUUID != ""
}

// LUKSUUID returns the UUID of the encrypted root volume, or "".
func (m *Mounted) LUKSUUID() string {
	return m.luksUUID
}

// Attach returns the tree an earlier run already mounted at the root. It
// fails with ErrNotMounted if the root is not a mountpoint. The root counts
// as encrypted if the earlier run left its encryption script behind.
func (p *Provisioner) Attach() (*Mounted, error) {
	root := p.root()
	cmd := runner.New("mountpoint", "-q", root).Describe("check that %s is mounted", root)
	if err := p.run(cmd); err != nil {
		var cmdErr *runner.CommandError
		if errors.As(err, &cmdErr) && cmdErr.ExitCode > 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotMounted, root)
		}
		return nil, err
	}

	m := &Mounted{root: root}
	if script := p.encryptionScript(); fsnode.Exists(script) {
		uuid, err := readEncryptionUUID(script)
		if err != nil {
			return nil, err
		}
		m.luksUUID = uuid
	}
	return m, nil
}

// readEncryptionUUID returns the UUID assigned in the encryption script.
func readEncryptionUUID(script string) (string, error) {
	content, err := os.ReadFile(script)
	if err != nil {
		return "", fmt.Errorf("cannot read encryption script: %w", err)
	}
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		if uuid, ok := strings.CutPrefix(scanner.Text(), "UUID="); ok && uuid != "" {
			return uuid, nil
		}
	}
	return "", fmt.Errorf("no UUID in encryption script %s", script)
}
