package pathpolicy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoliciesCheck(t *testing.T) {
	policies := NewPolicies(map[string]Rule{
		"/var":          {},
		"/var/empty":    {Deny: true, Reason: "kept empty"},
		"/var/empty/ok": {},
		"/boot/efi/EFI": {Deny: true, Reason: "managed by the bootloader"},
	})

	allowed := []string{"/", "/custom", "/boot", "/boot/efi", "/var", "/var/log", "/var/empty/ok"}
	for _, p := range allowed {
		assert.NoError(t, policies.Check(p), p)
	}

	denied := []string{"/var/empty", "/var/empty/dir", "/boot/efi/EFI/crystal"}
	for _, p := range denied {
		err := policies.Check(p)
		assert.True(t, errors.Is(err, ErrReservedMountpoint), p)
	}

	invalid := []string{"", "relative", "/home/../etc", "/home/"}
	for _, p := range invalid {
		err := policies.Check(p)
		assert.Error(t, err, p)
		assert.False(t, errors.Is(err, ErrReservedMountpoint), p)
	}
}

func TestMountpoints(t *testing.T) {
	allowed := []string{"/", "/home", "/boot", "/boot/efi", "/var", "/var/lib/docker", "/devel", "/runtime"}
	for _, p := range allowed {
		assert.NoError(t, Mountpoints.Check(p), p)
	}

	denied := []string{"/dev", "/dev/shm", "/proc", "/sys", "/sys/firmware/efi/efivars", "/run"}
	for _, p := range denied {
		assert.True(t, errors.Is(Mountpoints.Check(p), ErrReservedMountpoint), p)
	}

	assert.EqualError(t, Mountpoints.Check("/proc"), "mountpoint is reserved: /proc is set up by the chroot helper")
}
