package fsnode

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDirectory(t *testing.T) {
	root := t.TempDir()
	w := NewWriter(nil, false)

	dir := filepath.Join(root, "mnt", "boot", "efi")
	require.NoError(t, w.CreateDirectory(dir))
	assert.True(t, IsDir(dir))

	// creating it again is fine
	assert.NoError(t, w.CreateDirectory(dir))
}

func TestPathValidation(t *testing.T) {
	w := NewWriter(nil, false)

	testCases := map[string]string{
		"relative":      "mnt/etc",
		"empty":         "",
		"non-canonical": "/mnt/../etc",
		"trailing":      "/mnt/etc/",
	}

	for name, p := range testCases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, w.CreateDirectory(p))
			assert.Error(t, w.CreateFile(p))
			assert.Error(t, w.AppendLine(p, "line"))
		})
	}
}

func TestAppendLine(t *testing.T) {
	root := t.TempDir()
	w := NewWriter(nil, false)
	name := filepath.Join(root, "zram-generator.conf")

	require.NoError(t, w.CreateFile(name))
	require.NoError(t, w.AppendLine(name, "[zram0]"))
	require.NoError(t, w.AppendLine(name, "zram-size = ram / 2"))

	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "[zram0]\nzram-size = ram / 2\n", string(data))
}

func TestCreateFileTruncates(t *testing.T) {
	root := t.TempDir()
	w := NewWriter(nil, false)
	name := filepath.Join(root, "encryption.sh")

	require.NoError(t, os.WriteFile(name, []byte("stale\n"), FilePerms))
	require.NoError(t, w.CreateFile(name))

	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestRemoveFile(t *testing.T) {
	w := NewWriter(nil, false)
	name := filepath.Join(t.TempDir(), "encryption.sh")
	require.NoError(t, os.WriteFile(name, []byte("#!/bin/bash\n"), 0600))

	require.NoError(t, w.RemoveFile(name))
	assert.False(t, Exists(name))

	// removing it again is fine
	assert.NoError(t, w.RemoveFile(name))
	assert.Error(t, w.RemoveFile("encryption.sh"))
}

func TestCopyFile(t *testing.T) {
	root := t.TempDir()
	w := NewWriter(nil, false)
	src := filepath.Join(root, "pacman.conf")
	dst := filepath.Join(root, "target-pacman.conf")

	require.NoError(t, os.WriteFile(src, []byte("[options]\nParallelDownloads = 5\n"), FilePerms))
	require.NoError(t, w.CopyFile(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "[options]\nParallelDownloads = 5\n", string(data))

	assert.Error(t, w.CopyFile(filepath.Join(root, "missing"), dst))
}

func TestDryRun(t *testing.T) {
	root := t.TempDir()
	w := NewWriter(nil, true)

	dir := filepath.Join(root, "etc")
	assert.NoError(t, w.CreateDirectory(dir))
	assert.NoError(t, w.AppendLine(filepath.Join(dir, "fstab"), "# fstab"))
	assert.False(t, Exists(dir))
}
