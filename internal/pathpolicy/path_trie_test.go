package pathpolicy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitPath(t *testing.T) {
	assert.Empty(t, splitPath("/"))
	assert.Equal(t, []string{"boot", "efi"}, splitPath("/boot/efi"))
	assert.Equal(t, []string{"var", "lib"}, splitPath("/var/lib/"))
}

func TestPathTrieLookup(t *testing.T) {
	trie := newPathTrie()
	for _, p := range []string{"/", "/boot", "/boot/efi", "/home", "/var/log"} {
		trie.insert(p, Rule{Reason: p})
	}

	testCases := map[string]string{
		"/":                     "/",
		"/srv":                  "/",
		"/var":                  "/",
		"/var/lib":              "/",
		"/boot":                 "/boot",
		"/boot/grub":            "/boot",
		"/boot/efi":             "/boot/efi",
		"/boot/efi/EFI/crystal": "/boot/efi",
		"/home/alice":           "/home",
		"/homework":             "/",
		"/var/log/journal":      "/var/log",
	}

	for p, expected := range testCases {
		assert.Equal(t, expected, trie.lookup(p).Reason, p)
	}
}

func TestPathTrieNoRoot(t *testing.T) {
	trie := newPathTrie()
	trie.insert("/var/empty", Rule{Deny: true})

	assert.False(t, trie.lookup("/").Deny)
	assert.False(t, trie.lookup("/var").Deny)
	assert.True(t, trie.lookup("/var/empty").Deny)
	assert.True(t, trie.lookup("/var/empty/dir").Deny)
}
