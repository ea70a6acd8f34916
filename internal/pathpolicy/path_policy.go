// Package pathpolicy decides where operator supplied partitions may be
// mounted inside the target tree.
package pathpolicy

import (
	"errors"
	"fmt"
	"path"
)

var ErrReservedMountpoint = errors.New("mountpoint is reserved")

// Rule applies to a path and everything below it, unless a longer path has
// a rule of its own.
type Rule struct {
	Deny bool
	// Reason tells the operator why a denied mountpoint is reserved.
	Reason string
}

// Policies maps paths of the target tree to rules. Paths without a rule of
// their own inherit the rule of their closest parent, / is allowed.
type Policies struct {
	trie *pathTrie
}

func NewPolicies(rules map[string]Rule) *Policies {
	trie := newPathTrie()
	for p, rule := range rules {
		trie.insert(p, rule)
	}
	return &Policies{trie: trie}
}

// Check returns an error if nothing may be mounted at mountpoint.
func (pol *Policies) Check(mountpoint string) error {
	if mountpoint == "" || mountpoint[0] != '/' {
		return fmt.Errorf("mountpoint %q must be an absolute path", mountpoint)
	}
	if clean := path.Clean(mountpoint); mountpoint != clean {
		return fmt.Errorf("mountpoint %q must be canonical, use %q", mountpoint, clean)
	}

	if rule := pol.trie.lookup(mountpoint); rule.Deny {
		return fmt.Errorf("%w: %s is %s", ErrReservedMountpoint, mountpoint, rule.Reason)
	}
	return nil
}

// Mountpoints guards the API filesystems, which the chroot helper mounts on
// top of the target tree.
var Mountpoints = NewPolicies(map[string]Rule{
	"/dev":  {Deny: true, Reason: "set up by the chroot helper"},
	"/proc": {Deny: true, Reason: "set up by the chroot helper"},
	"/sys":  {Deny: true, Reason: "set up by the chroot helper"},
	"/run":  {Deny: true, Reason: "a tmpfs created at boot"},
})
