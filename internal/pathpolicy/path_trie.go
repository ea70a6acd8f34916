package pathpolicy

import "strings"

// pathTrie holds one node per path component. Only nodes that were inserted
// carry a rule.
type pathTrie struct {
	children map[string]*pathTrie
	rule     *Rule
}

func newPathTrie() *pathTrie {
	return &pathTrie{children: map[string]*pathTrie{}}
}

// splitPath returns the components of p, none for /.
func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func (t *pathTrie) insert(p string, rule Rule) {
	node := t
	for _, name := range splitPath(p) {
		child, ok := node.children[name]
		if !ok {
			child = newPathTrie()
			node.children[name] = child
		}
		node = child
	}
	node.rule = &rule
}

// lookup returns the rule of the longest prefix of p that has one, or the
// zero Rule.
func (t *pathTrie) lookup(p string) Rule {
	var rule Rule
	node := t
	if node.rule != nil {
		rule = *node.rule
	}
	for _, name := range splitPath(p) {
		child, ok := node.children[name]
		if !ok {
			break
		}
		node = child
		if node.rule != nil {
			rule = *node.rule
		}
	}
	return rule
}
