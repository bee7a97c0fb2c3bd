package output

import (
	"path"

	"github.com/disiqueira/gotree/v3"

	"dirdirector/internal/models"
)

// IconTree renders the cache index as a directory tree
type IconTree struct {
	tree   gotree.Tree
	groups map[string]gotree.Tree
}

// NewIconTree starts a tree labelled with the cache root
func NewIconTree(rootLabel string) IconTree {
	return IconTree{tree: gotree.New(rootLabel), groups: make(map[string]gotree.Tree)}
}

func (t IconTree) getGroup(group string) (node gotree.Tree) {
	if group == models.DefaultGroup || group == "." || group == "" {
		return t.tree
	}
	node = t.groups[group]
	if node == nil {
		parent := t.getGroup(path.Dir(group))
		node = parent.Add(path.Base(group) + "/")
		t.groups[group] = node
	}
	return
}

// Insert adds an icon under its group, prefixed by marker
func (t IconTree) Insert(entry models.IconEntry, marker string) {
	t.getGroup(entry.Group).Add(marker + entry.Name)
}

// Render returns the tree as text
func (t IconTree) Render() string {
	return t.tree.Print()
}

// RenderTree builds the full tree for groups, starring favorites
func RenderTree(rootLabel string, groups []models.IconGroup, favorites []models.IconEntry) string {
	t := NewIconTree(rootLabel)
	for _, f := range favorites {
		if !f.IsAction() {
			t.Insert(f, "★ ")
		}
	}
	for _, g := range groups {
		for _, icon := range g.Icons {
			t.Insert(icon, "")
		}
	}
	return t.Render()
}
