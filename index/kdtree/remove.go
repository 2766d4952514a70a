package kdtree

import (
	"fmt"

	"github.com/viant/domindex/index"
)

// Remove deletes the leaf id and the internal node that held it, promoting
// the leaf's sibling into the vacated slot. Dividers of the surviving
// ancestors are left unchanged.
func (t *Tree) Remove(id string) error {
	if t.root == "" {
		return fmt.Errorf("kdtree: remove %q: %w", id, index.ErrEmptyTree)
	}
	leaf, ok := t.nodes[id]
	if !ok || !leaf.isLeaf() {
		return fmt.Errorf("kdtree: remove %q: %w", id, index.ErrNotFound)
	}
	t.leaves--
	if leaf.parent == "" {
		delete(t.nodes, id)
		t.root = ""
		return nil
	}
	parentKey := leaf.parent
	parent := t.nodes[parentKey]
	siblingKey := parent.sibling(id)
	sibling := t.nodes[siblingKey]
	if parent.parent == "" {
		t.root = siblingKey
		sibling.parent = ""
	} else {
		grand := t.nodes[parent.parent]
		grand.replaceChild(parentKey, siblingKey)
		sibling.parent = parent.parent
	}
	delete(t.nodes, id)
	delete(t.nodes, parentKey)
	return nil
}
