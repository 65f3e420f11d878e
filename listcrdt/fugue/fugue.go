// Package fugue implements the tree-backed list CRDT variant. Unlike the
// four array-backed variants in listcrdt, a Fugue document is a binary
// tree: each node hangs off the left or right side of the neighbor it was
// generated next to, and the visible sequence is the tree's in-order
// traversal. It reuses listcrdt's Id, Version and Error types rather than
// redefining them, since the identity and causality model is identical —
// only the storage shape and integration rule differ.
package fugue

import "github.com/crdtlab/listcrdt"

// Side records which child slot of its parent a node occupies, as derived
// by attachPoint: Left means "left child of OriginRight", chosen when
// OriginRight's own OriginLeft equals this node's OriginLeft; Right means
// "right child of OriginLeft" (or of the root when OriginLeft is nil).
type Side int8

const (
	Left Side = iota
	Right
)

// Node is one tree element. Content-present/deleted bookkeeping mirrors
// listcrdt.Item. OriginLeft/OriginRight are the neighbors the author
// observed at generation time — the node's true, immutable CRDT identity,
// same as the array variants' Item.OriginLeft/OriginRight. Parent/Side
// cache the tree edge attachPoint derives from them: a pure function of
// OriginLeft, OriginRight, and already-integrated document state, so every
// replica recomputes the identical edge regardless of integration order.
type Node struct {
	ID             listcrdt.Id
	Content        string
	ContentPresent bool
	IsDeleted      bool

	OriginLeft  *listcrdt.Id
	OriginRight *listcrdt.Id

	Parent *listcrdt.Id
	Side   Side
}

// idsEqualOptional compares two optional ids (nil meaning "absent", i.e.
// virtual document start/end).
func idsEqualOptional(a, b *listcrdt.Id) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func (n *Node) visible() bool {
	return n.ContentPresent && !n.IsDeleted
}

// anchor identifies one child slot: the Left or Right side of a node, or
// (when Parent is absent) the whole document's single root slot.
type anchor struct {
	parent    listcrdt.Id
	hasParent bool
	side      Side
}

// Doc is a Fugue document.
type Doc struct {
	Nodes    map[listcrdt.Id]*Node
	Children map[anchor][]listcrdt.Id
	Version  listcrdt.Version
	length   int
}

// NewDoc returns an empty Fugue document.
func NewDoc() *Doc {
	return &Doc{
		Nodes:    make(map[listcrdt.Id]*Node),
		Children: make(map[anchor][]listcrdt.Id),
		Version:  listcrdt.NewVersion(),
	}
}

// Length returns the number of visible (present, non-deleted) nodes.
func (d *Doc) Length() int {
	return d.length
}

// VersionSnapshot returns a copy of the current version vector.
func (d *Doc) VersionSnapshot() listcrdt.Version {
	return d.Version.Clone()
}

// GetArray returns the visible content in in-order (document) sequence.
func (d *Doc) GetArray() []string {
	out := make([]string, 0, d.length)
	d.appendChildren(anchor{hasParent: false, side: Left}, &out)
	d.appendChildren(anchor{hasParent: false, side: Right}, &out)
	return out
}

func (d *Doc) appendChildren(a anchor, out *[]string) {
	for _, id := range d.Children[a] {
		d.walkNode(id, out)
	}
}

func (d *Doc) walkNode(id listcrdt.Id, out *[]string) {
	n := d.Nodes[id]
	d.appendChildren(anchor{parent: id, hasParent: true, side: Left}, out)
	if n.visible() {
		*out = append(*out, n.Content)
	}
	d.appendChildren(anchor{parent: id, hasParent: true, side: Right}, out)
}
