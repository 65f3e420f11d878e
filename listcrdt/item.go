package listcrdt

// Item is a single sequence element shared by the four array-backed
// variants (YjsClassic, YjsMod, RGA, Sync9). Fugue uses its own node type
// (listcrdt/fugue) since it is a tree, not a flat sequence, but the fields
// carry the same meaning.
type Item struct {
	// Content is the payload. ContentPresent false means "absent": a
	// Sync9 split marker, a zero-width tombstone-like anchor.
	Content        string `json:"content,omitempty"`
	ContentPresent bool   `json:"contentPresent"`

	ID Id `json:"id"`

	// OriginLeft is the item the author observed immediately to the left
	// at generation time; nil means virtual document start. Across every
	// variant this plays the role of a logical parent.
	OriginLeft *Id `json:"originLeft,omitempty"`
	// OriginRight is the item the author observed immediately to the
	// right; nil means virtual document end. Used by the Yjs family.
	OriginRight *Id `json:"originRight,omitempty"`

	// Seq is a Lamport-like counter strictly greater than every seq the
	// author had observed at generation time. RGA/Automerge only.
	Seq uint64 `json:"seq,omitempty"`

	// InsertAfter: Sync9 only. Does this item attach to its parent's
	// "after" anchor, or the "before" anchor created by a split?
	InsertAfter bool `json:"insertAfter,omitempty"`

	IsDeleted bool `json:"isDeleted,omitempty"`
}

// Visible reports whether this item counts towards visible length/position:
// present content and not deleted.
func (it *Item) Visible() bool {
	return it.ContentPresent && !it.IsDeleted
}
