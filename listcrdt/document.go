package listcrdt

// Doc is an array-backed list CRDT document for one of the four flat
// variants (YjsClassic, YjsMod, RGA, Sync9). Content index 0 is the
// leftmost item. Mutation only ever appends/splices into Content, sets
// IsDeleted, or advances Version/length/MaxSeq — an integrated item is
// never removed nor reordered.
type Doc struct {
	Algorithm Algorithm
	Content   []Item
	Version   Version
	// MaxSeq is the max Seq field observed; RGA only.
	MaxSeq uint64

	length int
}

// NewDoc creates an empty document for the given (non-Fugue) algorithm.
func NewDoc(algorithm Algorithm) *Doc {
	if algorithm == Fugue {
		panic("listcrdt: NewDoc does not support Fugue; use fugue.NewDoc")
	}
	return &Doc{
		Algorithm: algorithm,
		Version:   NewVersion(),
	}
}

// Length returns the visible length: items with content present and not
// deleted.
func (d *Doc) Length() int {
	return d.length
}

// GetArray returns the visible content in sequence order.
func (d *Doc) GetArray() []string {
	out := make([]string, 0, d.length)
	for i := range d.Content {
		if d.Content[i].Visible() {
			out = append(out, d.Content[i].Content)
		}
	}
	return out
}

// VersionSnapshot returns a copy of the current version vector.
func (d *Doc) VersionSnapshot() Version {
	return d.Version.Clone()
}

// LocalInsert inserts content at visible position pos as agent, running the
// variant's generator followed by its integration kernel. It never splices
// directly — the kernel owns placement.
func (d *Doc) LocalInsert(agent string, pos int, content string) (Item, error) {
	item, err := d.generate(agent, pos, content)
	if err != nil {
		return Item{}, err
	}
	if err := d.integrate(item, -1); err != nil {
		return Item{}, err
	}
	return item, nil
}

// LocalDelete marks the item at visible position pos deleted. Items are
// never removed from Content.
func (d *Doc) LocalDelete(agent string, pos int) error {
	idx, err := d.findByVisiblePosition(pos, false)
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(d.Content) {
		return newErrPos(PositionOutOfRange, pos, "local delete past end")
	}
	if !d.Content[idx].IsDeleted {
		d.Content[idx].IsDeleted = true
		d.length--
	}
	return nil
}

// VisibleContentIndex returns the Content index of the pos'th visible item,
// for callers (e.g. LSET) that need to mutate a visible slot in place.
func (d *Doc) VisibleContentIndex(pos int) (int, error) {
	if pos < 0 || pos >= d.length {
		return 0, newErrPos(PositionOutOfRange, pos, "visible index out of range")
	}
	return d.findByVisiblePosition(pos, false)
}

// Integrate admits a foreign item, optionally using hint as a locality hint
// for the originLeft lookup.
func (d *Doc) Integrate(item Item, hint int) error {
	return d.integrate(item, hint)
}

// integrate runs the prelude shared by every kernel (validate seq, bump
// version, locate left/right boundary) and then dispatches to the
// algorithm-specific scan.
func (d *Doc) integrate(item Item, hint int) error {
	expected := d.Version.Last(item.ID.Agent) + 1
	if int64(item.ID.Seq) != expected {
		return newErrID(CausalGap, item.ID,
			"seq is not version[agent]+1 (gap or replay)")
	}
	if item.OriginLeft != nil && !d.Version.Contains(*item.OriginLeft) {
		return newErrID(CausalGap, *item.OriginLeft, "originLeft not yet integrated")
	}
	if item.OriginRight != nil && !d.Version.Contains(*item.OriginRight) {
		return newErrID(CausalGap, *item.OriginRight, "originRight not yet integrated")
	}

	// Sync9 resolves its own boundary index: InsertAfter items attach after
	// the content-present occurrence of originLeft (findItemAtEnd skips any
	// split marker sharing that id), while !InsertAfter items attach at a
	// before-anchor that may require synthesizing a split marker first. It
	// has no use for a shared originRight-derived rightIdx, so it bypasses
	// the generic lookup below entirely.
	if d.Algorithm == Sync9 {
		destIdx, err := d.placeSync9(item, hint)
		if err != nil {
			return err
		}
		d.splice(destIdx, item)
		d.Version.Advance(item.ID)
		if item.Visible() {
			d.length++
		}
		return nil
	}

	leftIdx, err := d.findItem(item.OriginLeft, hint)
	if err != nil {
		return err
	}
	rightIdx, err := d.findItem(item.OriginRight, -1)
	if err != nil {
		return err
	}
	if rightIdx < 0 {
		rightIdx = len(d.Content)
	}

	var destIdx int
	switch d.Algorithm {
	case YjsClassic:
		destIdx = d.scanYjs(item, leftIdx, rightIdx)
	case YjsMod:
		destIdx = d.scanYjsMod(item, leftIdx, rightIdx)
	case RGA:
		destIdx = d.scanRGA(item, leftIdx, rightIdx)
	default:
		panic("listcrdt: unknown algorithm")
	}

	d.splice(destIdx, item)
	d.Version.Advance(item.ID)
	if item.Seq > d.MaxSeq {
		d.MaxSeq = item.Seq
	}
	if item.Visible() {
		d.length++
	}
	return nil
}

// splice inserts item at content index idx (shifting everything after it
// right by one).
func (d *Doc) splice(idx int, item Item) {
	d.Content = append(d.Content, Item{})
	copy(d.Content[idx+1:], d.Content[idx:])
	d.Content[idx] = item
}
