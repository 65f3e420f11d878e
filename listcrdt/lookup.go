package listcrdt

// findByVisiblePosition translates a user-visible position into a
// content-array index, walking left-to-right and skipping items that are
// deleted or content-absent. When stickToEnd is set (used by Sync9), a
// position that lands exactly at a boundary adjacent to invisible items
// resolves to the first such index rather than skipping past the run of
// invisible items to the next visible one.
func (d *Doc) findByVisiblePosition(pos int, stickToEnd bool) (int, error) {
	if pos < 0 || pos > d.length+1 {
		return 0, newErrPos(PositionOutOfRange, pos, "position exceeds visible length+1")
	}

	seen := 0
	i := 0
	for ; i < len(d.Content); i++ {
		if seen == pos {
			break
		}
		if d.Content[i].Visible() {
			seen++
		}
	}
	if seen != pos {
		// Ran off the end without reaching pos: pos names the position
		// just past the last visible item.
		return len(d.Content), nil
	}
	if !stickToEnd {
		for i < len(d.Content) && !d.Content[i].Visible() {
			i++
		}
	}
	return i, nil
}

// findItem returns the content-array index of the item with the given id.
// A nil id (absent) resolves to the sentinel index -1 ("before position
// 0"). If hint points at a matching item, it is returned immediately;
// otherwise the lookup falls back to a linear scan. A non-absent id that
// cannot be found is a fatal NotFound error — every origin referenced by
// an integrated item must already be present (causal closure).
func (d *Doc) findItem(id *Id, hint int) (int, error) {
	if id == nil {
		return -1, nil
	}
	if hint >= 0 && hint < len(d.Content) && d.Content[hint].ID.Equal(*id) {
		return hint, nil
	}
	for i := range d.Content {
		if d.Content[i].ID.Equal(*id) {
			return i, nil
		}
	}
	return 0, newErrID(NotFound, *id, "id not found in document")
}

// findItemAtEnd is the Sync9 variant of findItem: the matching item must
// have non-absent content, so a split marker sharing the same id as its
// real counterpart is treated as a non-match and skipped.
func (d *Doc) findItemAtEnd(id *Id, hint int) (int, error) {
	if id == nil {
		return -1, nil
	}
	if hint >= 0 && hint < len(d.Content) &&
		d.Content[hint].ID.Equal(*id) && d.Content[hint].ContentPresent {
		return hint, nil
	}
	for i := range d.Content {
		if d.Content[i].ID.Equal(*id) && d.Content[i].ContentPresent {
			return i, nil
		}
	}
	return 0, newErrID(NotFound, *id, "id not found in document (atEnd)")
}

// neighborsAt returns the ids of the visible items immediately left and
// right of visible position pos, as observed right now by a local author
// generating an insert at that position. Either may be nil (absent = the
// virtual document start/end).
func (d *Doc) neighborsAt(pos int) (left, right *Id, err error) {
	idx, err := d.findByVisiblePosition(pos, false)
	if err != nil {
		return nil, nil, err
	}
	if idx < len(d.Content) {
		r := d.Content[idx].ID
		right = &r
	}
	for j := idx - 1; j >= 0; j-- {
		if d.Content[j].Visible() {
			l := d.Content[j].ID
			left = &l
			break
		}
	}
	return left, right, nil
}
