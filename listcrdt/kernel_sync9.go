package listcrdt

// placeSync9 resolves the content-array index for a Sync9 item and performs
// any split-marker surgery its attach point requires, but does not splice
// the item itself — the caller (integrate) does that once placeSync9
// returns, so that version/length bookkeeping stays in one place.
//
// Every Sync9 item attaches to one of two anchors hung off its originLeft:
// the "after" anchor (the real, content-present occurrence of originLeft
// itself) or the "before" anchor (a split marker standing just in front of
// it). Concurrent siblings sharing an anchor tie-break on ascending agent
// id, same as the other three kernels.
func (d *Doc) placeSync9(item Item, hint int) (int, error) {
	anchorIdx, err := d.sync9Anchor(item.OriginLeft, item.InsertAfter, hint)
	if err != nil {
		return 0, err
	}

	i := anchorIdx + 1
	for i < len(d.Content) {
		o := d.Content[i]
		if !idsEqual(o.OriginLeft, item.OriginLeft) || o.InsertAfter != item.InsertAfter {
			break
		}
		if item.ID.Agent < o.ID.Agent {
			break
		}
		i++
	}
	return i, nil
}

// sync9Anchor returns the content-array index immediately before which a
// new sibling of origin/insertAfter should begin its tie-break scan: for
// insertAfter, that's the real occurrence of origin; otherwise it's a split
// marker in front of that occurrence. findItem's first-match-wins semantics
// mean it already returns an existing marker in preference to the real
// item (the marker, sharing origin's id, sits earlier in Content), so a
// marker only needs synthesizing the first time this anchor is used. A nil
// origin is the virtual document start, anchor index -1.
func (d *Doc) sync9Anchor(origin *Id, insertAfter bool, hint int) (int, error) {
	if origin == nil {
		return -1, nil
	}
	if insertAfter {
		return d.findItemAtEnd(origin, hint)
	}

	idx, err := d.findItem(origin, hint)
	if err != nil {
		return 0, err
	}
	if !d.Content[idx].ContentPresent {
		return idx, nil
	}

	marker := d.Content[idx]
	marker.ContentPresent = false
	marker.Content = ""
	d.splice(idx, marker)
	return idx, nil
}
