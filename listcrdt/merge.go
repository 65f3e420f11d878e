package listcrdt

import "fmt"

// MergeInto integrates every item of src not yet present in dest, and marks
// deleted in dest every item dest already holds that src has deleted. Items are
// not necessarily causally ready in src's own Content order from dest's
// point of view (dest may be missing an earlier prefix of some other
// agent's history), so this runs repeated passes over the still-pending
// set, integrating whatever becomes ready each pass, until either nothing
// is left pending or a full pass makes no progress. The latter means src's
// history is not causally self-consistent (an origin id that nothing in
// src or dest ever produced) and is reported as MergeStall rather than
// silently dropping items.
func MergeInto(dest, src *Doc) error {
	if dest.Algorithm != src.Algorithm {
		return newErr(UnsupportedOp, "cannot merge documents using different algorithms")
	}

	pending := make([]Item, 0, len(src.Content))
	for _, it := range src.Content {
		if !it.ContentPresent {
			// Tree-structure artifact of src (e.g. a Sync9 split marker);
			// integration will recreate it locally if a real item ever needs
			// to attach there, so it is never forwarded on its own.
			continue
		}
		if !dest.Version.Contains(it.ID) {
			pending = append(pending, it)
		} else if it.IsDeleted {
			id := it.ID
			idx, err := dest.findItemAtEnd(&id, -1)
			if err != nil {
				return err
			}
			if !dest.Content[idx].IsDeleted {
				dest.Content[idx].IsDeleted = true
				dest.length--
			}
		}
	}

	for len(pending) > 0 {
		next := pending[:0]
		progressed := false
		for _, it := range pending {
			if !dest.causallyReady(it) {
				next = append(next, it)
				continue
			}
			if err := dest.integrate(it, -1); err != nil {
				return err
			}
			progressed = true
		}
		pending = next
		if !progressed {
			return newErr(MergeStall,
				fmt.Sprintf("%d item(s) still causally blocked after a full pass", len(pending)))
		}
	}
	return nil
}

// causallyReady reports whether item's seq immediately follows what this
// document has already integrated for its agent, and both its origins (if
// present) have already been integrated.
func (d *Doc) causallyReady(item Item) bool {
	if int64(item.ID.Seq) != d.Version.Last(item.ID.Agent)+1 {
		return false
	}
	return d.Version.ContainsOptional(item.OriginLeft) && d.Version.ContainsOptional(item.OriginRight)
}
