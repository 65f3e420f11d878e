package listcrdt

import "fmt"

// LoadDoc reconstructs a document from a flat item set recovered from
// storage or the wire, in any order: items do not need to already be
// causally sorted, since this runs the same multi-pass readiness loop as
// MergeInto against an initially empty document.
func LoadDoc(algorithm Algorithm, items []Item) (*Doc, error) {
	d := NewDoc(algorithm)
	pending := items

	for len(pending) > 0 {
		next := pending[:0]
		progressed := false
		for _, it := range pending {
			if !d.causallyReady(it) {
				next = append(next, it)
				continue
			}
			if err := d.integrate(it, -1); err != nil {
				return nil, err
			}
			progressed = true
		}
		pending = next
		if !progressed {
			return nil, newErr(MergeStall,
				fmt.Sprintf("%d stored item(s) are not causally self-consistent", len(pending)))
		}
	}
	return d, nil
}
