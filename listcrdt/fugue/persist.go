package fugue

import (
	"fmt"

	"github.com/crdtlab/listcrdt"
)

// LoadDoc reconstructs a Fugue document from a node set recovered from
// storage or the wire, using the same multi-pass readiness loop as
// MergeInto against an initially empty document.
func LoadDoc(nodes []Node) (*Doc, error) {
	d := NewDoc()
	pending := nodes

	for len(pending) > 0 {
		next := pending[:0]
		progressed := false
		for _, n := range pending {
			if !d.causallyReady(n) {
				next = append(next, n)
				continue
			}
			if err := d.integrate(n); err != nil {
				return nil, err
			}
			progressed = true
		}
		pending = next
		if !progressed {
			return nil, &listcrdt.Error{Kind: listcrdt.MergeStall, Pos: -1,
				Msg: fmt.Sprintf("%d stored node(s) are not causally self-consistent", len(pending))}
		}
	}
	return d, nil
}
