package fugue

import (
	"fmt"

	"github.com/crdtlab/listcrdt"
)

// MergeInto integrates every node of src not yet present in dest, using the
// same multi-pass causal-readiness approach as listcrdt.MergeInto: repeat
// until a pass places nothing, then report MergeStall if nodes remain.
// Nodes dest already holds are marked deleted when src has deleted them.
func MergeInto(dest, src *Doc) error {
	pending := make([]Node, 0, len(src.Nodes))
	for id, n := range src.Nodes {
		if !dest.Version.Contains(id) {
			pending = append(pending, *n)
		} else if n.IsDeleted {
			if dn, ok := dest.Nodes[id]; ok && !dn.IsDeleted {
				dn.IsDeleted = true
				if dn.ContentPresent {
					dest.length--
				}
			}
		}
	}

	for len(pending) > 0 {
		next := pending[:0]
		progressed := false
		for _, n := range pending {
			if !dest.causallyReady(n) {
				next = append(next, n)
				continue
			}
			if err := dest.integrate(n); err != nil {
				return err
			}
			progressed = true
		}
		pending = next
		if !progressed {
			return &listcrdt.Error{Kind: listcrdt.MergeStall, Pos: -1,
				Msg: fmt.Sprintf("%d node(s) still causally blocked after a full pass", len(pending))}
		}
	}
	return nil
}

func (d *Doc) causallyReady(n Node) bool {
	if int64(n.ID.Seq) != d.Version.Last(n.ID.Agent)+1 {
		return false
	}
	return d.Version.ContainsOptional(n.OriginLeft) && d.Version.ContainsOptional(n.OriginRight)
}
