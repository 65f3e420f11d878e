package listcrdt

// scanRGA is the RGA/Automerge integration scan: siblings sharing the same
// originLeft (direct children of the same parent) are ordered by
// descending Seq, then by ascending agent id on a Seq tie. Automerge
// itself inverts the agent comparison relative to this package's ascending
// convention; callers that need Automerge-identical output remap agent ids
// through listcrdt/oracle.InvertAgentForAutomerge before generating, rather
// than this kernel special-casing it.
func (d *Doc) scanRGA(item Item, leftIdx, rightIdx int) int {
	i := leftIdx + 1
	for i < rightIdx {
		o := d.Content[i]
		oLeftIdx, _ := d.findItem(o.OriginLeft, -1)
		if oLeftIdx < leftIdx {
			break
		}
		if oLeftIdx == leftIdx {
			if o.Seq > item.Seq {
				i++
				continue
			}
			if o.Seq == item.Seq && o.ID.Agent < item.ID.Agent {
				i++
				continue
			}
			break
		}
		// A descendant of a later sibling: still inside the subtree rooted
		// at leftIdx, skip past it to keep scanning direct siblings.
		i++
	}
	return i
}
