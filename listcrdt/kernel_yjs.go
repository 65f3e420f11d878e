package listcrdt

// scanYjs is the upstream-compatible Yjs integration scan. Same
// scanning/not-scanning shape as scanYjsMod, but within the oleft == left
// branch agent id is compared before originRight: a higher agent id always
// exits scanning and advances past, regardless of originRight; only when
// the new item's agent loses that comparison does originRight equality
// decide between stopping (a true sibling tie) and entering scanning (o
// anchors a narrower, and therefore later-resolved, span). This is what
// resolves the forward/back-interleaving cases scanYjsMod leaves ambiguous.
func (d *Doc) scanYjs(item Item, leftIdx, rightIdx int) int {
	i := leftIdx + 1
	dest := i
	scanning := false
	for i < rightIdx {
		o := d.Content[i]
		oLeftIdx, _ := d.findItem(o.OriginLeft, -1)
		if oLeftIdx < leftIdx {
			break
		}
		if oLeftIdx > leftIdx {
			i++
			if !scanning {
				dest = i
			}
			continue
		}
		// oLeftIdx == leftIdx
		if item.ID.Agent > o.ID.Agent {
			scanning = false
			i++
			dest = i
			continue
		}
		oRightIdx, _ := d.findItem(o.OriginRight, -1)
		if oRightIdx < 0 {
			oRightIdx = len(d.Content)
		}
		if oRightIdx == rightIdx {
			break
		}
		scanning = true
		i++
	}
	return dest
}
