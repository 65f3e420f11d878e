package listcrdt

// scanYjsMod is the simplified Yjs integration scan: a scanning/not-scanning
// state machine over the items between leftIdx and rightIdx. While not
// scanning, the destination tracks the cursor; entering scanning freezes the
// destination at whatever it last was while the cursor keeps looking for the
// point it should actually land. Comparisons are made first on each
// candidate's own originLeft, then — when that ties with item's — on its
// originRight, then — when that also ties — on agent id (lower agent id
// stops the scan and wins the earlier position).
func (d *Doc) scanYjsMod(item Item, leftIdx, rightIdx int) int {
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
		oRightIdx, _ := d.findItem(o.OriginRight, -1)
		if oRightIdx < 0 {
			oRightIdx = len(d.Content)
		}
		if oRightIdx < rightIdx {
			scanning = true
			i++
			continue
		}
		if oRightIdx == rightIdx {
			if item.ID.Agent < o.ID.Agent {
				break
			}
			scanning = false
			i++
			dest = i
			continue
		}
		// oRightIdx > rightIdx
		scanning = false
		i++
		dest = i
	}
	return dest
}
