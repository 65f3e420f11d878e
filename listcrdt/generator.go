package listcrdt

// generate maps a user-visible position and content into an item with the
// origin fields the document's algorithm needs. It never splices directly
// — the caller always hands the result to integrate.
func (d *Doc) generate(agent string, pos int, content string) (Item, error) {
	id := Id{Agent: agent, Seq: uint64(d.Version.Last(agent) + 1)}

	switch d.Algorithm {
	case YjsClassic, YjsMod:
		left, right, err := d.neighborsAt(pos)
		if err != nil {
			return Item{}, err
		}
		return Item{
			Content: content, ContentPresent: true,
			ID: id, OriginLeft: left, OriginRight: right,
		}, nil

	case RGA:
		left, _, err := d.neighborsAt(pos)
		if err != nil {
			return Item{}, err
		}
		return Item{
			Content: content, ContentPresent: true,
			ID: id, OriginLeft: left, Seq: d.MaxSeq + 1,
		}, nil

	case Sync9:
		return d.generateSync9(id, pos, content)

	default:
		panic("listcrdt: unsupported algorithm for array generator")
	}
}

// generateSync9 attaches the new item after the left visible neighbor
// (insertAfter true) or, lacking one, before the right visible neighbor
// (insertAfter false), or at the root of an empty document. It does not walk
// forward across the left neighbor's existing children, so insertAfter is
// set once from which neighbor exists, never toggled at split points.
func (d *Doc) generateSync9(id Id, pos int, content string) (Item, error) {
	left, right, err := d.neighborsAt(pos)
	if err != nil {
		return Item{}, err
	}
	item := Item{Content: content, ContentPresent: true, ID: id}
	switch {
	case left != nil:
		item.OriginLeft = left
		item.InsertAfter = true
	case right != nil:
		item.OriginLeft = right
		item.InsertAfter = false
	default:
		item.OriginLeft = nil
		item.InsertAfter = true
	}
	return item, nil
}
