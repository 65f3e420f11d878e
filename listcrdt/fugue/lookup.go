package fugue

import "github.com/crdtlab/listcrdt"

// VisibleIDAt returns the id of the pos'th visible node (0-based), for
// callers (e.g. LSET) that need to mutate a visible slot in place.
func (d *Doc) VisibleIDAt(pos int) (*listcrdt.Id, error) {
	return d.idAtVisiblePosition(pos)
}

// idAtVisiblePosition returns the id of the pos'th visible node (0-based),
// walking the in-order traversal and stopping at the first visible node
// seen after skipping pos of them.
func (d *Doc) idAtVisiblePosition(pos int) (*listcrdt.Id, error) {
	if pos < 0 || pos >= d.length {
		return nil, &listcrdt.Error{Kind: listcrdt.PositionOutOfRange, Pos: pos,
			Msg: "position exceeds visible length"}
	}
	seen := 0
	var found *listcrdt.Id
	d.visit(anchor{hasParent: false, side: Left}, &seen, pos, &found)
	if found == nil {
		d.visit(anchor{hasParent: false, side: Right}, &seen, pos, &found)
	}
	if found == nil {
		return nil, &listcrdt.Error{Kind: listcrdt.PositionOutOfRange, Pos: pos,
			Msg: "position not found despite length check"}
	}
	return found, nil
}

func (d *Doc) visit(a anchor, seen *int, target int, found **listcrdt.Id) {
	if *found != nil {
		return
	}
	for _, id := range d.Children[a] {
		d.visitNode(id, seen, target, found)
		if *found != nil {
			return
		}
	}
}

func (d *Doc) visitNode(id listcrdt.Id, seen *int, target int, found **listcrdt.Id) {
	if *found != nil {
		return
	}
	d.visit(anchor{parent: id, hasParent: true, side: Left}, seen, target, found)
	if *found != nil {
		return
	}
	n := d.Nodes[id]
	if n.visible() {
		if *seen == target {
			idCopy := id
			*found = &idCopy
			return
		}
		*seen++
	}
	d.visit(anchor{parent: id, hasParent: true, side: Right}, seen, target, found)
}

// neighborsAt returns the ids of the visible nodes immediately left and
// right of visible position pos, as observed right now by a local author
// generating an insert at that position.
func (d *Doc) neighborsAt(pos int) (left, right *listcrdt.Id, err error) {
	if pos < 0 || pos > d.length {
		return nil, nil, &listcrdt.Error{Kind: listcrdt.PositionOutOfRange, Pos: pos,
			Msg: "position exceeds visible length+1"}
	}
	if pos > 0 {
		id, err := d.idAtVisiblePosition(pos - 1)
		if err != nil {
			return nil, nil, err
		}
		left = id
	}
	if pos < d.length {
		id, err := d.idAtVisiblePosition(pos)
		if err != nil {
			return nil, nil, err
		}
		right = id
	}
	return left, right, nil
}
