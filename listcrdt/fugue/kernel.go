package fugue

import (
	"math"

	"github.com/crdtlab/listcrdt"
)

// LocalInsert inserts content at visible position pos as agent. OriginLeft
// and OriginRight are the neighbors neighborsAt observes right now; the
// actual tree edge is derived from them by integrate (via attachPoint), the
// same computation any other replica performs when this node reaches it.
func (d *Doc) LocalInsert(agent string, pos int, content string) (Node, error) {
	left, right, err := d.neighborsAt(pos)
	if err != nil {
		return Node{}, err
	}

	node := Node{
		ID:             listcrdt.Id{Agent: agent, Seq: uint64(d.Version.Last(agent) + 1)},
		Content:        content,
		ContentPresent: true,
		OriginLeft:     left,
		OriginRight:    right,
	}

	if err := d.integrate(node); err != nil {
		return Node{}, err
	}
	return node, nil
}

// LocalDelete marks the node at visible position pos deleted.
func (d *Doc) LocalDelete(agent string, pos int) error {
	id, err := d.idAtVisiblePosition(pos)
	if err != nil {
		return err
	}
	n := d.Nodes[*id]
	if !n.IsDeleted {
		n.IsDeleted = true
		d.length--
	}
	return nil
}

// Integrate admits a foreign node produced by another replica's LocalInsert
// (or relayed through a merge).
func (d *Doc) Integrate(node Node) error {
	return d.integrate(node)
}

func (d *Doc) integrate(node Node) error {
	expected := d.Version.Last(node.ID.Agent) + 1
	if int64(node.ID.Seq) != expected {
		return fugueErrID(listcrdt.CausalGap, node.ID, "seq is not version[agent]+1 (gap or replay)")
	}
	if node.OriginLeft != nil && !d.Version.Contains(*node.OriginLeft) {
		return fugueErrID(listcrdt.CausalGap, *node.OriginLeft, "originLeft not yet integrated")
	}
	if node.OriginRight != nil && !d.Version.Contains(*node.OriginRight) {
		return fugueErrID(listcrdt.CausalGap, *node.OriginRight, "originRight not yet integrated")
	}

	parent, side := d.attachPoint(node.OriginLeft, node.OriginRight)
	node.Parent = parent
	node.Side = side

	a := anchor{side: side}
	if parent != nil {
		a.parent = *parent
		a.hasParent = true
	}

	siblings := d.Children[a]
	i := 0
	if side == Left {
		// Left children: ordered by agent descending.
		for i < len(siblings) {
			if d.Nodes[siblings[i]].ID.Agent < node.ID.Agent {
				break
			}
			i++
		}
	} else {
		// Right children: ordered by their originRight's existing-list
		// position, descending (a reference further into the document sorts
		// closer to the parent); ties broken by agent descending.
		nodePos := d.rightOriginIndex(node.OriginRight)
		for i < len(siblings) {
			sib := d.Nodes[siblings[i]]
			sibPos := d.rightOriginIndex(sib.OriginRight)
			if nodePos > sibPos {
				break
			}
			if nodePos == sibPos && node.ID.Agent > sib.ID.Agent {
				break
			}
			i++
		}
	}
	siblings = append(siblings, listcrdt.Id{})
	copy(siblings[i+1:], siblings[i:])
	siblings[i] = node.ID
	d.Children[a] = siblings

	stored := node
	d.Nodes[node.ID] = &stored
	d.Version.Advance(node.ID)
	if stored.visible() {
		d.length++
	}
	return nil
}

// attachPoint derives the tree edge (parent, side) a node with the given
// origins attaches at. It is a pure function of already-integrated state,
// so every replica that has integrated originLeft and originRight computes
// the same edge regardless of when it does so: if originRight's own
// originLeft is originLeft itself (originRight was generated as a direct
// right-side neighbor of originLeft), the new node becomes a left child of
// originRight, landing between the two; otherwise it becomes a right child
// of originLeft (or the document root, if originLeft is absent).
func (d *Doc) attachPoint(left, right *listcrdt.Id) (*listcrdt.Id, Side) {
	if right != nil {
		if rn, ok := d.Nodes[*right]; ok && idsEqualOptional(rn.OriginLeft, left) {
			r := *right
			return &r, Left
		}
	}
	if left == nil {
		return nil, Right
	}
	l := *left
	return &l, Right
}

// rightOriginIndex returns id's position in the full in-order traversal
// (including deleted and content-absent nodes), used only to order
// concurrent Right-side siblings by where their author's observed right
// neighbor sits. An absent origin (the document's open end) sorts after
// every concrete position.
func (d *Doc) rightOriginIndex(id *listcrdt.Id) int {
	if id == nil {
		return math.MaxInt64
	}
	count := 0
	found := -1
	d.countToID(anchor{hasParent: false, side: Left}, *id, &count, &found)
	if found < 0 {
		d.countToID(anchor{hasParent: false, side: Right}, *id, &count, &found)
	}
	if found < 0 {
		return math.MaxInt64
	}
	return found
}

func (d *Doc) countToID(a anchor, target listcrdt.Id, count *int, found *int) {
	if *found >= 0 {
		return
	}
	for _, id := range d.Children[a] {
		d.countNode(id, target, count, found)
		if *found >= 0 {
			return
		}
	}
}

func (d *Doc) countNode(id listcrdt.Id, target listcrdt.Id, count *int, found *int) {
	if *found >= 0 {
		return
	}
	d.countToID(anchor{parent: id, hasParent: true, side: Left}, target, count, found)
	if *found >= 0 {
		return
	}
	if id.Equal(target) {
		*found = *count
		return
	}
	*count++
	d.countToID(anchor{parent: id, hasParent: true, side: Right}, target, count, found)
}

func fugueErrID(kind listcrdt.ErrorKind, id listcrdt.Id, msg string) error {
	return &listcrdt.Error{Kind: kind, Id: &id, Pos: -1, Msg: msg}
}
