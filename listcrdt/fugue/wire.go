package fugue

import (
	"github.com/crdtlab/listcrdt"
	"github.com/crdtlab/listcrdt/proto"
)

// ToWire reuses listcrdt's WireItem shape: OriginLeft/OriginRight carry
// straight across. Parent/Side are not transmitted — they are a pure
// function of OriginLeft/OriginRight (see attachPoint) that the receiver
// recomputes itself at integration time.
func ToWire(n Node) *proto.WireItem {
	w := &proto.WireItem{
		Agent:          n.ID.Agent,
		Seq:            n.ID.Seq,
		ContentPresent: n.ContentPresent,
		Content:        n.Content,
		IsDeleted:      n.IsDeleted,
	}
	if n.OriginLeft != nil {
		w.HasOriginLeft = true
		w.OriginLeftAgent = n.OriginLeft.Agent
		w.OriginLeftSeq = n.OriginLeft.Seq
	}
	if n.OriginRight != nil {
		w.HasOriginRight = true
		w.OriginRightAgent = n.OriginRight.Agent
		w.OriginRightSeq = n.OriginRight.Seq
	}
	return w
}

// FromWire reconstructs a Node from its wire form. Parent/Side are left
// zero-valued; Integrate derives them via attachPoint.
func FromWire(w *proto.WireItem) Node {
	n := Node{
		ID:             listcrdt.Id{Agent: w.Agent, Seq: w.Seq},
		Content:        w.Content,
		ContentPresent: w.ContentPresent,
		IsDeleted:      w.IsDeleted,
	}
	if w.HasOriginLeft {
		origin := listcrdt.Id{Agent: w.OriginLeftAgent, Seq: w.OriginLeftSeq}
		n.OriginLeft = &origin
	}
	if w.HasOriginRight {
		origin := listcrdt.Id{Agent: w.OriginRightAgent, Seq: w.OriginRightSeq}
		n.OriginRight = &origin
	}
	return n
}
