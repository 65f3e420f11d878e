package listcrdt

import "github.com/crdtlab/listcrdt/proto"

// ToWire flattens an Item into the language-independent record that
// travels between peers (network/protocol) and into the operation log.
func ToWire(item Item) *proto.WireItem {
	w := &proto.WireItem{
		Agent:          item.ID.Agent,
		Seq:            item.ID.Seq,
		ItemSeq:        item.Seq,
		InsertAfter:    item.InsertAfter,
		ContentPresent: item.ContentPresent,
		Content:        item.Content,
		IsDeleted:      item.IsDeleted,
	}
	if item.OriginLeft != nil {
		w.HasOriginLeft = true
		w.OriginLeftAgent = item.OriginLeft.Agent
		w.OriginLeftSeq = item.OriginLeft.Seq
	}
	if item.OriginRight != nil {
		w.HasOriginRight = true
		w.OriginRightAgent = item.OriginRight.Agent
		w.OriginRightSeq = item.OriginRight.Seq
	}
	return w
}

// FromWire reconstructs an Item from its wire form.
func FromWire(w *proto.WireItem) Item {
	item := Item{
		ID:             Id{Agent: w.Agent, Seq: w.Seq},
		Content:        w.Content,
		ContentPresent: w.ContentPresent,
		Seq:            w.ItemSeq,
		InsertAfter:    w.InsertAfter,
		IsDeleted:      w.IsDeleted,
	}
	if w.HasOriginLeft {
		item.OriginLeft = &Id{Agent: w.OriginLeftAgent, Seq: w.OriginLeftSeq}
	}
	if w.HasOriginRight {
		item.OriginRight = &Id{Agent: w.OriginRightAgent, Seq: w.OriginRightSeq}
	}
	return item
}
