package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/crdtlab/listcrdt"
	"github.com/crdtlab/listcrdt/fugue"
	"github.com/crdtlab/listcrdt/proto"
)

// ErrUnsupportedMerge is returned when two list values cannot be merged
// structurally, e.g. because they were created under different algorithms.
// Value.Merge treats this as "leave the existing list as-is" rather than a
// fatal error, since a key's algorithm is fixed for its lifetime and this
// should only be reachable from a corrupted peer or a bad migration.
var ErrUnsupportedMerge = errors.New("storage: cannot merge lists using different algorithms")

// CRDTList is a Redis-list-shaped view over one of the five list-CRDT
// variants from package listcrdt. Which variant is fixed at creation
// (NewListValue) and never changes for the lifetime of the key; every
// command below is a thin translation from Redis list semantics (0-based
// visible position, LPUSH/RPUSH/LINSERT/...) onto the chosen variant's
// LocalInsert/LocalDelete/GetArray. The old from-scratch RGA linearizer
// this file used to carry (insertRGA/rebuildRGA) is gone — that's now
// listcrdt's job, for all five variants instead of just one.
type CRDTList struct {
	Algorithm listcrdt.Algorithm
	ReplicaID string

	doc   *listcrdt.Doc
	ftree *fugue.Doc
}

// NewCRDTList creates an empty list using the given variant. replicaID is
// the agent id this replica's local operations will be generated under.
func NewCRDTList(algorithm listcrdt.Algorithm, replicaID string) *CRDTList {
	l := &CRDTList{Algorithm: algorithm, ReplicaID: replicaID}
	if algorithm == listcrdt.Fugue {
		l.ftree = fugue.NewDoc()
	} else {
		l.doc = listcrdt.NewDoc(algorithm)
	}
	return l
}

// NewListValue creates a new Value for CRDT lists using algorithm.
func NewListValue(timestamp int64, replicaID string, algorithm listcrdt.Algorithm) *Value {
	vc := NewVectorClock()
	vc.Increment(replicaID)
	list := NewCRDTList(algorithm, replicaID)
	data, _ := json.Marshal(list)
	return &Value{
		Type:        TypeList,
		Data:        data,
		Timestamp:   timestamp,
		ReplicaID:   replicaID,
		VectorClock: vc,
	}
}

// List returns the CRDTList if type is TypeList.
func (v *Value) List() *CRDTList {
	if v.Type != TypeList {
		return nil
	}
	var list CRDTList
	if err := json.Unmarshal(v.Data, &list); err != nil {
		return nil
	}
	return &list
}

// SetList updates the list data and timestamp.
func (v *Value) SetList(list *CRDTList, timestamp int64) {
	if v.Type != TypeList {
		return
	}
	data, _ := json.Marshal(list)
	v.Data = data
	v.Timestamp = timestamp
}

// listWire is the on-disk/on-wire shape of a CRDTList: the algorithm tag
// plus a flat, order-independent item set (LoadDoc/fugue.LoadDoc replay it
// through the normal multi-pass integration path on load).
type listWire struct {
	Algorithm string            `json:"algorithm"`
	ReplicaID string            `json:"replica_id"`
	Items     []*proto.WireItem `json:"items"`
}

func (l *CRDTList) MarshalJSON() ([]byte, error) {
	w := listWire{Algorithm: l.Algorithm.String(), ReplicaID: l.ReplicaID}
	if l.Algorithm == listcrdt.Fugue {
		for _, n := range l.ftree.Nodes {
			w.Items = append(w.Items, fugue.ToWire(*n))
		}
	} else {
		for _, it := range l.doc.Content {
			w.Items = append(w.Items, listcrdt.ToWire(it))
		}
	}
	return json.Marshal(w)
}

func (l *CRDTList) UnmarshalJSON(data []byte) error {
	var w listWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	alg, ok := listcrdt.ParseAlgorithm(w.Algorithm)
	if !ok {
		return fmt.Errorf("storage: unknown list algorithm %q", w.Algorithm)
	}
	l.Algorithm = alg
	l.ReplicaID = w.ReplicaID

	if alg == listcrdt.Fugue {
		nodes := make([]fugue.Node, len(w.Items))
		for i, wi := range w.Items {
			nodes[i] = fugue.FromWire(wi)
		}
		doc, err := fugue.LoadDoc(nodes)
		if err != nil {
			return err
		}
		l.ftree = doc
		return nil
	}

	items := make([]listcrdt.Item, len(w.Items))
	for i, wi := range w.Items {
		items[i] = listcrdt.FromWire(wi)
	}
	doc, err := listcrdt.LoadDoc(alg, items)
	if err != nil {
		return err
	}
	l.doc = doc
	return nil
}

// Len returns the number of visible elements.
func (l *CRDTList) Len() int {
	if l.ftree != nil {
		return l.ftree.Length()
	}
	return l.doc.Length()
}

// VisibleElements returns the visible values in sequence order.
func (l *CRDTList) VisibleElements() []string {
	if l.ftree != nil {
		return l.ftree.GetArray()
	}
	return l.doc.GetArray()
}

func (l *CRDTList) insertAt(pos int, value string) error {
	_, err := l.insertAtWire(pos, value)
	return err
}

// insertAtWire is insertAt plus the wire form of the freshly created item,
// for callers that need to gossip the exact item produced (so a remote
// peer integrates the same causal unit rather than minting its own).
func (l *CRDTList) insertAtWire(pos int, value string) (*proto.WireItem, error) {
	if l.ftree != nil {
		n, err := l.ftree.LocalInsert(l.ReplicaID, pos, value)
		if err != nil {
			return nil, err
		}
		return fugue.ToWire(n), nil
	}
	it, err := l.doc.LocalInsert(l.ReplicaID, pos, value)
	if err != nil {
		return nil, err
	}
	return listcrdt.ToWire(it), nil
}

// IntegrateWire admits a foreign item produced by another replica's insert,
// as gossiped via proto.Operation.Item. Unlike Merge, this does not require
// a second full copy of the other replica's list — just the one item.
func (l *CRDTList) IntegrateWire(w *proto.WireItem) error {
	if l.ftree != nil {
		return l.ftree.Integrate(fugue.FromWire(w))
	}
	return l.doc.Integrate(listcrdt.FromWire(w), -1)
}

func (l *CRDTList) deleteAt(pos int) error {
	if l.ftree != nil {
		return l.ftree.LocalDelete(l.ReplicaID, pos)
	}
	return l.doc.LocalDelete(l.ReplicaID, pos)
}

// LPush adds values to the head of the list, one at a time, each landing
// just before the previous head (so the final order matches Redis LPUSH's
// "last argument ends up frontmost" semantics).
func (l *CRDTList) LPush(values ...string) (int, error) {
	for _, v := range values {
		if err := l.insertAt(0, v); err != nil {
			return l.Len(), err
		}
	}
	return l.Len(), nil
}

// RPush appends values to the tail of the list in argument order.
func (l *CRDTList) RPush(values ...string) (int, error) {
	for _, v := range values {
		if err := l.insertAt(l.Len(), v); err != nil {
			return l.Len(), err
		}
	}
	return l.Len(), nil
}

// LPushWire is LPush plus the wire form of each item created, one per
// value, in the same order as values.
func (l *CRDTList) LPushWire(values ...string) (int, []*proto.WireItem, error) {
	wires := make([]*proto.WireItem, 0, len(values))
	for _, v := range values {
		w, err := l.insertAtWire(0, v)
		if err != nil {
			return l.Len(), wires, err
		}
		wires = append(wires, w)
	}
	return l.Len(), wires, nil
}

// RPushWire is RPush plus the wire form of each item created.
func (l *CRDTList) RPushWire(values ...string) (int, []*proto.WireItem, error) {
	wires := make([]*proto.WireItem, 0, len(values))
	for _, v := range values {
		w, err := l.insertAtWire(l.Len(), v)
		if err != nil {
			return l.Len(), wires, err
		}
		wires = append(wires, w)
	}
	return l.Len(), wires, nil
}

// LPop removes and returns the first element.
func (l *CRDTList) LPop() (string, bool, error) {
	visible := l.VisibleElements()
	if len(visible) == 0 {
		return "", false, nil
	}
	if err := l.deleteAt(0); err != nil {
		return "", false, err
	}
	return visible[0], true, nil
}

// RPop removes and returns the last element.
func (l *CRDTList) RPop() (string, bool, error) {
	visible := l.VisibleElements()
	if len(visible) == 0 {
		return "", false, nil
	}
	if err := l.deleteAt(len(visible) - 1); err != nil {
		return "", false, err
	}
	return visible[len(visible)-1], true, nil
}

// Range returns elements in the specified range (Redis LRANGE semantics).
func (l *CRDTList) Range(start, stop int) []string {
	visible := l.VisibleElements()
	length := len(visible)

	if start < 0 {
		start = length + start
	}
	if stop < 0 {
		stop = length + stop
	}
	if start < 0 {
		start = 0
	}
	if start >= length {
		return []string{}
	}
	if stop >= length {
		stop = length - 1
	}
	if start > stop {
		return []string{}
	}
	return append([]string(nil), visible[start:stop+1]...)
}

// Index returns the element at the specified index (LINDEX command).
func (l *CRDTList) Index(index int) (string, bool) {
	visible := l.VisibleElements()
	length := len(visible)
	if index < 0 {
		index = length + index
	}
	if index < 0 || index >= length {
		return "", false
	}
	return visible[index], true
}

// Set updates the value at the specified index (LSET command). This
// rewrites the visible slot's content in place rather than delete+insert,
// so it does not disturb the CRDT structure or interact with concurrent
// inserts/deletes the way a delete+insert pair would.
func (l *CRDTList) Set(index int, value string) error {
	visible := l.VisibleElements()
	length := len(visible)
	if index < 0 {
		index = length + index
	}
	if index < 0 || index >= length {
		return fmt.Errorf("ERR index out of range")
	}
	if l.ftree != nil {
		id, err := l.ftree.VisibleIDAt(index)
		if err != nil {
			return err
		}
		l.ftree.Nodes[*id].Content = value
		return nil
	}
	idx, err := l.doc.VisibleContentIndex(index)
	if err != nil {
		return err
	}
	l.doc.Content[idx].Content = value
	return nil
}

// Insert inserts value before or after the first occurrence of pivot
// (LINSERT command). Returns the list length after insert, or -1 if pivot
// is not found.
func (l *CRDTList) Insert(pivot, value string, after bool) int {
	visible := l.VisibleElements()
	pivotIdx := -1
	for i, v := range visible {
		if v == pivot {
			pivotIdx = i
			break
		}
	}
	if pivotIdx == -1 {
		return -1
	}
	pos := pivotIdx
	if after {
		pos = pivotIdx + 1
	}
	if err := l.insertAt(pos, value); err != nil {
		return -1
	}
	return l.Len()
}

// InsertWire is Insert plus the wire form of the created item. Returns a
// nil item (with length -1) when pivot is not found.
func (l *CRDTList) InsertWire(pivot, value string, after bool) (int, *proto.WireItem, error) {
	visible := l.VisibleElements()
	pivotIdx := -1
	for i, v := range visible {
		if v == pivot {
			pivotIdx = i
			break
		}
	}
	if pivotIdx == -1 {
		return -1, nil, nil
	}
	pos := pivotIdx
	if after {
		pos = pivotIdx + 1
	}
	w, err := l.insertAtWire(pos, value)
	if err != nil {
		return -1, nil, err
	}
	return l.Len(), w, nil
}

// Trim trims the list to the visible range [start, stop] (LTRIM command).
func (l *CRDTList) Trim(start, stop int) error {
	visible := l.VisibleElements()
	length := len(visible)
	if length == 0 {
		return nil
	}
	if start < 0 {
		start = length + start
	}
	if stop < 0 {
		stop = length + stop
	}
	if start < 0 {
		start = 0
	}
	if stop >= length {
		stop = length - 1
	}

	keep := make([]bool, length)
	if start <= stop {
		for i := start; i <= stop; i++ {
			keep[i] = true
		}
	}
	// Delete back-to-front so earlier visible positions stay valid as we go.
	for i := length - 1; i >= 0; i-- {
		if !keep[i] {
			if err := l.deleteAt(i); err != nil {
				return err
			}
		}
	}
	return nil
}

// Rem removes elements equal to value (LREM command). count > 0 removes
// the first count occurrences head-to-tail, count < 0 removes the first
// |count| occurrences tail-to-head, count == 0 removes every occurrence.
// Returns the number removed.
func (l *CRDTList) Rem(count int, value string) (int, error) {
	visible := l.VisibleElements()
	maxRemove := count
	fromHead := count >= 0
	if count < 0 {
		maxRemove = -count
	}
	if count == 0 {
		maxRemove = len(visible)
	}

	var targets []int
	if fromHead {
		for i, v := range visible {
			if v == value && len(targets) < maxRemove {
				targets = append(targets, i)
			}
		}
	} else {
		for i := len(visible) - 1; i >= 0 && len(targets) < maxRemove; i-- {
			if visible[i] == value {
				targets = append(targets, i)
			}
		}
	}

	// Delete from the highest index down so earlier target indices stay valid.
	sortDescending(targets)
	removed := 0
	for _, idx := range targets {
		if err := l.deleteAt(idx); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func sortDescending(xs []int) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j] > xs[j-1]; j-- {
			xs[j], xs[j-1] = xs[j-1], xs[j]
		}
	}
}

// Merge folds another replica's list into this one.
func (l *CRDTList) Merge(other *CRDTList) error {
	if l.Algorithm != other.Algorithm {
		return ErrUnsupportedMerge
	}
	if l.ftree != nil {
		return fugue.MergeInto(l.ftree, other.ftree)
	}
	return listcrdt.MergeInto(l.doc, other.doc)
}
