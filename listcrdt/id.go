// Package listcrdt implements the insert-position integration algorithms
// for five list-CRDT variants (YjsClassic, YjsMod, RGA/Automerge, Sync9,
// Fugue). The hard part — given a new insert whose author observed certain
// neighbors, where in the merged sequence it belongs — lives in the kernel_*
// files; everything else here is supporting plumbing.
package listcrdt

import "fmt"

// Id identifies a single item: the agent that created it, and that agent's
// local sequence number at creation time. Agent-local items arrive in
// strict Seq order.
type Id struct {
	Agent string `json:"agent"`
	Seq   uint64 `json:"seq"`
}

// Equal reports whether two ids name the same item.
func (id Id) Equal(other Id) bool {
	return id.Agent == other.Agent && id.Seq == other.Seq
}

func (id Id) String() string {
	return fmt.Sprintf("%s@%d", id.Agent, id.Seq)
}

// idsEqual compares two optional ids (nil meaning "absent", i.e. virtual
// document start/end).
func idsEqual(a, b *Id) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
