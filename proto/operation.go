package proto

// OperationType identifies the kind of mutation carried by an Operation.
//
// The teacher project generated this enum (and Operation/OperationBatch)
// with protoc-gen-go from operation.proto. We no longer run protoc in this
// build, so the wire types are hand-written here instead of regenerated;
// see DESIGN.md for why. The JSON tags below are what actually travels
// between peers (network/protocol/codec.go), matching the teacher's
// JSON-first habit everywhere else (ListElement, Message, Config).
type OperationType int32

const (
	OperationType_SET    OperationType = 0
	OperationType_DELETE OperationType = 1
	OperationType_INCR   OperationType = 2

	// List operations. These exist to log and gossip locally-applied list
	// mutations one at a time, not to merge whole lists structurally.
	OperationType_LIST_INSERT OperationType = 10
	OperationType_LIST_DELETE OperationType = 11
)

func (t OperationType) String() string {
	switch t {
	case OperationType_SET:
		return "SET"
	case OperationType_DELETE:
		return "DELETE"
	case OperationType_INCR:
		return "INCR"
	case OperationType_LIST_INSERT:
		return "LIST_INSERT"
	case OperationType_LIST_DELETE:
		return "LIST_DELETE"
	default:
		return "UNKNOWN"
	}
}

// Operation is a single logged/gossiped mutation.
//
// Item carries a list-CRDT wire item (WireItem, below) when Type is one
// of the LIST_* operations; it is nil for scalar/counter operations, which
// continue to use Args the way the teacher's SET/INCR commands always did.
type Operation struct {
	OperationId string        `json:"operation_id"`
	Timestamp   int64         `json:"timestamp"`
	ReplicaId   string        `json:"replica_id"`
	Command     string        `json:"command"`
	Args        []string      `json:"args,omitempty"`
	Type        OperationType `json:"type"`
	Key         string        `json:"key,omitempty"`
	Algorithm   string        `json:"algorithm,omitempty"`
	Item        *WireItem     `json:"item,omitempty"`
}

// OperationBatch is a group of operations exchanged in a single sync round.
type OperationBatch struct {
	Operations []*Operation `json:"operations"`
}

// WireItem is the language-independent list-CRDT item record from the
// specification's External Interfaces section, given a concrete JSON shape.
type WireItem struct {
	Agent            string `json:"agent"`
	Seq              uint64 `json:"seq"`
	OriginLeftAgent  string `json:"originLeftAgent,omitempty"`
	OriginLeftSeq    uint64 `json:"originLeftSeq,omitempty"`
	HasOriginLeft    bool   `json:"hasOriginLeft,omitempty"`
	OriginRightAgent string `json:"originRightAgent,omitempty"`
	OriginRightSeq   uint64 `json:"originRightSeq,omitempty"`
	HasOriginRight   bool   `json:"hasOriginRight,omitempty"`
	ItemSeq          uint64 `json:"itemSeq,omitempty"`
	InsertAfter      bool   `json:"insertAfter,omitempty"`
	ContentPresent   bool   `json:"contentPresent"`
	Content          string `json:"content,omitempty"`
	IsDeleted        bool   `json:"isDeleted,omitempty"`
}
