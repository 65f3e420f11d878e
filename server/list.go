package server

import (
	"context"
	"fmt"
	"time"

	"github.com/crdtlab/listcrdt"
	"github.com/crdtlab/listcrdt/proto"
	"github.com/crdtlab/listcrdt/storage"
)

// getList loads the CRDTList stored at key, creating one under the
// server's configured algorithm if the key is absent. It returns an error
// if the key exists but holds a non-list value (Redis WRONGTYPE semantics).
func (s *Server) getList(key string) (*storage.Value, *storage.CRDTList, error) {
	val, exists, err := s.store.Get(context.Background(), key)
	if err != nil {
		return nil, nil, err
	}
	if !exists {
		val = storage.NewListValue(time.Now().UnixNano(), s.replicaID, s.listAlgorithm)
		return val, val.List(), nil
	}
	if val.Type != storage.TypeList {
		return nil, nil, fmt.Errorf("WRONGTYPE Operation against a key holding the wrong kind of value")
	}
	list := val.List()
	if list == nil {
		return nil, nil, fmt.Errorf("ERR corrupt list value for key %q", key)
	}
	return val, list, nil
}

// persistList writes list's current state back into val and the store.
func (s *Server) persistList(key string, val *storage.Value, list *storage.CRDTList) error {
	val.SetList(list, time.Now().UnixNano())
	if err := s.store.Set(context.Background(), key, val, nil); err != nil {
		return fmt.Errorf("failed to set list: %v", err)
	}
	return nil
}

// logAndBroadcast appends op to the local operation log and fans it out to
// connected peers.
func (s *Server) logAndBroadcast(op *proto.Operation) error {
	if err := s.opLog.AddOperation(op); err != nil {
		return fmt.Errorf("failed to log operation: %v", err)
	}
	s.peerManager.Broadcast(op)
	return nil
}

// broadcastListInsert logs and broadcasts one item produced by a local
// insert. item carries the exact causal unit (agent, seq, origins) so a
// peer integrates the same item rather than minting its own.
func (s *Server) broadcastListInsert(key, command, value, algorithm string, item *proto.WireItem) error {
	timestamp := time.Now().UnixNano()
	op := &proto.Operation{
		OperationId: fmt.Sprintf("%d-%s-%s-%d", timestamp, key, item.Agent, item.Seq),
		Type:        proto.OperationType_LIST_INSERT,
		Command:     command,
		Args:        []string{key, value},
		Timestamp:   timestamp,
		ReplicaId:   s.replicaID,
		Key:         key,
		Algorithm:   algorithm,
		Item:        item,
	}
	return s.logAndBroadcast(op)
}

// broadcastListDelete logs and broadcasts a delete-shaped list mutation for
// audit and liveness. Per proto.OperationType_LIST_DELETE, this does not
// carry an Item and is not replayed structurally on the receiving peer: a
// position names different elements once two replicas' lists have
// diverged, so blindly replaying "delete position N" elsewhere would
// silently remove the wrong item. storage.CRDTList.Merge can reconcile two
// full list copies structurally when one is available; nothing in this
// build schedules that merge automatically for deletes.
func (s *Server) broadcastListDelete(key, command string, args []string, algorithm string) error {
	timestamp := time.Now().UnixNano()
	op := &proto.Operation{
		OperationId: fmt.Sprintf("%d-%s", timestamp, key),
		Type:        proto.OperationType_LIST_DELETE,
		Command:     command,
		Args:        args,
		Timestamp:   timestamp,
		ReplicaId:   s.replicaID,
		Key:         key,
		Algorithm:   algorithm,
	}
	return s.logAndBroadcast(op)
}

// LPush implements the LPUSH command.
func (s *Server) LPush(key string, values ...string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	val, list, err := s.getList(key)
	if err != nil {
		return 0, err
	}
	n, wires, err := list.LPushWire(values...)
	if err != nil {
		return int64(n), err
	}
	if err := s.persistList(key, val, list); err != nil {
		return int64(n), err
	}
	for i, w := range wires {
		if err := s.broadcastListInsert(key, "LPUSH", values[i], list.Algorithm.String(), w); err != nil {
			return int64(n), err
		}
	}
	return int64(n), nil
}

// RPush implements the RPUSH command.
func (s *Server) RPush(key string, values ...string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	val, list, err := s.getList(key)
	if err != nil {
		return 0, err
	}
	n, wires, err := list.RPushWire(values...)
	if err != nil {
		return int64(n), err
	}
	if err := s.persistList(key, val, list); err != nil {
		return int64(n), err
	}
	for i, w := range wires {
		if err := s.broadcastListInsert(key, "RPUSH", values[i], list.Algorithm.String(), w); err != nil {
			return int64(n), err
		}
	}
	return int64(n), nil
}

// LPop implements the LPOP command.
func (s *Server) LPop(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	val, list, err := s.getList(key)
	if err != nil {
		return "", false, err
	}
	v, ok, err := list.LPop()
	if err != nil || !ok {
		return "", ok, err
	}
	if err := s.persistList(key, val, list); err != nil {
		return v, ok, err
	}
	if err := s.broadcastListDelete(key, "LPOP", []string{key}, list.Algorithm.String()); err != nil {
		return v, ok, err
	}
	return v, true, nil
}

// RPop implements the RPOP command.
func (s *Server) RPop(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	val, list, err := s.getList(key)
	if err != nil {
		return "", false, err
	}
	v, ok, err := list.RPop()
	if err != nil || !ok {
		return "", ok, err
	}
	if err := s.persistList(key, val, list); err != nil {
		return v, ok, err
	}
	if err := s.broadcastListDelete(key, "RPOP", []string{key}, list.Algorithm.String()); err != nil {
		return v, ok, err
	}
	return v, true, nil
}

// LRange implements the LRANGE command.
func (s *Server) LRange(key string, start, stop int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists, err := s.store.Get(context.Background(), key)
	if err != nil {
		return nil, err
	}
	if !exists {
		return []string{}, nil
	}
	_, list, err := s.getList(key)
	if err != nil {
		return nil, err
	}
	return list.Range(start, stop), nil
}

// LLen implements the LLEN command.
func (s *Server) LLen(key string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists, err := s.store.Get(context.Background(), key)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}
	_, list, err := s.getList(key)
	if err != nil {
		return 0, err
	}
	return int64(list.Len()), nil
}

// LIndex implements the LINDEX command.
func (s *Server) LIndex(key string, index int) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists, err := s.store.Get(context.Background(), key)
	if err != nil {
		return "", false, err
	}
	if !exists {
		return "", false, nil
	}
	_, list, err := s.getList(key)
	if err != nil {
		return "", false, err
	}
	v, ok := list.Index(index)
	return v, ok, nil
}

// LSet implements the LSET command. The rewrite is in-place content, not a
// new item, so it is logged for audit but not replayed structurally on
// peers; no list merge runs afterwards, so peers keep their old content for
// that slot.
func (s *Server) LSet(key string, index int, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	val, exists, err := s.store.Get(context.Background(), key)
	if err != nil {
		return err
	}
	if !exists || val.Type != storage.TypeList {
		return fmt.Errorf("ERR no such key")
	}
	list := val.List()
	if err := list.Set(index, value); err != nil {
		return err
	}
	if err := s.persistList(key, val, list); err != nil {
		return err
	}
	return s.broadcastListDelete(key, "LSET", []string{key, fmt.Sprintf("%d", index), value}, list.Algorithm.String())
}

// LInsert implements the LINSERT command. before selects BEFORE vs AFTER
// pivot. Returns the list length after insert, or -1 if pivot was not
// found.
func (s *Server) LInsert(key string, before bool, pivot, value string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	val, list, err := s.getList(key)
	if err != nil {
		return 0, err
	}
	n, w, err := list.InsertWire(pivot, value, !before)
	if err != nil {
		return -1, err
	}
	if n == -1 {
		return -1, nil
	}
	if err := s.persistList(key, val, list); err != nil {
		return int64(n), err
	}
	if err := s.broadcastListInsert(key, "LINSERT", value, list.Algorithm.String(), w); err != nil {
		return int64(n), err
	}
	return int64(n), nil
}

// LTrim implements the LTRIM command.
func (s *Server) LTrim(key string, start, stop int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	val, exists, err := s.store.Get(context.Background(), key)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	if val.Type != storage.TypeList {
		return fmt.Errorf("WRONGTYPE Operation against a key holding the wrong kind of value")
	}
	list := val.List()
	if err := list.Trim(start, stop); err != nil {
		return err
	}
	if err := s.persistList(key, val, list); err != nil {
		return err
	}
	return s.broadcastListDelete(key, "LTRIM", []string{key, fmt.Sprintf("%d", start), fmt.Sprintf("%d", stop)}, list.Algorithm.String())
}

// LRem implements the LREM command.
func (s *Server) LRem(key string, count int, value string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	val, exists, err := s.store.Get(context.Background(), key)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}
	if val.Type != storage.TypeList {
		return 0, fmt.Errorf("WRONGTYPE Operation against a key holding the wrong kind of value")
	}
	list := val.List()
	removed, err := list.Rem(count, value)
	if err != nil {
		return int64(removed), err
	}
	if removed == 0 {
		return 0, nil
	}
	if err := s.persistList(key, val, list); err != nil {
		return int64(removed), err
	}
	if err := s.broadcastListDelete(key, "LREM", []string{key, fmt.Sprintf("%d", count), value}, list.Algorithm.String()); err != nil {
		return int64(removed), err
	}
	return int64(removed), nil
}

// applyListOperation handles a LIST_INSERT/LIST_DELETE operation received
// from a peer. Inserts carry the originating item (op.Item) and are
// integrated directly into the local document so the receiver converges on
// the sender's actual causal unit. Deletes and in-place rewrites carry no
// Item and are intentionally left as a no-op here — see broadcastListDelete.
func (s *Server) applyListOperation(op *proto.Operation) error {
	if op.Key == "" {
		return fmt.Errorf("invalid list operation: missing key")
	}
	if op.Item == nil {
		return nil
	}

	val, exists, err := s.store.Get(context.Background(), op.Key)
	if err != nil {
		return err
	}
	var list *storage.CRDTList
	if !exists {
		alg, ok := listcrdt.ParseAlgorithm(op.Algorithm)
		if !ok {
			alg = s.listAlgorithm
		}
		val = storage.NewListValue(op.Timestamp, op.ReplicaId, alg)
		list = val.List()
	} else if val.Type != storage.TypeList {
		return fmt.Errorf("WRONGTYPE: %q is not a list", op.Key)
	} else {
		list = val.List()
	}

	if err := list.IntegrateWire(op.Item); err != nil {
		return err
	}
	val.SetList(list, op.Timestamp)
	return s.store.Set(context.Background(), op.Key, val, nil)
}
