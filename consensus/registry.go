package consensus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/raft"
)

// AgentRegistry leases a stable list-CRDT agent id to a process, so that
// two processes sharing a replica identity never race for the same agent
// id after a restart or a rejoin.
type AgentRegistry interface {
	Lease(ctx context.Context, processID string) (string, error)
	Close() error
}

// leaseCommand is the Raft log entry RaftRegistry proposes and leaseFSM
// applies.
type leaseCommand struct {
	ProcessID string `json:"process_id"`
	AgentID   string `json:"agent_id"`
}

// leaseFSM is the Raft-replicated state: a durable processID -> agentID
// map. Every server in the cluster applies the same sequence of
// leaseCommands in the same order, so the map converges identically
// everywhere. A command for a processID that is already leased is a no-op
// that returns the existing lease, so a retried or duplicated propose never
// changes an already-leased agent id out from under its process.
type leaseFSM struct {
	mu     sync.Mutex
	leases map[string]string
}

func newLeaseFSM() *leaseFSM {
	return &leaseFSM{leases: make(map[string]string)}
}

func (f *leaseFSM) Apply(entry *raft.Log) interface{} {
	var cmd leaseCommand
	if err := json.Unmarshal(entry.Data, &cmd); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.leases[cmd.ProcessID]; ok {
		return existing
	}
	f.leases[cmd.ProcessID] = cmd.AgentID
	return cmd.AgentID
}

func (f *leaseFSM) Snapshot() (raft.FSMSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := make(map[string]string, len(f.leases))
	for k, v := range f.leases {
		clone[k] = v
	}
	return &leaseSnapshot{leases: clone}, nil
}

func (f *leaseFSM) Restore(rc io.ReadCloser) error {
	defer rc.Close()
	leases := make(map[string]string)
	if err := json.NewDecoder(rc).Decode(&leases); err != nil && err != io.EOF {
		return err
	}
	f.mu.Lock()
	f.leases = leases
	f.mu.Unlock()
	return nil
}

type leaseSnapshot struct {
	leases map[string]string
}

func (s *leaseSnapshot) Persist(sink raft.SnapshotSink) error {
	if err := json.NewEncoder(sink).Encode(s.leases); err != nil {
		sink.Cancel()
		return err
	}
	return sink.Close()
}

func (s *leaseSnapshot) Release() {}

// RaftRegistry is an AgentRegistry backed by a Raft-replicated leaseFSM.
type RaftRegistry struct {
	node    *RaftNode
	fsm     *leaseFSM
	timeout time.Duration
}

// NewRaftRegistry starts (or, with bootstrap false, joins) a Raft cluster
// whose only job is leasing agent ids. localID must be unique within the
// cluster; bootstrap should be true exactly once, for the node forming it.
func NewRaftRegistry(dataDir, bindAddr, localID string, bootstrap bool) (*RaftRegistry, error) {
	fsm := newLeaseFSM()
	node, err := NewRaftNode(dataDir, bindAddr, localID, fsm, bootstrap)
	if err != nil {
		return nil, err
	}
	return &RaftRegistry{node: node, fsm: fsm, timeout: 10 * time.Second}, nil
}

// Lease returns the agent id leased to processID, proposing a fresh uuid
// through Raft the first time processID asks. Concurrent proposals for the
// same processID (e.g. two racing startups) converge on whichever commits
// first — leaseFSM.Apply returns the committed lease, not necessarily the
// caller's own proposal, so every caller ends up with the same answer.
func (r *RaftRegistry) Lease(ctx context.Context, processID string) (string, error) {
	cmd := leaseCommand{ProcessID: processID, AgentID: uuid.NewString()}
	data, err := json.Marshal(cmd)
	if err != nil {
		return "", fmt.Errorf("consensus: encode lease proposal: %v", err)
	}
	future := r.node.raft.Apply(data, r.timeout)
	if err := future.Error(); err != nil {
		return "", fmt.Errorf("consensus: lease propose failed: %v", err)
	}
	switch resp := future.Response().(type) {
	case string:
		return resp, nil
	case error:
		return "", resp
	default:
		return "", fmt.Errorf("consensus: unexpected lease response %T", resp)
	}
}

func (r *RaftRegistry) Close() error {
	return r.node.Close()
}

// LocalRegistry is the AgentRegistry main.go uses when it runs without
// -agent-raft: the first Lease call for a processID mints a fresh uuid with
// no coordination, and later calls for that processID return the same one
// (kept in memory only).
type LocalRegistry struct {
	mu     sync.Mutex
	leases map[string]string
}

// NewLocalRegistry returns an AgentRegistry with no Raft dependency.
func NewLocalRegistry() *LocalRegistry {
	return &LocalRegistry{leases: make(map[string]string)}
}

func (r *LocalRegistry) Lease(_ context.Context, processID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.leases[processID]; ok {
		return id, nil
	}
	id := uuid.NewString()
	r.leases[processID] = id
	return id, nil
}

func (r *LocalRegistry) Close() error { return nil }

var (
	_ AgentRegistry = (*RaftRegistry)(nil)
	_ AgentRegistry = (*LocalRegistry)(nil)
)
