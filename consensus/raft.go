package consensus

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/raft"
	raftboltdb "github.com/hashicorp/raft-boltdb"
)

// RaftNode manages a single Raft server: log, stable, and snapshot stores
// plus the TCP transport, wired to whatever raft.FSM the caller supplies.
// leaseFSM (behind consensus.RaftRegistry) is the only FSM built on top of it in this repo,
// but nothing here is specific to leasing.
type RaftNode struct {
	raft     *raft.Raft
	dataDir  string
	bindAddr string
	localID  string
}

// NewRaftNode creates and, if bootstrap is set, single-node-bootstraps a
// Raft server applying entries to fsm. bootstrap should be true only for
// the process forming a brand-new cluster; a node rejoining an existing
// one should pass false and reach the cluster via its transport instead.
func NewRaftNode(dataDir, bindAddr, localID string, fsm raft.FSM, bootstrap bool) (*RaftNode, error) {
	node := &RaftNode{
		dataDir:  dataDir,
		bindAddr: bindAddr,
		localID:  localID,
	}
	if err := node.initialize(fsm, bootstrap); err != nil {
		return nil, err
	}
	return node, nil
}

// initialize sets up the Raft node
func (n *RaftNode) initialize(fsm raft.FSM, bootstrap bool) error {
	if err := os.MkdirAll(n.dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create raft data dir: %v", err)
	}

	config := raft.DefaultConfig()
	config.LocalID = raft.ServerID(n.getNodeID())

	addr, err := net.ResolveTCPAddr("tcp", n.bindAddr)
	if err != nil {
		return fmt.Errorf("failed to resolve TCP address: %v", err)
	}

	transport, err := raft.NewTCPTransport(n.bindAddr, addr, 3, 10*time.Second, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create transport: %v", err)
	}

	snapshots, err := raft.NewFileSnapshotStore(n.dataDir, 2, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create snapshot store: %v", err)
	}

	logStore, err := raftboltdb.NewBoltStore(filepath.Join(n.dataDir, "raft-log.bolt"))
	if err != nil {
		return fmt.Errorf("failed to create log store: %v", err)
	}

	stableStore, err := raftboltdb.NewBoltStore(filepath.Join(n.dataDir, "raft-stable.bolt"))
	if err != nil {
		return fmt.Errorf("failed to create stable store: %v", err)
	}

	ra, err := raft.NewRaft(config, fsm, logStore, stableStore, snapshots, transport)
	if err != nil {
		return fmt.Errorf("failed to create raft: %v", err)
	}
	n.raft = ra

	if bootstrap {
		cfg := raft.Configuration{
			Servers: []raft.Server{
				{ID: config.LocalID, Address: transport.LocalAddr()},
			},
		}
		if err := ra.BootstrapCluster(cfg).Error(); err != nil && err != raft.ErrCantBootstrap {
			return fmt.Errorf("failed to bootstrap raft cluster: %v", err)
		}
	}

	return nil
}

// getNodeID returns this node's Raft server id: the configured localID if
// set, otherwise the hostname (fine for a single node per host).
func (n *RaftNode) getNodeID() string {
	if n.localID != "" {
		return n.localID
	}
	hostname, _ := os.Hostname()
	return hostname
}

// State returns the current state of the Raft node
func (n *RaftNode) State() raft.RaftState {
	return n.raft.State()
}

// Leader returns the current leader of the cluster
func (n *RaftNode) Leader() string {
	return string(n.raft.Leader())
}

// Close shuts down the Raft node
func (n *RaftNode) Close() error {
	future := n.raft.Shutdown()
	return future.Error()
}
