package cluster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hashicorp/raft"
	raftboltdb "github.com/hashicorp/raft-boltdb"
	"go.uber.org/zap"

	"github.com/dropDatabas3/docuser/internal/domain/repository"
	appmetrics "github.com/dropDatabas3/docuser/internal/metrics"
	"github.com/dropDatabas3/docuser/internal/observability/logger"
)

const defaultApplyTimeout = 5 * time.Second

// Node es un wrapper liviano alrededor de *raft.Raft con helpers de
// Apply/Leader/Close y un constructor que arma stores, snapshots y transporte.
type Node struct {
	r            *raft.Raft
	applyTimeout time.Duration
	id           raft.ServerID
	addr         raft.ServerAddress
	closers      []io.Closer
	log          *zap.Logger

	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

type NodeOptions struct {
	NodeID   string            // identidad de este nodo
	RaftAddr string            // host:port del transporte TCP (ignorado con InMemory)
	RaftDir  string            // directorio de BoltDB y snapshots (ignorado con InMemory)
	FSM      raft.FSM          // implementación de FSM
	Peers    map[string]string // nodeID -> raftAddr; con más de uno se hace bootstrap estático

	ApplyTimeout time.Duration

	// InMemory usa InmemStore, InmemSnapshotStore e InmemTransport con timeouts cortos.
	InMemory bool
}

func NewNode(opts NodeOptions) (*Node, error) {
	if opts.NodeID == "" || opts.FSM == nil {
		return nil, errors.New("cluster: NodeID and FSM are required")
	}
	if !opts.InMemory && (opts.RaftAddr == "" || opts.RaftDir == "") {
		return nil, errors.New("cluster: RaftAddr and RaftDir are required")
	}

	log := logger.Named("cluster").With(zap.String("node_id", opts.NodeID))
	cfg := raft.DefaultConfig()
	cfg.LocalID = raft.ServerID(opts.NodeID)
	cfg.LogOutput = io.Discard

	var (
		logStore    raft.LogStore
		stableStore raft.StableStore
		snapStore   raft.SnapshotStore
		trans       raft.Transport
		closers     []io.Closer
	)

	if opts.InMemory {
		mem := raft.NewInmemStore()
		logStore, stableStore = mem, mem
		snapStore = raft.NewInmemSnapshotStore()
		_, trans = raft.NewInmemTransport(raft.ServerAddress(opts.RaftAddr))

		cfg.HeartbeatTimeout = 50 * time.Millisecond
		cfg.ElectionTimeout = 50 * time.Millisecond
		cfg.LeaderLeaseTimeout = 50 * time.Millisecond
		cfg.CommitTimeout = 5 * time.Millisecond
	} else {
		if err := os.MkdirAll(opts.RaftDir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir raft dir: %w", err)
		}
		// log + stable en la misma Bolt DB
		boltStore, err := raftboltdb.NewBoltStore(filepath.Join(opts.RaftDir, "raft.db"))
		if err != nil {
			return nil, fmt.Errorf("bolt store: %w", err)
		}
		logStore, stableStore = boltStore, boltStore
		closers = append(closers, boltStore)

		// Snapshots en disco (retenemos 2).
		fss, err := raft.NewFileSnapshotStore(opts.RaftDir, 2, io.Discard)
		if err != nil {
			_ = boltStore.Close()
			return nil, fmt.Errorf("snapshot store: %w", err)
		}
		snapStore = fss

		tcp, err := raft.NewTCPTransport(opts.RaftAddr, nil, 3, 10*time.Second, io.Discard)
		if err != nil {
			_ = boltStore.Close()
			return nil, fmt.Errorf("tcp transport: %w", err)
		}
		trans = tcp
		closers = append(closers, tcp)
	}

	r, err := raft.NewRaft(cfg, opts.FSM, logStore, stableStore, snapStore, trans)
	if err != nil {
		closeAll(closers)
		return nil, fmt.Errorf("new raft: %w", err)
	}

	// raft no cierra LeaderCh en Shutdown: la goroutine termina con done.
	done := make(chan struct{})
	go watchLeadership(r.LeaderCh(), done)

	hasState, err := raft.HasExistingState(logStore, stableStore, snapStore)
	if err != nil {
		close(done)
		_ = r.Shutdown().Error()
		closeAll(closers)
		return nil, fmt.Errorf("check state: %w", err)
	}
	if !hasState {
		if err := bootstrap(r, cfg.LocalID, trans.LocalAddr(), opts.Peers, log); err != nil {
			close(done)
			_ = r.Shutdown().Error()
			closeAll(closers)
			return nil, err
		}
	}

	timeout := opts.ApplyTimeout
	if timeout <= 0 {
		timeout = defaultApplyTimeout
	}
	return &Node{r: r, applyTimeout: timeout, id: cfg.LocalID, addr: trans.LocalAddr(), closers: closers, log: log, done: done}, nil
}

func watchLeadership(ch <-chan bool, done <-chan struct{}) {
	for {
		select {
		case <-done:
			appmetrics.RaftIsLeader.Set(0)
			return
		case leader := <-ch:
			if leader {
				appmetrics.RaftLeadershipChanges.Inc()
				appmetrics.RaftIsLeader.Set(1)
			} else {
				appmetrics.RaftIsLeader.Set(0)
			}
		}
	}
}

// bootstrap arma la configuración inicial. Single node por defecto; con peers
// estáticos solo bootstrapea el de menor NodeID y el resto espera ser contactado.
func bootstrap(r *raft.Raft, id raft.ServerID, addr raft.ServerAddress, peers map[string]string, log *zap.Logger) error {
	if len(peers) <= 1 {
		conf := raft.Configuration{Servers: []raft.Server{{ID: id, Address: addr}}}
		if err := r.BootstrapCluster(conf).Error(); err != nil {
			return fmt.Errorf("bootstrap: %w", err)
		}
		log.Info("bootstrapped single-node cluster", zap.String("addr", string(addr)))
		return nil
	}

	smallest := string(id)
	for k := range peers {
		if k < smallest {
			smallest = k
		}
	}
	if string(id) != smallest {
		log.Info("waiting to join static cluster", zap.String("bootstrapper", smallest))
		return nil
	}
	servers := make([]raft.Server, 0, len(peers))
	for pid, paddr := range peers {
		servers = append(servers, raft.Server{ID: raft.ServerID(pid), Address: raft.ServerAddress(paddr)})
	}
	if err := r.BootstrapCluster(raft.Configuration{Servers: servers}).Error(); err != nil {
		return fmt.Errorf("bootstrap(static): %w", err)
	}
	log.Info("bootstrapped static cluster", zap.Int("servers", len(servers)))
	return nil
}

// Apply serializa la mutación y espera commit o timeout.
func (n *Node) Apply(ctx context.Context, m Mutation) (uint64, error) {
	if n == nil || n.r == nil {
		return 0, errors.New("raft not initialized")
	}
	buf, err := json.Marshal(m)
	if err != nil {
		return 0, err
	}
	return n.ApplyBytes(ctx, buf)
}

// ApplyBytes envía bytes raw al log. Si la FSM retornó un error, se propaga.
func (n *Node) ApplyBytes(ctx context.Context, data []byte) (uint64, error) {
	if n == nil || n.r == nil {
		return 0, errors.New("raft not initialized")
	}
	start := time.Now()
	fut := n.r.Apply(data, n.applyTimeout)

	// Respetar cancelación de ctx mientras esperamos el futuro.
	done := make(chan struct{})
	var (
		applyErr error
		index    uint64
		resp     interface{}
	)
	go func() {
		applyErr = fut.Error()
		if applyErr == nil {
			index = fut.Index()
			resp = fut.Response()
		}
		close(done)
	}()

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-done:
		appmetrics.RaftApplyLatency.Observe(float64(time.Since(start).Milliseconds()))
		if errors.Is(applyErr, raft.ErrNotLeader) {
			return 0, fmt.Errorf("raft: apply: %w", repository.ErrNotLeader)
		}
		if applyErr != nil {
			return 0, applyErr
		}
		if err, ok := resp.(error); ok && err != nil {
			return index, err
		}
		return index, nil
	}
}

// WaitForLeader bloquea hasta que haya un leader conocido o ctx expire.
func (n *Node) WaitForLeader(ctx context.Context) error {
	t := time.NewTicker(20 * time.Millisecond)
	defer t.Stop()
	for {
		if addr, _ := n.r.LeaderWithID(); addr != "" {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("cluster: waiting for leader: %w", ctx.Err())
		case <-t.C:
		}
	}
}

func (n *Node) IsLeader() bool {
	if n == nil || n.r == nil {
		return false
	}
	return n.r.State() == raft.Leader
}

func (n *Node) LeaderID() string {
	if n == nil || n.r == nil {
		return ""
	}
	addr, id := n.r.LeaderWithID()
	if id != "" {
		return string(id)
	}
	return string(addr)
}

func (n *Node) NodeID() string   { return string(n.id) }
func (n *Node) RaftAddr() string { return string(n.addr) }

// Stats expone las estadísticas de raft.Raft.Stats().
func (n *Node) Stats() map[string]string {
	if n == nil || n.r == nil {
		return map[string]string{}
	}
	return n.r.Stats()
}

// Close apaga Raft, detiene el watcher de liderazgo y libera stores y
// transporte. Llamadas repetidas retornan el resultado de la primera.
func (n *Node) Close() error {
	if n == nil || n.r == nil {
		return nil
	}
	n.closeOnce.Do(func() {
		close(n.done)
		n.closeErr = n.r.Shutdown().Error()
		closeAll(n.closers)
	})
	return n.closeErr
}

func closeAll(cs []io.Closer) {
	for _, c := range cs {
		_ = c.Close()
	}
}
