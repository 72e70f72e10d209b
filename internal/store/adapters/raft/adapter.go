// Package raft implementa un store de documentos replicado con hashicorp/raft.
// Las escrituras pasan por el log (solo en el leader); las lecturas salen de
// la FSM local y pueden estar levemente atrasadas en followers.
package raft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dropDatabas3/docuser/internal/cluster"
	"github.com/dropDatabas3/docuser/internal/domain/repository"
	"github.com/dropDatabas3/docuser/internal/store/docstore"
)

func init() {
	docstore.RegisterAdapter(&raftAdapter{})
}

const leaderWait = 10 * time.Second

type raftAdapter struct{}

func (a *raftAdapter) Name() string { return "raft" }

func (a *raftAdapter) Open(ctx context.Context, cfg docstore.Config) (docstore.Store, error) {
	return Open(ctx, cfg.Raft)
}

// Store es un docstore sobre un Node de Raft y su FSM.
type Store struct {
	node   *cluster.Node
	fsm    *cluster.FSM
	closed atomic.Bool
}

// Open levanta el nodo y espera a que haya leader (o ctx/leaderWait expire).
func Open(ctx context.Context, cfg docstore.RaftConfig) (*Store, error) {
	if cfg.NodeID == "" {
		return nil, errors.New("raft: node id is required")
	}
	fsm := cluster.NewFSM()
	node, err := cluster.NewNode(cluster.NodeOptions{
		NodeID:       cfg.NodeID,
		RaftAddr:     cfg.Addr,
		RaftDir:      cfg.Dir,
		FSM:          fsm,
		Peers:        cfg.Peers,
		ApplyTimeout: cfg.ApplyTimeout,
		InMemory:     cfg.InMemory,
	})
	if err != nil {
		return nil, fmt.Errorf("raft: %w", err)
	}

	wctx, cancel := context.WithTimeout(ctx, leaderWait)
	defer cancel()
	if err := node.WaitForLeader(wctx); err != nil {
		_ = node.Close()
		return nil, fmt.Errorf("raft: %w", err)
	}
	return &Store{node: node, fsm: fsm}, nil
}

func (s *Store) Name() string { return "raft" }

func (s *Store) Collection(name string) docstore.Collection {
	return &collection{s: s, name: name}
}

// Node expone el nodo subyacente (stats, leader).
func (s *Store) Node() *cluster.Node { return s.node }

// Ping falla si el store está cerrado o el cluster no tiene leader.
func (s *Store) Ping(ctx context.Context) error {
	if s.closed.Load() {
		return docstore.ErrClosed
	}
	if s.node.LeaderID() == "" {
		return errors.New("raft: no leader")
	}
	return nil
}

func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.node.Close()
}

type collection struct {
	s    *Store
	name string
}

func (c *collection) check(key string) error {
	if c.s.closed.Load() {
		return docstore.ErrClosed
	}
	if err := docstore.ValidateCollection(c.name); err != nil {
		return err
	}
	return docstore.ValidateKey(key)
}

func (c *collection) Get(ctx context.Context, key string) (*docstore.Snapshot, error) {
	if err := c.check(key); err != nil {
		return nil, err
	}
	doc, ok := c.s.fsm.Get(c.name, key)
	if !ok {
		return &docstore.Snapshot{Key: key}, nil
	}
	return &docstore.Snapshot{Key: key, Exists: true, Data: doc}, nil
}

func (c *collection) Update(ctx context.Context, key string, fields docstore.Document) error {
	return c.apply(ctx, cluster.MutationUpdate, key, fields)
}

func (c *collection) Set(ctx context.Context, key string, doc docstore.Document) error {
	return c.apply(ctx, cluster.MutationSet, key, doc)
}

func (c *collection) apply(ctx context.Context, typ cluster.MutationType, key string, doc docstore.Document) error {
	if err := c.check(key); err != nil {
		return err
	}
	if !c.s.node.IsLeader() {
		return fmt.Errorf("raft: %s %s/%s (leader=%q): %w", typ, c.name, key, c.s.node.LeaderID(), repository.ErrNotLeader)
	}
	data, err := docstore.Normalize(doc)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("raft: encode payload: %w", err)
	}
	m := cluster.Mutation{
		Type:       typ,
		Collection: c.name,
		Key:        key,
		TsUnix:     time.Now().Unix(),
		Payload:    payload,
	}
	if _, err := c.s.node.Apply(ctx, m); err != nil {
		return err
	}
	return nil
}
