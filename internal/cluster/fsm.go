package cluster

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/hashicorp/raft"

	"github.com/dropDatabas3/docuser/internal/domain/repository"
	"github.com/dropDatabas3/docuser/internal/store/docstore"
)

// FSM mantiene en memoria el estado replicado: colección → key → documento.
// Apply es invocado por Raft en orden; las lecturas locales toman el RLock.
type FSM struct {
	mu   sync.RWMutex
	docs map[string]map[string]docstore.Document
}

func NewFSM() *FSM {
	return &FSM{docs: make(map[string]map[string]docstore.Document)}
}

// Apply decodifica la mutación y la aplica. El valor retornado llega al
// llamador vía ApplyFuture.Response(): nil si OK, error si la mutación falló.
func (f *FSM) Apply(l *raft.Log) interface{} {
	if l == nil || len(l.Data) == 0 {
		return nil
	}
	var m Mutation
	if err := json.Unmarshal(l.Data, &m); err != nil {
		return fmt.Errorf("fsm: decode mutation: %w", err)
	}
	var doc docstore.Document
	if len(m.Payload) > 0 {
		if err := json.Unmarshal(m.Payload, &doc); err != nil {
			return fmt.Errorf("fsm: decode payload: %w", err)
		}
	}
	if doc == nil {
		doc = docstore.Document{}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch m.Type {
	case MutationSet:
		col := f.docs[m.Collection]
		if col == nil {
			col = make(map[string]docstore.Document)
			f.docs[m.Collection] = col
		}
		col[m.Key] = doc
		return nil

	case MutationUpdate:
		cur, ok := f.docs[m.Collection][m.Key]
		if !ok {
			return fmt.Errorf("raft: update %s/%s: %w", m.Collection, m.Key, repository.ErrNotFound)
		}
		// copia para no mutar snapshots en curso
		next := make(docstore.Document, len(cur)+len(doc))
		docstore.Merge(next, cur)
		docstore.Merge(next, doc)
		f.docs[m.Collection][m.Key] = next
		return nil

	default:
		return fmt.Errorf("fsm: unknown mutation type %q", m.Type)
	}
}

// Get lee el estado local. La copia retornada es del llamador.
func (f *FSM) Get(collection, key string) (docstore.Document, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	doc, ok := f.docs[collection][key]
	if !ok {
		return nil, false
	}
	out := make(docstore.Document, len(doc))
	docstore.Merge(out, doc)
	return out, true
}

// Len retorna la cantidad de documentos en todas las colecciones.
func (f *FSM) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	n := 0
	for _, col := range f.docs {
		n += len(col)
	}
	return n
}

// Snapshot captura una copia superficial del estado. Los documentos no se
// mutan in-place (Update reemplaza el mapa), así que compartirlos es seguro.
func (f *FSM) Snapshot() (raft.FSMSnapshot, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	state := make(map[string]map[string]docstore.Document, len(f.docs))
	for name, col := range f.docs {
		c := make(map[string]docstore.Document, len(col))
		for k, d := range col {
			c[k] = d
		}
		state[name] = c
	}
	return &docSnap{state: state}, nil
}

// Restore reemplaza todo el estado con el snapshot.
func (f *FSM) Restore(rc io.ReadCloser) error {
	defer rc.Close()
	var state map[string]map[string]docstore.Document
	if err := json.NewDecoder(rc).Decode(&state); err != nil {
		return fmt.Errorf("fsm: decode snapshot: %w", err)
	}
	if state == nil {
		state = make(map[string]map[string]docstore.Document)
	}
	f.mu.Lock()
	f.docs = state
	f.mu.Unlock()
	return nil
}

type docSnap struct {
	state map[string]map[string]docstore.Document
}

func (s *docSnap) Persist(sink raft.SnapshotSink) error {
	if err := json.NewEncoder(sink).Encode(s.state); err != nil {
		_ = sink.Cancel()
		return fmt.Errorf("fsm: encode snapshot: %w", err)
	}
	return sink.Close()
}

func (s *docSnap) Release() {}
