// Package cluster provee la infraestructura Raft que replica los documentos:
// un Node liviano sobre hashicorp/raft y la FSM que mantiene el estado.
package cluster

import "encoding/json"

// MutationType define el catálogo de operaciones replicadas.
type MutationType string

const (
	// MutationSet crea o reemplaza un documento.
	MutationSet MutationType = "doc.set"
	// MutationUpdate sobreescribe campos de un documento existente.
	MutationUpdate MutationType = "doc.update"
)

// Mutation es la entrada que se escribe en el log de Raft.
// Payload es el documento (Set) o el patch (Update) ya serializado.
type Mutation struct {
	Type       MutationType    `json:"type"`
	Collection string          `json:"collection"`
	Key        string          `json:"key"`
	TsUnix     int64           `json:"tsUnix"`
	Payload    json.RawMessage `json:"payload"`
}
