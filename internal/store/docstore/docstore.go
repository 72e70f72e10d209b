// Package docstore define el contrato mínimo de un store de documentos
// (colección → key → documento) y el registry de adapters que lo implementan.
//
// El contrato es deliberadamente chico: fetch-by-key con flag de existencia,
// update parcial por key y un set para seeding. Todo lo demás (transporte,
// auth, serialización) queda dentro de cada adapter.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dropDatabas3/docuser/internal/domain/repository"
)

// ErrClosed indica que el store ya fue cerrado.
var ErrClosed = errors.New("docstore: store closed")

// Document es el payload de un documento, con forma JSON.
type Document map[string]any

// Snapshot es el resultado de un Get.
// Exists=false con Data=nil significa que no hay documento para la key.
type Snapshot struct {
	Key    string
	Exists bool
	Data   Document
}

// DataTo decodifica Data en v usando las tags json de v.
func (s *Snapshot) DataTo(v any) error {
	if s == nil || !s.Exists {
		return fmt.Errorf("docstore: snapshot has no data: %w", repository.ErrNotFound)
	}
	b, err := json.Marshal(s.Data)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// Collection opera sobre los documentos de una colección.
type Collection interface {
	// Get busca el documento. Si no existe retorna Exists=false sin error.
	Get(ctx context.Context, key string) (*Snapshot, error)

	// Update sobreescribe solo los campos dados.
	// Retorna repository.ErrNotFound si el documento no existe; nunca lo crea.
	Update(ctx context.Context, key string, fields Document) error

	// Set crea o reemplaza el documento completo.
	Set(ctx context.Context, key string, doc Document) error
}

// Store es un handle a un backend de documentos.
// Se construye una vez y se comparte; las implementaciones son seguras para uso concurrente.
type Store interface {
	// Name retorna el nombre del adapter (ej: "memory", "postgres").
	Name() string

	// Collection retorna un handle liviano a la colección.
	Collection(name string) Collection

	// Ping verifica el backend.
	Ping(ctx context.Context) error

	// Close libera el backend.
	Close() error
}

// ValidateKey rechaza keys vacías o con separadores de path.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("docstore: empty key: %w", repository.ErrInvalidInput)
	}
	if strings.ContainsAny(key, "/\\") || key == "." || key == ".." {
		return fmt.Errorf("docstore: invalid key %q: %w", key, repository.ErrInvalidInput)
	}
	return nil
}

// ValidateCollection aplica las mismas reglas que ValidateKey.
func ValidateCollection(name string) error {
	if err := ValidateKey(name); err != nil {
		return fmt.Errorf("docstore: invalid collection %q: %w", name, repository.ErrInvalidInput)
	}
	return nil
}

// Normalize hace un round-trip JSON para que el documento tenga la misma forma
// en todos los adapters (números float64, mapas map[string]any).
func Normalize(doc Document) (Document, error) {
	if doc == nil {
		return Document{}, nil
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("docstore: encode document: %v: %w", err, repository.ErrInvalidInput)
	}
	var out Document
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("docstore: decode document: %w", err)
	}
	if out == nil {
		out = Document{}
	}
	return out, nil
}

// Merge aplica fields sobre dst (overwrite por campo) y retorna dst.
func Merge(dst, fields Document) Document {
	if dst == nil {
		dst = Document{}
	}
	for k, v := range fields {
		dst[k] = v
	}
	return dst
}
