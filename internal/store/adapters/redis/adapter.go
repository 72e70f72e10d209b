// Package redis implementa un store de documentos sobre Redis.
// Cada documento es un hash "<prefix>:<collection>:<key>"; cada campo guarda su valor en JSON.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/docuser/internal/domain/repository"
	"github.com/dropDatabas3/docuser/internal/store/docstore"
)

func init() {
	docstore.RegisterAdapter(&redisAdapter{})
}

// updateScript aplica HSET solo si el hash existe, en una sola operación atómica.
// Retorna 0 si no existe.
var updateScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end
redis.call('HSET', KEYS[1], unpack(ARGV))
return 1
`)

type redisAdapter struct{}

func (a *redisAdapter) Name() string { return "redis" }

func (a *redisAdapter) Open(ctx context.Context, cfg docstore.Config) (docstore.Store, error) {
	return Connect(ctx, cfg.Redis)
}

// Store persiste documentos en Redis.
type Store struct {
	client redis.UniversalClient
	prefix string
}

// Connect crea el cliente y verifica la conexión.
func Connect(ctx context.Context, cfg docstore.RedisConfig) (*Store, error) {
	addr := cfg.Addr
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping failed: %w", err)
	}
	return New(rdb, cfg.Prefix), nil
}

// New envuelve un cliente existente.
func New(client redis.UniversalClient, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) Name() string { return "redis" }

func (s *Store) Collection(name string) docstore.Collection {
	return &collection{s: s, name: name}
}

func (s *Store) Ping(ctx context.Context) error { return s.client.Ping(ctx).Err() }

func (s *Store) Close() error { return s.client.Close() }

type collection struct {
	s    *Store
	name string
}

func (c *collection) redisKey(key string) (string, error) {
	if err := docstore.ValidateCollection(c.name); err != nil {
		return "", err
	}
	if err := docstore.ValidateKey(key); err != nil {
		return "", err
	}
	// ':' es el separador de la key de Redis; aceptarlo haría colisionar
	// ("a", "b:c") con ("a:b", "c").
	if strings.Contains(c.name, ":") || strings.Contains(key, ":") {
		return "", fmt.Errorf("redis: %q/%q contains ':': %w", c.name, key, repository.ErrInvalidInput)
	}
	k := c.name + ":" + key
	if c.s.prefix != "" {
		k = c.s.prefix + ":" + k
	}
	return k, nil
}

func (c *collection) Get(ctx context.Context, key string) (*docstore.Snapshot, error) {
	rk, err := c.redisKey(key)
	if err != nil {
		return nil, err
	}
	fields, err := c.s.client.HGetAll(ctx, rk).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: get %s: %w", rk, err)
	}
	// HGETALL de una key inexistente retorna un mapa vacío.
	if len(fields) == 0 {
		return &docstore.Snapshot{Key: key}, nil
	}
	doc := make(docstore.Document, len(fields))
	for f, raw := range fields {
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("redis: decode %s.%s: %w", rk, f, err)
		}
		doc[f] = v
	}
	return &docstore.Snapshot{Key: key, Exists: true, Data: doc}, nil
}

func (c *collection) Update(ctx context.Context, key string, fields docstore.Document) error {
	rk, err := c.redisKey(key)
	if err != nil {
		return err
	}
	args, err := flatten(fields)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		n, err := c.s.client.Exists(ctx, rk).Result()
		if err != nil {
			return fmt.Errorf("redis: update %s: %w", rk, err)
		}
		if n == 0 {
			return fmt.Errorf("redis: update %s: %w", rk, repository.ErrNotFound)
		}
		return nil
	}
	res, err := updateScript.Run(ctx, c.s.client, []string{rk}, args...).Int()
	if err != nil {
		return fmt.Errorf("redis: update %s: %w", rk, err)
	}
	if res == 0 {
		return fmt.Errorf("redis: update %s: %w", rk, repository.ErrNotFound)
	}
	return nil
}

func (c *collection) Set(ctx context.Context, key string, doc docstore.Document) error {
	rk, err := c.redisKey(key)
	if err != nil {
		return err
	}
	args, err := flatten(doc)
	if err != nil {
		return err
	}
	// Un hash vacío no existe en Redis: no se puede representar un documento vacío.
	if len(args) == 0 {
		return fmt.Errorf("redis: set %s: empty document: %w", rk, repository.ErrInvalidInput)
	}
	_, err = c.s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, rk)
		p.HSet(ctx, rk, args...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis: set %s: %w", rk, err)
	}
	return nil
}

// flatten convierte el documento en [campo, json(valor), ...] para HSET.
func flatten(doc docstore.Document) ([]any, error) {
	norm, err := docstore.Normalize(doc)
	if err != nil {
		return nil, err
	}
	args := make([]any, 0, len(norm)*2)
	for f, v := range norm {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("redis: encode field %s: %w", f, err)
		}
		args = append(args, f, string(b))
	}
	return args, nil
}
