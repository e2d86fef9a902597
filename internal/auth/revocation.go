package auth

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore guarda o conjunto de tokens emitidos e ainda válidos.
// O gate de autenticação consulta Has antes de verificar assinatura: um token
// ausente do store é rejeitado mesmo que a assinatura e a expiração estejam ok,
// o que dá suporte a logout/revogação.
type SessionStore interface {
	Add(ctx context.Context, token string, ttl time.Duration) error
	Has(ctx context.Context, token string) (bool, error)
	Remove(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

type redisSessionCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
}

// RedisSessionStore persiste sessões no Redis com TTL igual à validade do token,
// sobrevivendo a reinícios do processo e compartilhável entre instâncias.
type RedisSessionStore struct {
	client redisSessionCommander
}

// NewRedisSessionStore cria o store sobre um cliente Redis existente.
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (s *RedisSessionStore) Add(ctx context.Context, token string, ttl time.Duration) error {
	// token já expirado não vira sessão: o TTL do store acompanha a validade
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, SessionRedisKey(HashToken(token)), "active", ttl).Err()
}

func (s *RedisSessionStore) Has(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, SessionRedisKey(HashToken(token))).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisSessionStore) Remove(ctx context.Context, token string) error {
	err := s.client.Del(ctx, SessionRedisKey(HashToken(token))).Err()
	if err != nil && err != redis.Nil {
		return err
	}
	return nil
}

func (s *RedisSessionStore) Clear(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, SessionRedisKey("*"), 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// MemorySessionStore mantém as sessões em memória, protegido por mutex.
// As entradas se perdem em reinício do processo; aceitável porque os tokens
// também expiram sozinhos.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]time.Time
}

// NewMemorySessionStore cria o store em memória.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]time.Time)}
}

func (s *MemorySessionStore) Add(ctx context.Context, token string, ttl time.Duration) error {
	// token já expirado não vira sessão: o TTL do store acompanha a validade
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[HashToken(token)] = time.Now().Add(ttl)
	return nil
}

func (s *MemorySessionStore) Has(ctx context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hash := HashToken(token)
	expires, ok := s.sessions[hash]
	if !ok {
		return false, nil
	}
	if time.Now().After(expires) {
		delete(s.sessions, hash)
		return false, nil
	}
	return true, nil
}

func (s *MemorySessionStore) Remove(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, HashToken(token))
	return nil
}

func (s *MemorySessionStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]time.Time)
	return nil
}
