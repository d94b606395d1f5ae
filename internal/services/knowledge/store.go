package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/deepgram/minichat/internal/infrastructure/redis"
)

// Fact is a stored snippet of text with its embedding
type Fact struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding"`
	CreatedAt time.Time `json:"created_at"`
}

type Store interface {
	Add(ctx context.Context, fact Fact) error
	All(ctx context.Context) ([]Fact, error)
	Clear(ctx context.Context) error
}

type RedisStore struct {
	redisService *redis.Service
	key          string
}

// FileStore keeps facts as a JSON array in a single file so they survive
// between CLI runs. Writes replace the file atomically.
type FileStore struct {
	mu   sync.Mutex
	path string
}

type MemoryStore struct {
	mu    sync.RWMutex
	facts []Fact
}

func NewRedisStore(redisService *redis.Service, key string) *RedisStore {
	return &RedisStore{redisService: redisService, key: key}
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Redis Store implementation
func (rs *RedisStore) Add(ctx context.Context, fact Fact) error {
	data, err := json.Marshal(fact)
	if err != nil {
		return err
	}

	return rs.redisService.Append(ctx, rs.key, string(data))
}

func (rs *RedisStore) All(ctx context.Context) ([]Fact, error) {
	values, err := rs.redisService.List(ctx, rs.key)
	if err != nil {
		return nil, err
	}

	facts := make([]Fact, 0, len(values))
	for i, value := range values {
		var fact Fact
		if err := json.Unmarshal([]byte(value), &fact); err != nil {
			return nil, fmt.Errorf("corrupt fact at index %d: %w", i, err)
		}
		facts = append(facts, fact)
	}
	return facts, nil
}

func (rs *RedisStore) Clear(ctx context.Context) error {
	return rs.redisService.Delete(ctx, rs.key)
}

// File Store implementation
func (fs *FileStore) Add(_ context.Context, fact Fact) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	facts, err := fs.read()
	if err != nil {
		return err
	}
	return fs.write(append(facts, fact))
}

func (fs *FileStore) All(_ context.Context) ([]Fact, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.read()
}

func (fs *FileStore) Clear(_ context.Context) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := os.Remove(fs.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", fs.path, err)
	}
	return nil
}

func (fs *FileStore) read() ([]Fact, error) {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", fs.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var facts []Fact
	if err := json.Unmarshal(data, &facts); err != nil {
		return nil, fmt.Errorf("decode %s: %w", fs.path, err)
	}
	return facts, nil
}

func (fs *FileStore) write(facts []Fact) error {
	data, err := json.MarshalIndent(facts, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", fs.path, err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(fs.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(fs.path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", fs.path, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp for %s: %w", fs.path, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp for %s: %w", fs.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp for %s: %w", fs.path, err)
	}
	if err := os.Rename(tmpPath, fs.path); err != nil {
		return fmt.Errorf("rename temp for %s: %w", fs.path, err)
	}
	return nil
}

// Memory Store implementation
func (ms *MemoryStore) Add(_ context.Context, fact Fact) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.facts = append(ms.facts, fact)
	return nil
}

func (ms *MemoryStore) All(_ context.Context) ([]Fact, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	facts := make([]Fact, len(ms.facts))
	copy(facts, ms.facts)
	return facts, nil
}

func (ms *MemoryStore) Clear(_ context.Context) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.facts = nil
	return nil
}
