package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/rakki194/nlrouter/internal/domain"
)

var (
	bucketTools       = []byte("tools")
	bucketPreferences = []byte("preferences")
)

// Store persists registered tools and user preferences so the router can
// serve suggestions from its last known catalog after a restart.
type Store struct {
	mu     sync.RWMutex
	db     *bolt.DB
	path   string
	closed bool
	logger *zap.Logger
}

// Open opens (or creates) the store at path.
func Open(path string, logger *zap.Logger) (*Store, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, fmt.Errorf("store path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(trimmed), 0o755); err != nil {
		return nil, fmt.Errorf("ensure store dir: %w", err)
	}
	options := &bolt.Options{Timeout: time.Second}
	db, err := bolt.Open(trimmed, 0o600, options)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, path: trimmed, logger: logger.Named("store")}, nil
}

// Close closes the underlying database. Subsequent calls are no-ops.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// PutTool writes a tool descriptor through to disk.
func (s *Store) PutTool(tool domain.Tool) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return domain.ErrStoreClosed
	}

	data, err := json.Marshal(tool)
	if err != nil {
		return fmt.Errorf("encode tool %q: %w", tool.Name, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTools).Put([]byte(tool.Name), data)
	})
}

// DeleteTool removes a persisted tool. Absent names are a no-op.
func (s *Store) DeleteTool(name string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return domain.ErrStoreClosed
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTools).Delete([]byte(name))
	})
}

// Tools returns every persisted tool. Entries that fail to decode are
// skipped with a warning rather than failing the load.
func (s *Store) Tools() ([]domain.Tool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, domain.ErrStoreClosed
	}

	var tools []domain.Tool
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTools).ForEach(func(key, value []byte) error {
			var tool domain.Tool
			if err := json.Unmarshal(value, &tool); err != nil {
				s.logger.Warn("skip undecodable tool entry", zap.String("tool", string(key)), zap.Error(err))
				return nil
			}
			tools = append(tools, tool)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return tools, nil
}

// SetPreference stores a user preference key/value pair.
func (s *Store) SetPreference(key, value string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return domain.ErrStoreClosed
	}
	if strings.TrimSpace(key) == "" {
		return domain.E(domain.CodeInvalidArgument, "store.set_preference", "preference key is required", nil)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPreferences).Put([]byte(key), []byte(value))
	})
}

// Preferences returns all stored preferences.
func (s *Store) Preferences() (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, domain.ErrStoreClosed
	}

	prefs := make(map[string]string)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPreferences).ForEach(func(key, value []byte) error {
			prefs[string(key)] = string(value)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return prefs, nil
}

func ensureSchema(db *bolt.DB) error {
	return db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketTools, bucketPreferences} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
}
