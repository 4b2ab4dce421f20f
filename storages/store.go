package storages

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/reusee/quizrun/configs"
	"github.com/reusee/quizrun/logs"
	bolt "go.etcd.io/bbolt"
)

// Path is the bbolt file holding finished run reports. Empty disables
// persistence.
type Path string

func (Module) Path(
	loader configs.Loader,
) Path {
	return configs.First[Path](loader, "report_db")
}

// Store keeps JSON values in named buckets of one bbolt file.
type Store struct {
	db *bolt.DB
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{
		Timeout: time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &Store{
		db: db,
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Put(bucket string, key string, value any) error {
	bs, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucket))
		if err != nil {
			return err
		}
		return b.Put([]byte(key), bs)
	})
}

// Get decodes the value of key into target. It reports false when the key
// is absent.
func (s *Store) Get(bucket string, key string, target any) (ok bool, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return nil
		}
		bs := b.Get([]byte(key))
		if bs == nil {
			return nil
		}
		ok = true
		return json.Unmarshal(bs, target)
	})
	return
}

var ErrDisabled = errors.New("storage disabled")

// GetStore opens the store once. It returns ErrDisabled when no path is
// configured.
type GetStore func() (*Store, error)

func (Module) GetStore(
	path Path,
	logger logs.Logger,
) GetStore {
	return sync.OnceValues(func() (*Store, error) {
		if path == "" {
			return nil, ErrDisabled
		}
		store, err := Open(string(path))
		if err != nil {
			return nil, err
		}
		logger.Info("report store", "path", path)
		return store, nil
	})
}
