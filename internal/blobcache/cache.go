// internal/blobcache/cache.go
package blobcache

import (
	"fmt"

	"treestage/internal/objstore"

	"github.com/dgraph-io/badger/v4"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache is a read-through blob cache in front of a remote store. Content
// is addressed by its hash and therefore immutable, so cached entries
// never need invalidation. An LRU keeps hot blobs in memory; everything
// else lands compressed in badger.
type Cache struct {
	remote     objstore.Store
	db         *badger.DB
	hot        *lru.Cache[string, []byte]
	compressor *compressor
}

// Options configures Cache behavior.
type Options struct {
	// Number of blobs kept in memory.
	HotSize int
	// Minimum size in bytes before compressing stored values.
	CompressMin int
}

func DefaultOptions() Options {
	return Options{
		HotSize:     256,
		CompressMin: 1024,
	}
}

func New(remote objstore.Store, db *badger.DB, opts Options) (*Cache, error) {
	if db == nil {
		return nil, fmt.Errorf("database cannot be nil")
	}

	hot, err := lru.New[string, []byte](opts.HotSize)
	if err != nil {
		return nil, fmt.Errorf("creating blob cache: %w", err)
	}

	comp, err := newCompressor(opts.CompressMin)
	if err != nil {
		return nil, fmt.Errorf("creating compressor: %w", err)
	}

	return &Cache{
		remote:     remote,
		db:         db,
		hot:        hot,
		compressor: comp,
	}, nil
}

// WrapStore returns a Store whose blob traffic goes through a Cache
// while all other calls pass straight to the remote.
func WrapStore(remote objstore.Store, db *badger.DB, opts Options) (objstore.Store, error) {
	cache, err := New(remote, db, opts)
	if err != nil {
		return nil, err
	}
	return &cachedStore{Store: remote, cache: cache}, nil
}

type cachedStore struct {
	objstore.Store
	cache *Cache
}

func (s *cachedStore) CreateBlob(content []byte) (string, error) {
	return s.cache.CreateBlob(content)
}

func (s *cachedStore) GetBlob(hash string) ([]byte, error) {
	return s.cache.GetBlob(hash)
}

func key(hash string) []byte {
	return []byte("blob:" + hash)
}

// CreateBlob delegates to the remote and caches the content under the
// identity the remote assigned.
func (c *Cache) CreateBlob(content []byte) (string, error) {
	hash, err := c.remote.CreateBlob(content)
	if err != nil {
		return "", err
	}
	if err := c.put(hash, content); err != nil {
		return "", fmt.Errorf("caching blob %s: %w", hash, err)
	}
	return hash, nil
}

// GetBlob serves from memory, then badger, then the remote.
func (c *Cache) GetBlob(hash string) ([]byte, error) {
	if content, ok := c.hot.Get(hash); ok {
		return content, nil
	}

	var stored []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(hash))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			stored = append([]byte(nil), val...)
			return nil
		})
	})
	if err == nil {
		content, err := c.compressor.decode(stored)
		if err != nil {
			return nil, fmt.Errorf("decoding cached blob %s: %w", hash, err)
		}
		c.hot.Add(hash, content)
		return content, nil
	}
	if err != badger.ErrKeyNotFound {
		return nil, fmt.Errorf("reading cached blob %s: %w", hash, err)
	}

	content, err := c.remote.GetBlob(hash)
	if err != nil {
		return nil, err
	}
	if err := c.put(hash, content); err != nil {
		return nil, fmt.Errorf("caching blob %s: %w", hash, err)
	}
	return content, nil
}

func (c *Cache) put(hash string, content []byte) error {
	c.hot.Add(hash, content)
	encoded := c.compressor.encode(content)
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(hash), encoded)
	})
}
