package services

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2b"
	"k8s.io/client-go/tools/cache"

	"reimbursement-predictor/internal/core/domain"
	"reimbursement-predictor/internal/core/ports/output"
)

// ArtifactDecoder turns raw artifact bytes into the model object for name.
// Any error marks the bytes as unusable.
type ArtifactDecoder func(name domain.ModelName, data []byte) (any, error)

// CacheStats counts how artifact lookups were served.
type CacheStats struct {
	MemoryHits      int64 `json:"memory_hits"`
	DiskHits        int64 `json:"disk_hits"`
	RemoteFetches   int64 `json:"remote_fetches"`
	CorruptedPurges int64 `json:"corrupted_purges"`
}

// ArtifactCache resolves a model name to a materialized artifact, checking
// memory, then the local disk copy, then the remote blob store.
type ArtifactCache struct {
	store  ports.BlobStore
	decode ArtifactDecoder
	dir    string
	memory cache.ThreadSafeStore

	// mu orders memory fills against InvalidateAll; generation is bumped on
	// every invalidation so a fill that started earlier is dropped.
	mu         sync.Mutex
	generation uint64

	memoryHits      atomic.Int64
	diskHits        atomic.Int64
	remoteFetches   atomic.Int64
	corruptedPurges atomic.Int64
}

func NewArtifactCache(store ports.BlobStore, decode ArtifactDecoder, dir string) (*ArtifactCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create model cache dir: %w", err)
	}
	return &ArtifactCache{
		store:  store,
		decode: decode,
		dir:    dir,
		memory: cache.NewThreadSafeStore(cache.Indexers{}, cache.Indices{}),
	}, nil
}

// Get returns the artifact for name. A missing or corrupted disk copy is not
// an error; only a failed remote fetch is, reported as
// *domain.ArtifactUnavailableError.
func (c *ArtifactCache) Get(ctx context.Context, name domain.ModelName) (any, error) {
	if !name.Valid() {
		return nil, domain.UnknownModelError(name)
	}

	if obj, ok := c.memory.Get(string(name)); ok {
		c.memoryHits.Add(1)
		return obj, nil
	}

	gen := c.currentGeneration()

	if obj, ok := c.loadFromDisk(name); ok {
		c.diskHits.Add(1)
		c.remember(gen, name, obj)
		return obj, nil
	}

	return c.download(ctx, gen, name)
}

// InvalidateAll drops every in-memory artifact and deletes every cached file.
// The remote store is left untouched.
func (c *ArtifactCache) InvalidateAll() error {
	c.mu.Lock()
	c.generation++
	c.memory.Replace(map[string]interface{}{}, "")
	c.mu.Unlock()

	_, err := PurgeDiskCache(c.dir)
	return err
}

// PurgeDiskCache deletes every cached artifact file in dir and reports how
// many were found.
func PurgeDiskCache(dir string) (int, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*"+domain.ArtifactSuffix))
	if err != nil {
		return 0, fmt.Errorf("list cached artifacts: %w", err)
	}

	var errs []error
	for _, f := range files {
		if err := os.Remove(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove %s: %w", filepath.Base(f), err))
		}
	}
	log.WithFields(log.Fields{"dir": dir, "files": len(files)}).Info("model cache cleared")
	return len(files), errors.Join(errs...)
}

// Warm loads every served model so the first request is cache-hot.
func (c *ArtifactCache) Warm(ctx context.Context) error {
	for _, name := range domain.AllModels() {
		if _, err := c.Get(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// RemoteExists reports whether the remote store holds an artifact for name.
func (c *ArtifactCache) RemoteExists(ctx context.Context, name domain.ModelName) (bool, error) {
	if !name.Valid() {
		return false, domain.UnknownModelError(name)
	}
	return c.store.HeadObject(ctx, name.ObjectKey())
}

func (c *ArtifactCache) Stats() CacheStats {
	return CacheStats{
		MemoryHits:      c.memoryHits.Load(),
		DiskHits:        c.diskHits.Load(),
		RemoteFetches:   c.remoteFetches.Load(),
		CorruptedPurges: c.corruptedPurges.Load(),
	}
}

func (c *ArtifactCache) path(name domain.ModelName) string {
	return filepath.Join(c.dir, name.ObjectKey())
}

func (c *ArtifactCache) currentGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

func (c *ArtifactCache) remember(gen uint64, name domain.ModelName, obj any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	c.memory.Add(string(name), obj)
}

func (c *ArtifactCache) loadFromDisk(name domain.ModelName) (any, bool) {
	path := c.path(name)
	entry := log.WithFields(log.Fields{"model": name, "path": path})

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false
	}
	if err != nil {
		entry.WithError(err).Warn("read cached artifact failed, falling back to remote")
		return nil, false
	}

	obj, err := c.decode(name, data)
	if err != nil {
		c.corruptedPurges.Add(1)
		entry.WithError(err).Warn("cached artifact is corrupted, purging")
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			entry.WithError(rmErr).Warn("purge corrupted artifact failed")
		}
		return nil, false
	}

	entry.Debug("model loaded from disk cache")
	return obj, true
}

func (c *ArtifactCache) download(ctx context.Context, gen uint64, name domain.ModelName) (any, error) {
	c.remoteFetches.Add(1)

	data, err := c.store.GetObject(ctx, name.ObjectKey())
	if err != nil {
		return nil, &domain.ArtifactUnavailableError{Model: name, Err: err}
	}

	obj, err := c.decode(name, data)
	if err != nil {
		return nil, &domain.ArtifactUnavailableError{Model: name, Err: err}
	}

	digest := blake2b.Sum256(data)
	entry := log.WithFields(log.Fields{
		"model":  name,
		"bytes":  len(data),
		"digest": hex.EncodeToString(digest[:]),
	})

	tmp, err := writeTempFile(c.path(name), data, 0o644)
	if err != nil {
		entry.WithError(err).Warn("persist artifact to disk cache failed")
	}
	c.commit(gen, name, obj, tmp, entry)

	entry.Info("model downloaded from blob store")
	return obj, nil
}

// commit publishes a downloaded artifact to both tiers, renaming tmp over the
// disk copy. Holding mu orders the rename against InvalidateAll: a commit from
// an older generation is dropped, and one from the current generation lands
// before the bump and is removed by the purge that follows it.
func (c *ArtifactCache) commit(gen uint64, name domain.ModelName, obj any, tmp string, entry *log.Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		if tmp != "" {
			_ = os.Remove(tmp)
		}
		entry.Debug("cache invalidated during download, not caching artifact")
		return
	}
	if tmp != "" {
		if err := os.Rename(tmp, c.path(name)); err != nil {
			_ = os.Remove(tmp)
			entry.WithError(err).Warn("persist artifact to disk cache failed")
		}
	}
	c.memory.Add(string(name), obj)
}

// writeTempFile writes data to a hidden temp file next to path and returns its
// name. The caller renames it into place, so readers never see a partial file.
func writeTempFile(path string, data []byte, mode os.FileMode) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return "", err
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", err
	}
	if err := f.Chmod(mode); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	return tmp, nil
}
