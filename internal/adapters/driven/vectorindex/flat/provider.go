package flat

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/domain"
	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/ports/driven"
	"github.com/Ghostdevc/chatbot-demo-gemini/internal/logger"
)

// Ensure Provider implements the interface.
var _ driven.VectorIndexProvider = (*Provider)(nil)

// Provider hands out per-persona index handles backed by one snapshot
// file per persona under a dedicated directory. An exclusive handle
// holds the persona's write lock for its whole lifetime, so
// load→mutate→persist sequences never interleave; read handles share
// a read lock and can run concurrently with each other.
type Provider struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

// NewProvider creates a provider storing snapshots under dir.
func NewProvider(dir string) (*Provider, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("flat: creating index directory: %w", err)
	}
	return &Provider{
		dir:   dir,
		locks: make(map[string]*sync.RWMutex),
	}, nil
}

// lockFor returns the lock owning the persona's snapshot, creating it
// on first use. Locks are never removed; a stale entry is a few words
// of memory per deleted persona.
func (p *Provider) lockFor(personaID string) *sync.RWMutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.locks[personaID]
	if !ok {
		l = &sync.RWMutex{}
		p.locks[personaID] = l
	}
	return l
}

func (p *Provider) snapshotPath(personaID string) string {
	return filepath.Join(p.dir, personaID+".vec")
}

// load reads the persona's snapshot, degrading to a fresh empty index
// on any failure. Availability over strictness: a corrupt snapshot
// must not take the persona offline.
func (p *Provider) load(personaID string) *Index {
	path := p.snapshotPath(personaID)
	ix, err := readSnapshot(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("index snapshot for persona %s unreadable, starting empty: %v", personaID, err)
		}
		return NewIndex()
	}
	return ix
}

// Acquire opens the persona's index for mutation.
func (p *Provider) Acquire(ctx context.Context, personaID string) (driven.PersonaIndex, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l := p.lockFor(personaID)
	l.Lock()
	return &handle{
		Index:    p.load(personaID),
		path:     p.snapshotPath(personaID),
		unlock:   l.Unlock,
		writable: true,
	}, nil
}

// AcquireRead opens the persona's index for search only.
func (p *Provider) AcquireRead(ctx context.Context, personaID string) (driven.IndexSearcher, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l := p.lockFor(personaID)
	l.RLock()
	return &handle{
		Index:  p.load(personaID),
		path:   p.snapshotPath(personaID),
		unlock: l.RUnlock,
	}, nil
}

// Remove deletes the persona's snapshot file.
func (p *Provider) Remove(personaID string) error {
	l := p.lockFor(personaID)
	l.Lock()
	defer l.Unlock()

	if err := os.Remove(p.snapshotPath(personaID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("flat: removing snapshot: %w", err)
	}
	return nil
}

// handle is one acquired view of a persona's index.
type handle struct {
	*Index
	path     string
	unlock   func()
	writable bool
	released bool
}

var _ driven.PersonaIndex = (*handle)(nil)

// Add inserts a vector; read handles refuse mutation.
func (h *handle) Add(chunkID string, embedding []float32) error {
	if !h.writable {
		return domain.ErrReadOnly
	}
	return h.Index.Add(chunkID, embedding)
}

// Reset discards all vectors; a no-op on read handles.
func (h *handle) Reset() {
	if h.writable {
		h.Index.Reset()
	}
}

// Persist writes the snapshot to disk.
func (h *handle) Persist() error {
	if !h.writable {
		return domain.ErrReadOnly
	}
	return writeSnapshot(h.path, h.Index)
}

// Release returns the handle and its lock. Safe to call once.
func (h *handle) Release() {
	if h.released {
		return
	}
	h.released = true
	h.unlock()
}
