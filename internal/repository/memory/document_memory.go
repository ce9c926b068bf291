package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"pdfvault/internal/model"
	"pdfvault/internal/repository"
)

var errClosed = errors.New("memory repository closed")

// DocumentMemory is an ephemeral implementation of repository.DocumentRepository.
// Records are lost on Close or process exit; ids are never reused within a process.
type DocumentMemory struct {
	mu     sync.RWMutex
	docs   map[int64]model.Document
	seq    atomic.Int64
	closed bool
	now    func() time.Time
}

// NewDocumentMemory allocates an empty in-memory repository.
func NewDocumentMemory() *DocumentMemory {
	return &DocumentMemory{
		docs: make(map[int64]model.Document),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

var _ repository.DocumentRepository = (*DocumentMemory)(nil)

func (r *DocumentMemory) Insert(ctx context.Context, filename, storagePath string, size int64) (*model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, errClosed
	}
	for _, d := range r.docs {
		if d.StoragePath == storagePath {
			return nil, errors.New("storage path already referenced")
		}
	}

	doc := model.Document{
		ID:          r.seq.Add(1),
		Filename:    filename,
		StoragePath: storagePath,
		Size:        size,
		CreatedAt:   r.now(),
	}
	r.docs[doc.ID] = doc
	return &doc, nil
}

func (r *DocumentMemory) ListAll(ctx context.Context) ([]model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return nil, errClosed
	}

	items := make([]model.Document, 0, len(r.docs))
	for _, d := range r.docs {
		items = append(items, d)
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})
	return items, nil
}

func (r *DocumentMemory) FindByID(ctx context.Context, id int64) (*model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return nil, errClosed
	}
	d, ok := r.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (r *DocumentMemory) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return errClosed
	}
	if _, ok := r.docs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.docs, id)
	return nil
}

func (r *DocumentMemory) Ping(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return errClosed
	}
	return nil
}

// Close drops every record. The id counter is not reset.
func (r *DocumentMemory) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.docs = nil
	return nil
}
