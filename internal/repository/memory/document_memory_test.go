package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"pdfvault/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentMemory_CRUD(t *testing.T) {
	ctx := context.Background()
	r := NewDocumentMemory()

	doc, err := r.Insert(ctx, "report.pdf", "documents/1-a-report.pdf", 1024)
	require.NoError(t, err)
	assert.Equal(t, int64(1), doc.ID)
	assert.False(t, doc.CreatedAt.IsZero())

	got, err := r.FindByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, *doc, *got)

	list, err := r.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, r.Delete(ctx, doc.ID))
	_, err = r.FindByID(ctx, doc.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, r.Delete(ctx, doc.ID), repository.ErrNotFound)

	// ids are never reused
	next, err := r.Insert(ctx, "again.pdf", "documents/2-b-again.pdf", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), next.ID)
}

func TestDocumentMemory_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	r := NewDocumentMemory()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	r.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Second)
	}

	for _, name := range []string{"A.pdf", "B.pdf", "C.pdf"} {
		_, err := r.Insert(ctx, name, "documents/"+name, 1)
		require.NoError(t, err)
	}

	list, err := r.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"C.pdf", "B.pdf", "A.pdf"}, []string{list[0].Filename, list[1].Filename, list[2].Filename})
}

func TestDocumentMemory_ListTieBreaksOnID(t *testing.T) {
	ctx := context.Background()
	r := NewDocumentMemory()
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	for _, name := range []string{"A.pdf", "B.pdf", "C.pdf"} {
		_, err := r.Insert(ctx, name, "documents/"+name, 1)
		require.NoError(t, err)
	}

	list, err := r.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), list[0].ID)
	assert.Equal(t, int64(1), list[2].ID)
}

func TestDocumentMemory_DuplicateStoragePath(t *testing.T) {
	ctx := context.Background()
	r := NewDocumentMemory()

	_, err := r.Insert(ctx, "a.pdf", "documents/same", 1)
	require.NoError(t, err)
	_, err = r.Insert(ctx, "b.pdf", "documents/same", 1)
	assert.Error(t, err)
}

func TestDocumentMemory_ConcurrentInsertUniqueIDs(t *testing.T) {
	ctx := context.Background()
	r := NewDocumentMemory()

	const n = 50
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			doc, err := r.Insert(ctx, "same.pdf", fmt.Sprintf("documents/%d-same.pdf", i), 1)
			if assert.NoError(t, err) {
				ids <- doc.ID
			}
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		assert.False(t, seen[id])
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestDocumentMemory_Close(t *testing.T) {
	ctx := context.Background()
	r := NewDocumentMemory()
	require.NoError(t, r.Ping(ctx))

	require.NoError(t, r.Close())
	assert.Error(t, r.Ping(ctx))
	_, err := r.Insert(ctx, "a.pdf", "documents/a", 1)
	assert.Error(t, err)
	_, err = r.ListAll(ctx)
	assert.Error(t, err)
}
