package journals

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meridian-books/meridian/internal/accounting/shared"
)

type memoryRepo struct {
	entries []Entry
	batches map[string]string
	clients map[string]string
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		batches: map[string]string{},
		clients: map[string]string{"c1": "Acme Co"},
	}
}

func (r *memoryRepo) ListEntries(ctx context.Context, clientID string, from, to *time.Time) ([]Entry, error) {
	var out []Entry
	for _, e := range r.entries {
		if e.ClientID != clientID {
			continue
		}
		if from != nil && e.Date.Before(*from) {
			continue
		}
		if to != nil && e.Date.After(*to) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *memoryRepo) ListEntriesByDocNo(ctx context.Context, clientID, docNo string) ([]Entry, error) {
	var out []Entry
	for _, e := range r.entries {
		if e.ClientID == clientID && e.DocNo == docNo {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memoryRepo) GetClientName(ctx context.Context, clientID string) (string, error) {
	name, ok := r.clients[clientID]
	if !ok {
		return "", shared.ErrClientNotFound
	}
	return name, nil
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	staged := &memoryTx{repo: r}
	if err := fn(ctx, staged); err != nil {
		return err
	}
	for key, client := range staged.claimed {
		r.batches[key] = client
	}
	r.entries = append(r.entries, staged.inserted...)
	return nil
}

type memoryTx struct {
	repo     *memoryRepo
	claimed  map[string]string
	inserted []Entry
}

func (t *memoryTx) ClaimBatch(ctx context.Context, batchKey, clientID string) error {
	if _, ok := t.repo.batches[batchKey]; ok {
		return shared.ErrBatchAlreadyPosted
	}
	if t.claimed == nil {
		t.claimed = map[string]string{}
	}
	t.claimed[batchKey] = clientID
	return nil
}

func (t *memoryTx) InsertEntries(ctx context.Context, entries []Entry) error {
	t.inserted = append(t.inserted, entries...)
	return nil
}

type lockedGuard struct{ err error }

func (g lockedGuard) EnsureOpenForPosting(ctx context.Context, clientID string, date time.Time) error {
	return g.err
}

type countingCache struct{ invalidations []string }

func (c *countingCache) InvalidateClient(ctx context.Context, clientID string) int {
	c.invalidations = append(c.invalidations, clientID)
	return 1
}

func balancedBatch() []Entry {
	return []Entry{
		testEntry("JV-10", "11100", 250, 0),
		testEntry("JV-10", "41100", 0, 250),
	}
}

func TestPostBatchPersistsAndInvalidates(t *testing.T) {
	repo := newMemoryRepo()
	cache := &countingCache{}
	svc := NewService(repo, nil, cache, slog.Default())

	res, err := svc.PostBatch(context.Background(), balancedBatch())
	require.NoError(t, err)
	require.True(t, res.OK)
	require.Len(t, repo.entries, 2)
	require.Equal(t, []string{"c1"}, cache.invalidations)
	require.False(t, repo.entries[0].CreatedAt.IsZero())
}

func TestPostBatchValidationFindingsAreNotErrors(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, slog.Default())

	res, err := svc.PostBatch(context.Background(), []Entry{
		testEntry("JV-11", "11100", 100, 0),
		testEntry("JV-11", "41100", 0, 90),
	})
	require.NoError(t, err, "domain findings must come back structured, not thrown")
	require.False(t, res.OK)
	require.NotEmpty(t, res.Problems)
	require.Empty(t, repo.entries, "nothing may be written for an invalid batch")
}

func TestPostBatchIdempotentReplay(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, slog.Default())

	batch := balancedBatch()
	_, err := svc.PostBatch(context.Background(), batch)
	require.NoError(t, err)

	_, err = svc.PostBatch(context.Background(), batch)
	require.ErrorIs(t, err, shared.ErrBatchAlreadyPosted)
	require.Len(t, repo.entries, 2, "replay must not double post")
}

func TestPostBatchRejectedByPeriodGuard(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, lockedGuard{err: shared.ErrPeriodLocked}, nil, slog.Default())

	_, err := svc.PostBatch(context.Background(), balancedBatch())
	require.ErrorIs(t, err, shared.ErrPeriodLocked)
	require.Empty(t, repo.entries)
}

func TestReverseBatchSwapsSides(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, slog.Default())

	_, err := svc.PostBatch(context.Background(), balancedBatch())
	require.NoError(t, err)

	revDate := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	reversals, err := svc.ReverseBatch(context.Background(), "c1", "JV-10", "auditor", revDate)
	require.NoError(t, err)
	require.Len(t, reversals, 2)
	require.Equal(t, "JV-10-REV", reversals[0].DocNo)
	require.Equal(t, float64(0), reversals[0].Debit)
	require.Equal(t, float64(250), reversals[0].Credit)
	require.True(t, reversals[0].SystemGenerated)
	require.Len(t, repo.entries, 4, "original lines stay untouched")
}

func TestBatchKeyStableAcrossLineOrder(t *testing.T) {
	a := []Entry{testEntry("JV-2", "11100", 1, 0), testEntry("JV-1", "41100", 0, 1)}
	b := []Entry{testEntry("JV-1", "41100", 0, 1), testEntry("JV-2", "11100", 1, 0)}
	require.Equal(t, BatchKey("c1", a), BatchKey("c1", b))
	require.NotEqual(t, BatchKey("c1", a), BatchKey("c2", a))
}
