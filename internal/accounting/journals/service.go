package journals

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-books/meridian/internal/accounting/shared"
)

// PeriodGuard rejects postings into locked periods before any row is written.
type PeriodGuard interface {
	EnsureOpenForPosting(ctx context.Context, clientID string, date time.Time) error
}

// CacheInvalidator drops cached reports for a client after a ledger write.
type CacheInvalidator interface {
	InvalidateClient(ctx context.Context, clientID string) int
}

const postRetries = 3

// Service owns batch posting. A batch is all-or-nothing: it is validated as a
// whole, guarded against locked periods, and inserted in one transaction so a
// partial failure can never leave the ledger unbalanced.
type Service struct {
	repo   Repository
	guard  PeriodGuard
	cache  CacheInvalidator
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs the posting service.
func NewService(repo Repository, guard PeriodGuard, cache CacheInvalidator, logger *slog.Logger) *Service {
	return &Service{repo: repo, guard: guard, cache: cache, logger: logger, now: time.Now}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// ListEntries returns a client's entries, optionally bounded by dates.
func (s *Service) ListEntries(ctx context.Context, clientID string, from, to *time.Time) ([]Entry, error) {
	return s.repo.ListEntries(ctx, clientID, from, to)
}

// GetClientName resolves a client's display name.
func (s *Service) GetClientName(ctx context.Context, clientID string) (string, error) {
	return s.repo.GetClientName(ctx, clientID)
}

// PostBatch validates and posts a batch. Validation findings come back in the
// BatchResult with a nil error; only period locks, idempotent replays, and
// storage failures surface as errors. Transient storage failures are retried;
// the batch idempotency key makes the retry safe.
func (s *Service) PostBatch(ctx context.Context, entries []Entry) (BatchResult, error) {
	res := ValidateBatch(entries)
	if !res.OK {
		return res, nil
	}

	clientID := entries[0].ClientID
	if s.guard != nil {
		for _, date := range batchDates(entries) {
			if err := s.guard.EnsureOpenForPosting(ctx, clientID, date); err != nil {
				return res, err
			}
		}
	}

	stamped := make([]Entry, len(entries))
	now := s.now()
	for i, e := range entries {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}
		stamped[i] = e
	}

	batchKey := BatchKey(clientID, stamped)
	var err error
	for attempt := 0; attempt < postRetries; attempt++ {
		err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
			if err := tx.ClaimBatch(ctx, batchKey, clientID); err != nil {
				return err
			}
			return tx.InsertEntries(ctx, stamped)
		})
		if err == nil || !IsTransient(err) {
			break
		}
		s.logger.Warn("transient posting failure, retrying",
			slog.String("client_id", clientID),
			slog.String("batch_key", batchKey),
			slog.Int("attempt", attempt+1),
			slog.Any("error", err))
	}
	if err != nil {
		if errors.Is(err, shared.ErrBatchAlreadyPosted) {
			return res, fmt.Errorf("%w: batch %s", shared.ErrBatchAlreadyPosted, batchKey)
		}
		return res, err
	}

	if s.cache != nil {
		s.cache.InvalidateClient(ctx, clientID)
	}
	s.logger.Info("batch posted",
		slog.String("client_id", clientID),
		slog.String("batch_key", batchKey),
		slog.Int("lines", len(stamped)))
	return res, nil
}

// ReverseBatch posts a reversing batch for an existing document. History is
// never mutated: the original lines stay, the reversal carries swapped sides
// under a derived doc no.
func (s *Service) ReverseBatch(ctx context.Context, clientID, docNo, actor string, date time.Time) ([]Entry, error) {
	originals, err := s.repo.ListEntriesByDocNo(ctx, clientID, docNo)
	if err != nil {
		return nil, err
	}
	if len(originals) == 0 {
		return nil, fmt.Errorf("journals: no entries for doc %s", docNo)
	}

	reversals := make([]Entry, 0, len(originals))
	for _, e := range originals {
		reversals = append(reversals, Entry{
			ID:              uuid.New(),
			ClientID:        e.ClientID,
			Date:            date,
			DocNo:           docNo + "-REV",
			Description:     fmt.Sprintf("Reversal of %s: %s", docNo, e.Description),
			AccountCode:     e.AccountCode,
			AccountName:     e.AccountName,
			Debit:           e.Credit,
			Credit:          e.Debit,
			DepartmentCode:  e.DepartmentCode,
			SourceDocID:     e.SourceDocID,
			SystemGenerated: true,
			CreatedBy:       actor,
		})
	}

	res, err := s.PostBatch(ctx, reversals)
	if err != nil {
		return nil, err
	}
	if !res.OK {
		return nil, fmt.Errorf("journals: reversal of %s failed validation: %+v", docNo, res.Problems)
	}
	return reversals, nil
}

// BatchKey derives the idempotency key for a batch from its client and the
// set of document numbers it carries, via a name-based UUID.
func BatchKey(clientID string, entries []Entry) string {
	seen := map[string]struct{}{}
	docNos := make([]string, 0, 4)
	for _, e := range entries {
		if _, ok := seen[e.DocNo]; !ok {
			seen[e.DocNo] = struct{}{}
			docNos = append(docNos, e.DocNo)
		}
	}
	sort.Strings(docNos)
	name := clientID + "|" + strings.Join(docNos, "|")
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

func batchDates(entries []Entry) []time.Time {
	seen := map[string]struct{}{}
	var dates []time.Time
	for _, e := range entries {
		key := e.Date.Format("2006-01")
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		dates = append(dates, e.Date)
	}
	return dates
}
