package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/meridian-books/meridian/internal/accounting/journals"
	"github.com/meridian-books/meridian/internal/accounting/reportcache"
	"github.com/meridian-books/meridian/internal/accounting/shared"
)

// DefaultCacheTTL is how long a rendered report stays valid without a
// ledger write forcing it out earlier.
const DefaultCacheTTL = 5 * time.Minute

// LedgerSource is the slice of the ledger the reporting service reads.
type LedgerSource interface {
	ListEntries(ctx context.Context, clientID string, from, to *time.Time) ([]journals.Entry, error)
	GetClientName(ctx context.Context, clientID string) (string, error)
}

// Service renders financial reports from ledger entries, caching the
// serialized payload per client and window.
type Service struct {
	ledger LedgerSource
	cache  reportcache.Store
	ttl    time.Duration
	logger *slog.Logger
}

// NewService constructs a reporting service. A nil cache disables caching.
func NewService(ledger LedgerSource, cache reportcache.Store, ttl time.Duration, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Service{ledger: ledger, cache: cache, ttl: ttl, logger: logger}
}

// TrialBalance renders the trial balance for one client month.
func (s *Service) TrialBalance(ctx context.Context, clientID, periodCode string) (TrialBalanceReport, error) {
	period, err := shared.ParsePeriod(periodCode)
	if err != nil {
		return TrialBalanceReport{}, err
	}
	key := reportcache.Key(clientID, "tb", periodCode)
	if cached, ok := s.fromCache(ctx, key); ok {
		var report TrialBalanceReport
		if err := json.Unmarshal(cached, &report); err == nil {
			return report, nil
		}
	}

	name, err := s.ledger.GetClientName(ctx, clientID)
	if err != nil {
		return TrialBalanceReport{}, err
	}
	end := period.End()
	entries, err := s.ledger.ListEntries(ctx, clientID, nil, &end)
	if err != nil {
		return TrialBalanceReport{}, fmt.Errorf("reports: load entries: %w", err)
	}
	report := GenerateTrialBalance(entries, clientID, name, period.Start(), end)
	s.toCache(ctx, key, report)
	return report, nil
}

// IncomeStatement renders the income statement for one client month.
func (s *Service) IncomeStatement(ctx context.Context, clientID, periodCode string) (IncomeStatement, error) {
	period, err := shared.ParsePeriod(periodCode)
	if err != nil {
		return IncomeStatement{}, err
	}
	key := reportcache.Key(clientID, "pl", periodCode)
	if cached, ok := s.fromCache(ctx, key); ok {
		var report IncomeStatement
		if err := json.Unmarshal(cached, &report); err == nil {
			return report, nil
		}
	}

	name, err := s.ledger.GetClientName(ctx, clientID)
	if err != nil {
		return IncomeStatement{}, err
	}
	start, end := period.Start(), period.End()
	entries, err := s.ledger.ListEntries(ctx, clientID, &start, &end)
	if err != nil {
		return IncomeStatement{}, fmt.Errorf("reports: load entries: %w", err)
	}
	report, err := BuildIncomeStatement(ctx, entries, clientID, name, start, end)
	if err != nil {
		return IncomeStatement{}, err
	}
	s.toCache(ctx, key, report)
	return report, nil
}

// BalanceSheet renders the cumulative balance sheet as of a date.
func (s *Service) BalanceSheet(ctx context.Context, clientID string, asOfDate time.Time) (BalanceSheet, error) {
	key := reportcache.Key(clientID, "bs", asOfDate.Format("2006-01-02"))
	if cached, ok := s.fromCache(ctx, key); ok {
		var report BalanceSheet
		if err := json.Unmarshal(cached, &report); err == nil {
			return report, nil
		}
	}

	name, err := s.ledger.GetClientName(ctx, clientID)
	if err != nil {
		return BalanceSheet{}, err
	}
	entries, err := s.ledger.ListEntries(ctx, clientID, nil, &asOfDate)
	if err != nil {
		return BalanceSheet{}, fmt.Errorf("reports: load entries: %w", err)
	}
	report, err := BuildBalanceSheet(ctx, entries, clientID, name, asOfDate)
	if err != nil {
		return BalanceSheet{}, err
	}
	s.toCache(ctx, key, report)
	return report, nil
}

func (s *Service) fromCache(ctx context.Context, key string) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(ctx, key)
}

func (s *Service) toCache(ctx context.Context, key string, report any) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(report)
	if err != nil {
		s.logger.Warn("report cache encode failed", slog.String("key", key), slog.Any("error", err))
		return
	}
	s.cache.Set(ctx, key, payload, s.ttl)
}
