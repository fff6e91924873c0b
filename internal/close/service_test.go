package close

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meridian-books/meridian/internal/accounting/accruals"
	"github.com/meridian-books/meridian/internal/accounting/depreciation"
	"github.com/meridian-books/meridian/internal/accounting/journals"
	"github.com/meridian-books/meridian/internal/accounting/provisions"
	"github.com/meridian-books/meridian/internal/accounting/shared"
)

type memoryRepo struct {
	periods map[string]*Period
	nextID  int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{periods: map[string]*Period{}}
}

func periodKey(clientID, code string) string { return clientID + "|" + code }

func (m *memoryRepo) GetPeriod(_ context.Context, clientID, code string) (Period, error) {
	p, ok := m.periods[periodKey(clientID, code)]
	if !ok {
		return Period{}, ErrPeriodNotFound
	}
	return *p, nil
}

func (m *memoryRepo) ListPeriods(_ context.Context, clientID string) ([]Period, error) {
	var out []Period
	for _, p := range m.periods {
		if p.ClientID == clientID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryTx{repo: m})
}

type memoryTx struct {
	repo *memoryRepo
}

func (t *memoryTx) GetPeriodForUpdate(_ context.Context, clientID, code string) (Period, error) {
	key := periodKey(clientID, code)
	if p, ok := t.repo.periods[key]; ok {
		return *p, nil
	}
	t.repo.nextID++
	p := &Period{
		ID:       t.repo.nextID,
		ClientID: clientID,
		Code:     code,
		Status:   PeriodStatusOpen,
	}
	t.repo.periods[key] = p
	return *p, nil
}

func (t *memoryTx) SetStatus(_ context.Context, id int64, status PeriodStatus) error {
	for _, p := range t.repo.periods {
		if p.ID == id {
			p.Status = status
			return nil
		}
	}
	return ErrPeriodNotFound
}

func (t *memoryTx) SaveCloseResult(_ context.Context, id int64, summary Summary, actorID string, at time.Time) error {
	for _, p := range t.repo.periods {
		if p.ID == id {
			p.Status = PeriodStatusClosed
			p.ProfitBeforeTax = summary.ProfitBeforeTax
			p.CITAmount = summary.CITAmount
			p.NetProfit = summary.NetProfit
			p.ClosedBy = actorID
			p.ClosedAt = &at
			return nil
		}
	}
	return ErrPeriodNotFound
}

// memoryLedger mirrors the journals service contract the close run depends
// on: posted batches land in the entry store, and a batch whose key was seen
// before is rejected as already posted.
type memoryLedger struct {
	entries    []journals.Entry
	posted     [][]journals.Entry
	batchKeys  map[string]bool
	postErr    error
	failPrefix string // fail the next batch whose doc numbers start with this
}

func (m *memoryLedger) ListEntries(_ context.Context, clientID string, from, to *time.Time) ([]journals.Entry, error) {
	var out []journals.Entry
	for _, e := range m.entries {
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

func (m *memoryLedger) PostBatch(_ context.Context, entries []journals.Entry) (journals.BatchResult, error) {
	if m.postErr != nil {
		return journals.BatchResult{}, m.postErr
	}
	if m.failPrefix != "" && strings.HasPrefix(entries[0].DocNo, m.failPrefix) {
		m.failPrefix = ""
		return journals.BatchResult{}, context.DeadlineExceeded
	}
	key := journals.BatchKey(entries[0].ClientID, entries)
	if m.batchKeys[key] {
		return journals.BatchResult{}, fmt.Errorf("%w: batch %s", shared.ErrBatchAlreadyPosted, key)
	}
	if m.batchKeys == nil {
		m.batchKeys = map[string]bool{}
	}
	m.batchKeys[key] = true
	m.posted = append(m.posted, entries)
	m.entries = append(m.entries, entries...)
	return journals.BatchResult{OK: true}, nil
}

type memoryConfig struct {
	assets     []depreciation.FixedAsset
	accruals   []accruals.Item
	provisions []provisions.Item
}

func (m *memoryConfig) ListFixedAssets(context.Context, string) ([]depreciation.FixedAsset, error) {
	return m.assets, nil
}

func (m *memoryConfig) ListAccrualItems(context.Context, string) ([]accruals.Item, error) {
	return m.accruals, nil
}

func (m *memoryConfig) ListProvisionItems(context.Context, string) ([]provisions.Item, error) {
	return m.provisions, nil
}

type memoryAudit struct {
	events []AuditEvent
}

func (m *memoryAudit) Record(_ context.Context, e AuditEvent) error {
	m.events = append(m.events, e)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func march(day int) time.Time {
	return time.Date(2024, time.March, day, 0, 0, 0, 0, time.UTC)
}

func TestRunCloseFullMonth(t *testing.T) {
	repo := newMemoryRepo()
	ledger := &memoryLedger{entries: []journals.Entry{
		journals.NewLine("C001", march(5), "INV-100", "Service revenue", "41100", 0, 100000),
		journals.NewLine("C001", march(10), "EXP-001", "Salaries", "52100", 60000, 0),
	}}
	config := &memoryConfig{}
	audit := &memoryAudit{}
	svc := NewService(repo, ledger, config, audit, testLogger())

	summary, err := svc.RunClose(context.Background(), RunCloseInput{
		ClientID: "C001",
		Period:   "2024-03",
		ActorID:  "acct-1",
	})
	require.NoError(t, err)

	require.InDelta(t, 40000.0, summary.ProfitBeforeTax, 0.001)
	require.InDelta(t, 8000.0, summary.CITAmount, 0.001)
	require.InDelta(t, 32000.0, summary.NetProfit, 0.001)
	require.Equal(t, 0, summary.GeneratedLines)
	require.NotZero(t, summary.ClosingLines)

	// Only the closing batch was posted: no adjustment configuration.
	require.Len(t, ledger.posted, 1)

	period, err := repo.GetPeriod(context.Background(), "C001", "2024-03")
	require.NoError(t, err)
	require.Equal(t, PeriodStatusClosed, period.Status)
	require.Equal(t, "acct-1", period.ClosedBy)
	require.NotNil(t, period.ClosedAt)

	require.Len(t, audit.events, 1)
	require.Equal(t, "period.close", audit.events[0].Action)
}

func TestRunCloseWithAdjustments(t *testing.T) {
	repo := newMemoryRepo()
	ledger := &memoryLedger{entries: []journals.Entry{
		journals.NewLine("C001", march(5), "INV-100", "Revenue", "41100", 0, 50000),
	}}
	config := &memoryConfig{
		assets: []depreciation.FixedAsset{{
			AssetCode:       "FA-001",
			Name:            "Delivery van",
			Category:        depreciation.CategoryVehicle,
			Cost:            45000,
			ResidualValue:   1,
			UsefulLifeYears: 5,
		}},
		provisions: []provisions.Item{{
			ID:              "PRV-1",
			Type:            "warranty",
			Description:     "Warranty reserve",
			EstimatedAmount: 10000,
			Probability:     50,
		}},
	}
	svc := NewService(repo, ledger, config, &memoryAudit{}, testLogger())

	summary, err := svc.RunClose(context.Background(), RunCloseInput{
		ClientID: "C001",
		Period:   "2024-03",
		ActorID:  "acct-1",
	})
	require.NoError(t, err)

	// One depreciation pair and one provision pair.
	require.Equal(t, 4, summary.GeneratedLines)
	require.InDelta(t, 749.98, summary.TotalDepreciation, 0.001)
	require.InDelta(t, 5000.0, summary.TotalProvision, 0.001)
	// Generated expenses reduce the taxable profit.
	require.InDelta(t, 50000-749.98-5000, summary.ProfitBeforeTax, 0.001)

	// Adjustments posted before the closing batch.
	require.Len(t, ledger.posted, 2)
	require.Len(t, ledger.posted[0], 4)
}

func TestRunCloseRejectsClosedPeriod(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, &memoryLedger{}, &memoryConfig{}, &memoryAudit{}, testLogger())

	_, err := svc.RunClose(context.Background(), RunCloseInput{
		ClientID: "C001", Period: "2024-03", ActorID: "acct-1",
	})
	require.NoError(t, err)

	_, err = svc.RunClose(context.Background(), RunCloseInput{
		ClientID: "C001", Period: "2024-03", ActorID: "acct-1",
	})
	require.ErrorIs(t, err, shared.ErrPeriodClosed)
}

func TestRunCloseRejectsConcurrentRun(t *testing.T) {
	repo := newMemoryRepo()
	repo.periods[periodKey("C001", "2024-03")] = &Period{
		ID:       1,
		ClientID: "C001",
		Code:     "2024-03",
		Status:   PeriodStatusClosing,
	}
	svc := NewService(repo, &memoryLedger{}, &memoryConfig{}, &memoryAudit{}, testLogger())

	_, err := svc.RunClose(context.Background(), RunCloseInput{
		ClientID: "C001", Period: "2024-03", ActorID: "acct-1",
	})
	require.ErrorIs(t, err, shared.ErrCloseInProgress)
}

func TestRunCloseRevertsOnPostFailure(t *testing.T) {
	repo := newMemoryRepo()
	ledger := &memoryLedger{
		entries: []journals.Entry{
			journals.NewLine("C001", march(5), "INV-100", "Revenue", "41100", 0, 50000),
		},
		postErr: context.DeadlineExceeded,
	}
	svc := NewService(repo, ledger, &memoryConfig{}, &memoryAudit{}, testLogger())

	_, err := svc.RunClose(context.Background(), RunCloseInput{
		ClientID: "C001", Period: "2024-03", ActorID: "acct-1",
	})
	require.Error(t, err)

	period, err := repo.GetPeriod(context.Background(), "C001", "2024-03")
	require.NoError(t, err)
	require.Equal(t, PeriodStatusOpen, period.Status)
}

func TestRunCloseRecoversAfterPartialFailure(t *testing.T) {
	repo := newMemoryRepo()
	ledger := &memoryLedger{
		entries: []journals.Entry{
			journals.NewLine("C001", march(5), "INV-100", "Revenue", "41100", 0, 50000),
		},
		failPrefix: "CLS-",
	}
	config := &memoryConfig{
		assets: []depreciation.FixedAsset{{
			AssetCode:       "FA-001",
			Name:            "Delivery van",
			Category:        depreciation.CategoryVehicle,
			Cost:            45000,
			ResidualValue:   1,
			UsefulLifeYears: 5,
		}},
	}
	svc := NewService(repo, ledger, config, &memoryAudit{}, testLogger())
	in := RunCloseInput{ClientID: "C001", Period: "2024-03", ActorID: "acct-1"}

	// First run lands the depreciation batch, then dies on the closing batch.
	_, err := svc.RunClose(context.Background(), in)
	require.Error(t, err)

	period, err := repo.GetPeriod(context.Background(), "C001", "2024-03")
	require.NoError(t, err)
	require.Equal(t, PeriodStatusOpen, period.Status)
	require.Len(t, ledger.posted, 1)

	// The repeat regenerates the same depreciation batch; the ledger reports
	// it as already posted and the run must not count those lines twice.
	summary, err := svc.RunClose(context.Background(), in)
	require.NoError(t, err)
	require.InDelta(t, 50000-749.98, summary.ProfitBeforeTax, 0.001)
	require.InDelta(t, 749.98, summary.TotalDepreciation, 0.001)

	// Adjustments from the first run, closing batch from the second.
	require.Len(t, ledger.posted, 2)
	require.True(t, strings.HasPrefix(ledger.posted[1][0].DocNo, "CLS-"))

	period, err = repo.GetPeriod(context.Background(), "C001", "2024-03")
	require.NoError(t, err)
	require.Equal(t, PeriodStatusClosed, period.Status)
}

func TestRunCloseUsesConfiguredDefaultRate(t *testing.T) {
	repo := newMemoryRepo()
	ledger := &memoryLedger{entries: []journals.Entry{
		journals.NewLine("C001", march(5), "INV-100", "Revenue", "41100", 0, 100000),
		journals.NewLine("C001", march(10), "EXP-001", "Salaries", "52100", 60000, 0),
	}}
	svc := NewService(repo, ledger, &memoryConfig{}, &memoryAudit{}, testLogger())
	svc.WithDefaultCITRate(0.15)

	summary, err := svc.RunClose(context.Background(), RunCloseInput{
		ClientID: "C001", Period: "2024-03", ActorID: "acct-1",
	})
	require.NoError(t, err)
	require.InDelta(t, 40000.0, summary.ProfitBeforeTax, 0.001)
	require.InDelta(t, 6000.0, summary.CITAmount, 0.001)
	require.InDelta(t, 34000.0, summary.NetProfit, 0.001)
}

func TestEnsureOpenForPosting(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, &memoryLedger{}, &memoryConfig{}, &memoryAudit{}, testLogger())
	ctx := context.Background()

	// Untouched months are open.
	require.NoError(t, svc.EnsureOpenForPosting(ctx, "C001", march(10)))

	repo.periods[periodKey("C001", "2024-03")] = &Period{
		ID: 1, ClientID: "C001", Code: "2024-03", Status: PeriodStatusClosing,
	}
	require.NoError(t, svc.EnsureOpenForPosting(ctx, "C001", march(10)))

	repo.periods[periodKey("C001", "2024-03")].Status = PeriodStatusClosed
	require.ErrorIs(t, svc.EnsureOpenForPosting(ctx, "C001", march(10)), shared.ErrPeriodLocked)
}
