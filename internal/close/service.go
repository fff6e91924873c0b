package close

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/meridian-books/meridian/internal/accounting/accruals"
	"github.com/meridian-books/meridian/internal/accounting/closing"
	"github.com/meridian-books/meridian/internal/accounting/depreciation"
	"github.com/meridian-books/meridian/internal/accounting/journals"
	"github.com/meridian-books/meridian/internal/accounting/provisions"
	"github.com/meridian-books/meridian/internal/accounting/shared"
)

// LedgerPort is the slice of the journals service the close run needs.
type LedgerPort interface {
	ListEntries(ctx context.Context, clientID string, from, to *time.Time) ([]journals.Entry, error)
	PostBatch(ctx context.Context, entries []journals.Entry) (journals.BatchResult, error)
}

// ConfigSource loads the period-adjustment configuration records.
type ConfigSource interface {
	ListFixedAssets(ctx context.Context, clientID string) ([]depreciation.FixedAsset, error)
	ListAccrualItems(ctx context.Context, clientID string) ([]accruals.Item, error)
	ListProvisionItems(ctx context.Context, clientID string) ([]provisions.Item, error)
}

// AuditPort records close activity for the firm's audit trail.
type AuditPort interface {
	Record(ctx context.Context, event AuditEvent) error
}

// Service orchestrates the period close. The computation engines it drives
// are pure; this service owns the lifecycle guard, the I/O, and the posting
// order: generated adjustments first, then the closing batch.
type Service struct {
	repo    Repository
	ledger  LedgerPort
	config  ConfigSource
	audit   AuditPort
	logger  *slog.Logger
	now     func() time.Time
	citRate float64
}

// NewService constructs the close service.
func NewService(repo Repository, ledger LedgerPort, config ConfigSource, audit AuditPort, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		ledger:  ledger,
		config:  config,
		audit:   audit,
		logger:  logger,
		now:     time.Now,
		citRate: closing.DefaultCITRate,
	}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// WithDefaultCITRate sets the rate applied when a close request does not
// carry one. Rates outside (0, 1) are ignored and the statutory default
// stays in effect.
func (s *Service) WithDefaultCITRate(rate float64) {
	if rate > 0 && rate < 1 {
		s.citRate = rate
	}
}

// SetLedger installs the posting port. The close service doubles as the
// journals period guard, so the two are wired in two steps at startup.
func (s *Service) SetLedger(ledger LedgerPort) {
	s.ledger = ledger
}

// GetPeriod returns the stored lifecycle row for a client month.
func (s *Service) GetPeriod(ctx context.Context, clientID, code string) (Period, error) {
	return s.repo.GetPeriod(ctx, clientID, code)
}

// ListPeriods returns a client's period rows, newest first.
func (s *Service) ListPeriods(ctx context.Context, clientID string) ([]Period, error) {
	return s.repo.ListPeriods(ctx, clientID)
}

// EnsureOpenForPosting implements the journals period guard: postings into a
// CLOSED period are rejected before any row is written. The close run itself
// posts while the period is CLOSING, so that state stays postable.
func (s *Service) EnsureOpenForPosting(ctx context.Context, clientID string, date time.Time) error {
	code := shared.PeriodOf(date).String()
	period, err := s.repo.GetPeriod(ctx, clientID, code)
	if err != nil {
		if err == ErrPeriodNotFound {
			// Never-touched months are open by definition.
			return nil
		}
		return err
	}
	if period.Status == PeriodStatusClosed {
		return fmt.Errorf("%w: %s %s", shared.ErrPeriodLocked, clientID, code)
	}
	return nil
}

// RunClose executes the month-end close for one client period:
//
//  1. move the period OPEN -> CLOSING under a row lock; a CLOSED period
//     fails with ErrPeriodClosed, a concurrent run with ErrCloseInProgress,
//     both before any entry is generated
//  2. load the period's entries and the adjustment configuration
//  3. post depreciation, accrual, and provision batches
//  4. run the closing engine over original plus generated entries and post
//     the closing batch
//  5. mark the period CLOSED with the run's figures
//
// A failure after step 1 reverts the period to OPEN so the run can be
// repeated once the cause is fixed; posted batches are idempotent, so the
// repeat never double-posts an adjustment that already landed.
func (s *Service) RunClose(ctx context.Context, in RunCloseInput) (Summary, error) {
	if err := in.Validate(); err != nil {
		return Summary{}, err
	}
	period, err := shared.ParsePeriod(in.Period)
	if err != nil {
		return Summary{}, err
	}
	citRate := in.CITRate
	if citRate == 0 {
		citRate = s.citRate
	}

	var row Period
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetPeriodForUpdate(ctx, in.ClientID, in.Period)
		if err != nil {
			return err
		}
		switch current.Status {
		case PeriodStatusClosed:
			return fmt.Errorf("%w: %s %s", shared.ErrPeriodClosed, in.ClientID, in.Period)
		case PeriodStatusClosing:
			return fmt.Errorf("%w: %s %s", shared.ErrCloseInProgress, in.ClientID, in.Period)
		}
		row = current
		return tx.SetStatus(ctx, current.ID, PeriodStatusClosing)
	})
	if err != nil {
		return Summary{}, err
	}

	summary, err := s.runLocked(ctx, in, period, citRate, row)
	if err != nil {
		s.revertToOpen(ctx, in, row)
		return Summary{}, err
	}
	return summary, nil
}

func (s *Service) runLocked(ctx context.Context, in RunCloseInput, period shared.Period, citRate float64, row Period) (Summary, error) {
	start, end := period.Start(), period.End()

	var (
		entries        []journals.Entry
		assets         []depreciation.FixedAsset
		accrualItems   []accruals.Item
		provisionItems []provisions.Item
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		entries, err = s.ledger.ListEntries(gctx, in.ClientID, &start, &end)
		return err
	})
	g.Go(func() (err error) {
		assets, err = s.config.ListFixedAssets(gctx, in.ClientID)
		return err
	})
	g.Go(func() (err error) {
		accrualItems, err = s.config.ListAccrualItems(gctx, in.ClientID)
		return err
	})
	g.Go(func() (err error) {
		provisionItems, err = s.config.ListProvisionItems(gctx, in.ClientID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	// A run repeated after a mid-close failure re-lists entries that already
	// contain batches the aborted run posted. Closing lines are dropped here
	// and re-derived; generated adjustments are handled by the replay check
	// below.
	closingDoc := closing.DocNo(period)
	base := make([]journals.Entry, 0, len(entries))
	for _, e := range entries {
		if e.DocNo == closingDoc {
			continue
		}
		base = append(base, e)
	}

	depRes := depreciation.Run(assets, in.ClientID, period)
	accRes := accruals.Run(accrualItems, in.ClientID, period)
	prvRes := provisions.Run(provisionItems, in.ClientID, period)
	for _, skip := range depRes.Skipped {
		s.logger.Info("depreciation skipped asset",
			slog.String("client_id", in.ClientID),
			slog.String("asset", skip.AssetCode),
			slog.String("reason", skip.Reason))
	}

	generated := make([]journals.Entry, 0, len(depRes.Entries)+len(accRes.Entries)+len(prvRes.Entries))
	generated = append(generated, depRes.Entries...)
	generated = append(generated, accRes.Entries...)
	generated = append(generated, prvRes.Entries...)
	combined := base
	if len(generated) > 0 {
		replayed, err := s.post(ctx, generated, "adjustments")
		if err != nil {
			return Summary{}, err
		}
		// On a replay the listed entries already carry these lines.
		if !replayed {
			combined = append(append([]journals.Entry(nil), base...), generated...)
		}
	}

	clsRes := closing.Close(combined, in.ClientID, period, citRate)
	if len(clsRes.Entries) > 0 {
		if _, err := s.post(ctx, clsRes.Entries, "closing"); err != nil {
			return Summary{}, err
		}
	}

	summary := Summary{
		ClientID:          in.ClientID,
		Period:            in.Period,
		ProfitBeforeTax:   clsRes.ProfitBeforeTax,
		CITAmount:         clsRes.CITAmount,
		NetProfit:         clsRes.NetProfit,
		TotalDepreciation: depRes.TotalDepreciation,
		TotalProvision:    prvRes.TotalProvision,
		AccrualsPosted:    len(accRes.Summary),
		GeneratedLines:    len(generated),
		ClosingLines:      len(clsRes.Entries),
	}

	now := s.now()
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.SaveCloseResult(ctx, row.ID, summary, in.ActorID, now)
	})
	if err != nil {
		return Summary{}, err
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, AuditEvent{
			ActorID:  in.ActorID,
			Action:   "period.close",
			ClientID: in.ClientID,
			Period:   in.Period,
			Meta: map[string]any{
				"net_profit":      summary.NetProfit,
				"cit_amount":      summary.CITAmount,
				"generated_lines": summary.GeneratedLines,
			},
			At: now,
		})
	}
	s.logger.Info("period closed",
		slog.String("client_id", in.ClientID),
		slog.String("period", in.Period),
		slog.Float64("net_profit", summary.NetProfit))
	return summary, nil
}

// post writes a generated batch through the ledger. Batch keys are derived
// from the deterministic document numbers, so a batch an aborted run already
// landed comes back as ErrBatchAlreadyPosted; that is reported as a replay,
// not a failure.
func (s *Service) post(ctx context.Context, entries []journals.Entry, kind string) (replayed bool, err error) {
	res, err := s.ledger.PostBatch(ctx, entries)
	if err != nil {
		if errors.Is(err, shared.ErrBatchAlreadyPosted) {
			s.logger.Info("close batch already posted by earlier run",
				slog.String("client_id", entries[0].ClientID),
				slog.String("kind", kind))
			return true, nil
		}
		return false, fmt.Errorf("close: post %s batch: %w", kind, err)
	}
	if !res.OK {
		// Generated batches are balanced by construction; a finding here is
		// an engine bug, not user input.
		return false, fmt.Errorf("close: %s batch failed validation: %+v", kind, res.Problems)
	}
	return false, nil
}

func (s *Service) revertToOpen(ctx context.Context, in RunCloseInput, row Period) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.SetStatus(ctx, row.ID, PeriodStatusOpen)
	})
	if err != nil {
		s.logger.Error("failed to reopen period after aborted close",
			slog.String("client_id", in.ClientID),
			slog.String("period", in.Period),
			slog.Any("error", err))
	}
}
