package close

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-books/meridian/internal/platform/db"
)

// ErrPeriodNotFound indicates no stored period row for the client month.
var ErrPeriodNotFound = errors.New("close: period not found")

// Repository stores period lifecycle rows.
type Repository interface {
	// GetPeriod loads a period row without locking, for read paths.
	GetPeriod(ctx context.Context, clientID, code string) (Period, error)
	ListPeriods(ctx context.Context, clientID string) ([]Period, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the period operations available inside a transaction.
type TxRepository interface {
	// GetPeriodForUpdate locks the period row, creating an OPEN row when the
	// client month has never been touched.
	GetPeriodForUpdate(ctx context.Context, clientID, code string) (Period, error)
	SetStatus(ctx context.Context, id int64, status PeriodStatus) error
	SaveCloseResult(ctx context.Context, id int64, summary Summary, actor string, at time.Time) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository builds the PostgreSQL-backed period repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const periodColumns = `id, client_id, code, status, profit_before_tax, cit_amount, net_profit,
	closed_by, closed_at, created_at, updated_at`

func scanPeriod(row pgx.Row) (Period, error) {
	var p Period
	var closedBy *string
	err := row.Scan(&p.ID, &p.ClientID, &p.Code, &p.Status, &p.ProfitBeforeTax, &p.CITAmount,
		&p.NetProfit, &closedBy, &p.ClosedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Period{}, err
	}
	if closedBy != nil {
		p.ClosedBy = *closedBy
	}
	return p, nil
}

func (r *repository) GetPeriod(ctx context.Context, clientID, code string) (Period, error) {
	p, err := scanPeriod(r.db.QueryRow(ctx,
		`SELECT `+periodColumns+` FROM accounting_periods WHERE client_id = $1 AND code = $2`,
		clientID, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return Period{}, ErrPeriodNotFound
	}
	return p, err
}

func (r *repository) ListPeriods(ctx context.Context, clientID string) ([]Period, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+periodColumns+` FROM accounting_periods WHERE client_id = $1 ORDER BY code DESC`,
		clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var periods []Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (t *txRepository) GetPeriodForUpdate(ctx context.Context, clientID, code string) (Period, error) {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO accounting_periods (client_id, code, status, created_at, updated_at)
		 VALUES ($1, $2, 'OPEN', now(), now())
		 ON CONFLICT (client_id, code) DO NOTHING`,
		clientID, code)
	if err != nil {
		return Period{}, err
	}
	return scanPeriod(t.tx.QueryRow(ctx,
		`SELECT `+periodColumns+` FROM accounting_periods
		 WHERE client_id = $1 AND code = $2 FOR UPDATE`,
		clientID, code))
}

func (t *txRepository) SetStatus(ctx context.Context, id int64, status PeriodStatus) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE accounting_periods SET status = $2, updated_at = now() WHERE id = $1`,
		id, status)
	return err
}

func (t *txRepository) SaveCloseResult(ctx context.Context, id int64, summary Summary, actor string, at time.Time) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE accounting_periods
		 SET status = 'CLOSED', profit_before_tax = $2, cit_amount = $3, net_profit = $4,
		     closed_by = $5, closed_at = $6, updated_at = now()
		 WHERE id = $1`,
		id, summary.ProfitBeforeTax, summary.CITAmount, summary.NetProfit, actor, at)
	return err
}
