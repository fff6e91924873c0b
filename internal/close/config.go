package close

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-books/meridian/internal/accounting/accruals"
	"github.com/meridian-books/meridian/internal/accounting/depreciation"
	"github.com/meridian-books/meridian/internal/accounting/provisions"
)

// ConfigRepository loads the per-client adjustment configuration: the fixed
// asset register, accrual schedules, and provision items the close run posts
// from.
type ConfigRepository struct {
	db *pgxpool.Pool
}

// NewConfigRepository constructs a Postgres-backed config source.
func NewConfigRepository(db *pgxpool.Pool) *ConfigRepository {
	return &ConfigRepository{db: db}
}

// ListFixedAssets loads the client's active asset register.
func (r *ConfigRepository) ListFixedAssets(ctx context.Context, clientID string) ([]depreciation.FixedAsset, error) {
	rows, err := r.db.Query(ctx, `
		SELECT asset_code, name, category, cost, residual_value, useful_life_years,
		       accumulated_bf, current_monthly
		FROM fixed_assets
		WHERE client_id = $1 AND active
		ORDER BY asset_code`, clientID)
	if err != nil {
		return nil, fmt.Errorf("close: list fixed assets: %w", err)
	}
	defer rows.Close()

	var out []depreciation.FixedAsset
	for rows.Next() {
		var a depreciation.FixedAsset
		if err := rows.Scan(&a.AssetCode, &a.Name, &a.Category, &a.Cost, &a.ResidualValue,
			&a.UsefulLifeYears, &a.AccumulatedBF, &a.CurrentMonthly); err != nil {
			return nil, fmt.Errorf("close: scan fixed asset: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListAccrualItems loads the client's accrual schedules.
func (r *ConfigRepository) ListAccrualItems(ctx context.Context, clientID string) ([]accruals.Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, type, description, original_amount, period_months, start_date,
		       monthly_amount, account_code, expense_account_code
		FROM accrual_items
		WHERE client_id = $1 AND active
		ORDER BY id`, clientID)
	if err != nil {
		return nil, fmt.Errorf("close: list accrual items: %w", err)
	}
	defer rows.Close()

	var out []accruals.Item
	for rows.Next() {
		var it accruals.Item
		if err := rows.Scan(&it.ID, &it.Type, &it.Description, &it.OriginalAmount,
			&it.PeriodMonths, &it.StartDate, &it.MonthlyAmount,
			&it.AccountCode, &it.ExpenseAccountCode); err != nil {
			return nil, fmt.Errorf("close: scan accrual item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// ListProvisionItems loads the client's provision estimates.
func (r *ConfigRepository) ListProvisionItems(ctx context.Context, clientID string) ([]provisions.Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, type, description, estimated_amount, probability,
		       account_code, expense_account_code
		FROM provision_items
		WHERE client_id = $1 AND active
		ORDER BY id`, clientID)
	if err != nil {
		return nil, fmt.Errorf("close: list provision items: %w", err)
	}
	defer rows.Close()

	var out []provisions.Item
	for rows.Next() {
		var it provisions.Item
		if err := rows.Scan(&it.ID, &it.Type, &it.Description, &it.EstimatedAmount,
			&it.Probability, &it.AccountCode, &it.ExpenseAccountCode); err != nil {
			return nil, fmt.Errorf("close: scan provision item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

var _ ConfigSource = (*ConfigRepository)(nil)
