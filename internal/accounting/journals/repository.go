package journals

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-books/meridian/internal/accounting/shared"
	"github.com/meridian-books/meridian/internal/platform/db"
)

// Repository encapsulates ledger storage. Entries are insert-only: there is
// no update or delete path by design.
type Repository interface {
	ListEntries(ctx context.Context, clientID string, from, to *time.Time) ([]Entry, error)
	ListEntriesByDocNo(ctx context.Context, clientID, docNo string) ([]Entry, error)
	GetClientName(ctx context.Context, clientID string) (string, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the operations available inside a posting transaction.
type TxRepository interface {
	// ClaimBatch records the batch idempotency key. A duplicate key returns
	// shared.ErrBatchAlreadyPosted.
	ClaimBatch(ctx context.Context, batchKey, clientID string) error
	InsertEntries(ctx context.Context, entries []Entry) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository builds the PostgreSQL-backed ledger repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const entryColumns = `id, client_id, entry_date, doc_no, description, account_code, account_name,
	debit, credit, department_code, source_doc_id, system_generated, created_by, created_at`

func scanEntries(rows pgx.Rows) ([]Entry, error) {
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var e Entry
		err := rows.Scan(&e.ID, &e.ClientID, &e.Date, &e.DocNo, &e.Description, &e.AccountCode,
			&e.AccountName, &e.Debit, &e.Credit, &e.DepartmentCode, &e.SourceDocID,
			&e.SystemGenerated, &e.CreatedBy, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *repository) ListEntries(ctx context.Context, clientID string, from, to *time.Time) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM gl_entries WHERE client_id = $1`
	args := []any{clientID}
	if from != nil {
		args = append(args, *from)
		query += ` AND entry_date >= $2`
	}
	if to != nil {
		args = append(args, *to)
		if from != nil {
			query += ` AND entry_date <= $3`
		} else {
			query += ` AND entry_date <= $2`
		}
	}
	query += ` ORDER BY entry_date, doc_no, created_at`
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

func (r *repository) ListEntriesByDocNo(ctx context.Context, clientID, docNo string) ([]Entry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+entryColumns+` FROM gl_entries WHERE client_id = $1 AND doc_no = $2 ORDER BY created_at`,
		clientID, docNo)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

func (r *repository) GetClientName(ctx context.Context, clientID string) (string, error) {
	var name string
	err := r.db.QueryRow(ctx, `SELECT name FROM clients WHERE id = $1`, clientID).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", shared.ErrClientNotFound
	}
	if err != nil {
		return "", err
	}
	return name, nil
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (t *txRepository) ClaimBatch(ctx context.Context, batchKey, clientID string) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO gl_batches (batch_key, client_id, posted_at) VALUES ($1, $2, now())`,
		batchKey, clientID)
	if isUniqueViolation(err) {
		return shared.ErrBatchAlreadyPosted
	}
	return err
}

func (t *txRepository) InsertEntries(ctx context.Context, entries []Entry) error {
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(`INSERT INTO gl_entries (`+entryColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			e.ID, e.ClientID, e.Date, e.DocNo, e.Description, e.AccountCode, e.AccountName,
			e.Debit, e.Credit, e.DepartmentCode, e.SourceDocID, e.SystemGenerated,
			e.CreatedBy, e.CreatedAt)
	}
	results := t.tx.SendBatch(ctx, batch)
	defer results.Close()
	for range entries {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsTransient reports whether a posting failure is worth retrying: a
// serialization failure, a deadlock, or a dropped connection.
func IsTransient(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "40001" || pgErr.Code == "40P01" {
			return true
		}
		return len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08"
	}
	return false
}
