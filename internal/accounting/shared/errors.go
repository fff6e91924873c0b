package shared

import "errors"

var (
	// ErrUnbalanced indicates a batch whose debits and credits do not match.
	ErrUnbalanced = errors.New("ledger: batch debits and credits must balance")
	// ErrPeriodLocked indicates a posting into a closed period.
	ErrPeriodLocked = errors.New("ledger: period locked for posting")
	// ErrPeriodClosed indicates a close attempted on an already closed period.
	ErrPeriodClosed = errors.New("ledger: period already closed")
	// ErrCloseInProgress indicates a concurrent close run on the same period.
	ErrCloseInProgress = errors.New("ledger: period close already in progress")
	// ErrBatchAlreadyPosted indicates an idempotent replay of a posted batch.
	ErrBatchAlreadyPosted = errors.New("ledger: batch already posted")
	// ErrClientNotFound indicates an unknown client identifier.
	ErrClientNotFound = errors.New("ledger: client not found")
	// ErrInvalidPeriod indicates a malformed YYYY-MM period code.
	ErrInvalidPeriod = errors.New("ledger: invalid period code")
	// ErrInvalidInput indicates a request that fails domain validation.
	ErrInvalidInput = errors.New("ledger: invalid input")
)
