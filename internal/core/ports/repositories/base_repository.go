package repositories

import (
	"context"
)

// TransactionManager runs a function as one unit of work against the persistent store.
type TransactionManager interface {
	// WithTx runs fn atomically: every write made through repos commits together or not at all.
	WithTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error

	// WithSnapshot runs fn against a consistent read-only view of the store.
	WithSnapshot(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
