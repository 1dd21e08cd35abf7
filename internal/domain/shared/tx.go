package shared

import "context"

// TxManager runs a function inside a single storage transaction. Every read
// and write performed through repositories within fn is applied atomically:
// if fn returns an error the transaction is rolled back and nothing is
// persisted. Implementations live in infrastructure/persistence.
type TxManager interface {
	// WithinTx executes fn inside a transaction. The context passed to fn
	// carries the transaction; repositories route their queries through it.
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
