package memory

import "context"

// Transactor runs the function directly. The in-memory store is used by a
// single writer, so there is nothing to isolate or roll back.
type Transactor struct{}

func NewTransactor() *Transactor {
	return &Transactor{}
}

func (t *Transactor) WithTransaction(ctx context.Context, txFunc func(ctx context.Context) error) error {
	return txFunc(ctx)
}
