package txs

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// SQLQuerier is the database/sql counterpart of Querier.
type SQLQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type sqlTxKey struct{}

func GetSQLQuerier(ctx context.Context, defaultQuerier SQLQuerier) SQLQuerier {
	if tx, ok := ctx.Value(sqlTxKey{}).(*sql.Tx); ok {
		return tx
	}

	return defaultQuerier
}

type SQLTxManager struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSQLTxManager(db *sql.DB, logger *slog.Logger) *SQLTxManager {
	return &SQLTxManager{
		db:     db,
		logger: logger,
	}
}

func (t *SQLTxManager) WithTransaction(ctx context.Context, txFunc func(ctx context.Context) error) error {
	if _, ok := ctx.Value(sqlTxKey{}).(*sql.Tx); ok {
		return txFunc(ctx)
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		t.logger.Error("Ошибка при начале транзакции", "error", err)
		return fmt.Errorf("ошибка при начале транзакции: %w", err)
	}

	txCtx := context.WithValue(ctx, sqlTxKey{}, tx)

	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("Паника в транзакции, выполняем rollback", "panic", r)

			_ = tx.Rollback()

			panic(r)
		}
	}()

	if err := txFunc(txCtx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			t.logger.Error("Ошибка при rollback транзакции", "error", rbErr)
			return fmt.Errorf("ошибка в транзакции: %w, ошибка rollback: %v", err, rbErr)
		}

		return fmt.Errorf("ошибка в транзакции: %w", err)
	}

	if err := tx.Commit(); err != nil {
		t.logger.Error("Ошибка при commit транзакции", "error", err)
		return fmt.Errorf("ошибка при commit транзакции: %w", err)
	}

	return nil
}
