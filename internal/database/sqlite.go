package database

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"

	// sqlite3 регистрирует драйвер для database/sql.
	_ "github.com/mattn/go-sqlite3"
)

//go:embed sqlite_schema.sql
var sqliteSchema string

type SQLiteDB struct {
	DB     *sql.DB
	Logger *slog.Logger
}

// NewSQLiteDB opens or creates the database file and applies the schema.
// SQLite allows one writer, so the pool is limited to a single connection.
func NewSQLiteDB(path string, logger *slog.Logger) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("ошибка при открытии SQLite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка при проверке соединения с SQLite: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("ошибка при выполнении %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка при создании схемы SQLite: %w", err)
	}

	logger.Info("База SQLite открыта", "path", path)

	return &SQLiteDB{
		DB:     db,
		Logger: logger,
	}, nil
}

func (db *SQLiteDB) Close() error {
	if db.DB == nil {
		return nil
	}

	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("ошибка при закрытии SQLite: %w", err)
	}

	db.Logger.Info("Соединение с SQLite закрыто")

	return nil
}
