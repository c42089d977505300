package repository

import (
	"log/slog"

	"github.com/central-university-dev/go-remu/internal/bot/repository/orm"
	sqlrepo "github.com/central-university-dev/go-remu/internal/bot/repository/sql"
	"github.com/central-university-dev/go-remu/internal/bot/repository/sqlite"
	"github.com/central-university-dev/go-remu/internal/config"
	"github.com/central-university-dev/go-remu/internal/database"
	"github.com/central-university-dev/go-remu/internal/domain/errors"
	"github.com/central-university-dev/go-remu/internal/domain/repositories"
	"github.com/central-university-dev/go-remu/internal/infrastructure/repositories/memory"
	"github.com/central-university-dev/go-remu/pkg/txs"
)

// Repositories is the set of storage ports the event store is built on.
type Repositories struct {
	Users     repositories.UserRepository
	Active    repositories.ActiveEventRepository
	Templates repositories.TemplateRepository
	TxManager repositories.Transactor
}

type Factory struct {
	postgres *database.PostgresDB
	sqlite   *database.SQLiteDB
	config   *config.Config
	logger   *slog.Logger
}

func NewFactory(postgres *database.PostgresDB, sqliteDB *database.SQLiteDB, config *config.Config, logger *slog.Logger) *Factory {
	return &Factory{
		postgres: postgres,
		sqlite:   sqliteDB,
		config:   config,
		logger:   logger,
	}
}

func (f *Factory) CreateRepositories() (*Repositories, error) {
	switch f.config.StorageBackend {
	case config.PostgresStorage:
		return f.createPostgresRepositories()
	case config.SQLiteStorage:
		f.logger.Info("Создание SQLite репозиториев событий")

		return &Repositories{
			Users:     sqlite.NewUserRepository(f.sqlite),
			Active:    sqlite.NewActiveEventRepository(f.sqlite),
			Templates: sqlite.NewTemplateRepository(f.sqlite),
			TxManager: txs.NewSQLTxManager(f.sqlite.DB, f.logger),
		}, nil
	case config.MemoryStorage:
		f.logger.Info("Создание in-memory репозиториев событий")

		return &Repositories{
			Users:     memory.NewUserRepository(),
			Active:    memory.NewActiveEventRepository(),
			Templates: memory.NewTemplateRepository(),
			TxManager: memory.NewTransactor(),
		}, nil
	default:
		return nil, &errors.ErrUnknownStorage{Backend: string(f.config.StorageBackend)}
	}
}

func (f *Factory) createPostgresRepositories() (*Repositories, error) {
	txManager := txs.NewTxManager(f.postgres.Pool, f.logger)

	switch f.config.DatabaseAccessType {
	case config.SquirrelAccess:
		f.logger.Info("Создание ORM (Squirrel) репозиториев событий")

		return &Repositories{
			Users:     orm.NewUserRepository(f.postgres),
			Active:    orm.NewActiveEventRepository(f.postgres),
			Templates: orm.NewTemplateRepository(f.postgres),
			TxManager: txManager,
		}, nil
	case config.SQLAccess:
		f.logger.Info("Создание SQL репозиториев событий")

		return &Repositories{
			Users:     sqlrepo.NewUserRepository(f.postgres),
			Active:    sqlrepo.NewActiveEventRepository(f.postgres),
			Templates: sqlrepo.NewTemplateRepository(f.postgres),
			TxManager: txManager,
		}, nil
	default:
		return nil, &errors.ErrUnknownDBAccessType{AccessType: string(f.config.DatabaseAccessType)}
	}
}
