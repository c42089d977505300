package sql

import (
	"context"
	"errors"

	"github.com/central-university-dev/go-remu/internal/database"
	customerrors "github.com/central-university-dev/go-remu/internal/domain/errors"
	"github.com/central-university-dev/go-remu/internal/domain/models"
	"github.com/central-university-dev/go-remu/pkg/txs"
	"github.com/jackc/pgx/v5"
)

type UserRepository struct {
	db *database.PostgresDB
}

func NewUserRepository(db *database.PostgresDB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Save(ctx context.Context, user *models.User) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	tag, err := querier.Exec(ctx,
		`INSERT INTO "user" (uid, username, first_name, last_name, timezone, chat_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (uid) DO NOTHING`,
		user.UID, user.Username, user.FirstName, user.LastName, user.UTCOffset, user.ChatID)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "добавление пользователя", Cause: err}
	}

	if tag.RowsAffected() == 0 {
		return &customerrors.ErrUserAlreadyExists{UID: user.UID}
	}

	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, uid int64) (*models.User, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	user := &models.User{}

	err := querier.QueryRow(ctx,
		`SELECT uid, username, COALESCE(first_name, ''), COALESCE(last_name, ''), COALESCE(timezone, 0), chat_id
		 FROM "user" WHERE uid = $1`, uid).
		Scan(&user.UID, &user.Username, &user.FirstName, &user.LastName, &user.UTCOffset, &user.ChatID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &customerrors.ErrUserNotFound{UID: uid}
		}

		return nil, &customerrors.ErrSQLExecution{Operation: "получение пользователя", Cause: err}
	}

	return user, nil
}

func (r *UserRepository) GetAllChatIDs(ctx context.Context) ([]int64, error) {
	return r.selectColumn(ctx, `SELECT chat_id FROM "user" ORDER BY uid`, "получение chat_id пользователей")
}

func (r *UserRepository) GetAllIDs(ctx context.Context) ([]int64, error) {
	return r.selectColumn(ctx, `SELECT uid FROM "user" ORDER BY uid`, "получение идентификаторов пользователей")
}

func (r *UserRepository) selectColumn(ctx context.Context, query, operation string) ([]int64, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	rows, err := querier.Query(ctx, query)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: operation, Cause: err}
	}
	defer rows.Close()

	values := make([]int64, 0)

	for rows.Next() {
		var value int64
		if err := rows.Scan(&value); err != nil {
			return nil, &customerrors.ErrSQLScan{Entity: "пользователь", Cause: err}
		}

		values = append(values, value)
	}

	if err := rows.Err(); err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: operation, Cause: err}
	}

	return values, nil
}
