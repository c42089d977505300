package sqlite

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/central-university-dev/go-remu/internal/database"
	customerrors "github.com/central-university-dev/go-remu/internal/domain/errors"
	"github.com/central-university-dev/go-remu/internal/domain/models"
	"github.com/central-university-dev/go-remu/pkg/txs"
)

type UserRepository struct {
	db *database.SQLiteDB
	sq sq.StatementBuilderType
}

func NewUserRepository(db *database.SQLiteDB) *UserRepository {
	return &UserRepository{
		db: db,
		sq: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}
}

func (r *UserRepository) Save(ctx context.Context, user *models.User) error {
	querier := txs.GetSQLQuerier(ctx, r.db.DB)

	query, args, err := r.sq.Insert("user").
		Options("OR IGNORE").
		Columns("uid", "username", "first_name", "last_name", "timezone", "chat_id").
		Values(user.UID, user.Username, user.FirstName, user.LastName, user.UTCOffset, user.ChatID).
		ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "добавление пользователя", Cause: err}
	}

	result, err := querier.ExecContext(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "добавление пользователя", Cause: err}
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "добавление пользователя", Cause: err}
	}

	if affected == 0 {
		return &customerrors.ErrUserAlreadyExists{UID: user.UID}
	}

	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, uid int64) (*models.User, error) {
	querier := txs.GetSQLQuerier(ctx, r.db.DB)

	query, args, err := r.sq.Select(
		"uid", "username", "COALESCE(first_name, '')", "COALESCE(last_name, '')", "COALESCE(timezone, 0)", "chat_id",
	).
		From("user").
		Where(sq.Eq{"uid": uid}).
		ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "получение пользователя", Cause: err}
	}

	user := &models.User{}

	err = querier.QueryRowContext(ctx, query, args...).
		Scan(&user.UID, &user.Username, &user.FirstName, &user.LastName, &user.UTCOffset, &user.ChatID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &customerrors.ErrUserNotFound{UID: uid}
		}

		return nil, &customerrors.ErrSQLExecution{Operation: "получение пользователя", Cause: err}
	}

	return user, nil
}

func (r *UserRepository) GetAllChatIDs(ctx context.Context) ([]int64, error) {
	return r.selectColumn(ctx, "chat_id")
}

func (r *UserRepository) GetAllIDs(ctx context.Context) ([]int64, error) {
	return r.selectColumn(ctx, "uid")
}

func (r *UserRepository) selectColumn(ctx context.Context, column string) ([]int64, error) {
	querier := txs.GetSQLQuerier(ctx, r.db.DB)

	query, args, err := r.sq.Select(column).From("user").OrderBy("uid").ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "получение " + column, Cause: err}
	}

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "получение " + column, Cause: err}
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
		return nil, &customerrors.ErrSQLExecution{Operation: "получение " + column, Cause: err}
	}

	return values, nil
}
