package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/central-university-dev/go-remu/internal/database"
	customerrors "github.com/central-university-dev/go-remu/internal/domain/errors"
	"github.com/central-university-dev/go-remu/internal/domain/models"
	"github.com/central-university-dev/go-remu/pkg/txs"
)

var templateColumns = []string{"id", "uid", "event_text", "COALESCE(event_time, 0)", "COALESCE(event_wait, 1)"}

type TemplateRepository struct {
	db *database.SQLiteDB
	sq sq.StatementBuilderType
}

func NewTemplateRepository(db *database.SQLiteDB) *TemplateRepository {
	return &TemplateRepository{
		db: db,
		sq: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}
}

func (r *TemplateRepository) Save(ctx context.Context, template *models.RepeatingTemplate) error {
	querier := txs.GetSQLQuerier(ctx, r.db.DB)

	query, args, err := r.sq.Insert("scheduled_event").
		Columns("uid", "event_text", "event_time", "event_wait").
		Values(template.UID, template.Text, template.StartTime.Unix(), int64(template.Interval/time.Second)).
		ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "добавление повторяющегося события", Cause: err}
	}

	result, err := querier.ExecContext(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "добавление повторяющегося события", Cause: err}
	}

	id, err := result.LastInsertId()
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "добавление повторяющегося события", Cause: err}
	}

	template.ID = id

	return nil
}

func (r *TemplateRepository) FindByID(ctx context.Context, id int64) (*models.RepeatingTemplate, error) {
	querier := txs.GetSQLQuerier(ctx, r.db.DB)

	query, args, err := r.sq.Select(templateColumns...).
		From("scheduled_event").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "получение повторяющегося события", Cause: err}
	}

	template, err := scanTemplate(querier.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &customerrors.ErrTemplateNotFound{ID: id}
		}

		return nil, &customerrors.ErrSQLExecution{Operation: "получение повторяющегося события", Cause: err}
	}

	return template, nil
}

func (r *TemplateRepository) FindByUser(ctx context.Context, uid int64, limit uint64) ([]*models.RepeatingTemplate, error) {
	querier := txs.GetSQLQuerier(ctx, r.db.DB)

	query, args, err := r.sq.Select(templateColumns...).
		From("scheduled_event").
		Where(sq.Eq{"uid": uid}).
		OrderBy("event_time", "id").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "получение повторяющихся событий", Cause: err}
	}

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "получение повторяющихся событий", Cause: err}
	}
	defer rows.Close()

	templates := make([]*models.RepeatingTemplate, 0)

	for rows.Next() {
		template, err := scanTemplate(rows)
		if err != nil {
			return nil, &customerrors.ErrSQLScan{Entity: "повторяющееся событие", Cause: err}
		}

		templates = append(templates, template)
	}

	if err := rows.Err(); err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "чтение повторяющихся событий", Cause: err}
	}

	return templates, nil
}

func (r *TemplateRepository) Delete(ctx context.Context, id int64) (bool, error) {
	querier := txs.GetSQLQuerier(ctx, r.db.DB)

	query, args, err := r.sq.Delete("scheduled_event").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return false, &customerrors.ErrBuildSQLQuery{Operation: "удаление повторяющегося события", Cause: err}
	}

	result, err := querier.ExecContext(ctx, query, args...)
	if err != nil {
		return false, &customerrors.ErrSQLExecution{Operation: "удаление повторяющегося события", Cause: err}
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, &customerrors.ErrSQLExecution{Operation: "удаление повторяющегося события", Cause: err}
	}

	return affected > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row scanner) (*models.RepeatingTemplate, error) {
	var (
		template  models.RepeatingTemplate
		startTime int64
		interval  int64
	)

	if err := row.Scan(&template.ID, &template.UID, &template.Text, &startTime, &interval); err != nil {
		return nil, err
	}

	template.StartTime = time.Unix(startTime, 0).UTC()
	template.Interval = time.Duration(interval) * time.Second

	return &template, nil
}
