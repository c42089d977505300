package orm

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/central-university-dev/go-remu/internal/database"
	customerrors "github.com/central-university-dev/go-remu/internal/domain/errors"
	"github.com/central-university-dev/go-remu/internal/domain/models"
	"github.com/central-university-dev/go-remu/pkg/txs"
	"github.com/jackc/pgx/v5"
)

var templateColumns = []string{"id", "uid", "event_text", "COALESCE(event_time, 0)", "COALESCE(event_wait, 1)"}

type TemplateRepository struct {
	db *database.PostgresDB
	sq sq.StatementBuilderType
}

func NewTemplateRepository(db *database.PostgresDB) *TemplateRepository {
	return &TemplateRepository{
		db: db,
		sq: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *TemplateRepository) Save(ctx context.Context, template *models.RepeatingTemplate) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	insertQuery := r.sq.Insert("scheduled_event").
		Columns("uid", "event_text", "event_time", "event_wait").
		Values(template.UID, template.Text, template.StartTime.Unix(), int64(template.Interval/time.Second)).
		Suffix("RETURNING id")

	query, args, err := insertQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "добавление повторяющегося события", Cause: err}
	}

	if err := querier.QueryRow(ctx, query, args...).Scan(&template.ID); err != nil {
		return &customerrors.ErrSQLExecution{Operation: "добавление повторяющегося события", Cause: err}
	}

	return nil
}

func (r *TemplateRepository) FindByID(ctx context.Context, id int64) (*models.RepeatingTemplate, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	query, args, err := r.sq.Select(templateColumns...).
		From("scheduled_event").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "получение повторяющегося события", Cause: err}
	}

	var (
		template  models.RepeatingTemplate
		startTime int64
		interval  int64
	)

	err = querier.QueryRow(ctx, query, args...).
		Scan(&template.ID, &template.UID, &template.Text, &startTime, &interval)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &customerrors.ErrTemplateNotFound{ID: id}
		}

		return nil, &customerrors.ErrSQLExecution{Operation: "получение повторяющегося события", Cause: err}
	}

	template.StartTime = time.Unix(startTime, 0).UTC()
	template.Interval = time.Duration(interval) * time.Second

	return &template, nil
}

func (r *TemplateRepository) FindByUser(ctx context.Context, uid int64, limit uint64) ([]*models.RepeatingTemplate, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	query, args, err := r.sq.Select(templateColumns...).
		From("scheduled_event").
		Where(sq.Eq{"uid": uid}).
		OrderBy("event_time", "id").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "получение повторяющихся событий", Cause: err}
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "получение повторяющихся событий", Cause: err}
	}
	defer rows.Close()

	templates := make([]*models.RepeatingTemplate, 0)

	for rows.Next() {
		var (
			template  models.RepeatingTemplate
			startTime int64
			interval  int64
		)

		if err := rows.Scan(&template.ID, &template.UID, &template.Text, &startTime, &interval); err != nil {
			return nil, &customerrors.ErrSQLScan{Entity: "повторяющееся событие", Cause: err}
		}

		template.StartTime = time.Unix(startTime, 0).UTC()
		template.Interval = time.Duration(interval) * time.Second
		templates = append(templates, &template)
	}

	if err := rows.Err(); err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "чтение повторяющихся событий", Cause: err}
	}

	return templates, nil
}

func (r *TemplateRepository) Delete(ctx context.Context, id int64) (bool, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	query, args, err := r.sq.Delete("scheduled_event").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return false, &customerrors.ErrBuildSQLQuery{Operation: "удаление повторяющегося события", Cause: err}
	}

	tag, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return false, &customerrors.ErrSQLExecution{Operation: "удаление повторяющегося события", Cause: err}
	}

	return tag.RowsAffected() > 0, nil
}
