package orm

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/central-university-dev/go-remu/internal/database"
	customerrors "github.com/central-university-dev/go-remu/internal/domain/errors"
	"github.com/central-university-dev/go-remu/internal/domain/models"
	"github.com/central-university-dev/go-remu/pkg/txs"
)

var activeEventColumns = []string{"id", "uid", "COALESCE(parent_id, -1)", "event_text", "event_time"}

type ActiveEventRepository struct {
	db *database.PostgresDB
	sq sq.StatementBuilderType
}

func NewActiveEventRepository(db *database.PostgresDB) *ActiveEventRepository {
	return &ActiveEventRepository{
		db: db,
		sq: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *ActiveEventRepository) Save(ctx context.Context, event *models.ActiveEvent) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	insertQuery := r.sq.Insert("active_event").
		Columns("uid", "parent_id", "event_text", "event_time").
		Values(event.UID, event.ParentID, event.Text, event.DueTime.Unix()).
		Suffix("RETURNING id")

	query, args, err := insertQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "добавление активного события", Cause: err}
	}

	if err := querier.QueryRow(ctx, query, args...).Scan(&event.ID); err != nil {
		return &customerrors.ErrSQLExecution{Operation: "добавление активного события", Cause: err}
	}

	return nil
}

func (r *ActiveEventRepository) FindDue(ctx context.Context, now time.Time) ([]*models.ActiveEvent, error) {
	selectQuery := r.sq.Select(activeEventColumns...).
		From("active_event").
		Where(sq.LtOrEq{"event_time": now.Unix()}).
		OrderBy("event_time", "id")

	return r.selectEvents(ctx, selectQuery, "получение наступивших событий")
}

func (r *ActiveEventRepository) FindByUser(ctx context.Context, uid int64, limit uint64) ([]*models.ActiveEvent, error) {
	selectQuery := r.sq.Select(activeEventColumns...).
		From("active_event").
		Where(sq.Eq{"uid": uid}).
		OrderBy("event_time", "id").
		Limit(limit)

	return r.selectEvents(ctx, selectQuery, "получение событий пользователя")
}

func (r *ActiveEventRepository) NearestDueTime(ctx context.Context) (*time.Time, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	query, args, err := r.sq.Select("MIN(event_time)").From("active_event").ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "получение ближайшего события", Cause: err}
	}

	var nearest *int64

	if err := querier.QueryRow(ctx, query, args...).Scan(&nearest); err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "получение ближайшего события", Cause: err}
	}

	if nearest == nil {
		return nil, nil
	}

	t := time.Unix(*nearest, 0).UTC()

	return &t, nil
}

func (r *ActiveEventRepository) Delete(ctx context.Context, id int64) error {
	return r.delete(ctx, sq.Eq{"id": id}, "удаление активного события")
}

func (r *ActiveEventRepository) DeleteByParent(ctx context.Context, parentID int64) error {
	return r.delete(ctx, sq.Eq{"parent_id": parentID}, "удаление событий шаблона")
}

func (r *ActiveEventRepository) delete(ctx context.Context, where sq.Eq, operation string) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	query, args, err := r.sq.Delete("active_event").Where(where).ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: operation, Cause: err}
	}

	if _, err := querier.Exec(ctx, query, args...); err != nil {
		return &customerrors.ErrSQLExecution{Operation: operation, Cause: err}
	}

	return nil
}

func (r *ActiveEventRepository) selectEvents(
	ctx context.Context,
	selectQuery sq.SelectBuilder,
	operation string,
) ([]*models.ActiveEvent, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: operation, Cause: err}
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: operation, Cause: err}
	}
	defer rows.Close()

	events := make([]*models.ActiveEvent, 0)

	for rows.Next() {
		var (
			event   models.ActiveEvent
			dueTime int64
		)

		if err := rows.Scan(&event.ID, &event.UID, &event.ParentID, &event.Text, &dueTime); err != nil {
			return nil, &customerrors.ErrSQLScan{Entity: "активное событие", Cause: err}
		}

		event.DueTime = time.Unix(dueTime, 0).UTC()
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: operation, Cause: err}
	}

	return events, nil
}
