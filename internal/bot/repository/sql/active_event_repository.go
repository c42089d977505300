package sql

import (
	"context"
	"time"

	"github.com/central-university-dev/go-remu/internal/database"
	customerrors "github.com/central-university-dev/go-remu/internal/domain/errors"
	"github.com/central-university-dev/go-remu/internal/domain/models"
	"github.com/central-university-dev/go-remu/pkg/txs"
	"github.com/jackc/pgx/v5"
)

type ActiveEventRepository struct {
	db *database.PostgresDB
}

func NewActiveEventRepository(db *database.PostgresDB) *ActiveEventRepository {
	return &ActiveEventRepository{db: db}
}

func (r *ActiveEventRepository) Save(ctx context.Context, event *models.ActiveEvent) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	err := querier.QueryRow(ctx,
		`INSERT INTO active_event (uid, parent_id, event_text, event_time)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		event.UID, event.ParentID, event.Text, event.DueTime.Unix()).Scan(&event.ID)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "добавление активного события", Cause: err}
	}

	return nil
}

func (r *ActiveEventRepository) FindDue(ctx context.Context, now time.Time) ([]*models.ActiveEvent, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	rows, err := querier.Query(ctx,
		`SELECT id, uid, COALESCE(parent_id, -1), event_text, event_time
		 FROM active_event WHERE event_time <= $1
		 ORDER BY event_time, id`, now.Unix())
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "получение наступивших событий", Cause: err}
	}

	return scanActiveEvents(rows)
}

func (r *ActiveEventRepository) FindByUser(ctx context.Context, uid int64, limit uint64) ([]*models.ActiveEvent, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	rows, err := querier.Query(ctx,
		`SELECT id, uid, COALESCE(parent_id, -1), event_text, event_time
		 FROM active_event WHERE uid = $1
		 ORDER BY event_time, id LIMIT $2`, uid, int64(limit))
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "получение событий пользователя", Cause: err}
	}

	return scanActiveEvents(rows)
}

func (r *ActiveEventRepository) NearestDueTime(ctx context.Context) (*time.Time, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	var nearest *int64

	err := querier.QueryRow(ctx, `SELECT MIN(event_time) FROM active_event`).Scan(&nearest)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "получение ближайшего события", Cause: err}
	}

	if nearest == nil {
		return nil, nil
	}

	t := time.Unix(*nearest, 0).UTC()

	return &t, nil
}

func (r *ActiveEventRepository) Delete(ctx context.Context, id int64) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	if _, err := querier.Exec(ctx, `DELETE FROM active_event WHERE id = $1`, id); err != nil {
		return &customerrors.ErrSQLExecution{Operation: "удаление активного события", Cause: err}
	}

	return nil
}

func (r *ActiveEventRepository) DeleteByParent(ctx context.Context, parentID int64) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	if _, err := querier.Exec(ctx, `DELETE FROM active_event WHERE parent_id = $1`, parentID); err != nil {
		return &customerrors.ErrSQLExecution{Operation: "удаление событий шаблона", Cause: err}
	}

	return nil
}

func scanActiveEvents(rows pgx.Rows) ([]*models.ActiveEvent, error) {
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
		return nil, &customerrors.ErrSQLExecution{Operation: "чтение активных событий", Cause: err}
	}

	return events, nil
}
