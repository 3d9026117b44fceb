package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/model"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/ports/repository"
)

var _ repository.ActivityLogRepository = (*activityLogRepo)(nil)

// activityLogRepo only ever inserts; entries are never updated or deleted.
type activityLogRepo struct{ pool *pgxpool.Pool }

func NewActivityLogRepo(pool *pgxpool.Pool) *activityLogRepo {
	return &activityLogRepo{pool: pool}
}

func (r *activityLogRepo) Append(ctx context.Context, tx repository.Tx, e *model.ActivityLog) error {
	meta, err := json.Marshal(e.Metadata)
	if err != nil {
		return domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO activity_logs (id, customer_id, session_id, type, status, timestamp, metadata)
VALUES ($1,$2,$3,$4,$5,$6,$7);`
	_, err = execSQL(ctx, r.pool, tx, q, e.ID, e.CustomerID, e.SessionID, e.Type, e.Status, e.Timestamp, meta)
	return writeErr(err)
}

func (r *activityLogRepo) ListByCustomer(ctx context.Context, tx repository.Tx, customerID string, limit int) ([]*model.ActivityLog, error) {
	const q = `
SELECT id, customer_id, session_id, type, status, timestamp, metadata
  FROM activity_logs
 WHERE customer_id=$1
 ORDER BY timestamp DESC
 LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, customerID, limit)
	if err != nil {
		return nil, queryErr(err)
	}
	defer rows.Close()
	var out []*model.ActivityLog
	for rows.Next() {
		e := &model.ActivityLog{}
		var typ, status string
		var meta []byte
		if err := rows.Scan(&e.ID, &e.CustomerID, &e.SessionID, &typ, &status, &e.Timestamp, &meta); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		e.Type = model.ActivityType(typ)
		e.Status = model.ActivityStatus(status)
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &e.Metadata); err != nil {
				return nil, domain.ErrReadDatabaseRow
			}
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}
