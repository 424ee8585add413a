package syncx

import (
	"context"
	"database/sql"
	"time"
)

// Event is one append-only audit record: pipeline stage moves,
// session submissions, save failures.
type Event struct {
	Offset    int64  `json:"offset"`
	Actor     string `json:"actor"`
	Type      string `json:"type"` // e.g., candidate.stage_changed, response.submitted
	Key       string `json:"key"`  // natural key: candidateID, responseID
	DataJSON  string `json:"data"`
	CreatedAt int64  `json:"created_at"`
}

type EventRepo struct{ db *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) Append(ctx context.Context, e Event) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_log (actor, typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		e.Actor, e.Type, e.Key, e.DataJSON, time.Now().Unix())
	return err
}

// ListByKey returns the timeline for one entity, oldest first.
func (r *EventRepo) ListByKey(ctx context.Context, key string, limit int) ([]Event, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT "offset", actor, typ, key, data, created_at FROM event_log
		 WHERE key=$1 ORDER BY "offset" ASC LIMIT $2`, key, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Offset, &e.Actor, &e.Type, &e.Key, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
