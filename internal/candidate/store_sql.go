package candidate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("candidate not found")
var ErrBadStage = errors.New("unknown stage")

type SQLStore struct{ db *sql.DB }

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Put(ctx context.Context, c Candidate) (Candidate, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Stage == "" {
		c.Stage = StageApplied
	}
	if !ValidStage(c.Stage) {
		return Candidate{}, fmt.Errorf("%w: %s", ErrBadStage, c.Stage)
	}
	now := time.Now().Unix()
	_, err := s.db.ExecContext(ctx, `INSERT INTO candidates (id,job_id,name,email,stage,resume_key,notes,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$8)
		ON CONFLICT (id) DO UPDATE SET job_id=EXCLUDED.job_id, name=EXCLUDED.name, email=EXCLUDED.email,
			stage=EXCLUDED.stage, resume_key=EXCLUDED.resume_key, notes=EXCLUDED.notes, updated_at=EXCLUDED.updated_at`,
		c.ID, c.JobID, c.Name, c.Email, string(c.Stage), c.ResumeKey, c.Notes, now)
	if err != nil {
		return Candidate{}, err
	}
	return s.Get(ctx, c.ID)
}

func (s *SQLStore) Get(ctx context.Context, id string) (Candidate, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,job_id,name,email,stage,resume_key,notes,created_at,updated_at
		FROM candidates WHERE id=$1`, id)
	return scanCandidate(row)
}

func (s *SQLStore) List(ctx context.Context, opts ListOpts) ([]Candidate, error) {
	q := `SELECT id,job_id,name,email,stage,resume_key,notes,created_at,updated_at FROM candidates WHERE 1=1`
	args := []any{}
	n := 0
	if opts.JobID != "" {
		n++
		q += fmt.Sprintf(" AND job_id=$%d", n)
		args = append(args, opts.JobID)
	}
	if opts.Stage != "" {
		n++
		q += fmt.Sprintf(" AND stage=$%d", n)
		args = append(args, opts.Stage)
	}
	if opts.Q != "" {
		n++
		q += fmt.Sprintf(" AND (LOWER(name) LIKE $%d OR LOWER(email) LIKE $%d)", n, n)
		args = append(args, "%"+strings.ToLower(opts.Q)+"%")
	}
	q += " ORDER BY created_at DESC"
	limit := opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}
	q += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLStore) MoveStage(ctx context.Context, id string, stage Stage) (Candidate, error) {
	if !ValidStage(stage) {
		return Candidate{}, fmt.Errorf("%w: %s", ErrBadStage, stage)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE candidates SET stage=$1, updated_at=$2 WHERE id=$3`,
		string(stage), time.Now().Unix(), id)
	if err != nil {
		return Candidate{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Candidate{}, ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *SQLStore) SetResume(ctx context.Context, id, key string) (Candidate, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE candidates SET resume_key=$1, updated_at=$2 WHERE id=$3`,
		key, time.Now().Unix(), id)
	if err != nil {
		return Candidate{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Candidate{}, ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM candidates WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(row rowScanner) (Candidate, error) {
	var c Candidate
	if err := row.Scan(&c.ID, &c.JobID, &c.Name, &c.Email, &c.Stage, &c.ResumeKey, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Candidate{}, ErrNotFound
		}
		return Candidate{}, err
	}
	return c, nil
}
