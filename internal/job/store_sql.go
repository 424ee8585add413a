package job

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("job not found")
var ErrSlugTaken = errors.New("slug already in use")

type SQLStore struct{ db *sql.DB }

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL slug from a title.
func Slugify(title string) string {
	s := slugStrip.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(s, "-")
}

func (s *SQLStore) Put(ctx context.Context, j Job) (Job, error) {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	if j.Slug == "" {
		j.Slug = Slugify(j.Title)
	}
	if j.Status == "" {
		j.Status = StatusActive
	}
	// slug must not collide with another job
	var other string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM jobs WHERE slug=$1 AND id<>$2`, j.Slug, j.ID).Scan(&other)
	if err == nil {
		return Job{}, fmt.Errorf("%w: %s", ErrSlugTaken, j.Slug)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Job{}, err
	}

	tj, err := json.Marshal(j.Tags)
	if err != nil {
		return Job{}, err
	}
	now := time.Now().Unix()
	_, err = s.db.ExecContext(ctx, `INSERT INTO jobs (id,title,slug,status,tags_json,sort_order,description,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$8)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, slug=EXCLUDED.slug, status=EXCLUDED.status,
			tags_json=EXCLUDED.tags_json, sort_order=EXCLUDED.sort_order, description=EXCLUDED.description,
			updated_at=EXCLUDED.updated_at`,
		j.ID, j.Title, j.Slug, string(j.Status), string(tj), j.Order, j.Description, now)
	if err != nil {
		return Job{}, err
	}
	return s.Get(ctx, j.ID)
}

func (s *SQLStore) Get(ctx context.Context, id string) (Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,title,slug,status,tags_json,sort_order,description,created_at,updated_at
		FROM jobs WHERE id=$1`, id)
	return scanJob(row)
}

func (s *SQLStore) GetBySlug(ctx context.Context, slug string) (Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,title,slug,status,tags_json,sort_order,description,created_at,updated_at
		FROM jobs WHERE slug=$1`, slug)
	return scanJob(row)
}

func (s *SQLStore) List(ctx context.Context, opts ListOpts) ([]Job, error) {
	q := `SELECT id,title,slug,status,tags_json,sort_order,description,created_at,updated_at FROM jobs WHERE 1=1`
	args := []any{}
	n := 0
	if opts.Q != "" {
		n++
		q += fmt.Sprintf(" AND LOWER(title) LIKE $%d", n)
		args = append(args, "%"+strings.ToLower(opts.Q)+"%")
	}
	if opts.Status != "" {
		n++
		q += fmt.Sprintf(" AND status=$%d", n)
		args = append(args, opts.Status)
	}
	if opts.Tag != "" {
		n++
		// tags are a small JSON array; substring match keeps the query portable
		q += fmt.Sprintf(" AND tags_json LIKE $%d", n)
		args = append(args, `%"`+opts.Tag+`"%`)
	}
	q += " ORDER BY sort_order ASC, created_at DESC"
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
	out := []Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (s *SQLStore) SetStatus(ctx context.Context, id string, status Status) (Job, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE jobs SET status=$1, updated_at=$2 WHERE id=$3`,
		string(status), time.Now().Unix(), id)
	if err != nil {
		return Job{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Job{}, ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id=$1`, id)
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

func scanJob(row rowScanner) (Job, error) {
	var j Job
	var tj string
	if err := row.Scan(&j.ID, &j.Title, &j.Slug, &j.Status, &tj, &j.Order, &j.Description, &j.CreatedAt, &j.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Job{}, ErrNotFound
		}
		return Job{}, err
	}
	if err := json.Unmarshal([]byte(tj), &j.Tags); err != nil {
		j.Tags = nil
	}
	return j, nil
}
