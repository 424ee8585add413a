package assessment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SQLStore persists assessments and responses with sections and
// answers held as JSON columns, matching how the builder edits whole
// documents at a time.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) PutAssessment(ctx context.Context, a Assessment) (Assessment, error) {
	if err := CheckRules(&a); err != nil {
		return Assessment{}, err
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	sj, err := json.Marshal(a.Sections)
	if err != nil {
		return Assessment{}, fmt.Errorf("marshal sections: %w", err)
	}
	now := time.Now().Unix()
	a.UpdatedAt = now
	_, err = s.db.ExecContext(ctx, `INSERT INTO assessments (id,job_id,title,description,sections_json,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$6)
		ON CONFLICT (id) DO UPDATE SET job_id=EXCLUDED.job_id, title=EXCLUDED.title,
			description=EXCLUDED.description, sections_json=EXCLUDED.sections_json, updated_at=EXCLUDED.updated_at`,
		a.ID, a.JobID, a.Title, a.Description, string(sj), now)
	if err != nil {
		return Assessment{}, err
	}
	return s.GetAssessment(ctx, a.ID)
}

func (s *SQLStore) GetAssessment(ctx context.Context, id string) (Assessment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,job_id,title,description,sections_json,created_at,updated_at FROM assessments WHERE id=$1`, id)
	return scanAssessment(row)
}

func (s *SQLStore) ListAssessments(ctx context.Context, jobID string) ([]Assessment, error) {
	q := `SELECT id,job_id,title,description,sections_json,created_at,updated_at FROM assessments`
	args := []any{}
	if jobID != "" {
		q += ` WHERE job_id=$1`
		args = append(args, jobID)
	}
	q += ` ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Assessment{}
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteAssessment(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM assessments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) SaveDraft(ctx context.Context, rec AssessmentResponse) (AssessmentResponse, error) {
	var exist int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM assessments WHERE id=$1`, rec.AssessmentID).Scan(&exist); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AssessmentResponse{}, ErrNotFound
		}
		return AssessmentResponse{}, err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Answers == nil {
		rec.Answers = map[string]any{}
	}
	aj, err := json.Marshal(rec.Answers)
	if err != nil {
		return AssessmentResponse{}, fmt.Errorf("marshal answers: %w", err)
	}

	var status string
	err = s.db.QueryRowContext(ctx, `SELECT status FROM assessment_responses WHERE id=$1`, rec.ID).Scan(&status)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = s.db.ExecContext(ctx, `INSERT INTO assessment_responses (id,candidate_id,assessment_id,answers_json,status,created_at,updated_at)
			VALUES ($1,$2,$3,$4,'draft',$5,$5)`,
			rec.ID, rec.CandidateID, rec.AssessmentID, string(aj), time.Now().Unix())
	case err != nil:
		return AssessmentResponse{}, err
	case status != string(StatusDraft):
		return AssessmentResponse{}, ErrAlreadySubmitted
	default:
		_, err = s.db.ExecContext(ctx, `UPDATE assessment_responses SET answers_json=$1, updated_at=$2 WHERE id=$3`,
			string(aj), time.Now().Unix(), rec.ID)
	}
	if err != nil {
		return AssessmentResponse{}, err
	}
	return s.GetResponse(ctx, rec.ID)
}

func (s *SQLStore) SubmitResponse(ctx context.Context, id string) (AssessmentResponse, error) {
	rec, err := s.GetResponse(ctx, id)
	if err != nil {
		return AssessmentResponse{}, err
	}
	if rec.Status != StatusDraft {
		return rec, nil
	}
	now := time.Now().Unix()
	_, err = s.db.ExecContext(ctx, `UPDATE assessment_responses SET status='submitted', submitted_at=$1, updated_at=$1 WHERE id=$2`, now, id)
	if err != nil {
		return AssessmentResponse{}, err
	}
	return s.GetResponse(ctx, id)
}

func (s *SQLStore) ReviewResponse(ctx context.Context, id, reviewer string) (AssessmentResponse, error) {
	rec, err := s.GetResponse(ctx, id)
	if err != nil {
		return AssessmentResponse{}, err
	}
	if rec.Status == StatusDraft {
		return AssessmentResponse{}, ErrNotSubmitted
	}
	_, err = s.db.ExecContext(ctx, `UPDATE assessment_responses SET status='reviewed', reviewed_by=$1, updated_at=$2 WHERE id=$3`,
		reviewer, time.Now().Unix(), id)
	if err != nil {
		return AssessmentResponse{}, err
	}
	return s.GetResponse(ctx, id)
}

func (s *SQLStore) GetResponse(ctx context.Context, id string) (AssessmentResponse, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,candidate_id,assessment_id,answers_json,status,
		COALESCE(submitted_at,0),COALESCE(reviewed_by,''),created_at,updated_at
		FROM assessment_responses WHERE id=$1`, id)
	var rec AssessmentResponse
	var aj string
	if err := row.Scan(&rec.ID, &rec.CandidateID, &rec.AssessmentID, &aj, &rec.Status,
		&rec.SubmittedAt, &rec.ReviewedBy, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AssessmentResponse{}, ErrNotFound
		}
		return AssessmentResponse{}, err
	}
	if err := json.Unmarshal([]byte(aj), &rec.Answers); err != nil {
		rec.Answers = map[string]any{}
	}
	return rec, nil
}

func (s *SQLStore) ListResponses(ctx context.Context, opts ResponseListOpts) ([]AssessmentResponse, error) {
	q := `SELECT id,candidate_id,assessment_id,answers_json,status,
		COALESCE(submitted_at,0),COALESCE(reviewed_by,''),created_at,updated_at
		FROM assessment_responses WHERE 1=1`
	args := []any{}
	n := 0
	add := func(clause string, v any) {
		n++
		q += fmt.Sprintf(" AND %s=$%d", clause, n)
		args = append(args, v)
	}
	if opts.AssessmentID != "" {
		add("assessment_id", opts.AssessmentID)
	}
	if opts.CandidateID != "" {
		add("candidate_id", opts.CandidateID)
	}
	if opts.Status != "" {
		add("status", opts.Status)
	}
	q += " ORDER BY updated_at DESC"
	limit := opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, max(opts.Offset, 0))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []AssessmentResponse{}
	for rows.Next() {
		var rec AssessmentResponse
		var aj string
		if err := rows.Scan(&rec.ID, &rec.CandidateID, &rec.AssessmentID, &aj, &rec.Status,
			&rec.SubmittedAt, &rec.ReviewedBy, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(aj), &rec.Answers); err != nil {
			rec.Answers = map[string]any{}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssessment(row rowScanner) (Assessment, error) {
	var a Assessment
	var sj string
	if err := row.Scan(&a.ID, &a.JobID, &a.Title, &a.Description, &sj, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Assessment{}, ErrNotFound
		}
		return Assessment{}, err
	}
	if err := json.Unmarshal([]byte(sj), &a.Sections); err != nil {
		return Assessment{}, fmt.Errorf("decode sections: %w", err)
	}
	return a, nil
}
