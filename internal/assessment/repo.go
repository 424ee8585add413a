package assessment

import (
	"context"
	"errors"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadySubmitted = errors.New("response already submitted")
	ErrNotSubmitted     = errors.New("response not submitted")
)

// ResponseListOpts filters ListResponses for recruiter dashboards.
type ResponseListOpts struct {
	AssessmentID string
	CandidateID  string
	Status       string // optional: draft|submitted|reviewed
	Limit        int
	Offset       int
}

// Store persists assessments and response records. PutAssessment runs
// CheckRules and rejects documents with forward or cyclic rule
// dependencies.
type Store interface {
	PutAssessment(ctx context.Context, a Assessment) (Assessment, error)
	GetAssessment(ctx context.Context, id string) (Assessment, error)
	ListAssessments(ctx context.Context, jobID string) ([]Assessment, error)
	DeleteAssessment(ctx context.Context, id string) error

	SaveDraft(ctx context.Context, rec AssessmentResponse) (AssessmentResponse, error)
	SubmitResponse(ctx context.Context, id string) (AssessmentResponse, error)
	ReviewResponse(ctx context.Context, id, reviewer string) (AssessmentResponse, error)
	GetResponse(ctx context.Context, id string) (AssessmentResponse, error)
	ListResponses(ctx context.Context, opts ResponseListOpts) ([]AssessmentResponse, error)
}

// StorePersistence adapts a Store to the session's Persistence port:
// save upserts the draft, submit upserts then flips the status. The
// session's contract stays "save succeeds or throws" no matter how
// the store is backed.
type StorePersistence struct {
	store Store
}

func NewStorePersistence(store Store) *StorePersistence {
	return &StorePersistence{store: store}
}

func (p *StorePersistence) Save(ctx context.Context, rec *AssessmentResponse) error {
	_, err := p.store.SaveDraft(ctx, *rec)
	return err
}

func (p *StorePersistence) Submit(ctx context.Context, rec *AssessmentResponse) error {
	if _, err := p.store.SaveDraft(ctx, *rec); err != nil {
		return err
	}
	_, err := p.store.SubmitResponse(ctx, rec.ID)
	return err
}
