package candidate

import "context"

type Stage string

const (
	StageApplied  Stage = "applied"
	StageScreen   Stage = "screen"
	StageTech     Stage = "tech"
	StageOffer    Stage = "offer"
	StageHired    Stage = "hired"
	StageRejected Stage = "rejected"
)

// ValidStage reports whether s is one of the pipeline stages.
func ValidStage(s Stage) bool {
	switch s {
	case StageApplied, StageScreen, StageTech, StageOffer, StageHired, StageRejected:
		return true
	}
	return false
}

type Candidate struct {
	ID        string `json:"id"`
	JobID     string `json:"job_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Stage     Stage  `json:"stage"`
	ResumeKey string `json:"resume_key,omitempty"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt int64  `json:"created_at,omitempty"`
	UpdatedAt int64  `json:"updated_at,omitempty"`
}

type ListOpts struct {
	JobID  string
	Stage  string
	Q      string // substring match on name or email
	Limit  int
	Offset int
}

type Store interface {
	Put(ctx context.Context, c Candidate) (Candidate, error)
	Get(ctx context.Context, id string) (Candidate, error)
	List(ctx context.Context, opts ListOpts) ([]Candidate, error)
	MoveStage(ctx context.Context, id string, stage Stage) (Candidate, error)
	SetResume(ctx context.Context, id, key string) (Candidate, error)
	Delete(ctx context.Context, id string) error
}
