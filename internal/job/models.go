package job

import "context"

type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// Job is a posting in the board. Order is the recruiter-arranged
// position within the board; the UI reorders by swapping Order values
// and re-putting.
type Job struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Status      Status   `json:"status"`
	Tags        []string `json:"tags,omitempty"`
	Order       int      `json:"order"`
	Description string   `json:"description,omitempty"`
	CreatedAt   int64    `json:"created_at,omitempty"`
	UpdatedAt   int64    `json:"updated_at,omitempty"`
}

type ListOpts struct {
	Q      string // substring match on title
	Status string
	Tag    string
	Limit  int
	Offset int
}

type Store interface {
	Put(ctx context.Context, j Job) (Job, error)
	Get(ctx context.Context, id string) (Job, error)
	GetBySlug(ctx context.Context, slug string) (Job, error)
	List(ctx context.Context, opts ListOpts) ([]Job, error)
	SetStatus(ctx context.Context, id string, status Status) (Job, error)
	Delete(ctx context.Context, id string) error
}
