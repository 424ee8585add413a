package assessment

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memoryStore is the dev/test fallback store. The session controller
// only sees the Persistence port, so swapping this for the SQL store
// changes nothing above it.
type memoryStore struct {
	mu          sync.RWMutex
	assessments map[string]Assessment
	responses   map[string]AssessmentResponse
}

func NewInMemoryStore() Store {
	return &memoryStore{
		assessments: map[string]Assessment{},
		responses:   map[string]AssessmentResponse{},
	}
}

func (m *memoryStore) PutAssessment(_ context.Context, a Assessment) (Assessment, error) {
	if err := CheckRules(&a); err != nil {
		return Assessment{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().Unix()
	if prev, ok := m.assessments[a.ID]; ok {
		a.CreatedAt = prev.CreatedAt
	} else {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	m.assessments[a.ID] = a
	return a, nil
}

func (m *memoryStore) GetAssessment(_ context.Context, id string) (Assessment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.assessments[id]
	if !ok {
		return Assessment{}, ErrNotFound
	}
	return a, nil
}

func (m *memoryStore) ListAssessments(_ context.Context, jobID string) ([]Assessment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Assessment{}
	for _, a := range m.assessments {
		if jobID == "" || a.JobID == jobID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memoryStore) DeleteAssessment(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.assessments[id]; !ok {
		return ErrNotFound
	}
	delete(m.assessments, id)
	return nil
}

func (m *memoryStore) SaveDraft(_ context.Context, rec AssessmentResponse) (AssessmentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.assessments[rec.AssessmentID]; !ok {
		return AssessmentResponse{}, ErrNotFound
	}
	now := time.Now().Unix()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if prev, ok := m.responses[rec.ID]; ok {
		if prev.Status != StatusDraft {
			return AssessmentResponse{}, ErrAlreadySubmitted
		}
		rec.CreatedAt = prev.CreatedAt
	} else {
		rec.CreatedAt = now
	}
	rec.Status = StatusDraft
	rec.UpdatedAt = now
	if rec.Answers == nil {
		rec.Answers = map[string]any{}
	}
	m.responses[rec.ID] = rec
	return rec, nil
}

func (m *memoryStore) SubmitResponse(_ context.Context, id string) (AssessmentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.responses[id]
	if !ok {
		return AssessmentResponse{}, ErrNotFound
	}
	if rec.Status != StatusDraft {
		return rec, nil
	}
	rec.Status = StatusSubmitted
	rec.SubmittedAt = time.Now().Unix()
	rec.UpdatedAt = rec.SubmittedAt
	m.responses[id] = rec
	return rec, nil
}

func (m *memoryStore) ReviewResponse(_ context.Context, id, reviewer string) (AssessmentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.responses[id]
	if !ok {
		return AssessmentResponse{}, ErrNotFound
	}
	if rec.Status == StatusDraft {
		return AssessmentResponse{}, ErrNotSubmitted
	}
	rec.Status = StatusReviewed
	rec.ReviewedBy = reviewer
	rec.UpdatedAt = time.Now().Unix()
	m.responses[id] = rec
	return rec, nil
}

func (m *memoryStore) GetResponse(_ context.Context, id string) (AssessmentResponse, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.responses[id]
	if !ok {
		return AssessmentResponse{}, ErrNotFound
	}
	return rec, nil
}

func (m *memoryStore) ListResponses(_ context.Context, opts ResponseListOpts) ([]AssessmentResponse, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []AssessmentResponse{}
	for _, rec := range m.responses {
		if opts.AssessmentID != "" && rec.AssessmentID != opts.AssessmentID {
			continue
		}
		if opts.CandidateID != "" && rec.CandidateID != opts.CandidateID {
			continue
		}
		if opts.Status != "" && string(rec.Status) != opts.Status {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
