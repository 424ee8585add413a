package assessment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_AssessmentLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	saved, err := store.PutAssessment(ctx, *relocationAssessment())
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.NotZero(t, saved.CreatedAt)

	got, err := store.GetAssessment(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.Title, got.Title)

	list, err := store.ListAssessments(ctx, "j1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = store.ListAssessments(ctx, "other-job")
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, store.DeleteAssessment(ctx, saved.ID))
	_, err = store.GetAssessment(ctx, saved.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_PutRejectsBadRules(t *testing.T) {
	store := NewInMemoryStore()
	a := relocationAssessment()
	a.Sections[0].Questions[0].ConditionalLogic = []ConditionalRule{
		{DependsOn: "q_visa", Condition: CondEquals, Value: "x", Action: ActionShow},
	}
	_, err := store.PutAssessment(context.Background(), *a)
	assert.ErrorIs(t, err, ErrBadRule)
}

func TestMemoryStore_ResponseLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	a, err := store.PutAssessment(ctx, *relocationAssessment())
	require.NoError(t, err)

	draft, err := store.SaveDraft(ctx, AssessmentResponse{
		CandidateID:  "cand-1",
		AssessmentID: a.ID,
		Answers:      map[string]any{"q_relocate": "yes"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, draft.ID)
	assert.Equal(t, StatusDraft, draft.Status)

	// review before submission is refused
	_, err = store.ReviewResponse(ctx, draft.ID, "recruiter-1")
	assert.ErrorIs(t, err, ErrNotSubmitted)

	submitted, err := store.SubmitResponse(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, submitted.Status)
	assert.NotZero(t, submitted.SubmittedAt)

	// submitting again is a no-op, not an error
	again, err := store.SubmitResponse(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, submitted.SubmittedAt, again.SubmittedAt)

	// a submitted response can no longer be overwritten as a draft
	_, err = store.SaveDraft(ctx, AssessmentResponse{
		ID:           draft.ID,
		CandidateID:  "cand-1",
		AssessmentID: a.ID,
	})
	assert.ErrorIs(t, err, ErrAlreadySubmitted)

	reviewed, err := store.ReviewResponse(ctx, draft.ID, "recruiter-1")
	require.NoError(t, err)
	assert.Equal(t, StatusReviewed, reviewed.Status)
	assert.Equal(t, "recruiter-1", reviewed.ReviewedBy)
}

func TestMemoryStore_SaveDraftRequiresAssessment(t *testing.T) {
	store := NewInMemoryStore()
	_, err := store.SaveDraft(context.Background(), AssessmentResponse{
		CandidateID:  "cand-1",
		AssessmentID: "missing",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ListResponsesFilters(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	a, err := store.PutAssessment(ctx, *relocationAssessment())
	require.NoError(t, err)

	d1, err := store.SaveDraft(ctx, AssessmentResponse{CandidateID: "cand-1", AssessmentID: a.ID})
	require.NoError(t, err)
	_, err = store.SaveDraft(ctx, AssessmentResponse{CandidateID: "cand-2", AssessmentID: a.ID})
	require.NoError(t, err)
	_, err = store.SubmitResponse(ctx, d1.ID)
	require.NoError(t, err)

	all, err := store.ListResponses(ctx, ResponseListOpts{AssessmentID: a.ID})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	drafts, err := store.ListResponses(ctx, ResponseListOpts{AssessmentID: a.ID, Status: string(StatusDraft)})
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "cand-2", drafts[0].CandidateID)

	mine, err := store.ListResponses(ctx, ResponseListOpts{CandidateID: "cand-1"})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, StatusSubmitted, mine[0].Status)
}

func TestStorePersistence_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	a, err := store.PutAssessment(ctx, *relocationAssessment())
	require.NoError(t, err)

	s := NewSession(&a, "cand-1", NewStorePersistence(store))
	require.NoError(t, s.FieldChange("q_relocate", "yes"))
	require.NoError(t, s.FieldChange("q_visa", "H1B"))

	require.NoError(t, s.Save(ctx))
	snap := s.Snapshot()
	rec, err := store.GetResponse(ctx, snap.ResponseID)
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, rec.Status)

	require.NoError(t, s.Submit(ctx))
	rec, err = store.GetResponse(ctx, snap.ResponseID)
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, rec.Status)
	assert.Equal(t, map[string]any{"q_relocate": "yes", "q_visa": "H1B"}, rec.Answers)
}
