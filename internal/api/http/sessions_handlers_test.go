package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireloop/hireloop-ats/internal/assessment"
	authmw "github.com/hireloop/hireloop-ats/internal/auth/middleware"
	"github.com/hireloop/hireloop-ats/internal/rbac"
)

// asIdentity stamps subject and role the way JWTMiddleware does.
func asIdentity(sub, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := authmw.WithSubject(r.Context(), sub)
			ctx = rbac.WithRole(ctx, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func testRouter(t *testing.T, store assessment.Store, cfg SessionConfig, sub, role string) (*chi.Mux, *SessionHub) {
	t.Helper()
	hub := NewSessionHub()
	r := chi.NewRouter()
	r.Use(asIdentity(sub, role))
	r.Post("/sessions", CreateSessionHandler(hub, store, nil, cfg))
	r.Get("/sessions/{sessionID}", GetSessionHandler(hub))
	r.Post("/sessions/{sessionID}/answer", AnswerHandler(hub))
	r.Post("/sessions/{sessionID}/blur", BlurHandler(hub))
	r.Post("/sessions/{sessionID}/section", GotoSectionHandler(hub))
	r.Post("/sessions/{sessionID}/save", SaveSessionHandler(hub))
	r.Post("/sessions/{sessionID}/submit", SubmitSessionHandler(hub))
	r.Get("/responses/{responseID}", GetResponseHandler(store))
	return r, hub
}

func seedAssessment(t *testing.T, store assessment.Store) assessment.Assessment {
	t.Helper()
	a, err := store.PutAssessment(context.Background(), assessment.Assessment{
		JobID: "j1",
		Title: "Screen",
		Sections: []assessment.Section{{
			ID: "s1",
			Questions: []assessment.Question{
				{
					ID: "q_relocate", Type: assessment.SingleChoice, Required: true,
					Options: []string{"yes", "no"},
				},
				{
					ID: "q_visa", Type: assessment.ShortText,
					ConditionalLogic: []assessment.ConditionalRule{
						{DependsOn: "q_relocate", Condition: assessment.CondEquals, Value: "yes", Action: assessment.ActionShow},
						{DependsOn: "q_relocate", Condition: assessment.CondEquals, Value: "yes", Action: assessment.ActionRequire},
					},
				},
			},
		}},
	})
	require.NoError(t, err)
	return a
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeSnapshot(t *testing.T, w *httptest.ResponseRecorder) assessment.Snapshot {
	t.Helper()
	var snap assessment.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	return snap
}

func TestSessionFlow(t *testing.T) {
	store := assessment.NewInMemoryStore()
	a := seedAssessment(t, store)
	r, _ := testRouter(t, store, SessionConfig{}, "cand-1", "candidate")

	w := doJSON(t, r, http.MethodPost, "/sessions", map[string]string{
		"assessment_id": a.ID,
		"candidate_id":  "cand-1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	snap := decodeSnapshot(t, w)
	require.NotEmpty(t, snap.ResponseID)
	assert.False(t, snap.States["q_visa"].Visible)

	sid := snap.ResponseID

	// answering the trigger reveals the follow-up in the same response
	w = doJSON(t, r, http.MethodPost, "/sessions/"+sid+"/answer", map[string]any{
		"question_id": "q_relocate",
		"value":       "yes",
	})
	require.Equal(t, http.StatusOK, w.Code)
	snap = decodeSnapshot(t, w)
	assert.True(t, snap.States["q_visa"].Visible)
	assert.True(t, snap.States["q_visa"].Required)

	// submitting with the follow-up unanswered is a 422 with field errors
	w = doJSON(t, r, http.MethodPost, "/sessions/"+sid+"/submit", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var failure struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &failure))
	assert.Contains(t, failure.Fields, "q_visa")

	w = doJSON(t, r, http.MethodPost, "/sessions/"+sid+"/answer", map[string]any{
		"question_id": "q_visa",
		"value":       "H1B",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/sessions/"+sid+"/submit", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	snap = decodeSnapshot(t, w)
	assert.True(t, snap.Closed)

	// submit removes the session from the hub
	w = doJSON(t, r, http.MethodGet, "/sessions/"+sid, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	rec, err := store.GetResponse(context.Background(), sid)
	require.NoError(t, err)
	assert.Equal(t, assessment.StatusSubmitted, rec.Status)
}

func TestSessionResumeDraft(t *testing.T) {
	store := assessment.NewInMemoryStore()
	a := seedAssessment(t, store)
	r, _ := testRouter(t, store, SessionConfig{}, "cand-1", "candidate")

	draft, err := store.SaveDraft(context.Background(), assessment.AssessmentResponse{
		CandidateID:  "cand-1",
		AssessmentID: a.ID,
		Answers:      map[string]any{"q_relocate": "yes", "q_visa": "H1B"},
	})
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodPost, "/sessions", map[string]string{
		"assessment_id": a.ID,
		"candidate_id":  "cand-1",
		"response_id":   draft.ID,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	snap := decodeSnapshot(t, w)
	assert.Equal(t, draft.ID, snap.ResponseID)
	assert.Equal(t, "H1B", snap.Responses["q_visa"])
	assert.Equal(t, 100, snap.Completion)
}

func TestSessionResumeSubmittedConflicts(t *testing.T) {
	store := assessment.NewInMemoryStore()
	a := seedAssessment(t, store)
	r, _ := testRouter(t, store, SessionConfig{}, "cand-1", "candidate")

	draft, err := store.SaveDraft(context.Background(), assessment.AssessmentResponse{
		CandidateID:  "cand-1",
		AssessmentID: a.ID,
		Answers:      map[string]any{"q_relocate": "no"},
	})
	require.NoError(t, err)
	_, err = store.SubmitResponse(context.Background(), draft.ID)
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodPost, "/sessions", map[string]string{
		"assessment_id": a.ID,
		"candidate_id":  "cand-1",
		"response_id":   draft.ID,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSessionBadRequests(t *testing.T) {
	store := assessment.NewInMemoryStore()
	a := seedAssessment(t, store)
	r, _ := testRouter(t, store, SessionConfig{}, "cand-1", "candidate")

	w := doJSON(t, r, http.MethodPost, "/sessions", map[string]string{"candidate_id": "cand-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/sessions", map[string]string{
		"assessment_id": "missing",
		"candidate_id":  "cand-1",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodPost, "/sessions", map[string]string{
		"assessment_id": a.ID,
		"candidate_id":  "cand-1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	sid := decodeSnapshot(t, w).ResponseID

	w = doJSON(t, r, http.MethodPost, "/sessions/"+sid+"/answer", map[string]any{
		"question_id": "q_unknown",
		"value":       "x",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/sessions/"+sid+"/save", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "empty draft save is refused")

	w = doJSON(t, r, http.MethodPost, "/sessions/"+sid+"/section", map[string]int{"section": 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/sessions/unknown/answer", map[string]any{
		"question_id": "q_relocate",
		"value":       "yes",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResponseOwnershipScoping(t *testing.T) {
	store := assessment.NewInMemoryStore()
	a := seedAssessment(t, store)

	victim, err := store.SaveDraft(context.Background(), assessment.AssessmentResponse{
		CandidateID:  "victim",
		AssessmentID: a.ID,
		Answers:      map[string]any{"q_relocate": "yes", "q_visa": "private answer"},
	})
	require.NoError(t, err)

	// another candidate cannot read the record by ID
	r, _ := testRouter(t, store, SessionConfig{}, "attacker", "candidate")
	w := doJSON(t, r, http.MethodGet, "/responses/"+victim.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NotContains(t, w.Body.String(), "private answer")

	// nor resume (and overwrite) the victim's draft
	w = doJSON(t, r, http.MethodPost, "/sessions", map[string]string{
		"assessment_id": a.ID,
		"candidate_id":  "attacker",
		"response_id":   victim.ID,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// claiming the victim's candidate_id changes nothing: it is forced
	// to the authenticated subject before any record is touched
	w = doJSON(t, r, http.MethodPost, "/sessions", map[string]string{
		"assessment_id": a.ID,
		"candidate_id":  "victim",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attacker", decodeSnapshot(t, w).CandidateID)

	// the owner reads and resumes freely
	r, _ = testRouter(t, store, SessionConfig{}, "victim", "candidate")
	w = doJSON(t, r, http.MethodGet, "/responses/"+victim.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodPost, "/sessions", map[string]string{
		"assessment_id": a.ID,
		"candidate_id":  "victim",
		"response_id":   victim.ID,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "private answer", decodeSnapshot(t, w).Responses["q_visa"])

	// staff with response:view-all see any record
	r, _ = testRouter(t, store, SessionConfig{}, "recruiter-1", "recruiter")
	w = doJSON(t, r, http.MethodGet, "/responses/"+victim.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPreviewConditionsHandler(t *testing.T) {
	store := assessment.NewInMemoryStore()
	a := seedAssessment(t, store)

	r := chi.NewRouter()
	r.Post("/assessments/{assessmentID}/preview", PreviewConditionsHandler(store))

	w := doJSON(t, r, http.MethodPost, "/assessments/"+a.ID+"/preview", map[string]any{
		"q_relocate": "yes",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out struct {
		States     map[string]assessment.ConditionalState `json:"states"`
		Errors     map[string]string                      `json:"errors"`
		Completion int                                    `json:"completion"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.True(t, out.States["q_visa"].Visible)
	assert.Contains(t, out.Errors, "q_visa")
	assert.Equal(t, 50, out.Completion)
}
