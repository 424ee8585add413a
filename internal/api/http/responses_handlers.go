package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	authmw "github.com/hireloop/hireloop-ats/internal/auth/middleware"
	"github.com/hireloop/hireloop-ats/internal/assessment"
	"github.com/hireloop/hireloop-ats/internal/candidate"
	"github.com/hireloop/hireloop-ats/internal/rbac"
)

// GetResponseHandler returns a stored response. Callers without
// response:view-all only see their own records: the record's
// CandidateID must match the authenticated subject.
func GetResponseHandler(store assessment.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "responseID")
		rec, err := store.GetResponse(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		if !rbac.Can(r.Context(), "response:view-all") &&
			rec.CandidateID != authmw.SubjectFromContext(r.Context()) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		_ = json.NewEncoder(w).Encode(rec)
	}
}

func ListResponsesHandler(store assessment.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := assessment.ResponseListOpts{
			AssessmentID: r.URL.Query().Get("assessment_id"),
			CandidateID:  r.URL.Query().Get("candidate_id"),
			Status:       r.URL.Query().Get("status"),
		}
		if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
			opts.Limit = v
		}
		if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil {
			opts.Offset = v
		}
		recs, err := store.ListResponses(r.Context(), opts)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(recs)
	}
}

// ReviewResponseHandler marks a submitted response reviewed by the
// calling staff member.
func ReviewResponseHandler(store assessment.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "responseID")
		reviewer := authmw.SubjectFromContext(r.Context())
		rec, err := store.ReviewResponse(r.Context(), id, reviewer)
		if err != nil {
			if errors.Is(err, assessment.ErrNotSubmitted) {
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(rec)
	}
}

// ExportResponseHandler downloads the reporting JSON for a completed
// response: candidate name, assessment title, one row per visible
// question.
func ExportResponseHandler(store assessment.Store, candidates candidate.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "responseID")
		rec, err := store.GetResponse(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		a, err := store.GetAssessment(r.Context(), rec.AssessmentID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		name := ""
		if c, err := candidates.Get(r.Context(), rec.CandidateID); err == nil {
			name = c.Name
		}
		out := assessment.BuildExport(&a, rec, name)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="response-`+rec.ID+`.json"`)
		_ = out.WriteJSON(w)
	}
}
