package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hireloop/hireloop-ats/internal/assessment"
)

// UpsertAssessmentHandler accepts a full builder document. Rule
// hygiene is enforced at this boundary: forward or cyclic conditional
// dependencies reject the save with a 400.
func UpsertAssessmentHandler(store assessment.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var a assessment.Assessment
		if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(a.Title) == "" {
			http.Error(w, "title required", http.StatusBadRequest)
			return
		}
		if id := chi.URLParam(r, "assessmentID"); id != "" {
			a.ID = id
		}
		saved, err := store.PutAssessment(r.Context(), a)
		if err != nil {
			if errors.Is(err, assessment.ErrBadRule) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(saved)
	}
}

func GetAssessmentHandler(store assessment.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "assessmentID")
		a, err := store.GetAssessment(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(a)
	}
}

func ListAssessmentsHandler(store assessment.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		as, err := store.ListAssessments(r.Context(), r.URL.Query().Get("job_id"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(as)
	}
}

func DeleteAssessmentHandler(store assessment.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "assessmentID")
		if err := store.DeleteAssessment(r.Context(), id); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// PreviewConditionsHandler lets the builder UI dry-run the resolver:
// it posts a responses map and gets back the per-question
// {visible, required} state plus the error map, without any session.
func PreviewConditionsHandler(store assessment.Store) http.HandlerFunc {
	v := assessment.NewValidator()
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "assessmentID")
		a, err := store.GetAssessment(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		var responses map[string]any
		if err := json.NewDecoder(r.Body).Decode(&responses); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		states := assessment.EvaluateConditions(&a, responses)
		errs := v.ValidateAll(&a, responses, states)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"states":     states,
			"errors":     errs,
			"completion": assessment.Completion(&a, responses, states),
		})
	}
}
