package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	authmw "github.com/hireloop/hireloop-ats/internal/auth/middleware"
	"github.com/hireloop/hireloop-ats/internal/candidate"
	syncx "github.com/hireloop/hireloop-ats/internal/sync"
)

func CreateCandidateHandler(store candidate.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req candidate.Candidate
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.JobID == "" {
			http.Error(w, "name, email and job_id required", http.StatusBadRequest)
			return
		}
		req.ID = ""
		c, err := store.Put(r.Context(), req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(c)
	}
}

func GetCandidateHandler(store candidate.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "candidateID")
		c, err := store.Get(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(c)
	}
}

func ListCandidatesHandler(store candidate.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := candidate.ListOpts{
			JobID: r.URL.Query().Get("job_id"),
			Stage: r.URL.Query().Get("stage"),
			Q:     strings.TrimSpace(r.URL.Query().Get("q")),
		}
		if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
			opts.Limit = v
		}
		if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil {
			opts.Offset = v
		}
		cs, err := store.List(r.Context(), opts)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(cs)
	}
}

// MoveStageHandler moves a candidate through the pipeline and appends
// a timeline event.
func MoveStageHandler(store candidate.Store, events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "candidateID")
		var req struct {
			Stage candidate.Stage `json:"stage"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		prev, err := store.Get(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		c, err := store.MoveStage(r.Context(), id, req.Stage)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data, _ := json.Marshal(map[string]string{"from": string(prev.Stage), "to": string(c.Stage)})
		_ = events.Append(r.Context(), syncx.Event{
			Actor:    authmw.SubjectFromContext(r.Context()),
			Type:     "candidate.stage_changed",
			Key:      c.ID,
			DataJSON: string(data),
		})
		_ = json.NewEncoder(w).Encode(c)
	}
}

// CandidateTimelineHandler returns the event-log entries for one
// candidate, oldest first.
func CandidateTimelineHandler(events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "candidateID")
		limit := 0
		if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
			limit = v
		}
		evs, err := events.ListByKey(r.Context(), id, limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(evs)
	}
}

func DeleteCandidateHandler(store candidate.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "candidateID")
		if err := store.Delete(r.Context(), id); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
