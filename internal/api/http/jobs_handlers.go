package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hireloop/hireloop-ats/internal/job"
)

func CreateJobHandler(store job.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req job.Job
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Title) == "" {
			http.Error(w, "title required", http.StatusBadRequest)
			return
		}
		req.ID = "" // server-assigned
		j, err := store.Put(r.Context(), req)
		if err != nil {
			if errors.Is(err, job.ErrSlugTaken) {
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(j)
	}
}

func UpdateJobHandler(store job.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "jobID")
		cur, err := store.Get(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		var req job.Job
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		req.ID = cur.ID
		req.CreatedAt = cur.CreatedAt
		j, err := store.Put(r.Context(), req)
		if err != nil {
			if errors.Is(err, job.ErrSlugTaken) {
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(j)
	}
}

func GetJobHandler(store job.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "jobID")
		j, err := store.Get(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(j)
	}
}

func ListJobsHandler(store job.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := job.ListOpts{
			Q:      strings.TrimSpace(r.URL.Query().Get("q")),
			Status: r.URL.Query().Get("status"),
			Tag:    r.URL.Query().Get("tag"),
		}
		if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
			opts.Limit = v
		}
		if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil {
			opts.Offset = v
		}
		jobs, err := store.List(r.Context(), opts)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(jobs)
	}
}

func ArchiveJobHandler(store job.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "jobID")
		var req struct {
			Status job.Status `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Status != job.StatusActive && req.Status != job.StatusArchived {
			http.Error(w, "status must be active or archived", http.StatusBadRequest)
			return
		}
		j, err := store.SetStatus(r.Context(), id, req.Status)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(j)
	}
}

func DeleteJobHandler(store job.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "jobID")
		if err := store.Delete(r.Context(), id); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
