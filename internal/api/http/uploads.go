package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hireloop/hireloop-ats/internal/assessment"
	"github.com/hireloop/hireloop-ats/internal/storage"
)

// MountUploads serves the blob surface: resume uploads for candidates
// and file answers for taking-sessions. The returned FileRef is what
// the UI stores as the question's answer value.
func MountUploads(r chi.Router, bs storage.BlobStore, maxMB int) {
	maxBytes := int64(maxMB) << 20

	// POST /uploads/resumes/{candidateID}
	r.Post("/resumes/{candidateID}", func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}
		defer f.Close()
		key := "resumes/" + chi.URLParam(r, "candidateID") + "/" + uuid.NewString()
		if _, err := bs.Put(key, f); err != nil {
			http.Error(w, "store error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(assessment.FileRef{Key: key, Name: hdr.Filename, Size: hdr.Size})
	})

	// POST /uploads/answers/{sessionID}/{questionID}
	r.Post("/answers/{sessionID}/{questionID}", func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}
		defer f.Close()
		key := "answers/" + chi.URLParam(r, "sessionID") + "/" + chi.URLParam(r, "questionID")
		if _, err := bs.Put(key, f); err != nil {
			http.Error(w, "store error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(assessment.FileRef{Key: key, Name: hdr.Filename, Size: hdr.Size})
	})

	// GET /uploads/*  -> returns the blob at whatever follows /uploads/
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
		rc, err := bs.Get(key)
		if err != nil {
			http.Error(w, "not found: "+err.Error(), http.StatusNotFound)
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = io.Copy(w, rc)
	})
}
