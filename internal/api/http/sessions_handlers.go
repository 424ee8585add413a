package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hireloop/hireloop-ats/internal/assessment"
	authmw "github.com/hireloop/hireloop-ats/internal/auth/middleware"
	"github.com/hireloop/hireloop-ats/internal/rbac"
	syncx "github.com/hireloop/hireloop-ats/internal/sync"
)

// SessionConfig carries the gateway-wide session behavior flags.
type SessionConfig struct {
	ValidateOnBlur bool
	GateSections   bool
}

// CreateSessionHandler starts (or resumes) a taking-session. With a
// response_id in the body the draft is loaded from the store and the
// session picks up its answers.
//
// Callers without response:view-all act on their own records only:
// candidate_id is forced to the authenticated subject, and a resumed
// draft must belong to them.
func CreateSessionHandler(hub *SessionHub, store assessment.Store, events *syncx.EventRepo, cfg SessionConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			AssessmentID string `json:"assessment_id"`
			CandidateID  string `json:"candidate_id"`
			ResponseID   string `json:"response_id,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		viewAll := rbac.Can(r.Context(), "response:view-all")
		if !viewAll {
			req.CandidateID = authmw.SubjectFromContext(r.Context())
		}
		if req.AssessmentID == "" || req.CandidateID == "" {
			http.Error(w, "assessment_id and candidate_id required", http.StatusBadRequest)
			return
		}
		a, err := store.GetAssessment(r.Context(), req.AssessmentID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		opts := []assessment.SessionOption{}
		if cfg.ValidateOnBlur {
			opts = append(opts, assessment.ValidateOnBlur())
		}
		if cfg.GateSections {
			opts = append(opts, assessment.GateForwardNavigation())
		}
		if req.ResponseID != "" {
			rec, err := store.GetResponse(r.Context(), req.ResponseID)
			if err != nil {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			if !viewAll && rec.CandidateID != req.CandidateID {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			if rec.Status != assessment.StatusDraft {
				http.Error(w, "response already submitted", http.StatusConflict)
				return
			}
			opts = append(opts,
				assessment.WithResponseID(rec.ID),
				assessment.WithInitialAnswers(rec.Answers))
		}

		s := assessment.NewSession(&a, req.CandidateID, assessment.NewStorePersistence(store), opts...)
		if events != nil {
			s.OnEvent(logSink(events))
		}
		hub.Add(s)
		_ = json.NewEncoder(w).Encode(s.Snapshot())
	}
}

// logSink mirrors terminal session events into the audit log.
func logSink(events *syncx.EventRepo) assessment.EventSink {
	return func(ev assessment.Event) {
		switch ev.Type {
		case assessment.EventSubmissionSuccess, assessment.EventSubmissionError, assessment.EventAutoSave:
			data, _ := json.Marshal(ev)
			if err := events.Append(context.Background(), syncx.Event{
				Type:     "response." + string(ev.Type),
				Key:      ev.SessionID,
				DataJSON: string(data),
			}); err != nil {
				log.Printf("event log append: %v", err)
			}
		}
	}
}

func GetSessionHandler(hub *SessionHub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := hub.Get(chi.URLParam(r, "sessionID"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(s.Snapshot())
	}
}

// AnswerHandler applies one field change. The response is the fresh
// snapshot so the UI can redraw visibility and errors in one round
// trip.
func AnswerHandler(hub *SessionHub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := hub.Get(chi.URLParam(r, "sessionID"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		var req struct {
			QuestionID string `json:"question_id"`
			Value      any    `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := s.FieldChange(req.QuestionID, req.Value); err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		_ = json.NewEncoder(w).Encode(s.Snapshot())
	}
}

func BlurHandler(hub *SessionHub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := hub.Get(chi.URLParam(r, "sessionID"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		var req struct {
			QuestionID string `json:"question_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := s.FieldBlur(req.QuestionID); err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		_ = json.NewEncoder(w).Encode(s.Snapshot())
	}
}

func GotoSectionHandler(hub *SessionHub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := hub.Get(chi.URLParam(r, "sessionID"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		var req struct {
			Section int `json:"section"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := s.GotoSection(req.Section); err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		_ = json.NewEncoder(w).Encode(s.Snapshot())
	}
}

func SaveSessionHandler(hub *SessionHub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := hub.Get(chi.URLParam(r, "sessionID"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		if err := s.Save(r.Context()); err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		_ = json.NewEncoder(w).Encode(s.Snapshot())
	}
}

// SubmitSessionHandler runs full validation; failures come back as a
// 422 with the complete error map so the UI can mark every field.
func SubmitSessionHandler(hub *SessionHub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")
		s, err := hub.Get(id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		if err := s.Submit(r.Context()); err != nil {
			if errors.Is(err, assessment.ErrValidation) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnprocessableEntity)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error":  "validation failed",
					"fields": s.Snapshot().Errors,
				})
				return
			}
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		hub.Remove(id)
		_ = json.NewEncoder(w).Encode(s.Snapshot())
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, assessment.ErrSessionClosed):
		return http.StatusConflict
	case errors.Is(err, assessment.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, assessment.ErrNothingToSave),
		errors.Is(err, assessment.ErrUnknownQuestion),
		errors.Is(err, assessment.ErrBadSection),
		errors.Is(err, assessment.ErrSectionIncomplete):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
