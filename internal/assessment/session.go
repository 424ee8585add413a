package assessment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Persistence is the external collaborator a session hands its record
// to. Implementations may fail; the session surfaces failure through
// an event and keeps its in-memory state so the user can retry. Retry
// and timeout policy live behind this port, never in the session.
type Persistence interface {
	Save(ctx context.Context, rec *AssessmentResponse) error
	Submit(ctx context.Context, rec *AssessmentResponse) error
}

var (
	ErrSessionClosed     = errors.New("session already submitted")
	ErrBusy              = errors.New("save or submit already in flight")
	ErrNothingToSave     = errors.New("no responses to save")
	ErrValidation        = errors.New("validation failed")
	ErrUnknownQuestion   = errors.New("unknown question")
	ErrBadSection        = errors.New("section index out of range")
	ErrSectionIncomplete = errors.New("current section incomplete")
)

// Session drives one candidate through one assessment. It owns the
// in-progress responses and error maps, re-resolves conditional state
// on every field change, and clears stale answers for questions that
// fall hidden. All evaluation is synchronous; the only I/O is the
// save/submit handoff to the Persistence port.
//
// A mutex makes each transition atomic relative to the previous one.
// The lock is never held across persistence I/O, so field edits stay
// live while a save or submit is in flight; a busy flag blocks a
// second save/submit instead.
type Session struct {
	mu sync.Mutex

	assessment  *Assessment
	candidateID string
	responseID  string
	persist     Persistence
	validator   *Validator

	responses map[string]any
	errors    map[string]string
	states    map[string]ConditionalState
	section   int
	busy      bool
	closed    bool

	validateOnChange bool
	validateOnBlur   bool
	gateForward      bool

	sinks []EventSink
	now   func() time.Time
	newID func() string
}

type SessionOption func(*Session)

// ValidateOnChange re-validates a field immediately on every edit.
func ValidateOnChange() SessionOption {
	return func(s *Session) { s.validateOnChange = true }
}

// ValidateOnBlur validates a field when the UI reports focus loss.
func ValidateOnBlur() SessionOption {
	return func(s *Session) { s.validateOnBlur = true }
}

// GateForwardNavigation only permits moving to a later section once
// the current one is fully answered. Backward moves are always free.
func GateForwardNavigation() SessionOption {
	return func(s *Session) { s.gateForward = true }
}

// WithInitialAnswers seeds the session from a stored draft.
func WithInitialAnswers(answers map[string]any) SessionOption {
	return func(s *Session) { s.responses = cloneAnswers(answers) }
}

// WithResponseID pins the persisted record's ID, e.g. when resuming a
// draft.
func WithResponseID(id string) SessionOption {
	return func(s *Session) { s.responseID = id }
}

func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// NewSession builds a per-taking-session controller. The assessment
// document is read-only and must not be mutated while the session is
// alive.
func NewSession(a *Assessment, candidateID string, p Persistence, opts ...SessionOption) *Session {
	s := &Session{
		assessment:  a,
		candidateID: candidateID,
		persist:     p,
		validator:   NewValidator(),
		responses:   map[string]any{},
		errors:      map[string]string{},
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	if s.responseID == "" {
		s.responseID = s.newID()
	}
	s.states = EvaluateConditions(a, s.responses)
	return s
}

// OnEvent registers a sink for session transitions.
func (s *Session) OnEvent(sink EventSink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sinks = append(s.sinks, sink)
}

// FieldChange records a new value for a question, re-resolves
// conditional state over the whole assessment, and deletes the answer
// and error of every question that is now hidden. A nil value deletes
// the answer. The changed field's existing error is cleared
// optimistically; with ValidateOnChange it is re-checked immediately.
//
// The state pass runs once per change against the pre-clear snapshot,
// so an answer hidden by this edit still feeds downstream rules until
// the next cycle. That matches the resolver's raw-responses contract.
func (s *Session) FieldChange(questionID string, value any) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	q, ok := s.assessment.QuestionByID(questionID)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}

	next := cloneAnswers(s.responses)
	if value == nil {
		delete(next, questionID)
	} else {
		next[questionID] = value
	}
	s.responses = next
	s.states = EvaluateConditions(s.assessment, s.responses)

	nextErrs := cloneErrors(s.errors)
	for _, qq := range s.assessment.Questions() {
		if st := s.states[qq.ID]; !st.Visible {
			delete(s.responses, qq.ID)
			delete(nextErrs, qq.ID)
		}
	}
	delete(nextErrs, questionID)

	var failed string
	if s.validateOnChange {
		if st := s.states[questionID]; st.Visible {
			if msg := s.validator.Validate(q, s.responses[questionID], s.responses, st.Required); msg != "" {
				nextErrs[questionID] = msg
				failed = msg
			}
		}
	}
	s.errors = nextErrs
	events := []Event{s.event(EventFieldChange, questionID, "")}
	if failed != "" {
		events = append(events, s.event(EventValidationError, questionID, failed))
	}
	s.mu.Unlock()

	s.emit(events...)
	return nil
}

// FieldBlur validates a single field against the current conditional
// state when ValidateOnBlur is configured, setting or clearing its
// error.
func (s *Session) FieldBlur(questionID string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	q, ok := s.assessment.QuestionByID(questionID)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}

	var events []Event
	if s.validateOnBlur {
		nextErrs := cloneErrors(s.errors)
		st := s.states[questionID]
		msg := ""
		if st.Visible {
			msg = s.validator.Validate(q, s.responses[questionID], s.responses, st.Required)
		}
		if msg == "" {
			delete(nextErrs, questionID)
		} else {
			nextErrs[questionID] = msg
			events = append(events, s.event(EventValidationError, questionID, msg))
		}
		s.errors = nextErrs
	}
	events = append([]Event{s.event(EventFieldBlur, questionID, "")}, events...)
	s.mu.Unlock()

	s.emit(events...)
	return nil
}

// GotoSection moves the cursor. Backward is always permitted; forward
// requires the current section complete when gating is configured.
func (s *Session) GotoSection(index int) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if index < 0 || index >= len(s.assessment.Sections) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrBadSection, index)
	}
	if index > s.section && s.gateForward {
		cur := &s.assessment.Sections[s.section]
		if SectionCompletion(cur, s.responses, s.states) < 100 {
			s.mu.Unlock()
			return ErrSectionIncomplete
		}
	}
	s.section = index
	ev := s.event(EventSectionChange, "", "")
	s.mu.Unlock()

	s.emit(ev)
	return nil
}

// Save hands the current draft to the persistence collaborator. It
// requires at least one response, refuses while another save or
// submit is in flight, and never retries; a failure is surfaced as an
// event and the in-memory state is preserved.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	if len(s.responses) == 0 {
		s.mu.Unlock()
		return ErrNothingToSave
	}
	s.busy = true
	rec := s.record(StatusDraft)
	s.mu.Unlock()

	err := s.persist.Save(ctx, &rec)

	s.mu.Lock()
	s.busy = false
	var ev Event
	if err != nil {
		ev = s.event(EventSubmissionError, "", "save: "+err.Error())
	} else {
		ev = s.event(EventAutoSave, "", "")
	}
	s.mu.Unlock()

	s.emit(ev)
	if err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// Submit validates the whole response set against the freshly
// resolved conditional state. Any error aborts the transition with
// every message surfaced; otherwise the record goes to the
// persistence collaborator and the session closes.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	s.states = EvaluateConditions(s.assessment, s.responses)
	errs := s.validator.ValidateAll(s.assessment, s.responses, s.states)
	if len(errs) > 0 {
		s.errors = errs
		events := make([]Event, 0, len(errs))
		for id, msg := range errs {
			events = append(events, s.event(EventValidationError, id, msg))
		}
		s.mu.Unlock()
		s.emit(events...)
		return fmt.Errorf("%w: %d field(s)", ErrValidation, len(errs))
	}
	s.busy = true
	rec := s.record(StatusSubmitted)
	rec.SubmittedAt = s.now().Unix()
	start := s.event(EventSubmissionStart, "", "")
	s.mu.Unlock()

	s.emit(start)
	err := s.persist.Submit(ctx, &rec)

	s.mu.Lock()
	s.busy = false
	var ev Event
	if err != nil {
		ev = s.event(EventSubmissionError, "", err.Error())
	} else {
		s.closed = true
		ev = s.event(EventSubmissionSuccess, "", "")
	}
	s.mu.Unlock()

	s.emit(ev)
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	return nil
}

// Snapshot is the UI-facing view of a session at a point in time. All
// maps are copies; mutating them does not touch the session.
type Snapshot struct {
	ResponseID   string                      `json:"response_id"`
	AssessmentID string                      `json:"assessment_id"`
	CandidateID  string                      `json:"candidate_id"`
	Responses    map[string]any              `json:"responses"`
	Errors       map[string]string           `json:"errors"`
	States       map[string]ConditionalState `json:"states"`
	Section      int                         `json:"section"`
	Completion   int                         `json:"completion"`
	Busy         bool                        `json:"busy"`
	Closed       bool                        `json:"closed"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ResponseID:   s.responseID,
		AssessmentID: s.assessment.ID,
		CandidateID:  s.candidateID,
		Responses:    cloneAnswers(s.responses),
		Errors:       cloneErrors(s.errors),
		States:       cloneStates(s.states),
		Section:      s.section,
		Completion:   completionOf(s.assessment.Questions(), s.responses, s.states),
		Busy:         s.busy,
		Closed:       s.closed,
	}
}

// record builds the persistence payload from the current state. The
// caller holds the lock.
func (s *Session) record(status ResponseStatus) AssessmentResponse {
	return AssessmentResponse{
		ID:           s.responseID,
		CandidateID:  s.candidateID,
		AssessmentID: s.assessment.ID,
		Answers:      cloneAnswers(s.responses),
		Status:       status,
	}
}

func (s *Session) event(typ EventType, questionID, msg string) Event {
	return Event{
		Type:       typ,
		SessionID:  s.responseID,
		QuestionID: questionID,
		Section:    s.section,
		Message:    msg,
		At:         s.now().Unix(),
	}
}

// emit is called without the lock; the sink slice is only appended
// to, so reading it under a fresh lock and calling outside is safe.
func (s *Session) emit(events ...Event) {
	s.mu.Lock()
	sinks := make([]EventSink, len(s.sinks))
	copy(sinks, s.sinks)
	s.mu.Unlock()
	for _, ev := range events {
		for _, sink := range sinks {
			sink(ev)
		}
	}
}

func cloneAnswers(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneErrors(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneStates(m map[string]ConditionalState) map[string]ConditionalState {
	out := make(map[string]ConditionalState, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
