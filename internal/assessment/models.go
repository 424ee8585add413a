package assessment

// QuestionType is the closed set of question kinds a builder can create.
type QuestionType string

const (
	SingleChoice QuestionType = "single-choice"
	MultiChoice  QuestionType = "multi-choice"
	ShortText    QuestionType = "short-text"
	LongText     QuestionType = "long-text"
	Numeric      QuestionType = "numeric"
	FileUpload   QuestionType = "file-upload"
)

// ValidationType identifies a static per-question constraint.
type ValidationType string

const (
	RuleRequired     ValidationType = "required"
	RuleMinLength    ValidationType = "min-length"
	RuleMaxLength    ValidationType = "max-length"
	RuleNumericRange ValidationType = "numeric-range"
	RuleEmail        ValidationType = "email"
	RuleURL          ValidationType = "url"
)

// Condition is the comparison a conditional rule applies to its
// dependency question's answer.
type Condition string

const (
	CondEquals      Condition = "equals"
	CondNotEquals   Condition = "not-equals"
	CondContains    Condition = "contains"
	CondGreaterThan Condition = "greater-than"
	CondLessThan    Condition = "less-than"
)

// Action is what a conditional rule does to its owning question when
// the condition holds.
type Action string

const (
	ActionShow    Action = "show"
	ActionHide    Action = "hide"
	ActionRequire Action = "require"
)

// ValidationRule is a static constraint on a single answer. Value is
// a number for min-/max-length and a {min,max} object for
// numeric-range (decoded from JSON, so numbers arrive as float64).
type ValidationRule struct {
	Type    ValidationType `json:"type"`
	Value   any            `json:"value,omitempty"`
	Message string         `json:"message,omitempty"`
}

// ConditionalRule is a single show/hide/require directive keyed to
// another question's answer. DependsOn must reference a question that
// appears strictly earlier in the assessment; CheckRules enforces
// that at save time, the evaluator does not assume it.
type ConditionalRule struct {
	DependsOn string    `json:"depends_on_question_id"`
	Condition Condition `json:"condition"`
	Value     string    `json:"value"`
	Action    Action    `json:"action"`
}

type Question struct {
	ID               string            `json:"id"`
	Type             QuestionType      `json:"type"`
	Title            string            `json:"title"`
	Description      string            `json:"description,omitempty"`
	Required         bool              `json:"required"`
	Options          []string          `json:"options,omitempty"`
	Validation       []ValidationRule  `json:"validation,omitempty"`
	ConditionalLogic []ConditionalRule `json:"conditional_logic,omitempty"`
	Order            int               `json:"order"`
}

type Section struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Order       int        `json:"order"`
	Questions   []Question `json:"questions"`
}

// Assessment is the builder-owned document: ordered sections of
// ordered questions. The engine never mutates it.
type Assessment struct {
	ID          string    `json:"id"`
	JobID       string    `json:"job_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Sections    []Section `json:"sections"`
	CreatedAt   int64     `json:"created_at,omitempty"`
	UpdatedAt   int64     `json:"updated_at,omitempty"`
}

// ConditionalState is the resolved {visible, required} pair for one
// question. Derived, never persisted.
type ConditionalState struct {
	Visible  bool `json:"visible"`
	Required bool `json:"required"`
}

// FileRef is the stored value of an answered file-upload question.
type FileRef struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// ResponseStatus is the lifecycle stage of a persisted response set.
type ResponseStatus string

const (
	StatusDraft     ResponseStatus = "draft"
	StatusSubmitted ResponseStatus = "submitted"
	StatusReviewed  ResponseStatus = "reviewed"
)

// AssessmentResponse is the persisted record of one candidate's
// answers to one assessment.
type AssessmentResponse struct {
	ID           string         `json:"id"`
	CandidateID  string         `json:"candidate_id"`
	AssessmentID string         `json:"assessment_id"`
	Answers      map[string]any `json:"answers"`
	Status       ResponseStatus `json:"status"`
	SubmittedAt  int64          `json:"submitted_at,omitempty"`
	ReviewedBy   string         `json:"reviewed_by,omitempty"`
	CreatedAt    int64          `json:"created_at,omitempty"`
	UpdatedAt    int64          `json:"updated_at,omitempty"`
}

// Questions returns every question in section order, then question
// order, as laid out in the document.
func (a *Assessment) Questions() []Question {
	n := 0
	for _, s := range a.Sections {
		n += len(s.Questions)
	}
	out := make([]Question, 0, n)
	for _, s := range a.Sections {
		out = append(out, s.Questions...)
	}
	return out
}

// QuestionByID looks up a question anywhere in the assessment.
func (a *Assessment) QuestionByID(id string) (Question, bool) {
	for _, s := range a.Sections {
		for _, q := range s.Questions {
			if q.ID == id {
				return q, true
			}
		}
	}
	return Question{}, false
}
