package assessment

import (
	"encoding/json"
	"io"
)

// ExportRow is one answered question in a response export.
type ExportRow struct {
	QuestionID string       `json:"question_id"`
	Title      string       `json:"title"`
	Type       QuestionType `json:"type"`
	Value      any          `json:"value"`
}

// Export is the reporting view of a completed response: candidate,
// assessment title, and one row per visible question in document
// order. Hidden questions are omitted the same way the validator
// excludes them.
type Export struct {
	ResponseID      string      `json:"response_id"`
	CandidateID     string      `json:"candidate_id"`
	CandidateName   string      `json:"candidate_name,omitempty"`
	AssessmentID    string      `json:"assessment_id"`
	AssessmentTitle string      `json:"assessment_title"`
	Status          string      `json:"status"`
	SubmittedAt     int64       `json:"submitted_at,omitempty"`
	Rows            []ExportRow `json:"rows"`
}

// BuildExport flattens a stored response against its assessment.
func BuildExport(a *Assessment, rec AssessmentResponse, candidateName string) Export {
	states := EvaluateConditions(a, rec.Answers)
	out := Export{
		ResponseID:      rec.ID,
		CandidateID:     rec.CandidateID,
		CandidateName:   candidateName,
		AssessmentID:    a.ID,
		AssessmentTitle: a.Title,
		Status:          string(rec.Status),
		SubmittedAt:     rec.SubmittedAt,
		Rows:            []ExportRow{},
	}
	for _, q := range a.Questions() {
		if st := states[q.ID]; !st.Visible {
			continue
		}
		out.Rows = append(out.Rows, ExportRow{
			QuestionID: q.ID,
			Title:      q.Title,
			Type:       q.Type,
			Value:      rec.Answers[q.ID],
		})
	}
	return out
}

func (e Export) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
