package assessment

import "math"

// ValidateAll runs the field validators across every visible question
// and returns the error map. Hidden questions are excluded entirely:
// they never appear as keys even if their stale answers would fail.
func (v *Validator) ValidateAll(a *Assessment, responses map[string]any, states map[string]ConditionalState) map[string]string {
	errs := make(map[string]string)
	for _, q := range a.Questions() {
		st, ok := states[q.ID]
		if !ok || !st.Visible {
			continue
		}
		if msg := v.Validate(q, responses[q.ID], responses, st.Required); msg != "" {
			errs[q.ID] = msg
		}
	}
	return errs
}

// Submittable reports whether a response set may be submitted: the
// error map is empty. Completion percentage is irrelevant; optional
// unanswered questions never block submission.
func Submittable(errs map[string]string) bool {
	return len(errs) == 0
}

// Completion returns the rounded percentage of visible questions with
// a non-empty answer, 0..100. No visible questions yields 0.
func Completion(a *Assessment, responses map[string]any, states map[string]ConditionalState) int {
	return completionOf(a.Questions(), responses, states)
}

// SectionCompletion mirrors Completion scoped to one section.
func SectionCompletion(sec *Section, responses map[string]any, states map[string]ConditionalState) int {
	return completionOf(sec.Questions, responses, states)
}

func completionOf(questions []Question, responses map[string]any, states map[string]ConditionalState) int {
	visible, answered := 0, 0
	for _, q := range questions {
		st, ok := states[q.ID]
		if !ok || !st.Visible {
			continue
		}
		visible++
		if !IsEmpty(responses[q.ID]) {
			answered++
		}
	}
	if visible == 0 {
		return 0
	}
	return int(math.Round(100 * float64(answered) / float64(visible)))
}
