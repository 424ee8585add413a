package assessment

// EvaluateConditions resolves the {visible, required} state of every
// question in the assessment from the raw responses map. It is a pure
// function of its inputs and is recomputed from scratch on every
// response change; a single answer edit can flip any question's state
// anywhere in the document.
//
// Per question the defaults are visible=true and required equal to the
// static Required flag. Rules then apply in array order and later
// rules override earlier ones for the same flag:
//
//   - show pins visibility to the rule's outcome, so a question
//     carrying a show rule is hidden until its trigger holds;
//   - hide fires only when its condition holds and forces the
//     question hidden;
//   - require fires only when its condition holds, so once the
//     trigger stops holding the question falls back to its static
//     Required flag on the next recomputation.
//
// Dependency lookups always read the raw responses map, never another
// question's resolved visibility: a hidden question's stale answer
// keeps satisfying downstream rules until the session controller
// clears it.
func EvaluateConditions(a *Assessment, responses map[string]any) map[string]ConditionalState {
	states := make(map[string]ConditionalState)
	for si := range a.Sections {
		for qi := range a.Sections[si].Questions {
			q := &a.Sections[si].Questions[qi]
			st := ConditionalState{Visible: true, Required: q.Required}
			for _, rule := range q.ConditionalLogic {
				met := EvaluateRule(rule, responses)
				switch rule.Action {
				case ActionShow:
					st.Visible = met
				case ActionHide:
					if met {
						st.Visible = false
					}
				case ActionRequire:
					if met {
						st.Required = true
					}
				}
			}
			states[q.ID] = st
		}
	}
	return states
}
