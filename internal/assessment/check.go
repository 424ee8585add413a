package assessment

import (
	"errors"
	"fmt"
)

var ErrBadRule = errors.New("invalid conditional rule")

// CheckRules verifies the builder invariant that every conditional
// rule depends on a question appearing strictly earlier in the
// document, which rules out self-references, forward references and
// cycles. Stores run this before accepting an assessment; the
// evaluator itself stays total and never relies on it.
func CheckRules(a *Assessment) error {
	seen := make(map[string]bool)
	for _, q := range a.Questions() {
		for _, rule := range q.ConditionalLogic {
			switch {
			case rule.DependsOn == "":
				return fmt.Errorf("%w: question %q has a rule with no dependency", ErrBadRule, q.ID)
			case rule.DependsOn == q.ID:
				return fmt.Errorf("%w: question %q depends on itself", ErrBadRule, q.ID)
			case !seen[rule.DependsOn]:
				return fmt.Errorf("%w: question %q depends on %q which is not an earlier question", ErrBadRule, q.ID, rule.DependsOn)
			}
			if !validCondition(rule.Condition) {
				return fmt.Errorf("%w: question %q has unknown condition %q", ErrBadRule, q.ID, rule.Condition)
			}
			if !validAction(rule.Action) {
				return fmt.Errorf("%w: question %q has unknown action %q", ErrBadRule, q.ID, rule.Action)
			}
		}
		seen[q.ID] = true
	}
	return nil
}

func validCondition(c Condition) bool {
	switch c {
	case CondEquals, CondNotEquals, CondContains, CondGreaterThan, CondLessThan:
		return true
	}
	return false
}

func validAction(a Action) bool {
	switch a {
	case ActionShow, ActionHide, ActionRequire:
		return true
	}
	return false
}
