package assessment

import (
	"strconv"
	"strings"
)

// EvaluateRule reports whether one conditional rule currently holds
// against the raw responses map. It is pure and total: malformed rule
// data or an unparseable operand yields false (true for not-equals),
// never an error.
//
// An absent or empty dependency answer satisfies not-equals only;
// every other condition evaluates false against it.
func EvaluateRule(rule ConditionalRule, responses map[string]any) bool {
	v, ok := responses[rule.DependsOn]
	if !ok || IsEmpty(v) {
		return rule.Condition == CondNotEquals
	}

	switch rule.Condition {
	case CondEquals:
		return scalarEquals(v, rule.Value)
	case CondNotEquals:
		return !scalarEquals(v, rule.Value)
	case CondContains:
		return containsValue(v, rule.Value)
	case CondGreaterThan:
		rv, rok := asNumber(v)
		tv, tok := parseNumber(rule.Value)
		return rok && tok && rv > tv
	case CondLessThan:
		rv, rok := asNumber(v)
		tv, tok := parseNumber(rule.Value)
		return rok && tok && rv < tv
	default:
		return false
	}
}

// scalarEquals compares the literal stored value, coerced to string,
// against the rule's value. Array and file answers never satisfy
// equals; multi-choice dependencies use contains instead.
func scalarEquals(v any, want string) bool {
	s, ok := scalarString(v)
	if !ok {
		return false
	}
	return s == want
}

func containsValue(v any, want string) bool {
	switch t := v.(type) {
	case string:
		return strings.Contains(t, want)
	case []string:
		for _, e := range t {
			if e == want {
				return true
			}
		}
		return false
	case []any:
		for _, e := range t {
			if s, ok := scalarString(e); ok && s == want {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// scalarString coerces a scalar answer to its string form. The second
// return is false for arrays, files and other non-scalar payloads.
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

func asNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		return parseNumber(t)
	default:
		return 0, false
	}
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// IsEmpty reports whether an answer counts as unanswered: absent,
// nil, "", or an empty array. A FileRef with an empty key is also
// treated as unanswered.
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []string:
		return len(t) == 0
	case []any:
		return len(t) == 0
	case FileRef:
		return t.Key == ""
	case *FileRef:
		return t == nil || t.Key == ""
	default:
		return false
	}
}
