package assessment

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"
)

const defaultRequiredMessage = "This field is required"

// Checker validates one non-empty answer for a single question type.
// It returns an error message, or "" when the answer passes.
type Checker interface {
	Check(q Question, value any) string
}

// Validator routes by question type to the correct Checker and owns
// the shared required-empty rule.
type Validator struct {
	checkers map[QuestionType]Checker
}

type validatorConfig struct {
	maxTextLen int // hard cap applied to text answers regardless of rules
}

type Option func(*validatorConfig)

// WithMaxTextLength caps long-/short-text answers even when the
// builder configured no max-length rule. Zero disables the cap.
func WithMaxTextLength(n int) Option {
	return func(c *validatorConfig) { c.maxTextLen = n }
}

// NewValidator installs the built-in checker for every question type.
// The type set is closed; an unknown type validates as a pass so a
// malformed document degrades instead of failing the whole response.
func NewValidator(opts ...Option) *Validator {
	cfg := &validatorConfig{}
	for _, o := range opts {
		o(cfg)
	}
	return &Validator{
		checkers: map[QuestionType]Checker{
			SingleChoice: singleChoiceChecker{},
			MultiChoice:  multiChoiceChecker{},
			ShortText:    textChecker{hardMax: cfg.maxTextLen},
			LongText:     textChecker{hardMax: cfg.maxTextLen},
			Numeric:      numericChecker{},
			FileUpload:   fileChecker{},
		},
	}
}

// Validate checks a single answer against the question's static rules
// and the dynamically resolved required flag. effectiveRequired comes
// from EvaluateConditions and overrides the static Required field.
// The responses map is part of the contract for checkers that may
// need cross-field context; the built-in checkers do not read it.
//
// At most one message is returned: the required-empty message wins,
// otherwise the first failing check in rule-array order.
func (v *Validator) Validate(q Question, value any, _ map[string]any, effectiveRequired bool) string {
	if IsEmpty(value) {
		if effectiveRequired {
			return requiredMessage(q)
		}
		return ""
	}
	c, ok := v.checkers[q.Type]
	if !ok {
		return ""
	}
	return c.Check(q, value)
}

// requiredMessage prefers a builder-supplied message on a
// required-type rule over the stock text.
func requiredMessage(q Question) string {
	for _, r := range q.Validation {
		if r.Type == RuleRequired && r.Message != "" {
			return r.Message
		}
	}
	return defaultRequiredMessage
}

func ruleMessage(r ValidationRule, fallback string) string {
	if r.Message != "" {
		return r.Message
	}
	return fallback
}

// --- Checkers ---

type singleChoiceChecker struct{}

func (singleChoiceChecker) Check(q Question, value any) string {
	s, ok := scalarString(value)
	if !ok {
		return "invalid selection"
	}
	if !memberOf(q.Options, s) {
		return "invalid selection"
	}
	return ""
}

type multiChoiceChecker struct{}

func (multiChoiceChecker) Check(q Question, value any) string {
	items, ok := toStringSlice(value)
	if !ok {
		return "invalid selection"
	}
	for _, s := range items {
		if !memberOf(q.Options, s) {
			return "invalid selection"
		}
	}
	return ""
}

type textChecker struct {
	hardMax int
}

func (c textChecker) Check(q Question, value any) string {
	s, ok := value.(string)
	if !ok {
		return "must be text"
	}
	if c.hardMax > 0 && len([]rune(s)) > c.hardMax {
		return fmt.Sprintf("Must be at most %d characters", c.hardMax)
	}
	for _, r := range q.Validation {
		switch r.Type {
		case RuleMinLength:
			if n, ok := asThreshold(r.Value); ok && len([]rune(s)) < n {
				return ruleMessage(r, fmt.Sprintf("Must be at least %d characters", n))
			}
		case RuleMaxLength:
			if n, ok := asThreshold(r.Value); ok && len([]rune(s)) > n {
				return ruleMessage(r, fmt.Sprintf("Must be at most %d characters", n))
			}
		case RuleEmail:
			if _, err := mail.ParseAddress(s); err != nil {
				return ruleMessage(r, "Must be a valid email address")
			}
		case RuleURL:
			if !validURL(s) {
				return ruleMessage(r, "Must be a valid URL")
			}
		}
	}
	return ""
}

type numericChecker struct{}

func (numericChecker) Check(q Question, value any) string {
	f, ok := asNumber(value)
	if !ok {
		return "Must be a number"
	}
	for _, r := range q.Validation {
		if r.Type != RuleNumericRange {
			continue
		}
		min, max := asRange(r.Value)
		if min != nil && f < *min {
			return ruleMessage(r, fmt.Sprintf("Must be at least %v", *min))
		}
		if max != nil && f > *max {
			return ruleMessage(r, fmt.Sprintf("Must be at most %v", *max))
		}
	}
	return ""
}

type fileChecker struct{}

func (fileChecker) Check(_ Question, value any) string {
	switch value.(type) {
	case FileRef, *FileRef:
		return ""
	case map[string]any:
		// raw JSON form of a FileRef, accepted as-is
		return ""
	default:
		return "invalid file"
	}
}

// --- value helpers ---

func memberOf(options []string, s string) bool {
	for _, o := range options {
		if o == s {
			return true
		}
	}
	return false
}

func toStringSlice(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

// asThreshold reads a length threshold from a rule value that may be
// a JSON number or a numeric string.
func asThreshold(v any) (int, bool) {
	f, ok := asNumber(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// asRange reads {min,max} out of a numeric-range rule value. Either
// bound may be absent.
func asRange(v any) (min, max *float64) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, nil
	}
	if f, ok := asNumber(m["min"]); ok {
		min = &f
	}
	if f, ok := asNumber(m["max"]); ok {
		max = &f
	}
	return min, max
}

func validURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
