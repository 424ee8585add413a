package assessment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_RequiredEmpty(t *testing.T) {
	v := NewValidator()
	q := Question{ID: "q1", Type: ShortText, Required: true}

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, defaultRequiredMessage},
		{"empty string", "", defaultRequiredMessage},
		{"empty array", []string{}, defaultRequiredMessage},
		{"answered", "ok", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.Validate(q, tt.value, nil, true))
		})
	}
}

func TestValidate_RequiredMessageFromRule(t *testing.T) {
	v := NewValidator()
	q := Question{
		ID:   "q1",
		Type: ShortText,
		Validation: []ValidationRule{
			{Type: RuleRequired, Message: "Please tell us your name"},
		},
	}
	assert.Equal(t, "Please tell us your name", v.Validate(q, nil, nil, true))
}

func TestValidate_OptionalEmptySkipsChecks(t *testing.T) {
	v := NewValidator()
	q := Question{
		ID:   "q1",
		Type: ShortText,
		Validation: []ValidationRule{
			{Type: RuleMinLength, Value: float64(10)},
		},
	}
	// an empty optional answer passes even with a min-length rule
	assert.Equal(t, "", v.Validate(q, "", nil, false))
}

func TestValidate_DynamicRequiredOverridesStaticFlag(t *testing.T) {
	v := NewValidator()
	q := Question{ID: "q1", Type: ShortText, Required: false}

	assert.Equal(t, defaultRequiredMessage, v.Validate(q, nil, nil, true))
	assert.Equal(t, "", v.Validate(q, nil, nil, false))
}

func TestValidate_TextLengths(t *testing.T) {
	v := NewValidator()
	q := Question{
		ID:   "q1",
		Type: LongText,
		Validation: []ValidationRule{
			{Type: RuleMinLength, Value: float64(5)},
			{Type: RuleMaxLength, Value: float64(10), Message: "Keep it short"},
		},
	}

	assert.Equal(t, "Must be at least 5 characters", v.Validate(q, "hey", nil, false))
	assert.Equal(t, "", v.Validate(q, "hello", nil, false))
	assert.Equal(t, "Keep it short", v.Validate(q, "hello world!", nil, false))
}

func TestValidate_FirstFailingRuleWins(t *testing.T) {
	v := NewValidator()
	q := Question{
		ID:   "q1",
		Type: ShortText,
		Validation: []ValidationRule{
			{Type: RuleMinLength, Value: float64(20), Message: "too short"},
			{Type: RuleEmail, Message: "not an email"},
		},
	}
	// both rules fail; only the first message surfaces
	assert.Equal(t, "too short", v.Validate(q, "nope", nil, false))
}

func TestValidate_Email(t *testing.T) {
	v := NewValidator()
	q := Question{
		ID:         "q1",
		Type:       ShortText,
		Validation: []ValidationRule{{Type: RuleEmail}},
	}

	assert.Equal(t, "", v.Validate(q, "jordan@example.com", nil, false))
	assert.Equal(t, "Must be a valid email address", v.Validate(q, "not-an-email", nil, false))
}

func TestValidate_URL(t *testing.T) {
	v := NewValidator()
	q := Question{
		ID:         "q1",
		Type:       ShortText,
		Validation: []ValidationRule{{Type: RuleURL}},
	}

	assert.Equal(t, "", v.Validate(q, "https://example.com/portfolio", nil, false))
	assert.Equal(t, "Must be a valid URL", v.Validate(q, "example dot com", nil, false))
	assert.Equal(t, "Must be a valid URL", v.Validate(q, "ftp://example.com", nil, false))
}

func TestValidate_SingleChoiceMembership(t *testing.T) {
	v := NewValidator()
	q := Question{ID: "q1", Type: SingleChoice, Options: []string{"yes", "no"}}

	assert.Equal(t, "", v.Validate(q, "yes", nil, false))
	assert.Equal(t, "invalid selection", v.Validate(q, "maybe", nil, false))
	assert.Equal(t, "invalid selection", v.Validate(q, []string{"yes"}, nil, false))
}

func TestValidate_MultiChoiceMembership(t *testing.T) {
	v := NewValidator()
	q := Question{ID: "q1", Type: MultiChoice, Options: []string{"go", "rust", "python"}}

	assert.Equal(t, "", v.Validate(q, []string{"go", "rust"}, nil, false))
	assert.Equal(t, "", v.Validate(q, []any{"go"}, nil, false))
	assert.Equal(t, "invalid selection", v.Validate(q, []string{"go", "cobol"}, nil, false))
	assert.Equal(t, "invalid selection", v.Validate(q, "go", nil, false))
}

func TestValidate_Numeric(t *testing.T) {
	v := NewValidator()
	q := Question{
		ID:   "q1",
		Type: Numeric,
		Validation: []ValidationRule{
			{Type: RuleNumericRange, Value: map[string]any{"min": float64(0), "max": float64(50)}},
		},
	}

	assert.Equal(t, "", v.Validate(q, float64(10), nil, false))
	assert.Equal(t, "", v.Validate(q, "10", nil, false))
	assert.Equal(t, "Must be a number", v.Validate(q, "ten", nil, false))
	assert.Equal(t, "Must be at least 0", v.Validate(q, float64(-3), nil, false))
	assert.Equal(t, "Must be at most 50", v.Validate(q, float64(60), nil, false))
}

func TestValidate_NumericOpenEndedRange(t *testing.T) {
	v := NewValidator()
	q := Question{
		ID:   "q1",
		Type: Numeric,
		Validation: []ValidationRule{
			{Type: RuleNumericRange, Value: map[string]any{"min": float64(1)}},
		},
	}
	assert.Equal(t, "", v.Validate(q, float64(1000), nil, false))
	assert.Equal(t, "Must be at least 1", v.Validate(q, float64(0), nil, false))
}

func TestValidate_FileUpload(t *testing.T) {
	v := NewValidator()
	q := Question{ID: "q1", Type: FileUpload, Required: true}

	assert.Equal(t, defaultRequiredMessage, v.Validate(q, FileRef{}, nil, true))
	assert.Equal(t, "", v.Validate(q, FileRef{Key: "resumes/x.pdf", Name: "x.pdf", Size: 12}, nil, true))
	assert.Equal(t, "invalid file", v.Validate(q, "x.pdf", nil, true))
}

func TestValidate_HardMaxTextLength(t *testing.T) {
	v := NewValidator(WithMaxTextLength(8))
	q := Question{ID: "q1", Type: LongText}

	assert.Equal(t, "", v.Validate(q, "short", nil, false))
	assert.Equal(t, "Must be at most 8 characters", v.Validate(q, strings.Repeat("a", 9), nil, false))
}

func TestValidate_UnknownTypePasses(t *testing.T) {
	v := NewValidator()
	q := Question{ID: "q1", Type: "hologram"}
	assert.Equal(t, "", v.Validate(q, "anything", nil, false))
}
