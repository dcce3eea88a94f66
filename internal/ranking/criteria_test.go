package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCriteriaThresholds(t *testing.T) {
	got := ExtractCriteria("find grants-ready districts with FRPL > 70% and minority > 60%", "")

	require.NotNil(t, got.FRPLMin)
	assert.Equal(t, 70.0, *got.FRPLMin)
	require.NotNil(t, got.MinorityMin)
	assert.Equal(t, 60.0, *got.MinorityMin)
	assert.Nil(t, got.EnrollmentMin)
}

func TestExtractCriteriaFRPLPhrasings(t *testing.T) {
	tests := []struct {
		prompt string
		want   float64
	}{
		{"FRPL above 70", 70},
		{"free/reduced lunch over 55%", 55},
		{"free and reduced lunch rates of at least 80 percent", 80},
	}
	for _, tt := range tests {
		got := ExtractCriteria(tt.prompt, "")
		require.NotNil(t, got.FRPLMin, "prompt %q", tt.prompt)
		assert.Equal(t, tt.want, *got.FRPLMin, "prompt %q", tt.prompt)
	}
}

func TestExtractCriteriaEnrollment(t *testing.T) {
	got := ExtractCriteria("districts with over 10,000 students", "")
	require.NotNil(t, got.EnrollmentMin)
	assert.Equal(t, 10000, *got.EnrollmentMin)

	got = ExtractCriteria("districts with at least 5000 students", "")
	require.NotNil(t, got.EnrollmentMin)
	assert.Equal(t, 5000, *got.EnrollmentMin)
}

func TestExtractCriteriaStates(t *testing.T) {
	got := ExtractCriteria("leads in TX and CA", "")
	assert.Equal(t, []string{"TX", "CA"}, got.States)

	// Known non-state tokens are skipped; lower-case tokens never match.
	got = ExtractCriteria("AI tools used across the US in tx", "")
	assert.Empty(t, got.States)
}

func TestExtractCriteriaPercentClamp(t *testing.T) {
	got := ExtractCriteria("minority above 400%", "")
	require.NotNil(t, got.MinorityMin)
	assert.Equal(t, 100.0, *got.MinorityMin)
}

func TestExtractCriteriaKeywordsAndAttachment(t *testing.T) {
	got := ExtractCriteria("districts investing in literacy", "The grant requires Title I eligibility and tutoring programs. Minority enrollment above 45%.")
	assert.Contains(t, got.Keywords, "literacy")
	assert.Contains(t, got.Keywords, "title i")
	assert.Contains(t, got.Keywords, "tutoring")
	require.NotNil(t, got.MinorityMin)
	assert.Equal(t, 45.0, *got.MinorityMin)
}

func TestExtractCriteriaEmptyPromptIsNotAnError(t *testing.T) {
	got := ExtractCriteria("", "")
	assert.Nil(t, got.FRPLMin)
	assert.Nil(t, got.MinorityMin)
	assert.Nil(t, got.EnrollmentMin)
	assert.Empty(t, got.States)
	assert.Empty(t, got.Keywords)
}

func TestMergeCriteriaOverridesWinPerField(t *testing.T) {
	extracted := GrantCriteria{
		FRPLMin:     fptr(70),
		MinorityMin: fptr(60),
		States:      []string{"TX"},
	}
	override := &GrantCriteria{
		FRPLMin: fptr(85),
		States:  []string{"CA", "NV"},
	}

	got := MergeCriteria(extracted, override)
	assert.Equal(t, 85.0, *got.FRPLMin)
	assert.Equal(t, 60.0, *got.MinorityMin, "unset override field keeps extracted value")
	assert.Equal(t, []string{"CA", "NV"}, got.States)

	same := MergeCriteria(extracted, nil)
	assert.Equal(t, extracted, same)
}
