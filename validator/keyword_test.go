package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKeyword(t *testing.T) {
	tests := []struct {
		name string
		want Keyword
		ok   bool
	}{
		{"$ref", KeywordRef, true},
		{"maxLength", KeywordMaxLength, true},
		{"if", KeywordIf, true},
		{"x-rate-limit", KeywordExtension, true},
		{"description", 0, false},
		{"then", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseKeyword(tt.name)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestKeywordNamesRoundTrip(t *testing.T) {
	for k := KeywordRef; k < KeywordExtension; k++ {
		got, ok := ParseKeyword(k.String())
		assert.True(t, ok, k.String())
		assert.Equal(t, k, got)
	}
	assert.Equal(t, "unknown", Keyword(-1).String())
}

func TestResultsNil(t *testing.T) {
	var r *Results
	assert.True(t, r.Valid())
	assert.Equal(t, SeverityNone, r.Severity())
	assert.Nil(t, r.Items())
	assert.Nil(t, r.Codes())
	assert.Equal(t, "valid", r.String())
}

func TestResultsSeverity(t *testing.T) {
	r := &Results{}
	r.add(Item{Severity: SeverityWarning, Code: CodeFormat})
	assert.True(t, r.Valid())
	assert.Equal(t, SeverityWarning, r.Severity())

	r.add(Item{Severity: SeverityError, Code: CodeType})
	r.add(Item{Severity: SeverityInfo, Code: 1})
	assert.False(t, r.Valid())
	assert.Equal(t, SeverityError, r.Severity())
	assert.Len(t, r.Errors(), 1)
	assert.Len(t, r.Warnings(), 1)
	assert.Equal(t, []int{CodeFormat, CodeType, 1}, r.Codes())
}
