package stringutil

import "testing"

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "valid simple email", input: "user@example.com", want: true},
		{name: "valid with dots", input: "first.last@example.com", want: true},
		{name: "valid with plus", input: "user+tag@example.com", want: true},
		{name: "valid with subdomain", input: "user@sub.example.com", want: true},
		{name: "valid with percent", input: "user%name@example.com", want: true},
		{name: "valid with hyphen in domain", input: "user@my-domain.com", want: true},
		{name: "missing at sign", input: "userexample.com", want: false},
		{name: "missing domain", input: "user@", want: false},
		{name: "missing local part", input: "@example.com", want: false},
		{name: "missing TLD", input: "user@example", want: false},
		{name: "single char TLD", input: "user@example.c", want: false},
		{name: "empty string", input: "", want: false},
		{name: "spaces", input: "user @example.com", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsValidEmail(tt.input)
			if got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsValidUUID(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"123e4567-e89b-12d3-a456-426614174000", true},
		{"123E4567-E89B-12D3-A456-426614174000", true},
		{"123e4567e89b12d3a456426614174000", false},
		{"123e4567-e89b-12d3-a456-42661417400", false},
		{"g23e4567-e89b-12d3-a456-426614174000", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidUUID(tt.input); got != tt.want {
			t.Errorf("IsValidUUID(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestIsValidHostname(t *testing.T) {
	long := ""
	for range 64 {
		long += "a"
	}
	tests := []struct {
		input string
		want  bool
	}{
		{"example.com", true},
		{"example.com.", true},
		{"api-v2.example.com", true},
		{"localhost", true},
		{"-bad.example.com", false},
		{"bad-.example.com", false},
		{"under_score.example.com", false},
		{"a..b", false},
		{long + ".com", false},
		{"", false},
		{".", false},
	}
	for _, tt := range tests {
		if got := IsValidHostname(tt.input); got != tt.want {
			t.Errorf("IsValidHostname(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
