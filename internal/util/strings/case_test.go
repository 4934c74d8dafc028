package strings

import "testing"

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"user", "user"},
		{"UserAccount", "user_account"},
		{"HTTPRequest", "http_request"},
		{"already_snake", "already_snake"},
		{"V2Items", "v2_items"},
	}

	for _, tt := range tests {
		if got := ToSnakeCase(tt.input); got != tt.expected {
			t.Errorf("ToSnakeCase(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
