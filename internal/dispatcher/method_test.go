package dispatcher_test

import (
	"testing"

	"github.com/raysh454/courier/internal/dispatcher"
)

func TestParseMethod(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"get", "GET", "GET", false},
		{"post", "POST", "POST", false},
		{"put", "PUT", "PUT", false},
		{"delete", "DELETE", "DELETE", false},
		{"patch", "PATCH", "PATCH", false},
		{"head", "HEAD", "HEAD", false},
		{"options", "OPTIONS", "OPTIONS", false},
		{"connect", "CONNECT", "CONNECT", false},
		{"trace", "TRACE", "TRACE", false},
		{"extension token", "PROPFIND", "PROPFIND", false},
		{"lowercase kept as spelled", "get", "get", false},
		{"empty", "", "", true},
		{"inner space", "GE T", "", true},
		{"trailing newline", "GET\n", "", true},
		{"separator", "GET/1", "", true},
		{"parenthesized", "(GET)", "", true},
		{"non ascii", "PÖST", "", true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := dispatcher.ParseMethod(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMethod(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMethod(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsStandardMethod(t *testing.T) {
	t.Parallel()
	if !dispatcher.IsStandardMethod("PATCH") {
		t.Error("PATCH should be standard")
	}
	if dispatcher.IsStandardMethod("PROPFIND") {
		t.Error("PROPFIND should not be standard")
	}
}
