package models

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "sonar"},
		{"  ", "sonar"},
		{"sonar-pro", "sonar-pro"},
		{" sonar-reasoning ", "sonar-reasoning"},
		{"gpt-4", "gpt-4"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsKnown(t *testing.T) {
	for _, id := range []string{"sonar", "sonar-pro", "sonar-reasoning"} {
		if ok, _ := IsKnown(id); !ok {
			t.Errorf("IsKnown(%q) = false, want true", id)
		}
	}

	ok, hint := IsKnown("gpt-4")
	if ok {
		t.Error("IsKnown(gpt-4) = true, want false")
	}
	if !strings.Contains(hint, "sonar-pro") {
		t.Errorf("hint %q should list available models", hint)
	}
}

func TestCatalogIsCopied(t *testing.T) {
	c := Catalog()
	c[0].ID = "mutated"
	if Catalog()[0].ID != "sonar" {
		t.Error("Catalog() must return a copy")
	}
}
