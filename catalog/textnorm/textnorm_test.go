package textnorm

import (
	"reflect"
	"testing"
)

func TestFold(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Pénicilline", "penicilline"},
		{"  Paracétamol ", "paracetamol"},
		{"IBUPROFÈNE", "ibuprofene"},
		{"Théophylline", "theophylline"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Fold(tt.input); got != tt.expected {
				t.Errorf("Fold(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestContains(t *testing.T) {
	if !Contains("Penicillin G", "penicillin") {
		t.Error("expected case-insensitive match")
	}
	if !Contains("Pénicilline V", "PENICILLINE") {
		t.Error("expected accent-insensitive match")
	}
	if Contains("Amoxicilline", "Pénicilline") {
		t.Error("different names must not match")
	}
	if Contains("Aspirine", "") {
		t.Error("empty needle must not match")
	}
}

func TestTokens(t *testing.T) {
	got := Tokens("Penicillin G, 1000000 UI")
	want := []string{"penicillin", "1000000"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens() = %v, want %v", got, want)
	}

	if len(Tokens("")) != 0 {
		t.Error("expected no tokens for empty input")
	}
}
