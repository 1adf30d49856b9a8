package language

import (
	"testing"

	xlanguage "golang.org/x/text/language"
)

func TestToISO2(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// 2-letter codes pass through
		{"en", "en"},
		{"EN", "en"},
		{"es", "es"},
		// 3-letter codes convert
		{"eng", "en"},
		{"spa", "es"},
		{"fra", "fr"},
		{"fre", "fr"},
		{"deu", "de"},
		{"ger", "de"},
		{"jpn", "ja"},
		{"chi", "zh"},
		{"dut", "nl"},
		// Word forms
		{"english", "en"},
		{"French", "fr"},
		{"GERMAN", "de"},
		// Full tags reduce to their base
		{"en-US", "en"},
		{"pt-BR", "pt"},
		// Unknown
		{"xyz-notalang", ""},
		{"", ""},
		{" ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ToISO2(tt.input)
			if result != tt.expected {
				t.Errorf("ToISO2(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestToISO3(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "eng"},
		{"fr", "fra"},
		{"fre", "fra"},
		{"german", "deu"},
		{"", "und"},
	}
	for _, tt := range tests {
		if got := ToISO3(tt.input); got != tt.expected {
			t.Errorf("ToISO3(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "English"},
		{"spa", "Spanish"},
		{"", "Unknown"},
		{"klingonese", "Klingonese"},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.input); got != tt.expected {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestExtractFromTags(t *testing.T) {
	tags := map[string]string{"title": "Signs", "LANGUAGE": "ger\u0000"}
	if got := ExtractFromTags(tags); got.String() != xlanguage.German.String() {
		t.Fatalf("ExtractFromTags = %v, want %v", got, xlanguage.German)
	}
	if got := ExtractFromTags(nil); got != xlanguage.Und {
		t.Fatalf("expected und for nil tags, got %v", got)
	}
}
