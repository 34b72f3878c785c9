package language

import (
	"testing"
)

func TestDirectoryCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		ok       bool
	}{
		{"english", "eng", true},
		{"English", "eng", true},
		{"FRENCH", "fra", true},
		{"german", "deu", true},
		{"spanish", "spa", true},
		{"ukrainian", "ukr", true},
		// Codes also resolve
		{"eng", "eng", true},
		{"fre", "fra", true},
		{"de", "deu", true},
		// Unknown directories do not resolve
		{"SciFi", "", false},
		{"", "", false},
		{" ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			code, ok := DirectoryCode(tt.input)
			if ok != tt.ok || code != tt.expected {
				t.Errorf("DirectoryCode(%q) = (%q, %v), want (%q, %v)", tt.input, code, ok, tt.expected, tt.ok)
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
		{"eng", "eng"},
		{"fre", "fra"},
		{"chi", "zho"},
		{"dutch", "nld"},
		{"xyz", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ToISO3(tt.input); got != tt.expected {
			t.Errorf("ToISO3(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestVITSSupported(t *testing.T) {
	if !VITSSupported("eng") {
		t.Error("expected eng to be VITS-supported")
	}
	if VITSSupported("jpn") {
		t.Error("expected jpn to fall back to fairseq")
	}
	if VITSSupported("xyz") {
		t.Error("unknown codes must not report VITS support")
	}
}

func TestDisplay(t *testing.T) {
	if got := Display("deu"); got != "German" {
		t.Errorf("Display(deu) = %q", got)
	}
	if got := Display("unknown-thing"); got != "unknown-thing" {
		t.Errorf("Display should pass through unknown input, got %q", got)
	}
}
