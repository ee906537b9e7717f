package validation

import (
	"reflect"
	"testing"
)

func TestNormalizeLanguage(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"en", "en"},
		{"fr", "fr"},
		{"FR", "fr"},
		{" native ", "native"},
		{"de", "en"},
		{"", "en"},
	}
	for _, tt := range tests {
		if got := NormalizeLanguage(tt.input); got != tt.want {
			t.Errorf("NormalizeLanguage(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeContinents(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"valid codes", []string{"eu", "AF"}, []string{"EU", "AF"}},
		{"drops unknown", []string{"EU", "XX"}, []string{"EU"}},
		{"deduplicates", []string{"EU", "eu", " EU "}, []string{"EU"}},
		{"empty", nil, nil},
		{"all invalid", []string{"ZZ", ""}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeContinents(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeContinents(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeAnswer(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Paris", "paris"},
		{"  Le   Cap  ", "le cap"},
		{"BOURG-EN-BRESSE", "bourg-en-bresse"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeAnswer(tt.input); got != tt.want {
			t.Errorf("NormalizeAnswer(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeCode(t *testing.T) {
	if got := NormalizeCode(" fr "); got != "FR" {
		t.Errorf("NormalizeCode(\" fr \") = %q, want FR", got)
	}
}
