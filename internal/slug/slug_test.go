package slug

import (
	"strings"
	"testing"
)

func TestMake(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"polish diacritics", "Osiedle Słoneczne 2025", "osiedle-sloneczne-2025"},
		{"stroked l", "Łódź Śródmieście", "lodz-srodmiescie"},
		{"nasal vowels", "Zielone Wzgórza Żoliborz", "zielone-wzgorza-zoliborz"},
		{"plain ascii", "Park View II", "park-view-ii"},
		{"punctuation collapses", "Apartamenty  --  \"Riwiera\"!", "apartamenty-riwiera"},
		{"leading trailing junk", "  ***Nowa Huta***  ", "nowa-huta"},
		{"digits kept", "Etap 3 / Budynek B7", "etap-3-budynek-b7"},
		{"empty", "", ""},
		{"only symbols", "!!! ***", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Make(tt.in); got != tt.want {
				t.Errorf("Make(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMakeCapsLength(t *testing.T) {
	got := Make(strings.Repeat("osiedle ", 30))
	if len(got) > MaxLength {
		t.Errorf("len = %d, want <= %d", len(got), MaxLength)
	}
	if strings.HasSuffix(got, "-") || strings.HasPrefix(got, "-") {
		t.Errorf("slug %q has a dangling hyphen after truncation", got)
	}
}

func TestMakeIsStable(t *testing.T) {
	// Same name must always derive the same slug; re-uploads depend on it
	a := Make("Osiedle Słoneczne 2025")
	b := Make("Osiedle Słoneczne 2025")
	if a != b {
		t.Errorf("Make is not deterministic: %q vs %q", a, b)
	}
}
