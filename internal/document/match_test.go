// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package document

import "testing"

func TestNormalizeCounty(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Mombasa", "mombasa"},
		{"Mombasa County", "mombasa"},
		{"County Government of Mombasa", "mombasa"},
		{"  Taita   Taveta ", "taita taveta"},
		{"MURANG'A", "murang'a"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeCounty(tt.in); got != tt.want {
			t.Errorf("NormalizeCounty(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMatchesCountyHeader(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		county string
		want   bool
	}{
		{
			name:   "canonical header",
			text:   "3.11. County Government of Mombasa\nOverview of the County",
			county: "Mombasa",
			want:   true,
		},
		{
			name:   "header with OCR spacing",
			text:   "3.11.  County  Government  of  Mombasa",
			county: "Mombasa",
			want:   true,
		},
		{
			name:   "running head capitals",
			text:   "MOMBASA COUNTY\nBudget Implementation",
			county: "Mombasa",
			want:   true,
		},
		{
			name:   "county suffix in query",
			text:   "County Government of Mombasa",
			county: "Mombasa County",
			want:   true,
		},
		{
			name:   "wrong county",
			text:   "County Government of Kwale",
			county: "Mombasa",
			want:   false,
		},
		{
			name:   "empty page",
			text:   "",
			county: "Mombasa",
			want:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesCountyHeader(tt.text, tt.county); got != tt.want {
				t.Errorf("MatchesCountyHeader = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMentionsOtherCounty(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		county string
		want   bool
	}{
		{"same county", "County Government of Mombasa", "Mombasa", false},
		{"next county", "3.12. County Government of Kwale", "Mombasa", true},
		{"no header", "Table 2.1: Own Source Revenue", "Mombasa", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MentionsOtherCounty(tt.text, tt.county); got != tt.want {
				t.Errorf("MentionsOtherCounty = %v, want %v", got, tt.want)
			}
		})
	}
}
