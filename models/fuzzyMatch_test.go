package models

import (
	"testing"
)

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Jane Developer Ltd", "janedeveloperltd"},
		{"ZOOM.US  LLC", "zoomusllc"},
		{"J&D Consulting (UK)", "jdconsultinguk"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeName(tc.in); got != tc.want {
			t.Fatalf("NormalizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBestMatch_Tiers(t *testing.T) {
	candidates := []MatchCandidate{
		{Id: 1, Name: "Jane Developer"},
		{Id: 2, Name: "Acme Ltd"},
	}

	cases := []struct {
		name     string
		text     string
		wantId   int
		wantTier MatchTier
	}{
		{"exact after normalization", "JANE DEVELOPER", 1, MatchTierExact},
		{"substring match", "Jane Developer Ltd", 1, MatchTierFuzzy},
		{"no plausible match", "Completely Unrelated Vendor Zzz", 0, MatchTierNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := BestMatch(tc.text, candidates)
			if result.Tier != tc.wantTier {
				t.Fatalf("tier = %q, want %q", result.Tier, tc.wantTier)
			}
			if tc.wantTier == MatchTierNone {
				if result.Candidate != nil {
					t.Fatalf("expected no candidate, got id %d", result.Candidate.Id)
				}
				return
			}
			if result.Candidate == nil || result.Candidate.Id != tc.wantId {
				t.Fatalf("candidate = %+v, want id %d", result.Candidate, tc.wantId)
			}
		})
	}
}

func TestBestMatch_ExactBeatsSubstring(t *testing.T) {
	candidates := []MatchCandidate{
		{Id: 1, Name: "Zoom Video"},
		{Id: 2, Name: "Zoom"},
	}
	result := BestMatch("zoom", candidates)
	if result.Candidate == nil || result.Candidate.Id != 2 {
		t.Fatalf("expected exact candidate 2, got %+v", result.Candidate)
	}
	if result.Score != 1.0 {
		t.Fatalf("expected score 1.0, got %v", result.Score)
	}
}

func TestBestMatch_TieKeepsFirstCandidate(t *testing.T) {
	candidates := []MatchCandidate{
		{Id: 1, Name: "Acme"},
		{Id: 2, Name: "Acme"},
	}
	result := BestMatch("acme", candidates)
	if result.Candidate == nil || result.Candidate.Id != 1 {
		t.Fatalf("tie should keep first candidate, got %+v", result.Candidate)
	}
}

func TestMatchTeamMemberBySupplier_UsesAliases(t *testing.T) {
	members := []*TeamMember{
		{ID: 7, Name: "Jane Developer", SupplierAliases: StringList{"JD Consulting"}},
		{ID: 8, Name: "Bob Designer"},
	}
	result := MatchTeamMemberBySupplier("JD CONSULTING", members)
	if result.Candidate == nil || result.Candidate.Id != 7 {
		t.Fatalf("expected alias to resolve to member 7, got %+v", result.Candidate)
	}
	if result.Tier != MatchTierExact {
		t.Fatalf("expected exact tier, got %q", result.Tier)
	}
}

func TestCharacterSetJaccard(t *testing.T) {
	if got := CharacterSetJaccard("abc", "abc"); got != 1.0 {
		t.Fatalf("identical sets: got %v, want 1.0", got)
	}
	if got := CharacterSetJaccard("abc", "xyz"); got != 0 {
		t.Fatalf("disjoint sets: got %v, want 0", got)
	}
	if got := CharacterSetJaccard("", "abc"); got != 0 {
		t.Fatalf("empty input: got %v, want 0", got)
	}
}
