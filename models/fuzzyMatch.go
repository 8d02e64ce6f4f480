package models

import (
	"strings"
)

// Free-text matching of supplier names, vendor names and bank-transaction
// descriptions against reference records. Deliberately coarse: the scoring
// strategy is order-insensitive set similarity, not edit distance, because
// the inputs differ mostly in punctuation, casing and word order.

type MatchTier string

const (
	MatchTierExact MatchTier = "exact"
	MatchTierFuzzy MatchTier = "fuzzy"
	MatchTierNone  MatchTier = "none"
)

type MatchCandidate struct {
	Id   int
	Name string
}

type MatchResult struct {
	Candidate *MatchCandidate
	Score     float64
	Tier      MatchTier
}

// MatchStrategy scores two normalized strings in [0, 1]. Swappable so a
// token-based or edit-distance scorer can replace the default without
// changing the tier contract.
type MatchStrategy func(a, b string) float64

const (
	exactScore     = 1.0
	substringScore = 0.8
	fuzzyThreshold = 0.6
)

// NormalizeName lowercases and strips everything but letters and digits.
func NormalizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CharacterSetJaccard is intersection over union of the two strings'
// unique-character sets.
func CharacterSetJaccard(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	setA := map[rune]struct{}{}
	for _, r := range a {
		setA[r] = struct{}{}
	}
	setB := map[rune]struct{}{}
	for _, r := range b {
		setB[r] = struct{}{}
	}
	intersection := 0
	for r := range setA {
		if _, ok := setB[r]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func scorePair(a, b string, strategy MatchStrategy) (float64, MatchTier) {
	if a == "" || b == "" {
		return 0, MatchTierNone
	}
	if a == b {
		return exactScore, MatchTierExact
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return substringScore, MatchTierFuzzy
	}
	score := strategy(a, b)
	if score >= fuzzyThreshold {
		return score, MatchTierFuzzy
	}
	return score, MatchTierNone
}

// BestMatch returns the strictly-highest-scoring candidate; ties keep the
// first-encountered candidate, so input order is the tie-break.
func BestMatch(text string, candidates []MatchCandidate, strategies ...MatchStrategy) MatchResult {
	strategy := MatchStrategy(CharacterSetJaccard)
	if len(strategies) > 0 && strategies[0] != nil {
		strategy = strategies[0]
	}

	normalized := NormalizeName(text)
	best := MatchResult{Tier: MatchTierNone}
	for i := range candidates {
		candidate := candidates[i]
		score, tier := scorePair(normalized, NormalizeName(candidate.Name), strategy)
		if tier == MatchTierNone {
			continue
		}
		if best.Candidate == nil || score > best.Score {
			best = MatchResult{Candidate: &candidate, Score: score, Tier: tier}
		}
	}
	return best
}

// MatchTeamMemberBySupplier matches an extracted supplier name against team
// members, trying each member's name and supplier aliases.
func MatchTeamMemberBySupplier(supplierName string, members []*TeamMember) MatchResult {
	var candidates []MatchCandidate
	for _, m := range members {
		candidates = append(candidates, MatchCandidate{Id: m.ID, Name: m.Name})
		for _, alias := range m.SupplierAliases {
			candidates = append(candidates, MatchCandidate{Id: m.ID, Name: alias})
		}
	}
	return BestMatch(supplierName, candidates)
}

// MatchClientByName matches an extracted client name against the client list.
func MatchClientByName(clientName string, clients []*Client) MatchResult {
	var candidates []MatchCandidate
	for _, c := range clients {
		candidates = append(candidates, MatchCandidate{Id: c.ID, Name: c.Name})
	}
	return BestMatch(clientName, candidates)
}
