// Package match resolves a reported down-site identifier against the noisy
// identifiers OCR read off a diagram.
package match

import (
	"math"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"pof-predictor/internal/poferrors"
)

const (
	// DefaultInclusionScore admits an identifier into the candidate set.
	DefaultInclusionScore = 70

	// DefaultAcceptanceScore is the score the best candidate must reach.
	DefaultAcceptanceScore = 80
)

// Ratio scores the similarity of two strings from 0 to 100 as
// 2*M/T*100 over the matching blocks difflib finds, rounded half to even.
// Empty input scores 0.
func Ratio(a, b string) int {
	if a == "" || b == "" {
		return 0
	}

	m := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return int(math.RoundToEven(100 * m.Ratio()))
}

// Candidate is one identifier that cleared the inclusion score.
type Candidate struct {
	ID    string `json:"id"`
	Score int    `json:"score"`
}

// Matcher applies a two-stage filter: identifiers below InclusionScore never
// become candidates, and the best candidate must still reach AcceptanceScore.
type Matcher struct {
	InclusionScore  int
	AcceptanceScore int
}

// New returns a Matcher with the default thresholds.
func New() *Matcher {
	return &Matcher{
		InclusionScore:  DefaultInclusionScore,
		AcceptanceScore: DefaultAcceptanceScore,
	}
}

// Candidates returns every identifier scoring at least InclusionScore, in input order.
func (m *Matcher) Candidates(downID string, ids []string) []Candidate {
	var candidates []Candidate
	for _, id := range ids {
		if score := Ratio(downID, id); score >= m.InclusionScore {
			candidates = append(candidates, Candidate{ID: id, Score: score})
		}
	}
	return candidates
}

// Match returns the best candidate for downID. It fails with SiteIdNotFound
// when no identifier clears the inclusion score or the best one misses the
// acceptance score; ties keep the earliest identifier.
func (m *Matcher) Match(downID string, ids []string) (Candidate, error) {
	candidates := m.Candidates(downID, ids)
	if len(candidates) == 0 {
		return Candidate{}, poferrors.Newf(poferrors.KindSiteIDNotFound, "site down with id %q not found in image", downID)
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Score > best.Score {
			best = c
		}
	}

	if best.Score < m.AcceptanceScore {
		return Candidate{}, poferrors.NotFound(downID, best.ID, best.Score)
	}

	return best, nil
}
