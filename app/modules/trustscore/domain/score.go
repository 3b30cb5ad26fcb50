package trustscoredomain

import (
	"math"

	marketplacedomain "github.com/escrowhub/api/app/modules/marketplace/domain"
)

// Component weights. They sum to 1.0.
const (
	WeightReviews      = 0.30
	WeightCompletion   = 0.25
	WeightVerification = 0.15
	WeightEndorsements = 0.15
	WeightActivity     = 0.10
	WeightDisputes     = 0.05
)

// NeutralScore is used for a component whose inputs could not be loaded and
// for users that have never been scored.
const NeutralScore = 50

// badgePoints is the verification value of each badge type, counted once.
var badgePoints = map[marketplacedomain.BadgeType]int{
	marketplacedomain.BadgeEmail:        20,
	marketplacedomain.BadgeIdentity:     25,
	marketplacedomain.BadgePhone:        15,
	marketplacedomain.BadgeProfessional: 25,
	marketplacedomain.BadgeKYC:          15,
}

func clampScore(v float64) int {
	r := int(math.Round(v))
	switch {
	case r < 0:
		return 0
	case r > 100:
		return 100
	}
	return r
}

func ratio(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole)
}

// ReviewScore weighs average rating (up to 70) and review volume (up to 30).
func ReviewScore(s ReviewStats) int {
	if s.Count <= 0 {
		return 0
	}
	return clampScore(s.Average/5*70 + math.Min(float64(s.Count*2), 30))
}

// CompletionScore rewards completed jobs and penalises cancellations. Users
// with no jobs get the neutral score.
func CompletionScore(s JobStats) int {
	if s.Total <= 0 {
		return NeutralScore
	}
	return clampScore(math.Max(0, ratio(s.Completed, s.Total)*100-ratio(s.Cancelled, s.Total)*20))
}

// VerificationScore sums the points of each distinct badge type.
func VerificationScore(badges BadgeSet) int {
	total := 0
	for t := range badges {
		total += badgePoints[t]
	}
	return clampScore(float64(total))
}

// EndorsementScore weighs endorsement rating (40), verified share (30) and
// endorser variety (30).
func EndorsementScore(s EndorsementStats) int {
	if s.Count <= 0 {
		return 0
	}
	return clampScore(s.Average/5*40 +
		ratio(s.Verified, s.Count)*30 +
		math.Min(float64(s.UniqueEndorsers*5), 30))
}

// ActivityScore weighs login streak, recently completed jobs and level.
func ActivityScore(s ActivityStats) int {
	return clampScore(math.Min(float64(s.LoginStreak*5), 30) +
		math.Min(float64(s.RecentCompleted*10), 40) +
		math.Min(float64(s.Level*3), 30))
}

// DisputeScore starts at 100 and moves with the outcome of disputes raised
// against the user.
func DisputeScore(s DisputeStats) int {
	if s.Total <= 0 {
		return 100
	}
	return clampScore(100 - ratio(s.Upheld, s.Total)*50 + ratio(s.Dismissed, s.Total)*10)
}

// Total is the weighted sum of the components.
func Total(c Components) int {
	return clampScore(WeightReviews*float64(c.Reviews) +
		WeightCompletion*float64(c.Completion) +
		WeightVerification*float64(c.Verification) +
		WeightEndorsements*float64(c.Endorsements) +
		WeightActivity*float64(c.Activity) +
		WeightDisputes*float64(c.Disputes))
}

// TierFor maps a score to its tier.
func TierFor(score int) Tier {
	switch {
	case score >= 90:
		return TierDiamond
	case score >= 80:
		return TierPlatinum
	case score >= 70:
		return TierGold
	case score >= 60:
		return TierSilver
	default:
		return TierBronze
	}
}

// NextThreshold is the minimum score of the tier above score, or 100 at the top.
func NextThreshold(score int) int {
	switch TierFor(score) {
	case TierBronze:
		return 60
	case TierSilver:
		return 70
	case TierGold:
		return 80
	case TierPlatinum:
		return 90
	default:
		return 100
	}
}

// RecommendationThreshold is the component score under which advice is given.
const RecommendationThreshold = 60

const maxRecommendations = 3

// recommendationOrder lists components from heaviest to lightest weight.
var recommendationOrder = []struct {
	value  func(Components) int
	advice string
}{
	{func(c Components) int { return c.Reviews }, "Complete more jobs with high client satisfaction to earn strong reviews."},
	{func(c Components) int { return c.Completion }, "Finish the jobs you accept and avoid cancellations."},
	{func(c Components) int { return c.Verification }, "Verify your email, phone and identity to unlock verification points."},
	{func(c Components) int { return c.Endorsements }, "Ask past clients and collaborators to endorse your skills."},
	{func(c Components) int { return c.Activity }, "Log in regularly and keep taking on new work."},
	{func(c Components) int { return c.Disputes }, "Resolve disagreements with clients before they turn into disputes."},
}

// Recommendations returns advice for the weakest components, heaviest first.
func Recommendations(c Components) []string {
	out := make([]string, 0, maxRecommendations)
	for _, r := range recommendationOrder {
		if len(out) == maxRecommendations {
			break
		}
		if r.value(c) < RecommendationThreshold {
			out = append(out, r.advice)
		}
	}
	return out
}
