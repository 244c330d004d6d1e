package usecase

import (
	"math"
	"sort"
	"time"

	"github.com/banibsnetworks-source/banibs-production-sub001"
	"github.com/banibsnetworks-source/banibs-production-sub001/internal/domain"
)

const (
	baseRelevance       = 50.0
	recencyHalfWindow   = 3600.0
	defaultRecency      = 50.0
	trustFactor         = 0.4
	recencyFactor       = 0.3
	engagementFactor    = 0.3
	peoplesDominancePct = 70.0
	lowTrustFloorPct    = 10.0
)

// FeedRanker computes trust-weighted shadow scores for comparison
// against the live chronological order. It is evaluation-only: nothing
// here may be wired to production feed serving, and it is side-effect
// free with respect to the graph.
type FeedRanker struct {
	weights banibs.WeightTable
}

// NewFeedRanker builds a ranker around the feed-ranking weight table.
// This table is distinct from the reach-scoring table and the two must
// never be conflated.
func NewFeedRanker(weights banibs.WeightTable) *FeedRanker {
	return &FeedRanker{weights: weights}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RecencyScore decays exponentially over an hour window. A post with
// no timestamp lands on the neutral default.
func (f *FeedRanker) RecencyScore(createdAt, now time.Time) float64 {
	if createdAt.IsZero() {
		return defaultRecency
	}
	age := now.Sub(createdAt).Seconds()
	if age < 0 {
		age = 0
	}
	return clamp(100*(recencyHalfWindow/(recencyHalfWindow+age)), 0, 100)
}

// EngagementScore maps raw interaction counts onto a log scale.
func (f *FeedRanker) EngagementScore(post domain.Post) float64 {
	points := float64(post.CommentCount)*10 +
		float64(post.LikeCount)*2 +
		float64(post.ShareCount)*5 +
		float64(post.ViewCount)*0.1
	if points <= 0 {
		return 0
	}
	return clamp(50+15*math.Log10(points), 0, 100)
}

// Score computes the shadow score of one (post, viewer-tier) pair.
func (f *FeedRanker) Score(post domain.Post, viewerTier banibs.Tier, now time.Time) domain.FeedScore {
	trust := f.weights.Weight(viewerTier)
	recency := f.RecencyScore(post.CreatedAt, now)
	engagement := f.EngagementScore(post)
	return domain.FeedScore{
		PostID:     post.ID,
		Trust:      trust,
		Recency:    recency,
		Engagement: engagement,
		Total:      baseRelevance + trustFactor*trust + recencyFactor*recency + engagementFactor*engagement,
		ViewerTier: viewerTier,
	}
}

// tierFor resolves the poster's tier as seen by the viewer; absence of
// a declared relationship is the unclassified default.
func tierFor(relationships map[string]banibs.Tier, author string) banibs.Tier {
	tier, ok := relationships[author]
	if !ok || !tier.Valid() {
		return banibs.TierOthers
	}
	return tier
}

// Rank scores posts against the viewer's relationships and sorts
// descending by total. Posts from authors with a negative trust weight
// (BLOCKED) are excluded outright. The sort is stable over the input's
// chronological order, so identical inputs yield identical output.
func (f *FeedRanker) Rank(posts []domain.Post, relationships map[string]banibs.Tier, now time.Time) []domain.FeedScore {
	scores := make([]domain.FeedScore, 0, len(posts))
	for _, post := range posts {
		tier := tierFor(relationships, post.Author)
		if f.weights.Weight(tier) < 0 {
			continue
		}
		scores = append(scores, f.Score(post, tier, now))
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Total > scores[j].Total
	})
	return scores
}

// RankDelta reports each post's signed displacement between the
// chronological order and the trust order. Positive means the post
// moved up.
func (f *FeedRanker) RankDelta(chronological []domain.Post, ranked []domain.FeedScore) []domain.RankDelta {
	trustIndex := map[string]int{}
	for i, s := range ranked {
		trustIndex[s.PostID] = i
	}

	deltas := make([]domain.RankDelta, 0, len(ranked))
	for chronIdx, post := range chronological {
		trustIdx, ok := trustIndex[post.ID]
		if !ok {
			continue
		}
		deltas = append(deltas, domain.RankDelta{
			PostID:        post.ID,
			Chronological: chronIdx,
			Trust:         trustIdx,
			Delta:         chronIdx - trustIdx,
		})
	}
	return deltas
}

// Diversity builds the tier histogram of a feed with per-tier
// percentages and the Shannon entropy of the distribution.
func (f *FeedRanker) Diversity(posts []domain.Post, relationships map[string]banibs.Tier) domain.DiversityReport {
	counts := map[banibs.Tier]int{}
	for _, post := range posts {
		counts[tierFor(relationships, post.Author)]++
	}

	report := domain.DiversityReport{
		Total:       len(posts),
		Counts:      counts,
		Percentages: map[banibs.Tier]float64{},
	}
	if report.Total == 0 {
		return report
	}

	for tier, n := range counts {
		p := float64(n) / float64(report.Total)
		report.Percentages[tier] = math.Round(p*100*100) / 100
		if p > 0 {
			report.Entropy -= p * math.Log2(p)
		}
	}
	return report
}

// DetectSuppression applies heuristic warnings over a diversity
// report: low-trust tiers silenced entirely, PEOPLES dominating, or
// the combined lower tiers squeezed below a floor.
func (f *FeedRanker) DetectSuppression(report domain.DiversityReport) []string {
	if report.Total == 0 {
		return nil
	}

	warnings := []string{}
	if report.Counts[banibs.TierAlright] == 0 {
		warnings = append(warnings, "alright tier has zero visibility")
	}
	if report.Counts[banibs.TierOthers] == 0 {
		warnings = append(warnings, "others tier has zero visibility")
	}
	if report.Percentages[banibs.TierPeoples] > peoplesDominancePct {
		warnings = append(warnings, "peoples tier dominates the feed")
	}
	combined := report.Percentages[banibs.TierChill] +
		report.Percentages[banibs.TierAlright] +
		report.Percentages[banibs.TierOthers]
	if combined < lowTrustFloorPct {
		warnings = append(warnings, "lower tiers squeezed below floor")
	}
	return warnings
}
