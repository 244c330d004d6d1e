package usecase

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/banibsnetworks-source/banibs-production-sub001"
	"github.com/banibsnetworks-source/banibs-production-sub001/internal/domain"
)

const (
	maxTraversalDepth  = 3
	defaultFanoutCap   = 100
	defaultParallelism = 8
	popBonusPerNode    = 10
)

// GraphUsecase materializes and queries the weighted trust graph.
type GraphUsecase struct {
	relationships RelationshipRepository
	edges         EdgeRepository
	weights       banibs.WeightTable
	anomaly       AnomalyObserver
	fanoutCap     int
	parallelism   int
}

func NewGraphUsecase(
	relationships RelationshipRepository,
	edges EdgeRepository,
	weights banibs.WeightTable,
	anomaly AnomalyObserver,
	conf domain.Config,
) *GraphUsecase {
	fanout := conf.TraversalFanoutCap
	if fanout <= 0 {
		fanout = defaultFanoutCap
	}
	parallelism := conf.RefreshParallelism
	if parallelism <= 0 {
		parallelism = defaultParallelism
	}
	return &GraphUsecase{
		relationships: relationships,
		edges:         edges,
		weights:       weights,
		anomaly:       anomaly,
		fanoutCap:     fanout,
		parallelism:   parallelism,
	}
}

// RefreshEdges recomputes one user's outgoing edge set from the
// declared relationships and atomically replaces the previous set,
// recomputing the per-tier meta counts in the same operation. An
// upstream read failure leaves the prior set intact. Returns the
// number of edges written.
func (uc *GraphUsecase) RefreshEdges(ctx context.Context, owner string) (int, error) {
	relationships, err := uc.relationships.ListActive(ctx, owner)
	if err != nil {
		return 0, err
	}

	previous := map[string]banibs.Tier{}
	if uc.anomaly != nil {
		old, err := uc.edges.GetEdges(ctx, owner, nil, 0)
		if err == nil {
			for _, e := range old {
				previous[e.Target] = e.Tier
			}
		}
	}

	now := time.Now().UTC()
	edges := make([]domain.TrustEdge, 0, len(relationships))
	counts := map[banibs.Tier]int{}
	for _, rel := range relationships {
		if !rel.Tier.Valid() {
			// Unrecognized declarations fail closed to the
			// unclassified default.
			rel.Tier = banibs.TierOthers
		}
		edges = append(edges, domain.TrustEdge{
			Owner:     owner,
			Target:    rel.Target,
			Tier:      rel.Tier,
			Weight:    uc.weights.Weight(rel.Tier),
			CreatedAt: now,
			UpdatedAt: now,
		})
		counts[rel.Tier]++
	}

	meta := domain.TrustGraphMeta{
		Owner:       owner,
		TierCounts:  counts,
		TotalEdges:  len(edges),
		RefreshedAt: now,
	}

	if err := uc.edges.ReplaceEdges(ctx, owner, edges, meta); err != nil {
		return 0, err
	}

	if uc.anomaly != nil {
		for _, e := range edges {
			old, ok := previous[e.Target]
			if ok && old != e.Tier {
				uc.anomaly.Observe(ctx, owner, e.Target, old, e.Tier)
			}
		}
	}

	return len(edges), nil
}

// RefreshAll fans RefreshEdges out over every known user with bounded
// parallelism. Per-user failures are counted, never propagated; this
// is an administrative bulk operation, not a request-path one.
func (uc *GraphUsecase) RefreshAll(ctx context.Context) (domain.RefreshReport, error) {
	owners, err := uc.relationships.ListOwners(ctx)
	if err != nil {
		return domain.RefreshReport{}, err
	}

	var (
		totalEdges int64
		errCount   int64
		wg         sync.WaitGroup
	)
	sem := semaphore.NewWeighted(int64(uc.parallelism))

	for _, owner := range owners {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(owner string) {
			defer wg.Done()
			defer sem.Release(1)

			n, err := uc.RefreshEdges(ctx, owner)
			if err != nil {
				atomic.AddInt64(&errCount, 1)
				slog.WarnContext(
					ctx, "edge refresh failed",
					slog.String("owner", owner),
					slog.String("error", err.Error()),
					slog.String("module", "graph"),
				)
				return
			}
			atomic.AddInt64(&totalEdges, int64(n))
		}(owner)
	}
	wg.Wait()

	return domain.RefreshReport{
		TotalUsers: len(owners),
		TotalEdges: int(atomic.LoadInt64(&totalEdges)),
		Errors:     int(atomic.LoadInt64(&errCount)),
	}, nil
}

// GetEdges returns the current edge set, optionally filtered by tier.
func (uc *GraphUsecase) GetEdges(ctx context.Context, owner string, tier *banibs.Tier) ([]domain.TrustEdge, error) {
	return uc.edges.GetEdges(ctx, owner, tier, 0)
}

// GetMeta returns the cached per-tier counts.
func (uc *GraphUsecase) GetMeta(ctx context.Context, owner string) (domain.TrustGraphMeta, error) {
	return uc.edges.GetMeta(ctx, owner)
}

// TierOf resolves the tier owner assigns to target. Absence of a
// declared relationship resolves to OTHERS, not an error.
func (uc *GraphUsecase) TierOf(ctx context.Context, owner, target string) (banibs.Tier, error) {
	tier, err := uc.edges.GetTier(ctx, owner, target)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return banibs.TierOthers, nil
		}
		return banibs.TierOthers, err
	}
	if !tier.Valid() {
		return banibs.TierOthers, nil
	}
	return tier, nil
}

// MutualPeoples reports whether both directions of the pair are
// classified PEOPLES.
func (uc *GraphUsecase) MutualPeoples(ctx context.Context, a, b string) (bool, error) {
	ab, err := uc.TierOf(ctx, a, b)
	if err != nil {
		return false, err
	}
	if ab != banibs.TierPeoples {
		return false, nil
	}
	ba, err := uc.TierOf(ctx, b, a)
	if err != nil {
		return false, err
	}
	return ba == banibs.TierPeoples, nil
}

// TraverseMultihop walks the graph breadth-first up to depth hops
// (1..3). Iterative with an explicit visited set and frontier queue;
// each hop reads at most the configured fan-out cap per intermediate
// node. Nodes already visited at a shallower depth are excluded from
// deeper layers.
func (uc *GraphUsecase) TraverseMultihop(ctx context.Context, origin string, depth int) ([]domain.TraversalLayer, error) {
	if depth < 1 {
		depth = 1
	}
	if depth > maxTraversalDepth {
		depth = maxTraversalDepth
	}

	visited := map[string]struct{}{origin: {}}
	frontier := []string{origin}
	layers := make([]domain.TraversalLayer, 0, depth)

	for d := 1; d <= depth; d++ {
		layer := domain.TraversalLayer{Depth: d}
		next := []string{}

		for _, node := range frontier {
			edges, err := uc.edges.GetEdges(ctx, node, nil, uc.fanoutCap)
			if err != nil {
				return nil, err
			}
			for _, edge := range edges {
				if _, seen := visited[edge.Target]; seen {
					continue
				}
				visited[edge.Target] = struct{}{}
				layer.Edges = append(layer.Edges, edge)
				next = append(next, edge.Target)
			}
		}

		layers = append(layers, layer)
		if len(next) == 0 {
			break
		}
		frontier = next
	}

	return layers, nil
}

// PeoplesOfPeoples is the depth-2 traversal restricted to PEOPLES
// edges in both hops. The origin and its depth-1 PEOPLES are excluded;
// each discovered node carries the depth-1 connections it is reachable
// through, sorted by mutual count descending (node id breaks ties for
// a deterministic order).
func (uc *GraphUsecase) PeoplesOfPeoples(ctx context.Context, origin string) ([]domain.MutualPeople, error) {
	peoples := banibs.TierPeoples

	direct, err := uc.edges.GetEdges(ctx, origin, &peoples, uc.fanoutCap)
	if err != nil {
		return nil, err
	}

	directSet := map[string]struct{}{origin: {}}
	for _, e := range direct {
		directSet[e.Target] = struct{}{}
	}

	through := map[string][]string{}
	for _, e := range direct {
		second, err := uc.edges.GetEdges(ctx, e.Target, &peoples, uc.fanoutCap)
		if err != nil {
			return nil, err
		}
		for _, s := range second {
			if _, skip := directSet[s.Target]; skip {
				continue
			}
			through[s.Target] = append(through[s.Target], e.Target)
		}
	}

	result := make([]domain.MutualPeople, 0, len(through))
	for id, mutuals := range through {
		sort.Strings(mutuals)
		result = append(result, domain.MutualPeople{
			ID:            id,
			MutualCount:   len(mutuals),
			MutualPeoples: mutuals,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].MutualCount != result[j].MutualCount {
			return result[i].MutualCount > result[j].MutualCount
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// circleTiers are the tiers compared by SharedCircle.
var circleTiers = []banibs.Tier{banibs.TierPeoples, banibs.TierCool, banibs.TierAlright}

// SharedCircle intersects the two users' circles per tier and scores
// the overlap: |union of intersections| over the average tiered circle
// size, rounded to three decimals. 0.0 when either side has no edges.
func (uc *GraphUsecase) SharedCircle(ctx context.Context, a, b string) (domain.CircleOverlap, error) {
	aEdges, err := uc.edges.GetEdges(ctx, a, nil, 0)
	if err != nil {
		return domain.CircleOverlap{}, err
	}
	bEdges, err := uc.edges.GetEdges(ctx, b, nil, 0)
	if err != nil {
		return domain.CircleOverlap{}, err
	}

	bucket := func(edges []domain.TrustEdge) (map[banibs.Tier]map[string]struct{}, int) {
		byTier := map[banibs.Tier]map[string]struct{}{}
		total := 0
		for _, t := range circleTiers {
			byTier[t] = map[string]struct{}{}
		}
		for _, e := range edges {
			set, ok := byTier[e.Tier]
			if !ok {
				continue
			}
			set[e.Target] = struct{}{}
			total++
		}
		return byTier, total
	}

	aByTier, aTotal := bucket(aEdges)
	bByTier, bTotal := bucket(bEdges)

	intersect := func(tier banibs.Tier) []string {
		shared := []string{}
		for id := range aByTier[tier] {
			if _, ok := bByTier[tier][id]; ok {
				shared = append(shared, id)
			}
		}
		sort.Strings(shared)
		return shared
	}

	overlap := domain.CircleOverlap{
		Peoples: intersect(banibs.TierPeoples),
		Cool:    intersect(banibs.TierCool),
		Alright: intersect(banibs.TierAlright),
	}

	if aTotal == 0 || bTotal == 0 {
		return overlap, nil
	}

	union := map[string]struct{}{}
	for _, ids := range [][]string{overlap.Peoples, overlap.Cool, overlap.Alright} {
		for _, id := range ids {
			union[id] = struct{}{}
		}
	}

	avg := float64(aTotal+bTotal) / 2
	overlap.Score = math.Round(float64(len(union))/avg*1000) / 1000
	return overlap, nil
}

// ReachScore sums the user's edge weights (reach table) and adds a
// fixed bonus per peoples-of-peoples node, with a tier-count
// breakdown.
func (uc *GraphUsecase) ReachScore(ctx context.Context, owner string) (domain.ReachReport, error) {
	edges, err := uc.edges.GetEdges(ctx, owner, nil, 0)
	if err != nil {
		return domain.ReachReport{}, err
	}

	var edgeSum float64
	counts := map[banibs.Tier]int{}
	for _, e := range edges {
		edgeSum += e.Weight
		counts[e.Tier]++
	}

	pop, err := uc.PeoplesOfPeoples(ctx, owner)
	if err != nil {
		return domain.ReachReport{}, err
	}

	bonus := float64(popBonusPerNode * len(pop))
	return domain.ReachReport{
		Score:      edgeSum + bonus,
		EdgeSum:    edgeSum,
		PoPBonus:   bonus,
		TierCounts: counts,
	}, nil
}
