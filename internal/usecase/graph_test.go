package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/banibsnetworks-source/banibs-production-sub001"
	"github.com/banibsnetworks-source/banibs-production-sub001/internal/domain"
)

// --- mocks ---

type mockRelationshipRepo struct {
	relationships map[string][]domain.Relationship
	listErr       error
}

func (m *mockRelationshipRepo) ListActive(ctx context.Context, owner string) ([]domain.Relationship, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.relationships[owner], nil
}

func (m *mockRelationshipRepo) ListOwners(ctx context.Context) ([]string, error) {
	owners := make([]string, 0, len(m.relationships))
	for owner := range m.relationships {
		owners = append(owners, owner)
	}
	return owners, nil
}

type mockEdgeRepo struct {
	edges      map[string][]domain.TrustEdge
	meta       map[string]domain.TrustGraphMeta
	replaceErr error
	replaced   []string
}

func (m *mockEdgeRepo) ReplaceEdges(ctx context.Context, owner string, edges []domain.TrustEdge, meta domain.TrustGraphMeta) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	if m.edges == nil {
		m.edges = map[string][]domain.TrustEdge{}
	}
	if m.meta == nil {
		m.meta = map[string]domain.TrustGraphMeta{}
	}
	m.edges[owner] = edges
	m.meta[owner] = meta
	m.replaced = append(m.replaced, owner)
	return nil
}

func (m *mockEdgeRepo) GetEdges(ctx context.Context, owner string, tier *banibs.Tier, limit int) ([]domain.TrustEdge, error) {
	edges := []domain.TrustEdge{}
	for _, e := range m.edges[owner] {
		if tier != nil && e.Tier != *tier {
			continue
		}
		edges = append(edges, e)
		if limit > 0 && len(edges) >= limit {
			break
		}
	}
	return edges, nil
}

func (m *mockEdgeRepo) GetTier(ctx context.Context, owner, target string) (banibs.Tier, error) {
	for _, e := range m.edges[owner] {
		if e.Target == target {
			return e.Tier, nil
		}
	}
	return banibs.TierUnknown, domain.NotFoundError{Resource: "trust edge"}
}

func (m *mockEdgeRepo) GetMeta(ctx context.Context, owner string) (domain.TrustGraphMeta, error) {
	meta, ok := m.meta[owner]
	if !ok {
		return domain.TrustGraphMeta{}, domain.NotFoundError{Resource: "trust graph meta"}
	}
	return meta, nil
}

type observedChange struct {
	owner, target    string
	oldTier, newTier banibs.Tier
}

type mockAnomalyObserver struct {
	observed []observedChange
}

func (m *mockAnomalyObserver) Observe(ctx context.Context, owner, target string, oldTier, newTier banibs.Tier) {
	m.observed = append(m.observed, observedChange{owner, target, oldTier, newTier})
}

func edgeSet(owner string, targets map[string]banibs.Tier) []domain.TrustEdge {
	edges := make([]domain.TrustEdge, 0, len(targets))
	for target, tier := range targets {
		edges = append(edges, domain.TrustEdge{
			Owner:  owner,
			Target: target,
			Tier:   tier,
			Weight: banibs.DefaultReachWeights.Weight(tier),
		})
	}
	return edges
}

// --- tests ---

func TestRefreshEdges(t *testing.T) {
	relationships := &mockRelationshipRepo{relationships: map[string][]domain.Relationship{
		"alice": {
			{Owner: "alice", Target: "bob", Tier: banibs.TierPeoples, Status: domain.RelationshipStatusActive},
			{Owner: "alice", Target: "carol", Tier: banibs.TierCool, Status: domain.RelationshipStatusActive},
			{Owner: "alice", Target: "dan", Tier: banibs.TierUnknown, Status: domain.RelationshipStatusActive},
		},
	}}
	edges := &mockEdgeRepo{}
	uc := NewGraphUsecase(relationships, edges, banibs.DefaultReachWeights, nil, domain.Config{})

	n, err := uc.RefreshEdges(context.Background(), "alice")
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 edges, got %d", n)
	}

	written := edges.edges["alice"]
	byTarget := map[string]domain.TrustEdge{}
	for _, e := range written {
		byTarget[e.Target] = e
	}
	if byTarget["bob"].Weight != 100 {
		t.Fatalf("peoples edge weight: got %v", byTarget["bob"].Weight)
	}
	// An unrecognized declaration lands in the unclassified default.
	if byTarget["dan"].Tier != banibs.TierOthers {
		t.Fatalf("invalid tier must fail closed to others, got %v", byTarget["dan"].Tier)
	}

	meta := edges.meta["alice"]
	if meta.TotalEdges != 3 || meta.TierCounts[banibs.TierPeoples] != 1 {
		t.Fatalf("unexpected meta: %+v", meta)
	}
}

func TestRefreshEdgesReadFailureLeavesSetIntact(t *testing.T) {
	relationships := &mockRelationshipRepo{listErr: errors.New("upstream down")}
	edges := &mockEdgeRepo{edges: map[string][]domain.TrustEdge{
		"alice": edgeSet("alice", map[string]banibs.Tier{"bob": banibs.TierPeoples}),
	}}
	uc := NewGraphUsecase(relationships, edges, banibs.DefaultReachWeights, nil, domain.Config{})

	if _, err := uc.RefreshEdges(context.Background(), "alice"); err == nil {
		t.Fatalf("expected upstream error to propagate")
	}
	if len(edges.replaced) != 0 {
		t.Fatalf("no replace may happen after a failed read")
	}
	if len(edges.edges["alice"]) != 1 {
		t.Fatalf("prior edge set must survive")
	}
}

func TestRefreshEdgesObservesTierChanges(t *testing.T) {
	relationships := &mockRelationshipRepo{relationships: map[string][]domain.Relationship{
		"alice": {
			{Owner: "alice", Target: "bob", Tier: banibs.TierOthers, Status: domain.RelationshipStatusActive},
			{Owner: "alice", Target: "carol", Tier: banibs.TierCool, Status: domain.RelationshipStatusActive},
		},
	}}
	edges := &mockEdgeRepo{edges: map[string][]domain.TrustEdge{
		"alice": edgeSet("alice", map[string]banibs.Tier{
			"bob":   banibs.TierPeoples,
			"carol": banibs.TierCool,
		}),
	}}
	observer := &mockAnomalyObserver{}
	uc := NewGraphUsecase(relationships, edges, banibs.DefaultReachWeights, observer, domain.Config{})

	if _, err := uc.RefreshEdges(context.Background(), "alice"); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	// Only bob changed tier; carol stayed put.
	if len(observer.observed) != 1 {
		t.Fatalf("expected one observation, got %d", len(observer.observed))
	}
	obs := observer.observed[0]
	if obs.target != "bob" || obs.oldTier != banibs.TierPeoples || obs.newTier != banibs.TierOthers {
		t.Fatalf("unexpected observation: %+v", obs)
	}
}

func TestRefreshAll(t *testing.T) {
	relationships := &mockRelationshipRepo{relationships: map[string][]domain.Relationship{
		"alice": {{Owner: "alice", Target: "bob", Tier: banibs.TierPeoples, Status: domain.RelationshipStatusActive}},
		"bob":   {{Owner: "bob", Target: "alice", Tier: banibs.TierPeoples, Status: domain.RelationshipStatusActive}},
	}}
	edges := &mockEdgeRepo{}
	uc := NewGraphUsecase(relationships, edges, banibs.DefaultReachWeights, nil, domain.Config{RefreshParallelism: 2})

	report, err := uc.RefreshAll(context.Background())
	if err != nil {
		t.Fatalf("refresh all failed: %v", err)
	}
	if report.TotalUsers != 2 || report.TotalEdges != 2 || report.Errors != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestTierOfDefaultsToOthers(t *testing.T) {
	edges := &mockEdgeRepo{edges: map[string][]domain.TrustEdge{
		"alice": edgeSet("alice", map[string]banibs.Tier{"bob": banibs.TierCool}),
	}}
	uc := NewGraphUsecase(&mockRelationshipRepo{}, edges, banibs.DefaultReachWeights, nil, domain.Config{})

	tier, err := uc.TierOf(context.Background(), "alice", "bob")
	if err != nil || tier != banibs.TierCool {
		t.Fatalf("expected cool, got %v (%v)", tier, err)
	}

	tier, err = uc.TierOf(context.Background(), "alice", "stranger")
	if err != nil || tier != banibs.TierOthers {
		t.Fatalf("absent edge must default to others, got %v (%v)", tier, err)
	}
}

func TestMutualPeoples(t *testing.T) {
	edges := &mockEdgeRepo{edges: map[string][]domain.TrustEdge{
		"alice": edgeSet("alice", map[string]banibs.Tier{"bob": banibs.TierPeoples, "carol": banibs.TierPeoples}),
		"bob":   edgeSet("bob", map[string]banibs.Tier{"alice": banibs.TierPeoples}),
		"carol": edgeSet("carol", map[string]banibs.Tier{"alice": banibs.TierCool}),
	}}
	uc := NewGraphUsecase(&mockRelationshipRepo{}, edges, banibs.DefaultReachWeights, nil, domain.Config{})

	mutual, err := uc.MutualPeoples(context.Background(), "alice", "bob")
	if err != nil || !mutual {
		t.Fatalf("alice and bob are mutual peoples: %v (%v)", mutual, err)
	}

	// One-directional peoples is not mutual.
	mutual, err = uc.MutualPeoples(context.Background(), "alice", "carol")
	if err != nil || mutual {
		t.Fatalf("alice and carol must not be mutual: %v (%v)", mutual, err)
	}
}

func TestTraverseMultihop(t *testing.T) {
	edges := &mockEdgeRepo{edges: map[string][]domain.TrustEdge{
		"alice": edgeSet("alice", map[string]banibs.Tier{"bob": banibs.TierPeoples}),
		"bob":   edgeSet("bob", map[string]banibs.Tier{"carol": banibs.TierCool, "alice": banibs.TierPeoples}),
		"carol": edgeSet("carol", map[string]banibs.Tier{"dan": banibs.TierChill, "bob": banibs.TierPeoples}),
	}}
	uc := NewGraphUsecase(&mockRelationshipRepo{}, edges, banibs.DefaultReachWeights, nil, domain.Config{})

	layers, err := uc.TraverseMultihop(context.Background(), "alice", 3)
	if err != nil {
		t.Fatalf("traverse failed: %v", err)
	}
	if len(layers) != 3 {
		t.Fatalf("expected 3 layers, got %d", len(layers))
	}
	if len(layers[0].Edges) != 1 || layers[0].Edges[0].Target != "bob" {
		t.Fatalf("unexpected depth-1 layer: %+v", layers[0])
	}
	// alice is already visited, so bob's back-edge is excluded.
	if len(layers[1].Edges) != 1 || layers[1].Edges[0].Target != "carol" {
		t.Fatalf("unexpected depth-2 layer: %+v", layers[1])
	}
	if len(layers[2].Edges) != 1 || layers[2].Edges[0].Target != "dan" {
		t.Fatalf("unexpected depth-3 layer: %+v", layers[2])
	}
}

func TestTraverseMultihopClampsDepth(t *testing.T) {
	edges := &mockEdgeRepo{edges: map[string][]domain.TrustEdge{
		"alice": edgeSet("alice", map[string]banibs.Tier{"bob": banibs.TierPeoples}),
	}}
	uc := NewGraphUsecase(&mockRelationshipRepo{}, edges, banibs.DefaultReachWeights, nil, domain.Config{})

	layers, err := uc.TraverseMultihop(context.Background(), "alice", 10)
	if err != nil {
		t.Fatalf("traverse failed: %v", err)
	}
	if len(layers) > 3 {
		t.Fatalf("depth must be capped at 3, got %d layers", len(layers))
	}
}

func TestPeoplesOfPeoples(t *testing.T) {
	edges := &mockEdgeRepo{edges: map[string][]domain.TrustEdge{
		"alice": edgeSet("alice", map[string]banibs.Tier{
			"bob":   banibs.TierPeoples,
			"carol": banibs.TierPeoples,
			"eve":   banibs.TierCool,
		}),
		"bob":   edgeSet("bob", map[string]banibs.Tier{"dan": banibs.TierPeoples, "alice": banibs.TierPeoples}),
		"carol": edgeSet("carol", map[string]banibs.Tier{"dan": banibs.TierPeoples, "frank": banibs.TierPeoples}),
		// eve's peoples must not leak in through a cool edge.
		"eve": edgeSet("eve", map[string]banibs.Tier{"mallory": banibs.TierPeoples}),
	}}
	uc := NewGraphUsecase(&mockRelationshipRepo{}, edges, banibs.DefaultReachWeights, nil, domain.Config{})

	result, err := uc.PeoplesOfPeoples(context.Background(), "alice")
	if err != nil {
		t.Fatalf("peoples of peoples failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected dan and frank, got %+v", result)
	}
	// dan is reachable through both bob and carol, so he sorts first.
	if result[0].ID != "dan" || result[0].MutualCount != 2 {
		t.Fatalf("unexpected first entry: %+v", result[0])
	}
	if result[1].ID != "frank" || result[1].MutualCount != 1 {
		t.Fatalf("unexpected second entry: %+v", result[1])
	}
}

func TestSharedCircle(t *testing.T) {
	edges := &mockEdgeRepo{edges: map[string][]domain.TrustEdge{
		"alice": edgeSet("alice", map[string]banibs.Tier{
			"carol": banibs.TierPeoples,
			"dan":   banibs.TierCool,
			"eve":   banibs.TierAlright,
			// chill edges do not participate in circle comparison
			"frank": banibs.TierChill,
		}),
		"bob": edgeSet("bob", map[string]banibs.Tier{
			"carol": banibs.TierPeoples,
			"dan":   banibs.TierCool,
			"grace": banibs.TierAlright,
		}),
	}}
	uc := NewGraphUsecase(&mockRelationshipRepo{}, edges, banibs.DefaultReachWeights, nil, domain.Config{})

	overlap, err := uc.SharedCircle(context.Background(), "alice", "bob")
	if err != nil {
		t.Fatalf("shared circle failed: %v", err)
	}
	if len(overlap.Peoples) != 1 || overlap.Peoples[0] != "carol" {
		t.Fatalf("unexpected peoples overlap: %+v", overlap.Peoples)
	}
	if len(overlap.Cool) != 1 || overlap.Cool[0] != "dan" {
		t.Fatalf("unexpected cool overlap: %+v", overlap.Cool)
	}
	if len(overlap.Alright) != 0 {
		t.Fatalf("unexpected alright overlap: %+v", overlap.Alright)
	}
	// union=2, avg circle size=(3+3)/2=3, score=0.667
	if overlap.Score != 0.667 {
		t.Fatalf("unexpected score: %v", overlap.Score)
	}
}

func TestSharedCircleEmptySide(t *testing.T) {
	edges := &mockEdgeRepo{edges: map[string][]domain.TrustEdge{
		"alice": edgeSet("alice", map[string]banibs.Tier{"carol": banibs.TierPeoples}),
	}}
	uc := NewGraphUsecase(&mockRelationshipRepo{}, edges, banibs.DefaultReachWeights, nil, domain.Config{})

	overlap, err := uc.SharedCircle(context.Background(), "alice", "nobody")
	if err != nil {
		t.Fatalf("shared circle failed: %v", err)
	}
	if overlap.Score != 0 {
		t.Fatalf("score must be zero when one side has no edges, got %v", overlap.Score)
	}
}

func TestReachScore(t *testing.T) {
	edges := &mockEdgeRepo{edges: map[string][]domain.TrustEdge{
		"alice": edgeSet("alice", map[string]banibs.Tier{
			"bob":     banibs.TierPeoples, // 100
			"carol":   banibs.TierCool,    // 75
			"mallory": banibs.TierBlocked, // -100
		}),
		"bob": edgeSet("bob", map[string]banibs.Tier{"dan": banibs.TierPeoples}),
	}}
	uc := NewGraphUsecase(&mockRelationshipRepo{}, edges, banibs.DefaultReachWeights, nil, domain.Config{})

	report, err := uc.ReachScore(context.Background(), "alice")
	if err != nil {
		t.Fatalf("reach score failed: %v", err)
	}
	if report.EdgeSum != 75 {
		t.Fatalf("unexpected edge sum: %v", report.EdgeSum)
	}
	// dan is one peoples-of-peoples node worth a 10 point bonus.
	if report.PoPBonus != 10 {
		t.Fatalf("unexpected pop bonus: %v", report.PoPBonus)
	}
	if report.Score != 85 {
		t.Fatalf("unexpected total: %v", report.Score)
	}
	if report.TierCounts[banibs.TierBlocked] != 1 {
		t.Fatalf("blocked edge must appear in the breakdown: %+v", report.TierCounts)
	}
}
