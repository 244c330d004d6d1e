package policy

import (
	"testing"

	"github.com/banibsnetworks-source/banibs-production-sub001"
)

func TestAnomalyEvaluate(t *testing.T) {
	p := DefaultAnomalyPolicy()

	// Adjacent moves are routine.
	if _, flagged := p.Evaluate("alice", "bob", banibs.TierCool, banibs.TierChill); flagged {
		t.Fatalf("single-step change must not be flagged")
	}
	if _, flagged := p.Evaluate("alice", "bob", banibs.TierPeoples, banibs.TierChill); flagged {
		t.Fatalf("change at the threshold must not be flagged")
	}

	// A jump wider than the threshold is flagged.
	anomaly, flagged := p.Evaluate("alice", "bob", banibs.TierPeoples, banibs.TierOthers)
	if !flagged {
		t.Fatalf("expected a wide jump to be flagged")
	}
	if anomaly.Distance != 4 {
		t.Fatalf("unexpected distance: %d", anomaly.Distance)
	}
	if anomaly.Owner != "alice" || anomaly.Target != "bob" {
		t.Fatalf("unexpected anomaly subject: %+v", anomaly)
	}
}

func TestAnomalyBlockedIsMaximal(t *testing.T) {
	p := DefaultAnomalyPolicy()

	if _, flagged := p.Evaluate("alice", "bob", banibs.TierOthersSafeMode, banibs.TierBlocked); !flagged {
		t.Fatalf("transition into blocked must be maximal distance")
	}
	if _, flagged := p.Evaluate("alice", "bob", banibs.TierBlocked, banibs.TierBlocked); flagged {
		t.Fatalf("no change means no anomaly, even within blocked")
	}
}

func TestAnomalyThresholdConfigurable(t *testing.T) {
	lenient := AnomalyPolicy{Threshold: 5}
	if _, flagged := lenient.Evaluate("alice", "bob", banibs.TierPeoples, banibs.TierOthersSafeMode); flagged {
		t.Fatalf("distance 5 must pass under a threshold of 5")
	}

	strict := AnomalyPolicy{Threshold: 0}
	if _, flagged := strict.Evaluate("alice", "bob", banibs.TierPeoples, banibs.TierCool); !flagged {
		t.Fatalf("any change must be flagged under a zero threshold")
	}
}
