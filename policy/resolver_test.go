package policy

import (
	"testing"

	"github.com/banibsnetworks-source/banibs-production-sub001"
)

func TestCanSeeContentTierFloor(t *testing.T) {
	r := NewResolver()

	if d := r.CanSeeContent(banibs.TierOthers, banibs.VisibilityPublic, Context{}); !d.Allowed {
		t.Fatalf("others must see public content: %s", d.Reason)
	}
	if d := r.CanSeeContent(banibs.TierOthers, banibs.VisibilityCool, Context{}); d.Allowed {
		t.Fatalf("others must not see cool content")
	}
	if d := r.CanSeeContent(banibs.TierCool, banibs.VisibilityCool, Context{}); !d.Allowed {
		t.Fatalf("cool must see cool content: %s", d.Reason)
	}
	if d := r.CanSeeContent(banibs.TierCool, banibs.VisibilityPeoplesOnly, Context{}); d.Allowed {
		t.Fatalf("cool must not see peoples-only content")
	}
	if d := r.CanSeeContent(banibs.TierPeoples, banibs.VisibilityPeoplesOnly, Context{}); !d.Allowed {
		t.Fatalf("peoples must see peoples-only content: %s", d.Reason)
	}
}

func TestCanSeeContentMonotonic(t *testing.T) {
	r := NewResolver()

	// A higher tier must never see less than a lower tier at any
	// visibility level.
	ordered := []banibs.Tier{
		banibs.TierPeoples,
		banibs.TierCool,
		banibs.TierChill,
		banibs.TierAlright,
		banibs.TierOthers,
	}
	for _, vis := range banibs.VisibilityValues {
		prevAllowed := true
		for _, tier := range ordered {
			d := r.CanSeeContent(tier, vis, Context{})
			if d.Allowed && !prevAllowed {
				t.Fatalf("visibility %v: %v allowed but a higher tier was denied", vis, tier)
			}
			prevAllowed = d.Allowed
		}
	}
}

func TestCanSeeContentBlockedAlwaysDenied(t *testing.T) {
	r := NewResolver()

	for _, vis := range banibs.VisibilityValues {
		if d := r.CanSeeContent(banibs.TierBlocked, vis, Context{}); d.Allowed {
			t.Fatalf("blocked viewer allowed at visibility %v", vis)
		}
	}
}

func TestCanSeeContentSafeModePublicOnly(t *testing.T) {
	r := NewResolver()

	if d := r.CanSeeContent(banibs.TierOthersSafeMode, banibs.VisibilityPublic, Context{}); !d.Allowed {
		t.Fatalf("safe mode must see public content: %s", d.Reason)
	}
	for _, vis := range []banibs.ContentVisibility{
		banibs.VisibilityCool,
		banibs.VisibilityChill,
		banibs.VisibilityAlright,
		banibs.VisibilityPeoplesOnly,
	} {
		if d := r.CanSeeContent(banibs.TierOthersSafeMode, vis, Context{}); d.Allowed {
			t.Fatalf("safe mode allowed at visibility %v", vis)
		}
	}
}

func TestMutualPeoplesOverridesTier(t *testing.T) {
	r := NewResolver()

	pctx := Context{MutualPeoples: true}
	d := r.CanSeeContent(banibs.TierOthers, banibs.VisibilityPeoplesOnly, pctx)
	if !d.Allowed || d.OverrideApplied != OverrideMutualPeoples {
		t.Fatalf("mutual peoples must override tier default: %+v", d)
	}

	dm := r.CanSendDM(banibs.TierOthers, false, pctx)
	if !dm.Allowed || dm.RequiresApproval {
		t.Fatalf("mutual peoples dm must be frictionless: %+v", dm)
	}
}

func TestSelfOverridesEverything(t *testing.T) {
	r := NewResolver()

	d := r.CanSeeContent(banibs.TierBlocked, banibs.VisibilityPeoplesOnly, Context{Self: true})
	if !d.Allowed || d.OverrideApplied != OverrideSelf {
		t.Fatalf("self must always be allowed: %+v", d)
	}
}

func TestCanSendDM(t *testing.T) {
	r := NewResolver()

	if d := r.CanSendDM(banibs.TierPeoples, false, Context{}); !d.Allowed || d.RequiresApproval {
		t.Fatalf("peoples dm must be frictionless: %+v", d)
	}

	cool := r.CanSendDM(banibs.TierCool, false, Context{})
	if !cool.Allowed || !cool.RequiresApproval {
		t.Fatalf("cool first contact must require approval: %+v", cool)
	}

	// Thread grandfathering: an approved thread stays open even after
	// the tier degrades.
	grandfathered := r.CanSendDM(banibs.TierChill, true, Context{})
	if !grandfathered.Allowed || grandfathered.RequiresApproval {
		t.Fatalf("existing thread must not re-require approval: %+v", grandfathered)
	}

	if d := r.CanSendDM(banibs.TierAlright, false, Context{}); d.Allowed {
		t.Fatalf("alright must not open dm threads")
	}
	if d := r.CanSendDM(banibs.TierBlocked, true, Context{}); d.Allowed {
		t.Fatalf("blocked must never dm, thread or not")
	}
}

func TestProfileVisibility(t *testing.T) {
	r := NewResolver()

	peoples := r.ProfileVisibility(banibs.TierPeoples, Context{})
	if !peoples.FullProfile || !peoples.ContactInfo {
		t.Fatalf("peoples must see the full profile: %+v", peoples)
	}

	cool := r.ProfileVisibility(banibs.TierCool, Context{})
	if cool.ContactInfo || cool.FullProfile {
		t.Fatalf("cool must not see contact info: %+v", cool)
	}
	if !cool.Bio || !cool.PeoplesList {
		t.Fatalf("cool must see bio and peoples list: %+v", cool)
	}

	others := r.ProfileVisibility(banibs.TierOthers, Context{})
	if !others.Name || !others.Username || others.Bio || others.Avatar {
		t.Fatalf("others sees name and username only: %+v", others)
	}

	blocked := r.ProfileVisibility(banibs.TierBlocked, Context{})
	if blocked != (ProfileFields{}) {
		t.Fatalf("blocked must see nothing: %+v", blocked)
	}

	mutual := r.ProfileVisibility(banibs.TierOthers, Context{MutualPeoples: true})
	if !mutual.FullProfile {
		t.Fatalf("mutual peoples must see the full profile: %+v", mutual)
	}
}

func TestCanComment(t *testing.T) {
	r := NewResolver()

	if d := r.CanComment(banibs.TierPeoples, banibs.VisibilityPublic, Context{}); !d.Allowed || d.Moderation != ModerationNone {
		t.Fatalf("peoples comment must be unmoderated: %+v", d)
	}

	cool := r.CanComment(banibs.TierCool, banibs.VisibilityPublic, Context{})
	if !cool.Allowed || cool.Moderation != ModerationSpamFilter {
		t.Fatalf("cool comment must pass through spam filtering: %+v", cool)
	}

	chill := r.CanComment(banibs.TierChill, banibs.VisibilityPublic, Context{})
	if !chill.Allowed || !chill.RequiresApproval || chill.Moderation != ModerationManualApproval {
		t.Fatalf("chill comment must be hidden until approved: %+v", chill)
	}

	// Low-trust commenters are limited to public posts.
	alright := r.CanComment(banibs.TierAlright, banibs.VisibilityPublic, Context{})
	if !alright.Allowed || !alright.RequiresApproval {
		t.Fatalf("alright comment on public must queue for approval: %+v", alright)
	}
	if d := r.CanComment(banibs.TierAlright, banibs.VisibilityAlright, Context{}); d.Allowed {
		t.Fatalf("alright may comment on public posts only")
	}

	// Cannot comment on what you cannot see.
	if d := r.CanComment(banibs.TierOthers, banibs.VisibilityChill, Context{}); d.Allowed {
		t.Fatalf("commenter below the visibility floor must be denied")
	}

	if d := r.CanComment(banibs.TierOthersSafeMode, banibs.VisibilityPublic, Context{}); d.Allowed {
		t.Fatalf("safe mode must not comment")
	}
	if d := r.CanComment(banibs.TierBlocked, banibs.VisibilityPublic, Context{}); d.Allowed {
		t.Fatalf("blocked must not comment")
	}
}

func TestCanMention(t *testing.T) {
	r := NewResolver()

	if d := r.CanMention(banibs.TierPeoples, Context{}); !d.Allowed || !d.ImmediatelyVisible {
		t.Fatalf("peoples mention must notify immediately: %+v", d)
	}
	if d := r.CanMention(banibs.TierCool, Context{}); !d.Allowed || !d.ImmediatelyVisible {
		t.Fatalf("cool mention must notify immediately: %+v", d)
	}

	chill := r.CanMention(banibs.TierChill, Context{})
	if !chill.Allowed || chill.ImmediatelyVisible || !chill.RequiresApproval {
		t.Fatalf("chill mention must queue silently: %+v", chill)
	}

	for _, tier := range []banibs.Tier{
		banibs.TierAlright,
		banibs.TierOthers,
		banibs.TierOthersSafeMode,
		banibs.TierBlocked,
	} {
		if d := r.CanMention(tier, Context{}); d.Allowed {
			t.Fatalf("%v mention must be denied", tier)
		}
	}
}

func TestRoomEntryChain(t *testing.T) {
	r := NewResolver()

	// Door state gates everything except self.
	if d := r.RoomEntry(DoorLocked, banibs.TierPeoples, Context{}); d.Allowed {
		t.Fatalf("locked door must deny peoples")
	}
	if d := r.RoomEntry(DoorDND, banibs.TierPeoples, Context{MutualPeoples: true}); d.Allowed {
		t.Fatalf("dnd door must deny even mutual peoples")
	}
	if d := r.RoomEntry(DoorLocked, banibs.TierBlocked, Context{Self: true}); !d.Allowed {
		t.Fatalf("owner must always enter their own room")
	}

	// Blocked and safe mode lose before the access list is read.
	if d := r.RoomEntry(DoorOpen, banibs.TierBlocked, Context{AccessEntry: AccessDirectEntry}); d.Allowed {
		t.Fatalf("blocked must be denied despite access list entry")
	}
	if d := r.RoomEntry(DoorOpen, banibs.TierOthersSafeMode, Context{AccessEntry: AccessDirectEntry}); d.Allowed {
		t.Fatalf("safe mode must be denied despite access list entry")
	}

	// Access list entries beat tier defaults.
	never := r.RoomEntry(DoorOpen, banibs.TierPeoples, Context{AccessEntry: AccessNeverAllow})
	if never.Allowed || never.OverrideApplied != OverrideAccessList {
		t.Fatalf("never-allow entry must deny a peoples visitor: %+v", never)
	}
	direct := r.RoomEntry(DoorOpen, banibs.TierOthers, Context{AccessEntry: AccessDirectEntry})
	if !direct.Allowed || direct.MustKnock {
		t.Fatalf("direct-entry visitor must walk in: %+v", direct)
	}
	knock := r.RoomEntry(DoorOpen, banibs.TierPeoples, Context{AccessEntry: AccessMustKnock})
	if !knock.Allowed || !knock.MustKnock {
		t.Fatalf("must-knock entry must require a knock even for peoples: %+v", knock)
	}

	// Mutual peoples beats the access list.
	mutual := r.RoomEntry(DoorOpen, banibs.TierOthers, Context{MutualPeoples: true, AccessEntry: AccessNeverAllow})
	if !mutual.Allowed {
		t.Fatalf("mutual peoples must override a never-allow entry: %+v", mutual)
	}

	// Circle exception fills the gap between the access list and tier
	// defaults.
	circle := r.RoomEntry(DoorOpen, banibs.TierOthers, Context{InCircle: true})
	if !circle.Allowed || circle.MustKnock || circle.OverrideApplied != OverrideCircleException {
		t.Fatalf("circle member must enter directly: %+v", circle)
	}

	// Tier defaults.
	if d := r.RoomEntry(DoorOpen, banibs.TierCool, Context{}); !d.Allowed || d.MustKnock {
		t.Fatalf("cool enters directly by default: %+v", d)
	}
	if d := r.RoomEntry(DoorOpen, banibs.TierChill, Context{}); !d.Allowed || !d.MustKnock {
		t.Fatalf("chill must knock by default: %+v", d)
	}
	if d := r.RoomEntry(DoorOpen, banibs.TierUnknown, Context{}); d.Allowed {
		t.Fatalf("unrecognized tier must fail closed")
	}
}
