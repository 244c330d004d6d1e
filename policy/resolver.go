package policy

import (
	"github.com/banibsnetworks-source/banibs-production-sub001"
)

// Resolver is the pure decision layer. Every domain function walks the
// same precedence chain, highest priority first:
//
//  1. self-action
//  2. mutual-PEOPLES override
//  3. explicit access-list entry (where the domain has one)
//  4. circle/group exception (where applicable)
//  5. tier default table for the domain
//  6. fail-closed deny
//
// The resolver performs no I/O and holds no mutable state; it is safe
// to share across goroutines.
type Resolver struct {
	profile map[banibs.Tier]ProfileFields
}

func NewResolver() *Resolver {
	return &Resolver{
		profile: defaultProfileTable(),
	}
}

// overrides handles the two chain steps shared by every domain: self
// and mutual PEOPLES. Returns ok=false when neither applies.
func (r *Resolver) overrides(pctx Context) (Decision, bool) {
	if pctx.Self {
		return Decision{
			Allowed:            true,
			ImmediatelyVisible: true,
			OverrideApplied:    OverrideSelf,
			Reason:             "self action",
		}, true
	}
	if pctx.MutualPeoples {
		return Decision{
			Allowed:            true,
			ImmediatelyVisible: true,
			OverrideApplied:    OverrideMutualPeoples,
			Reason:             "mutual peoples override",
		}, true
	}
	return Decision{}, false
}

// CanSeeContent decides whether a viewer at the given tier may see a
// content item at the given visibility level.
func (r *Resolver) CanSeeContent(viewer banibs.Tier, visibility banibs.ContentVisibility, pctx Context) Decision {
	if d, ok := r.overrides(pctx); ok {
		return d
	}

	if viewer == banibs.TierBlocked {
		return deny("viewer is blocked")
	}
	if viewer == banibs.TierOthersSafeMode {
		if visibility == banibs.VisibilityPublic {
			return allow("safe mode viewer, public content")
		}
		return deny("safe mode viewer restricted to public content")
	}

	floor, ok := visibilityFloor[visibility]
	if !ok {
		return deny("unrecognized visibility level")
	}
	if viewer.AtLeast(floor) {
		return allow("tier admitted by visibility level")
	}
	return deny("tier below visibility level")
}

// CanSendDM decides whether a sender at the given tier can open or
// continue a direct-message thread. existingThread means a previously
// approved thread exists; continuation never re-requires approval even
// if the tier has since degraded.
func (r *Resolver) CanSendDM(sender banibs.Tier, existingThread bool, pctx Context) Decision {
	if d, ok := r.overrides(pctx); ok {
		return d
	}

	switch sender {
	case banibs.TierPeoples:
		return allow("peoples sender")
	case banibs.TierCool:
		if existingThread {
			return allow("cool sender, approved thread exists")
		}
		return Decision{
			Allowed:          true,
			RequiresApproval: true,
			Reason:           "cool sender, first contact requires approval",
		}
	case banibs.TierChill:
		if existingThread {
			return allow("chill sender, approved thread exists")
		}
		return Decision{
			Allowed:          true,
			RequiresApproval: true,
			Reason:           "chill sender requires approval",
		}
	case banibs.TierAlright, banibs.TierOthers, banibs.TierOthersSafeMode, banibs.TierBlocked:
		return deny("tier not permitted to send direct messages")
	default:
		return deny("unrecognized tier")
	}
}

// ProfileVisibility returns the per-field exposure map for a viewer.
// OTHERS_SAFE_MODE and BLOCKED expose nothing; the client renders a
// limited-profile placeholder.
func (r *Resolver) ProfileVisibility(viewer banibs.Tier, pctx Context) ProfileFields {
	if pctx.Self || pctx.MutualPeoples {
		return r.profile[banibs.TierPeoples]
	}
	return r.profile[viewer]
}

func defaultProfileTable() map[banibs.Tier]ProfileFields {
	return map[banibs.Tier]ProfileFields{
		banibs.TierPeoples: {
			Name: true, Username: true, Bio: true, Avatar: true,
			ContactInfo: true, PeoplesList: true, FullProfile: true,
		},
		banibs.TierCool: {
			Name: true, Username: true, Bio: true, Avatar: true,
			PeoplesList: true,
		},
		banibs.TierChill: {
			Name: true, Username: true, Bio: true, Avatar: true,
		},
		banibs.TierAlright: {
			Name: true, Username: true, Avatar: true,
		},
		banibs.TierOthers: {
			Name: true, Username: true,
		},
		banibs.TierOthersSafeMode: {},
		banibs.TierBlocked:        {},
	}
}

// CanComment decides comment placement on a post. Pass pctx.Self when
// the commenter owns the post. A commenter must be able to see the
// post before any tier rule applies.
func (r *Resolver) CanComment(commenter banibs.Tier, postVisibility banibs.ContentVisibility, pctx Context) Decision {
	if d, ok := r.overrides(pctx); ok {
		return d
	}

	see := r.CanSeeContent(commenter, postVisibility, Context{})
	if !see.Allowed {
		return deny("commenter cannot view post")
	}

	switch commenter {
	case banibs.TierPeoples:
		return allow("peoples commenter")
	case banibs.TierCool:
		d := allow("cool commenter, automated spam filtering only")
		d.Moderation = ModerationSpamFilter
		return d
	case banibs.TierChill:
		// Hidden until approved. No pending indicator is shown.
		return Decision{
			Allowed:          true,
			RequiresApproval: true,
			Moderation:       ModerationManualApproval,
			Reason:           "chill commenter, hidden until approved",
		}
	case banibs.TierAlright, banibs.TierOthers:
		if postVisibility != banibs.VisibilityPublic {
			return deny("tier may comment on public posts only")
		}
		return Decision{
			Allowed:          true,
			RequiresApproval: true,
			Moderation:       ModerationManualApproval,
			Reason:           "low-trust commenter, hidden until manually approved",
		}
	case banibs.TierOthersSafeMode, banibs.TierBlocked:
		return deny("tier not permitted to comment")
	default:
		return deny("unrecognized tier")
	}
}

// CanMention decides whether a mention is permitted and whether its
// notification fires immediately. ImmediatelyVisible doubles as the
// notify-now signal: a queued mention sends nothing until approved.
func (r *Resolver) CanMention(tier banibs.Tier, pctx Context) Decision {
	if d, ok := r.overrides(pctx); ok {
		return d
	}

	switch tier {
	case banibs.TierPeoples, banibs.TierCool:
		return allow("mention notifies immediately")
	case banibs.TierChill:
		return Decision{
			Allowed:          true,
			RequiresApproval: true,
			Moderation:       ModerationManualApproval,
			Reason:           "mention queued for approval, no notification until approved",
		}
	case banibs.TierAlright, banibs.TierOthers, banibs.TierOthersSafeMode, banibs.TierBlocked:
		return deny("tier not permitted to mention")
	default:
		return deny("unrecognized tier")
	}
}

// RoomDecision extends Decision with the knock requirement of the
// room-entry domain.
type RoomDecision struct {
	Decision
	MustKnock bool `json:"mustKnock"`
}

// RoomEntry evaluates the door-state-gated variant of the chain. A
// locked or do-not-disturb door denies every visitor; BLOCKED and
// OTHERS_SAFE_MODE are denied before the access list is consulted.
func (r *Resolver) RoomEntry(door DoorState, visitor banibs.Tier, pctx Context) RoomDecision {
	if pctx.Self {
		return RoomDecision{Decision: Decision{
			Allowed:            true,
			ImmediatelyVisible: true,
			OverrideApplied:    OverrideSelf,
			Reason:             "own room",
		}}
	}

	if door == DoorLocked || door == DoorDND {
		return RoomDecision{Decision: deny("door is " + door.String())}
	}

	if visitor == banibs.TierBlocked || visitor == banibs.TierOthersSafeMode {
		return RoomDecision{Decision: deny("tier denied before access list")}
	}

	if pctx.MutualPeoples {
		return RoomDecision{Decision: Decision{
			Allowed:            true,
			ImmediatelyVisible: true,
			OverrideApplied:    OverrideMutualPeoples,
			Reason:             "mutual peoples override",
		}}
	}

	switch pctx.AccessEntry {
	case AccessNeverAllow:
		d := deny("access list: never allow")
		d.OverrideApplied = OverrideAccessList
		return RoomDecision{Decision: d}
	case AccessDirectEntry:
		d := allow("access list: direct entry")
		d.OverrideApplied = OverrideAccessList
		return RoomDecision{Decision: d}
	case AccessMustKnock:
		d := allow("access list: must request entry")
		d.OverrideApplied = OverrideAccessList
		return RoomDecision{Decision: d, MustKnock: true}
	}

	if pctx.InCircle {
		d := allow("circle membership exception")
		d.OverrideApplied = OverrideCircleException
		return RoomDecision{Decision: d}
	}

	switch visitor {
	case banibs.TierPeoples, banibs.TierCool:
		return RoomDecision{Decision: allow("trusted tier enters directly")}
	case banibs.TierChill, banibs.TierAlright, banibs.TierOthers:
		return RoomDecision{Decision: allow("tier must request entry"), MustKnock: true}
	default:
		return RoomDecision{Decision: deny("unrecognized tier")}
	}
}
