package policy

import (
	"github.com/banibsnetworks-source/banibs-production-sub001"
)

// Override identifies which step of the precedence chain produced a
// decision. Zero value means no override applied (tier default or
// fail-closed).
type Override int

const (
	OverrideNone Override = iota
	OverrideSelf
	OverrideMutualPeoples
	OverrideAccessList
	OverrideCircleException
)

func (o Override) String() string {
	switch o {
	case OverrideSelf:
		return "self"
	case OverrideMutualPeoples:
		return "mutual_peoples"
	case OverrideAccessList:
		return "access_list"
	case OverrideCircleException:
		return "circle_exception"
	default:
		return "none"
	}
}

func (o Override) MarshalJSON() ([]byte, error) {
	return []byte(`"` + o.String() + `"`), nil
}

func (o *Override) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"self"`:
		*o = OverrideSelf
	case `"mutual_peoples"`:
		*o = OverrideMutualPeoples
	case `"access_list"`:
		*o = OverrideAccessList
	case `"circle_exception"`:
		*o = OverrideCircleException
	default:
		*o = OverrideNone
	}
	return nil
}

// ModerationLevel describes what review, if any, gates the action's
// result becoming visible.
type ModerationLevel int

const (
	ModerationNone ModerationLevel = iota
	ModerationSpamFilter
	ModerationManualApproval
)

func (m ModerationLevel) String() string {
	switch m {
	case ModerationSpamFilter:
		return "spam_filter"
	case ModerationManualApproval:
		return "manual_approval"
	default:
		return "none"
	}
}

func (m ModerationLevel) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

func (m *ModerationLevel) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"spam_filter"`:
		*m = ModerationSpamFilter
	case `"manual_approval"`:
		*m = ModerationManualApproval
	default:
		*m = ModerationNone
	}
	return nil
}

// Decision is the structured result of every resolver function.
type Decision struct {
	Allowed            bool            `json:"allowed"`
	RequiresApproval   bool            `json:"requiresApproval"`
	ImmediatelyVisible bool            `json:"immediatelyVisible"`
	Moderation         ModerationLevel `json:"moderation"`
	OverrideApplied    Override        `json:"overrideApplied"`
	Reason             string          `json:"reason"`
}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

func allow(reason string) Decision {
	return Decision{
		Allowed:            true,
		ImmediatelyVisible: true,
		Reason:             reason,
	}
}

// AccessEntry is an explicit per-person access-list row consulted by
// the room-entry chain. It wins over tier defaults, loses to the
// mutual-PEOPLES override.
type AccessEntry int

const (
	AccessUnset AccessEntry = iota
	AccessNeverAllow
	AccessDirectEntry
	AccessMustKnock
)

func ParseAccessEntry(s string) AccessEntry {
	switch s {
	case "never_allow":
		return AccessNeverAllow
	case "direct_entry":
		return AccessDirectEntry
	case "must_knock":
		return AccessMustKnock
	default:
		return AccessUnset
	}
}

func (a AccessEntry) String() string {
	switch a {
	case AccessNeverAllow:
		return "never_allow"
	case AccessDirectEntry:
		return "direct_entry"
	case AccessMustKnock:
		return "must_knock"
	default:
		return "unset"
	}
}

// DoorState gates a room before any per-visitor evaluation happens.
type DoorState int

const (
	DoorOpen DoorState = iota
	DoorLocked
	DoorDND
)

func ParseDoorState(s string) DoorState {
	switch s {
	case "locked":
		return DoorLocked
	case "dnd":
		return DoorDND
	default:
		return DoorOpen
	}
}

func (d DoorState) String() string {
	switch d {
	case DoorLocked:
		return "locked"
	case DoorDND:
		return "dnd"
	default:
		return "open"
	}
}

// Context carries the non-tier inputs of the precedence chain. Tier
// lookups happen upstream; the resolver itself performs no I/O.
type Context struct {
	Self          bool
	MutualPeoples bool
	AccessEntry   AccessEntry
	InCircle      bool
}

// ProfileFields is the per-field exposure map returned by
// ProfileVisibility.
type ProfileFields struct {
	Name        bool `json:"name"`
	Username    bool `json:"username"`
	Bio         bool `json:"bio"`
	Avatar      bool `json:"avatar"`
	ContactInfo bool `json:"contactInfo"`
	PeoplesList bool `json:"peoplesList"`
	FullProfile bool `json:"fullProfile"`
}

// visibilityFloor is the least trusted tier each visibility level
// admits. BLOCKED is rejected before this table is consulted;
// OTHERS_SAFE_MODE is admitted only at VisibilityPublic.
var visibilityFloor = map[banibs.ContentVisibility]banibs.Tier{
	banibs.VisibilityPublic:      banibs.TierOthers,
	banibs.VisibilityCool:        banibs.TierCool,
	banibs.VisibilityChill:       banibs.TierChill,
	banibs.VisibilityAlright:     banibs.TierAlright,
	banibs.VisibilityPeoplesOnly: banibs.TierPeoples,
}
