package banibs

// Tier is the closed trust classification of a directed relationship.
// The set is fixed: no tier value originates anywhere outside this file.
type Tier int

const (
	TierUnknown Tier = iota
	TierPeoples
	TierCool
	TierChill
	TierAlright
	TierOthers
	TierOthersSafeMode
	// TierBlocked is a sink value, not part of the trust ordering.
	// It is always the most restrictive answer.
	TierBlocked
)

// TierValues lists every valid tier, most trusted first. BLOCKED comes
// last because it sits outside the ordering.
var TierValues = []Tier{
	TierPeoples,
	TierCool,
	TierChill,
	TierAlright,
	TierOthers,
	TierOthersSafeMode,
	TierBlocked,
}

func ParseTier(s string) Tier {
	switch s {
	case "peoples":
		return TierPeoples
	case "cool":
		return TierCool
	case "chill":
		return TierChill
	case "alright":
		return TierAlright
	case "others":
		return TierOthers
	case "others_safe_mode":
		return TierOthersSafeMode
	case "blocked":
		return TierBlocked
	default:
		return TierUnknown
	}
}

func (t Tier) String() string {
	switch t {
	case TierPeoples:
		return "peoples"
	case TierCool:
		return "cool"
	case TierChill:
		return "chill"
	case TierAlright:
		return "alright"
	case TierOthers:
		return "others"
	case TierOthersSafeMode:
		return "others_safe_mode"
	case TierBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Valid reports whether t is a member of the closed tier set.
func (t Tier) Valid() bool {
	switch t {
	case TierPeoples, TierCool, TierChill, TierAlright, TierOthers, TierOthersSafeMode, TierBlocked:
		return true
	default:
		return false
	}
}

// Rank returns the ordinal position within the trust ordering, 0 being
// the most trusted. BLOCKED and unknown values are outside the ordering
// and report ok=false.
func (t Tier) Rank() (int, bool) {
	switch t {
	case TierPeoples:
		return 0, true
	case TierCool:
		return 1, true
	case TierChill:
		return 2, true
	case TierAlright:
		return 3, true
	case TierOthers:
		return 4, true
	case TierOthersSafeMode:
		return 5, true
	default:
		return 0, false
	}
}

// AtLeast reports whether t is ranked at or above other in the trust
// ordering. BLOCKED or unrecognized values never satisfy AtLeast.
func (t Tier) AtLeast(other Tier) bool {
	tr, ok := t.Rank()
	if !ok {
		return false
	}
	or, ok := other.Rank()
	if !ok {
		return false
	}
	return tr <= or
}

// maxTierDistance is one past the widest possible gap within the
// ordering, used for BLOCKED and unrecognized values.
const maxTierDistance = 6

// TierDistance is the ordinal distance between two tiers. A transition
// into or out of BLOCKED (or any unrecognized value) counts as the
// maximal distance.
func TierDistance(a, b Tier) int {
	ar, aok := a.Rank()
	br, bok := b.Rank()
	if !aok || !bok {
		if a == b {
			return 0
		}
		return maxTierDistance
	}
	if ar > br {
		return ar - br
	}
	return br - ar
}

// MarshalJSON serializes a tier as its string form.
func (t Tier) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *Tier) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	*t = ParseTier(s)
	return nil
}
