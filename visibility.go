package banibs

// ContentVisibility is the audience level attached to a content item.
// Allowed-tier sets are nested: Public ⊇ Cool ⊇ Chill ⊇ Alright ⊇ PeoplesOnly.
type ContentVisibility int

const (
	VisibilityUnknown ContentVisibility = iota
	VisibilityPublic
	VisibilityCool
	VisibilityChill
	VisibilityAlright
	VisibilityPeoplesOnly
)

// VisibilityValues lists every valid level, broadest audience first.
var VisibilityValues = []ContentVisibility{
	VisibilityPublic,
	VisibilityCool,
	VisibilityChill,
	VisibilityAlright,
	VisibilityPeoplesOnly,
}

func ParseVisibility(s string) ContentVisibility {
	switch s {
	case "public":
		return VisibilityPublic
	case "cool":
		return VisibilityCool
	case "chill":
		return VisibilityChill
	case "alright":
		return VisibilityAlright
	case "peoples_only":
		return VisibilityPeoplesOnly
	default:
		return VisibilityUnknown
	}
}

func (v ContentVisibility) String() string {
	switch v {
	case VisibilityPublic:
		return "public"
	case VisibilityCool:
		return "cool"
	case VisibilityChill:
		return "chill"
	case VisibilityAlright:
		return "alright"
	case VisibilityPeoplesOnly:
		return "peoples_only"
	default:
		return "unknown"
	}
}

func (v ContentVisibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityCool, VisibilityChill, VisibilityAlright, VisibilityPeoplesOnly:
		return true
	default:
		return false
	}
}

func (v ContentVisibility) MarshalJSON() ([]byte, error) {
	return []byte(`"` + v.String() + `"`), nil
}

func (v *ContentVisibility) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	*v = ParseVisibility(s)
	return nil
}
