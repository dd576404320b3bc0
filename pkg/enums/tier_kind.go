package enums

import "fmt"

// TierKind distinguishes regular ticket tiers from promotional bundles.
// Bundles represent N effective tickets sold as a single discounted unit;
// the flag is explicit on the tier definition rather than inferred from
// its name or price.
type TierKind string

const (
	TierKindRegular TierKind = "regular"
	TierKindBundle  TierKind = "bundle"
)

var validTierKinds = []TierKind{
	TierKindRegular,
	TierKindBundle,
}

// String implements fmt.Stringer.
func (t TierKind) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TierKind.
func (t TierKind) IsValid() bool {
	for _, candidate := range validTierKinds {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTierKind converts raw input into a TierKind.
func ParseTierKind(value string) (TierKind, error) {
	for _, candidate := range validTierKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid tier kind %q", value)
}
