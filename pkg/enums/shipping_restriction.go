package enums

import "fmt"

// ShippingRestriction limits the carriers a product may ship with.
type ShippingRestriction string

const (
	ShippingRestrictionNone        ShippingRestriction = "none"
	ShippingRestrictionCourierOnly ShippingRestriction = "courier_only"
	ShippingRestrictionInPostOnly  ShippingRestriction = "inpost_only"
)

var validShippingRestrictions = []ShippingRestriction{
	ShippingRestrictionNone,
	ShippingRestrictionCourierOnly,
	ShippingRestrictionInPostOnly,
}

// String implements fmt.Stringer.
func (r ShippingRestriction) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ShippingRestriction.
func (r ShippingRestriction) IsValid() bool {
	for _, candidate := range validShippingRestrictions {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseShippingRestriction converts raw input into a ShippingRestriction.
func ParseShippingRestriction(value string) (ShippingRestriction, error) {
	for _, candidate := range validShippingRestrictions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid shipping restriction %q", value)
}
