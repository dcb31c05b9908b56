package enums

import "fmt"

// Carrier identifies a shipping method offered at checkout.
type Carrier string

const (
	CarrierInPostPaczkomat Carrier = "inpost_paczkomat"
	CarrierInPostCourier   Carrier = "inpost_courier"
	CarrierDPDCourier      Carrier = "dpd_courier"
	// CarrierGabaryt is the forced oversized-shipment carrier.
	CarrierGabaryt Carrier = "gabaryt_shipment"
)

var validCarriers = []Carrier{
	CarrierInPostPaczkomat,
	CarrierInPostCourier,
	CarrierDPDCourier,
	CarrierGabaryt,
}

// String implements fmt.Stringer.
func (c Carrier) String() string {
	return string(c)
}

// IsValid reports whether the value is a known Carrier.
func (c Carrier) IsValid() bool {
	for _, candidate := range validCarriers {
		if candidate == c {
			return true
		}
	}
	return false
}

// IsInPost reports whether the carrier belongs to the InPost network.
func (c Carrier) IsInPost() bool {
	return c == CarrierInPostPaczkomat || c == CarrierInPostCourier
}

// ParseCarrier converts raw input into a Carrier.
func ParseCarrier(value string) (Carrier, error) {
	for _, candidate := range validCarriers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid carrier %q", value)
}
