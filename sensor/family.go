// Package sensor adapts the supported ambient-light sensor families
// behind one device handle: probing, raw record decoding, calibration
// and the hardware threshold window.
package sensor

import "math"

// LuxSaturated is reported when the sensor flags its reading as
// saturated. It is above any real reading, so profile evaluation lands
// in the top bucket.
const LuxSaturated = math.MaxInt32

// Family identifies a supported ALS chip.
type Family int

const (
	FamilyNone Family = iota
	FamilyAPDS990X
	FamilyBH1770
	FamilyTSL2563
	FamilyTSL2562
)

var familyNames = map[Family]string{
	FamilyNone:     "none",
	FamilyAPDS990X: "apds990x",
	FamilyBH1770:   "bh1770",
	FamilyTSL2563:  "tsl2563",
	FamilyTSL2562:  "tsl2562",
}

func (f Family) String() string {
	if s, ok := familyNames[f]; ok {
		return s
	}
	return "unknown"
}

// EventDriven reports whether the family delivers readings as binary
// records on a readable device node. The remaining families expose a
// decimal lux attribute that must be polled.
func (f Family) EventDriven() bool {
	return f == FamilyAPDS990X || f == FamilyBH1770
}

// Smoothed reports whether readings need software median filtering.
// The event-driven chips filter in hardware.
func (f Family) Smoothed() bool {
	return f == FamilyTSL2563 || f == FamilyTSL2562
}

// RecordSize is the fixed record length for event-driven families, 0
// otherwise.
func (f Family) RecordSize() int {
	switch f {
	case FamilyAPDS990X:
		return apdsRecordSize
	case FamilyBH1770:
		return bhRecordSize
	default:
		return 0
	}
}
