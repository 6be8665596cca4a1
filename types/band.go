package types

// BandKind distinguishes the threshold-band requests a consumer can make
// of the sensor. The sysfs protocol overloads three magic pairs onto
// (lower, upper); keeping them as an enum avoids colliding with a
// legitimate band of the same bounds.
type BandKind int

const (
	// BandExplicit arms the given (Lower, Upper) window.
	BandExplicit BandKind = iota
	// BandForceInterrupt guarantees the very next reading fires.
	BandForceInterrupt
	// BandRestoreCached re-arms the last cached non-degenerate band,
	// or forces an interrupt if none was ever cached.
	BandRestoreCached
	// BandDisable stops sensor-driven interrupts entirely.
	BandDisable
)

// BandRequest is one threshold-band request.
type BandRequest struct {
	Kind  BandKind
	Lower int
	Upper int
}

// Explicit builds an explicit band request.
func Explicit(lower, upper int) BandRequest {
	return BandRequest{Kind: BandExplicit, Lower: lower, Upper: upper}
}

// ForceInterrupt builds a force-interrupt request.
func ForceInterrupt() BandRequest { return BandRequest{Kind: BandForceInterrupt} }

// RestoreCached builds a restore-from-cache request.
func RestoreCached() BandRequest { return BandRequest{Kind: BandRestoreCached} }

// DisableBand builds a request that suppresses interrupts.
func DisableBand() BandRequest { return BandRequest{Kind: BandDisable} }
