package sensor

import (
	"fmt"
	"os"

	"luxd/types"
)

// Armer programs the hardware interrupt window. The last explicit band
// is cached so a consumer can restore it after display blanking without
// re-deriving it; force-interrupt and disable writes bypass the cache
// on purpose, they are transient states and must not be restored.
type Armer struct {
	dev *Device

	cachedLower int
	cachedUpper int
	hasCached   bool
}

// NewArmer wraps a probed device. Arming a device without threshold
// support is a silent no-op so callers need not special-case it.
func NewArmer(dev *Device) *Armer {
	return &Armer{dev: dev}
}

// Armed reports whether any explicit band has been programmed yet.
func (a *Armer) Armed() bool { return a.hasCached }

// Arm resolves a band request to a concrete window and writes it.
func (a *Armer) Arm(req types.BandRequest) error {
	if !a.dev.SupportsThresholds() {
		return nil
	}

	var lower, upper int
	switch req.Kind {
	case types.BandForceInterrupt:
		// A zero-width window at zero trips an interrupt on the next
		// reading regardless of light level.
		lower, upper = 0, 0

	case types.BandRestoreCached:
		if !a.hasCached {
			lower, upper = 0, 0
		} else {
			lower, upper = a.cachedLower, a.cachedUpper
		}

	case types.BandDisable:
		// The full range can never be left, silencing the sensor.
		lower, upper = 0, 65535

	case types.BandExplicit:
		lower, upper = req.Lower, req.Upper
		if lower > upper || (lower == 0 && upper == 0) {
			lower, upper = 0, 0
		} else if lower == 0 && upper == 65535 {
			// Full range arrived as an explicit band; treat it as
			// disable and keep it out of the cache.
		} else {
			a.cachedLower, a.cachedUpper = lower, upper
			a.hasCached = true
		}

	default:
		return fmt.Errorf("sensor: unknown band request kind %d", req.Kind)
	}

	data := fmt.Sprintf("%d %d", lower, upper)
	if err := os.WriteFile(a.dev.threshold, []byte(data), 0o644); err != nil {
		return fmt.Errorf("sensor: write thresholds: %w", err)
	}
	return nil
}
