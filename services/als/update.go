package als

import (
	"luxd/types"
)

// update is the common lux path for poll ticks, monitor records and the
// delayed step-down replay. noDelay marks a replay: the delay already
// elapsed, so a step-down applies immediately.
func (s *Service) update(lux int, noDelay bool) {
	filtered := s.medianMap(lux)

	// Identical readings need no work once the bands have been seeded.
	if filtered == s.lux && s.bandsSeeded {
		return
	}

	// A covered proximity sensor usually means the user's hand is over
	// the ALS too; do not chase that shadow.
	if s.pipes.Proximity != nil && s.pipes.Proximity.Cached() == types.CoverClosed {
		return
	}

	if s.lux != luxUnset && filtered < s.lux {
		if !noDelay {
			// Coalesce: one pending timer, latest lux wins.
			if !s.delayTimer.Active() {
				s.delayTimer = s.loop.After(s.cfg.StepDownDelay, s.stepDownFired)
			}
			s.delayedLux = lux
			return
		}
		s.delayTimer = nil
	} else {
		// Stepping up cancels any pending step-down.
		s.delayTimer.Cancel()
		s.delayTimer = nil
	}

	s.lux = filtered
	s.refilter()

	if err := s.dev.ApplyCPA(s.lux); err != nil {
		s.log.Warn("colour phase adjustment failed", "err", err)
	}

	s.reconcile()
}

func (s *Service) stepDownFired() {
	s.update(s.delayedLux, true)
}

// reconcile writes the union band to hardware unless an external owner
// currently controls the thresholds.
func (s *Service) reconcile() {
	if s.owners.Count() > 0 {
		return
	}
	lower, upper := s.unionBand()
	if err := s.armer.Arm(types.Explicit(lower, upper)); err != nil {
		s.log.Warn("threshold write failed", "err", err)
	}
}

// displayStateTrigger tracks the display through the display_state pipe
// and re-seeds the sensor pipeline around blank/unblank transitions.
func (s *Service) displayStateTrigger(state types.DisplayState) {
	old := s.displayState
	s.displayState = state

	if !s.enabled {
		return
	}

	oldInterval := s.pollInterval
	switch {
	case state.Dark():
		s.pollInterval = 0
	case state == types.DisplayDim:
		s.pollInterval = s.cfg.PollDim
	default:
		s.pollInterval = s.cfg.PollOn
	}

	switch {
	case old.Dark() && state.Lit():
		// Waking up: the window holds stale darkness samples and the
		// environment may have changed completely.
		s.teardownSource()
		if s.med != nil {
			s.med.Reset()
		}

		if lux, ok, err := s.dev.Read(); err == nil && ok {
			fresh := s.medianMap(lux)
			if fresh != s.lux || s.store.StepDownPolicy() == types.StepUnblank {
				s.lux = fresh
				s.refilter()
			}
		}

		if s.owners.Count() == 0 {
			if err := s.armer.Arm(types.RestoreCached()); err != nil {
				s.log.Warn("threshold restore failed", "err", err)
			}
		}

	case old.Lit() && state.Dark():
		// Going dark: nothing consumes readings, silence the sensor
		// and drop any pending step-down.
		s.delayTimer.Cancel()
		s.delayTimer = nil
		if s.owners.Count() == 0 {
			if err := s.armer.Arm(types.DisableBand()); err != nil {
				s.log.Warn("threshold disable failed", "err", err)
			}
		}
	}

	if s.pollInterval != oldInterval || (s.pollTimer == nil && s.mon == nil) {
		s.setupSource()
	}
}
