package als

import (
	"luxd/iomon"
	"luxd/sensor"
)

// setupSource (re)starts the reading strategy chosen at probe time:
// event-driven families keep one I/O monitor on the record node, polled
// families run a timer at the display-state cadence. Strategies are
// never switched after startup, only paused and resumed.
func (s *Service) setupSource() {
	if s.pollInterval == 0 && !s.dev.Family.EventDriven() {
		s.teardownSource()
		return
	}

	if s.dev.Family.EventDriven() {
		if s.mon != nil {
			return
		}
		h, err := iomon.Register(s.loop, iomon.Config{
			Path:      s.dev.DataPath,
			Mode:      iomon.ModeChunk,
			ChunkSize: s.dev.Family.RecordSize(),
			Policy:    iomon.PolicyWarn,
			OnData:    s.monitorData,
			OnDelete:  s.monitorDeleted,
		}, s.log)
		if err != nil {
			s.log.Error("sensor monitor registration failed", "err", err)
			return
		}
		s.mon = h
		return
	}

	s.pollTimer.Cancel()
	s.armPoll()
}

func (s *Service) teardownSource() {
	if s.mon != nil {
		s.mon.Unregister()
		s.mon = nil
	}
	s.pollTimer.Cancel()
	s.pollTimer = nil
}

func (s *Service) armPoll() {
	if s.pollInterval <= 0 {
		s.pollTimer = nil
		return
	}
	s.pollTimer = s.loop.After(s.pollInterval, s.pollFired)
}

func (s *Service) pollFired() {
	s.pollTimer = nil
	if !s.enabled {
		return
	}
	lux, ok, err := s.dev.Read()
	if err != nil {
		s.log.Debug("sensor poll failed", "err", err)
	} else if ok {
		s.update(lux, false)
	}
	s.armPoll()
}

func (s *Service) monitorData(data []byte) {
	if !s.enabled {
		return
	}
	lux, ok, err := sensor.DecodeRecord(s.dev.Family, data)
	if err != nil {
		s.log.Warn("sensor record decode failed", "err", err)
		return
	}
	if ok {
		s.update(lux, false)
	}
}

// monitorDeleted clears the handle slot only if it still names this
// registration; a newer monitor may already occupy it.
func (s *Service) monitorDeleted(h *iomon.Handle) {
	if s.mon != nil && s.mon.Tag == h.Tag {
		s.mon = nil
	}
}
