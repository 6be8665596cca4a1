// Package als is the policy service that turns ambient-light readings
// into brightness percentages for the display, the indicator LED and
// the keyboard backlight, and keeps the sensor's hardware interrupt
// window aligned with the consumers' current profile buckets.
//
// All state lives on one Service object and every entry point must run
// on the owning event loop.
package als

import (
	"log/slog"
	"time"

	"luxd/datapipe"
	"luxd/engine"
	"luxd/iomon"
	"luxd/median"
	"luxd/owner"
	"luxd/profile"
	"luxd/sensor"
	"luxd/settings"
	"luxd/types"
)

const (
	// luxUnset marks the cached lux before the first good reading.
	luxUnset = -1

	medianWindow = 5
)

// Pipes are the shared-state cells the service filters and observes.
type Pipes struct {
	DisplayBrightness *datapipe.Pipe[int]
	LEDBrightness     *datapipe.Pipe[int]
	KeyBacklight      *datapipe.Pipe[int]
	DisplayState      *datapipe.Pipe[types.DisplayState]
	Proximity         *datapipe.Pipe[types.CoverState]
}

// Config carries the tunables and the calibration source.
type Config struct {
	StepDownDelay time.Duration
	PollOn        time.Duration
	PollDim       time.Duration

	// Calibration returns the factory calibration blob, nil when the
	// platform has none provisioned.
	Calibration func() ([]byte, error)

	// ProfileOverrides replaces built-in tables per consumer when set.
	ProfileOverrides *profile.Profiles
}

// DefaultConfig returns the stock cadence and delay values.
func DefaultConfig() Config {
	return Config{
		StepDownDelay: 5 * time.Second,
		PollOn:        1500 * time.Millisecond,
		PollDim:       5 * time.Second,
	}
}

// Service owns all ALS policy state.
type Service struct {
	loop   *engine.Loop
	log    *slog.Logger
	dev    *sensor.Device
	armer  *sensor.Armer
	med    *median.Filter
	pipes  Pipes
	store  *settings.Store
	owners *owner.Monitor
	cfg    Config

	profiles *profile.Profiles

	available bool
	enabled   bool

	lux    int
	levels [types.NumConsumers]int
	lowers [types.NumConsumers]int
	uppers [types.NumConsumers]int
	// bandsSeeded flips once the display consumer has evaluated its
	// first band; until then every update must go through.
	bandsSeeded bool

	displayState types.DisplayState

	pollInterval time.Duration
	pollTimer    *engine.Timer
	mon          *iomon.Handle

	delayTimer *engine.Timer
	delayedLux int
}

// New wires the service onto the pipes and settings store. Call Start
// afterwards to probe state and begin reading.
func New(loop *engine.Loop, dev *sensor.Device, pipes Pipes, store *settings.Store,
	owners *owner.Monitor, cfg Config, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	s := &Service{
		loop:   loop,
		log:    log.With("service", "als"),
		dev:    dev,
		armer:  sensor.NewArmer(dev),
		pipes:  pipes,
		store:  store,
		owners: owners,
		cfg:    cfg,
		lux:    luxUnset,
	}
	for i := range s.levels {
		s.levels[i] = -1
	}

	pipes.DisplayBrightness.AddFilter(s.filterDisplay)
	pipes.LEDBrightness.AddFilter(s.filterLED)
	pipes.KeyBacklight.AddFilter(s.filterKeyboard)
	pipes.DisplayState.AddTrigger(s.displayStateTrigger)

	store.Subscribe(settings.KeyALSEnabled, s.enabledChanged)
	store.Subscribe(settings.KeyDisplayBrightness, func() {
		pipes.DisplayBrightness.Execute(store.DisplayBrightness(), true)
	})

	return s
}

// Start resolves the sensor, calibrates it and takes the initial
// reading. A missing sensor or a failed first read degrades the service
// permanently: filters become pass-through for the rest of the process
// lifetime.
func (s *Service) Start() {
	if s.dev.Family == sensor.FamilyNone {
		s.degrade("no ambient light sensor detected")
		return
	}

	s.profiles = profile.Merge(profile.Defaults(s.dev.Family.String()), s.cfg.ProfileOverrides)
	if s.profiles == nil || len(s.profiles.Display) == 0 {
		s.degrade("no profile tables for detected sensor")
		return
	}

	if s.dev.Family.Smoothed() {
		med, err := median.New(medianWindow)
		if err != nil {
			s.degrade("median filter init failed")
			return
		}
		s.med = med
	}

	if s.cfg.Calibration != nil {
		blob, err := s.cfg.Calibration()
		if err != nil {
			s.log.Warn("calibration data unavailable", "err", err)
		} else if err := s.dev.Calibrate(blob); err != nil {
			s.log.Error("calibration failed", "err", err)
		}
	}

	lux, ok, err := s.dev.Read()
	if err != nil || !ok {
		s.degrade("initial sensor read failed")
		return
	}

	s.available = true
	s.enabled = s.store.ALSEnabled()
	s.lux = s.medianMap(lux)
	s.displayState = s.pipes.DisplayState.Cached()
	s.pollInterval = s.cfg.PollOn

	s.refilter()
	s.setupSource()
}

// Available reports whether a working sensor was found at startup.
func (s *Service) Available() bool { return s.available }

// Lux returns the current smoothed reading, luxUnset before the first.
func (s *Service) Lux() int { return s.lux }

func (s *Service) degrade(why string) {
	s.available = false
	s.enabled = false
	s.log.Info("ambient light sensing unavailable", "reason", why)
	s.teardownSource()
}

func (s *Service) medianMap(lux int) int {
	if s.med == nil {
		return lux
	}
	return s.med.Map(lux)
}

// refilter recomputes every consumer from its cached upstream value.
func (s *Service) refilter() {
	s.pipes.DisplayBrightness.ExecuteCached()
	s.pipes.LEDBrightness.ExecuteCached()
	s.pipes.KeyBacklight.ExecuteCached()
}

func (s *Service) enabledChanged() {
	if !s.available {
		return
	}
	v := s.store.ALSEnabled()
	if v == s.enabled {
		return
	}
	s.enabled = v
	if !v {
		s.teardownSource()
		s.delayTimer.Cancel()
		s.delayTimer = nil
		s.refilter()
		return
	}
	if s.med != nil {
		s.med.Reset()
	}
	if lux, ok, err := s.dev.Read(); err == nil && ok {
		s.update(lux, false)
	}
	s.refilter()
	s.setupSource()
}
