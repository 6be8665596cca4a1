// Package settings persists the daemon's few user-tunable values and
// notifies subscribers when one changes. The store is owned by the
// event loop; all methods must be called from it.
package settings

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"luxd/types"
	"luxd/x/mathx"
)

// Keys a subscriber can watch.
const (
	KeyALSEnabled        = "als_enabled"
	KeyStepDownPolicy    = "step_down_policy"
	KeyDisplayBrightness = "display_brightness"
)

// Display brightness setting bounds (user steps, not percent).
const (
	MinBrightness     = 1
	MaxBrightness     = 5
	DefaultBrightness = 3
)

type fileSettings struct {
	ALSEnabled        *bool  `yaml:"als_enabled,omitempty"`
	StepDownPolicy    string `yaml:"step_down_policy,omitempty"`
	DisplayBrightness int    `yaml:"display_brightness,omitempty"`
}

// Store holds the current values and their subscribers.
type Store struct {
	path string
	log  *slog.Logger

	alsEnabled bool
	stepPolicy types.StepPolicy
	brightness int

	subs   map[string]map[*Sub]struct{}
	nextID int
}

// Sub is one active subscription.
type Sub struct {
	store *Store
	key   string
	fn    func()
}

// Load reads the settings file, falling back to defaults for anything
// missing or malformed. A missing file is normal on first boot.
func Load(path string, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	s := &Store{
		path:       path,
		log:        log,
		alsEnabled: true,
		stepPolicy: types.StepDirect,
		brightness: DefaultBrightness,
		subs:       make(map[string]map[*Sub]struct{}),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("settings unreadable, using defaults", "path", path, "err", err)
		}
		return s
	}

	var f fileSettings
	if err := yaml.Unmarshal(data, &f); err != nil {
		log.Warn("settings malformed, using defaults", "path", path, "err", err)
		return s
	}

	if f.ALSEnabled != nil {
		s.alsEnabled = *f.ALSEnabled
	}
	if f.StepDownPolicy != "" {
		s.stepPolicy = types.ParseStepPolicy(f.StepDownPolicy)
	}
	if f.DisplayBrightness != 0 {
		s.brightness = mathx.Clamp(f.DisplayBrightness, MinBrightness, MaxBrightness)
	}
	return s
}

func (s *Store) save() {
	enabled := s.alsEnabled
	f := fileSettings{
		ALSEnabled:        &enabled,
		StepDownPolicy:    s.stepPolicy.String(),
		DisplayBrightness: s.brightness,
	}
	data, err := yaml.Marshal(&f)
	if err != nil {
		s.log.Error("settings marshal failed", "err", err)
		return
	}

	// Write-then-rename so a crash never leaves a torn file.
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err == nil {
		err = os.WriteFile(tmp, data, 0o644)
		if err == nil {
			err = os.Rename(tmp, s.path)
		}
	}
	if err != nil {
		s.log.Error("settings save failed", "path", s.path, "err", err)
	}
}

// ALSEnabled reports whether sensor-driven brightness is on.
func (s *Store) ALSEnabled() bool { return s.alsEnabled }

// SetALSEnabled updates and persists the enable flag.
func (s *Store) SetALSEnabled(v bool) {
	if s.alsEnabled == v {
		return
	}
	s.alsEnabled = v
	s.save()
	s.notify(KeyALSEnabled)
}

// StepDownPolicy returns the configured step-down policy.
func (s *Store) StepDownPolicy() types.StepPolicy { return s.stepPolicy }

// SetStepDownPolicy updates and persists the step-down policy.
func (s *Store) SetStepDownPolicy(p types.StepPolicy) {
	if s.stepPolicy == p {
		return
	}
	s.stepPolicy = p
	s.save()
	s.notify(KeyStepDownPolicy)
}

// DisplayBrightness returns the user brightness step, 1..5.
func (s *Store) DisplayBrightness() int { return s.brightness }

// SetDisplayBrightness clamps, updates and persists the brightness step.
func (s *Store) SetDisplayBrightness(v int) error {
	if v < MinBrightness || v > MaxBrightness {
		return fmt.Errorf("settings: brightness %d out of range %d..%d",
			v, MinBrightness, MaxBrightness)
	}
	if s.brightness == v {
		return nil
	}
	s.brightness = v
	s.save()
	s.notify(KeyDisplayBrightness)
	return nil
}

// Subscribe registers fn to run after key's value changes.
func (s *Store) Subscribe(key string, fn func()) *Sub {
	sub := &Sub{store: s, key: key, fn: fn}
	if s.subs[key] == nil {
		s.subs[key] = make(map[*Sub]struct{})
	}
	s.subs[key][sub] = struct{}{}
	return sub
}

// Remove drops the subscription. Idempotent.
func (sub *Sub) Remove() {
	if sub == nil || sub.store == nil {
		return
	}
	delete(sub.store.subs[sub.key], sub)
	sub.store = nil
}

func (s *Store) notify(key string) {
	for sub := range s.subs[key] {
		sub.fn()
	}
}
