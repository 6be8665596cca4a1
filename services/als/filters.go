package als

import (
	"luxd/profile"
	"luxd/settings"
	"luxd/types"
	"luxd/x/mathx"
)

// evaluate runs one consumer's profile table against the cached lux and
// records its level and threshold band.
func (s *Service) evaluate(c types.Consumer, table profile.Table) int {
	value, lower, upper, ok := table.Evaluate(s.lux, &s.levels[c])
	if !ok {
		s.log.Error("profile table lacks a terminating row", "consumer", c.String())
	}
	s.lowers[c] = lower
	s.uppers[c] = upper
	return value
}

// filterDisplay maps the user brightness setting (1..5) to a percentage.
// A dark display is forced to zero; without a usable sensor the setting
// degrades to a fixed 20 percent per step.
func (s *Service) filterDisplay(setting int) int {
	if s.displayState.Dark() {
		return 0
	}

	kind := profile.Kind(mathx.Clamp(setting, settings.MinBrightness, settings.MaxBrightness) - 1)

	if s.enabled && s.profiles != nil && len(s.profiles.Display) > 0 {
		pct := s.evaluate(types.ConsumerDisplay, s.profiles.Display.Pick(kind))
		s.bandsSeeded = true
		return pct
	}
	return (int(kind) + 1) * 20
}

// filterLED scales the upstream LED brightness by the ambient
// percentage, always using the normal profile variant.
func (s *Service) filterLED(brightness int) int {
	if s.enabled && s.profiles != nil && len(s.profiles.LED) > 0 {
		pct := s.evaluate(types.ConsumerLED, s.profiles.LED.Pick(profile.Normal))
		return brightness * pct / 100
	}
	return brightness
}

// filterKeyboard scales the keyboard backlight like filterLED. Devices
// without a keyboard profile pass the value through untouched.
func (s *Service) filterKeyboard(brightness int) int {
	if s.enabled && s.profiles != nil && len(s.profiles.Keyboard) > 0 {
		pct := s.evaluate(types.ConsumerKeyboard, s.profiles.Keyboard.Pick(profile.Normal))
		return brightness * pct / 100
	}
	return brightness
}

// unionBand combines the active consumers' bands into the widest window
// that keeps every level stable: the largest lower bound and the
// smallest upper bound. Inactive consumers do not constrain the window.
func (s *Service) unionBand() (lower, upper int) {
	lower = s.lowers[types.ConsumerDisplay]
	upper = s.uppers[types.ConsumerDisplay]

	if len(s.profiles.LED) > 0 {
		lower = mathx.Max(lower, s.lowers[types.ConsumerLED])
		upper = mathx.Min(upper, s.uppers[types.ConsumerLED])
	}
	if len(s.profiles.Keyboard) > 0 {
		lower = mathx.Max(lower, s.lowers[types.ConsumerKeyboard])
		upper = mathx.Min(upper, s.uppers[types.ConsumerKeyboard])
	}
	return lower, upper
}
