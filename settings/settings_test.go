package settings

import (
	"os"
	"path/filepath"
	"testing"

	"luxd/types"
)

func tempPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "luxd.yaml")
}

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	s := Load(tempPath(t), nil)
	if !s.ALSEnabled() {
		t.Fatal("ALS must default to enabled")
	}
	if s.StepDownPolicy() != types.StepDirect {
		t.Fatal("step-down policy must default to direct")
	}
	if s.DisplayBrightness() != DefaultBrightness {
		t.Fatalf("brightness = %d, want %d", s.DisplayBrightness(), DefaultBrightness)
	}
}

func TestSetAndReload(t *testing.T) {
	path := tempPath(t)
	s := Load(path, nil)

	s.SetALSEnabled(false)
	s.SetStepDownPolicy(types.StepUnblank)
	if err := s.SetDisplayBrightness(5); err != nil {
		t.Fatal(err)
	}

	r := Load(path, nil)
	if r.ALSEnabled() {
		t.Fatal("ALS enable flag not persisted")
	}
	if r.StepDownPolicy() != types.StepUnblank {
		t.Fatal("step-down policy not persisted")
	}
	if r.DisplayBrightness() != 5 {
		t.Fatalf("brightness = %d after reload", r.DisplayBrightness())
	}
}

func TestSetDisplayBrightness_Range(t *testing.T) {
	s := Load(tempPath(t), nil)
	if err := s.SetDisplayBrightness(0); err == nil {
		t.Fatal("brightness 0 accepted")
	}
	if err := s.SetDisplayBrightness(6); err == nil {
		t.Fatal("brightness 6 accepted")
	}
	if s.DisplayBrightness() != DefaultBrightness {
		t.Fatal("rejected set changed state")
	}
}

func TestNotify(t *testing.T) {
	s := Load(tempPath(t), nil)

	fired := 0
	sub := s.Subscribe(KeyALSEnabled, func() { fired++ })

	s.SetALSEnabled(false)
	if fired != 1 {
		t.Fatalf("fired = %d after change", fired)
	}

	// No-op set does not notify.
	s.SetALSEnabled(false)
	if fired != 1 {
		t.Fatalf("fired = %d after no-op set", fired)
	}

	// Other keys do not notify this subscriber.
	s.SetDisplayBrightness(4)
	if fired != 1 {
		t.Fatalf("fired = %d after unrelated change", fired)
	}

	sub.Remove()
	sub.Remove()
	s.SetALSEnabled(true)
	if fired != 1 {
		t.Fatalf("fired = %d after removal", fired)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := tempPath(t)
	os.WriteFile(path, []byte("{not yaml"), 0o644)
	s := Load(path, nil)
	if !s.ALSEnabled() || s.DisplayBrightness() != DefaultBrightness {
		t.Fatal("malformed file must fall back to defaults")
	}
}

func TestLoad_ClampsBrightness(t *testing.T) {
	path := tempPath(t)
	os.WriteFile(path, []byte("display_brightness: 99\n"), 0o644)
	if s := Load(path, nil); s.DisplayBrightness() != MaxBrightness {
		t.Fatalf("brightness = %d, want clamped to %d", s.DisplayBrightness(), MaxBrightness)
	}
}
