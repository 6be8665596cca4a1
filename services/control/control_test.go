package control

import (
	"context"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"

	"luxd/engine"
	"luxd/errcode"
	"luxd/owner"
	"luxd/types"
)

// stubControl backs the bus surface with a bare refcount monitor.
type stubControl struct {
	owners   *owner.Monitor
	vanished []string
	forced   []types.BandKind
}

func (s *stubControl) AcquireOwner(name string) (int, error) {
	n, err := s.owners.Acquire(name)
	if err == nil && n == 1 {
		s.forced = append(s.forced, types.BandForceInterrupt)
	}
	return n, err
}

func (s *stubControl) ReleaseOwner(name string) (int, error) {
	n, err := s.owners.Release(name)
	if err == nil && n == 0 {
		s.forced = append(s.forced, types.BandRestoreCached)
	}
	return n, err
}

func (s *stubControl) OwnerVanished(name string) {
	if s.owners.Holds(name) {
		s.owners.Release(name)
		s.vanished = append(s.vanished, name)
	}
}

func startService(t *testing.T) (*Service, *stubControl, *engine.Loop) {
	t.Helper()
	loop := engine.New(0, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	stub := &stubControl{owners: owner.New(0)}
	return New(loop, stub, nil), stub, loop
}

func TestReqAlsEnableDisable(t *testing.T) {
	svc, stub, loop := startService(t)

	n, derr := svc.ReqAlsEnable(dbus.Sender(":1.7"))
	if derr != nil || n != 1 {
		t.Fatalf("enable: n=%d err=%v", n, derr)
	}
	n, derr = svc.ReqAlsEnable(dbus.Sender(":1.8"))
	if derr != nil || n != 2 {
		t.Fatalf("second enable: n=%d err=%v", n, derr)
	}

	n, derr = svc.ReqAlsDisable(dbus.Sender(":1.7"))
	if derr != nil || n != 1 {
		t.Fatalf("disable: n=%d err=%v", n, derr)
	}
	n, derr = svc.ReqAlsDisable(dbus.Sender(":1.8"))
	if derr != nil || n != 0 {
		t.Fatalf("final disable: n=%d err=%v", n, derr)
	}

	loop.Sync()
	if len(stub.forced) != 2 ||
		stub.forced[0] != types.BandForceInterrupt ||
		stub.forced[1] != types.BandRestoreCached {
		t.Fatalf("band transitions = %v", stub.forced)
	}
}

func TestReqAlsDisable_UnknownRequester(t *testing.T) {
	svc, _, _ := startService(t)
	_, derr := svc.ReqAlsDisable(dbus.Sender(":1.99"))
	if derr == nil {
		t.Fatal("unknown requester accepted")
	}
	want := Interface + ".Error." + string(errcode.UnknownRequester)
	if derr.Name != want {
		t.Fatalf("error name = %q, want %q", derr.Name, want)
	}
}

func TestNameOwnerChanged_ReleasesOnDeath(t *testing.T) {
	svc, stub, loop := startService(t)
	svc.ReqAlsEnable(dbus.Sender(":1.7"))

	// A replaced name (new owner non-empty) must not release.
	svc.nameOwnerChanged([]interface{}{":1.7", ":1.7", ":1.50"})
	loop.Sync()
	if len(stub.vanished) != 0 {
		t.Fatal("release on owner replacement")
	}

	svc.nameOwnerChanged([]interface{}{":1.7", ":1.7", ""})
	loop.Sync()
	if len(stub.vanished) != 1 || stub.vanished[0] != ":1.7" {
		t.Fatalf("vanished = %v", stub.vanished)
	}
	if stub.owners.Count() != 0 {
		t.Fatal("refcount not released on owner death")
	}

	// Malformed bodies are ignored.
	svc.nameOwnerChanged([]interface{}{":1.7"})
	svc.nameOwnerChanged([]interface{}{1, 2, 3})
}

func TestOnLoop_TimesOutWhenLoopStopped(t *testing.T) {
	old := callTimeout
	callTimeout = 50 * time.Millisecond
	t.Cleanup(func() { callTimeout = old })

	loop := engine.New(0, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	stub := &stubControl{owners: owner.New(0)}
	svc := New(loop, stub, nil)

	_, derr := svc.ReqAlsEnable(dbus.Sender(":1.1"))
	if derr == nil {
		t.Fatal("expected error from stopped loop")
	}
	want := Interface + ".Error." + string(errcode.Timeout)
	if derr.Name != want {
		t.Fatalf("error name = %q, want %q", derr.Name, want)
	}
}
