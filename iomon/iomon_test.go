package iomon

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"luxd/engine"
)

func startLoop(t *testing.T) *engine.Loop {
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
	return loop
}

func collect(t *testing.T) (chan []byte, chan *Handle, Config) {
	t.Helper()
	data := make(chan []byte, 16)
	deleted := make(chan *Handle, 1)
	return data, deleted, Config{
		OnData:   func(b []byte) { data <- b },
		OnDelete: func(h *Handle) { deleted <- h },
	}
}

func recv[T any](t *testing.T, ch chan T, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
		panic("unreachable")
	}
}

func TestChunkDelivery(t *testing.T) {
	loop := startLoop(t)
	path := filepath.Join(t.TempDir(), "chunks")
	os.WriteFile(path, []byte("AAAABBBB"), 0o644)

	data, deleted, cfg := collect(t)
	cfg.Path = path
	cfg.Mode = ModeChunk
	cfg.ChunkSize = 4
	h, err := Register(loop, cfg, nil)
	if err != nil {
		t.Fatal(err)
	}

	if got := string(recv(t, data, "first chunk")); got != "AAAA" {
		t.Fatalf("first chunk = %q", got)
	}
	if got := string(recv(t, data, "second chunk")); got != "BBBB" {
		t.Fatalf("second chunk = %q", got)
	}
	if got := recv(t, deleted, "delete on end of stream"); got != h {
		t.Fatal("delete delivered a different handle")
	}
}

func TestLineDelivery(t *testing.T) {
	loop := startLoop(t)
	path := filepath.Join(t.TempDir(), "lines")
	os.WriteFile(path, []byte("100\n200\n"), 0o644)

	data, deleted, cfg := collect(t)
	cfg.Path = path
	cfg.Mode = ModeLine
	if _, err := Register(loop, cfg, nil); err != nil {
		t.Fatal(err)
	}

	if got := string(recv(t, data, "first line")); got != "100" {
		t.Fatalf("first line = %q", got)
	}
	if got := string(recv(t, data, "second line")); got != "200" {
		t.Fatalf("second line = %q", got)
	}
	recv(t, deleted, "delete on end of stream")
}

func TestShortChunkEndsRegistration(t *testing.T) {
	loop := startLoop(t)
	path := filepath.Join(t.TempDir(), "short")
	os.WriteFile(path, []byte("AAAABB"), 0o644)

	data, deleted, cfg := collect(t)
	cfg.Path = path
	cfg.Mode = ModeChunk
	cfg.ChunkSize = 4
	cfg.Policy = PolicyWarn
	if _, err := Register(loop, cfg, nil); err != nil {
		t.Fatal(err)
	}

	recv(t, data, "full chunk")
	recv(t, deleted, "delete after short chunk")
	select {
	case b := <-data:
		t.Fatalf("short chunk %q delivered as data", b)
	default:
	}
}

func TestUnregister_DeleteExactlyOnce(t *testing.T) {
	loop := startLoop(t)
	path := filepath.Join(t.TempDir(), "fifo")
	if err := syscall.Mkfifo(path, 0o600); err != nil {
		t.Skipf("mkfifo: %v", err)
	}

	// The writer side keeps the channel open so only Unregister can end
	// the registration.
	wDone := make(chan *os.File, 1)
	go func() {
		w, err := os.OpenFile(path, os.O_WRONLY, 0)
		if err == nil {
			wDone <- w
		}
	}()

	data, deleted, cfg := collect(t)
	cfg.Path = path
	cfg.Mode = ModeChunk
	cfg.ChunkSize = 4
	h, err := Register(loop, cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	w := recv(t, wDone, "writer open")
	defer w.Close()

	w.Write([]byte("LIVE"))
	recv(t, data, "chunk before unregister")

	h.Unregister()
	recv(t, deleted, "delete after unregister")

	h.Unregister()
	select {
	case <-deleted:
		t.Fatal("delete delivered twice")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRegister_Validation(t *testing.T) {
	loop := startLoop(t)
	if _, err := Register(loop, Config{Path: "x", OnData: nil}, nil); err == nil {
		t.Fatal("nil data callback accepted")
	}
	if _, err := Register(loop, Config{Path: "x", Mode: ModeChunk, OnData: func([]byte) {}}, nil); err == nil {
		t.Fatal("zero chunk size accepted")
	}
	if _, err := Register(loop, Config{Path: filepath.Join(t.TempDir(), "missing"), OnData: func([]byte) {}}, nil); err == nil {
		t.Fatal("missing path accepted")
	}
}

func TestHandleTagsAreUnique(t *testing.T) {
	loop := startLoop(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "f")
	os.WriteFile(path, []byte("1\n"), 0o644)

	_, _, cfg := collect(t)
	cfg.Path = path
	cfg.Mode = ModeLine
	h1, err := Register(loop, cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	h2, err := Register(loop, cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if h1.Tag == h2.Tag {
		t.Fatal("two registrations share a tag")
	}
}
