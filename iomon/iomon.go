// Package iomon watches a readable channel and delivers its data onto
// the event loop. A channel is either line-oriented (each newline-
// terminated record delivered without the terminator) or chunked (fixed-
// size binary records). Registration returns an opaque handle; callers
// compare handle identity in their delete callback before clearing
// state, so a stale deletion can never tear down a newer registration.
package iomon

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"luxd/engine"
)

// Mode selects how the channel's byte stream is framed.
type Mode int

const (
	ModeLine Mode = iota
	ModeChunk
)

// ErrorPolicy decides what a read error does to the registration.
type ErrorPolicy int

const (
	// PolicyIgnore drops the error silently and keeps reading.
	PolicyIgnore ErrorPolicy = iota
	// PolicyWarn logs the error and keeps reading.
	PolicyWarn
	// PolicyFatal logs the error and unregisters the channel.
	PolicyFatal
)

// Config describes one registration. OnData and OnDelete both run on
// the loop goroutine; OnDelete is delivered exactly once, whether the
// channel failed, hit end of stream, or was unregistered.
type Config struct {
	Path      string
	Mode      Mode
	ChunkSize int
	Policy    ErrorPolicy
	OnData    func(data []byte)
	OnDelete  func(h *Handle)
}

// Handle identifies one live registration.
type Handle struct {
	// Tag is unique per registration. Owners that keep a current
	// handle should compare tags in OnDelete before clearing it.
	Tag uuid.UUID

	path   string
	f      *os.File
	loop   *engine.Loop
	cfg    Config
	log    *slog.Logger
	closed atomic.Bool
	delete sync.Once
}

// Register opens the channel and starts delivering its data. The
// returned handle stays valid until OnDelete has run.
func Register(loop *engine.Loop, cfg Config, log *slog.Logger) (*Handle, error) {
	if cfg.OnData == nil {
		return nil, fmt.Errorf("iomon: nil data callback")
	}
	if cfg.Mode == ModeChunk && cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("iomon: chunk mode needs a positive chunk size")
	}
	if log == nil {
		log = slog.Default()
	}

	f, err := os.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("iomon: open %s: %w", cfg.Path, err)
	}

	h := &Handle{
		Tag:  uuid.New(),
		path: cfg.Path,
		f:    f,
		loop: loop,
		cfg:  cfg,
		log:  log,
	}
	go h.readLoop()
	return h, nil
}

// Path returns the monitored channel's path.
func (h *Handle) Path() string { return h.path }

// Unregister stops monitoring. Idempotent; OnDelete still runs exactly
// once, on the loop.
func (h *Handle) Unregister() {
	if h.closed.Swap(true) {
		return
	}
	h.f.Close()
	h.deliverDelete()
}

func (h *Handle) deliverDelete() {
	h.delete.Do(func() {
		if h.cfg.OnDelete == nil {
			return
		}
		h.loop.Post(func() { h.cfg.OnDelete(h) })
	})
}

// fail applies the error policy. It reports whether reading should
// continue.
func (h *Handle) fail(err error) bool {
	if h.closed.Load() {
		return false
	}
	switch h.cfg.Policy {
	case PolicyIgnore:
		return true
	case PolicyWarn:
		h.log.Warn("io monitor read failed", "path", h.path, "err", err)
		return true
	default:
		h.log.Error("io monitor read failed, unregistering", "path", h.path, "err", err)
		return false
	}
}

func (h *Handle) readLoop() {
	defer func() {
		h.closed.Store(true)
		h.f.Close()
		h.deliverDelete()
	}()

	if h.cfg.Mode == ModeLine {
		h.readLines()
		return
	}
	h.readChunks()
}

func (h *Handle) readLines() {
	sc := bufio.NewScanner(h.f)
	for sc.Scan() {
		h.post(sc.Bytes())
	}
	if err := sc.Err(); err != nil && !h.closed.Load() {
		// Line channels cannot recover a split stream; any error ends
		// the registration regardless of policy.
		h.fail(err)
	}
}

func (h *Handle) readChunks() {
	buf := make([]byte, h.cfg.ChunkSize)
	for {
		_, err := io.ReadFull(h.f, buf)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				h.fail(fmt.Errorf("iomon: short chunk on %s", h.path))
				return
			}
			if h.fail(err) {
				continue
			}
			return
		}
		h.post(buf)
	}
}

// post hands one record to the loop. The buffer is reused between
// reads, so the callback gets its own copy.
func (h *Handle) post(data []byte) {
	rec := make([]byte, len(data))
	copy(rec, data)
	h.loop.Post(func() {
		if h.closed.Load() {
			return
		}
		h.cfg.OnData(rec)
	})
}
