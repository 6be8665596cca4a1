// Package control exposes the sensor ownership surface on the session
// or system bus. External processes call ReqAlsEnable to take over
// threshold management and ReqAlsDisable to hand it back; a requester
// whose bus connection drops is released automatically.
package control

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/godbus/dbus/v5"

	"luxd/engine"
	"luxd/errcode"
)

const (
	BusName    = "org.luxd"
	ObjectPath = "/org/luxd/request"
	Interface  = "org.luxd.request"
)

// callTimeout bounds how long a bus method waits for the loop.
var callTimeout = 5 * time.Second

// OwnerControl is the slice of the ALS service the bus surface needs.
type OwnerControl interface {
	AcquireOwner(name string) (int, error)
	ReleaseOwner(name string) (int, error)
	OwnerVanished(name string)
}

// Service bridges bus calls onto the event loop.
type Service struct {
	loop *engine.Loop
	als  OwnerControl
	log  *slog.Logger

	conn *dbus.Conn
}

func New(loop *engine.Loop, als OwnerControl, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{loop: loop, als: als, log: log.With("service", "control")}
}

// Connect exports the request interface and starts watching requester
// liveness. The caller owns the connection's lifetime.
func (s *Service) Connect(conn *dbus.Conn) error {
	s.conn = conn

	if err := conn.Export(s, ObjectPath, Interface); err != nil {
		return fmt.Errorf("control: export: %w", err)
	}

	reply, err := conn.RequestName(BusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("control: request name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("control: name %s already taken", BusName)
	}

	if err := conn.AddMatchSignal(
		dbus.WithMatchSender("org.freedesktop.DBus"),
		dbus.WithMatchInterface("org.freedesktop.DBus"),
		dbus.WithMatchMember("NameOwnerChanged"),
	); err != nil {
		return fmt.Errorf("control: owner match: %w", err)
	}

	signals := make(chan *dbus.Signal, 32)
	conn.Signal(signals)
	go func() {
		for sig := range signals {
			if sig.Name == "org.freedesktop.DBus.NameOwnerChanged" {
				s.nameOwnerChanged(sig.Body)
			}
		}
	}()

	s.log.Info("control surface up", "name", BusName)
	return nil
}

// nameOwnerChanged releases any ownership held by a requester whose
// unique name just lost its owner.
func (s *Service) nameOwnerChanged(body []interface{}) {
	if len(body) != 3 {
		return
	}
	name, ok1 := body[0].(string)
	_, ok2 := body[1].(string)
	newOwner, ok3 := body[2].(string)
	if !ok1 || !ok2 || !ok3 {
		s.log.Warn("malformed NameOwnerChanged signal")
		return
	}
	if newOwner != "" {
		return
	}
	s.loop.Post(func() { s.als.OwnerVanished(name) })
}

// onLoop runs fn on the event loop and waits for its result.
func (s *Service) onLoop(fn func() (int, error)) (int, error) {
	type result struct {
		n   int
		err error
	}
	ch := make(chan result, 1)
	s.loop.Post(func() {
		n, err := fn()
		ch <- result{n, err}
	})
	select {
	case r := <-ch:
		return r.n, r.err
	case <-time.After(callTimeout):
		return 0, errcode.Timeout
	}
}

func busError(err error) *dbus.Error {
	return dbus.NewError(Interface+".Error."+string(errcode.Of(err)),
		[]interface{}{err.Error()})
}

// ReqAlsEnable grants the calling process control over the sensor
// thresholds and returns the new owner count.
func (s *Service) ReqAlsEnable(sender dbus.Sender) (int32, *dbus.Error) {
	s.log.Debug("als enable request", "sender", string(sender))
	n, err := s.onLoop(func() (int, error) {
		return s.als.AcquireOwner(string(sender))
	})
	if err != nil {
		return 0, busError(err)
	}
	return int32(n), nil
}

// ReqAlsDisable returns control and reports the remaining owner count.
func (s *Service) ReqAlsDisable(sender dbus.Sender) (int32, *dbus.Error) {
	s.log.Debug("als disable request", "sender", string(sender))
	n, err := s.onLoop(func() (int, error) {
		return s.als.ReleaseOwner(string(sender))
	})
	if err != nil {
		return 0, busError(err)
	}
	return int32(n), nil
}
