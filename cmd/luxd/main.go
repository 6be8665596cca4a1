// luxd watches the ambient light sensor and adjusts display, LED and
// keyboard backlight brightness through the shared datapipes. It runs a
// single event loop; the D-Bus control surface and all sensor I/O feed
// callbacks onto it.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/godbus/dbus/v5"

	"luxd/datapipe"
	"luxd/engine"
	"luxd/owner"
	"luxd/profile"
	"luxd/sensor"
	"luxd/services/als"
	"luxd/services/control"
	"luxd/settings"
	"luxd/types"
)

func main() {
	var (
		settingsPath = flag.String("settings", "/var/lib/luxd/settings.yaml", "settings store path")
		profilePath  = flag.String("profiles", "", "optional profile table override file")
		calibPath    = flag.String("calibration", "", "optional factory calibration blob")
		noBus        = flag.Bool("no-bus", false, "run without the D-Bus control surface")
		verbose      = flag.Bool("verbose", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	cfg := als.DefaultConfig()
	if *profilePath != "" {
		over, err := profile.LoadFile(*profilePath)
		if err != nil {
			log.Error("profile override rejected", "err", err)
			os.Exit(1)
		}
		cfg.ProfileOverrides = over
	}
	if *calibPath != "" {
		path := *calibPath
		cfg.Calibration = func() ([]byte, error) { return os.ReadFile(path) }
	}

	loop := engine.New(0, log)
	store := settings.Load(*settingsPath, log)
	owners := owner.New(0)
	dev := sensor.Probe(sensor.DefaultPaths(), log)

	pipes := als.Pipes{
		DisplayBrightness: datapipe.New("display_brightness", store.DisplayBrightness()),
		LEDBrightness:     datapipe.New("led_brightness", 100),
		KeyBacklight:      datapipe.New("key_backlight", 100),
		DisplayState:      datapipe.New("display_state", types.DisplayOn),
		Proximity:         datapipe.New("proximity_sensor", types.CoverOpen),
	}

	svc := als.New(loop, dev, pipes, store, owners, cfg, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !*noBus {
		conn, err := dbus.ConnectSystemBus(dbus.WithSignalHandler(dbus.NewSequentialSignalHandler()))
		if err != nil {
			// The sensor policy still works without external owners.
			log.Warn("system bus unavailable, running standalone", "err", err)
		} else {
			defer conn.Close()
			ctl := control.New(loop, svc, log)
			if err := ctl.Connect(conn); err != nil {
				log.Error("control surface failed", "err", err)
				os.Exit(1)
			}
		}
	}

	loop.Post(func() {
		svc.Start()
		pipes.DisplayBrightness.ExecuteCached()
	})

	log.Info("luxd up", "family", dev.Family.String())
	loop.Run(ctx)
}
