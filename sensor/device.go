package sensor

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"luxd/errcode"
)

// Paths names every sysfs attribute a supported family may expose.
// Tests point these at temporary files; production uses DefaultPaths.
type Paths struct {
	APDSDevice    string
	APDSCalib     string
	APDSThreshold string

	BHDevice    string
	BHCalib     string
	BHThreshold string

	TSL2563Lux    string
	TSL2563Calib0 string
	TSL2563Calib1 string

	TSL2562Lux    string
	TSL2562Calib0 string
	TSL2562Calib1 string

	CPAEnable       string
	CPACoefficients string
}

// DefaultPaths returns the stock sysfs locations.
func DefaultPaths() Paths {
	return Paths{
		APDSDevice:    "/dev/apds990x0",
		APDSCalib:     "/sys/class/misc/apds990x0/device/als_calib",
		APDSThreshold: "/sys/class/misc/apds990x0/device/als_thresh_range",

		BHDevice:    "/dev/bh1770glc_als",
		BHCalib:     "/sys/class/misc/bh1770glc_als/device/als_calib",
		BHThreshold: "/sys/class/misc/bh1770glc_als/device/als_thresh_range",

		TSL2563Lux:    "/sys/class/i2c-adapter/i2c-2/2-0029/lux",
		TSL2563Calib0: "/sys/class/i2c-adapter/i2c-2/2-0029/calib0",
		TSL2563Calib1: "/sys/class/i2c-adapter/i2c-2/2-0029/calib1",

		TSL2562Lux:    "/sys/class/i2c-adapter/i2c-0/0-0029/lux",
		TSL2562Calib0: "/sys/class/i2c-adapter/i2c-0/0-0029/calib0",
		TSL2562Calib1: "/sys/class/i2c-adapter/i2c-0/0-0029/calib1",

		CPAEnable:       "/sys/class/graphics/fb0/device/cpa_enable",
		CPACoefficients: "/sys/class/graphics/fb0/device/cpa_coefficients",
	}
}

// Device is the resolved handle for whatever sensor the probe found.
type Device struct {
	Family Family

	// DataPath is the record node for event-driven families or the
	// decimal lux attribute for polled ones.
	DataPath string

	calib0    string
	calib1    string
	threshold string

	cpa        []CPARow
	cpaEnable  string
	cpaCoeff   string
	cpaEnabled bool

	log *slog.Logger
}

func readable(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

func writable(path string) bool {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

// Probe checks the candidate paths in fixed priority order and returns
// the device handle for the first family found. The result is meant to
// be obtained once at startup; a missing sensor yields a FamilyNone
// device whose Read always fails.
func Probe(p Paths, log *slog.Logger) *Device {
	if log == nil {
		log = slog.Default()
	}
	d := &Device{Family: FamilyNone, log: log}

	switch {
	case readable(p.APDSDevice):
		d.Family = FamilyAPDS990X
		d.DataPath = p.APDSDevice
		d.calib0 = p.APDSCalib
		d.threshold = p.APDSThreshold
		d.probeCPA(p)
	case readable(p.BHDevice):
		d.Family = FamilyBH1770
		d.DataPath = p.BHDevice
		d.calib0 = p.BHCalib
		d.threshold = p.BHThreshold
		d.probeCPA(p)
	case readable(p.TSL2563Lux):
		d.Family = FamilyTSL2563
		d.DataPath = p.TSL2563Lux
		d.calib0 = p.TSL2563Calib0
		d.calib1 = p.TSL2563Calib1
	case readable(p.TSL2562Lux):
		d.Family = FamilyTSL2562
		d.DataPath = p.TSL2562Lux
		d.calib0 = p.TSL2562Calib0
		d.calib1 = p.TSL2562Calib1
	}

	// A threshold attribute that exists but rejects writes counts as
	// absent; reconciliation then stays advisory and polling is used.
	if d.threshold != "" && !writable(d.threshold) {
		log.Debug("threshold attribute not writable, interrupts disabled",
			"path", d.threshold)
		d.threshold = ""
	}

	log.Debug("sensor probe", "family", d.Family.String())
	return d
}

func (d *Device) probeCPA(p Paths) {
	if p.CPAEnable == "" || !writable(p.CPAEnable) {
		return
	}
	d.cpaEnable = p.CPAEnable
	d.cpaCoeff = p.CPACoefficients
	d.cpa = cpaTables[d.Family]
}

// SupportsThresholds reports whether the hardware interrupt window can
// be programmed.
func (d *Device) SupportsThresholds() bool { return d.threshold != "" }

// Read takes one synchronous reading. Event-driven families read and
// decode a single record; polled families parse the lux attribute. A
// not-yet-updated record reports ok=false with no error.
func (d *Device) Read() (lux int, ok bool, err error) {
	if d.Family == FamilyNone {
		return 0, false, errcode.SensorUnavailable
	}

	f, err := os.Open(d.DataPath)
	if err != nil {
		return 0, false, fmt.Errorf("sensor: open %s: %w", d.DataPath, err)
	}
	defer f.Close()

	if size := d.Family.RecordSize(); size > 0 {
		buf := make([]byte, size)
		if _, err := io.ReadFull(f, buf); err != nil {
			return 0, false, fmt.Errorf("sensor: read %s: %w", d.DataPath, err)
		}
		return DecodeRecord(d.Family, buf)
	}

	buf, err := io.ReadAll(io.LimitReader(f, 64))
	if err != nil {
		return 0, false, fmt.Errorf("sensor: read %s: %w", d.DataPath, err)
	}
	lux, err = DecodeLine(buf)
	if err != nil {
		return 0, false, err
	}
	return lux, true, nil
}
