package sensor

import (
	"encoding/binary"
	"fmt"
	"os"
	"strconv"
)

// Calibrate interprets a factory calibration blob as little-endian
// 32-bit values and writes them to the device's calibration attributes.
// An empty blob means no calibration was provisioned and is not an
// error. More than two values is tolerated with the excess ignored; a
// length that is not a multiple of four is a defect and skips the write
// entirely.
func (d *Device) Calibrate(blob []byte) error {
	if d.calib0 == "" && d.calib1 == "" {
		return nil
	}

	if len(blob)%4 != 0 {
		return fmt.Errorf("sensor: calibration blob length %d is not a multiple of 4", len(blob))
	}

	count := len(blob) / 4
	if count == 0 {
		d.log.Info("no calibration data provisioned")
		return nil
	}
	if count > 2 {
		d.log.Warn("ignoring excess calibration data", "values", count)
		count = 2
	}

	if d.calib0 != "" {
		v := binary.LittleEndian.Uint32(blob)
		if err := writeDecimal(d.calib0, v); err != nil {
			return err
		}
	}
	if d.calib1 != "" && count > 1 {
		v := binary.LittleEndian.Uint32(blob[4:])
		if err := writeDecimal(d.calib1, v); err != nil {
			return err
		}
	}
	return nil
}

func writeDecimal(path string, v uint32) error {
	if err := os.WriteFile(path, []byte(strconv.FormatUint(uint64(v), 10)), 0o644); err != nil {
		return fmt.Errorf("sensor: write %s: %w", path, err)
	}
	return nil
}
