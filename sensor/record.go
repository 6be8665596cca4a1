package sensor

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"
)

// apds990x delivers an 8-byte little-endian record: a lux count and a
// status word. Only two status bits matter here.
const (
	apdsRecordSize = 8

	apdsStatusSaturated = 1 << 0
	apdsStatusUpdated   = 1 << 2
)

// bh1770 delivers a bare 4-byte little-endian lux count.
const bhRecordSize = 4

// DecodeRecord interprets one raw record for an event-driven family.
// A saturated apds990x reading maps to LuxSaturated; a record whose
// updated bit is clear returns ok=false and should be skipped.
func DecodeRecord(f Family, b []byte) (lux int, ok bool, err error) {
	switch f {
	case FamilyAPDS990X:
		if len(b) != apdsRecordSize {
			return 0, false, fmt.Errorf("sensor: short apds990x record (%d bytes)", len(b))
		}
		status := binary.LittleEndian.Uint32(b[4:])
		if status&apdsStatusUpdated == 0 {
			return 0, false, nil
		}
		if status&apdsStatusSaturated != 0 {
			return LuxSaturated, true, nil
		}
		return int(binary.LittleEndian.Uint32(b)), true, nil

	case FamilyBH1770:
		if len(b) != bhRecordSize {
			return 0, false, fmt.Errorf("sensor: short bh1770 record (%d bytes)", len(b))
		}
		return int(binary.LittleEndian.Uint32(b)), true, nil

	default:
		return 0, false, fmt.Errorf("sensor: family %s has no record format", f)
	}
}

// DecodeLine parses a polled family's decimal lux attribute.
func DecodeLine(b []byte) (int, error) {
	s := string(bytes.TrimSpace(b))
	lux, err := strconv.Atoi(s)
	if err != nil || lux < 0 {
		return 0, fmt.Errorf("sensor: bad lux reading %q", s)
	}
	return lux, nil
}
