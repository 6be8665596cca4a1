// Package profile maps ambient-light readings to brightness percentages
// through per-consumer lookup tables with hysteresis. A table is an
// ascending list of lux buckets; evaluation tracks the consumer's
// current bucket (its level) and only moves once the reading crosses the
// boundary it already satisfies, so a reading sitting on a boundary
// never oscillates.
package profile

import (
	"fmt"

	"luxd/x/mathx"
)

// OpenUpper is the unbounded upper threshold reported for open buckets.
const OpenUpper = 65535

// Row is one lux bucket: readings in [Low, High) select Value percent.
// High == -1 marks an open top bucket. A row with Low == -1 is a
// sentinel terminating the table; it carries the fail-safe value used
// for readings above every bounded bucket.
type Row struct {
	Low   int
	High  int
	Value int
}

// Table is one ordered profile.
type Table []Row

// Set is a group of profile variants for one consumer, indexed by Kind.
// Display sets carry one table per user brightness setting; LED and
// keyboard sets typically carry only the normal variant.
type Set []Table

// Kind selects a variant inside a Set.
type Kind int

const (
	Minimum Kind = iota
	Economy
	Normal
	Bright
	Maximum
)

// Pick returns the variant for kind, clamped into the set.
func (s Set) Pick(kind Kind) Table {
	if len(s) == 0 {
		return nil
	}
	return s[mathx.Clamp(int(kind), 0, len(s)-1)]
}

// Evaluate scans the table for the bucket matching lux, starting from
// the consumer's current *level. Below the current level the row's Low
// bound is compared, at or above it the High bound, so the reading must
// move past the boundary it already satisfies before the level changes
// in either direction. *level is replaced by the new level.
//
// The returned band is the interrupt window that keeps the level stable:
// lower is the previous row's High (0 for the first row), upper the
// matched row's High (OpenUpper for open buckets).
//
// ok is false when the table lacks a terminating sentinel or open bucket
// and lux lies above every row; the result then fails safe to the last
// row's value with an unbounded upper band.
func (t Table) Evaluate(lux int, level *int) (value, lower, upper int, ok bool) {
	if len(t) == 0 {
		*level = 0
		return 0, 0, OpenUpper, false
	}

	cur := mathx.Clamp(*level, 0, len(t)-1)

	i := 0
	matched := false
	for ; i < len(t); i++ {
		if t[i].Low == -1 {
			matched = true
			break
		}
		bound := t[i].Low
		if i >= cur {
			bound = t[i].High
			if bound == -1 {
				matched = true
				break
			}
		}
		if lux < bound {
			matched = true
			break
		}
	}

	if !matched {
		i = len(t) - 1
		*level = i
		return t[i].Value, t[i].High, OpenUpper, false
	}

	*level = i

	lower = 0
	if i > 0 {
		lower = t[i-1].High
	}
	if lower < 0 {
		lower = 0
	}

	upper = t[i].High
	if upper == -1 {
		upper = OpenUpper
	}

	return t[i].Value, lower, upper, true
}

// Validate checks that rows ascend and the table is terminated by an
// open bucket or sentinel row. Adjacent rows may overlap: a row whose
// Low sits below its predecessor's High gives the evaluator its
// hysteresis band for downward steps.
func (t Table) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("profile: empty table")
	}
	prevLow, prevHigh := -1, 0
	for i, r := range t {
		if r.Low == -1 {
			if i != len(t)-1 {
				return fmt.Errorf("profile: sentinel row %d is not last", i)
			}
			return nil
		}
		if r.Low <= prevLow {
			return fmt.Errorf("profile: row %d does not ascend", i)
		}
		if r.High == -1 {
			if i != len(t)-1 {
				return fmt.Errorf("profile: open row %d is not last", i)
			}
			return nil
		}
		if r.High <= r.Low {
			return fmt.Errorf("profile: row %d is empty or inverted", i)
		}
		if i > 0 && r.High <= prevHigh {
			return fmt.Errorf("profile: row %d does not ascend", i)
		}
		prevLow, prevHigh = r.Low, r.High
	}
	return fmt.Errorf("profile: table lacks a terminating sentinel or open bucket")
}
