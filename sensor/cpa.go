package sensor

import (
	"fmt"
	"os"
)

// CPARow maps a lux range to a set of colour phase adjustment
// coefficients for the display panel. High == -1 is open-ended.
type CPARow struct {
	Low          int
	High         int
	Coefficients string
}

// Coefficient tables for the panels paired with each interrupt-driven
// sensor. Polled devices have no CPA-capable panel.
var cpaTables = map[Family][]CPARow{
	FamilyAPDS990X: {
		{0, 110, "0 0 0 0 0 0 0 0 0"},
		{110, 1200, "81 16 2 10 81 8 2 5 92"},
		{1200, -1, "73 23 3 14 72 13 3 8 88"},
	},
	FamilyBH1770: {
		{0, 110, "0 0 0 0 0 0 0 0 0"},
		{110, -1, "78 19 2 12 78 9 2 6 91"},
	},
}

// ApplyCPA writes the coefficient set matching lux, enabling the
// adjustment hardware on the first write. Devices without a CPA table
// no-op.
func (d *Device) ApplyCPA(lux int) error {
	if len(d.cpa) == 0 {
		return nil
	}

	row := -1
	for i, r := range d.cpa {
		if lux >= r.Low && (lux < r.High || r.High == -1) {
			row = i
			break
		}
	}
	if row == -1 {
		return nil
	}

	if err := os.WriteFile(d.cpaCoeff, []byte(d.cpa[row].Coefficients), 0o644); err != nil {
		return fmt.Errorf("sensor: write cpa coefficients: %w", err)
	}
	if !d.cpaEnabled {
		if err := os.WriteFile(d.cpaEnable, []byte("1"), 0o644); err != nil {
			return fmt.Errorf("sensor: enable cpa: %w", err)
		}
		d.cpaEnabled = true
	}
	return nil
}
