package profile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileProfiles is the YAML shape of a profile override file. Each table
// is a list of [low, high, value] rows.
type fileProfiles struct {
	Display  [][][3]int `yaml:"display"`
	LED      [][][3]int `yaml:"led"`
	Keyboard [][][3]int `yaml:"keyboard"`
}

// LoadFile reads a profile override file. Tables replace the built-in
// sets wholesale per consumer; a consumer absent from the file keeps its
// defaults (merge is the caller's job). Invalid tables are rejected so a
// bad file can never half-configure a consumer.
func LoadFile(path string) (*Profiles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("profile: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML profile tables.
func Parse(data []byte) (*Profiles, error) {
	var f fileProfiles
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("profile: parse: %w", err)
	}

	p := &Profiles{}
	var convErr error
	conv := func(name string, raw [][][3]int) Set {
		if len(raw) == 0 || convErr != nil {
			return nil
		}
		set := make(Set, 0, len(raw))
		for ti, rows := range raw {
			table := make(Table, 0, len(rows))
			for _, r := range rows {
				table = append(table, Row{Low: r[0], High: r[1], Value: r[2]})
			}
			if err := table.Validate(); err != nil {
				convErr = fmt.Errorf("profile: %s table %d: %w", name, ti, err)
				return nil
			}
			set = append(set, table)
		}
		return set
	}

	p.Display = conv("display", f.Display)
	p.LED = conv("led", f.LED)
	p.Keyboard = conv("keyboard", f.Keyboard)
	if convErr != nil {
		return nil, convErr
	}
	return p, nil
}

// Merge overlays non-nil sets from over onto base, returning a new
// group. Either argument may be nil.
func Merge(base, over *Profiles) *Profiles {
	if base == nil {
		base = &Profiles{}
	}
	out := *base
	if over != nil {
		if len(over.Display) > 0 {
			out.Display = over.Display
		}
		if len(over.LED) > 0 {
			out.LED = over.LED
		}
		if len(over.Keyboard) > 0 {
			out.Keyboard = over.Keyboard
		}
	}
	return &out
}
