package profile

// Profiles groups the per-consumer sets for one sensor family. A nil
// set means the consumer is not ALS-adjusted on that hardware.
type Profiles struct {
	Display  Set
	LED      Set
	Keyboard Set
}

// Built-in tables. Rows overlap on purpose: a row's Low is the
// down-step threshold into that bucket and sits below the previous
// row's High, giving each boundary its hysteresis band. The first row's
// Low must be positive or the dimmest bucket can never be re-entered.

var displayCommon = []Table{
	{ // Minimum
		{8, 32, 1}, {24, 320, 3}, {240, 1200, 6}, {1000, 17000, 10}, {14000, -1, 15},
	},
	{ // Economy
		{8, 32, 3}, {24, 320, 10}, {240, 1200, 20}, {1000, 17000, 35}, {14000, -1, 50},
	},
	{ // Normal
		{8, 32, 5}, {24, 320, 20}, {240, 1200, 40}, {1000, 17000, 60}, {14000, -1, 80},
	},
	{ // Bright
		{8, 32, 10}, {24, 320, 30}, {240, 1200, 55}, {1000, 17000, 80}, {14000, -1, 95},
	},
	{ // Maximum
		{8, 32, 20}, {24, 320, 40}, {240, 1200, 70}, {1000, 17000, 90}, {14000, -1, 100},
	},
}

var ledCommon = []Table{
	{ // Normal
		{3, 8, 20}, {5, 120, 50}, {100, -1, 100},
	},
}

// Keyboard backlight: full in the dark, off in daylight.
var keyboardCommon = []Table{
	{ // Normal
		{8, 32, 100}, {24, 320, 50}, {240, -1, 0},
	},
}

var builtin = map[string]*Profiles{
	// Interrupt-driven families.
	"apds990x": {Display: displayCommon, LED: ledCommon},
	"bh1770":   {Display: displayCommon, LED: ledCommon, Keyboard: keyboardCommon},
	// Polled families report coarser lux; same shape, tighter top end.
	"tsl2563": {
		Display: displayCommon,
		LED:     ledCommon,
		Keyboard: []Table{
			{{6, 24, 100}, {18, 240, 50}, {180, -1, 0}},
		},
	},
	"tsl2562": {
		Display: []Table{
			{{6, 24, 1}, {18, 240, 3}, {180, 1000, 8}, {800, -1, 15}},
			{{6, 24, 3}, {18, 240, 10}, {180, 1000, 25}, {800, -1, 50}},
			{{6, 24, 5}, {18, 240, 20}, {180, 1000, 45}, {800, -1, 80}},
			{{6, 24, 10}, {18, 240, 30}, {180, 1000, 60}, {800, -1, 95}},
			{{6, 24, 20}, {18, 240, 45}, {180, 1000, 75}, {800, -1, 100}},
		},
		LED:      ledCommon,
		Keyboard: keyboardCommon,
	},
}

// Defaults returns the built-in profile group for a sensor family table
// name, or nil if none is compiled in.
func Defaults(name string) *Profiles {
	return builtin[name]
}
