// Package classify maps a predicted compressive strength (kg/cm²) onto
// the four NEC strength bands used for display and reporting.
package classify

// Band is one of the four fixed strength categories.
type Band int

const (
	LowStrength Band = iota
	NormalStrength
	HighStrength
	UltraHighStrength
)

// Band boundaries in kg/cm². A value belongs to the upper band at each
// boundary, so the four bands partition the whole real line with no
// gaps or overlap.
const (
	lowUpper    = 210
	normalUpper = 280
	highUpper   = 420
)

// Info carries the display attributes of a band.
type Info struct {
	Band        Band    `json:"-"`
	Name        string  `json:"name"`
	Color       string  `json:"color"`
	Description string  `json:"description"`
	Min         float64 `json:"min_kg_cm2"`
	// Max is 0 for the unbounded top band.
	Max float64 `json:"max_kg_cm2,omitempty"`
}

var bands = []Info{
	{Band: LowStrength, Name: "Low Strength", Color: "#ef4444",
		Description: "Limited structural use", Min: 0, Max: lowUpper},
	{Band: NormalStrength, Name: "Normal Strength", Color: "#f97316",
		Description: "Common structural use", Min: lowUpper, Max: normalUpper},
	{Band: HighStrength, Name: "High Strength", Color: "#22c55e",
		Description: "Demanding structures", Min: normalUpper, Max: highUpper},
	{Band: UltraHighStrength, Name: "Ultra High Strength", Color: "#3b82f6",
		Description: "Special structures", Min: highUpper},
}

// Classify returns the band a strength value falls into.
func Classify(strength float64) Band {
	switch {
	case strength < lowUpper:
		return LowStrength
	case strength < normalUpper:
		return NormalStrength
	case strength < highUpper:
		return HighStrength
	default:
		return UltraHighStrength
	}
}

// Lookup returns the display attributes for a strength value.
func Lookup(strength float64) Info {
	return bands[Classify(strength)]
}

// Bands returns all four bands in ascending order.
func Bands() []Info {
	out := make([]Info, len(bands))
	copy(out, bands)
	return out
}

// Name returns the band's display name.
func (b Band) Name() string { return bands[b].Name }

// Color returns the band's display color as a hex string.
func (b Band) Color() string { return bands[b].Color }

// Description returns the band's usage description.
func (b Band) Description() string { return bands[b].Description }

func (b Band) String() string { return b.Name() }
