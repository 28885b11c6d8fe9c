package mix

// Preset is a named, commonly used mix design.
type Preset struct {
	Name  string `json:"name"`
	Input Input  `json:"input"`
}

// Default returns the mix loaded when no other values have been chosen.
func Default() Input {
	return Input{
		Cement:           280,
		Slag:             0,
		FlyAsh:           0,
		Water:            175,
		Superplasticizer: 2.5,
		CoarseAggregate:  975,
		FineAggregate:    775,
		AgeDays:          28,
	}
}

// Presets returns the built-in mix designs, in display order.
func Presets() []Preset {
	return []Preset{
		{
			Name: "C20 - General Use",
			Input: Input{
				Cement: 280, Slag: 70, FlyAsh: 0,
				Water: 175, Superplasticizer: 2.5,
				CoarseAggregate: 950, FineAggregate: 750, AgeDays: 28,
			},
		},
		{
			Name: "C25 - Structural",
			Input: Input{
				Cement: 320, Slag: 80, FlyAsh: 20,
				Water: 165, Superplasticizer: 4.0,
				CoarseAggregate: 975, FineAggregate: 775, AgeDays: 28,
			},
		},
		{
			Name: "C30 - High Strength",
			Input: Input{
				Cement: 380, Slag: 95, FlyAsh: 45,
				Water: 155, Superplasticizer: 6.5,
				CoarseAggregate: 1000, FineAggregate: 800, AgeDays: 28,
			},
		},
		{
			Name: "Early Age - 7 days",
			Input: Input{
				Cement: 350, Slag: 0, FlyAsh: 0,
				Water: 170, Superplasticizer: 3.5,
				CoarseAggregate: 980, FineAggregate: 780, AgeDays: 7,
			},
		},
		{
			Name: "Mature - 90 days",
			Input: Input{
				Cement: 300, Slag: 150, FlyAsh: 75,
				Water: 160, Superplasticizer: 5.0,
				CoarseAggregate: 950, FineAggregate: 750, AgeDays: 90,
			},
		},
	}
}

// PresetByName looks up a preset by its display name.
func PresetByName(name string) (Preset, bool) {
	for _, p := range Presets() {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}
