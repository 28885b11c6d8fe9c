package mix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInput_Vector(t *testing.T) {
	in := Input{
		Cement:           300,
		Slag:             10,
		FlyAsh:           20,
		Water:            180,
		Superplasticizer: 5,
		CoarseAggregate:  1000,
		FineAggregate:    750,
		AgeDays:          28,
	}

	v := in.Vector()
	require.Len(t, v, NumFeatures)
	assert.Equal(t, []float64{300, 10, 20, 180, 5, 1000, 750, 28}, v)
}

func TestInput_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Input)
		wantErr bool
	}{
		{"default is valid", func(in *Input) {}, false},
		{"cement below range", func(in *Input) { in.Cement = 100 }, true},
		{"cement above range", func(in *Input) { in.Cement = 600 }, true},
		{"water below range", func(in *Input) { in.Water = 50 }, true},
		{"age zero", func(in *Input) { in.AgeDays = 0 }, true},
		{"age above range", func(in *Input) { in.AgeDays = 400 }, true},
		{"boundary values valid", func(in *Input) {
			in.Cement = 150
			in.Water = 220
			in.AgeDays = 365
		}, false},
		{"zero slag and fly ash valid", func(in *Input) {
			in.Slag = 0
			in.FlyAsh = 0
		}, false},
		{"negative superplasticizer", func(in *Input) { in.Superplasticizer = -1 }, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			in := Default()
			tc.mutate(&in)
			err := in.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInput_Validate_ListsAllViolations(t *testing.T) {
	in := Default()
	in.Cement = 0
	in.Water = 999

	err := in.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cement")
	assert.Contains(t, err.Error(), "water")
}

func TestInput_Clamp(t *testing.T) {
	in := Input{
		Cement:           9999,
		Slag:             -50,
		FlyAsh:           100,
		Water:            0,
		Superplasticizer: 30,
		CoarseAggregate:  800,
		FineAggregate:    950,
		AgeDays:          0,
	}

	clamped := in.Clamp()
	require.NoError(t, clamped.Validate())

	assert.Equal(t, 500.0, clamped.Cement)
	assert.Equal(t, 0.0, clamped.Slag)
	assert.Equal(t, 100.0, clamped.FlyAsh) // already in range
	assert.Equal(t, 130.0, clamped.Water)
	assert.Equal(t, 25.0, clamped.Superplasticizer)
	assert.Equal(t, 850.0, clamped.CoarseAggregate)
	assert.Equal(t, 900.0, clamped.FineAggregate)
	assert.Equal(t, 1.0, clamped.AgeDays)
}

func TestInput_ClampIdempotent(t *testing.T) {
	in := Input{Cement: -10, Water: 500, AgeDays: 1000}
	once := in.Clamp()
	twice := once.Clamp()
	assert.Equal(t, once, twice)
}

func TestInput_DerivedMetrics(t *testing.T) {
	in := Input{Cement: 300, Slag: 100, FlyAsh: 50, Water: 180}

	assert.InDelta(t, 0.6, in.WaterCementRatio(), 1e-9)
	assert.Equal(t, 450.0, in.TotalCementitious())
}

func TestInput_WaterCementRatio_ZeroCement(t *testing.T) {
	in := Input{Water: 180}
	assert.Equal(t, 0.0, in.WaterCementRatio())
}

func TestValidRanges_CoverAllFeatures(t *testing.T) {
	require.Len(t, FeatureNames, NumFeatures)
	for _, name := range FeatureNames {
		r, ok := ValidRanges[name]
		require.True(t, ok, "missing range for %s", name)
		assert.Less(t, r.Min, r.Max, "range for %s", name)
		_, ok = FriendlyNames[name]
		assert.True(t, ok, "missing friendly name for %s", name)
	}
}

func TestPresets_AllValid(t *testing.T) {
	presets := Presets()
	require.Len(t, presets, 5)

	seen := make(map[string]bool)
	for _, p := range presets {
		assert.NoError(t, p.Input.Validate(), "preset %q", p.Name)
		assert.False(t, seen[p.Name], "duplicate preset name %q", p.Name)
		seen[p.Name] = true
	}
}

func TestPresetByName(t *testing.T) {
	p, ok := PresetByName("C25 - Structural")
	require.True(t, ok)
	assert.Equal(t, 320.0, p.Input.Cement)

	_, ok = PresetByName("does not exist")
	assert.False(t, ok)
}

func TestDefault_IsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}
