// Package mix defines the concrete mix design parameters accepted by the
// strength predictor. Each parameter carries a documented valid range
// (kg/m³ for materials, days for curing age); inputs are validated or
// clamped at this boundary so the model handler never sees an
// out-of-range feature vector.
package mix

import (
	"fmt"
	"strings"
)

// NumFeatures is the fixed size of the model's input vector.
const NumFeatures = 8

// Input describes a single concrete mix plus its curing age.
// Field order matches the feature order the model was trained with.
type Input struct {
	Cement           float64 `json:"cement_kg_m3" yaml:"cement"`
	Slag             float64 `json:"slag_kg_m3" yaml:"slag"`
	FlyAsh           float64 `json:"fly_ash_kg_m3" yaml:"flyAsh"`
	Water            float64 `json:"water_kg_m3" yaml:"water"`
	Superplasticizer float64 `json:"superplasticizer_kg_m3" yaml:"superplasticizer"`
	CoarseAggregate  float64 `json:"coarse_aggregate_kg_m3" yaml:"coarseAggregate"`
	FineAggregate    float64 `json:"fine_aggregate_kg_m3" yaml:"fineAggregate"`
	AgeDays          float64 `json:"age_days" yaml:"ageDays"`
}

// Range is a closed interval of valid values for one parameter.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	// Unit is the display unit, "kg/m³" or "days".
	Unit string `json:"unit"`
}

// Contains reports whether v lies within the closed interval.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Clamp returns v limited to the interval.
func (r Range) Clamp(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// FeatureNames lists the model features in training order.
var FeatureNames = []string{
	"cement",
	"slag",
	"fly_ash",
	"water",
	"superplasticizer",
	"coarse_aggregate",
	"fine_aggregate",
	"age_days",
}

// FriendlyNames maps feature keys to display names used in reports.
var FriendlyNames = map[string]string{
	"cement":           "Cement",
	"slag":             "Blast Furnace Slag",
	"fly_ash":          "Fly Ash",
	"water":            "Water",
	"superplasticizer": "Superplasticizer",
	"coarse_aggregate": "Coarse Aggregate",
	"fine_aggregate":   "Fine Aggregate",
	"age_days":         "Curing Age",
}

// ValidRanges holds the documented closed range for every parameter,
// keyed by feature name.
var ValidRanges = map[string]Range{
	"cement":           {Min: 150, Max: 500, Unit: "kg/m³"},
	"slag":             {Min: 0, Max: 300, Unit: "kg/m³"},
	"fly_ash":          {Min: 0, Max: 200, Unit: "kg/m³"},
	"water":            {Min: 130, Max: 220, Unit: "kg/m³"},
	"superplasticizer": {Min: 0, Max: 25, Unit: "kg/m³"},
	"coarse_aggregate": {Min: 850, Max: 1100, Unit: "kg/m³"},
	"fine_aggregate":   {Min: 650, Max: 900, Unit: "kg/m³"},
	"age_days":         {Min: 1, Max: 365, Unit: "days"},
}

// Vector returns the ordered feature vector for model inference.
func (in Input) Vector() []float64 {
	return []float64{
		in.Cement,
		in.Slag,
		in.FlyAsh,
		in.Water,
		in.Superplasticizer,
		in.CoarseAggregate,
		in.FineAggregate,
		in.AgeDays,
	}
}

// fields pairs each feature name with a pointer to its value, in order.
func (in *Input) fields() []struct {
	name  string
	value *float64
} {
	return []struct {
		name  string
		value *float64
	}{
		{"cement", &in.Cement},
		{"slag", &in.Slag},
		{"fly_ash", &in.FlyAsh},
		{"water", &in.Water},
		{"superplasticizer", &in.Superplasticizer},
		{"coarse_aggregate", &in.CoarseAggregate},
		{"fine_aggregate", &in.FineAggregate},
		{"age_days", &in.AgeDays},
	}
}

// Validate checks every parameter against its documented range and
// returns an error naming each offending field, or nil.
func (in Input) Validate() error {
	var violations []string
	for _, f := range in.fields() {
		r := ValidRanges[f.name]
		if !r.Contains(*f.value) {
			violations = append(violations,
				fmt.Sprintf("%s: %g outside valid range [%g, %g]", f.name, *f.value, r.Min, r.Max))
		}
	}
	if len(violations) > 0 {
		return fmt.Errorf("invalid mix input: %s", strings.Join(violations, "; "))
	}
	return nil
}

// Clamp returns a copy of the input with every parameter limited to its
// documented range. The result always passes Validate.
func (in Input) Clamp() Input {
	out := in
	for _, f := range out.fields() {
		*f.value = ValidRanges[f.name].Clamp(*f.value)
	}
	return out
}

// WaterCementRatio returns the water-to-cement ratio, 0 when cement is 0.
func (in Input) WaterCementRatio() float64 {
	if in.Cement == 0 {
		return 0
	}
	return in.Water / in.Cement
}

// TotalCementitious returns the combined mass of cementitious materials
// (cement, slag, fly ash) in kg/m³.
func (in Input) TotalCementitious() float64 {
	return in.Cement + in.Slag + in.FlyAsh
}
