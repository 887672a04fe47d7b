package ranking

import (
	"math"

	"github.com/songslide/songslide/internal/data"
	apperrors "github.com/songslide/songslide/internal/errors"
)

// DefaultWeights fills any weight a stored or submitted configuration omits.
var DefaultWeights = data.Weights{
	TitleExact:   100,
	TitlePartial: 60,
	Chorus:       55,
	Verse1:       45,
	Lyrics:       20,
	Unit:         15,
	Fuzzy:        10,
}

// MergeWithDefaults returns p with every missing field taken from
// DefaultWeights. A nil p yields DefaultWeights.
func MergeWithDefaults(p *data.PartialWeights) data.Weights {
	w := DefaultWeights
	if p == nil {
		return w
	}
	w.ID = p.ID
	w.UpdatedAt = p.UpdatedAt
	pick(&w.TitleExact, p.TitleExact)
	pick(&w.TitlePartial, p.TitlePartial)
	pick(&w.Chorus, p.Chorus)
	pick(&w.Verse1, p.Verse1)
	pick(&w.Lyrics, p.Lyrics)
	pick(&w.Unit, p.Unit)
	pick(&w.Fuzzy, p.Fuzzy)
	return w
}

func pick(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// NamedWeight pairs a weight with its wire name.
type NamedWeight struct {
	Name  string
	Value float64
}

// Named lists the seven weights of w in wire order.
func Named(w data.Weights) []NamedWeight {
	return []NamedWeight{
		{"title_exact", w.TitleExact},
		{"title_partial", w.TitlePartial},
		{"chorus_weight", w.Chorus},
		{"verse1_weight", w.Verse1},
		{"lyrics_weight", w.Lyrics},
		{"unit_weight", w.Unit},
		{"fuzzy_weight", w.Fuzzy},
	}
}

// ValidateWeights reports the first weight that is NaN or infinite.
// Scoring itself never calls this; it is for code accepting weights from outside.
func ValidateWeights(w data.Weights) error {
	for _, nw := range Named(w) {
		if math.IsNaN(nw.Value) || math.IsInf(nw.Value, 0) {
			return &apperrors.ValidationError{Field: nw.Name, Message: "Invalid number for " + nw.Name}
		}
	}
	return nil
}

// ParseWeights turns a submitted configuration into a complete one. Unlike
// MergeWithDefaults, every field is required.
func ParseWeights(p *data.PartialWeights) (data.Weights, error) {
	if p == nil {
		p = &data.PartialWeights{}
	}
	fields := []struct {
		name string
		v    *float64
	}{
		{"title_exact", p.TitleExact},
		{"title_partial", p.TitlePartial},
		{"chorus_weight", p.Chorus},
		{"verse1_weight", p.Verse1},
		{"lyrics_weight", p.Lyrics},
		{"unit_weight", p.Unit},
		{"fuzzy_weight", p.Fuzzy},
	}
	for _, f := range fields {
		if f.v == nil {
			return data.Weights{}, &apperrors.ValidationError{Field: f.name, Message: "Invalid number for " + f.name}
		}
	}
	w := MergeWithDefaults(p)
	w.ID = ""
	w.UpdatedAt = nil
	if err := ValidateWeights(w); err != nil {
		return data.Weights{}, err
	}
	return w, nil
}
