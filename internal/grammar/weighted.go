package grammar

// Option is one weighted candidate of a draw.
type Option struct {
	Weight float64
	Value  string
}

// ChooseWeighted picks one value from options proportionally to weight.
// A non-positive total falls back to the first value ("" when empty).
func ChooseWeighted(options []Option, rng Rand) string {
	i := ChooseWeightedIndex(options, rng)
	if i < 0 {
		return ""
	}
	return options[i].Value
}

// ChooseWeightedIndex is ChooseWeighted returning the position of the pick,
// or -1 for an empty slice.
func ChooseWeightedIndex(options []Option, rng Rand) int {
	if len(options) == 0 {
		return -1
	}

	total := 0.0
	for _, o := range options {
		total += o.Weight
	}
	if total <= 0 {
		return 0
	}

	roll := rng.Float64() * total
	for i, o := range options {
		roll -= o.Weight
		if roll <= 0 {
			return i
		}
	}
	// Rounding can leave a sliver of roll after the last subtraction.
	return len(options) - 1
}
