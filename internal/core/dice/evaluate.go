package dice

// NotationResult is the detailed outcome of a notation roll.
type NotationResult struct {
	Spec       Spec
	Individual []int
	// Sum is the aggregate before the modifier.
	Sum int
	// Total is Sum plus the modifier, unclamped.
	Total int
}

// RollNotation parses text, rolls the die group and applies the modifier.
func (r *Roller) RollNotation(text string) (int, error) {
	spec, err := Parse(text)
	if err != nil {
		return 0, err
	}
	return r.RollSpec(spec)
}

// RollSpec rolls a parsed spec and applies its modifier.
func (r *Roller) RollSpec(spec Spec) (int, error) {
	if err := validateGroup(spec.Count, spec.Sides); err != nil {
		return 0, err
	}
	if !spec.fits() {
		return 0, InvalidNotation(spec.String())
	}
	sum, err := r.RollMultiple(spec.Count, spec.Sides)
	if err != nil {
		return 0, err
	}
	if spec.HasModifier {
		sum += spec.Modifier
	}
	return sum, nil
}

// RollNotationDetailed behaves like RollNotation and also reports every die.
func (r *Roller) RollNotationDetailed(text string) (NotationResult, error) {
	spec, err := Parse(text)
	if err != nil {
		return NotationResult{}, err
	}
	outcome, err := r.RollIndividual(spec.Count, spec.Sides)
	if err != nil {
		return NotationResult{}, err
	}
	total := outcome.Sum
	if spec.HasModifier {
		total += spec.Modifier
	}
	return NotationResult{
		Spec:       spec,
		Individual: outcome.Individual,
		Sum:        outcome.Sum,
		Total:      total,
	}, nil
}
