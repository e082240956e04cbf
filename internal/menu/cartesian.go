package menu

// ComboOption is one selected option inside a combination.
type ComboOption struct {
	GroupName string
	Name      string
}

// Combine builds the full Cartesian product across groups, preserving group
// order (outer groups vary slowest) and option order within each group. A
// single group yields one option per combination; no groups yields nothing.
func Combine(groups [][]ComboOption) [][]ComboOption {
	if len(groups) == 0 {
		return nil
	}

	out := [][]ComboOption{{}}
	for _, options := range groups {
		next := make([][]ComboOption, 0, len(out)*len(options))
		for _, combo := range out {
			for _, opt := range options {
				extended := make([]ComboOption, len(combo), len(combo)+1)
				copy(extended, combo)
				next = append(next, append(extended, opt))
			}
		}
		out = next
	}
	return out
}
