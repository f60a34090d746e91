package grid

// Property names of the results API.
const (
	PropElements   = "elements"
	PropNuclides   = "nuclides"
	PropIncomplete = "incomplete"
)

// SelectProps returns the entries of available named in requested.
// Unknown names are ignored.
func SelectProps(available map[string]any, requested []string) map[string]any {
	out := make(map[string]any)
	for _, name := range requested {
		if v, ok := available[name]; ok {
			out[name] = v
		}
	}
	return out
}

// Props exposes the element result to the results API.
func (r *ElementResult) Props() map[string]any {
	return map[string]any{
		PropElements:   r.Elements,
		PropIncomplete: r.Incomplete,
	}
}

// Props exposes the nuclide result to the results API.
func (r *NuclideResult) Props() map[string]any {
	return map[string]any{
		PropNuclides:   r.Nuclides,
		PropIncomplete: r.Incomplete,
	}
}
