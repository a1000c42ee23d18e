package params

// Merge combines two JSON-shaped maps recursively with defined
// precedence: values already present in dst win, src fills the gaps. When
// both sides hold an object for the same key the merge recurses; any other
// conflict keeps dst. Neither input is mutated.
//
// This is the escape-hatch semantics: extra-body fields supplement the
// built request but can never clobber an explicitly mapped field.
func Merge(dst, src map[string]any) map[string]any {
	out := make(map[string]any, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, sv := range src {
		dv, exists := out[k]
		if !exists {
			out[k] = sv
			continue
		}
		dm, dok := dv.(map[string]any)
		sm, sok := sv.(map[string]any)
		if dok && sok {
			out[k] = Merge(dm, sm)
		}
		// Non-object conflict: dst already won.
	}
	return out
}
