package common

// DeepCopy returns a structural copy of a decoded JSON value.
// Maps and lists are copied recursively; scalars are shared.
func DeepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CopyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = DeepCopy(item)
		}

		return out
	default:
		return v
	}
}

// CopyMap returns a deep copy of m. A nil map yields an empty map.
func CopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = DeepCopy(v)
	}

	return out
}
