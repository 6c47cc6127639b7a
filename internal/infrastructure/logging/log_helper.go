package logging

// zapFields flattens an extra map into zap's alternating key/value form.
func zapFields(extra map[ExtraKey]any) []any {
	fields := make([]any, 0, 2*len(extra))
	for k, v := range extra {
		fields = append(fields, string(k), v)
	}
	return fields
}

// zeroFields converts an extra map into the string-keyed map zerolog expects.
func zeroFields(extra map[ExtraKey]any) map[string]any {
	fields := make(map[string]any, len(extra))
	for k, v := range extra {
		fields[string(k)] = v
	}
	return fields
}
