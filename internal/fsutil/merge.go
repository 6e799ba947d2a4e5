package fsutil

import "reflect"

// MergeOptions controls how DeepMerge treats arrays.
type MergeOptions struct {
	// MergeArrays unions arrays (existing order first, new unique items
	// appended). When false an array from src replaces the one in dst.
	MergeArrays bool
}

// DeepMerge returns a new object holding dst with src merged on top.
// Nested objects merge recursively, scalars from src win, and keys that only
// exist in dst are kept untouched. Neither input is modified.
func DeepMerge(dst, src map[string]any, opts MergeOptions) map[string]any {
	out := make(map[string]any, len(dst)+len(src))
	for k, v := range dst {
		out[k] = clone(v)
	}
	for k, sv := range src {
		dv, exists := out[k]
		if !exists {
			out[k] = clone(sv)
			continue
		}
		dm, dIsMap := dv.(map[string]any)
		sm, sIsMap := sv.(map[string]any)
		if dIsMap && sIsMap {
			out[k] = DeepMerge(dm, sm, opts)
			continue
		}
		da, dIsArr := dv.([]any)
		sa, sIsArr := sv.([]any)
		if opts.MergeArrays && dIsArr && sIsArr {
			out[k] = UnionArrays(da, sa)
			continue
		}
		out[k] = clone(sv)
	}
	return out
}

// UnionArrays returns a followed by the items of b not already present.
func UnionArrays(a, b []any) []any {
	out := make([]any, 0, len(a)+len(b))
	for _, item := range a {
		if !containsValue(out, item) {
			out = append(out, clone(item))
		}
	}
	for _, item := range b {
		if !containsValue(out, item) {
			out = append(out, clone(item))
		}
	}
	return out
}

func containsValue(list []any, v any) bool {
	for _, item := range list {
		if reflect.DeepEqual(item, v) {
			return true
		}
	}
	return false
}

func clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, vv := range t {
			m[k] = clone(vv)
		}
		return m
	case []any:
		a := make([]any, len(t))
		for i, vv := range t {
			a[i] = clone(vv)
		}
		return a
	default:
		return v
	}
}
