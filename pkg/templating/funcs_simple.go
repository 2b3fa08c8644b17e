package templating

import "reflect"

// add returns a + b.
func add(a, b int) int {
	return a + b
}

// sub returns a - b.
func sub(a, b int) int {
	return a - b
}

// list returns its arguments as a slice.
func list(args ...any) []any {
	return args
}

// defaultValue returns value, or def when value is nil or its type's zero
// value. It reads as {{ .Doc.Fields.subtitle | default "Untitled" }}.
func defaultValue(def, value any) any {
	if isSet(value) {
		return value
	}
	return def
}

// isSet returns true if a value is not its zero value.
func isSet(val any) bool {
	v := reflect.ValueOf(val)
	if !v.IsValid() {
		return false
	}
	return !v.IsZero()
}
