package templating

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidArgument is returned when a tag or filter is called with arguments
// it cannot use. The wrapped message names the argument and its Go type.
var ErrInvalidArgument = errors.New("templating: invalid argument")

// Kind describes how a tag is wrapped when it is bound to a document.
type Kind uint8

const (
	// KindMemo answers repeated identical calls within a build from the memo.
	KindMemo Kind = 1 << iota
	// KindPathDep records the first positional argument as a dependency.
	KindPathDep
	// KindResultDep records the returned content as a dependency and defaults
	// the locale keyword to the document's locale.
	KindResultDep
	// KindLocale defaults the locale keyword to the document's locale.
	KindLocale
)

// Shape tells the result recorder whether a tag returns one item or many.
type Shape uint8

const (
	ShapeSingle Shape = iota
	ShapeSequence
)

// TagSpec declares a template function: how many positional arguments it
// takes, which keywords it accepts, and how it is wrapped.
type TagSpec struct {
	Name     string
	Arity    int
	Keywords []string
	Kind     Kind
	Shape    Shape
	// Piped tags take their subject as the last template argument, so that
	// {{ .Price | currency "locale" "de" }} reads like a filter.
	Piped bool
	Fn    TagFunc
}

// Args are the parsed arguments of a single call.
type Args struct {
	Positional []any
	Keyword    map[string]any
	tag        string
}

// parseArgs splits raw template arguments into positional and keyword
// arguments. Keywords follow the positionals either as "name" value pairs or
// as a single map built with kw.
//
// A piped tag accepts its subject first, as in {{ currency 10.5 "locale" "de" }},
// or last, as in {{ .Price | currency "locale" "de" }}. With keywords present
// the subject-first reading is tried before the piped one. Without keywords a
// piped tag taking several positionals always reads its subject last.
func parseArgs(spec TagSpec, raw []any) (Args, error) {
	if !spec.Piped || len(raw) < 2 {
		return splitArgs(spec, raw)
	}
	piped := append([]any{raw[len(raw)-1]}, raw[:len(raw)-1]...)
	if len(raw) > spec.Arity {
		if args, err := splitArgs(spec, raw); err == nil {
			return args, nil
		}
	}
	return splitArgs(spec, piped)
}

func splitArgs(spec TagSpec, raw []any) (Args, error) {
	if len(raw) < spec.Arity {
		return Args{}, fmt.Errorf("%w: %s takes %d positional arguments, got %d",
			ErrInvalidArgument, spec.Name, spec.Arity, len(raw))
	}
	args := Args{
		Positional: raw[:spec.Arity],
		Keyword:    make(map[string]any),
		tag:        spec.Name,
	}
	rest := raw[spec.Arity:]

	if len(rest) == 1 {
		m, ok := rest[0].(map[string]any)
		if !ok {
			return Args{}, fmt.Errorf("%w: %s: extra argument must be a keyword map, got %T",
				ErrInvalidArgument, spec.Name, rest[0])
		}
		for name, value := range m {
			if err := args.setKeyword(spec, name, value); err != nil {
				return Args{}, err
			}
		}
		return args, nil
	}
	if len(rest)%2 != 0 {
		return Args{}, fmt.Errorf("%w: %s: keyword arguments must come in name/value pairs",
			ErrInvalidArgument, spec.Name)
	}
	for i := 0; i < len(rest); i += 2 {
		name, ok := rest[i].(string)
		if !ok {
			return Args{}, fmt.Errorf("%w: %s: argument %d must be a keyword name, got %T",
				ErrInvalidArgument, spec.Name, spec.Arity+i+1, rest[i])
		}
		if err := args.setKeyword(spec, name, rest[i+1]); err != nil {
			return Args{}, err
		}
	}
	return args, nil
}

func (a *Args) setKeyword(spec TagSpec, name string, value any) error {
	if !slices.Contains(spec.Keywords, name) {
		return fmt.Errorf("%w: %s does not accept keyword %q", ErrInvalidArgument, spec.Name, name)
	}
	a.Keyword[name] = value
	return nil
}

// withKeyword returns a copy of a with one keyword set.
func (a Args) withKeyword(name string, value any) Args {
	kw := make(map[string]any, len(a.Keyword)+1)
	for k, v := range a.Keyword {
		kw[k] = v
	}
	kw[name] = value
	a.Keyword = kw
	return a
}

// String returns the named keyword as a string. Missing keywords and nil
// values yield "".
func (a Args) String(name string) (string, error) {
	v, ok := a.Keyword[name]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", a.invalid(name, v)
	}
	return s, nil
}

// Bool returns the named keyword as a bool, or def when it is missing.
func (a Args) Bool(name string, def bool) (bool, error) {
	v, ok := a.Keyword[name]
	if !ok || v == nil {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, a.invalid(name, v)
	}
	return b, nil
}

// Int returns the named keyword as an int, or def when it is missing.
func (a Args) Int(name string, def int) (int, error) {
	v, ok := a.Keyword[name]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n == float64(int(n)) {
			return int(n), nil
		}
	}
	return 0, a.invalid(name, v)
}

// Strings returns the named keyword as a list of strings. Both []string and
// []any holding strings are accepted.
func (a Args) Strings(name string) ([]string, error) {
	v, ok := a.Keyword[name]
	if !ok || v == nil {
		return nil, nil
	}
	list, err := toStrings(v)
	if err != nil {
		return nil, a.invalid(name, v)
	}
	return list, nil
}

// PositionalString returns positional argument i as a string.
func (a Args) PositionalString(i int, name string) (string, error) {
	s, ok := a.Positional[i].(string)
	if !ok {
		return "", a.invalid(name, a.Positional[i])
	}
	return s, nil
}

func (a Args) invalid(name string, value any) error {
	return fmt.Errorf("%w: %s: %s has unsupported type %T", ErrInvalidArgument, a.tag, name, value)
}

func toStrings(v any) ([]string, error) {
	switch list := v.(type) {
	case []string:
		return list, nil
	case []any:
		out := make([]string, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: element %d is %T", ErrInvalidArgument, i, item)
			}
			out[i] = s
		}
		return out, nil
	case string:
		return []string{list}, nil
	}
	return nil, fmt.Errorf("%w: %T is not a list of strings", ErrInvalidArgument, v)
}

// kw builds a keyword map from alternating names and values, for passing
// keywords through a variable: {{ $opts := kw "locale" "de" }}.
func kw(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("%w: kw needs name/value pairs, got %d arguments", ErrInvalidArgument, len(pairs))
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("%w: kw: argument %d must be a keyword name, got %T", ErrInvalidArgument, i+1, pairs[i])
		}
		m[name] = pairs[i+1]
	}
	return m, nil
}
