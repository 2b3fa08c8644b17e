package templating

import (
	"reflect"
	"slices"

	"github.com/CTAG07/podtags/pkg/i18n"
	"github.com/CTAG07/podtags/pkg/pod"
)

// TranslationContext translates messages for one document and counts every
// lookup in the pod's translation statistics.
type TranslationContext struct {
	Doc     *pod.Document
	Catalog i18n.Catalog
	Stats   *i18n.TranslationStats
}

// Gettext returns the translation of msgid, or msgid itself when there is
// none. Without a document the message is returned unchanged.
func (tc *TranslationContext) Gettext(msgid string) string {
	if tc == nil || tc.Doc == nil {
		return msgid
	}
	msg, found := "", false
	if tc.Catalog != nil {
		msg, found = tc.Catalog.Lookup(msgid)
	}
	if tc.Stats != nil {
		tc.Stats.Tick(msgid, found, tc.Doc.Locale, tc.Doc.DefaultLocale)
	}
	if !found {
		return msgid
	}
	return msg
}

// deepTranslate walks value and passes every string it finds through lookup.
// Maps and sets come back as new values; slices are translated in place and
// returned. Anything else is returned unchanged.
func deepTranslate(lookup func(string) string, value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return lookup(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[key] = deepTranslate(lookup, val)
		}
		return out
	case map[any]any:
		out := make(map[any]any, len(v))
		for key, val := range v {
			out[key] = deepTranslate(lookup, val)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(v))
		for key, val := range v {
			out[key] = lookup(val)
		}
		return out
	case map[string]struct{}:
		out := make(map[string]struct{}, len(v))
		for member := range v {
			out[lookup(member)] = struct{}{}
		}
		return out
	case map[string]bool:
		out := make(map[string]bool, len(v))
		for member, in := range v {
			if in {
				out[lookup(member)] = true
			}
		}
		return out
	case []any:
		for i, val := range v {
			v[i] = deepTranslate(lookup, val)
		}
		return v
	case []string:
		for i, val := range v {
			v[i] = lookup(val)
		}
		return v
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice {
		return value
	}
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i)
		translated := reflect.ValueOf(deepTranslate(lookup, elem.Interface()))
		if translated.IsValid() && translated.Type().AssignableTo(elem.Type()) {
			elem.Set(translated)
		}
	}
	return value
}

// copyContainers returns value with every slice and map reachable through
// slices and maps copied, so that deepTranslate can work on the result without
// touching values shared with other renders.
func copyContainers(value any) any {
	switch v := value.(type) {
	case nil, string:
		return v
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[key] = copyContainers(val)
		}
		return out
	case map[any]any:
		out := make(map[any]any, len(v))
		for key, val := range v {
			out[key] = copyContainers(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = copyContainers(val)
		}
		return out
	case []string:
		return slices.Clone(v)
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice || rv.IsNil() {
		return value
	}
	out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i)
		copied := reflect.ValueOf(copyContainers(elem.Interface()))
		if copied.IsValid() && copied.Type().AssignableTo(elem.Type()) {
			out.Index(i).Set(copied)
		} else {
			out.Index(i).Set(elem)
		}
	}
	return out.Interface()
}
