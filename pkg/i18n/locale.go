package i18n

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/da"
	"github.com/go-playground/locales/de"
	"github.com/go-playground/locales/de_AT"
	"github.com/go-playground/locales/de_CH"
	"github.com/go-playground/locales/de_DE"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/en_GB"
	"github.com/go-playground/locales/en_US"
	"github.com/go-playground/locales/es"
	"github.com/go-playground/locales/es_ES"
	"github.com/go-playground/locales/fr"
	"github.com/go-playground/locales/fr_CA"
	"github.com/go-playground/locales/fr_FR"
	"github.com/go-playground/locales/it"
	"github.com/go-playground/locales/it_IT"
	"github.com/go-playground/locales/ja"
	"github.com/go-playground/locales/ko"
	"github.com/go-playground/locales/nb"
	"github.com/go-playground/locales/nl"
	"github.com/go-playground/locales/pl"
	"github.com/go-playground/locales/pt"
	"github.com/go-playground/locales/pt_BR"
	"github.com/go-playground/locales/ru"
	"github.com/go-playground/locales/sv"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"golang.org/x/text/language"
)

var (
	// ErrNoLocale is returned by a formatter called without a locale.
	ErrNoLocale = errors.New("i18n: no locale given")
	// ErrUnknownLocale is returned for codes that parse but have no formatter.
	ErrUnknownLocale = errors.New("i18n: unknown locale")
	// ErrUnknownCurrency is returned for currency codes without a CLDR entry.
	ErrUnknownCurrency = errors.New("i18n: unknown currency")
)

// Registry resolves locale codes to CLDR formatters. The zero value is not
// usable; use NewRegistry.
type Registry struct {
	uni *ut.UniversalTranslator
}

// NewRegistry returns a Registry preloaded with every formatter this package
// ships. English is the fallback but is never returned for an unknown code.
func NewRegistry() *Registry {
	fallback := en.New()
	uni := ut.New(fallback,
		fallback, en_US.New(), en_GB.New(),
		de.New(), de_DE.New(), de_AT.New(), de_CH.New(),
		fr.New(), fr_FR.New(), fr_CA.New(),
		es.New(), es_ES.New(),
		it.New(), it_IT.New(),
		nl.New(), pt.New(), pt_BR.New(),
		sv.New(), da.New(), nb.New(), pl.New(), ru.New(),
		ja.New(), ko.New(), zh.New(),
	)
	return &Registry{uni: uni}
}

// Add registers an extra formatter, replacing any existing one for the same locale.
func (r *Registry) Add(t locales.Translator) error {
	return r.uni.AddTranslator(t, true)
}

// Translator returns the formatter for code, trying the full code first and
// then its base language.
func (r *Registry) Translator(code string) (locales.Translator, error) {
	tag, err := ParseLocale(code)
	if err != nil {
		return nil, err
	}
	candidates := []string{strings.ReplaceAll(tag.String(), "-", "_")}
	if base, conf := tag.Base(); conf != language.No {
		candidates = append(candidates, base.String())
	}
	trans, found := r.uni.FindTranslator(candidates...)
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLocale, code)
	}
	return trans, nil
}

// ParseLocale validates a locale code and returns its BCP 47 tag. Both "_"
// and "-" separators are accepted.
func ParseLocale(code string) (language.Tag, error) {
	if code == "" {
		return language.Und, ErrNoLocale
	}
	tag, err := language.Parse(strings.ReplaceAll(code, "_", "-"))
	if err != nil {
		return language.Und, fmt.Errorf("%w: %q: %v", ErrUnknownLocale, code, err)
	}
	return tag, nil
}

// ParseLocales parses every code, failing on the first invalid one.
func ParseLocales(codes []string) ([]language.Tag, error) {
	tags := make([]language.Tag, 0, len(codes))
	for _, code := range codes {
		tag, err := ParseLocale(code)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}
