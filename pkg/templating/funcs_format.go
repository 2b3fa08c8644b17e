package templating

import (
	"context"
)

// Formatting filters read their locale from the "locale" keyword, which the
// binding defaults to the document's locale.

func currencyFilter(_ context.Context, s Scope, args Args) (any, error) {
	code, err := args.String("currency")
	if err != nil {
		return nil, err
	}
	if code == "" {
		code = s.Build.config.DefaultCurrency
	}
	locale, err := args.String("locale")
	if err != nil {
		return nil, err
	}
	return s.Build.formatter().Currency(args.Positional[0], code, locale)
}

func decimalFilter(_ context.Context, s Scope, args Args) (any, error) {
	locale, err := args.String("locale")
	if err != nil {
		return nil, err
	}
	return s.Build.formatter().Decimal(args.Positional[0], locale)
}

func numberFilter(_ context.Context, s Scope, args Args) (any, error) {
	locale, err := args.String("locale")
	if err != nil {
		return nil, err
	}
	return s.Build.formatter().Number(args.Positional[0], locale)
}

func percentFilter(_ context.Context, s Scope, args Args) (any, error) {
	locale, err := args.String("locale")
	if err != nil {
		return nil, err
	}
	return s.Build.formatter().Percent(args.Positional[0], locale)
}

func dateFilter(_ context.Context, s Scope, args Args) (any, error) {
	style, locale, err := styleAndLocale(s, args)
	if err != nil {
		return nil, err
	}
	return s.Build.formatter().Date(args.Positional[0], style, locale)
}

func datetimeFilter(_ context.Context, s Scope, args Args) (any, error) {
	style, locale, err := styleAndLocale(s, args)
	if err != nil {
		return nil, err
	}
	return s.Build.formatter().DateTime(args.Positional[0], style, locale)
}

func timeFilter(_ context.Context, s Scope, args Args) (any, error) {
	style, locale, err := styleAndLocale(s, args)
	if err != nil {
		return nil, err
	}
	return s.Build.formatter().Time(args.Positional[0], style, locale)
}

func styleAndLocale(s Scope, args Args) (style, locale string, err error) {
	if style, err = args.String("format"); err != nil {
		return "", "", err
	}
	if style == "" {
		style = s.Build.config.DateStyle
	}
	if locale, err = args.String("locale"); err != nil {
		return "", "", err
	}
	return style, locale, nil
}

// translationContext returns the translator for the scope's document.
func translationContext(s Scope) *TranslationContext {
	if s.Doc == nil {
		return &TranslationContext{}
	}
	return &TranslationContext{
		Doc:     s.Doc,
		Catalog: s.Build.pod.Catalog(s.Doc.Locale),
		Stats:   s.Build.pod.TranslationStats(),
	}
}

func gettextFilter(_ context.Context, s Scope, args Args) (any, error) {
	msgid, err := args.PositionalString(0, "message")
	if err != nil {
		return nil, err
	}
	return translationContext(s).Gettext(msgid), nil
}

// deeptransFilter translates a copy of its argument. Values reaching templates
// may come from the build memo and are shared by every document rendering.
func deeptransFilter(_ context.Context, s Scope, args Args) (any, error) {
	return deepTranslate(translationContext(s).Gettext, copyContainers(args.Positional[0])), nil
}
