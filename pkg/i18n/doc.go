/*
Package i18n formats numbers, currency amounts, dates and times for a locale,
and holds the translation catalogs and usage statistics consulted while
rendering pod documents.

Locale codes are validated with golang.org/x/text/language and resolved to
CLDR formatters from github.com/go-playground/locales. Codes may use either
separator ("de_DE" or "de-DE"); a region-specific code falls back to its base
language when no regional formatter is registered.
*/
package i18n
