package i18n

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/currency"
)

// Date and time styles, matching the CLDR widths.
const (
	StyleShort  = "short"
	StyleMedium = "medium"
	StyleLong   = "long"
	StyleFull   = "full"
)

// DefaultCurrency is used when a currency amount is formatted without a code.
const DefaultCurrency = "USD"

// maxDecimalDigits caps the fraction digits kept by Decimal, like the CLDR
// "#,##0.###" pattern.
const maxDecimalDigits = 3

var currencies = map[string]currency.Type{
	"AUD": currency.AUD,
	"BRL": currency.BRL,
	"CAD": currency.CAD,
	"CHF": currency.CHF,
	"CNY": currency.CNY,
	"DKK": currency.DKK,
	"EUR": currency.EUR,
	"GBP": currency.GBP,
	"INR": currency.INR,
	"JPY": currency.JPY,
	"KRW": currency.KRW,
	"MXN": currency.MXN,
	"NOK": currency.NOK,
	"PLN": currency.PLN,
	"RUB": currency.RUB,
	"SEK": currency.SEK,
	"USD": currency.USD,
}

// dateLayouts accepted when a date arrives as a string.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
}

// Formatter formats values for a locale. It is safe for concurrent use.
type Formatter struct {
	registry *Registry
}

// NewFormatter returns a Formatter backed by registry, or by a fresh
// NewRegistry when registry is nil.
func NewFormatter(registry *Registry) *Formatter {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Formatter{registry: registry}
}

// Currency formats value as an amount of the ISO 4217 currency code.
func (f *Formatter) Currency(value any, code, locale string) (string, error) {
	num, err := ToFloat(value)
	if err != nil {
		return "", err
	}
	if code == "" {
		code = DefaultCurrency
	}
	code = strings.ToUpper(code)
	cur, ok := currencies[code]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
	}
	trans, err := f.registry.Translator(locale)
	if err != nil {
		return "", err
	}
	return trans.FmtCurrency(num, 2, cur), nil
}

// Decimal formats value with grouping and up to three fraction digits.
func (f *Formatter) Decimal(value any, locale string) (string, error) {
	num, err := ToFloat(value)
	if err != nil {
		return "", err
	}
	trans, err := f.registry.Translator(locale)
	if err != nil {
		return "", err
	}
	return trans.FmtNumber(num, fractionDigits(num, maxDecimalDigits)), nil
}

// Number formats value with grouping, keeping every significant fraction digit.
func (f *Formatter) Number(value any, locale string) (string, error) {
	num, err := ToFloat(value)
	if err != nil {
		return "", err
	}
	trans, err := f.registry.Translator(locale)
	if err != nil {
		return "", err
	}
	return trans.FmtNumber(num, fractionDigits(num, -1)), nil
}

// Percent formats a ratio (0.25 is 25%) as a percentage.
func (f *Formatter) Percent(value any, locale string) (string, error) {
	num, err := ToFloat(value)
	if err != nil {
		return "", err
	}
	trans, err := f.registry.Translator(locale)
	if err != nil {
		return "", err
	}
	pct := num * 100
	return trans.FmtPercent(pct, fractionDigits(pct, 2)), nil
}

// Date formats the date part of value in one of the CLDR styles.
func (f *Formatter) Date(value any, style, locale string) (string, error) {
	return f.formatTime(value, style, locale, dateFuncs)
}

// Time formats the time-of-day part of value in one of the CLDR styles.
func (f *Formatter) Time(value any, style, locale string) (string, error) {
	return f.formatTime(value, style, locale, timeFuncs)
}

// DateTime formats both parts of value, date first, in the same style.
func (f *Formatter) DateTime(value any, style, locale string) (string, error) {
	date, err := f.Date(value, style, locale)
	if err != nil {
		return "", err
	}
	clock, err := f.Time(value, style, locale)
	if err != nil {
		return "", err
	}
	return date + " " + clock, nil
}

type styleFuncs map[string]func(locales.Translator, time.Time) string

var dateFuncs = styleFuncs{
	StyleShort:  locales.Translator.FmtDateShort,
	StyleMedium: locales.Translator.FmtDateMedium,
	StyleLong:   locales.Translator.FmtDateLong,
	StyleFull:   locales.Translator.FmtDateFull,
}

var timeFuncs = styleFuncs{
	StyleShort:  locales.Translator.FmtTimeShort,
	StyleMedium: locales.Translator.FmtTimeMedium,
	StyleLong:   locales.Translator.FmtTimeLong,
	StyleFull:   locales.Translator.FmtTimeFull,
}

func (f *Formatter) formatTime(value any, style, locale string, funcs styleFuncs) (string, error) {
	t, err := ToTime(value)
	if err != nil {
		return "", err
	}
	if style == "" {
		style = StyleMedium
	}
	format, ok := funcs[style]
	if !ok {
		return "", fmt.Errorf("i18n: unknown style %q", style)
	}
	trans, err := f.registry.Translator(locale)
	if err != nil {
		return "", err
	}
	return format(trans, t), nil
}

// ToFloat converts the numeric types templates commonly hold, and numeric
// strings, to float64.
func ToFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int8:
		return float64(v), nil
	case int16:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case uint8:
		return float64(v), nil
	case uint16:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case string:
		num, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("i18n: %q is not a number: %w", v, err)
		}
		return num, nil
	default:
		return 0, fmt.Errorf("i18n: cannot format %T as a number", value)
	}
}

// ToTime accepts time.Time, *time.Time and the string layouts in dateLayouts.
func ToTime(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case *time.Time:
		if v == nil {
			return time.Time{}, fmt.Errorf("i18n: nil time")
		}
		return *v, nil
	case string:
		var firstErr error
		for _, layout := range dateLayouts {
			t, err := time.Parse(layout, v)
			if err == nil {
				return t, nil
			}
			if firstErr == nil {
				firstErr = err
			}
		}
		return time.Time{}, fmt.Errorf("i18n: unparseable date %q: %w", v, firstErr)
	default:
		return time.Time{}, fmt.Errorf("i18n: cannot format %T as a date", value)
	}
}

// fractionDigits reports how many fraction digits num needs, capped at max
// when max is not negative.
func fractionDigits(num float64, max int) uint64 {
	if math.IsInf(num, 0) || math.IsNaN(num) {
		return 0
	}
	s := strconv.FormatFloat(num, 'f', -1, 64)
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return 0
	}
	n := len(s) - dot - 1
	if max >= 0 && n > max {
		n = max
	}
	return uint64(n)
}
