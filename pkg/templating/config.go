package templating

import (
	"fmt"
	"slices"

	"github.com/CTAG07/podtags/pkg/i18n"
)

// TemplateConfig holds all configuration options for the templating engine.
type TemplateConfig struct {
	// DefaultView is rendered for documents that do not name a view.
	DefaultView string

	// MemoEnabled controls whether memoized tags share results within a build.
	MemoEnabled bool

	// MemoMaxEntries bounds how many results a build's memo stores. Zero
	// means no bound.
	MemoMaxEntries int

	// DefaultCurrency is the ISO 4217 code used by the currency filter when
	// the template names none.
	DefaultCurrency string

	// DateStyle is the CLDR style (short, medium, long or full) used by the
	// date and time filters when the template names none.
	DateStyle string

	// MaxRenderDepth limits how deeply the render filter may nest.
	MaxRenderDepth int
}

// DefaultConfig returns a TemplateConfig with safe default values.
func DefaultConfig() TemplateConfig {
	return TemplateConfig{
		DefaultView:     "default.tmpl.html",
		MemoEnabled:     true,
		MemoMaxEntries:  10_000,
		DefaultCurrency: i18n.DefaultCurrency,
		DateStyle:       i18n.StyleMedium,
		MaxRenderDepth:  8,
	}
}

// Validate reports the first invalid setting.
func (c TemplateConfig) Validate() error {
	styles := []string{i18n.StyleShort, i18n.StyleMedium, i18n.StyleLong, i18n.StyleFull}
	if !slices.Contains(styles, c.DateStyle) {
		return fmt.Errorf("invalid date style %q", c.DateStyle)
	}
	if c.MemoMaxEntries < 0 {
		return fmt.Errorf("memo max entries must not be negative, got %d", c.MemoMaxEntries)
	}
	if c.MaxRenderDepth < 1 {
		return fmt.Errorf("max render depth must be at least 1, got %d", c.MaxRenderDepth)
	}
	return nil
}
