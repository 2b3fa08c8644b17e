package i18n

// Catalog looks up translated messages for one locale.
type Catalog interface {
	// Lookup returns the translation of msgid and whether one exists.
	Lookup(msgid string) (string, bool)
}

// MapCatalog is a Catalog backed by a msgid -> translation map. Empty
// translations count as missing.
type MapCatalog map[string]string

// Lookup implements Catalog.
func (c MapCatalog) Lookup(msgid string) (string, bool) {
	msg, ok := c[msgid]
	if !ok || msg == "" {
		return "", false
	}
	return msg, true
}

// Gettext translates msgid with catalog, returning msgid itself when the
// catalog is nil or has no translation.
func Gettext(catalog Catalog, msgid string) string {
	if catalog == nil {
		return msgid
	}
	if msg, ok := catalog.Lookup(msgid); ok {
		return msg
	}
	return msgid
}
