// Package i18n provides internationalization support for error messages.
//
// Message templates are registered with golang.org/x/text/message per locale
// and may reference error metadata with text/template syntax ({{.Sides}}).
package i18n

import (
	"bytes"
	"strings"
	"sync"
	"text/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// BaseLocale is the fallback locale for unknown or empty locales.
const BaseLocale = "en-US"

// Code is a machine-readable error code (duplicated from errors package to avoid cycle).
type Code = string

// Catalog renders error messages for a specific locale.
type Catalog struct {
	tag     language.Tag
	known   map[Code]bool
	printer *message.Printer
}

var (
	catalogsMu sync.RWMutex
	// catalogs holds resolved catalogs by requested locale.
	catalogs = map[string]*Catalog{}
)

var baseTag = language.AmericanEnglish

var (
	builtin = catalog.NewBuilder(catalog.Fallback(language.AmericanEnglish))
	// localeCodes tracks which codes each registered locale translates.
	localeCodes = map[language.Tag]map[Code]bool{}
	supported   []language.Tag
	matcher     language.Matcher
)

func init() {
	for tag, messages := range builtinMessages {
		register(tag, messages)
	}
}

// register adds a locale's messages to the builtin catalog.
func register(tag language.Tag, messages map[Code]string) {
	codes := localeCodes[tag]
	if codes == nil {
		codes = map[Code]bool{}
		localeCodes[tag] = codes
		supported = append(supported, tag)
	}
	for code, tmpl := range messages {
		// Escape printf verbs: templates are rendered by text/template, not fmt.
		if err := builtin.SetString(tag, code, strings.ReplaceAll(tmpl, "%", "%%")); err != nil {
			panic(err)
		}
		codes[code] = true
	}
	matcher = language.NewMatcher(orderedTags())
}

// orderedTags keeps the base locale first so the matcher falls back to it.
func orderedTags() []language.Tag {
	out := []language.Tag{baseTag}
	for _, tag := range supported {
		if tag != baseTag {
			out = append(out, tag)
		}
	}
	return out
}

// GetCatalog returns the catalog for the given locale.
// Falls back to en-US if the locale is not found.
func GetCatalog(locale string) *Catalog {
	requested := strings.TrimSpace(locale)
	if requested == "" {
		requested = BaseLocale
	}

	if c, ok := lookupCatalog(requested); ok {
		return c
	}

	tag := resolve(requested)
	return storeCatalogIfAbsent(requested, newCatalog(tag))
}

// resolve maps a requested locale onto a supported tag.
func resolve(locale string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(locale)
	if err != nil || len(tags) == 0 {
		return baseTag
	}
	ordered := orderedTags()
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No || index < 0 || index >= len(ordered) {
		return baseTag
	}
	return ordered[index]
}

func newCatalog(tag language.Tag) *Catalog {
	return &Catalog{
		tag:     tag,
		known:   localeCodes[tag],
		printer: message.NewPrinter(tag, message.Catalog(builtin)),
	}
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.tag.String()
}

// Format renders the message template with the given metadata.
// Falls back to the base locale, then to the error code itself if no
// template is found.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	tmpl, ok := c.lookup(code)
	if !ok {
		return code
	}

	if metadata == nil {
		metadata = map[string]string{}
	}

	t, err := template.New("msg").Parse(tmpl)
	if err != nil {
		return tmpl
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, metadata); err != nil {
		return tmpl
	}
	return buf.String()
}

func (c *Catalog) lookup(code Code) (string, bool) {
	if c.known[code] {
		return c.printer.Sprintf(code), true
	}
	if localeCodes[baseTag][code] {
		return message.NewPrinter(baseTag, message.Catalog(builtin)).Sprintf(code), true
	}
	return "", false
}

func lookupCatalog(locale string) (*Catalog, bool) {
	catalogsMu.RLock()
	defer catalogsMu.RUnlock()
	cat, ok := catalogs[locale]
	return cat, ok
}

func storeCatalogIfAbsent(locale string, candidate *Catalog) *Catalog {
	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	if existing, ok := catalogs[locale]; ok {
		return existing
	}
	catalogs[locale] = candidate
	return candidate
}
